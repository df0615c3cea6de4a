package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/rs/zerolog"
)

// EventPublisher delivers product change events to the message broker.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, evt models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	links     LinkBuilder
	log       zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, links LinkBuilder, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		links:     links,
		log:       log.With().Str("component", "product_service").Logger(),
	}
}

// GetProduct retrieves a single product with a link to the collection.
// The boolean is false when no product has the given ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductView, bool, error) {
	s.log.Info().Str("product_id", id).Msg("getting product")
	product, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	view := RenderProduct(*product, s.links.Collection())
	return &view, true, nil
}

// ListProducts retrieves all products, each linked to itself.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	s.log.Info().Msg("listing products")
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list products")
		return nil, err
	}
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, RenderProduct(p, s.links.Self(p.ID)))
	}
	return views, nil
}

// CreateProduct stores a new product built from input.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	s.log.Info().Msg("creating product")
	product := &models.Product{}
	input.ApplyTo(product)
	if err := s.repo.Save(ctx, product); err != nil {
		s.log.Error().Err(err).Msg("failed to create product")
		return nil, err
	}
	s.publish(ctx, models.EventProductCreated, product)
	return product, nil
}

// UpdateProduct replaces every attribute of an existing product with input.
// The boolean is false when no product has the given ID.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input models.ProductInput) (*models.Product, bool, error) {
	s.log.Info().Str("product_id", id).Msg("updating product")
	product, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	input.ApplyTo(product)
	if err := s.repo.Save(ctx, product); err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, false, err
	}
	s.publish(ctx, models.EventProductUpdated, product)
	return product, true, nil
}

// DeleteProduct removes a product. It returns false, without error, when
// the product does not exist.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.log.Info().Str("product_id", id).Msg("deleting product")
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return false, err
	}
	s.publish(ctx, models.EventProductDeleted, &models.Product{ID: id})
	return true, nil
}

// ImportCSV creates one product per data row of a CSV document whose first
// row names the columns. Rows are saved one at a time in file order; when an
// error stops the import, the rows saved before it remain. It returns the
// number of products saved.
func (s *ProductService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	s.log.Info().Msg("importing products from csv")
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, s.importFailed(0, malformed(1, err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	mapper, err := newRowMapper(header)
	if err != nil {
		return 0, s.importFailed(0, err)
	}

	imported := 0
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return imported, s.importFailed(imported, err)
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, s.importFailed(imported, malformed(row, err))
		}

		product, err := mapper.build(row, record)
		if err != nil {
			return imported, s.importFailed(imported, err)
		}
		if err := s.repo.Save(ctx, product); err != nil {
			return imported, s.importFailed(imported, err)
		}
		imported++
		s.publish(ctx, models.EventProductCreated, product)
	}

	s.log.Info().Int("imported", imported).Msg("csv import finished")
	return imported, nil
}

func (s *ProductService) importFailed(imported int, err error) error {
	s.log.Error().Err(err).Int("imported", imported).Msg("failed to import products from csv")
	return err
}

// malformed wraps a csv reader error; the reader's own error keeps the line number.
func malformed(row int, err error) error {
	return &ImportError{Row: row, Err: errors.Join(ErrMalformedCSV, err)}
}

func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(ctx, models.NewProductEvent(eventType, product)); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Str("product_id", product.ID).Msg("failed to publish product event")
	}
}

package repositories

import (
	"context"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// A missing product is reported through the boolean result, never as an error.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, bool, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	// Save inserts the product when its ID is empty, assigning a new one,
	// and overwrites every column of the stored row otherwise.
	Save(ctx context.Context, product *models.Product) error
}

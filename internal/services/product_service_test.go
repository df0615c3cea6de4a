package services_test

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*models.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Product), args.Bool(1), args.Error(2)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(ctx context.Context, evt models.ProductEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

var ctx = context.Background()

func newService(repo *MockProductRepository, pub services.EventPublisher) *services.ProductService {
	return services.NewProductService(repo, pub, services.NewLinkBuilder("/api/v1/products"), zerolog.Nop())
}

func widgetInput() models.ProductInput {
	return models.ProductInput{Name: "Widget", Price: "9.99", Description: "A widget", StockQuantity: "100", Weight: "0.5"}
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	stored := &models.Product{ID: "1", Name: "Product A", Price: "10.0"}
	mockRepo.On("FindByID", ctx, "1").Return(stored, true, nil).Once()

	view, found, err := service.GetProduct(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Product A", view.Name)
	assert.Equal(t, []models.Link{{Rel: "collection", Href: "/api/v1/products"}}, view.Links)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("FindByID", ctx, "99").Return(nil, false, nil).Once()

	view, found, err := service.GetProduct(ctx, "99")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, view)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct_StorageErrorUnchanged(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	dbErr := errors.New("database error")
	mockRepo.On("FindByID", ctx, "1").Return(nil, false, dbErr).Once()

	_, _, err := service.GetProduct(ctx, "1")
	assert.Same(t, dbErr, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	stored := []models.Product{
		{ID: "1", Name: "Product A"},
		{ID: "2", Name: "Product B"},
	}
	mockRepo.On("FindAll", ctx).Return(stored, nil).Once()

	views, err := service.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, []models.Link{{Rel: "self", Href: "/api/v1/products/1"}}, views[0].Links)
	assert.Equal(t, []models.Link{{Rel: "self", Href: "/api/v1/products/2"}}, views[1].Links)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_Empty(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("FindAll", ctx).Return([]models.Product{}, nil).Once()

	views, err := service.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)

	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Product).ID = "generated-id"
		}).
		Return(nil).Once()
	pub.On("PublishProductEvent", ctx, mock.MatchedBy(func(evt models.ProductEvent) bool {
		return evt.Type == models.EventProductCreated && evt.ProductID == "generated-id"
	})).Return(nil).Once()

	product, err := service.CreateProduct(ctx, widgetInput())
	require.NoError(t, err)
	assert.Equal(t, "generated-id", product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "9.99", product.Price)
	assert.Equal(t, "A widget", product.Description)
	assert.Equal(t, "100", product.StockQuantity)
	assert.Equal(t, "0.5", product.Weight)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProductService_CreateProduct_KeepsValuesVerbatim(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	in := models.ProductInput{Name: "  padded  ", Price: "not a number"}
	product, err := service.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", product.Name)
	assert.Equal(t, "not a number", product.Price)
}

func TestProductService_CreateProduct_StorageError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)

	dbErr := errors.New("database error")
	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).Return(dbErr).Once()

	product, err := service.CreateProduct(ctx, widgetInput())
	assert.Nil(t, product)
	assert.Same(t, dbErr, err)
	pub.AssertNotCalled(t, "PublishProductEvent", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_PublishFailureIgnored(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)

	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	pub.On("PublishProductEvent", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.CreateProduct(ctx, widgetInput())
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestProductService_UpdateProduct_FullReplace(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	stored := &models.Product{ID: "1", Name: "Old", Price: "1", Description: "Old description", StockQuantity: "5", Weight: "2"}
	mockRepo.On("FindByID", ctx, "1").Return(stored, true, nil).Once()
	mockRepo.On("Save", ctx, stored).Return(nil).Once()

	product, found, err := service.UpdateProduct(ctx, "1", models.ProductInput{Name: "New", Price: "2"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", product.ID)
	assert.Equal(t, "New", product.Name)
	assert.Equal(t, "2", product.Price)
	assert.Empty(t, product.Description)
	assert.Empty(t, product.StockQuantity)
	assert.Empty(t, product.Weight)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("FindByID", ctx, "99").Return(nil, false, nil).Once()

	product, found, err := service.UpdateProduct(ctx, "99", widgetInput())
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, product)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)

	mockRepo.On("ExistsByID", ctx, "1").Return(true, nil).Once()
	mockRepo.On("DeleteByID", ctx, "1").Return(nil).Once()
	pub.On("PublishProductEvent", ctx, mock.MatchedBy(func(evt models.ProductEvent) bool {
		return evt.Type == models.EventProductDeleted && evt.ProductID == "1"
	})).Return(nil).Once()

	deleted, err := service.DeleteProduct(ctx, "1")
	assert.NoError(t, err)
	assert.True(t, deleted)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("ExistsByID", ctx, "99").Return(false, nil).Once()

	deleted, err := service.DeleteProduct(ctx, "99")
	assert.NoError(t, err)
	assert.False(t, deleted)
	mockRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct_StorageError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	dbErr := errors.New("database error")
	mockRepo.On("ExistsByID", ctx, "1").Return(true, nil).Once()
	mockRepo.On("DeleteByID", ctx, "1").Return(dbErr).Once()

	deleted, err := service.DeleteProduct(ctx, "1")
	assert.False(t, deleted)
	assert.Same(t, dbErr, err)
}

package services_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"grosir/internal/apperror"
	"grosir/internal/models"
	"grosir/internal/repositories"
	"grosir/internal/services"
	"grosir/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ListActiveByOwner(ctx context.Context, wholesalerID uint) ([]models.Product, error) {
	args := m.Called(ctx, wholesalerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) SearchActiveByName(ctx context.Context, name string) ([]models.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ListActiveByCategory(ctx context.Context, category string) ([]models.Product, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetActiveByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateOwned(ctx context.Context, id, wholesalerID uint, changes models.ProductChanges) (int64, error) {
	args := m.Called(ctx, id, wholesalerID, changes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DeactivateOwned(ctx context.Context, id, wholesalerID uint) (int64, error) {
	args := m.Called(ctx, id, wholesalerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ListSummariesByWholesaler(ctx context.Context, wholesalerID uint) ([]models.ProductSummary, error) {
	args := m.Called(ctx, wholesalerID)
	return args.Get(0).([]models.ProductSummary), args.Error(1)
}

// MockWholesalerRepository is a mock implementation of repositories.WholesalerRepository
type MockWholesalerRepository struct {
	mock.Mock
}

func (m *MockWholesalerRepository) Create(ctx context.Context, wholesaler *models.Wholesaler) error {
	args := m.Called(ctx, wholesaler)
	return args.Error(0)
}

func (m *MockWholesalerRepository) GetByUserID(ctx context.Context, userID string) (*models.Wholesaler, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wholesaler), args.Error(1)
}

// MockPublisher records published catalog events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockImageStore is a mock implementation of services.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

var (
	ctx        = context.Background()
	wholesaler = services.Identity{UserID: "u1", Role: models.RoleWholesaler}
	retailer   = services.Identity{UserID: "r1", Role: models.RoleRetailer}
)

func assertKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err))
	assert.Equal(t, msg, err.Error())
}

func newService() (*services.ProductService, *MockProductRepository, *MockWholesalerRepository) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	return services.NewProductService(products, wholesalers, nil, nil), products, wholesalers
}

func TestProductService_CreateProduct(t *testing.T) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(products, wholesalers, nil, publisher)

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3, UserID: "u1"}, nil).Once()
	products.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ProductName == "Widget" &&
			p.Price == 9.99 &&
			p.StockQuantity == 0 &&
			p.WholesalerID == 3 &&
			p.IsActive &&
			p.Category == nil &&
			p.Description == nil &&
			p.ProductImage == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ProductID = 42
	}).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.EventProductCreated && e.ProductID == 42 && e.WholesalerID == 3
	})).Return(nil).Once()

	res, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{ProductName: "Widget", Price: "9.99"}, nil)
	require.NoError(t, err)
	assert.Equal(t, &models.WriteResult{InsertID: 42, AffectedRows: 1}, res)

	products.AssertExpectations(t)
	wholesalers.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateProduct_StoresOptionalFields(t *testing.T) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	images := new(MockImageStore)
	service := services.NewProductService(products, wholesalers, images, nil)

	upload := &multipart.FileHeader{Filename: "widget.png"}
	images.On("Save", ctx, upload).Return("http://cdn/uploads/widget.png", nil).Once()

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	products.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return *p.Category == "tools" &&
			*p.Description == "sturdy" &&
			*p.ProductImage == "http://cdn/uploads/widget.png" &&
			p.StockQuantity == 12
	})).Return(nil).Once()

	_, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{
		ProductName:   "Widget",
		Category:      "tools",
		Price:         "9.99",
		StockQuantity: "12",
		Description:   "sturdy",
	}, upload)
	require.NoError(t, err)
	products.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestProductService_CreateProduct_ImageGuards(t *testing.T) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	images := new(MockImageStore)
	service := services.NewProductService(products, wholesalers, images, nil)
	upload := &multipart.FileHeader{Filename: "widget.exe"}
	in := services.ProductInput{ProductName: "Widget", Price: "9.99"}

	// Nothing is written for a caller that may not create products.
	_, err := service.CreateProduct(ctx, retailer, in, upload)
	assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)
	images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	images.On("Save", ctx, upload).Return("", storage.ErrUnsupportedImage).Once()
	_, err = service.CreateProduct(ctx, wholesaler, in, upload)
	assertKind(t, err, apperror.KindInvalidInput, "Unsupported image type")
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Uploads without a configured store.
	bare, _, wholesalers2 := newService()
	wholesalers2.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	_, err = bare.CreateProduct(ctx, wholesaler, in, upload)
	assertKind(t, err, apperror.KindInternal, "Image uploads are not configured")
}

func TestProductService_CreateProduct_InvalidNumbers(t *testing.T) {
	service, products, _ := newService()

	cases := map[string]services.ProductInput{
		"Invalid value for Price":         {ProductName: "Widget", Price: "cheap"},
		"Invalid value for StockQuantity": {ProductName: "Widget", Price: "9.99", StockQuantity: "12.5"},
	}
	for msg, in := range cases {
		_, err := service.CreateProduct(ctx, wholesaler, in, nil)
		assertKind(t, err, apperror.KindInvalidInput, msg)
	}
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_RejectsNonWholesaler(t *testing.T) {
	service, products, wholesalers := newService()

	for _, role := range []models.Role{models.RoleRetailer, models.Role(""), models.Role("ADMIN")} {
		_, err := service.CreateProduct(ctx, services.Identity{UserID: "x", Role: role},
			services.ProductInput{ProductName: "Widget", Price: "9.99"}, nil)
		assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)
	}

	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	wholesalers.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_MissingFields(t *testing.T) {
	service, products, _ := newService()

	inputs := []services.ProductInput{
		{Price: "9.99"},
		{ProductName: "Widget"},
		{},
	}
	for _, in := range inputs {
		_, err := service.CreateProduct(ctx, wholesaler, in, nil)
		assertKind(t, err, apperror.KindInvalidInput, services.MsgMissingFields)
	}
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_ZeroPriceIsPresent(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	products.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	_, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{ProductName: "Freebie", Price: "0"}, nil)
	assert.NoError(t, err)
}

func TestProductService_CreateProduct_WholesalerProfileMissing(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u1").Return(nil, repositories.ErrNotFound).Once()

	_, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{ProductName: "Widget", Price: "9.99"}, nil)
	assertKind(t, err, apperror.KindNotFound, services.MsgWholesalerNotFound)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_StoreErrorPassesThrough(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	products.On("Create", ctx, mock.Anything).Return(errors.New("failed to create product: disk full")).Once()

	_, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{ProductName: "Widget", Price: "9.99"}, nil)
	assertKind(t, err, apperror.KindStore, "failed to create product: disk full")
}

func TestProductService_CreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(products, wholesalers, nil, publisher)

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	products.On("Create", ctx, mock.Anything).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.Anything).Return(errors.New("channel closed")).Once()

	_, err := service.CreateProduct(ctx, wholesaler, services.ProductInput{ProductName: "Widget", Price: "9.99"}, nil)
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestProductService_ListMyProducts(t *testing.T) {
	service, products, wholesalers := newService()

	own := []models.Product{
		{ProductID: 9, ProductName: "Newer", WholesalerID: 3, IsActive: true},
		{ProductID: 4, ProductName: "Older", WholesalerID: 3, IsActive: true},
	}
	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	products.On("ListActiveByOwner", ctx, uint(3)).Return(own, nil).Once()

	result, err := service.ListMyProducts(ctx, wholesaler)
	require.NoError(t, err)
	assert.Equal(t, own, result)

	_, err = service.ListMyProducts(ctx, retailer)
	assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)
	products.AssertExpectations(t)
}

func TestProductService_PublicQueries(t *testing.T) {
	service, products, _ := newService()

	all := []models.Product{{ProductID: 1, ProductName: "Widget Pro", IsActive: true}}
	products.On("ListActive", ctx).Return(all, nil).Once()
	products.On("SearchActiveByName", ctx, "wid").Return(all, nil).Once()
	products.On("ListActiveByCategory", ctx, "tools").Return([]models.Product{}, nil).Once()

	got, err := service.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = service.SearchProducts(ctx, "wid")
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = service.GetProductsByCategory(ctx, "tools")
	require.NoError(t, err)
	assert.Empty(t, got)

	products.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	service, products, _ := newService()

	expected := &models.Product{ProductID: 1, ProductName: "Widget", IsActive: true}
	products.On("GetActiveByID", ctx, uint(1)).Return(expected, nil).Once()
	products.On("GetActiveByID", ctx, uint(99)).Return(nil, repositories.ErrNotFound).Once()
	products.On("GetActiveByID", ctx, uint(5)).Return(nil, errors.New("connection reset")).Once()

	product, err := service.GetProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, expected, product)

	_, err = service.GetProductByID(ctx, 99)
	assertKind(t, err, apperror.KindNotFound, services.MsgProductNotFound)

	_, err = service.GetProductByID(ctx, 5)
	assertKind(t, err, apperror.KindStore, "connection reset")
}

func TestProductService_UpdateProduct(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil)
	products.On("UpdateOwned", ctx, uint(10), uint(3), models.ProductChanges{
		ProductName:   "Widget v2",
		Price:         12.5,
		StockQuantity: 2,
	}).Return(int64(1), nil).Once()

	msg, err := service.UpdateProduct(ctx, wholesaler, 10, services.ProductInput{ProductName: "Widget v2", Price: "12.5", StockQuantity: "2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, services.MsgProductUpdated, msg)

	products.AssertExpectations(t)
}

func TestProductService_UpdateProduct_ReplacesImage(t *testing.T) {
	products := new(MockProductRepository)
	wholesalers := new(MockWholesalerRepository)
	images := new(MockImageStore)
	service := services.NewProductService(products, wholesalers, images, nil)

	upload := &multipart.FileHeader{Filename: "new.png"}
	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil).Once()
	images.On("Save", ctx, upload).Return("http://cdn/uploads/new.png", nil).Once()
	products.On("UpdateOwned", ctx, uint(10), uint(3), mock.MatchedBy(func(c models.ProductChanges) bool {
		return c.ProductImage != nil && *c.ProductImage == "http://cdn/uploads/new.png"
	})).Return(int64(1), nil).Once()

	_, err := service.UpdateProduct(ctx, wholesaler, 10, services.ProductInput{ProductName: "Widget v2", Price: "12.5"}, upload)
	require.NoError(t, err)
	products.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotOwned(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u2").Return(&models.Wholesaler{WholesalerID: 8}, nil).Once()
	products.On("UpdateOwned", ctx, uint(10), uint(8), mock.Anything).Return(int64(0), nil).Once()

	other := services.Identity{UserID: "u2", Role: models.RoleWholesaler}
	_, err := service.UpdateProduct(ctx, other, 10, services.ProductInput{ProductName: "Mine now", Price: "1"}, nil)
	assertKind(t, err, apperror.KindNotFound, services.MsgNotFoundOrUnauthorized)
}

func TestProductService_UpdateProduct_Guards(t *testing.T) {
	service, products, wholesalers := newService()

	_, err := service.UpdateProduct(ctx, retailer, 10, services.ProductInput{ProductName: "x", Price: "1"}, nil)
	assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)

	_, err = service.UpdateProduct(ctx, wholesaler, 10, services.ProductInput{ProductName: "x"}, nil)
	assertKind(t, err, apperror.KindInvalidInput, services.MsgMissingFields)

	wholesalers.On("GetByUserID", ctx, "u1").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.UpdateProduct(ctx, wholesaler, 10, services.ProductInput{ProductName: "x", Price: "1"}, nil)
	assertKind(t, err, apperror.KindNotFound, services.MsgWholesalerNotFound)

	products.AssertNotCalled(t, "UpdateOwned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	service, products, wholesalers := newService()

	wholesalers.On("GetByUserID", ctx, "u1").Return(&models.Wholesaler{WholesalerID: 3}, nil)
	products.On("DeactivateOwned", ctx, uint(10), uint(3)).Return(int64(1), nil).Once()
	products.On("DeactivateOwned", ctx, uint(11), uint(3)).Return(int64(0), nil).Once()

	msg, err := service.DeleteProduct(ctx, wholesaler, 10)
	require.NoError(t, err)
	assert.Equal(t, services.MsgProductDeleted, msg)

	_, err = service.DeleteProduct(ctx, wholesaler, 11)
	assertKind(t, err, apperror.KindNotFound, services.MsgNotFoundOrUnauthorized)

	_, err = service.DeleteProduct(ctx, retailer, 10)
	assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)

	products.AssertExpectations(t)
}

func TestProductService_GetProductsByWholesaler(t *testing.T) {
	service, products, _ := newService()

	summaries := []models.ProductSummary{{ProductID: 1, ProductName: "Widget", WholesalerID: 3}}
	products.On("ListSummariesByWholesaler", ctx, uint(3)).Return(summaries, nil).Once()

	got, err := service.GetProductsByWholesaler(ctx, retailer, 3)
	require.NoError(t, err)
	assert.Equal(t, summaries, got)

	_, err = service.GetProductsByWholesaler(ctx, wholesaler, 3)
	assertKind(t, err, apperror.KindForbidden, services.MsgAccessDenied)

	products.AssertExpectations(t)
}

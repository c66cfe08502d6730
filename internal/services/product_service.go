package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"time"

	"grosir/internal/apperror"
	"grosir/internal/models"
	"grosir/internal/repositories"
	"grosir/internal/storage"

	"github.com/go-playground/validator/v10"
)

// Client-facing messages. Existing clients match on these strings.
const (
	MsgAccessDenied           = "Access denied"
	MsgMissingFields          = "Missing required fields"
	MsgWholesalerNotFound     = "Wholesaler profile not found"
	MsgProductNotFound        = "Product not found"
	MsgNotFoundOrUnauthorized = "Product not found or unauthorized"
	MsgProductUpdated         = "Product updated successfully"
	MsgProductDeleted         = "Product deleted successfully"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Role   models.Role
}

// ProductInput carries the client-editable product fields as submitted.
// Numeric fields arrive as text from multipart forms and are parsed here.
type ProductInput struct {
	ProductName   string `validate:"required"`
	Category      string
	Price         string `validate:"required,numeric"`
	StockQuantity string `validate:"omitempty,number"`
	Description   string
}

type parsedInput struct {
	name        string
	category    *string
	price       float64
	stock       int
	description *string
}

// ImageStore persists an uploaded product image and returns its URL.
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// EventPublisher announces inventory changes to other services.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	products    repositories.ProductRepository
	wholesalers repositories.WholesalerRepository
	images      ImageStore
	events      EventPublisher
	validate    *validator.Validate
}

// NewProductService creates a new ProductService. images and events may be nil.
func NewProductService(products repositories.ProductRepository, wholesalers repositories.WholesalerRepository, images ImageStore, events EventPublisher) *ProductService {
	return &ProductService{
		products:    products,
		wholesalers: wholesalers,
		images:      images,
		events:      events,
		validate:    validator.New(),
	}
}

// CreateProduct inserts a product owned by the caller's wholesaler profile.
// image is nil when no file was uploaded.
func (s *ProductService) CreateProduct(ctx context.Context, who Identity, in ProductInput, image *multipart.FileHeader) (*models.WriteResult, error) {
	if !who.Role.CanManageInventory() {
		return nil, apperror.Forbidden(MsgAccessDenied)
	}
	fields, err := s.parseInput(in)
	if err != nil {
		return nil, err
	}

	wholesaler, err := s.resolveWholesaler(ctx, who.UserID)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ProductName:   fields.name,
		Category:      fields.category,
		Price:         fields.price,
		StockQuantity: fields.stock,
		WholesalerID:  wholesaler.WholesalerID,
		ProductImage:  imageURL,
		Description:   fields.description,
		IsActive:      true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		log.Printf("Error creating product for wholesaler %d: %v", wholesaler.WholesalerID, err)
		return nil, apperror.Store(err)
	}

	s.publish(models.EventProductCreated, product.ProductID, wholesaler.WholesalerID, product.ProductName)
	return &models.WriteResult{InsertID: product.ProductID, AffectedRows: 1}, nil
}

// ListMyProducts returns the caller's active products, newest first.
func (s *ProductService) ListMyProducts(ctx context.Context, who Identity) ([]models.Product, error) {
	if !who.Role.CanManageInventory() {
		return nil, apperror.Forbidden(MsgAccessDenied)
	}
	wholesaler, err := s.resolveWholesaler(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListActiveByOwner(ctx, wholesaler.WholesalerID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// GetAllProducts returns every active product.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// SearchProducts returns active products whose name contains name.
func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	products, err := s.products.SearchActiveByName(ctx, name)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// GetProductsByCategory returns active products in exactly that category.
func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.products.ListActiveByCategory(ctx, category)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// GetProductByID returns a single active product.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.products.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound(MsgProductNotFound)
		}
		return nil, apperror.Store(err)
	}
	return product, nil
}

// UpdateProduct rewrites one of the caller's products. The stored image is
// only replaced when a new one is uploaded. A missing product and a product
// of another wholesaler are reported identically.
func (s *ProductService) UpdateProduct(ctx context.Context, who Identity, id uint, in ProductInput, image *multipart.FileHeader) (string, error) {
	if !who.Role.CanManageInventory() {
		return "", apperror.Forbidden(MsgAccessDenied)
	}
	fields, err := s.parseInput(in)
	if err != nil {
		return "", err
	}

	wholesaler, err := s.resolveWholesaler(ctx, who.UserID)
	if err != nil {
		return "", err
	}

	imageURL, err := s.saveImage(ctx, image)
	if err != nil {
		return "", err
	}

	changes := models.ProductChanges{
		ProductName:   fields.name,
		Category:      fields.category,
		Price:         fields.price,
		StockQuantity: fields.stock,
		Description:   fields.description,
		ProductImage:  imageURL,
	}
	affected, err := s.products.UpdateOwned(ctx, id, wholesaler.WholesalerID, changes)
	if err != nil {
		log.Printf("Error updating product %d for wholesaler %d: %v", id, wholesaler.WholesalerID, err)
		return "", apperror.Store(err)
	}
	if affected == 0 {
		return "", apperror.NotFound(MsgNotFoundOrUnauthorized)
	}

	s.publish(models.EventProductUpdated, id, wholesaler.WholesalerID, fields.name)
	return MsgProductUpdated, nil
}

// DeleteProduct soft-deletes one of the caller's products.
func (s *ProductService) DeleteProduct(ctx context.Context, who Identity, id uint) (string, error) {
	if !who.Role.CanManageInventory() {
		return "", apperror.Forbidden(MsgAccessDenied)
	}

	wholesaler, err := s.resolveWholesaler(ctx, who.UserID)
	if err != nil {
		return "", err
	}

	affected, err := s.products.DeactivateOwned(ctx, id, wholesaler.WholesalerID)
	if err != nil {
		log.Printf("Error deleting product %d for wholesaler %d: %v", id, wholesaler.WholesalerID, err)
		return "", apperror.Store(err)
	}
	if affected == 0 {
		return "", apperror.NotFound(MsgNotFoundOrUnauthorized)
	}

	s.publish(models.EventProductDeleted, id, wholesaler.WholesalerID, "")
	return MsgProductDeleted, nil
}

// GetProductsByWholesaler lets a retailer browse any wholesaler's active catalog.
func (s *ProductService) GetProductsByWholesaler(ctx context.Context, who Identity, wholesalerID uint) ([]models.ProductSummary, error) {
	if !who.Role.CanBrowseWholesalers() {
		return nil, apperror.Forbidden(MsgAccessDenied)
	}
	summaries, err := s.products.ListSummariesByWholesaler(ctx, wholesalerID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return summaries, nil
}

// parseInput checks presence of the required fields and converts the
// numeric ones. StockQuantity defaults to 0.
func (s *ProductService) parseInput(in ProductInput) (parsedInput, error) {
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return parsedInput{}, apperror.InvalidInput(MsgMissingFields)
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return parsedInput{}, apperror.InvalidInput(MsgMissingFields)
			}
		}
		return parsedInput{}, apperror.InvalidInput(fmt.Sprintf("Invalid value for %s", fieldErrs[0].Field()))
	}

	price, err := strconv.ParseFloat(in.Price, 64)
	if err != nil {
		return parsedInput{}, apperror.InvalidInput("Invalid value for Price")
	}
	stock := 0
	if in.StockQuantity != "" {
		stock, err = strconv.Atoi(in.StockQuantity)
		if err != nil {
			return parsedInput{}, apperror.InvalidInput("Invalid value for StockQuantity")
		}
	}

	return parsedInput{
		name:        in.ProductName,
		category:    nullable(in.Category),
		price:       price,
		stock:       stock,
		description: nullable(in.Description),
	}, nil
}

func (s *ProductService) saveImage(ctx context.Context, image *multipart.FileHeader) (*string, error) {
	if image == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, &apperror.Error{Kind: apperror.KindInternal, Message: "Image uploads are not configured"}
	}
	url, err := s.images.Save(ctx, image)
	if err != nil {
		log.Printf("Error saving product image %q: %v", image.Filename, err)
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, apperror.InvalidInput("Unsupported image type")
		}
		return nil, &apperror.Error{Kind: apperror.KindInternal, Message: "Could not store product image", Err: err}
	}
	return &url, nil
}

func (s *ProductService) resolveWholesaler(ctx context.Context, userID string) (*models.Wholesaler, error) {
	wholesaler, err := s.wholesalers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound(MsgWholesalerNotFound)
		}
		return nil, apperror.Store(err)
	}
	return wholesaler, nil
}

// publish never fails the request; a lost event is only logged.
func (s *ProductService) publish(eventType string, productID, wholesalerID uint, name string) {
	if s.events == nil {
		return
	}
	event := models.ProductEvent{
		Type:         eventType,
		ProductID:    productID,
		WholesalerID: wholesalerID,
		ProductName:  name,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", eventType, productID, err)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

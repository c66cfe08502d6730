package repositories

import (
	"context"
	"errors"

	"grosir/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ProductRepository defines the interface for product data access.
// Every read except the owner-scoped writes filters on IsActive = true.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	ListActive(ctx context.Context) ([]models.Product, error)
	ListActiveByOwner(ctx context.Context, wholesalerID uint) ([]models.Product, error)
	SearchActiveByName(ctx context.Context, name string) ([]models.Product, error)
	ListActiveByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Product, error)
	UpdateOwned(ctx context.Context, id, wholesalerID uint, changes models.ProductChanges) (int64, error)
	DeactivateOwned(ctx context.Context, id, wholesalerID uint) (int64, error)
	ListSummariesByWholesaler(ctx context.Context, wholesalerID uint) ([]models.ProductSummary, error)
}

// WholesalerRepository resolves user accounts to wholesaler profiles.
type WholesalerRepository interface {
	Create(ctx context.Context, wholesaler *models.Wholesaler) error
	GetByUserID(ctx context.Context, userID string) (*models.Wholesaler, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"grosir/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// col quotes a column name through the active dialect, which keeps the
// PascalCase schema intact on PostgreSQL.
func col(name string) clause.Column {
	return clause.Column{Name: name}
}

func activeOnly() clause.Eq {
	return clause.Eq{Column: col("IsActive"), Value: true}
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts a product and fills in its generated ProductID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ListActive returns every active product ordered by ProductID.
func (r *GORMProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where(activeOnly()).
		Order(clause.OrderByColumn{Column: col("ProductID")}).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListActiveByOwner returns a wholesaler's active products, newest first.
func (r *GORMProductRepository) ListActiveByOwner(ctx context.Context, wholesalerID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: col("WholesalerID"), Value: wholesalerID}).
		Where(activeOnly()).
		Order(clause.OrderByColumn{Column: col("ProductID"), Desc: true}).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products of wholesaler %d: %w", wholesalerID, err)
	}
	return products, nil
}

// SearchActiveByName matches ProductName as a substring. Case sensitivity
// follows the column collation of the underlying database.
func (r *GORMProductRepository) SearchActiveByName(ctx context.Context, name string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where(clause.Like{Column: col("ProductName"), Value: "%" + name + "%"}).
		Where(activeOnly()).
		Order(clause.OrderByColumn{Column: col("ProductID")}).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name %q: %w", name, err)
	}
	return products, nil
}

// ListActiveByCategory returns active products whose Category equals category exactly.
func (r *GORMProductRepository) ListActiveByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: col("Category"), Value: category}).
		Where(activeOnly()).
		Order(clause.OrderByColumn{Column: col("ProductID")}).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products in category %q: %w", category, err)
	}
	return products, nil
}

// GetActiveByID returns the active product with the given id or ErrNotFound.
func (r *GORMProductRepository) GetActiveByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: col("ProductID"), Value: id}).
		Where(activeOnly()).
		Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// UpdateOwned rewrites a product owned by wholesalerID and reports how many
// rows matched. Zero means the product is missing or belongs to someone else.
func (r *GORMProductRepository) UpdateOwned(ctx context.Context, id, wholesalerID uint, changes models.ProductChanges) (int64, error) {
	values := map[string]interface{}{
		"ProductName":   changes.ProductName,
		"Category":      changes.Category,
		"Price":         changes.Price,
		"StockQuantity": changes.StockQuantity,
		"Description":   changes.Description,
	}
	if changes.ProductImage != nil {
		values["ProductImage"] = *changes.ProductImage
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(clause.Eq{Column: col("ProductID"), Value: id}).
		Where(clause.Eq{Column: col("WholesalerID"), Value: wholesalerID}).
		Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update product %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// DeactivateOwned flips IsActive to false on a product owned by wholesalerID.
func (r *GORMProductRepository) DeactivateOwned(ctx context.Context, id, wholesalerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(clause.Eq{Column: col("ProductID"), Value: id}).
		Where(clause.Eq{Column: col("WholesalerID"), Value: wholesalerID}).
		Update("IsActive", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate product %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// ListSummariesByWholesaler returns the retailer projection of a wholesaler's
// active products. Description and IsActive are never selected.
func (r *GORMProductRepository) ListSummariesByWholesaler(ctx context.Context, wholesalerID uint) ([]models.ProductSummary, error) {
	var summaries []models.ProductSummary
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("ProductID", "ProductName", "Category", "Price", "StockQuantity", "ProductImage", "WholesalerID").
		Where(clause.Eq{Column: col("WholesalerID"), Value: wholesalerID}).
		Where(activeOnly()).
		Order(clause.OrderByColumn{Column: col("ProductID")}).
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products of wholesaler %d: %w", wholesalerID, err)
	}
	return summaries, nil
}

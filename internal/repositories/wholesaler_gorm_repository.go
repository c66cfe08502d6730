package repositories

import (
	"context"
	"errors"
	"fmt"

	"grosir/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMWholesalerRepository is a GORM implementation of WholesalerRepository.
type GORMWholesalerRepository struct {
	db *gorm.DB
}

func NewGORMWholesalerRepository(db *gorm.DB) *GORMWholesalerRepository {
	return &GORMWholesalerRepository{db: db}
}

// Create inserts a wholesaler profile for an existing user.
func (r *GORMWholesalerRepository) Create(ctx context.Context, wholesaler *models.Wholesaler) error {
	if err := r.db.WithContext(ctx).Create(wholesaler).Error; err != nil {
		return fmt.Errorf("failed to create wholesaler profile: %w", err)
	}
	return nil
}

// GetByUserID returns the wholesaler profile of a user or ErrNotFound.
func (r *GORMWholesalerRepository) GetByUserID(ctx context.Context, userID string) (*models.Wholesaler, error) {
	var wholesaler models.Wholesaler
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "UserID"}, Value: userID}).
		Take(&wholesaler).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wholesaler by user ID %s: %w", userID, err)
	}
	return &wholesaler, nil
}

package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	ListPublished(ctx context.Context) ([]*models.Location, error)
	Delete(ctx context.Context, id uint) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *locationRepository) ListPublished(ctx context.Context) ([]*models.Location, error) {
	var locations []*models.Location
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&locations).Error
	return locations, err
}

// Delete removes a location; referencing posts keep a NULL location.
func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("location_id = ?", id).
			Update("location_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Location{}, id).Error
	})
}

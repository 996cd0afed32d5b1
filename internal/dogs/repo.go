package dogs

import (
	"context"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes report persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dogs repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new report. The pet id is assigned by the database sequence.
func (r *Repository) Create(ctx context.Context, dog *models.Dog) (*models.Dog, error) {
	if err := r.db.WithContext(ctx).Create(dog).Error; err != nil {
		return nil, err
	}
	return dog, nil
}

// FindByPetID loads a report by its public pet id.
func (r *Repository) FindByPetID(ctx context.Context, petID int64) (*models.Dog, error) {
	var dog models.Dog
	if err := r.db.WithContext(ctx).Where("pet_id = ?", petID).First(&dog).Error; err != nil {
		return nil, err
	}
	return &dog, nil
}

// ListByCategory returns active (not reunited) reports of one category,
// newest first.
func (r *Repository) ListByCategory(ctx context.Context, category enums.DogCategory) ([]models.Dog, error) {
	var rows []models.Dog
	err := r.db.WithContext(ctx).
		Where("category = ? AND reunited = ?", category, false).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListMatchable returns every report that participates in matching: has an
// image and is not reunited. Ordered oldest first so match discovery order is
// stable across runs.
func (r *Repository) ListMatchable(ctx context.Context) ([]models.Dog, error) {
	var rows []models.Dog
	err := r.db.WithContext(ctx).
		Where("image_path IS NOT NULL AND reunited = ?", false).
		Order("pet_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists all fields of an existing report.
func (r *Repository) Save(ctx context.Context, dog *models.Dog) error {
	return r.db.WithContext(ctx).Save(dog).Error
}

// MarkReunited flips the reunited flag for the given pet ids.
func (r *Repository) MarkReunited(ctx context.Context, petIDs ...int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Dog{}).
		Where("pet_id IN ?", petIDs).
		UpdateColumn("reunited", true).Error
}

// Delete removes a report by pet id.
func (r *Repository) Delete(ctx context.Context, petID int64) error {
	return r.db.WithContext(ctx).Where("pet_id = ?", petID).Delete(&models.Dog{}).Error
}

package stats

import (
	"context"
	"errors"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository owns the singleton reunited-pairs aggregate.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stats repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stats row, or a zero-count aggregate when none exists yet.
func (r *Repository) Get(ctx context.Context) (*models.Stats, error) {
	var row models.Stats
	err := r.db.WithContext(ctx).First(&row, "id = ?", models.StatsSingletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Stats{ID: models.StatsSingletonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementReunited bumps the counter atomically, creating the singleton row
// on first use. The upsert runs as one statement, so concurrent reunifications
// cannot lose increments.
func (r *Repository) IncrementReunited(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO stats (id, reunited_count, created_at, updated_at)
		 VALUES (?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE
		 SET reunited_count = stats.reunited_count + 1, updated_at = CURRENT_TIMESTAMP`,
		models.StatsSingletonID,
	).Error
}

// DecrementReunited lowers the counter by one but never below zero. The guard
// lives in the WHERE clause so the floor holds under concurrency.
func (r *Repository) DecrementReunited(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE stats
		 SET reunited_count = reunited_count - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND reunited_count > 0`,
		models.StatsSingletonID,
	).Error
}

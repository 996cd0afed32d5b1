package models

import "time"

// Stats is the singleton aggregate tracking confirmed reunions.
// At most one row exists; it is created lazily on the first reunification.
type Stats struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ReunitedCount int64     `gorm:"column:reunited_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StatsSingletonID is the fixed primary key of the single stats row.
const StatsSingletonID int64 = 1

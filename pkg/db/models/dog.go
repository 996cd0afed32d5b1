package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Dog is a lost or found report submitted by a user.
type Dog struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PetID        int64             `gorm:"column:pet_id;autoIncrement;uniqueIndex;not null"`
	Category     enums.DogCategory `gorm:"column:category;type:dog_category;not null;index"`
	OwnerID      uuid.UUID         `gorm:"column:owner_id;type:uuid;not null;index"`
	Name         string            `gorm:"column:name;not null"`
	Breed        *string           `gorm:"column:breed"`
	Color        *string           `gorm:"column:color"`
	Location     *string           `gorm:"column:location"`
	Description  *string           `gorm:"column:description"`
	ContactPhone *string           `gorm:"column:contact_phone"`
	ImagePath    *string           `gorm:"column:image_path"`
	Reunited     bool              `gorm:"column:reunited;not null;default:false;index"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// HasImage reports whether the record references an uploaded photo.
func (d Dog) HasImage() bool {
	return d.ImagePath != nil && *d.ImagePath != ""
}

package dogs

import (
	"time"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/google/uuid"
)

// UploadedImage carries one multipart file through the service layer.
type UploadedImage struct {
	FileName string
	Data     []byte
}

// SubmitDogInput is the payload for a new lost or found report.
type SubmitDogInput struct {
	Name         string  `json:"name" validate:"required"`
	Breed        *string `json:"breed,omitempty"`
	Color        *string `json:"color,omitempty"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Image        *UploadedImage `json:"-"`
}

// UpdateDogInput holds the owner-editable fields; nil means leave unchanged.
type UpdateDogInput struct {
	Name         *string `json:"name,omitempty"`
	Breed        *string `json:"breed,omitempty"`
	Color        *string `json:"color,omitempty"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Image        *UploadedImage `json:"-"`
}

// MatchPairInput identifies a lost/found pair for reunification or deletion.
type MatchPairInput struct {
	LostPetID  int64 `json:"lost_pet_id" validate:"required"`
	FoundPetID int64 `json:"found_pet_id" validate:"required"`
}

// DogDTO is the transport shape of a report.
type DogDTO struct {
	PetID        int64             `json:"pet_id"`
	Category     enums.DogCategory `json:"category"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	Name         string            `json:"name"`
	Breed        *string           `json:"breed,omitempty"`
	Color        *string           `json:"color,omitempty"`
	Location     *string           `json:"location,omitempty"`
	Description  *string           `json:"description,omitempty"`
	ContactPhone *string           `json:"contact_phone,omitempty"`
	ImagePath    *string           `json:"image_path,omitempty"`
	Reunited     bool              `json:"reunited"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func FromModel(d *models.Dog) *DogDTO {
	if d == nil {
		return nil
	}
	return &DogDTO{
		PetID:        d.PetID,
		Category:     d.Category,
		OwnerID:      d.OwnerID,
		Name:         d.Name,
		Breed:        d.Breed,
		Color:        d.Color,
		Location:     d.Location,
		Description:  d.Description,
		ContactPhone: d.ContactPhone,
		ImagePath:    d.ImagePath,
		Reunited:     d.Reunited,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromModels(rows []models.Dog) []DogDTO {
	out := make([]DogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

package dogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type dogRepository interface {
	Create(ctx context.Context, dog *models.Dog) (*models.Dog, error)
	FindByPetID(ctx context.Context, petID int64) (*models.Dog, error)
	ListByCategory(ctx context.Context, category enums.DogCategory) ([]models.Dog, error)
	Save(ctx context.Context, dog *models.Dog) error
	MarkReunited(ctx context.Context, petIDs ...int64) error
	Delete(ctx context.Context, petID int64) error
}

type statsRepository interface {
	IncrementReunited(ctx context.Context) error
	DecrementReunited(ctx context.Context) error
}

type fileStore interface {
	Write(relPath string, data []byte) error
	Delete(relPath string) error
}

type broadcaster interface {
	DogReported(ctx context.Context, dog *models.Dog)
	DogUpdated(ctx context.Context, dog *models.Dog)
	DogReunited(ctx context.Context, dog *models.Dog)
	MatchDeleted(ctx context.Context, petID int64)
}

// Service exposes the report lifecycle: submission, listing, owner edits,
// reunification, and match deletion.
type Service interface {
	Submit(ctx context.Context, ownerID uuid.UUID, category enums.DogCategory, input SubmitDogInput) (*DogDTO, error)
	List(ctx context.Context, category enums.DogCategory) ([]DogDTO, error)
	Update(ctx context.Context, ownerID uuid.UUID, petID int64, input UpdateDogInput) (*DogDTO, error)
	Reunite(ctx context.Context, input MatchPairInput) error
	DeleteMatch(ctx context.Context, input MatchPairInput) error
}

// ServiceParams bundles the report service dependencies.
type ServiceParams struct {
	Repo           dogRepository
	Stats          statsRepository
	Files          fileStore
	Broadcaster    broadcaster
	Logger         *logger.Logger
	MaxUploadBytes int64
}

type service struct {
	repo     dogRepository
	stats    statsRepository
	files    fileStore
	events   broadcaster
	logg     *logger.Logger
	maxBytes int64
}

// NewService validates and assembles the report service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dog repository is required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("file store is required")
	}
	maxBytes := params.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &service{
		repo:     params.Repo,
		stats:    params.Stats,
		files:    params.Files,
		events:   params.Broadcaster,
		logg:     params.Logger,
		maxBytes: maxBytes,
	}, nil
}

func (s *service) Submit(ctx context.Context, ownerID uuid.UUID, category enums.DogCategory, input SubmitDogInput) (*DogDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report category")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateImage(input.Image, s.maxBytes); err != nil {
		return nil, err
	}

	dog := &models.Dog{
		Category:     category,
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(input.Name),
		Breed:        input.Breed,
		Color:        input.Color,
		Location:     input.Location,
		Description:  input.Description,
		ContactPhone: input.ContactPhone,
	}

	if input.Image != nil {
		relPath := imageRelPath(category, input.Image.FileName, time.Now().UTC())
		if err := s.files.Write(relPath, input.Image.Data); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
		}
		imagePath := "/" + relPath
		dog.ImagePath = &imagePath
	}

	created, err := s.repo.Create(ctx, dog)
	if err != nil {
		if dog.ImagePath != nil {
			_ = s.files.Delete(strings.TrimPrefix(*dog.ImagePath, "/"))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create report")
	}

	if s.events != nil {
		s.events.DogReported(ctx, created)
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, category enums.DogCategory) ([]DogDTO, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report category")
	}
	rows, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reports")
	}
	return fromModels(rows), nil
}

func (s *service) Update(ctx context.Context, ownerID uuid.UUID, petID int64, input UpdateDogInput) (*DogDTO, error) {
	dog, err := s.loadByPetID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if dog.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may edit a report")
	}
	if err := validateImage(input.Image, s.maxBytes); err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		dog.Name = trimmed
	}
	if input.Breed != nil {
		dog.Breed = input.Breed
	}
	if input.Color != nil {
		dog.Color = input.Color
	}
	if input.Location != nil {
		dog.Location = input.Location
	}
	if input.Description != nil {
		dog.Description = input.Description
	}
	if input.ContactPhone != nil {
		dog.ContactPhone = input.ContactPhone
	}

	var oldImage *string
	if input.Image != nil {
		relPath := imageRelPath(dog.Category, input.Image.FileName, time.Now().UTC())
		if err := s.files.Write(relPath, input.Image.Data); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
		}
		oldImage = dog.ImagePath
		imagePath := "/" + relPath
		dog.ImagePath = &imagePath
	}

	if err := s.repo.Save(ctx, dog); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save report")
	}

	if oldImage != nil {
		if err := s.files.Delete(strings.TrimPrefix(*oldImage, "/")); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithPetID(ctx, petID), "stale image cleanup failed", err)
		}
	}

	if s.events != nil {
		s.events.DogUpdated(ctx, dog)
	}
	return FromModel(dog), nil
}

func (s *service) Reunite(ctx context.Context, input MatchPairInput) error {
	lost, found, err := s.loadPair(ctx, input)
	if err != nil {
		return err
	}

	if err := s.repo.MarkReunited(ctx, lost.PetID, found.PetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark reunited")
	}
	if err := s.stats.IncrementReunited(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment stats")
	}

	if s.events != nil {
		s.events.DogReunited(ctx, lost)
	}
	return nil
}

func (s *service) DeleteMatch(ctx context.Context, input MatchPairInput) error {
	lost, found, err := s.loadPair(ctx, input)
	if err != nil {
		return err
	}

	// Remove both records and both image files; partial failures are collected
	// so the caller sees everything that went wrong in one response.
	var cleanupErr error
	for _, dog := range []*models.Dog{lost, found} {
		if err := s.repo.Delete(ctx, dog.PetID); err != nil {
			cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("delete report %d: %w", dog.PetID, err))
			continue
		}
		if dog.HasImage() {
			if err := s.files.Delete(strings.TrimPrefix(*dog.ImagePath, "/")); err != nil {
				cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("delete image for %d: %w", dog.PetID, err))
			}
		}
	}

	if err := s.stats.DecrementReunited(ctx); err != nil {
		cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("decrement stats: %w", err))
	}

	if cleanupErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, cleanupErr, "match deletion incomplete")
	}

	if s.events != nil {
		s.events.MatchDeleted(ctx, lost.PetID)
		s.events.MatchDeleted(ctx, found.PetID)
	}
	return nil
}

func (s *service) loadPair(ctx context.Context, input MatchPairInput) (lost, found *models.Dog, err error) {
	lost, err = s.loadByPetID(ctx, input.LostPetID)
	if err != nil {
		return nil, nil, err
	}
	found, err = s.loadByPetID(ctx, input.FoundPetID)
	if err != nil {
		return nil, nil, err
	}
	if lost.Category != enums.DogCategoryLost || found.Category != enums.DogCategoryFound {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "pair must reference one lost and one found report")
	}
	return lost, found, nil
}

func (s *service) loadByPetID(ctx context.Context, petID int64) (*models.Dog, error) {
	dog, err := s.repo.FindByPetID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("report %d not found", petID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load report")
	}
	return dog, nil
}

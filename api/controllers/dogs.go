package controllers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/api/validators"
	"github.com/angelmondragon/pawfinderz-backend/internal/dogs"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

const multipartMemoryLimit = 4 << 20

func requesterID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

func formPointer(r *http.Request, field string) *string {
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	value := strings.TrimSpace(values[0])
	return &value
}

func formImage(r *http.Request) (*dogs.UploadedImage, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading image upload")
	}
	return &dogs.UploadedImage{FileName: header.Filename, Data: data}, nil
}

func parseDogForm(r *http.Request, maxBytes int64) error {
	if !isMultipart(r) {
		return pkgerrors.New(pkgerrors.CodeValidation, "expected multipart/form-data")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

func decodeSubmitInput(r *http.Request, maxBytes int64) (dogs.SubmitDogInput, error) {
	var input dogs.SubmitDogInput
	if err := parseDogForm(r, maxBytes); err != nil {
		return input, err
	}

	input.Name = strings.TrimSpace(r.FormValue("name"))
	input.Breed = formPointer(r, "breed")
	input.Color = formPointer(r, "color")
	input.Location = formPointer(r, "location")
	input.Description = formPointer(r, "description")
	input.ContactPhone = formPointer(r, "contact_phone")

	image, err := formImage(r)
	if err != nil {
		return input, err
	}
	input.Image = image

	if err := validators.ValidateStruct(&input); err != nil {
		return input, err
	}
	return input, nil
}

func decodeUpdateInput(r *http.Request, maxBytes int64) (dogs.UpdateDogInput, error) {
	var input dogs.UpdateDogInput

	if isMultipart(r) {
		if err := parseDogForm(r, maxBytes); err != nil {
			return input, err
		}
		input.Name = formPointer(r, "name")
		input.Breed = formPointer(r, "breed")
		input.Color = formPointer(r, "color")
		input.Location = formPointer(r, "location")
		input.Description = formPointer(r, "description")
		input.ContactPhone = formPointer(r, "contact_phone")

		image, err := formImage(r)
		if err != nil {
			return input, err
		}
		input.Image = image
		return input, nil
	}

	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return input, err
	}
	return input, nil
}

// SubmitDog handles a multipart lost or found report submission.
func SubmitDog(svc dogs.Service, category enums.DogCategory, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dog service unavailable"))
			return
		}

		ownerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeSubmitInput(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Submit(r.Context(), ownerID, category, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ListDogs returns the active reports for one category.
func ListDogs(svc dogs.Service, category enums.DogCategory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}

		responses.WriteSuccess(w, map[string][]dogs.DogDTO{"dogs": rows})
	}
}

// UpdateDog applies an owner-only partial update, optionally swapping the image.
func UpdateDog(svc dogs.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dog service unavailable"))
			return
		}

		ownerID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		petID, err := validators.ParsePetID(chi.URLParam(r, "petID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := decodeUpdateInput(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), ownerID, petID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

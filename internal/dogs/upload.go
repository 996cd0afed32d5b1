package dogs

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

var allowedImageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
}

var allowedImageMimes = []string{"image/jpeg", "image/png"}

// validateImage enforces the upload contract: jpeg/jpg/png extension, content
// that actually sniffs as one of those formats, and the configured size cap.
func validateImage(img *UploadedImage, maxBytes int64) error {
	if img == nil {
		return nil
	}
	ext := strings.ToLower(path.Ext(img.FileName))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "image must be a jpeg, jpg, or png file")
	}
	if int64(len(img.Data)) > maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds the %d byte upload limit", maxBytes))
	}
	if len(img.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}

	detected := mimetype.Detect(img.Data)
	for _, allowed := range allowedImageMimes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image content type %s is not allowed", detected.String()))
}

// imageRelPath builds the stored location: <category-dir>/<unix-millis>-<name>.
func imageRelPath(category enums.DogCategory, fileName string, now time.Time) string {
	clean := sanitizeFileName(fileName)
	if clean == "" {
		clean = "image" + strings.ToLower(path.Ext(fileName))
	}
	return fmt.Sprintf("%s/%d-%s", category.ImageDir(), now.UnixMilli(), clean)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range clean {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

package enums

import "fmt"

// DogCategory distinguishes the two report variants.
type DogCategory string

const (
	DogCategoryLost  DogCategory = "lost"
	DogCategoryFound DogCategory = "found"
)

var validDogCategories = []DogCategory{
	DogCategoryLost,
	DogCategoryFound,
}

// String returns the literal string for the category.
func (c DogCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is known.
func (c DogCategory) IsValid() bool {
	for _, candidate := range validDogCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsFound reports whether this is a found-dog report.
func (c DogCategory) IsFound() bool {
	return c == DogCategoryFound
}

// Opposite returns the counterpart category.
func (c DogCategory) Opposite() DogCategory {
	if c == DogCategoryLost {
		return DogCategoryFound
	}
	return DogCategoryLost
}

// ImageDir returns the upload directory for the category.
func (c DogCategory) ImageDir() string {
	if c == DogCategoryLost {
		return "lost-dogs"
	}
	return "found-dogs"
}

// ParseDogCategory converts raw input into a DogCategory.
func ParseDogCategory(value string) (DogCategory, error) {
	for _, candidate := range validDogCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dog category %q", value)
}

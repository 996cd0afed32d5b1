package matching

import (
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Eligible reports whether two reports may be compared at all. A pair
// qualifies only when the owners differ and exactly one side is a lost report
// and the other a found report. Same-owner and same-category pairs never match.
func Eligible(a, b *models.Dog) bool {
	if a == nil || b == nil {
		return false
	}
	if a.OwnerID == b.OwnerID {
		return false
	}
	if a.Category == b.Category {
		return false
	}
	lostFirst := a.Category == enums.DogCategoryLost && b.Category == enums.DogCategoryFound
	foundFirst := a.Category == enums.DogCategoryFound && b.Category == enums.DogCategoryLost
	return lostFirst || foundFirst
}

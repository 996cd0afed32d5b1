package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

type statsReader interface {
	Get(ctx context.Context) (*models.Stats, error)
}

// GetStats returns the reunification counter.
func GetStats(repo statsReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats unavailable"))
			return
		}

		stats, err := repo.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stats"))
			return
		}

		responses.WriteSuccess(w, map[string]int64{"reunited_count": stats.ReunitedCount})
	}
}

package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/google/uuid"
)

// ReportRef is the public slice of a report exposed on a match.
type ReportRef struct {
	PetID        int64     `json:"pet_id"`
	Category     string    `json:"category"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	ImagePath    *string   `json:"image_path,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
}

// Match pairs a lost report with a found report at a given confidence.
type Match struct {
	Lost                       ReportRef `json:"lost"`
	Found                      ReportRef `json:"found"`
	VisualSimilarityPercentage float64   `json:"visual_similarity_percentage"`
	ColorSimilarity            *float64  `json:"color_similarity,omitempty"`
	IsSelfMatch                bool      `json:"is_self_match"`
}

type reportRepository interface {
	ListMatchable(ctx context.Context) ([]models.Dog, error)
}

// ServiceParams bundles the aggregator dependencies.
type ServiceParams struct {
	Reports   reportRepository
	Extractor *Extractor
	Logger    *logger.Logger
	Metrics   *metrics.MatchingMetrics
	Workers   int
	Threshold float64
}

// Service runs the batch matching computation for one requesting user.
type Service struct {
	reports   reportRepository
	extractor *Extractor
	logg      *logger.Logger
	metrics   *metrics.MatchingMetrics
	workers   int
	threshold float64
}

// NewService validates and assembles the match aggregator.
func NewService(params ServiceParams) (*Service, error) {
	if params.Reports == nil {
		return nil, fmt.Errorf("report repository is required")
	}
	if params.Extractor == nil {
		return nil, fmt.Errorf("fingerprint extractor is required")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = 8
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{
		reports:   params.Reports,
		extractor: params.Extractor,
		logg:      params.Logger,
		metrics:   params.Metrics,
		workers:   workers,
		threshold: threshold,
	}, nil
}

// MatchesFor loads every matchable report, fingerprints them, scores all
// unordered pairs, and returns the accepted matches involving the requester
// in discovery order. Per-image failures skip that report; a store failure
// aborts the whole request.
func (s *Service) MatchesFor(ctx context.Context, userID uuid.UUID) ([]Match, error) {
	reports, err := s.reports.ListMatchable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load matchable reports")
	}
	s.metrics.SetEligibleReports(len(reports))

	fingerprints := s.extractAll(ctx, reports)

	started := time.Now()
	comparisons := 0
	matches := []Match{}
	for i := 0; i < len(reports); i++ {
		for j := i + 1; j < len(reports); j++ {
			a, b := &reports[i], &reports[j]
			if !Eligible(a, b) {
				continue
			}
			comparisons++
			score, ok := Score(fingerprints[i], fingerprints[j], s.threshold)
			if !ok {
				continue
			}
			matches = append(matches, buildMatch(a, b, score))
		}
	}
	s.metrics.ObservePhase("comparison", time.Since(started))
	s.metrics.AddComparisons(comparisons)

	mine := matches[:0:0]
	for _, m := range matches {
		if m.Lost.OwnerID == userID || m.Found.OwnerID == userID {
			mine = append(mine, m)
		}
	}
	s.metrics.AddMatches(len(mine))
	return mine, nil
}

// extractAll fans fingerprint extraction out over a bounded worker pool and
// waits for every slot to resolve before returning. Failed slots stay nil or
// hash-only; they never abort the batch.
func (s *Service) extractAll(ctx context.Context, reports []models.Dog) []*Fingerprint {
	started := time.Now()
	fingerprints := make([]*Fingerprint, len(reports))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i := range reports {
		report := &reports[i]
		if !report.HasImage() {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, imagePath string, petID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			fp, err := s.extractor.Extract(ctx, imagePath)
			if err != nil {
				s.metrics.IncExtractionFailure()
				if s.logg != nil {
					s.logg.Error(s.logg.WithPetID(ctx, petID), "fingerprint extraction failed", err)
				}
			}
			fingerprints[slot] = fp
		}(i, *report.ImagePath, report.PetID)
	}
	wg.Wait()

	s.metrics.ObservePhase("extraction", time.Since(started))
	return fingerprints
}

func buildMatch(a, b *models.Dog, score float64) Match {
	lost, found := a, b
	if lost.Category.IsFound() {
		lost, found = b, a
	}
	return Match{
		Lost:                       refFor(lost),
		Found:                      refFor(found),
		VisualSimilarityPercentage: score,
		ColorSimilarity:            ColorSimilarity(lost, found),
		IsSelfMatch:                false,
	}
}

func refFor(dog *models.Dog) ReportRef {
	return ReportRef{
		PetID:        dog.PetID,
		Category:     dog.Category.String(),
		OwnerID:      dog.OwnerID,
		Name:         dog.Name,
		ImagePath:    dog.ImagePath,
		ContactPhone: dog.ContactPhone,
	}
}

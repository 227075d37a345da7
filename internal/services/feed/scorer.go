package feed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/careerhub-go/internal/models"
)

// Scorer derives a display-only relevance score for a record. Real
// ranking is an external concern; implementations here never affect
// server-side ordering.
type Scorer func(record *models.ProjectRecord) float64

// PlaceholderScorer returns a randomized score in [50, 100). Used when no
// ranking signal is available.
func PlaceholderScorer() Scorer {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return func(record *models.ProjectRecord) float64 {
		mu.Lock()
		defer mu.Unlock()
		return 50 + rng.Float64()*50
	}
}

// StoredScorer prefers the score persisted on the record and falls back
// to the given scorer when none is stored
func StoredScorer(fallback Scorer) Scorer {
	return func(record *models.ProjectRecord) float64 {
		if record.MatchScore != nil {
			return *record.MatchScore
		}
		return fallback(record)
	}
}

// Package touring holds the pure tour computations: the walking-distance and
// duration estimator, and the proximity grouping used by the nearby-tours
// feed. Everything here is stateless and safe for concurrent use.
package touring

import (
	"math"
	"sort"
	"strings"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/pkg/geospatial"
)

// Tuning constants, kept tunable without touching the algorithm. Chosen
// empirically for compatibility with the mobile client's estimates.
const (
	// CityGridAdjustment converts straight-line distance into an
	// approximation of walkable street-grid distance.
	CityGridAdjustment = 1.2

	// WalkingSpeedMetersPerMinute is a leisurely tourist pace, dwell
	// time included (22 min/mile).
	WalkingSpeedMetersPerMinute = 73.15

	// NarrationWordsPerMinute is natural narrated pacing with pauses.
	NarrationWordsPerMinute = 130.0
)

// CountWords counts whitespace-separated tokens. Empty text counts 0.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateMetrics computes a tour's total walking distance and estimated
// duration from its ordered stop sequence. It never fails: stops missing
// coordinates contribute nothing to the distance, and missing narration
// contributes nothing to the duration.
//
// This is always a full recomputation over the current stop list. Callers
// must re-invoke it whenever the stop list's membership or order changes,
// and persist the result onto the owning tour.
func EstimateMetrics(stops []domain.TourStop) domain.TourMetrics {
	if len(stops) == 0 {
		return domain.TourMetrics{}
	}

	// Defensive: callers should already pass stops sorted by visit order.
	ordered := make([]domain.TourStop, len(stops))
	copy(ordered, stops)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	var total float64
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i].Location, ordered[i+1].Location
		if a == nil || b == nil {
			continue
		}
		total += geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}

	adjusted := total * CityGridAdjustment
	walkingMinutes := adjusted / WalkingSpeedMetersPerMinute

	totalWords := 0
	for _, s := range ordered {
		totalWords += CountWords(s.Narration)
	}
	narrationMinutes := float64(totalWords) / NarrationWordsPerMinute

	// Round duration up so the estimate is never optimistic.
	return domain.TourMetrics{
		DistanceMeters:  int(math.Round(adjusted)),
		DurationMinutes: int(math.Ceil(walkingMinutes + narrationMinutes)),
	}
}

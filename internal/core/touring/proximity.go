package touring

import (
	"sort"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/pkg/geospatial"
)

// RankedTour is a tour candidate paired with its distance from the origin.
type RankedTour struct {
	Tour           domain.TourSummary `json:"tour"`
	DistanceMeters float64            `json:"distance_meters"`
}

// ProximityResult is one page of the nearby-tours feed. Pagination is by
// whole neighborhood, not by tour count: a page contains every tour in up
// to pageSize neighborhoods, so the client always sees a neighborhood's
// tours together.
type ProximityResult struct {
	Tours              []RankedTour `json:"tours"`
	Neighborhoods      []string     `json:"neighborhoods"`
	TotalNeighborhoods int          `json:"total_neighborhoods"`
	NeighborhoodOffset int          `json:"neighborhood_offset"`
	HasMore            bool         `json:"has_more"`
}

// GroupByProximity ranks candidates by distance from origin and partitions
// them into pages of whole neighborhoods. Neighborhood order is first-seen
// in the distance-sorted list, so the neighborhood containing the closest
// tour always comes first. Candidates without a location are skipped, and
// a nil maxDistance means no distance cutoff.
//
// The sort is stable: candidates at exactly equal distance keep their
// input order. pageSize must be >= 1 and pageOffset >= 0; the caller is
// responsible for sanitising those.
func GroupByProximity(origin domain.GeoPoint, candidates []domain.TourSummary, pageSize, pageOffset int, maxDistance *float64) ProximityResult {
	ranked := make([]RankedTour, 0, len(candidates))
	for _, c := range candidates {
		if c.Location == nil {
			continue
		}
		d := geospatial.Haversine(origin.Lat, origin.Lon, c.Location.Lat, c.Location.Lon)
		if maxDistance != nil && d > *maxDistance {
			continue
		}
		if c.Neighborhood == "" {
			c.Neighborhood = domain.UnspecifiedNeighborhood
		}
		ranked = append(ranked, RankedTour{Tour: c, DistanceMeters: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})

	// Record each neighborhood the first time it appears in distance order.
	neighborhoods := []string{}
	seen := make(map[string]bool)
	for _, r := range ranked {
		if !seen[r.Tour.Neighborhood] {
			seen[r.Tour.Neighborhood] = true
			neighborhoods = append(neighborhoods, r.Tour.Neighborhood)
		}
	}

	total := len(neighborhoods)

	start := pageOffset
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	selected := neighborhoods[start:end]

	inPage := make(map[string]bool, len(selected))
	for _, n := range selected {
		inPage[n] = true
	}

	tours := make([]RankedTour, 0, len(ranked))
	for _, r := range ranked {
		if inPage[r.Tour.Neighborhood] {
			tours = append(tours, r)
		}
	}

	return ProximityResult{
		Tours:              tours,
		Neighborhoods:      selected,
		TotalNeighborhoods: total,
		NeighborhoodOffset: pageOffset,
		HasMore:            pageOffset+pageSize < total,
	}
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
	"github.com/strollcast/strollcast/internal/core/touring"
	"github.com/strollcast/strollcast/internal/pkg/geospatial"
)

// DiscoveryService powers the mobile client's "nearby" feeds: tours
// grouped by neighborhood, and closest-city resolution.
type DiscoveryService struct {
	tours  ports.TourRepository
	cities ports.CityRepository
	cache  ports.CacheService
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(tours ports.TourRepository, cities ports.CityRepository, cache ports.CacheService) *DiscoveryService {
	return &DiscoveryService{tours: tours, cities: cities, cache: cache}
}

// NearbyTours returns published tours near origin, grouped into pages of
// whole neighborhoods ordered by which neighborhood holds the closest tour.
func (s *DiscoveryService) NearbyTours(ctx context.Context, origin domain.GeoPoint, city string, pageSize, pageOffset int, maxDistance *float64) (*touring.ProximityResult, error) {
	if pageSize <= 0 || pageSize > 20 {
		pageSize = 5
	}
	if pageOffset < 0 {
		pageOffset = 0
	}

	// Try cache
	cacheKey := fmt.Sprintf("tours:nearby:%.4f:%.4f:%s:%d:%d", origin.Lat, origin.Lon, city, pageSize, pageOffset)
	if maxDistance != nil {
		cacheKey += fmt.Sprintf(":%.0f", *maxDistance)
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res touring.ProximityResult
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, nil
			}
		}
	}

	candidates, err := s.tours.PublishedSummaries(ctx, city, "")
	if err != nil {
		return nil, fmt.Errorf("load tour summaries: %w", err)
	}

	// Cheap box prefilter before the per-candidate haversine; the box is a
	// superset of the distance circle, so nothing in range is lost.
	if maxDistance != nil {
		minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(origin.Lat, origin.Lon, *maxDistance)
		kept := candidates[:0]
		for _, c := range candidates {
			if c.Location == nil {
				continue
			}
			if c.Location.Lat >= minLat && c.Location.Lat <= maxLat &&
				c.Location.Lon >= minLon && c.Location.Lon <= maxLon {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	res := touring.GroupByProximity(origin, candidates, pageSize, pageOffset, maxDistance)

	// Cache for 5 minutes (published tours don't change frequently)
	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return &res, nil
}

// Cities returns all active cities, each annotated with its distance from
// origin when one is supplied.
func (s *DiscoveryService) Cities(ctx context.Context, origin *domain.GeoPoint) ([]domain.City, error) {
	cities, err := s.cities.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if origin != nil {
		for i := range cities {
			km := geospatial.Haversine(origin.Lat, origin.Lon, cities[i].Location.Lat, cities[i].Location.Lon) / 1000
			km = math.Round(km*100) / 100
			cities[i].DistanceKm = &km
		}
	}
	return cities, nil
}

// ClosestCity returns the active city nearest to origin, or nil when no
// cities exist.
func (s *DiscoveryService) ClosestCity(ctx context.Context, origin domain.GeoPoint) (*domain.City, error) {
	cities, err := s.Cities(ctx, &origin)
	if err != nil {
		return nil, err
	}
	var closest *domain.City
	for i := range cities {
		if closest == nil || *cities[i].DistanceKm < *closest.DistanceKm {
			closest = &cities[i]
		}
	}
	return closest, nil
}

// ClosestCityByName returns the nearest active city with the given name.
// Cities can share a name (Springfield), so proximity disambiguates.
func (s *DiscoveryService) ClosestCityByName(ctx context.Context, name string, origin domain.GeoPoint) (*domain.City, error) {
	cities, err := s.cities.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("city %q not found", name)
	}
	var closest *domain.City
	var best float64
	for i := range cities {
		d := geospatial.Haversine(origin.Lat, origin.Lon, cities[i].Location.Lat, cities[i].Location.Lon)
		if closest == nil || d < best {
			closest = &cities[i]
			best = d
		}
	}
	km := math.Round(best/10) / 100
	closest.DistanceKm = &km
	return closest, nil
}

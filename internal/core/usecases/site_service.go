package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
)

// SiteService handles site-related business logic.
type SiteService struct {
	sites  ports.SiteRepository
	places ports.PlaceDirectory
	cache  ports.CacheService
	tours  *TourService
}

// NewSiteService creates a new SiteService. places and cache may be nil.
func NewSiteService(sites ports.SiteRepository, places ports.PlaceDirectory, cache ports.CacheService, tours *TourService) *SiteService {
	return &SiteService{sites: sites, places: places, cache: cache, tours: tours}
}

// Create stores a new site.
func (s *SiteService) Create(ctx context.Context, site *domain.Site) (*domain.Site, error) {
	if site.Title == "" {
		return nil, fmt.Errorf("site title is required")
	}
	if err := s.sites.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return site, nil
}

// Update applies changes and recomputes metrics for every tour containing
// the site, since its coordinates or narration may have changed.
func (s *SiteService) Update(ctx context.Context, site *domain.Site) error {
	if err := s.sites.Update(ctx, site); err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	return s.recalculateContaining(ctx, site.ID)
}

// Delete removes a site and recomputes metrics for every tour that
// contained it. A site can be shared across tours, so all of them are
// affected.
func (s *SiteService) Delete(ctx context.Context, siteID string) error {
	affected, err := s.sites.ToursContaining(ctx, siteID)
	if err != nil {
		return fmt.Errorf("find containing tours: %w", err)
	}
	if err := s.sites.Delete(ctx, siteID); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if s.tours != nil {
		return s.tours.RecalculateAll(ctx, affected)
	}
	return nil
}

// GetByID returns a single site.
func (s *SiteService) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	cacheKey := "sites:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var site domain.Site
			if err := json.Unmarshal(data, &site); err == nil {
				return &site, nil
			}
		}
	}

	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(site); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return site, nil
}

// GetByIDs returns multiple sites by their IDs.
func (s *SiteService) GetByIDs(ctx context.Context, ids []string) ([]domain.Site, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.sites.GetByIDs(ctx, ids)
}

// FindNearby returns sites within radiusMeters of the given point.
func (s *SiteService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Site, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("sites:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sites []domain.Site
			if err := json.Unmarshal(data, &sites); err == nil {
				return sites, nil
			}
		}
	}

	sites, err := s.sites.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sites); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return sites, nil
}

// Search performs full-text search on site titles.
func (s *SiteService) Search(ctx context.Context, query string, limit int) ([]domain.Site, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.sites.Search(ctx, query, limit)
}

// EnrichFromPlaces fills in address and place metadata from the places
// directory and persists the result.
func (s *SiteService) EnrichFromPlaces(ctx context.Context, siteID string) (*domain.Site, error) {
	if s.places == nil {
		return nil, fmt.Errorf("places directory not configured")
	}
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	var found *domain.Site
	if site.PlaceID != "" {
		found, err = s.places.PlaceDetails(ctx, site.PlaceID)
	} else {
		found, err = s.places.FindPlace(ctx, site.Title+" "+site.City)
	}
	if err != nil {
		return nil, fmt.Errorf("places lookup: %w", err)
	}

	site.PlaceID = found.PlaceID
	site.FormattedAddress = found.FormattedAddress
	if site.WebURL == "" {
		site.WebURL = found.WebURL
	}
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, fmt.Errorf("persist enrichment: %w", err)
	}
	return site, nil
}

func (s *SiteService) recalculateContaining(ctx context.Context, siteID string) error {
	if s.tours == nil {
		return nil
	}
	affected, err := s.sites.ToursContaining(ctx, siteID)
	if err != nil {
		return fmt.Errorf("find containing tours: %w", err)
	}
	return s.tours.RecalculateAll(ctx, affected)
}

package usecases_test

import (
	"context"

	"github.com/strollcast/strollcast/internal/core/domain"
)

// --- Mock TourRepository ---

type mockTourRepo struct {
	createFn        func(ctx context.Context, tour *domain.Tour) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Tour, error)
	getStopsFn      func(ctx context.Context, tourID string) ([]domain.TourStop, error)
	setMetricsFn    func(ctx context.Context, tourID string, m domain.TourMetrics) error
	setRatingFn     func(ctx context.Context, tourID string, avg float64, count int) error
	summariesFn     func(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error)
	updateFn        func(ctx context.Context, tour *domain.Tour) error
	removeStopFn    func(ctx context.Context, tourID, siteID string) error
	reorderStopsFn  func(ctx context.Context, tourID string, ids []string) error
	addStopFn       func(ctx context.Context, tourID, siteID string, order int) error
	listFn          func(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error)
	deleteFn        func(ctx context.Context, id string) error
	deleteCallCount int
}

func (m *mockTourRepo) Create(ctx context.Context, tour *domain.Tour) error {
	if m.createFn != nil {
		return m.createFn(ctx, tour)
	}
	return nil
}

func (m *mockTourRepo) Update(ctx context.Context, tour *domain.Tour) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tour)
	}
	return nil
}

func (m *mockTourRepo) Delete(ctx context.Context, id string) error {
	m.deleteCallCount++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTourRepo) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Tour{ID: id}, nil
}

func (m *mockTourRepo) List(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status, city, neighborhood, ownerID)
	}
	return nil, nil
}

func (m *mockTourRepo) GetStops(ctx context.Context, tourID string) ([]domain.TourStop, error) {
	if m.getStopsFn != nil {
		return m.getStopsFn(ctx, tourID)
	}
	return nil, nil
}

func (m *mockTourRepo) AddStop(ctx context.Context, tourID, siteID string, order int) error {
	if m.addStopFn != nil {
		return m.addStopFn(ctx, tourID, siteID, order)
	}
	return nil
}

func (m *mockTourRepo) RemoveStop(ctx context.Context, tourID, siteID string) error {
	if m.removeStopFn != nil {
		return m.removeStopFn(ctx, tourID, siteID)
	}
	return nil
}

func (m *mockTourRepo) ReorderStops(ctx context.Context, tourID string, ids []string) error {
	if m.reorderStopsFn != nil {
		return m.reorderStopsFn(ctx, tourID, ids)
	}
	return nil
}

func (m *mockTourRepo) SetMetrics(ctx context.Context, tourID string, metrics domain.TourMetrics) error {
	if m.setMetricsFn != nil {
		return m.setMetricsFn(ctx, tourID, metrics)
	}
	return nil
}

func (m *mockTourRepo) SetRating(ctx context.Context, tourID string, avg float64, count int) error {
	if m.setRatingFn != nil {
		return m.setRatingFn(ctx, tourID, avg, count)
	}
	return nil
}

func (m *mockTourRepo) SetAudioURL(ctx context.Context, tourID, audioURL string) error { return nil }

func (m *mockTourRepo) SetStopAudio(ctx context.Context, tourID, siteID, audioURL string) error {
	return nil
}

func (m *mockTourRepo) PublishedSummaries(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error) {
	if m.summariesFn != nil {
		return m.summariesFn(ctx, city, ownerID)
	}
	return nil, nil
}

// --- Mock SiteRepository ---

type mockSiteRepo struct {
	getByIDFn         func(ctx context.Context, id string) (*domain.Site, error)
	toursContainingFn func(ctx context.Context, siteID string) ([]string, error)
	deleteFn          func(ctx context.Context, id string) error
	updateFn          func(ctx context.Context, site *domain.Site) error
	findNearbyFn      func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Site, error)
	searchFn          func(ctx context.Context, query string, limit int) ([]domain.Site, error)
}

func (m *mockSiteRepo) Create(ctx context.Context, site *domain.Site) error { return nil }
func (m *mockSiteRepo) Update(ctx context.Context, site *domain.Site) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, site)
	}
	return nil
}
func (m *mockSiteRepo) UpsertBatch(ctx context.Context, sites []domain.Site) error { return nil }
func (m *mockSiteRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockSiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Site{ID: id}, nil
}
func (m *mockSiteRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Site, error) {
	return nil, nil
}
func (m *mockSiteRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Site, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}
func (m *mockSiteRepo) Search(ctx context.Context, query string, limit int) ([]domain.Site, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}
func (m *mockSiteRepo) ToursContaining(ctx context.Context, siteID string) ([]string, error) {
	if m.toursContainingFn != nil {
		return m.toursContainingFn(ctx, siteID)
	}
	return nil, nil
}

// --- Mock CityRepository ---

type mockCityRepo struct {
	listActiveFn func(ctx context.Context) ([]domain.City, error)
	findByNameFn func(ctx context.Context, name string) ([]domain.City, error)
}

func (m *mockCityRepo) Create(ctx context.Context, city *domain.City) error { return nil }
func (m *mockCityRepo) Update(ctx context.Context, city *domain.City) error { return nil }
func (m *mockCityRepo) Deactivate(ctx context.Context, id string) error     { return nil }
func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	return nil, nil
}
func (m *mockCityRepo) ListActive(ctx context.Context) ([]domain.City, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}
func (m *mockCityRepo) FindByName(ctx context.Context, name string) ([]domain.City, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}

// --- Mock FeedbackRepository ---

type mockFeedbackRepo struct {
	createFn        func(ctx context.Context, fb *domain.Feedback) error
	ratingForTourFn func(ctx context.Context, tourID string) (float64, int, error)
	setStatusFn     func(ctx context.Context, id, status, notes, reviewer string) error
}

func (m *mockFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	if m.createFn != nil {
		return m.createFn(ctx, fb)
	}
	return nil
}
func (m *mockFeedbackRepo) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) ListBySite(ctx context.Context, siteID string) ([]domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) SetStatus(ctx context.Context, id, status, notes, reviewer string) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status, notes, reviewer)
	}
	return nil
}
func (m *mockFeedbackRepo) RatingForTour(ctx context.Context, tourID string) (float64, int, error) {
	if m.ratingForTourFn != nil {
		return m.ratingForTourFn(ctx, tourID)
	}
	return 0, 0, nil
}

// --- Mock AudioCacheRepository ---

type mockAudioCacheRepo struct {
	findByHashFn func(ctx context.Context, hash string) (*domain.AudioCacheEntry, error)
	insertFn     func(ctx context.Context, entry *domain.AudioCacheEntry) error
	touched      []string
}

func (m *mockAudioCacheRepo) FindByHash(ctx context.Context, hash string) (*domain.AudioCacheEntry, error) {
	if m.findByHashFn != nil {
		return m.findByHashFn(ctx, hash)
	}
	return nil, nil
}
func (m *mockAudioCacheRepo) Insert(ctx context.Context, entry *domain.AudioCacheEntry) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, entry)
	}
	return nil
}
func (m *mockAudioCacheRepo) TouchAccess(ctx context.Context, id string) error {
	m.touched = append(m.touched, id)
	return nil
}

// --- Mock external services ---

type mockSynthesizer struct {
	synthesizeFn func(ctx context.Context, text, voiceID string) ([]byte, error)
	calls        int
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	m.calls++
	if m.synthesizeFn != nil {
		return m.synthesizeFn(ctx, text, voiceID)
	}
	return []byte("mp3-bytes"), nil
}

type mockMediaStore struct {
	uploadFn func(ctx context.Context, key, contentType string, data []byte) (string, error)
}

func (m *mockMediaStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, contentType, data)
	}
	return "https://media.example.com/" + key, nil
}
func (m *mockMediaStore) PresignedGet(ctx context.Context, key string, expiry int) (string, error) {
	return "https://media.example.com/" + key, nil
}
func (m *mockMediaStore) Delete(ctx context.Context, key string) error { return nil }

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/strollcast/strollcast/internal/adapters/http"
	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

const testSecret = "handlers-test-secret"

// ---- Mock repositories ----

type mockTourRepo struct {
	createFn    func(ctx context.Context, tour *domain.Tour) error
	getByIDFn   func(ctx context.Context, id string) (*domain.Tour, error)
	listFn      func(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error)
	getStopsFn  func(ctx context.Context, tourID string) ([]domain.TourStop, error)
	summariesFn func(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error)
}

func (m *mockTourRepo) Create(ctx context.Context, tour *domain.Tour) error {
	if m.createFn != nil {
		return m.createFn(ctx, tour)
	}
	return nil
}
func (m *mockTourRepo) Update(ctx context.Context, tour *domain.Tour) error { return nil }
func (m *mockTourRepo) Delete(ctx context.Context, id string) error         { return nil }
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
	return nil
}
func (m *mockTourRepo) RemoveStop(ctx context.Context, tourID, siteID string) error { return nil }
func (m *mockTourRepo) ReorderStops(ctx context.Context, tourID string, siteIDsInOrder []string) error {
	return nil
}
func (m *mockTourRepo) SetMetrics(ctx context.Context, tourID string, metrics domain.TourMetrics) error {
	return nil
}
func (m *mockTourRepo) SetRating(ctx context.Context, tourID string, average float64, count int) error {
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

type mockSiteRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Site, error)
	getByIDsFn   func(ctx context.Context, ids []string) ([]domain.Site, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Site, error)
	searchFn     func(ctx context.Context, query string, limit int) ([]domain.Site, error)
}

func (m *mockSiteRepo) Create(ctx context.Context, site *domain.Site) error       { return nil }
func (m *mockSiteRepo) Update(ctx context.Context, site *domain.Site) error       { return nil }
func (m *mockSiteRepo) UpsertBatch(ctx context.Context, sites []domain.Site) error { return nil }
func (m *mockSiteRepo) Delete(ctx context.Context, id string) error               { return nil }
func (m *mockSiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockSiteRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Site, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
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
	return nil, nil
}

type mockCityRepo struct {
	listActiveFn func(ctx context.Context) ([]domain.City, error)
	findByNameFn func(ctx context.Context, name string) ([]domain.City, error)
}

func (m *mockCityRepo) Create(ctx context.Context, city *domain.City) error { return nil }
func (m *mockCityRepo) Update(ctx context.Context, city *domain.City) error { return nil }
func (m *mockCityRepo) Deactivate(ctx context.Context, id string) error     { return nil }
func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	return nil, fmt.Errorf("not found")
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

type mockFeedbackRepo struct {
	createFn       func(ctx context.Context, fb *domain.Feedback) error
	listByStatusFn func(ctx context.Context, status string, limit int) ([]domain.Feedback, error)
}

func (m *mockFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	if m.createFn != nil {
		return m.createFn(ctx, fb)
	}
	return nil
}
func (m *mockFeedbackRepo) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	return &domain.Feedback{ID: id, Status: "pending"}, nil
}
func (m *mockFeedbackRepo) ListByTour(ctx context.Context, tourID string) ([]domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) ListBySite(ctx context.Context, siteID string) ([]domain.Feedback, error) {
	return nil, nil
}
func (m *mockFeedbackRepo) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Feedback, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, status, limit)
	}
	return nil, nil
}
func (m *mockFeedbackRepo) SetStatus(ctx context.Context, id, status, adminNotes, reviewerID string) error {
	return nil
}
func (m *mockFeedbackRepo) RatingForTour(ctx context.Context, tourID string) (float64, int, error) {
	return 0, 0, nil
}

type mockUserRepo struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = "user-1"
	return nil
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id string) error { return nil }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	tours := usecases.NewTourService(&mockTourRepo{}, nil, nil)
	d := &handler.Dependencies{
		Tours:     tours,
		Sites:     usecases.NewSiteService(&mockSiteRepo{}, nil, nil, tours),
		Discovery: usecases.NewDiscoveryService(&mockTourRepo{}, &mockCityRepo{}, nil),
		Feedback:  usecases.NewFeedbackService(&mockFeedbackRepo{}, &mockTourRepo{}, nil),
		Users:     usecases.NewUserService(&mockUserRepo{}),
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := handler.IssueToken(testSecret, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Tour handler tests ----

func TestListTours_AnonymousSeesPublishedOnly(t *testing.T) {
	var requestedStatus string
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			listFn: func(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error) {
				requestedStatus = status
				return []domain.Tour{{ID: "t1", Name: "Soho Secrets", Status: "published"}}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tours", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if requestedStatus != "published" {
		t.Errorf("anonymous list should filter to published, got %q", requestedStatus)
	}
}

func TestListTours_Pagination(t *testing.T) {
	tours := make([]domain.Tour, 5)
	for i := range tours {
		tours[i] = domain.Tour{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Tour %d", i)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			listFn: func(ctx context.Context, status, city, neighborhood, ownerID string) ([]domain.Tour, error) {
				return tours, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tours?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Tour `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 tours in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}
}

func TestCreateTour_RequiresAuth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/tours", strings.NewReader(`{"name":"Harlem Jazz Walk"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateTour_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			createFn: func(ctx context.Context, tour *domain.Tour) error {
				tour.ID = "t-new"
				return nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/tours", strings.NewReader(`{"name":"Harlem Jazz Walk","city":"New York"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "creator-1", "creator"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var tour domain.Tour
	json.NewDecoder(resp.Body).Decode(&tour)
	if tour.OwnerID != "creator-1" {
		t.Errorf("expected owner creator-1, got %s", tour.OwnerID)
	}
	if tour.Status != "draft" {
		t.Errorf("new tours should start as draft, got %s", tour.Status)
	}
}

func TestUpdateTour_NotOwner(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Tour, error) {
				return &domain.Tour{ID: id, OwnerID: "someone-else"}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("PUT", "/v1/tours/t1", strings.NewReader(`{"name":"Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "creator-1", "creator"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetTour_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Tour, error) {
				return &domain.Tour{ID: id, Name: "Village Vanguard Loop"}, nil
			},
			getStopsFn: func(ctx context.Context, tourID string) ([]domain.TourStop, error) {
				return []domain.TourStop{{SiteID: "s1", Title: "Washington Square", Order: 1}}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tours/t1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var tour domain.Tour
	json.NewDecoder(resp.Body).Decode(&tour)
	if tour.Name != "Village Vanguard Loop" {
		t.Errorf("unexpected tour name: %s", tour.Name)
	}
	if len(tour.Stops) != 1 {
		t.Errorf("expected 1 stop, got %d", len(tour.Stops))
	}
}

func TestGetTour_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Tour, error) {
				return nil, fmt.Errorf("not found")
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tours/nonexistent-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPublishTour_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Tours = usecases.NewTourService(&mockTourRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Tour, error) {
				return &domain.Tour{ID: id, OwnerID: "creator-1", Status: "draft"}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/tours/t1/publish", nil)
	req.Header.Set("Authorization", bearerToken(t, "creator-1", "creator"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var tour domain.Tour
	json.NewDecoder(resp.Body).Decode(&tour)
	if tour.Status != "published" {
		t.Errorf("expected published, got %s", tour.Status)
	}
	if tour.PublishedAt == nil {
		t.Error("expected published_at to be stamped")
	}
}

// ---- Discovery handler tests ----

func TestNearbyTours_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/tours/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestNearbyTours_GroupsByNeighborhood(t *testing.T) {
	midtown := &domain.GeoPoint{Lat: 40.7549, Lon: -73.9840}
	chelsea := &domain.GeoPoint{Lat: 40.7465, Lon: -74.0014}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Discovery = usecases.NewDiscoveryService(&mockTourRepo{
			summariesFn: func(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error) {
				return []domain.TourSummary{
					{ID: "t1", Name: "Chelsea Galleries", Neighborhood: "Chelsea", Location: chelsea},
					{ID: "t2", Name: "Broadway Lights", Neighborhood: "Midtown", Location: midtown},
				}, nil
			},
		}, &mockCityRepo{}, nil)
	})
	app := setupApp(deps)

	// Query from Times Square: Midtown tours are closer.
	req := httptest.NewRequest("GET", "/v1/tours/nearby?lat=40.7580&lon=-73.9855", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Neighborhoods []string `json:"neighborhoods"`
		HasMore       bool     `json:"has_more"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Neighborhoods) != 2 {
		t.Fatalf("expected 2 neighborhoods, got %d", len(result.Neighborhoods))
	}
	if result.Neighborhoods[0] != "Midtown" {
		t.Errorf("expected Midtown first, got %s", result.Neighborhoods[0])
	}
}

func TestClosestCity_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Discovery = usecases.NewDiscoveryService(&mockTourRepo{}, &mockCityRepo{
			listActiveFn: func(ctx context.Context) ([]domain.City, error) {
				return []domain.City{
					{ID: "c1", Name: "New York", Location: domain.GeoPoint{Lat: 40.7128, Lon: -74.0060}},
					{ID: "c2", Name: "Boston", Location: domain.GeoPoint{Lat: 42.3601, Lon: -71.0589}},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/cities/closest?lat=40.73&lon=-73.99", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var city domain.City
	json.NewDecoder(resp.Body).Decode(&city)
	if city.Name != "New York" {
		t.Errorf("expected New York, got %s", city.Name)
	}
}

func TestClosestCity_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/cities/closest", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Site handler tests ----

func TestNearbySites_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Sites = usecases.NewSiteService(&mockSiteRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Site, error) {
				return []domain.Site{
					{ID: "s1", Title: "Flatiron Building", Location: domain.GeoPoint{Lat: 40.7411, Lon: -73.9897}},
				}, nil
			},
		}, nil, nil, d.Tours)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/sites/nearby?lat=40.74&lon=-73.99&radius=500", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sites []domain.Site
	json.NewDecoder(resp.Body).Decode(&sites)
	if len(sites) != 1 {
		t.Errorf("expected 1 site, got %d", len(sites))
	}
}

func TestNearbySites_BadRadius(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sites/nearby?lat=40.74&lon=-73.99&radius=50000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchSites_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sites/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBatchSites_MissingIDs(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sites/batch", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Feedback handler tests ----

func TestCreateFeedback_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Feedback = usecases.NewFeedbackService(&mockFeedbackRepo{
			createFn: func(ctx context.Context, fb *domain.Feedback) error {
				fb.ID = "fb-1"
				return nil
			},
		}, &mockTourRepo{}, nil)
	})
	app := setupApp(deps)

	body := `{"tour_id":"t1","type":"comment","comment":"loved the jazz stop"}`
	req := httptest.NewRequest("POST", "/v1/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var fb domain.Feedback
	json.NewDecoder(resp.Body).Decode(&fb)
	if fb.Status != "pending" {
		t.Errorf("new feedback should be pending, got %s", fb.Status)
	}
}

func TestCreateFeedback_InvalidType(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"tour_id":"t1","type":"praise","comment":"nope"}`
	req := httptest.NewRequest("POST", "/v1/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPendingFeedback_RequiresAdmin(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/feedback/pending", nil)
	req.Header.Set("Authorization", bearerToken(t, "creator-1", "creator"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
}

func TestPendingFeedback_AdminOK(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Feedback = usecases.NewFeedbackService(&mockFeedbackRepo{
			listByStatusFn: func(ctx context.Context, status string, limit int) ([]domain.Feedback, error) {
				if status != "pending" {
					t.Errorf("expected pending status filter, got %s", status)
				}
				return []domain.Feedback{{ID: "fb-1", Status: "pending"}}, nil
			},
		}, &mockTourRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/feedback/pending", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// ---- Auth handler tests ----

func TestRegister_Success(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"email":"maya@example.com","password":"correct-horse","name":"Maya"}`
	req := httptest.NewRequest("POST", "/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.User.Role != "creator" {
		t.Errorf("expected creator role, got %s", result.User.Role)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Users = usecases.NewUserService(&mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
				return &domain.User{ID: "existing", Email: email}, nil
			},
		})
	})
	app := setupApp(deps)

	body := `{"email":"maya@example.com","password":"correct-horse"}`
	req := httptest.NewRequest("POST", "/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"email":"nobody@example.com","password":"wrong"}`
	req := httptest.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Users = usecases.NewUserService(&mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
				return &domain.User{ID: "user-1", Email: email, Role: "creator", Active: true, PasswordHash: string(hash)}, nil
			},
		})
	})
	app := setupApp(deps)

	body := `{"email":"maya@example.com","password":"correct-horse"}`
	req := httptest.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
}

// ---- Deprecation tests ----

func TestLegacyNearby_DeprecationHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/nearby?lat=40.75&lon=-73.98", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header on legacy route")
	}
	if !strings.Contains(resp.Header.Get("Link"), "/v1/tours/nearby") {
		t.Errorf("expected successor Link header, got %q", resp.Header.Get("Link"))
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", result["status"])
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Cities(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Discovery = usecases.NewDiscoveryService(&mockTourRepo{}, &mockCityRepo{
			listActiveFn: func(ctx context.Context) ([]domain.City, error) {
				return []domain.City{{ID: "c1", Name: "New York"}}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	body := `{"query":"{ cities { id name } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Cities []struct {
				Name string `json:"name"`
			} `json:"cities"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data.Cities) != 1 || result.Data.Cities[0].Name != "New York" {
		t.Errorf("unexpected graphql result: %+v", result.Data)
	}
}

func TestWebSocketRoute_AbsentWithoutNATS(t *testing.T) {
	// With no NATS connection the relay endpoint is never registered, so
	// the route 404s instead of panicking inside the upgrade handler.
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unregistered /ws, got %d", resp.StatusCode)
	}
}

func TestNearbyTours_NullIslandIsValid(t *testing.T) {
	// Param presence, not zero values, decides whether lat/lon were sent,
	// so the equator/prime-meridian origin is queryable.
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Discovery = usecases.NewDiscoveryService(&mockTourRepo{
			summariesFn: func(ctx context.Context, city, ownerID string) ([]domain.TourSummary, error) {
				return nil, nil
			},
		}, &mockCityRepo{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tours/nearby?lat=0&lon=0", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for lat=0&lon=0, got %d", resp.StatusCode)
	}
}

func TestNearbyTours_LoneLatRejected(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/tours/nearby?lat=40.75", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for missing lon, got %d", resp.StatusCode)
	}
}

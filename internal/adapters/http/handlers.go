package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/usecases"
	"github.com/strollcast/strollcast/internal/pkg/metrics"
)

// queryOrigin reads lat/lon query params. Presence is checked rather than
// zero values, so coordinates on the equator or prime meridian work.
func queryOrigin(c *fiber.Ctx) (domain.GeoPoint, bool) {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return domain.GeoPoint{}, false
	}
	return domain.GeoPoint{
		Lat: c.QueryFloat("lat", 0),
		Lon: c.QueryFloat("lon", 0),
	}, true
}

// ContentStats holds row counts across the content tables.
type ContentStats struct {
	Tours          int    `json:"tours"`
	PublishedTours int    `json:"published_tours"`
	Sites          int    `json:"sites"`
	Cities         int    `json:"cities"`
	Feedback       int    `json:"feedback"`
	LastUpdate     string `json:"last_update,omitempty"`
}

// ContentStatsHandler returns row counts from the content tables.
func ContentStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats ContentStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM tours),
				(SELECT count(*) FROM tours WHERE status = 'published'),
				(SELECT count(*) FROM sites),
				(SELECT count(*) FROM cities),
				(SELECT count(*) FROM feedback),
				COALESCE((SELECT max(updated_at)::text FROM tours), '')
		`)
		if err := row.Scan(&stats.Tours, &stats.PublishedTours, &stats.Sites,
			&stats.Cities, &stats.Feedback, &stats.LastUpdate); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ---- Tours ----

// ListToursHandler lists tours with optional filters. Anonymous callers
// only see published tours; ?mine=true restricts to the caller's own.
func ListToursHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status")
		city := c.Query("city")
		neighborhood := c.Query("neighborhood")

		ownerID := ""
		if c.QueryBool("mine", false) {
			ownerID = currentUserID(c)
			if ownerID == "" {
				return errUnauthorized(c, "mine=true requires authentication")
			}
		} else if currentUserID(c) == "" && status == "" {
			// Unauthenticated browsing only sees the public catalogue.
			status = domain.TourStatusPublished
		}

		tours, err := deps.Tours.List(c.Context(), status, city, neighborhood, ownerID)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(tours)
		if offset >= total {
			tours = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			tours = tours[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: tours, Pagination: pg})
	}
}

// CreateTourHandler creates a draft tour owned by the caller.
func CreateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tour domain.Tour
		if err := c.BodyParser(&tour); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Tours.Create(c.Context(), currentUserID(c), &tour)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(created)
	}
}

// GetTourHandler returns a tour with its ordered stop list.
func GetTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "tour id is required")
		}
		tour, err := deps.Tours.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "tour not found")
		}
		return c.JSON(tour)
	}
}

// UpdateTourHandler rewrites a tour's editable fields. Owner only.
func UpdateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tour domain.Tour
		if err := c.BodyParser(&tour); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		tour.ID = c.Params("id")

		if err := deps.Tours.Update(c.Context(), currentUserID(c), &tour); err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(tour)
	}
}

// DeleteTourHandler removes a tour. Owner only.
func DeleteTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Tours.Delete(c.Context(), currentUserID(c), c.Params("id")); err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errNotFound(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// PublishTourHandler makes a tour publicly discoverable and kicks off
// narration generation.
func PublishTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tour, err := deps.Tours.Publish(c.Context(), currentUserID(c), c.Params("id"))
		if err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errBadRequest(c, err.Error())
		}
		metrics.ToursPublished.Inc()
		return c.JSON(tour)
	}
}

// AddTourSiteHandler appends a site to a tour's stop list.
func AddTourSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			SiteID string `json:"site_id"`
			Order  int    `json:"order"`
		}
		if err := c.BodyParser(&body); err != nil || body.SiteID == "" {
			return errBadRequest(c, "site_id is required")
		}

		err := deps.Tours.AddSite(c.Context(), currentUserID(c), c.Params("id"), body.SiteID, body.Order)
		if err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errBadRequest(c, err.Error())
		}
		metrics.MetricsRecalculations.Inc()
		return c.SendStatus(204)
	}
}

// RemoveTourSiteHandler detaches a site from a tour.
func RemoveTourSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Tours.RemoveSite(c.Context(), currentUserID(c), c.Params("id"), c.Params("siteID"))
		if err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errBadRequest(c, err.Error())
		}
		metrics.MetricsRecalculations.Inc()
		return c.SendStatus(204)
	}
}

// ReorderTourSitesHandler rewrites the visit order of a tour's stops.
func ReorderTourSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			SiteIDs []string `json:"site_ids"`
		}
		if err := c.BodyParser(&body); err != nil || len(body.SiteIDs) == 0 {
			return errBadRequest(c, "site_ids is required")
		}

		err := deps.Tours.ReorderSites(c.Context(), currentUserID(c), c.Params("id"), body.SiteIDs)
		if err != nil {
			if errors.Is(err, usecases.ErrNotOwner) {
				return errForbidden(c, "you do not own this tour")
			}
			return errBadRequest(c, err.Error())
		}
		metrics.MetricsRecalculations.Inc()
		return c.SendStatus(204)
	}
}

// RecalculateTourHandler forces a metrics recomputation from the current
// stop list.
func RecalculateTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Tours.RecalculateMetrics(c.Context(), c.Params("id")); err != nil {
			return errInternal(c, err.Error())
		}
		metrics.MetricsRecalculations.Inc()

		tour, err := deps.Tours.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "tour not found")
		}
		return c.JSON(fiber.Map{
			"distance_meters":  tour.DistanceMeters,
			"duration_minutes": tour.DurationMinutes,
		})
	}
}

// ---- Discovery ----

// NearbyToursHandler returns published tours near a point, grouped into
// pages of whole neighborhoods.
func NearbyToursHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, ok := queryOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lon are required")
		}
		if !origin.Valid() {
			return errBadRequest(c, "lat/lon out of range")
		}

		city := c.Query("city")
		pageSize := c.QueryInt("page_size", 5)
		pageOffset := c.QueryInt("offset", 0)

		var maxDistance *float64
		if md := c.QueryFloat("max_distance", 0); md > 0 {
			maxDistance = &md
		}

		res, err := deps.Discovery.NearbyTours(c.Context(), origin, city, pageSize, pageOffset, maxDistance)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(res)
	}
}

// ListCitiesHandler returns all active cities, annotated with distance
// when lat/lon are supplied.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var origin *domain.GeoPoint
		if p, ok := queryOrigin(c); ok {
			origin = &p
		}

		cities, err := deps.Discovery.Cities(c.Context(), origin)
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(cities)
	}
}

// ClosestCityHandler resolves the caller's nearest active city, optionally
// disambiguating by name (Springfield).
func ClosestCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, ok := queryOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lon are required")
		}

		if name := c.Query("name"); name != "" {
			city, err := deps.Discovery.ClosestCityByName(c.Context(), name, origin)
			if err != nil {
				return errNotFound(c, err.Error())
			}
			return c.JSON(city)
		}

		city, err := deps.Discovery.ClosestCity(c.Context(), origin)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if city == nil {
			return errNotFound(c, "no cities configured")
		}
		return c.JSON(city)
	}
}

// ---- Sites ----

// NearbySitesHandler returns sites within a radius of a point.
func NearbySitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, ok := queryOrigin(c)
		if !ok {
			return errBadRequest(c, "lat and lon are required")
		}
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if radius <= 0 || radius > 20000 {
			return errBadRequest(c, "radius must be between 1 and 20000 meters")
		}

		sites, err := deps.Sites.FindNearby(c.Context(), origin.Lat, origin.Lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(sites)
	}
}

// SearchSitesHandler performs fuzzy search on site titles and keywords.
func SearchSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		sites, err := deps.Sites.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(sites)
	}
}

// BatchSitesHandler returns multiple sites by ID.
func BatchSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := c.Query("ids", "")
		if ids == "" {
			return errBadRequest(c, "ids query parameter is required (comma-separated)")
		}

		var siteIDs []string
		for _, id := range strings.Split(ids, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				siteIDs = append(siteIDs, trimmed)
			}
		}

		if len(siteIDs) == 0 {
			return errBadRequest(c, "at least one site ID is required")
		}
		if len(siteIDs) > 100 {
			return errBadRequest(c, "maximum 100 site IDs allowed")
		}

		sites, err := deps.Sites.GetByIDs(c.Context(), siteIDs)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(sites)
	}
}

// GetSiteHandler returns a single site by ID.
func GetSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "site id is required")
		}
		site, err := deps.Sites.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "site not found")
		}
		return c.JSON(site)
	}
}

// CreateSiteHandler creates a point of interest.
func CreateSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var site domain.Site
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Sites.Create(c.Context(), &site)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(created)
	}
}

// UpdateSiteHandler rewrites a site. Tours containing it get their
// metrics recomputed.
func UpdateSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var site domain.Site
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		site.ID = c.Params("id")

		if err := deps.Sites.Update(c.Context(), &site); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(site)
	}
}

// DeleteSiteHandler removes a site and recomputes the metrics of every
// tour that contained it.
func DeleteSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sites.Delete(c.Context(), c.Params("id")); err != nil {
			return errNotFound(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// EnrichSiteHandler fills a site's details from the places directory.
func EnrichSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, err := deps.Sites.EnrichFromPlaces(c.Context(), c.Params("id"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(site)
	}
}

// DescribeSiteHandler generates an AI description for a site.
func DescribeSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		overwrite := c.QueryBool("overwrite", false)
		site, err := deps.Descriptions.GenerateSiteDescription(c.Context(), c.Params("id"), overwrite)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(site)
	}
}

// DescribeNeighborhoodHandler generates an AI description for a
// city/neighborhood pair.
func DescribeNeighborhoodHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			City         string `json:"city"`
			Neighborhood string `json:"neighborhood"`
		}
		if err := c.BodyParser(&body); err != nil || body.City == "" || body.Neighborhood == "" {
			return errBadRequest(c, "city and neighborhood are required")
		}

		nd, err := deps.Descriptions.GenerateNeighborhoodDescription(c.Context(), body.City, body.Neighborhood)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(nd)
	}
}

// ---- Feedback ----

// CreateFeedbackHandler accepts feedback on a tour or site. Anonymous
// submissions are allowed.
func CreateFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fb domain.Feedback
		if err := c.BodyParser(&fb); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		fb.UserID = currentUserID(c)

		created, err := deps.Feedback.Create(c.Context(), &fb)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(created)
	}
}

// TourFeedbackHandler lists feedback for a tour.
func TourFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Feedback.ListByTour(c.Context(), c.Params("id"))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(list)
	}
}

// SiteFeedbackHandler lists feedback for a site.
func SiteFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Feedback.ListBySite(c.Context(), c.Params("id"))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(list)
	}
}

// PendingFeedbackHandler returns the moderation queue.
func PendingFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		list, err := deps.Feedback.ListPending(c.Context(), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(list)
	}
}

// ReviewFeedbackHandler transitions a feedback entry through moderation.
func ReviewFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Status     string `json:"status"`
			AdminNotes string `json:"admin_notes"`
		}
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return errBadRequest(c, "status is required")
		}

		err := deps.Feedback.Review(c.Context(), c.Params("id"), body.Status, body.AdminNotes, currentUserID(c))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// ---- Narration ----

// GenerateNarrationHandler synthesises (or replays from cache) audio for
// a narration text.
func GenerateNarrationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Text    string `json:"text"`
			VoiceID string `json:"voice_id"`
		}
		if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Text) == "" {
			return errBadRequest(c, "text is required")
		}
		if len(body.Text) > 10000 {
			return errBadRequest(c, "text too long (max 10000 characters)")
		}

		res, err := deps.Narration.Generate(c.Context(), body.Text, body.VoiceID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if res.FromCache {
			metrics.NarrationCacheHits.Inc()
		} else {
			metrics.NarrationsSynthesized.Inc()
		}
		return c.JSON(res)
	}
}

// ---- Auth ----

// RegisterHandler creates a creator account and returns a token.
func RegisterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		user, err := deps.Users.Register(c.Context(), body.Email, body.Password, body.Name)
		if err != nil {
			if errors.Is(err, usecases.ErrEmailTaken) {
				return errConflict(c, "email already registered")
			}
			return errBadRequest(c, err.Error())
		}

		token, err := IssueToken(deps.JWTSecret, user.ID, user.Role, deps.TokenTTL)
		if err != nil {
			return errInternal(c, "token generation failed")
		}
		return c.Status(201).JSON(fiber.Map{"user": user, "token": token})
	}
}

// LoginHandler authenticates and returns a token.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		user, err := deps.Users.Authenticate(c.Context(), body.Email, body.Password)
		if err != nil {
			return errUnauthorized(c, "invalid credentials")
		}

		token, err := IssueToken(deps.JWTSecret, user.ID, user.Role, deps.TokenTTL)
		if err != nil {
			return errInternal(c, "token generation failed")
		}
		return c.JSON(fiber.Map{"user": user, "token": token})
	}
}

// MeHandler returns the authenticated user's profile.
func MeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := deps.Users.GetByID(c.Context(), currentUserID(c))
		if err != nil {
			return errNotFound(c, "user not found")
		}
		return c.JSON(user)
	}
}

package domain

import (
	"time"
)

// Tour statuses. A tour is only discoverable once published.
const (
	TourStatusDraft     = "draft"
	TourStatusReady     = "ready"
	TourStatusPublished = "published"
	TourStatusArchived  = "archived"
)

// UnspecifiedNeighborhood is the sentinel label used for tours without a
// neighborhood, so grouping logic never has to handle a missing label.
const UnspecifiedNeighborhood = "Unspecified"

// User is a creator or admin account.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Role          string     `json:"role"` // "creator" | "admin"
	PasswordHash  string     `json:"-"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// Site is a point of interest that can be visited on one or more tours.
type Site struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Location         GeoPoint  `json:"location"`
	City             string    `json:"city,omitempty"`
	Neighborhood     string    `json:"neighborhood,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	AudioURL         string    `json:"audio_url,omitempty"`
	WebURL           string    `json:"web_url,omitempty"`
	Keywords         []string  `json:"keywords,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	PlaceID          string    `json:"place_id,omitempty"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Distance         *float64  `json:"distance,omitempty"` // computed field
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Tour is an ordered collection of sites with aggregate metadata.
type Tour struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	City            string     `json:"city,omitempty"`
	Neighborhood    string     `json:"neighborhood,omitempty"`
	Location        *GeoPoint  `json:"location,omitempty"` // center point for proximity queries
	ImageURL        string     `json:"image_url,omitempty"`
	AudioURL        string     `json:"audio_url,omitempty"`
	MapImageURL     string     `json:"map_image_url,omitempty"`
	MusicURLs       []string   `json:"music_urls,omitempty"`
	DistanceMeters  int        `json:"distance_meters"`
	DurationMinutes int        `json:"duration_minutes"`
	AverageRating   *float64   `json:"average_rating,omitempty"`
	RatingCount     int        `json:"rating_count"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	Stops           []TourStop `json:"stops,omitempty"`
}

// TourStop is a site as it appears on a tour: position in the visit
// sequence plus the fields the metrics estimator consumes. Order values
// are unique within a tour but not necessarily contiguous.
type TourStop struct {
	SiteID    string    `json:"site_id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	Location  *GeoPoint `json:"location,omitempty"`
	Narration string    `json:"narration,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
}

// TourMetrics is derived from a tour's ordered stop sequence and written
// back onto the tour record. It is always recomputed from the full stop
// list, never incrementally.
type TourMetrics struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationMinutes int `json:"duration_minutes"`
}

// TourSummary is the slim projection used for proximity search.
type TourSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        *GeoPoint `json:"location,omitempty"`
	City            string    `json:"city,omitempty"`
	Neighborhood    string    `json:"neighborhood"`
	ImageURL        string    `json:"image_url,omitempty"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationMinutes int       `json:"duration_minutes"`
	Distance        *float64  `json:"distance,omitempty"` // computed from query origin
}

// City is a supported city with hero content for the mobile client.
type City struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     GeoPoint  `json:"location"`
	HeroImageURL string    `json:"hero_image_url,omitempty"`
	HeroTitle    string    `json:"hero_title,omitempty"`
	HeroSubtitle string    `json:"hero_subtitle,omitempty"`
	Country      string    `json:"country,omitempty"`
	StateProv    string    `json:"state_province,omitempty"`
	Timezone     string    `json:"timezone,omitempty"`
	Active       bool      `json:"active"`
	TourCount    int       `json:"tour_count"`
	DistanceKm   *float64  `json:"distance_km,omitempty"` // computed field
	CreatedAt    time.Time `json:"created_at"`
}

// NeighborhoodDescription is editorial copy for a city/neighborhood pair.
type NeighborhoodDescription struct {
	ID           string    `json:"id"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Feedback is user feedback on a tour or a site. Anonymous submissions
// are allowed, so UserID may be empty.
type Feedback struct {
	ID         string     `json:"id"`
	TourID     string     `json:"tour_id,omitempty"`
	SiteID     string     `json:"site_id,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	Type       string     `json:"type"` // "issue" | "rating" | "comment" | "suggestion"
	Rating     *int       `json:"rating,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	Status     string     `json:"status"` // "pending" | "reviewed" | "resolved" | "dismissed"
	AdminNotes string     `json:"admin_notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
}

// AudioCacheEntry maps a narration text hash to a previously synthesised
// audio file, so identical text is never sent to the TTS provider twice.
type AudioCacheEntry struct {
	ID             string    `json:"id"`
	TextHash       string    `json:"text_hash"`
	Text           string    `json:"text"`
	AudioURL       string    `json:"audio_url"`
	VoiceID        string    `json:"voice_id"`
	AccessCount    int       `json:"access_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

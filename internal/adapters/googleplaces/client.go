package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/strollcast/strollcast/internal/core/domain"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client implements ports.PlaceDirectory against the Google Places API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a Places client. baseURL may be empty to use the production
// API.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	Types            []string `json:"types"`
	Website          string   `json:"website"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (p *placeResult) toSite() *domain.Site {
	return &domain.Site{
		Title:            p.Name,
		Location:         domain.GeoPoint{Lat: p.Geometry.Location.Lat, Lon: p.Geometry.Location.Lng},
		Rating:           p.Rating,
		PlaceID:          p.PlaceID,
		FormattedAddress: p.FormattedAddress,
		WebURL:           p.Website,
		Keywords:         p.Types,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("places status %d: %s", resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FindPlace resolves a free-text query to the best-matching place.
func (c *Client) FindPlace(ctx context.Context, query string) (*domain.Site, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id,name,formatted_address,rating,types,geometry")

	var parsed struct {
		Status     string        `json:"status"`
		Candidates []placeResult `json:"candidates"`
	}
	if err := c.get(ctx, "/findplacefromtext/json", params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" || len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("place %q not found (status %s)", query, parsed.Status)
	}
	return parsed.Candidates[0].toSite(), nil
}

// PlaceDetails fetches full details for a known place ID.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*domain.Site, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,rating,types,website,geometry")

	var parsed struct {
		Status string      `json:"status"`
		Result placeResult `json:"result"`
	}
	if err := c.get(ctx, "/details/json", params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" {
		return nil, fmt.Errorf("place details %s: status %s", placeID, parsed.Status)
	}
	return parsed.Result.toSite(), nil
}

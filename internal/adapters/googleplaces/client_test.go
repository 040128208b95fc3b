package googleplaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/findplacefromtext/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("input") != "Flatiron Building" {
			t.Errorf("unexpected input %q", r.URL.Query().Get("input"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"candidates": [{
				"place_id": "ChIJFlatiron",
				"name": "Flatiron Building",
				"formatted_address": "175 5th Ave, New York, NY",
				"rating": 4.6,
				"types": ["tourist_attraction"],
				"geometry": {"location": {"lat": 40.7411, "lng": -73.9897}}
			}]
		}`))
	}))
	defer srv.Close()

	c := New("key-123", srv.URL)
	site, err := c.FindPlace(context.Background(), "Flatiron Building")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.PlaceID != "ChIJFlatiron" || site.Title != "Flatiron Building" {
		t.Errorf("unexpected site %+v", site)
	}
	if site.Location.Lat != 40.7411 || site.Location.Lon != -73.9897 {
		t.Errorf("unexpected location %+v", site.Location)
	}
}

func TestFindPlace_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "candidates": []}`))
	}))
	defer srv.Close()

	c := New("key-123", srv.URL)
	if _, err := c.FindPlace(context.Background(), "nowhere"); err == nil {
		t.Fatal("expected an error for zero results")
	}
}

func TestPlaceDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "ChIJGrandCentral",
				"name": "Grand Central Terminal",
				"website": "https://www.grandcentralterminal.com",
				"geometry": {"location": {"lat": 40.7527, "lng": -73.9772}}
			}
		}`))
	}))
	defer srv.Close()

	c := New("key-123", srv.URL)
	site, err := c.PlaceDetails(context.Background(), "ChIJGrandCentral")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.WebURL != "https://www.grandcentralterminal.com" {
		t.Errorf("unexpected web url %q", site.WebURL)
	}
}

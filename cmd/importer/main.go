package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/strollcast/strollcast/internal/adapters/googleplaces"
	"github.com/strollcast/strollcast/internal/adapters/postgres"
	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/pkg/config"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source string      `json:"source"`
	Cities []CityEntry `json:"cities"`
}

type CityEntry struct {
	Name         string      `json:"name"`
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	Country      string      `json:"country,omitempty"`
	StateProv    string      `json:"state_province,omitempty"`
	Timezone     string      `json:"timezone,omitempty"`
	HeroImageURL string      `json:"hero_image_url,omitempty"`
	HeroTitle    string      `json:"hero_title,omitempty"`
	HeroSubtitle string      `json:"hero_subtitle,omitempty"`
	Sites        []SiteEntry `json:"sites,omitempty"`
}

type SiteEntry struct {
	Title        string   `json:"title"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Description  string   `json:"description,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	PlaceQuery   string   `json:"place_query,omitempty"` // lookup string for enrichment
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("strollcast-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Strollcast Content Importer — %d cities from %s", len(manifest.Cities), manifest.Source)

	// Filter cities (optional CLI arg: name list)
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, n := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.ToLower(strings.TrimSpace(n))] = true
		}
	}

	var places *googleplaces.Client
	if cfg.Places.APIKey != "" {
		places = googleplaces.New(cfg.Places.APIKey, "")
	} else {
		log.Println("no places API key configured, skipping enrichment")
	}

	cityRepo := postgres.NewCityRepo(db)
	siteRepo := postgres.NewSiteRepo(db)

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 cities at a time

	for _, city := range manifest.Cities {
		if len(nameFilter) > 0 && !nameFilter[strings.ToLower(city.Name)] {
			continue
		}

		wg.Add(1)
		go func(c CityEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := importCity(ctx, cityRepo, siteRepo, places, c); err != nil {
				log.Printf("ERROR [%s]: %v", c.Name, err)
			}
		}(city)
	}

	wg.Wait()
	log.Println("import complete")
}

// ---------------------------------------------------------------------------
// Per-city import
// ---------------------------------------------------------------------------

func importCity(ctx context.Context, cities *postgres.CityRepo, sites *postgres.SiteRepo, places *googleplaces.Client, entry CityEntry) error {
	city := &domain.City{
		Name:         entry.Name,
		Location:     domain.GeoPoint{Lat: entry.Lat, Lon: entry.Lon},
		Country:      entry.Country,
		StateProv:    entry.StateProv,
		Timezone:     entry.Timezone,
		HeroImageURL: entry.HeroImageURL,
		HeroTitle:    entry.HeroTitle,
		HeroSubtitle: entry.HeroSubtitle,
		Active:       true,
	}

	// Reuse the existing record when the city was imported before.
	existing, err := cities.FindByName(ctx, entry.Name)
	if err == nil && len(existing) > 0 {
		city.ID = existing[0].ID
		if err := cities.Update(ctx, city); err != nil {
			return err
		}
	} else {
		if err := cities.Create(ctx, city); err != nil {
			return err
		}
	}

	batch := make([]domain.Site, 0, len(entry.Sites))
	enriched := 0
	for _, s := range entry.Sites {
		site := domain.Site{
			Title:        s.Title,
			Description:  s.Description,
			Location:     domain.GeoPoint{Lat: s.Lat, Lon: s.Lon},
			City:         entry.Name,
			Neighborhood: s.Neighborhood,
			Keywords:     s.Keywords,
		}

		if places != nil && s.PlaceQuery != "" {
			found, err := places.FindPlace(ctx, s.PlaceQuery)
			if err != nil {
				log.Printf("[%s] enrich %q: %v", entry.Name, s.Title, err)
			} else {
				site.PlaceID = found.PlaceID
				site.Rating = found.Rating
				site.FormattedAddress = found.FormattedAddress
				site.WebURL = found.WebURL
				if len(site.Keywords) == 0 {
					site.Keywords = found.Keywords
				}
				enriched++
			}
			// Stay well under the places API rate limit
			time.Sleep(200 * time.Millisecond)
		}

		batch = append(batch, site)
	}

	if len(batch) > 0 {
		if err := sites.UpsertBatch(ctx, batch); err != nil {
			return err
		}
	}

	log.Printf("[%s] imported %d sites (%d enriched)", entry.Name, len(batch), enriched)
	return nil
}

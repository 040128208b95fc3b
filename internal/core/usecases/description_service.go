package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
)

const (
	siteSystemPrompt = "You are a knowledgeable local tour guide. Write engaging, " +
		"factual walking-tour narration. Aim for 150-250 words. Do not invent " +
		"dates, names, or events."

	neighborhoodSystemPrompt = "You are a knowledgeable local tour guide. Write a short, " +
		"vivid introduction to a neighborhood for visitors. Aim for 60-100 words."
)

// DescriptionService generates editorial copy with an LLM and persists it.
type DescriptionService struct {
	generator     ports.TextGenerator
	sites         ports.SiteRepository
	neighborhoods ports.NeighborhoodRepository
}

// NewDescriptionService creates a new DescriptionService.
func NewDescriptionService(generator ports.TextGenerator, sites ports.SiteRepository, neighborhoods ports.NeighborhoodRepository) *DescriptionService {
	return &DescriptionService{generator: generator, sites: sites, neighborhoods: neighborhoods}
}

// GenerateSiteDescription writes narration for a site and persists it onto
// the site record. Existing text is overwritten only when overwrite is set.
func (s *DescriptionService) GenerateSiteDescription(ctx context.Context, siteID string, overwrite bool) (*domain.Site, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.Description != "" && !overwrite {
		return site, nil
	}

	prompt := fmt.Sprintf("Write tour narration for %q", site.Title)
	var details []string
	if site.FormattedAddress != "" {
		details = append(details, "located at "+site.FormattedAddress)
	} else if site.City != "" {
		details = append(details, "in "+site.City)
	}
	if site.Neighborhood != "" {
		details = append(details, "in the "+site.Neighborhood+" neighborhood")
	}
	if len(details) > 0 {
		prompt += ", " + strings.Join(details, ", ")
	}
	prompt += "."

	text, err := s.generator.Generate(ctx, siteSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate site description: %w", err)
	}

	site.Description = strings.TrimSpace(text)
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, fmt.Errorf("persist description: %w", err)
	}
	return site, nil
}

// GenerateNeighborhoodDescription writes and stores an introduction for a
// city/neighborhood pair.
func (s *DescriptionService) GenerateNeighborhoodDescription(ctx context.Context, city, neighborhood string) (*domain.NeighborhoodDescription, error) {
	if city == "" || neighborhood == "" {
		return nil, fmt.Errorf("city and neighborhood are required")
	}

	prompt := fmt.Sprintf("Introduce the %s neighborhood of %s to a visitor.", neighborhood, city)
	text, err := s.generator.Generate(ctx, neighborhoodSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate neighborhood description: %w", err)
	}

	nd := &domain.NeighborhoodDescription{
		City:         city,
		Neighborhood: neighborhood,
		Description:  strings.TrimSpace(text),
	}
	if err := s.neighborhoods.Upsert(ctx, nd); err != nil {
		return nil, fmt.Errorf("persist neighborhood description: %w", err)
	}
	return nd, nil
}

package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/strollcast/strollcast/internal/core/ports"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

// NarrationActivities holds the activity implementations for the narration
// workflow.
type NarrationActivities struct {
	Tours     ports.TourRepository
	Narration *usecases.NarrationService
	Media     ports.MediaStore
}

// LoadNarrationTexts returns the narration text of every stop that has one,
// in visit order.
func (a *NarrationActivities) LoadNarrationTexts(ctx context.Context, tourID string) ([]StopNarration, error) {
	stops, err := a.Tours.GetStops(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("load stops for tour %s: %w", tourID, err)
	}

	var out []StopNarration
	for _, s := range stops {
		if strings.TrimSpace(s.Narration) == "" {
			continue
		}
		out = append(out, StopNarration{SiteID: s.SiteID, Order: s.Order, Text: s.Narration})
	}
	return out, nil
}

// SynthesizeNarration converts narration text to audio and returns the URL.
// The narration service dedupes by text hash, so retries and republished
// tours replay from the audio cache.
func (a *NarrationActivities) SynthesizeNarration(ctx context.Context, text, voiceID string) (string, error) {
	res, err := a.Narration.Generate(ctx, text, voiceID)
	if err != nil {
		return "", fmt.Errorf("synthesise narration: %w", err)
	}
	if res.FromCache {
		slog.Info("narration cache hit", "hash", usecases.TextHash(text)[:12])
	}
	return res.AudioURL, nil
}

// AttachStopAudio stores the audio URL on the tour's stop.
func (a *NarrationActivities) AttachStopAudio(ctx context.Context, tourID, siteID, audioURL string) error {
	if err := a.Tours.SetStopAudio(ctx, tourID, siteID, audioURL); err != nil {
		return fmt.Errorf("attach audio to stop %s: %w", siteID, err)
	}
	return nil
}

// PublishAudioManifest uploads the ordered playlist as JSON and returns its URL.
func (a *NarrationActivities) PublishAudioManifest(ctx context.Context, tourID string, playlist []StopAudio) (string, error) {
	data, err := json.Marshal(playlist)
	if err != nil {
		return "", fmt.Errorf("marshal playlist: %w", err)
	}
	key := "tours/" + tourID + "/playlist.json"
	url, err := a.Media.Upload(ctx, key, "application/json", data)
	if err != nil {
		return "", fmt.Errorf("upload playlist: %w", err)
	}
	return url, nil
}

// SetTourAudio stamps the playlist URL onto the tour record.
func (a *NarrationActivities) SetTourAudio(ctx context.Context, tourID, manifestURL string) error {
	if err := a.Tours.SetAudioURL(ctx, tourID, manifestURL); err != nil {
		return fmt.Errorf("set tour audio url: %w", err)
	}
	return nil
}

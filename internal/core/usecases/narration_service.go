package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/ports"
)

// NarrationResult reports where a narration's audio lives and whether it
// was served from the audio cache.
type NarrationResult struct {
	AudioURL  string `json:"audio_url"`
	FromCache bool   `json:"from_cache"`
}

// NarrationService turns narration text into hosted audio. Identical text
// is synthesised at most once: results are keyed by a SHA-256 of the text
// in the audio_cache table, regardless of which site or tour asked.
type NarrationService struct {
	cache       ports.AudioCacheRepository
	synthesizer ports.SpeechSynthesizer
	media       ports.MediaStore
	voiceID     string
}

// NewNarrationService creates a new NarrationService. voiceID is the
// default TTS voice used when the caller doesn't specify one.
func NewNarrationService(cache ports.AudioCacheRepository, synthesizer ports.SpeechSynthesizer, media ports.MediaStore, voiceID string) *NarrationService {
	return &NarrationService{cache: cache, synthesizer: synthesizer, media: media, voiceID: voiceID}
}

// TextHash returns the cache key for a narration text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Generate returns hosted audio for the given text, synthesising and
// uploading only on a cache miss. Failures are never cached.
func (s *NarrationService) Generate(ctx context.Context, text, voiceID string) (*NarrationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("narration text must not be empty")
	}
	if voiceID == "" {
		voiceID = s.voiceID
	}

	hash := TextHash(text)

	// Cache is keyed by text only; the voice used at generation time wins.
	if entry, err := s.cache.FindByHash(ctx, hash); err == nil && entry != nil {
		if err := s.cache.TouchAccess(ctx, entry.ID); err != nil {
			slog.Warn("audio cache stat update failed", "hash", hash[:8], "error", err)
		}
		return &NarrationResult{AudioURL: entry.AudioURL, FromCache: true}, nil
	}

	// A cache miss needs both external services; fail cleanly when the
	// deployment runs without them.
	if s.synthesizer == nil || s.media == nil {
		return nil, fmt.Errorf("narration synthesis not configured")
	}

	audio, err := s.synthesizer.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}

	key := "narration/" + hash + ".mp3"
	url, err := s.media.Upload(ctx, key, "audio/mpeg", audio)
	if err != nil {
		return nil, fmt.Errorf("upload narration audio: %w", err)
	}

	entry := &domain.AudioCacheEntry{
		TextHash: hash,
		Text:     text,
		AudioURL: url,
		VoiceID:  voiceID,
	}
	if err := s.cache.Insert(ctx, entry); err != nil {
		// The audio is already hosted; a cache-write failure only costs
		// a future re-synthesis.
		slog.Warn("audio cache insert failed", "hash", hash[:8], "error", err)
	}

	return &NarrationResult{AudioURL: url, FromCache: false}, nil
}

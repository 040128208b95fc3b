package usecases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/usecases"
)

func TestNarrationService_CacheHit(t *testing.T) {
	cache := &mockAudioCacheRepo{
		findByHashFn: func(ctx context.Context, hash string) (*domain.AudioCacheEntry, error) {
			return &domain.AudioCacheEntry{ID: "entry-1", TextHash: hash, AudioURL: "https://media.example.com/narration/cached.mp3"}, nil
		},
	}
	synth := &mockSynthesizer{}

	svc := usecases.NewNarrationService(cache, synth, &mockMediaStore{}, "voice-default")
	res, err := svc.Generate(context.Background(), "Welcome to the Flatiron Building.", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FromCache {
		t.Error("expected a cache hit")
	}
	if res.AudioURL != "https://media.example.com/narration/cached.mp3" {
		t.Errorf("unexpected audio URL %q", res.AudioURL)
	}
	if synth.calls != 0 {
		t.Errorf("synthesizer called %d times on a cache hit", synth.calls)
	}
	if len(cache.touched) != 1 || cache.touched[0] != "entry-1" {
		t.Errorf("expected access stats bump for entry-1, got %v", cache.touched)
	}
}

func TestNarrationService_CacheMiss(t *testing.T) {
	var inserted *domain.AudioCacheEntry
	cache := &mockAudioCacheRepo{
		insertFn: func(ctx context.Context, entry *domain.AudioCacheEntry) error {
			inserted = entry
			return nil
		},
	}
	synth := &mockSynthesizer{}
	var uploadedKey string
	media := &mockMediaStore{
		uploadFn: func(ctx context.Context, key, contentType string, data []byte) (string, error) {
			uploadedKey = key
			if contentType != "audio/mpeg" {
				t.Errorf("unexpected content type %q", contentType)
			}
			return "https://media.example.com/" + key, nil
		},
	}

	svc := usecases.NewNarrationService(cache, synth, media, "voice-default")
	text := "Turn left onto Mulberry Street."
	res, err := svc.Generate(context.Background(), text, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FromCache {
		t.Error("expected a cache miss")
	}
	if synth.calls != 1 {
		t.Errorf("expected exactly one synthesis, got %d", synth.calls)
	}

	hash := usecases.TextHash(text)
	if uploadedKey != "narration/"+hash+".mp3" {
		t.Errorf("unexpected object key %q", uploadedKey)
	}
	if inserted == nil {
		t.Fatal("expected a cache insert")
	}
	if inserted.TextHash != hash || inserted.VoiceID != "voice-default" {
		t.Errorf("unexpected cache entry %+v", inserted)
	}
}

func TestNarrationService_MissWithoutSynthesisStack(t *testing.T) {
	// A deployment without TTS or media storage degrades to an error on a
	// cache miss instead of dereferencing a nil dependency.
	svc := usecases.NewNarrationService(&mockAudioCacheRepo{}, nil, nil, "voice-default")
	if _, err := svc.Generate(context.Background(), "No stack behind this one.", ""); err == nil {
		t.Fatal("expected an error when synthesis is not configured")
	}

	// A cache hit still works without them.
	cache := &mockAudioCacheRepo{
		findByHashFn: func(ctx context.Context, hash string) (*domain.AudioCacheEntry, error) {
			return &domain.AudioCacheEntry{ID: "entry-2", TextHash: hash, AudioURL: "https://media.example.com/narration/hit.mp3"}, nil
		},
	}
	svc = usecases.NewNarrationService(cache, nil, nil, "voice-default")
	res, err := svc.Generate(context.Background(), "Cached despite no stack.", "")
	if err != nil {
		t.Fatalf("unexpected error on cache hit: %v", err)
	}
	if !res.FromCache {
		t.Error("expected a cache hit")
	}
}

func TestNarrationService_EmptyText(t *testing.T) {
	svc := usecases.NewNarrationService(&mockAudioCacheRepo{}, &mockSynthesizer{}, &mockMediaStore{}, "voice-default")
	if _, err := svc.Generate(context.Background(), "   ", ""); err == nil {
		t.Fatal("expected an error for blank text")
	}
}

func TestTextHash_Deterministic(t *testing.T) {
	a := usecases.TextHash("same words")
	b := usecases.TextHash("same words")
	if a != b {
		t.Error("hash must be stable for identical text")
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Errorf("expected lowercase hex sha256, got %q", a)
	}
	if usecases.TextHash("other words") == a {
		t.Error("different text must hash differently")
	}
}

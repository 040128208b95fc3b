package ports

import (
	"context"

	"github.com/strollcast/strollcast/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTourPublished(ctx context.Context, tour *domain.Tour) error
	PublishMetricsRecalculated(ctx context.Context, tourID string, m domain.TourMetrics) error
	PublishFeedbackCreated(ctx context.Context, fb *domain.Feedback) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeTourPublished(ctx context.Context, handler func(ctx context.Context, tour *domain.Tour) error) error
	SubscribeFeedbackCreated(ctx context.Context, handler func(ctx context.Context, fb *domain.Feedback) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// MediaStore stores media objects (images, audio) and serves them by URL.
type MediaStore interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (url string, err error)
	PresignedGet(ctx context.Context, key string, expirySeconds int) (string, error)
	Delete(ctx context.Context, key string) error
}

// SpeechSynthesizer converts narration text to audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (audio []byte, err error)
}

// TextGenerator produces AI-written descriptions.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PlaceDirectory looks up point-of-interest details from an external
// places API.
type PlaceDirectory interface {
	FindPlace(ctx context.Context, query string) (*domain.Site, error)
	PlaceDetails(ctx context.Context, placeID string) (*domain.Site, error)
}

// NarrationPipeline kicks off asynchronous narration generation for a
// published tour (implemented by the Temporal client adapter).
type NarrationPipeline interface {
	StartTourNarration(ctx context.Context, tourID string) error
}

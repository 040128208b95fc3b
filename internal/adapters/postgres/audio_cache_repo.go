package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/strollcast/strollcast/internal/core/domain"
)

// AudioCacheRepo implements ports.AudioCacheRepository with pgx.
type AudioCacheRepo struct {
	db *DB
}

// NewAudioCacheRepo creates a new AudioCacheRepo.
func NewAudioCacheRepo(db *DB) *AudioCacheRepo {
	return &AudioCacheRepo{db: db}
}

// FindByHash returns the cache entry for a text hash, or nil on a miss.
func (r *AudioCacheRepo) FindByHash(ctx context.Context, textHash string) (*domain.AudioCacheEntry, error) {
	var e domain.AudioCacheEntry
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, text_hash, text, audio_url, COALESCE(voice_id, ''),
		       access_count, created_at, last_accessed_at
		FROM audio_cache WHERE text_hash = $1
	`, textHash).Scan(&e.ID, &e.TextHash, &e.Text, &e.AudioURL, &e.VoiceID,
		&e.AccessCount, &e.CreatedAt, &e.LastAccessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert stores a freshly synthesised narration. Concurrent generation of
// the same text is harmless; the first writer wins.
func (r *AudioCacheRepo) Insert(ctx context.Context, e *domain.AudioCacheEntry) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO audio_cache (text_hash, text, audio_url, voice_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (text_hash) DO UPDATE SET last_accessed_at = now()
		RETURNING id, created_at, last_accessed_at
	`, e.TextHash, e.Text, e.AudioURL, e.VoiceID).Scan(&e.ID, &e.CreatedAt, &e.LastAccessedAt)
}

// TouchAccess bumps hit stats on a cache hit.
func (r *AudioCacheRepo) TouchAccess(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE audio_cache
		SET access_count = access_count + 1, last_accessed_at = now()
		WHERE id = $1
	`, id)
	return err
}

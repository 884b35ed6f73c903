package providers

import (
	"context"
	"sync"
	"time"
)

// voiceCacheTTL bounds how stale the served catalog can be. The upstream
// list changes rarely and the frontend fetches it on every page load.
const voiceCacheTTL = 10 * time.Minute

// CachedSpeech decorates Speech with an in-process cache on the voice
// catalog. Synthesis passes through untouched.
type CachedSpeech struct {
	Speech

	mu        sync.Mutex
	voices    []Voice
	fetchedAt time.Time
}

func NewCachedSpeech(inner Speech) *CachedSpeech {
	return &CachedSpeech{Speech: inner}
}

func (c *CachedSpeech) Voices(ctx context.Context) ([]Voice, error) {
	c.mu.Lock()
	cached, fetchedAt := c.voices, c.fetchedAt
	c.mu.Unlock()

	if cached != nil && time.Since(fetchedAt) < voiceCacheTTL {
		return cached, nil
	}

	// The lock is not held across the upstream call. Concurrent misses may
	// fetch in parallel; the last write wins, which is fine for a catalog.
	voices, err := c.Speech.Voices(ctx)
	if err != nil {
		// Serve the stale copy over an error if we have one.
		if cached != nil {
			return cached, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.voices = voices
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return voices, nil
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tvorai/creditgate/internal/config"
)

func testClient() *Client {
	return NewClient(5*time.Second, zap.NewNop())
}

func TestTranslatorForwardsFormRequest(t *testing.T) {
	var gotAuth, gotText, gotTarget string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotText = r.PostFormValue("text")
		gotTarget = r.PostFormValue("target_lang")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]any{
				{"text": "ahoj", "detected_source_language": "EN"},
			},
		})
	}))
	defer upstream.Close()

	tr := NewTranslator(testClient(), config.TranslateConfig{BaseURL: upstream.URL, APIKey: "key-1"})
	result, err := tr.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "cs"})
	require.NoError(t, err)

	assert.Equal(t, "ahoj", result.Text)
	assert.Equal(t, "EN", result.DetectedLanguage)
	assert.Equal(t, "DeepL-Auth-Key key-1", gotAuth)
	assert.Equal(t, "hello", gotText)
	assert.Equal(t, "CS", gotTarget)
}

func TestTranslatorNotConfigured(t *testing.T) {
	tr := NewTranslator(testClient(), config.TranslateConfig{BaseURL: "http://unused"})
	_, err := tr.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "cs"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTextGenSendsPromptAndJoinsParts(t *testing.T) {
	var gotKey, gotPath string
	var gotBody struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "Variant 1:\n"},
					{"text": "Cozy light. Try it now."},
				}}},
			},
		})
	}))
	defer upstream.Close()

	gen := NewTextGen(testClient(), upstream.URL, "key-2", "gemini-2.5-pro")
	output, err := gen.AdCopy(context.Background(), AdCopyRequest{
		Product:  "handmade candles",
		Audience: "home decor fans",
		Language: "english",
	})
	require.NoError(t, err)

	assert.Equal(t, "Variant 1:\nCozy light. Try it now.", output)
	assert.Equal(t, "key-2", gotKey)
	assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "handmade candles")
	assert.Contains(t, prompt, "home decor fans")
	assert.Contains(t, prompt, "friendly, confident")
}

func TestTextGenValidation(t *testing.T) {
	gen := NewTextGen(testClient(), "http://unused", "key", "gemini-2.5-pro")

	_, err := gen.AdCopy(context.Background(), AdCopyRequest{Product: "candles"})
	assert.ErrorIs(t, err, ErrMissingAdFields)

	unconfigured := NewTextGen(testClient(), "http://unused", "", "gemini-2.5-pro")
	_, err = unconfigured.AdCopy(context.Background(), AdCopyRequest{
		Product: "candles", Audience: "fans", Language: "english",
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientUpstream4xxIsNotBreakerFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	client := testClient()
	for i := 0; i < 10; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, upstream.URL, nil)
		require.NoError(t, err)

		err = client.DoJSON(req, nil)
		var uErr *UpstreamError
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, http.StatusTooManyRequests, uErr.Status)
		assert.NotErrorIs(t, err, ErrUnavailable, "4xx answers must not trip the breaker")
	}
}

func TestClientBreakerOpensOn5xx(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := testClient()

	var lastErr error
	for i := 0; i < 10; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, upstream.URL, nil)
		require.NoError(t, err)
		lastErr = client.DoJSON(req, nil)
		require.Error(t, lastErr)
	}

	assert.ErrorIs(t, lastErr, ErrUnavailable)
	assert.Less(t, calls.Load(), int64(10), "open breaker must stop calling upstream")
}

func TestVideoRequestValidate(t *testing.T) {
	valid := VideoRequest{Prompt: "a red fox", Duration: 5, AspectRatio: "16:9"}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Duration = 7
	assert.ErrorIs(t, bad.Validate(), ErrBadDuration)

	bad = valid
	bad.AspectRatio = "4:3"
	assert.ErrorIs(t, bad.Validate(), ErrBadAspect)
}

type countingSpeech struct {
	calls  atomic.Int64
	voices []Voice
	err    error
}

func (c *countingSpeech) Voices(ctx context.Context) ([]Voice, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.voices, nil
}

func (c *countingSpeech) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioStream, error) {
	return nil, errors.New("not used")
}

func TestCachedSpeechServesFromCache(t *testing.T) {
	inner := &countingSpeech{voices: []Voice{{ID: "v1", Name: "Rachel"}}}
	cached := NewCachedSpeech(inner)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		voices, err := cached.Voices(ctx)
		require.NoError(t, err)
		require.Len(t, voices, 1)
	}
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedSpeechServesStaleOnError(t *testing.T) {
	inner := &countingSpeech{voices: []Voice{{ID: "v1", Name: "Rachel"}}}
	cached := NewCachedSpeech(inner)

	ctx := context.Background()
	_, err := cached.Voices(ctx)
	require.NoError(t, err)

	// Upstream starts failing; expire the cache and confirm the stale copy
	// still serves.
	inner.err = errors.New("upstream down")
	cached.fetchedAt = time.Now().Add(-time.Hour)

	voices, err := cached.Voices(ctx)
	require.NoError(t, err)
	assert.Len(t, voices, 1)
}

type blockingSpeech struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSpeech) Voices(ctx context.Context) ([]Voice, error) {
	b.entered <- struct{}{}
	<-b.release
	return []Voice{{ID: "v1", Name: "Rachel"}}, nil
}

func (b *blockingSpeech) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioStream, error) {
	return nil, errors.New("not used")
}

func TestCachedSpeechDoesNotHoldLockDuringFetch(t *testing.T) {
	inner := &blockingSpeech{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	cached := NewCachedSpeech(inner)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := cached.Voices(context.Background())
			done <- err
		}()
	}

	// Both misses must reach the upstream while the first is still in
	// flight; a lock held across the fetch would park the second caller.
	for i := 0; i < 2; i++ {
		select {
		case <-inner.entered:
		case <-time.After(2 * time.Second):
			t.Fatal("second voice fetch blocked behind the first")
		}
	}

	close(inner.release)
	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestResolveExplicitCostWins(t *testing.T) {
	cost, err := Default.Resolve("kling_video", int64Ptr(42), map[string]any{"duration": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(42), cost)

	// Explicit cost bypasses the table entirely, even for unknown features.
	cost, err = Default.Resolve("never_seen_before", int64Ptr(7), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cost)
}

func TestResolveNegativeExplicitCostIgnored(t *testing.T) {
	cost, err := Default.Resolve("test_feature", int64Ptr(-1), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cost)
}

func TestResolveBasePrices(t *testing.T) {
	cases := map[string]int64{
		"translate_text": 10,
		"gemini_chat":    5,
		"heygen_video":   200,
		"voice_tts":      2,
		"photo_avatar":   50,
		"kling_v21_t2v":  300,
		"seedream_image": 40,
		"test_feature":   10,
	}
	for feature, want := range cases {
		cost, err := Default.Resolve(feature, nil, nil)
		require.NoError(t, err, feature)
		assert.Equal(t, want, cost, feature)
	}
}

func TestResolveDurationTable(t *testing.T) {
	cost, err := Default.Resolve("kling_video", nil, map[string]any{"duration": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(200), cost)

	cost, err = Default.Resolve("kling_video", nil, map[string]any{"duration": 10})
	require.NoError(t, err)
	assert.Equal(t, int64(500), cost)

	// Unlisted duration falls back to the base price.
	cost, err = Default.Resolve("kling_video", nil, map[string]any{"duration": 7})
	require.NoError(t, err)
	assert.Equal(t, int64(250), cost)

	// JSON numbers arrive as float64, string durations come from forms.
	cost, err = Default.Resolve("kling_video", nil, map[string]any{"duration": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(500), cost)

	cost, err = Default.Resolve("kling_video", nil, map[string]any{"duration": "5"})
	require.NoError(t, err)
	assert.Equal(t, int64(200), cost)
}

func TestResolveAspectDurationTable(t *testing.T) {
	for _, aspect := range []string{"16:9", "9:16", "1:1"} {
		cost, err := Default.Resolve("kling_v25_t2v", nil, map[string]any{
			"aspect_ratio": aspect,
			"duration":     5,
		})
		require.NoError(t, err, aspect)
		assert.Equal(t, int64(300), cost, aspect)

		cost, err = Default.Resolve("kling_v25_t2v", nil, map[string]any{
			"aspect_ratio": aspect,
			"duration":     10,
		})
		require.NoError(t, err, aspect)
		assert.Equal(t, int64(600), cost, aspect)
	}
}

func TestResolveAspectPairMissHasNoFallback(t *testing.T) {
	// kling_v25_t2v carries no base price, so an unpriced pair is rejected
	// rather than silently defaulted.
	_, err := Default.Resolve("kling_v25_t2v", nil, map[string]any{
		"aspect_ratio": "4:3",
		"duration":     5,
	})
	assert.ErrorIs(t, err, ErrFeatureUnknown)
}

func TestResolveUnknownFeature(t *testing.T) {
	_, err := Default.Resolve("quantum_hologram", nil, nil)
	assert.ErrorIs(t, err, ErrFeatureUnknown)

	_, err = Default.Resolve("", nil, map[string]any{"duration": 5})
	assert.ErrorIs(t, err, ErrFeatureUnknown)
}

package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Speech proxies text-to-speech synthesis to ElevenLabs and exposes the
// voice catalog the frontend renders its picker from.
type Speech interface {
	Voices(ctx context.Context) ([]Voice, error)
	Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioStream, error)
}

type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type SynthesizeRequest struct {
	VoiceID   string
	Text      string
	ModelID   string
	Stability float64
}

// AudioStream is the raw synthesized audio. The caller owns Body.
type AudioStream struct {
	Body        io.ReadCloser
	ContentType string
}

type speech struct {
	client  *Client
	baseURL string
	apiKey  string
}

func NewSpeech(client *Client, baseURL, apiKey string) Speech {
	return &speech{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (s *speech) Voices(ctx context.Context) ([]Voice, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := s.client.DoJSON(req, &payload); err != nil {
		return nil, err
	}
	return payload.Voices, nil
}

func (s *speech) Synthesize(ctx context.Context, in SynthesizeRequest) (*AudioStream, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	modelID := in.ModelID
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	body := map[string]any{
		"text":     in.Text,
		"model_id": modelID,
	}
	if in.Stability > 0 {
		body["voice_settings"] = map[string]any{"stability": in.Stability}
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, in.VoiceID)
	req, err := NewJSONRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &AudioStream{Body: resp.Body, ContentType: contentType}, nil
}

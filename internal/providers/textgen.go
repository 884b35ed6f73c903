package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TextGen proxies ad-copy generation to the Gemini generateContent API.
type TextGen interface {
	AdCopy(ctx context.Context, req AdCopyRequest) (string, error)
}

var ErrMissingAdFields = errors.New("product, audience and language are required")

type AdCopyRequest struct {
	Product  string
	Audience string
	Tone     string
	Language string
}

func (r AdCopyRequest) Validate() error {
	if r.Product == "" || r.Audience == "" || r.Language == "" {
		return ErrMissingAdFields
	}
	return nil
}

// Prompt renders the copywriting instruction sent upstream. Three short
// variants, two sentences each, with a call to action, in the requested
// output language.
func (r AdCopyRequest) Prompt() string {
	tone := r.Tone
	if tone == "" {
		tone = "friendly, confident"
	}
	return strings.TrimSpace(fmt.Sprintf(`You are a top marketing copywriter.
Write 3 short ad copy variants for FACEBOOK ADS.

Product: %s
Target audience: %s
Tone of voice: %s
Output language: %s

REQUIREMENTS:
- Each variant at most 2 sentences.
- Catchy and concrete, not generic.
- Use a direct call to action (e.g. "Try it now", "Learn more").
- Return the result as:
  Variant 1:
  ...
  Variant 2:
  ...
  Variant 3:
  ...`, r.Product, r.Audience, tone, r.Language))
}

type textGen struct {
	client  *Client
	baseURL string
	apiKey  string
	model   string
}

func NewTextGen(client *Client, baseURL, apiKey, model string) TextGen {
	return &textGen{client: client, baseURL: baseURL, apiKey: apiKey, model: model}
}

func (g *textGen) AdCopy(ctx context.Context, in AdCopyRequest) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": in.Prompt()}}},
		},
	}

	req, err := NewJSONRequest(ctx, http.MethodPost,
		g.baseURL+"/v1beta/models/"+g.model+":generateContent", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := g.client.DoJSON(req, &payload); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, candidate := range payload.Candidates {
		for _, part := range candidate.Content.Parts {
			out.WriteString(part.Text)
		}
		break
	}
	if out.Len() == 0 {
		return "", errors.New("upstream returned no text")
	}
	return out.String(), nil
}

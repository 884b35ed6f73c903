package providers

import (
	"context"
	"errors"
	"net/http"
)

// ImageGen proxies Seedream image generation on the BytePlus Ark API.
type ImageGen interface {
	Generate(ctx context.Context, req ImageRequest) (ImageResult, error)
	Sizes() []ImageSize
}

type ImageRequest struct {
	Prompt string
	Size   string
}

type ImageResult struct {
	URL string `json:"url"`
}

// ImageSize is a preset the frontend offers. The list is static so it is
// served without touching the upstream.
type ImageSize struct {
	Label string `json:"label"`
	Size  string `json:"size"`
}

var imageSizes = []ImageSize{
	{Label: "Square 1:1", Size: "2048x2048"},
	{Label: "Landscape 4:3", Size: "2304x1728"},
	{Label: "Portrait 3:4", Size: "1728x2304"},
	{Label: "Wide 16:9", Size: "2560x1440"},
	{Label: "Tall 9:16", Size: "1440x2560"},
	{Label: "Cinema 21:9", Size: "3024x1296"},
}

type imageGen struct {
	client  *Client
	baseURL string
	apiKey  string
	model   string
}

func NewImageGen(client *Client, baseURL, apiKey, model string) ImageGen {
	return &imageGen{client: client, baseURL: baseURL, apiKey: apiKey, model: model}
}

func (g *imageGen) Sizes() []ImageSize {
	out := make([]ImageSize, len(imageSizes))
	copy(out, imageSizes)
	return out
}

func (g *imageGen) Generate(ctx context.Context, in ImageRequest) (ImageResult, error) {
	if g.apiKey == "" {
		return ImageResult{}, ErrNotConfigured
	}

	size := in.Size
	if size == "" {
		size = "2048x2048"
	}

	body := map[string]any{
		"model":           g.model,
		"prompt":          in.Prompt,
		"size":            size,
		"response_format": "url",
		"watermark":       false,
	}

	req, err := NewJSONRequest(ctx, http.MethodPost,
		g.baseURL+"/api/v3/images/generations", body)
	if err != nil {
		return ImageResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	var payload struct {
		Data []ImageResult `json:"data"`
	}
	if err := g.client.DoJSON(req, &payload); err != nil {
		return ImageResult{}, err
	}
	if len(payload.Data) == 0 || payload.Data[0].URL == "" {
		return ImageResult{}, errors.New("upstream returned no image")
	}
	return payload.Data[0], nil
}

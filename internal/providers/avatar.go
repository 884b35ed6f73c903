package providers

import (
	"context"
	"errors"
	"net/http"
)

// Avatar proxies HeyGen avatar video generation. Like video generation it
// is asynchronous with a poll endpoint.
type Avatar interface {
	Generate(ctx context.Context, req AvatarRequest) (string, error)
	Status(ctx context.Context, videoID string) (AvatarStatus, error)
}

type AvatarRequest struct {
	AvatarID string
	VoiceID  string
	Text     string
	Width    int
	Height   int
}

type AvatarStatus struct {
	VideoID  string
	State    string
	VideoURL string
	Error    string
}

type avatar struct {
	client  *Client
	baseURL string
	apiKey  string
}

func NewAvatar(client *Client, baseURL, apiKey string) Avatar {
	return &avatar{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (a *avatar) Generate(ctx context.Context, in AvatarRequest) (string, error) {
	if a.apiKey == "" {
		return "", ErrNotConfigured
	}

	width, height := in.Width, in.Height
	if width == 0 || height == 0 {
		width, height = 1280, 720
	}

	body := map[string]any{
		"video_inputs": []map[string]any{{
			"character": map[string]any{
				"type":      "avatar",
				"avatar_id": in.AvatarID,
			},
			"voice": map[string]any{
				"type":       "text",
				"voice_id":   in.VoiceID,
				"input_text": in.Text,
			},
		}},
		"dimension": map[string]any{"width": width, "height": height},
	}

	req, err := NewJSONRequest(ctx, http.MethodPost, a.baseURL+"/v2/video/generate", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	var payload struct {
		Data struct {
			VideoID string `json:"video_id"`
		} `json:"data"`
	}
	if err := a.client.DoJSON(req, &payload); err != nil {
		return "", err
	}
	if payload.Data.VideoID == "" {
		return "", errors.New("upstream returned no video id")
	}
	return payload.Data.VideoID, nil
}

func (a *avatar) Status(ctx context.Context, videoID string) (AvatarStatus, error) {
	if a.apiKey == "" {
		return AvatarStatus{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/v1/video_status.get?video_id="+videoID, nil)
	if err != nil {
		return AvatarStatus{}, err
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	var payload struct {
		Data struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			VideoURL string `json:"video_url"`
			Error    struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"data"`
	}
	if err := a.client.DoJSON(req, &payload); err != nil {
		return AvatarStatus{}, err
	}

	return AvatarStatus{
		VideoID:  payload.Data.ID,
		State:    payload.Data.Status,
		VideoURL: payload.Data.VideoURL,
		Error:    payload.Data.Error.Message,
	}, nil
}

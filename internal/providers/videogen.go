package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// VideoGen proxies Kling text-to-video jobs on Novita. Generation is
// asynchronous: submit returns a task id and the frontend polls status.
type VideoGen interface {
	Submit(ctx context.Context, req VideoRequest) (string, error)
	Status(ctx context.Context, taskID string) (VideoStatus, error)
}

// VideoRequest validation limits mirror what the billing table can price.
var (
	ErrBadDuration = errors.New("duration must be 5 or 10 seconds")
	ErrBadAspect   = errors.New("aspect_ratio must be 16:9, 9:16 or 1:1")
)

type VideoRequest struct {
	Prompt         string
	NegativePrompt string
	Duration       int64
	AspectRatio    string
	Model          string
}

func (r VideoRequest) Validate() error {
	if r.Duration != 5 && r.Duration != 10 {
		return ErrBadDuration
	}
	switch r.AspectRatio {
	case "16:9", "9:16", "1:1":
		return nil
	default:
		return ErrBadAspect
	}
}

type VideoStatus struct {
	TaskID   string
	State    string
	VideoURL string
	Reason   string
}

type videoGen struct {
	client  *Client
	baseURL string
	apiKey  string
}

func NewVideoGen(client *Client, baseURL, apiKey string) VideoGen {
	return &videoGen{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (v *videoGen) Submit(ctx context.Context, in VideoRequest) (string, error) {
	if v.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	model := in.Model
	if model == "" {
		model = "kling-v2.1-t2v"
	}

	body := map[string]any{
		"model_name":      model,
		"prompt":          in.Prompt,
		"negative_prompt": in.NegativePrompt,
		"duration":        fmt.Sprintf("%d", in.Duration),
		"aspect_ratio":    in.AspectRatio,
	}

	req, err := NewJSONRequest(ctx, http.MethodPost, v.baseURL+"/v3/async/txt2video", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	var payload struct {
		TaskID string `json:"task_id"`
	}
	if err := v.client.DoJSON(req, &payload); err != nil {
		return "", err
	}
	if payload.TaskID == "" {
		return "", errors.New("upstream returned no task id")
	}
	return payload.TaskID, nil
}

func (v *videoGen) Status(ctx context.Context, taskID string) (VideoStatus, error) {
	if v.apiKey == "" {
		return VideoStatus{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.baseURL+"/v3/async/task-result?task_id="+taskID, nil)
	if err != nil {
		return VideoStatus{}, err
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	var payload struct {
		Task struct {
			TaskID string `json:"task_id"`
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"task"`
		Videos []struct {
			VideoURL string `json:"video_url"`
		} `json:"videos"`
	}
	if err := v.client.DoJSON(req, &payload); err != nil {
		return VideoStatus{}, err
	}

	out := VideoStatus{
		TaskID: payload.Task.TaskID,
		State:  payload.Task.Status,
		Reason: payload.Task.Reason,
	}
	if len(payload.Videos) > 0 {
		out.VideoURL = payload.Videos[0].VideoURL
	}
	return out, nil
}

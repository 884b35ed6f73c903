package server

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tvorai/creditgate/internal/providers"
)

// Proxy handlers forward to the upstream AI providers. Charging is out of
// band: the frontend calls /consume first (charge-then-invoke), so these
// handlers never touch the ledger.

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
}

func (s *Server) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.TargetLang) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "text and target_lang are required"))
		return
	}

	result, err := s.translator.Translate(c.Request.Context(), providers.TranslateRequest{
		Text:       req.Text,
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"translated_text":   result.Text,
		"detected_language": result.DetectedLanguage,
	})
}

func (s *Server) Voices(c *gin.Context) {
	voices, err := s.speech.Voices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(200, gin.H{"voices": voices})
}

type ttsRequest struct {
	VoiceID   string  `json:"voice_id"`
	Text      string  `json:"text"`
	ModelID   string  `json:"model_id"`
	Stability float64 `json:"stability"`
}

func (s *Server) TextToSpeech(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.VoiceID) == "" || strings.TrimSpace(req.Text) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "voice_id and text are required"))
		return
	}

	stream, err := s.speech.Synthesize(c.Request.Context(), providers.SynthesizeRequest{
		VoiceID:   req.VoiceID,
		Text:      req.Text,
		ModelID:   req.ModelID,
		Stability: req.Stability,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer stream.Body.Close()

	c.Header("Content-Type", stream.ContentType)
	c.Status(200)
	_, _ = io.Copy(c.Writer, stream.Body)
}

type videoGenerateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Duration       int64  `json:"duration"`
	AspectRatio    string `json:"aspect_ratio"`
	Model          string `json:"model"`
}

func (s *Server) VideoGenerate(c *gin.Context) {
	var req videoGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "prompt is required"))
		return
	}
	if req.Duration == 0 {
		req.Duration = 5
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}

	taskID, err := s.videoGen.Submit(c.Request.Context(), providers.VideoRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Duration:       req.Duration,
		AspectRatio:    req.AspectRatio,
		Model:          req.Model,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"generation_id": taskID, "status": "queued"})
}

func (s *Server) VideoStatus(c *gin.Context) {
	taskID := strings.TrimSpace(c.Param("task_id"))
	if taskID == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "task_id is required"))
		return
	}

	status, err := s.videoGen.Status(c.Request.Context(), taskID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{
		"generation_id": status.TaskID,
		"status":        normalizeTaskState(status.State),
	}
	if status.VideoURL != "" {
		payload["video_url"] = status.VideoURL
	}
	if status.Reason != "" {
		payload["reason"] = status.Reason
	}
	c.JSON(200, payload)
}

// normalizeTaskState folds the provider-specific state names into the
// queued/in_progress/success/failed vocabulary the frontend polls on.
func normalizeTaskState(state string) string {
	switch strings.ToUpper(state) {
	case "TASK_STATUS_QUEUED", "QUEUED", "PENDING", "WAITING":
		return "queued"
	case "TASK_STATUS_PROCESSING", "PROCESSING", "RUNNING":
		return "in_progress"
	case "TASK_STATUS_SUCCEED", "SUCCEED", "SUCCESS", "COMPLETED":
		return "success"
	case "TASK_STATUS_FAILED", "FAILED", "ERROR":
		return "failed"
	default:
		return strings.ToLower(state)
	}
}

type avatarGenerateRequest struct {
	AvatarID string `json:"avatar_id"`
	VoiceID  string `json:"voice_id"`
	Text     string `json:"text"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (s *Server) AvatarGenerate(c *gin.Context) {
	var req avatarGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.AvatarID) == "" || strings.TrimSpace(req.Text) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "avatar_id and text are required"))
		return
	}

	videoID, err := s.avatar.Generate(c.Request.Context(), providers.AvatarRequest{
		AvatarID: req.AvatarID,
		VoiceID:  req.VoiceID,
		Text:     req.Text,
		Width:    req.Width,
		Height:   req.Height,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"video_id": videoID, "status": "queued"})
}

func (s *Server) AvatarStatus(c *gin.Context) {
	videoID := strings.TrimSpace(c.Param("video_id"))
	if videoID == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "video_id is required"))
		return
	}

	status, err := s.avatar.Status(c.Request.Context(), videoID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{
		"video_id": status.VideoID,
		"status":   normalizeTaskState(status.State),
	}
	if status.VideoURL != "" {
		payload["video_url"] = status.VideoURL
	}
	if status.Error != "" {
		payload["error_message"] = status.Error
	}
	c.JSON(200, payload)
}

type imageGenerateRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

func (s *Server) ImageGenerate(c *gin.Context) {
	var req imageGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "prompt is required"))
		return
	}

	result, err := s.imageGen.Generate(c.Request.Context(), providers.ImageRequest{
		Prompt: req.Prompt,
		Size:   req.Size,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"image_url": result.URL})
}

func (s *Server) ImageSizes(c *gin.Context) {
	c.JSON(200, gin.H{"sizes": s.imageGen.Sizes()})
}

type facebookAdRequest struct {
	Product  string `json:"product"`
	Audience string `json:"audience"`
	Tone     string `json:"tone"`
	Language string `json:"language"`
}

func (s *Server) FacebookAd(c *gin.Context) {
	var req facebookAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Product) == "" || strings.TrimSpace(req.Audience) == "" || strings.TrimSpace(req.Language) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "product, audience and language are required"))
		return
	}

	output, err := s.textGen.AdCopy(c.Request.Context(), providers.AdCopyRequest{
		Product:  strings.TrimSpace(req.Product),
		Audience: strings.TrimSpace(req.Audience),
		Tone:     strings.TrimSpace(req.Tone),
		Language: strings.TrimSpace(req.Language),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"output": output})
}

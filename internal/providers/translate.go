package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/tvorai/creditgate/internal/config"
)

// Translator proxies text translation to DeepL.
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error)
}

type TranslateRequest struct {
	Text       string
	TargetLang string
	SourceLang string
}

type TranslateResult struct {
	Text             string `json:"text"`
	DetectedLanguage string `json:"detected_source_language"`
}

type translator struct {
	client *Client
	cfg    config.TranslateConfig
}

func NewTranslator(client *Client, cfg config.TranslateConfig) Translator {
	return &translator{client: client, cfg: cfg}
}

func (t *translator) Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error) {
	if t.cfg.APIKey == "" {
		return TranslateResult{}, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("target_lang", strings.ToUpper(req.TargetLang))
	if req.SourceLang != "" {
		form.Set("source_lang", strings.ToUpper(req.SourceLang))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.cfg.BaseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return TranslateResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+t.cfg.APIKey)

	var payload struct {
		Translations []TranslateResult `json:"translations"`
	}
	if err := t.client.DoJSON(httpReq, &payload); err != nil {
		return TranslateResult{}, err
	}
	if len(payload.Translations) == 0 {
		return TranslateResult{}, errors.New("empty translation response")
	}
	return payload.Translations[0], nil
}

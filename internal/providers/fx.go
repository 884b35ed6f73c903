package providers

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tvorai/creditgate/internal/config"
)

var Module = fx.Module("providers",
	fx.Provide(
		newClient,
		newTranslator,
		newSpeech,
		newVideoGen,
		newAvatar,
		newImageGen,
		newTextGen,
	),
)

func newClient(cfg config.Config, log *zap.Logger) *Client {
	return NewClient(cfg.Providers.Timeout, log)
}

func newTranslator(client *Client, cfg config.Config) Translator {
	return NewTranslator(client, cfg.Providers.Translate)
}

func newSpeech(client *Client, cfg config.Config) Speech {
	inner := NewSpeech(client, cfg.Providers.Speech.BaseURL, cfg.Providers.Speech.APIKey)
	return NewCachedSpeech(inner)
}

func newVideoGen(client *Client, cfg config.Config) VideoGen {
	return NewVideoGen(client, cfg.Providers.Video.BaseURL, cfg.Providers.Video.APIKey)
}

func newAvatar(client *Client, cfg config.Config) Avatar {
	return NewAvatar(client, cfg.Providers.Avatar.BaseURL, cfg.Providers.Avatar.APIKey)
}

func newImageGen(client *Client, cfg config.Config) ImageGen {
	return NewImageGen(client, cfg.Providers.Image.BaseURL, cfg.Providers.Image.APIKey, cfg.Providers.Image.Model)
}

func newTextGen(client *Client, cfg config.Config) TextGen {
	return NewTextGen(client, cfg.Providers.Text.BaseURL, cfg.Providers.Text.APIKey, cfg.Providers.Text.Model)
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AllowedOrigin string

	// Shared secret for the WP login exchange signature and the JWT
	// signing key for short-lived proxy tokens.
	SharedSecret string
	JWTSecret    string
	JWTTTL       time.Duration

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Providers ProviderConfig
}

// ProviderConfig groups the upstream AI provider credentials. Keys are
// optional: a proxy route whose key is empty reports the provider as
// unconfigured instead of forwarding.
type ProviderConfig struct {
	Translate TranslateConfig
	Speech    SpeechConfig
	Video     VideoConfig
	Avatar    AvatarConfig
	Image     ImageConfig
	Text      TextConfig

	Timeout time.Duration
}

type TranslateConfig struct {
	BaseURL string
	APIKey  string
}

type SpeechConfig struct {
	BaseURL string
	APIKey  string
}

type VideoConfig struct {
	BaseURL string
	APIKey  string
}

type AvatarConfig struct {
	BaseURL string
	APIKey  string
}

type ImageConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type TextConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "creditgate"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    ":" + getenv("PORT", "8080"),

		AllowedOrigin: getenv("ALLOWED_ORIGIN", "https://www.tvorai.cz"),

		SharedSecret: strings.TrimSpace(getenv("SHARED_SECRET", "")),
		JWTSecret:    strings.TrimSpace(getenv("JWT_SECRET", "")),
		JWTTTL:       getenvDuration("JWT_TTL", 15*time.Minute),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "creditgate"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		Providers: ProviderConfig{
			Translate: TranslateConfig{
				BaseURL: getenv("DEEPL_BASE_URL", "https://api-free.deepl.com"),
				APIKey:  strings.TrimSpace(getenv("DEEPL_API_KEY", "")),
			},
			Speech: SpeechConfig{
				BaseURL: getenv("ELEVEN_BASE_URL", "https://api.elevenlabs.io"),
				APIKey:  strings.TrimSpace(getenv("ELEVEN_API_KEY", "")),
			},
			Video: VideoConfig{
				BaseURL: getenv("NOVITA_BASE_URL", "https://api.novita.ai"),
				APIKey:  strings.TrimSpace(getenv("NOVITA_API_KEY", "")),
			},
			Avatar: AvatarConfig{
				BaseURL: getenv("HEYGEN_BASE_URL", "https://api.heygen.com"),
				APIKey:  strings.TrimSpace(getenv("HEYGEN_API_KEY", "")),
			},
			Image: ImageConfig{
				BaseURL: getenv("ARK_BASE_URL", "https://ark.ap-southeast.bytepluses.com"),
				APIKey:  strings.TrimSpace(getenv("ARK_API_KEY", "")),
				Model:   getenv("SEEDREAM_MODEL", "seedream-4-0-250828"),
			},
			Text: TextConfig{
				BaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				APIKey:  strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
				Model:   getenv("GEMINI_MODEL", "gemini-2.5-pro"),
			},
			Timeout: getenvDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

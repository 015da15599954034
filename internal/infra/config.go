package infra

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"clipforge/internal/generation"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv  string
	Port    string
	Origins []string

	RunwareAPIKey  string
	RunwareBaseURL string
	RunwareModel   string
	MireloAPIKey   string
	MireloBaseURL  string

	OutputDir string
	UploadDir string

	MaxWorkers        int
	PollInterval      time.Duration
	GenerationTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	MaxUploadBytes   int64
}

// LoadConfig reads the environment (including an optional .env file) and
// applies defaults where needed. Credential presence is checked separately by
// RequireCredentials so commands that never touch the network still run.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		RunwareAPIKey:     strings.TrimSpace(os.Getenv("RUNWARE_API_KEY")),
		RunwareBaseURL:    getEnv("RUNWARE_BASE_URL", "https://api.runware.ai/v1"),
		RunwareModel:      getEnv("RUNWARE_MODEL", "bytedance:1@1"),
		MireloAPIKey:      strings.TrimSpace(os.Getenv("MIRELO_API_KEY")),
		MireloBaseURL:     getEnv("MIRELO_BASE_URL", "https://api.mirelo.ai"),
		OutputDir:         getEnv("OUTPUT_DIR", "./output"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxWorkers:        getEnvInt("MAX_WORKERS", 3),
		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 10)),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 300)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Origins = append(cfg.Origins, origin)
			}
		}
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	return cfg, nil
}

// RequireCredentials verifies the API keys needed for a run are present. The
// sound key is only required when sound generation is enabled.
func (c *Config) RequireCredentials(withSound bool) error {
	if c.RunwareAPIKey == "" {
		return &generation.ConfigurationError{Key: "RUNWARE_API_KEY"}
	}
	if withSound && c.MireloAPIKey == "" {
		return &generation.ConfigurationError{Key: "MIRELO_API_KEY"}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

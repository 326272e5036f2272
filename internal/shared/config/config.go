package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	JWTSecret     string
	SessionTTL    time.Duration
	LocalCacheDir string

	AnalyzeRatePerMin float64
	AnalyzeRateBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL not set in production, persistence degrades to the local cache")
	}

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:       dbURL,
		LLMAPIKey:         strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")),
		LLMBaseURL:        strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.deepseek.com"), "/"),
		LLMModel:          getEnv("LLM_MODEL", "deepseek-chat"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		LocalCacheDir:     getEnv("LOCAL_CACHE_DIR", "./data/cache"),
		AnalyzeRatePerMin: float64(getEnvInt("ANALYZE_RATE_PER_MIN", 6)),
		AnalyzeRateBurst:  getEnvInt("ANALYZE_RATE_BURST", 3),
	}
}

// HasDatabase reports whether a remote store was configured.
func (c Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	LLMMaxTokens int

	// DailyAnalysisLimit caps AI analyses per user per calendar day.
	DailyAnalysisLimit int
	// AnalysisLimitBypass disables the daily limit. Computed once at load:
	// requires a dev-like ENV and ANALYSIS_LIMIT_BYPASS=true. Never set in
	// production regardless of the env var.
	AnalysisLimitBypass bool
	// MinResumeTextLen is the minimum extracted-text length eligible for analysis.
	MinResumeTextLen int

	DatabaseURL        string
	Env                string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
		LLMModel:            getEnv("LLM_MODEL", ""),
		LLMMaxTokens:        getEnvInt("LLM_MAX_TOKENS", 4096),
		DailyAnalysisLimit:  getEnvInt("DAILY_ANALYSIS_LIMIT", 3),
		AnalysisLimitBypass: computeLimitBypass(env, os.Getenv("ANALYSIS_LIMIT_BYPASS")),
		MinResumeTextLen:    getEnvInt("MIN_RESUME_TEXT_LEN", 50),
		DatabaseURL:         dbURL,
		Env:                 env,
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:   getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:       getEnv("UI_REDIRECT_URL", ""),
	}
}

// computeLimitBypass requires both a dev-like environment and an explicit
// opt-in. Off by default.
func computeLimitBypass(env, raw string) bool {
	if !isDevLike(env) {
		return false
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && enabled
}

func isDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
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
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

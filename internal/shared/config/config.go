package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalogue source kinds.
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogS3       = "s3"
	CatalogPostgres = "postgres"
)

// Narrative provider kinds.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	CatalogSource string
	CatalogPath   string
	LocalStoreDir string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	DatabaseURL   string

	LLMProvider          string
	LLMModel             string
	GeminiAPIKey         string
	OpenAIAPIKey         string
	OpenAITimeout        time.Duration
	EnrichmentTimeout    time.Duration
	RedisURL             string
	SessionTTL           time.Duration
	DiagnoseRateLimitRPS float64
	DiagnoseRateBurst    int
	StrictAnswers        bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		CatalogSource: normalizeCatalogSource(getEnv("CATALOG_SOURCE", CatalogEmbedded)),
		CatalogPath:   getEnv("CATALOG_PATH", "design.json"),
		LocalStoreDir: getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:     getEnv("AWS_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", ""),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		LLMModel:             getEnv("LLM_MODEL", ""),
		OpenAITimeout:        getSeconds("OPENAI_TIMEOUT_SECONDS", 60*time.Second),
		EnrichmentTimeout:    getSeconds("ENRICHMENT_TIMEOUT_SECONDS", 0),
		RedisURL:             getEnv("REDIS_URL", ""),
		SessionTTL:           getDuration("SESSION_TTL", 2*time.Hour),
		DiagnoseRateLimitRPS: getFloat("RATE_LIMIT_DIAGNOSE_RPS", 1),
		DiagnoseRateBurst:    getInt("RATE_LIMIT_DIAGNOSE_BURST", 5),
		StrictAnswers:        getBool("STRICT_ANSWERS", false),
	}
	cfg.LLMProvider = normalizeProvider(getEnv("LLM_PROVIDER", ""), cfg.GeminiAPIKey)

	if cfg.CatalogSource == CatalogPostgres && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required when CATALOG_SOURCE=postgres")
	}
	if cfg.CatalogSource == CatalogS3 && cfg.S3Bucket == "" {
		log.Printf("S3_BUCKET is required when CATALOG_SOURCE=s3")
	}
	return cfg
}

// EnrichmentEnabled reports whether a narrative provider has credentials.
func (c Config) EnrichmentEnabled() bool {
	switch c.LLMProvider {
	case ProviderGemini:
		return strings.TrimSpace(c.GeminiAPIKey) != ""
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey) != ""
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

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid number: %v", key, err)
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool: %v", key, err)
		return def
	}
	return v
}

func getSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("config %s invalid seconds: %q", key, raw)
		return def
	}
	return time.Duration(v) * time.Second
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("config %s invalid duration: %q", key, raw)
		return def
	}
	return v
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
	default:
		return "dev"
	}
}

func normalizeCatalogSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CatalogFile, "local":
		return CatalogFile
	case CatalogS3:
		return CatalogS3
	case CatalogPostgres, "pg", "db":
		return CatalogPostgres
	default:
		return CatalogEmbedded
	}
}

// normalizeProvider defaults to gemini when a Gemini key is present and no
// provider was chosen explicitly.
func normalizeProvider(raw, geminiKey string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderGemini:
		return ProviderGemini
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderNone, "off", "disabled":
		return ProviderNone
	case "":
		if strings.TrimSpace(geminiKey) != "" {
			return ProviderGemini
		}
		return ProviderNone
	default:
		return ProviderNone
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"checkcontrat-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType string
	InputDir        string
	OutputDir       string
	AWSRegion       string
	S3Bucket        string
	S3InputPrefix   string
	S3OutputPrefix  string
	SSEKMSKeyID     string
	MinIO           MinIOConfig

	LLMProvider   string
	LLMModel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	DatabaseURL string
	RedisURL    string

	ReportTimezone  string
	AnalysisTimeout time.Duration
	AnalysisRetries int
	MaxUploadBytes  int64
}

// MinIOConfig configures the minio object store backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

const (
	defaultModel          = "gpt-4o-mini"
	defaultMaxUploadBytes = 10 << 20
)

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over file values.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	fc, err := loadFile(os.Getenv("CONFIG_PATH"))
	if err != nil {
		telemetry.Warn("config.file_ignored", map[string]any{"path": os.Getenv("CONFIG_PATH"), "error": err})
		fc = fileConfig{}
	}

	env := normalizeEnv(getEnv("ENV", fc.Server.Env, "dev"))
	dbURL := getEnv("DATABASE_URL", fc.Database.URL, "")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	cors := fc.Server.CORSAllowOrigins
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" || len(cors) == 0 {
		cors = splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "", "http://localhost:5173"))
	}

	return Config{
		Port:            getEnv("PORT", fc.Server.Port, "8080"),
		Env:             env,
		CORSAllowOrigin: cors,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", fc.Storage.Type, "local")),
		InputDir:        getEnv("INPUT_DIR", fc.Storage.InputDir, "./data/input-files"),
		OutputDir:       getEnv("OUTPUT_DIR", fc.Storage.OutputDir, "./data/output-files"),
		AWSRegion:       getEnv("AWS_REGION", fc.Storage.S3.Region, ""),
		S3Bucket:        getEnv("S3_BUCKET", fc.Storage.S3.Bucket, ""),
		S3InputPrefix:   getEnv("S3_INPUT_PREFIX", fc.Storage.S3.InputPrefix, "input-files"),
		S3OutputPrefix:  getEnv("S3_OUTPUT_PREFIX", fc.Storage.S3.OutputPrefix, "output-files"),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", fc.Storage.S3.KMSKeyID, ""),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", fc.Storage.MinIO.Endpoint, ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", fc.Storage.MinIO.AccessKey, ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", fc.Storage.MinIO.SecretKey, ""),
			Bucket:    getEnv("MINIO_BUCKET", fc.Storage.MinIO.Bucket, "checkcontrat"),
			Region:    getEnv("MINIO_REGION", fc.Storage.MinIO.Region, ""),
			UseSSL:    getBool("MINIO_USE_SSL", fc.Storage.MinIO.UseSSL),
		},

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", fc.LLM.Provider, "openai")),
		LLMModel:      getEnv("LLM_MODEL", fc.LLM.Model, defaultModel),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", "", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", fc.LLM.BaseURL, ""),

		DatabaseURL: dbURL,
		RedisURL:    getEnv("REDIS_URL", fc.Redis.URL, ""),

		ReportTimezone:  getEnv("REPORT_TIMEZONE", fc.Analysis.ReportTimezone, ""),
		AnalysisTimeout: getDuration("ANALYSIS_TIMEOUT", fc.Analysis.Timeout, 2*time.Minute),
		AnalysisRetries: getInt("ANALYSIS_RETRIES", fc.Analysis.Retries, 1),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_BYTES", fc.Analysis.MaxUploadBytes, defaultMaxUploadBytes)),
	}
}

// ReportLocation resolves ReportTimezone, falling back to the process local zone.
func (c Config) ReportLocation() *time.Location {
	if strings.TrimSpace(c.ReportTimezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		telemetry.Warn("config.report_timezone_invalid", map[string]any{"timezone": c.ReportTimezone, "error": err})
		return time.Local
	}
	return loc
}

func getEnv(key, fileVal, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if v := strings.TrimSpace(fileVal); v != "" {
		return v
	}
	return def
}

func getInt(key string, fileVal *int, def int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v
		}
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "error": err})
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func getDuration(key, fileVal string, def time.Duration) time.Duration {
	raw := getEnv(key, fileVal, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "error": err})
		return def
	}
	return v
}

func getBool(key string, fileVal bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fileVal
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fileVal
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

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

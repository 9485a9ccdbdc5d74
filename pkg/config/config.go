// Package config loads the runtime configuration from the environment and
// an optional YAML evaluation profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process configuration.
type Config struct {
	LogLevel  string
	LogFormat string // "text" or "json"

	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseURL    string

	EgaproURL           string
	EgaproRatePerSecond float64
	EgaproTimeout       time.Duration

	RedisAddr      string // empty disables the oracle cache
	RedisPassword  string
	RedisDB        int
	OracleCacheTTL time.Duration

	PortailBaseURL string
	SessionSecret  string

	ArchiveStorageType string
	DataDir            string
	ArchiveS3Bucket    string
	ArchiveS3Region    string
	ArchiveS3Endpoint  string
	ArchiveS3Prefix    string
	ArchiveGCSBucket   string
	ArchiveGCSPrefix   string

	OTelEnabled  bool
	OTelEndpoint string

	ProfilePath string
}

// Load reads configuration from environment variables. Unset variables take
// their default; malformed ones are reported together.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		LogLevel:  getenv("LOG_LEVEL", "INFO"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		DatabaseDriver: getenv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getenv("DATABASE_URL", "file:reglementations.db"),

		EgaproURL:           getenv("EGAPRO_API_URL", "https://egapro.travail.gouv.fr"),
		EgaproRatePerSecond: parse(&errs, "EGAPRO_RATE_PER_SECOND", 10.0, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }),
		EgaproTimeout:       parse(&errs, "EGAPRO_TIMEOUT", 10*time.Second, time.ParseDuration),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        parse(&errs, "REDIS_DB", 0, strconv.Atoi),
		OracleCacheTTL: parse(&errs, "ORACLE_CACHE_TTL", 24*time.Hour, time.ParseDuration),

		PortailBaseURL: getenv("PORTAIL_BASE_URL", "https://portail-rse.beta.gouv.fr"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),

		ArchiveStorageType: getenv("ARCHIVE_STORAGE_TYPE", "fs"),
		DataDir:            getenv("DATA_DIR", "data"),
		ArchiveS3Bucket:    os.Getenv("ARCHIVE_S3_BUCKET"),
		ArchiveS3Region:    firstNonEmpty(os.Getenv("ARCHIVE_S3_REGION"), os.Getenv("AWS_REGION")),
		ArchiveS3Endpoint:  os.Getenv("ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Prefix:    os.Getenv("ARCHIVE_S3_PREFIX"),
		ArchiveGCSBucket:   os.Getenv("ARCHIVE_GCS_BUCKET"),
		ArchiveGCSPrefix:   os.Getenv("ARCHIVE_GCS_PREFIX"),

		OTelEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		OTelEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		ProfilePath: os.Getenv("PROFILE_PATH"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", cfg.DatabaseDriver))
	}
	if cfg.EgaproRatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("EGAPRO_RATE_PER_SECOND: must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func parse[T any](errs *[]error, key string, def T, conv func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := conv(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

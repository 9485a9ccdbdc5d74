package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/config"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

var keys = []string{
	"LOG_LEVEL", "LOG_FORMAT", "DATABASE_DRIVER", "DATABASE_URL",
	"EGAPRO_API_URL", "EGAPRO_RATE_PER_SECOND", "EGAPRO_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ORACLE_CACHE_TTL",
	"PORTAIL_BASE_URL", "SESSION_SECRET", "ARCHIVE_STORAGE_TYPE", "DATA_DIR",
	"ARCHIVE_S3_BUCKET", "ARCHIVE_S3_REGION", "AWS_REGION", "ARCHIVE_S3_ENDPOINT",
	"ARCHIVE_S3_PREFIX", "ARCHIVE_GCS_BUCKET", "ARCHIVE_GCS_PREFIX",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "PROFILE_PATH",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "https://egapro.travail.gouv.fr", cfg.EgaproURL)
	assert.Equal(t, 10.0, cfg.EgaproRatePerSecond)
	assert.Equal(t, 10*time.Second, cfg.EgaproTimeout)
	assert.Equal(t, 24*time.Hour, cfg.OracleCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "fs", cfg.ArchiveStorageType)
	assert.Equal(t, "https://portail-rse.beta.gouv.fr", cfg.PortailBaseURL)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://rse@db:5432/rse")
	t.Setenv("EGAPRO_RATE_PER_SECOND", "2.5")
	t.Setenv("EGAPRO_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ORACLE_CACHE_TTL", "1h")
	t.Setenv("ARCHIVE_STORAGE_TYPE", "s3")
	t.Setenv("ARCHIVE_S3_BUCKET", "rapports")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://rse@db:5432/rse", cfg.DatabaseURL)
	assert.Equal(t, 2.5, cfg.EgaproRatePerSecond)
	assert.Equal(t, 3*time.Second, cfg.EgaproTimeout)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.OracleCacheTTL)
	assert.Equal(t, "rapports", cfg.ArchiveS3Bucket)
	assert.Equal(t, "eu-west-1", cfg.ArchiveS3Region)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	t.Setenv("EGAPRO_TIMEOUT", "dix secondes")
	t.Setenv("REDIS_DB", "zéro")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EGAPRO_TIMEOUT")
	assert.Contains(t, err.Error(), "REDIS_DB")
	assert.Contains(t, err.Error(), "mysql")
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campagne.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: campagne-2025
today: 2025-02-15
disabled: [vsme, bdese]
ruleset: "^2.3"
base_url: https://portail-rse.example
`), 0o600))

	p, err := config.LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "campagne-2025", p.Name)
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), p.TodayOr(time.Now()))

	keep := p.Filter()
	require.NotNil(t, keep)
	assert.False(t, keep(reglementation.Info{ID: "vsme"}))
	assert.True(t, keep(reglementation.Info{ID: "csrd"}))
}

func TestParseProfile_Defaults(t *testing.T) {
	p, err := config.ParseProfile([]byte("name: vide\n"))
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now, p.TodayOr(now))
	assert.Nil(t, p.Filter())

	var none *config.Profile
	assert.Equal(t, now, none.TodayOr(now))
	assert.Nil(t, none.Filter())
}

func TestParseProfile_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "name: x\nclock: 2025-01-01\n",
		"bad date":           "today: 15/02/2025\n",
		"unknown rule":       "disabled: [rgpd]\n",
		"bad constraint":     "ruleset: \"pas une contrainte\"\n",
		"ruleset too recent": "ruleset: \">= 3.0.0\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.ParseProfile([]byte(doc))
			require.Error(t, err)
		})
	}

	_, err := config.ParseProfile([]byte("ruleset: \"< 2.0.0\"\n"))
	require.ErrorIs(t, err, config.ErrRulesetMismatch)
	_, err = config.LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

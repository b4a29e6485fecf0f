package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.InDelta(t, 1.0, cfg.Analysis.Weights.Sum(), 1e-9)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
data_dir: /var/lib/insight
rate_limit_rps: 4
rate_limit_burst: 8
analysis:
  top_n: 25
  trend_shift_threshold: 0.10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/var/lib/insight", cfg.DataDir)
	assert.InDelta(t, 4.0, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, 8, cfg.RateLimitBurst)
	assert.Equal(t, 25, cfg.Analysis.TopN)
	assert.InDelta(t, 0.10, cfg.Analysis.TrendShiftThreshold, 1e-9)
	// Untouched analysis settings keep their defaults.
	assert.Equal(t, 30, cfg.Analysis.MinSampleSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `port: "9090"`)
	t.Setenv("PORT", "7070")
	t.Setenv("DATA_DIR", "/tmp/insight")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/tmp/insight", cfg.DataDir)
}

func TestLoadRejectsBrokenWeights(t *testing.T) {
	path := writeConfig(t, `
analysis:
  weights:
    cycle_bucket: 0.9
    rep: 0.9
    industry: 0.15
    lead_source: 0.15
    deal_stage: 0.15
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadRateLimits(t *testing.T) {
	path := writeConfig(t, `rate_limit_rps: 0`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "port: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

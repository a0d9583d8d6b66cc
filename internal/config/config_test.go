package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/veracity/infrastructure/config"
	"github.com/jonesrussell/veracity/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "veracity", cfg.Service.Name)
	assert.Equal(t, 8000, cfg.Service.Port)
	assert.InDelta(t, 0.5, cfg.Text.Threshold, 1e-9)
	assert.InDelta(t, 0.6, cfg.Image.Threshold, 1e-9)
	assert.Equal(t, config.ModelNone, cfg.Text.Model)
	assert.Equal(t, 5, cfg.Image.MaxFaces)
	assert.Equal(t, 224, cfg.Image.AnalysisSize)
	assert.Equal(t, int64(40_000_000), cfg.Image.MaxPixels)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.ML.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
text:
  model: sidecar
  sidecar_url: http://ml:8001
  threshold: 0.55
image:
  max_faces: 3
ml:
  timeout: 2s
redis:
  enabled: true
`)
	t.Setenv("VERACITY_PORT", "9100")
	t.Setenv("REDIS_ADDRESS", "redis:6380")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, config.ModelSidecar, cfg.Text.Model)
	assert.InDelta(t, 0.55, cfg.Text.Threshold, 1e-9)
	assert.Equal(t, 3, cfg.Image.MaxFaces)
	assert.Equal(t, 2*time.Second, cfg.ML.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6380", cfg.Redis.Connection().Address)
	assert.Equal(t, 2*time.Second, cfg.ML.Transport().Timeout)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{name: "bad port", mutate: func(c *config.Config) { c.Service.Port = 70000 }, field: "service.port"},
		{name: "bad threshold", mutate: func(c *config.Config) { c.Text.Threshold = 1.5 }, field: "text.threshold"},
		{name: "unknown model", mutate: func(c *config.Config) { c.Text.Model = "gpt" }, field: "text.model"},
		{name: "sidecar without url", mutate: func(c *config.Config) { c.Text.Model = config.ModelSidecar }, field: "text.sidecar_url"},
		{name: "bad url", mutate: func(c *config.Config) { c.Image.BackboneURL = "ftp://x" }, field: "image.backbone_url"},
		{name: "negative max pixels", mutate: func(c *config.Config) { c.Image.MaxPixels = -1 }, field: "image.max_pixels"},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, field: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			config.SetDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var vErr *infraconfig.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

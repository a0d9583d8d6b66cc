package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/veracity/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string        `yaml:"name"`
	Port    int           `env:"SAMPLE_PORT"    yaml:"port"`
	Ratio   float64       `env:"SAMPLE_RATIO"   yaml:"ratio"`
	Enabled bool          `env:"SAMPLE_ENABLED" yaml:"enabled"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" yaml:"timeout"`
	Tags    []string      `env:"SAMPLE_TAGS"    yaml:"tags"`
	Nested  struct {
		URL string `env:"SAMPLE_URL" yaml:"url"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeFile(t, "name: svc\nport: 9000\nratio: 0.25\nnested:\n  url: http://a\n")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.InDelta(t, 0.25, cfg.Ratio, 1e-9)
	assert.Equal(t, "http://a", cfg.Nested.URL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "port: 9000\n")
	t.Setenv("SAMPLE_PORT", "9100")
	t.Setenv("SAMPLE_ENABLED", "yes")
	t.Setenv("SAMPLE_TIMEOUT", "3s")
	t.Setenv("SAMPLE_TAGS", "a, b ,c")
	t.Setenv("SAMPLE_URL", "http://b")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.Equal(t, "http://b", cfg.Nested.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load[sample](filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigNotFound))
}

func TestLoadWithDefaults_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SAMPLE_RATIO", "0.75")

	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yml"), func(s *sample) {
		if s.Port == 0 {
			s.Port = 8080
		}
		if s.Ratio == 0 {
			s.Ratio = 0.5
		}
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.InDelta(t, 0.75, cfg.Ratio, 1e-9, "env wins over defaults")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "port: [unterminated\n")

	_, err := config.Load[sample](path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, config.ErrConfigNotFound))
}

func TestValidationHelpers(t *testing.T) {
	t.Parallel()

	var vErr *config.ValidationError

	require.ErrorAs(t, config.ValidatePort("service.port", 0), &vErr)
	assert.Equal(t, "service.port", vErr.Field)
	assert.NoError(t, config.ValidatePort("service.port", 8090))

	assert.Error(t, config.ValidateUnitInterval("text.threshold", 1.5))
	assert.NoError(t, config.ValidateUnitInterval("text.threshold", 0.5))

	assert.NoError(t, config.ValidateOptionalURL("ml.url", ""))
	assert.NoError(t, config.ValidateOptionalURL("ml.url", "http://ml:8000"))
	assert.Error(t, config.ValidateOptionalURL("ml.url", "ml:8000"))

	assert.Error(t, config.ValidateLogLevel("logging.level", "loud"))
}

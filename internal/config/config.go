// Package config holds the veracity service configuration.
package config

import (
	"errors"
	"time"

	infraconfig "github.com/jonesrussell/veracity/infrastructure/config"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/infrastructure/profiling"
	infraredis "github.com/jonesrussell/veracity/infrastructure/redis"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/llmclient"
	"github.com/jonesrussell/veracity/internal/mltransport"
)

// Default configuration values.
const (
	defaultServiceName      = "veracity"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8000
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultMaxFaces         = 5
	defaultAnalysisSize     = 224
	defaultMaxUploadBytes   = 10 << 20
	defaultMaxPixels        = 40_000_000
	defaultMaxBatchItems    = 20
	defaultRedisAddress     = "localhost:6379"
	defaultCacheTTL         = 24 * time.Hour
	defaultFetchTimeout     = 15 * time.Second
	defaultFetchMaxBytes    = 10 << 20
	defaultMLTimeout        = 5 * time.Second
	defaultMLRetryAttempts  = 2
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
)

// Text model strategies.
const (
	ModelNone      = "none"
	ModelSidecar   = "sidecar"
	ModelAnthropic = "anthropic"
)

// Config holds all configuration for the veracity service.
type Config struct {
	Service   ServiceConfig      `yaml:"service"`
	Logging   infralogger.Config `yaml:"logging"`
	Auth      AuthConfig         `yaml:"auth"`
	Text      TextConfig         `yaml:"text"`
	Image     ImageConfig        `yaml:"image"`
	Redis     RedisConfig        `yaml:"redis"`
	Fetch     fetch.Config       `yaml:"fetch"`
	ML        MLConfig           `yaml:"ml"`
	Profiling profiling.Config   `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string        `yaml:"name"`
	Version        string        `yaml:"version"`
	Port           int           `env:"VERACITY_PORT"     yaml:"port"`
	Debug          bool          `env:"APP_DEBUG"         yaml:"debug"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"      yaml:"cors_origins"`
	MaxBatchItems  int           `yaml:"max_batch_items"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// AuthConfig holds authentication configuration. An empty secret leaves
// the API open.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// TextConfig holds text analysis settings.
type TextConfig struct {
	Threshold      float64          `yaml:"threshold"`
	LexiconFile    string           `env:"VERACITY_LEXICON_FILE" yaml:"lexicon_file"`
	WatchLexicon   bool             `yaml:"watch_lexicon"`
	DetectLanguage bool             `yaml:"detect_language"`
	Model          string           `env:"VERACITY_TEXT_MODEL"   yaml:"model"`
	SidecarURL     string           `env:"ML_SIDECAR_URL"        yaml:"sidecar_url"`
	SentimentURL   string           `env:"ML_SENTIMENT_URL"      yaml:"sentiment_url"`
	Anthropic      llmclient.Config `yaml:"anthropic"`
}

// ImageConfig holds image analysis settings.
type ImageConfig struct {
	Threshold         float64 `yaml:"threshold"`
	CascadeFile       string  `env:"VERACITY_CASCADE_FILE"  yaml:"cascade_file"`
	SecondaryFacesURL string  `env:"ML_FACES_URL"           yaml:"secondary_faces_url"`
	BackboneURL       string  `env:"ML_BACKBONE_URL"        yaml:"backbone_url"`
	MaxFaces          int     `yaml:"max_faces"`
	AnalysisSize      int     `yaml:"analysis_size"`
	MaxUploadBytes    int64   `env:"VERACITY_MAX_UPLOAD"    yaml:"max_upload_bytes"`
	MaxPixels         int64   `yaml:"max_pixels"`
}

// RedisConfig holds Redis configuration for the score cache and stats.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `env:"REDIS_DB"       yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// MLConfig holds the shared model sidecar transport settings.
type MLConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	RateLimit        float64       `yaml:"rate_limit"`
	Burst            int           `yaml:"burst"`
	RetryAttempts    int           `yaml:"retry_attempts"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, SetDefaults)
}

// SetDefaults applies default values to the config.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging)
	setTextDefaults(&cfg.Text)
	setImageDefaults(&cfg.Image)
	setRedisDefaults(&cfg.Redis)
	setFetchDefaults(&cfg.Fetch)
	setMLDefaults(&cfg.ML)
	// Auth and profiling defaults are handled by env tags
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.MaxBatchItems == 0 {
		s.MaxBatchItems = defaultMaxBatchItems
	}
}

func setLoggingDefaults(l *infralogger.Config) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setTextDefaults(t *TextConfig) {
	if t.Threshold == 0 {
		t.Threshold = domain.TextThreshold
	}
	if t.Model == "" {
		t.Model = ModelNone
	}
}

func setImageDefaults(i *ImageConfig) {
	if i.Threshold == 0 {
		i.Threshold = domain.ImageThreshold
	}
	if i.MaxFaces == 0 {
		i.MaxFaces = defaultMaxFaces
	}
	if i.AnalysisSize == 0 {
		i.AnalysisSize = defaultAnalysisSize
	}
	if i.MaxUploadBytes == 0 {
		i.MaxUploadBytes = defaultMaxUploadBytes
	}
	if i.MaxPixels == 0 {
		i.MaxPixels = defaultMaxPixels
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTL
	}
}

func setFetchDefaults(f *fetch.Config) {
	if f.Timeout == 0 {
		f.Timeout = defaultFetchTimeout
	}
	if f.MaxBytes == 0 {
		f.MaxBytes = defaultFetchMaxBytes
	}
}

func setMLDefaults(m *MLConfig) {
	if m.Timeout == 0 {
		m.Timeout = defaultMLTimeout
	}
	if m.RetryAttempts == 0 {
		m.RetryAttempts = defaultMLRetryAttempts
	}
	if m.BreakerThreshold == 0 {
		m.BreakerThreshold = defaultBreakerThreshold
	}
	if m.BreakerTimeout == 0 {
		m.BreakerTimeout = defaultBreakerTimeout
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	checks := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateLogLevel("logging.level", c.Logging.Level),
		infraconfig.ValidateUnitInterval("text.threshold", c.Text.Threshold),
		infraconfig.ValidateUnitInterval("image.threshold", c.Image.Threshold),
		infraconfig.ValidateOptionalURL("text.sidecar_url", c.Text.SidecarURL),
		infraconfig.ValidateOptionalURL("text.sentiment_url", c.Text.SentimentURL),
		infraconfig.ValidateOptionalURL("image.secondary_faces_url", c.Image.SecondaryFacesURL),
		infraconfig.ValidateOptionalURL("image.backbone_url", c.Image.BackboneURL),
		c.validateModel(),
	}

	if c.Image.MaxFaces < 1 {
		checks = append(checks, &infraconfig.ValidationError{Field: "image.max_faces", Message: "must be at least 1"})
	}
	if c.Image.MaxUploadBytes < 1 {
		checks = append(checks, &infraconfig.ValidationError{Field: "image.max_upload_bytes", Message: "must be positive"})
	}
	if c.Image.MaxPixels < 1 {
		checks = append(checks, &infraconfig.ValidationError{Field: "image.max_pixels", Message: "must be positive"})
	}

	return errors.Join(checks...)
}

func (c *Config) validateModel() error {
	switch c.Text.Model {
	case ModelNone, ModelAnthropic:
		return nil
	case ModelSidecar:
		if c.Text.SidecarURL == "" {
			return &infraconfig.ValidationError{Field: "text.sidecar_url", Message: "required when text.model is sidecar"}
		}
		return nil
	default:
		return &infraconfig.ValidationError{Field: "text.model", Message: "must be one of: none, sidecar, anthropic"}
	}
}

// Transport returns the sidecar transport settings.
func (m MLConfig) Transport() mltransport.Config {
	return mltransport.Config{
		Timeout:          m.Timeout,
		RateLimit:        m.RateLimit,
		Burst:            m.Burst,
		RetryAttempts:    m.RetryAttempts,
		BreakerThreshold: m.BreakerThreshold,
		BreakerTimeout:   m.BreakerTimeout,
	}
}

// Connection returns the Redis connection settings.
func (r RedisConfig) Connection() infraredis.Config {
	return infraredis.Config{Address: r.Address, Password: r.Password, DB: r.DB}
}

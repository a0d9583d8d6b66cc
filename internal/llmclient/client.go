// Package llmclient scores text with an Anthropic model when no sidecar is
// deployed.
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/telemetry"
)

const (
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 64
	defaultTimeout   = 20 * time.Second
	maxInputRunes    = 4000
	pingText        = "The city council approved the new budget on Tuesday."
)

const systemPrompt = `You assess whether a news text is likely fabricated.
Reply with JSON only, in the form {"fake_probability": x}, where x is a number
between 0 and 1. 0 means certainly authentic and 1 means certainly fabricated.`

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("anthropic api key is not set")

// ErrNoProbability is returned when a reply holds no number in [0,1].
var ErrNoProbability = errors.New("no probability in model reply")

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// Config holds the Anthropic settings.
type Config struct {
	APIKey    string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string        `env:"ANTHROPIC_MODEL"   yaml:"model"`
	MaxTokens int64         `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	BaseURL   string        `yaml:"base_url"`
}

// Client implements textanalysis.ModelClient on the Messages API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
	telemetry *telemetry.Provider
}

// New creates a client. A missing API key wraps domain.ErrModelUnavailable
// so bootstrap falls back to rules.
func New(cfg Config, tp *telemetry.Provider) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, ErrNoAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:    sdk.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		telemetry: tp,
	}, nil
}

// PredictFake asks the model for a fake probability.
func (c *Client) PredictFake(ctx context.Context, text string) (float64, error) {
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(truncate(text))),
		},
		Temperature: sdk.Float(0),
	})
	c.telemetry.RecordModelLatency("anthropic", time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("%w: anthropic: create message: %w", domain.ErrModelUnavailable, err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}

	p, err := ParseProbability(reply.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return p, nil
}

// Ping sends one short request to confirm the key and model work.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.PredictFake(ctx, pingText); err != nil {
		return fmt.Errorf("anthropic ping: %w", err)
	}
	return nil
}

// ParseProbability returns the first number in reply that lies in [0,1].
func ParseProbability(reply string) (float64, error) {
	for _, match := range numberPattern.FindAllString(reply, -1) {
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		if v >= 0 && v <= 1 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNoProbability, reply)
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxInputRunes {
		return text
	}
	return string([]rune(text)[:maxInputRunes])
}

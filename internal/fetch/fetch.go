// Package fetch downloads articles and images referenced by URL in
// comprehensive analysis requests.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	infrahttp "github.com/jonesrussell/veracity/infrastructure/http"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; Veracity/1.0)"
	defaultMaxBytes  = 10 << 20
)

var (
	// ErrDisabled is returned when fetching is switched off in config.
	ErrDisabled = errors.New("url fetching is disabled")
	// ErrInvalidURL is returned for anything but an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrTooLarge is returned when a body exceeds MaxBytes.
	ErrTooLarge = errors.New("response body too large")
	// ErrNoContent is returned when readability finds no article text.
	ErrNoContent = errors.New("no article content found")
)

// Config controls outbound fetches.
type Config struct {
	Enabled   bool          `env:"FETCH_ENABLED"  yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxBytes  int64         `env:"FETCH_MAX_BYTES" yaml:"max_bytes"`
}

// Article is the readable content of a page.
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// Fetcher retrieves pages and images.
type Fetcher struct {
	cfg    Config
	client *http.Client
	logger infralogger.Logger
}

// New creates a Fetcher.
func New(cfg Config, log infralogger.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Fetcher{
		cfg:    cfg,
		client: infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Timeout}),
		logger: log,
	}
}

// FetchArticle downloads rawURL and extracts its title, main text and
// og:image URL.
func (f *Fetcher) FetchArticle(ctx context.Context, rawURL string) (*Article, error) {
	parsedURL, body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, ErrNoContent
	}

	out := &Article{
		URL:   rawURL,
		Title: strings.TrimSpace(article.Title),
		Text:  text,
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.logger.Debug("Failed to parse HTML for og:image", infralogger.String("url", rawURL), infralogger.Error(err))
		return out, nil
	}
	out.ImageURL = ogImage(doc, parsedURL)

	f.logger.Info("Fetched article",
		infralogger.String("url", rawURL),
		infralogger.Int("text_length", len(out.Text)),
		infralogger.Bool("has_image", out.ImageURL != ""),
	)
	return out, nil
}

// FetchImage downloads rawURL and returns its bytes.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	_, body, err := f.get(ctx, rawURL)
	return body, err
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*url.URL, []byte, error) {
	if !f.cfg.Enabled {
		return nil, nil, ErrDisabled
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch %s: unexpected status code: %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxBytes {
		return nil, nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, f.cfg.MaxBytes)
	}

	return parsedURL, body, nil
}

// ogImage returns the absolute og:image (or twitter:image) URL, if any.
func ogImage(doc *goquery.Document, base *url.URL) string {
	for _, sel := range []string{"meta[property='og:image']", "meta[name='twitter:image']"} {
		content, exists := doc.Find(sel).First().Attr("content")
		content = strings.TrimSpace(content)
		if !exists || content == "" {
			continue
		}
		ref, err := url.Parse(content)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

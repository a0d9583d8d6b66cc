// Package mlclient is the HTTP client for the model sidecar: text fake
// probability, sentiment, secondary face detection and face embeddings.
package mlclient

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/mltransport"
	"github.com/jonesrussell/veracity/internal/telemetry"
)

// MaxTextRunes is the longest text sent to /predict/text.
const MaxTextRunes = 512

// Sidecar endpoints.
const (
	pathPredictText      = "/predict/text"
	pathPredictSentiment = "/predict/sentiment"
	pathDetectFaces      = "/detect/faces"
	pathEmbedFace        = "/embed/face"
)

const defaultFaceConfidence = 0.9

// Client is an HTTP client for the model sidecar.
type Client struct {
	baseURL   string
	transport *mltransport.Transport
	telemetry *telemetry.Provider
}

type textRequest struct {
	Text string `json:"text"`
}

// PredictResponse is the response body from /predict/text.
type PredictResponse struct {
	FakeProbability float64 `json:"fake_probability"`
}

// SentimentResponse is the response body from /predict/sentiment.
type SentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FaceBox is one face returned by /detect/faces.
type FaceBox struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	Confidence float64 `json:"confidence"`
}

// FacesResponse is the response body from /detect/faces.
type FacesResponse struct {
	Faces []FaceBox `json:"faces"`
}

// EmbedResponse is the response body from /embed/face.
type EmbedResponse struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// NewClient creates a sidecar client. tp may be nil.
func NewClient(baseURL string, transport *mltransport.Transport, tp *telemetry.Provider) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		telemetry: tp,
	}
}

// PredictFake returns the model's fake probability for text. Text longer
// than MaxTextRunes is truncated.
func (c *Client) PredictFake(ctx context.Context, text string) (float64, error) {
	var resp PredictResponse
	if err := c.postJSON(ctx, pathPredictText, textRequest{Text: truncateRunes(text, MaxTextRunes)}, &resp); err != nil {
		return 0, fmt.Errorf("predict text: %w", err)
	}
	if resp.FakeProbability < 0 || resp.FakeProbability > 1 {
		return 0, fmt.Errorf("%w: fake_probability %v out of range", domain.ErrModelUnavailable, resp.FakeProbability)
	}
	return resp.FakeProbability, nil
}

// Sentiment returns the sentiment label and score for text.
func (c *Client) Sentiment(ctx context.Context, text string) (string, float64, error) {
	var resp SentimentResponse
	if err := c.postJSON(ctx, pathPredictSentiment, textRequest{Text: truncateRunes(text, MaxTextRunes)}, &resp); err != nil {
		return "", 0, fmt.Errorf("predict sentiment: %w", err)
	}

	label := strings.ToLower(resp.Label)
	switch label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
	default:
		return "", 0, fmt.Errorf("%w: unknown sentiment label %q", domain.ErrModelUnavailable, resp.Label)
	}
	return label, domain.Clamp01(resp.Score), nil
}

// DetectFaces sends PNG bytes to the secondary face detector.
func (c *Client) DetectFaces(ctx context.Context, png []byte) ([]domain.FaceCandidate, error) {
	var resp FacesResponse
	if err := c.postBytes(ctx, pathDetectFaces, png, &resp); err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]domain.FaceCandidate, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if f.W <= 0 || f.H <= 0 {
			continue
		}
		conf := f.Confidence
		if conf <= 0 {
			conf = defaultFaceConfidence
		}
		faces = append(faces, domain.FaceCandidate{
			BBox:       domain.BoundingBox{X: f.X, Y: f.Y, W: f.W, H: f.H},
			Confidence: domain.Clamp01(conf),
		})
	}
	return faces, nil
}

// EmbedFace returns the mean and standard deviation of the backbone
// embedding of one face PNG.
func (c *Client) EmbedFace(ctx context.Context, png []byte) (mean, std float64, err error) {
	var resp EmbedResponse
	if postErr := c.postBytes(ctx, pathEmbedFace, png, &resp); postErr != nil {
		return 0, 0, fmt.Errorf("embed face: %w", postErr)
	}
	return resp.Mean, resp.Std, nil
}

// Health checks the sidecar and returns its model version.
func (c *Client) Health(ctx context.Context) (string, error) {
	status, err := c.transport.Health(ctx, c.baseURL)
	if err != nil {
		return "", fmt.Errorf("sidecar health: %w", err)
	}
	return status.ModelVersion, nil
}

func (c *Client) postJSON(ctx context.Context, path string, req, resp any) error {
	start := time.Now()
	err := c.transport.PostJSON(ctx, c.baseURL+path, req, resp)
	c.telemetry.RecordModelLatency(path, time.Since(start))
	return err
}

func (c *Client) postBytes(ctx context.Context, path string, body []byte, resp any) error {
	start := time.Now()
	err := c.transport.PostBytes(ctx, c.baseURL+path, "image/png", body, resp)
	c.telemetry.RecordModelLatency(path, time.Since(start))
	return err
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

package api

import (
	"time"

	"github.com/jonesrussell/veracity/internal/domain"
)

// TextDetectRequest is the body of POST /api/text/detect. Text must be
// present but may be empty.
type TextDetectRequest struct {
	Text     *string `json:"text"     binding:"required"`
	Language string  `json:"language"`
}

// TextDetectResponse is the result of one text analysis. Features names
// the extracted features; FeatureValues carries their values.
type TextDetectResponse struct {
	AnalysisID     string              `json:"analysis_id"`
	IsFake         bool                `json:"is_fake"`
	Confidence     float64             `json:"confidence"`
	Score          domain.ScoreResult  `json:"score"`
	Explanation    domain.Explanation  `json:"explanation"`
	Features       []string            `json:"features"`
	FeatureValues  domain.TextFeatures `json:"feature_values"`
	ProcessingTime float64             `json:"processing_time"`
	Timestamp      time.Time           `json:"timestamp"`
}

// BatchTextRequest is the body of POST /api/text/batch-detect.
type BatchTextRequest struct {
	Texts    []string `json:"texts"    binding:"required,min=1"`
	Language string   `json:"language"`
}

// BatchItemResponse is one element of a batch response. Exactly one of
// Result and Error is set.
type BatchItemResponse struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// BatchResponse wraps per-item results.
type BatchResponse struct {
	Results        []BatchItemResponse `json:"results"`
	Total          int                 `json:"total"`
	Success        int                 `json:"success"`
	Failed         int                 `json:"failed"`
	ProcessingTime float64             `json:"processing_time"`
}

// ImageDetectResponse is the result of one image analysis.
type ImageDetectResponse struct {
	AnalysisID     string                `json:"analysis_id"`
	IsDeepfake     bool                  `json:"is_deepfake"`
	Confidence     float64               `json:"confidence"`
	Score          domain.ScoreResult    `json:"score"`
	Explanation    domain.Explanation    `json:"explanation"`
	Features       domain.ImageFeatures  `json:"features"`
	FaceDetected   bool                  `json:"face_detected"`
	FaceCount      int                   `json:"face_count"`
	FaceArtifacts  []domain.FaceArtifact `json:"face_artifacts"`
	ProcessingTime float64               `json:"processing_time"`
	Timestamp      time.Time             `json:"timestamp"`
}

// ComprehensiveRequest is the JSON body of POST /api/analysis/comprehensive.
// ArticleURL supplies text when Text is blank, and its og:image supplies
// the image when no other image is given.
type ComprehensiveRequest struct {
	Text         string `json:"text"          form:"text"`
	Language     string `json:"language"      form:"language"`
	ImageURL     string `json:"image_url"     form:"image_url"`
	ImageBase64  string `json:"image_base64"  form:"image_base64"`
	ArticleURL   string `json:"article_url"   form:"article_url"`
	AnalyzeFaces *bool  `json:"analyze_faces" form:"analyze_faces"`
}

// ComprehensiveResponse combines both modalities.
type ComprehensiveResponse struct {
	AnalysisID        string               `json:"analysis_id"`
	OverallScore      float64              `json:"overall_score"`
	TextAnalysis      *TextDetectResponse  `json:"text_analysis,omitempty"`
	ImageAnalysis     *ImageDetectResponse `json:"image_analysis,omitempty"`
	CrossModalInsight string               `json:"cross_modal_insight,omitempty"`
	Recommendations   []string             `json:"recommendations"`
	Source            *SourceInfo          `json:"source,omitempty"`
	ProcessingTime    float64              `json:"processing_time"`
	Timestamp         time.Time            `json:"timestamp"`
}

// SourceInfo describes a fetched article.
type SourceInfo struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// TextStatsResponse is the body of GET /api/text/stats.
type TextStatsResponse struct {
	TotalProcessed int64     `json:"total_processed"`
	FakeDetected   int64     `json:"fake_detected"`
	RealDetected   int64     `json:"real_detected"`
	FakeRate       float64   `json:"fake_rate"`
	Method         string    `json:"method"`
	LastAnalysis   time.Time `json:"last_analysis"`
}

// ImageStatsResponse is the body of GET /api/image/stats.
type ImageStatsResponse struct {
	TotalProcessed    int64     `json:"total_processed"`
	DeepfakeDetected  int64     `json:"deepfake_detected"`
	AuthenticDetected int64     `json:"authentic_detected"`
	DeepfakeRate      float64   `json:"deepfake_rate"`
	LastAnalysis      time.Time `json:"last_analysis"`
}

// DashboardResponse is the body of GET /api/analysis/dashboard.
type DashboardResponse struct {
	TotalAnalyses         int64     `json:"total_analyses"`
	TextAnalyses          int64     `json:"text_analyses"`
	ImageAnalyses         int64     `json:"image_analyses"`
	ComprehensiveAnalyses int64     `json:"comprehensive_analyses"`
	FakeDetected          int64     `json:"fake_detected"`
	DeepfakeDetected      int64     `json:"deepfake_detected"`
	FakeRate              float64   `json:"fake_rate"`
	DeepfakeRate          float64   `json:"deepfake_rate"`
	TextMethod            string    `json:"text_method"`
	LastAnalysis          time.Time `json:"last_analysis"`
}

// TrendPoint is one bucket of the trends view.
type TrendPoint struct {
	Date          string `json:"date,omitempty"`
	Week          string `json:"week,omitempty"`
	Total         int64  `json:"total"`
	Fake          int64  `json:"fake"`
	Deepfake      int64  `json:"deepfake"`
	Comprehensive int64  `json:"comprehensive"`
}

// TrendsResponse is the body of GET /api/analysis/trends.
type TrendsResponse struct {
	Days        int          `json:"days"`
	DailyStats  []TrendPoint `json:"daily_stats"`
	WeeklyStats []TrendPoint `json:"weekly_stats"`
}

func newTextResponse(id string, res domain.TextResult, ts time.Time) *TextDetectResponse {
	return &TextDetectResponse{
		AnalysisID:     id,
		IsFake:         res.Score.IsPositive,
		Confidence:     res.Score.Confidence,
		Score:          res.Score,
		Explanation:    res.Explanation,
		Features:       res.Features.Names(),
		FeatureValues:  res.Features,
		ProcessingTime: res.Duration.Seconds(),
		Timestamp:      ts,
	}
}

func newImageResponse(id string, res domain.ImageResult, ts time.Time) *ImageDetectResponse {
	faces := res.Faces
	if faces == nil {
		faces = []domain.FaceArtifact{}
	}
	return &ImageDetectResponse{
		AnalysisID:     id,
		IsDeepfake:     res.Score.IsPositive,
		Confidence:     res.Score.Confidence,
		Score:          res.Score,
		Explanation:    res.Explanation,
		Features:       res.Features,
		FaceDetected:   res.FaceDetected,
		FaceCount:      res.FaceCount,
		FaceArtifacts:  faces,
		ProcessingTime: res.Duration.Seconds(),
		Timestamp:      ts,
	}
}

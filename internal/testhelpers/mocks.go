// Package testhelpers provides shared test doubles for veracity packages.
// The mocks follow mockgen's generated layout so they can be regenerated
// with:
//
//	mockgen -destination=internal/testhelpers/mocks.go -package=testhelpers . ModelClient,SentimentAnalyzer,FaceLocator,FaceDetector,Embedder
package testhelpers

import (
	"context"
	"image"
	"reflect"

	"github.com/jonesrussell/veracity/internal/domain"
	"go.uber.org/mock/gomock"
)

// MockModelClient is a mock of textanalysis.ModelClient.
type MockModelClient struct {
	ctrl     *gomock.Controller
	recorder *MockModelClientMockRecorder
}

// MockModelClientMockRecorder is the mock recorder for MockModelClient.
type MockModelClientMockRecorder struct {
	mock *MockModelClient
}

// NewMockModelClient creates a new mock instance.
func NewMockModelClient(ctrl *gomock.Controller) *MockModelClient {
	mock := &MockModelClient{ctrl: ctrl}
	mock.recorder = &MockModelClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockModelClient) EXPECT() *MockModelClientMockRecorder {
	return m.recorder
}

// PredictFake mocks base method.
func (m *MockModelClient) PredictFake(ctx context.Context, text string) (float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PredictFake", ctx, text)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PredictFake indicates an expected call of PredictFake.
func (mr *MockModelClientMockRecorder) PredictFake(ctx, text any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PredictFake", reflect.TypeOf((*MockModelClient)(nil).PredictFake), ctx, text)
}

// MockSentimentAnalyzer is a mock of textanalysis.SentimentAnalyzer.
type MockSentimentAnalyzer struct {
	ctrl     *gomock.Controller
	recorder *MockSentimentAnalyzerMockRecorder
}

// MockSentimentAnalyzerMockRecorder is the mock recorder for MockSentimentAnalyzer.
type MockSentimentAnalyzerMockRecorder struct {
	mock *MockSentimentAnalyzer
}

// NewMockSentimentAnalyzer creates a new mock instance.
func NewMockSentimentAnalyzer(ctrl *gomock.Controller) *MockSentimentAnalyzer {
	mock := &MockSentimentAnalyzer{ctrl: ctrl}
	mock.recorder = &MockSentimentAnalyzerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSentimentAnalyzer) EXPECT() *MockSentimentAnalyzerMockRecorder {
	return m.recorder
}

// Sentiment mocks base method.
func (m *MockSentimentAnalyzer) Sentiment(ctx context.Context, text string) (string, float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Sentiment", ctx, text)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(float64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Sentiment indicates an expected call of Sentiment.
func (mr *MockSentimentAnalyzerMockRecorder) Sentiment(ctx, text any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Sentiment", reflect.TypeOf((*MockSentimentAnalyzer)(nil).Sentiment), ctx, text)
}

// MockFaceLocator is a mock of imageanalysis.FaceLocator.
type MockFaceLocator struct {
	ctrl     *gomock.Controller
	recorder *MockFaceLocatorMockRecorder
}

// MockFaceLocatorMockRecorder is the mock recorder for MockFaceLocator.
type MockFaceLocatorMockRecorder struct {
	mock *MockFaceLocator
}

// NewMockFaceLocator creates a new mock instance.
func NewMockFaceLocator(ctrl *gomock.Controller) *MockFaceLocator {
	mock := &MockFaceLocator{ctrl: ctrl}
	mock.recorder = &MockFaceLocatorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFaceLocator) EXPECT() *MockFaceLocatorMockRecorder {
	return m.recorder
}

// LocateFaces mocks base method.
func (m *MockFaceLocator) LocateFaces(ctx context.Context, img image.Image) ([]domain.FaceCandidate, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LocateFaces", ctx, img)
	ret0, _ := ret[0].([]domain.FaceCandidate)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LocateFaces indicates an expected call of LocateFaces.
func (mr *MockFaceLocatorMockRecorder) LocateFaces(ctx, img any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LocateFaces", reflect.TypeOf((*MockFaceLocator)(nil).LocateFaces), ctx, img)
}

// MockFaceDetector is a mock of imageanalysis.FaceDetector.
type MockFaceDetector struct {
	ctrl     *gomock.Controller
	recorder *MockFaceDetectorMockRecorder
}

// MockFaceDetectorMockRecorder is the mock recorder for MockFaceDetector.
type MockFaceDetectorMockRecorder struct {
	mock *MockFaceDetector
}

// NewMockFaceDetector creates a new mock instance.
func NewMockFaceDetector(ctrl *gomock.Controller) *MockFaceDetector {
	mock := &MockFaceDetector{ctrl: ctrl}
	mock.recorder = &MockFaceDetectorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFaceDetector) EXPECT() *MockFaceDetectorMockRecorder {
	return m.recorder
}

// DetectFaces mocks base method.
func (m *MockFaceDetector) DetectFaces(ctx context.Context, png []byte) ([]domain.FaceCandidate, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DetectFaces", ctx, png)
	ret0, _ := ret[0].([]domain.FaceCandidate)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DetectFaces indicates an expected call of DetectFaces.
func (mr *MockFaceDetectorMockRecorder) DetectFaces(ctx, png any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DetectFaces", reflect.TypeOf((*MockFaceDetector)(nil).DetectFaces), ctx, png)
}

// MockEmbedder is a mock of imageanalysis.Embedder.
type MockEmbedder struct {
	ctrl     *gomock.Controller
	recorder *MockEmbedderMockRecorder
}

// MockEmbedderMockRecorder is the mock recorder for MockEmbedder.
type MockEmbedderMockRecorder struct {
	mock *MockEmbedder
}

// NewMockEmbedder creates a new mock instance.
func NewMockEmbedder(ctrl *gomock.Controller) *MockEmbedder {
	mock := &MockEmbedder{ctrl: ctrl}
	mock.recorder = &MockEmbedderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEmbedder) EXPECT() *MockEmbedderMockRecorder {
	return m.recorder
}

// EmbedFace mocks base method.
func (m *MockEmbedder) EmbedFace(ctx context.Context, png []byte) (float64, float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EmbedFace", ctx, png)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(float64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// EmbedFace indicates an expected call of EmbedFace.
func (mr *MockEmbedderMockRecorder) EmbedFace(ctx, png any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EmbedFace", reflect.TypeOf((*MockEmbedder)(nil).EmbedFace), ctx, png)
}

package llmclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/llmclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["system"])

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": reply},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := llmclient.New(llmclient.Config{}, nil)
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
	require.ErrorIs(t, err, llmclient.ErrNoAPIKey)
}

func TestPredictFake(t *testing.T) {
	t.Parallel()

	ts := messageServer(t, http.StatusOK, `{"fake_probability": 0.72}`)
	client, err := llmclient.New(llmclient.Config{APIKey: "test-key", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	p, err := client.PredictFake(context.Background(), "shocking secret they don't want you to know")
	require.NoError(t, err)
	assert.InDelta(t, 0.72, p, 1e-9)
	require.NoError(t, client.Ping(context.Background()))
}

func TestPredictFake_UnparseableReply(t *testing.T) {
	t.Parallel()

	ts := messageServer(t, http.StatusOK, "I cannot tell.")
	client, err := llmclient.New(llmclient.Config{APIKey: "test-key", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = client.PredictFake(context.Background(), "text")
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
	require.ErrorIs(t, err, llmclient.ErrNoProbability)
}

func TestPredictFake_APIError(t *testing.T) {
	t.Parallel()

	ts := messageServer(t, http.StatusBadRequest, "")
	client, err := llmclient.New(llmclient.Config{APIKey: "test-key", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = client.PredictFake(context.Background(), "text")
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
	require.Error(t, client.Ping(context.Background()))
}

func TestParseProbability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reply   string
		want    float64
		wantErr bool
	}{
		{reply: `{"fake_probability": 0.3}`, want: 0.3},
		{reply: "Probability: 1", want: 1},
		{reply: "Score 85 out of 100, so 0.85", want: 0.85},
		{reply: ".5", want: 0.5},
		{reply: "no numbers here", wantErr: true},
		{reply: "42 and -3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := llmclient.ParseProbability(tt.reply)
		if tt.wantErr {
			require.ErrorIs(t, err, llmclient.ErrNoProbability, tt.reply)
			continue
		}
		require.NoError(t, err, tt.reply)
		assert.InDelta(t, tt.want, got, 1e-9, tt.reply)
	}
}

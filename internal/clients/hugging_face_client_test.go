package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHuggingFaceClient(t *testing.T, handler http.HandlerFunc, attempts int) *HuggingFaceClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewHuggingFaceClient(context.Background(), config.SentimentConfig{
		Endpoint:    server.URL,
		Token:       "test-token",
		MaxAttempts: attempts,
		Timeout:     5 * time.Second,
	})
	client.backoff = time.Millisecond
	return client
}

func TestHuggingFaceClient_Classify(t *testing.T) {
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.InferenceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"love it", "hate it"}, req.Inputs)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[{"label":"POSITIVE","score":0.99},{"label":"NEGATIVE","score":0.01}],
			[{"label":"NEGATIVE","score":0.97},{"label":"POSITIVE","score":0.03}]
		]`))
	}, 1)

	out, err := client.Classify(context.Background(), []string{"love it", "hate it"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "POSITIVE", out[0][0].Label)
	assert.InDelta(t, 0.99, out[0][0].Score, 1e-9)
	assert.Equal(t, "NEGATIVE", out[1][0].Label)
}

func TestHuggingFaceClient_ServerErrorCarriesBody(t *testing.T) {
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	}, 1)

	_, err := client.Classify(context.Background(), []string{"x"})
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	ue, ok := errs.Upstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, `{"error":"model crashed"}`, ue.Body)
}

func TestHuggingFaceClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}, 3)

	_, err := client.Classify(context.Background(), []string{"x"})
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHuggingFaceClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"loading"}`))
			return
		}
		var req models.InferenceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"retry me"}, req.Inputs, "body must be resent on retry")
		_, _ = w.Write([]byte(`[[{"label":"POSITIVE","score":0.9}]]`))
	}, 3)

	out, err := client.Classify(context.Background(), []string{"retry me"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHuggingFaceClient_MalformedJSON(t *testing.T) {
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}, 1)

	_, err := client.Classify(context.Background(), []string{"x"})
	require.ErrorIs(t, err, errs.ErrUpstreamMalformed)
}

func TestHuggingFaceClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := NewHuggingFaceClient(context.Background(), config.SentimentConfig{Endpoint: endpoint, Token: "t", MaxAttempts: 1})

	_, err := client.Classify(context.Background(), []string{"x"})
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	assert.False(t, client.HealthCheck(context.Background()))
}

func TestHuggingFaceClient_HealthCheck(t *testing.T) {
	client := newTestHuggingFaceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}, 1)
	assert.True(t, client.HealthCheck(context.Background()))
}

func TestHuggingFaceClient_ZeroAttemptsStillSendsOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[[{"label":"POSITIVE","score":0.9}]]`))
	}))
	t.Cleanup(server.Close)

	client := &HuggingFaceClient{Client: server.Client(), Endpoint: server.URL}

	out, err := client.Classify(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int32(1), calls.Load())
}

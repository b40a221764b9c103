package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"golang.org/x/oauth2"
)

// HuggingFaceClient calls a hosted text-classification model.
type HuggingFaceClient struct {
	Client      *http.Client
	Endpoint    string
	MaxAttempts int
	backoff     time.Duration
}

// NewHuggingFaceClient authenticates every request with the bearer token in cfg.
// A base *http.Client stored in ctx under oauth2.HTTPClient is used as transport.
func NewHuggingFaceClient(ctx context.Context, cfg config.SentimentConfig) *HuggingFaceClient {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	}))
	client.Timeout = cfg.Timeout

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("max_attempts", attempts))

	return &HuggingFaceClient{
		Client:      client,
		Endpoint:    cfg.Endpoint,
		MaxAttempts: attempts,
		backoff:     INITIAL_BACKOFF,
	}
}

func (h *HuggingFaceClient) Name() string {
	return SERVICE_HUGGINGFACE
}

// Classify sends all inputs in one request and returns one ranked label list per input.
func (h *HuggingFaceClient) Classify(ctx context.Context, inputs []string) (models.InferenceResponse, error) {
	var result models.InferenceResponse
	slog.Info("[HuggingFaceClient] Requesting sentiment analysis",
		slog.Int("inputs", len(inputs)))
	start := time.Now()

	if err := h.postJSON(ctx, h.Endpoint, models.InferenceRequest{Inputs: inputs}, &result); err != nil {
		slog.Error("[HuggingFaceClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	slog.Info("[HuggingFaceClient] Sentiment Analysis request successful",
		slog.Int("results", len(result)),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck reports whether the endpoint answers without a server error.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < http.StatusInternalServerError
}

// DoWithRetry rebuilds and sends the request until it succeeds, returns a
// non-5xx status, or MaxAttempts is exhausted.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.backoff
	attempts := max(h.MaxAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}
		}

		var req *http.Request
		req, err = build()
		if err != nil {
			return nil, err
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		if attempt == attempts-1 {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))
	}

	return resp, err
}

// helper function for posting data to the inference service
func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		slog.Error("[HuggingFaceClient] Request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return errs.Unavailable(SERVICE_HUGGINGFACE, 0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Unavailable(SERVICE_HUGGINGFACE, resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("[HuggingFaceClient] Unexpected status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return errs.Unavailable(SERVICE_HUGGINGFACE, resp.StatusCode, respBody, nil)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return errs.Malformed(SERVICE_HUGGINGFACE, respBody, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := []rune(string(respBody))
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", string(raw))
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}

package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
)

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

// NewOpenAIClient returns nil when no API key is configured.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	if cfg.APIKey == "" {
		slog.Info("[OpenAIClient] OPENAI_API_KEY not set, topic labels disabled")
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAIClient{
		Client: openai.NewClient(opts...),
		Model:  cfg.Model,
	}
}

// Complete sends one system + user exchange and returns the trimmed reply.
func (oc *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := oc.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model:       openai.F(openai.ChatModel(oc.Model)),
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", errs.Unavailable(SERVICE_OPENAI, apiErr.StatusCode, nil, err)
		}
		return "", errs.Unavailable(SERVICE_OPENAI, 0, nil, err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", errs.Malformed(SERVICE_OPENAI, nil, fmt.Errorf("empty completion"))
	}

	return CleanOpenAIResponse(completion.Choices[0].Message.Content), nil
}

// CleanOpenAIResponse strips code fences and normalises curly quotes.
func CleanOpenAIResponse(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}

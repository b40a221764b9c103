package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/spacesedan/commentscope/internal/utils"
)

const DEFAULT_MAX_TOKENS = 500

// Classifier labels a batch of texts. The result holds one rank-ordered list
// per input, in input order.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, inputs []string) (models.InferenceResponse, error)
}

type Annotator struct {
	classifier Classifier
	maxTokens  int
}

func NewAnnotator(classifier Classifier, maxTokens int) *Annotator {
	if maxTokens <= 0 {
		maxTokens = DEFAULT_MAX_TOKENS
	}
	return &Annotator{classifier: classifier, maxTokens: maxTokens}
}

// Annotate classifies every text in one call and aggregates the top labels.
// An empty input yields an unavailable summary without calling the classifier.
func (a *Annotator) Annotate(ctx context.Context, texts []string) (models.SentimentSummary, error) {
	if len(texts) == 0 {
		slog.Info("[Annotator] No texts to annotate")
		return models.UnavailableSentiment(), nil
	}

	inputs := make([]string, len(texts))
	truncated := 0
	for i, text := range texts {
		if utils.CountTokens(text) > a.maxTokens {
			truncated++
		}
		inputs[i] = utils.TruncateTokens(text, a.maxTokens)
	}

	start := time.Now()
	results, err := a.classifier.Classify(ctx, inputs)
	if err != nil {
		return models.SentimentSummary{}, fmt.Errorf("classify %d texts: %w", len(inputs), err)
	}

	labels, err := topLabels(a.classifier.Name(), results, len(inputs))
	if err != nil {
		slog.Error("[Annotator] Classifier response rejected",
			slog.String("classifier", a.classifier.Name()),
			slog.String("error", err.Error()))
		return models.SentimentSummary{}, err
	}

	summary := models.SummarizeLabels(labels)
	slog.Info("[Annotator] Sentiment aggregated",
		slog.String("classifier", a.classifier.Name()),
		slog.Int("total", summary.Total),
		slog.Int("truncated", truncated),
		slog.Float64("positive_pct", summary.Positive),
		slog.Float64("negative_pct", summary.Negative),
		slog.Duration("elapsed", time.Since(start)))

	return summary, nil
}

func topLabels(service string, results models.InferenceResponse, expected int) ([]string, error) {
	if len(results) != expected {
		return nil, errs.Malformed(service, nil,
			fmt.Errorf("classifier returned %d results for %d inputs", len(results), expected))
	}

	labels := make([]string, len(results))
	for i, ranked := range results {
		if len(ranked) == 0 {
			return nil, errs.Malformed(service, nil, fmt.Errorf("result %d has no labels", i))
		}
		label := strings.ToUpper(strings.TrimSpace(ranked[0].Label))
		if label == "" {
			return nil, errs.Malformed(service, nil, fmt.Errorf("result %d is missing its label", i))
		}
		labels[i] = label
	}
	return labels, nil
}

package topicgeneration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
)

const (
	SERVICE_TOPIC_MODEL = "topic-model"
	DEFAULT_TOP_WORDS   = 10
	MIN_DOCUMENTS_FLOOR = 2
	LABEL_KEYWORD_COUNT = 3
)

type ModelConfig struct {
	NumTopics     int
	TopWords      int
	MaxIterations int
	Seed          int64
	Language      string
	MinWordLength int
}

// TopicModel is fitted once on a corpus and discarded.
type TopicModel interface {
	FitTransform(ctx context.Context, docs []string) (models.TopicModelOutput, error)
}

type ModelFactory func(ModelConfig) TopicModel

// Labeler names topics from their keywords. One label per topic, in order.
type Labeler interface {
	Label(ctx context.Context, topics []models.Topic) ([]string, error)
}

type Extractor struct {
	factory ModelFactory
	cfg     config.TopicsConfig
	labeler Labeler
}

// NewExtractor builds an Extractor. labeler may be nil.
func NewExtractor(cfg config.TopicsConfig, factory ModelFactory, labeler Labeler) *Extractor {
	if factory == nil {
		factory = NewNMFModel
	}
	if cfg.MinDocuments < MIN_DOCUMENTS_FLOOR {
		cfg.MinDocuments = MIN_DOCUMENTS_FLOOR
	}
	if cfg.TopWords <= 0 {
		cfg.TopWords = DEFAULT_TOP_WORDS
	}
	return &Extractor{factory: factory, cfg: cfg, labeler: labeler}
}

// Extract fits a fresh model on texts. Blank texts are not modelled; they get
// an all-zero distribution and assignment -1.
func (e *Extractor) Extract(ctx context.Context, texts []string, numTopics int) (models.TopicResult, error) {
	if numTopics < 1 {
		return models.TopicResult{}, errs.Invalid("number of topics must be at least 1, got %d", numTopics)
	}

	docs := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, text)
		positions = append(positions, i)
	}
	if len(docs) < e.cfg.MinDocuments {
		slog.Info("[TopicExtractor] Not enough comments to model",
			slog.Int("documents", len(docs)),
			slog.Int("min_documents", e.cfg.MinDocuments))
		return models.TopicResult{}, fmt.Errorf("%w: %d documents, need at least %d",
			errs.ErrInsufficientData, len(docs), e.cfg.MinDocuments)
	}

	model := e.factory(ModelConfig{
		NumTopics:     numTopics,
		TopWords:      e.cfg.TopWords,
		MaxIterations: e.cfg.MaxIterations,
		Seed:          e.cfg.Seed,
		Language:      e.cfg.Language,
		MinWordLength: e.cfg.MinWordLength,
	})

	start := time.Now()
	out, err := model.FitTransform(ctx, docs)
	if err != nil {
		return models.TopicResult{}, fmt.Errorf("fit topic model: %w", err)
	}
	if err := validateOutput(out, len(docs)); err != nil {
		return models.TopicResult{}, err
	}

	result := e.shape(out, positions, len(texts))
	e.applyLabels(ctx, result.Topics)

	slog.Info("[TopicExtractor] Topics extracted",
		slog.Int("documents", len(docs)),
		slog.Int("requested", numTopics),
		slog.Int("topics", len(result.Topics)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func validateOutput(out models.TopicModelOutput, docs int) error {
	if len(out.TopicWords) == 0 {
		return errs.Malformed(SERVICE_TOPIC_MODEL, nil, fmt.Errorf("model produced no topics"))
	}
	if len(out.DocumentTopics) != docs {
		return errs.Malformed(SERVICE_TOPIC_MODEL, nil,
			fmt.Errorf("model returned %d distributions for %d documents", len(out.DocumentTopics), docs))
	}
	for i, row := range out.DocumentTopics {
		if len(row) != len(out.TopicWords) {
			return errs.Malformed(SERVICE_TOPIC_MODEL, nil,
				fmt.Errorf("document %d has %d topic weights, want %d", i, len(row), len(out.TopicWords)))
		}
	}
	return nil
}

func (e *Extractor) shape(out models.TopicModelOutput, positions []int, total int) models.TopicResult {
	k := len(out.TopicWords)

	weights := make([]float64, k)
	for _, row := range out.DocumentTopics {
		for t, w := range row {
			weights[t] += w
		}
	}

	topics := make([]models.Topic, k)
	for t := 0; t < k; t++ {
		keywords := normalizeKeywords(out.TopicWords[t], e.cfg.TopWords)
		topics[t] = models.Topic{
			ID:       t,
			Label:    DefaultLabel(t, keywords),
			Weight:   weights[t] / float64(len(out.DocumentTopics)),
			Keywords: keywords,
		}
	}

	distributions := make([][]float64, total)
	assignments := make([]int, total)
	for i := range assignments {
		assignments[i] = -1
		distributions[i] = make([]float64, k)
	}
	for d, row := range out.DocumentTopics {
		pos := positions[d]
		copy(distributions[pos], row)
		assignments[pos] = argmax(row)
	}

	return models.TopicResult{
		Topics:         topics,
		DocumentTopics: distributions,
		Assignments:    assignments,
	}
}

// normalizeKeywords keeps the n heaviest keywords, rescaled to sum to 1.
func normalizeKeywords(words []models.Keyword, n int) []models.Keyword {
	ranked := make([]models.Keyword, 0, len(words))
	for _, w := range words {
		if w.Weight > 0 {
			ranked = append(ranked, w)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Weight > ranked[j].Weight })
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	var sum float64
	for _, w := range ranked {
		sum += w.Weight
	}
	for i := range ranked {
		ranked[i].Weight /= sum
	}
	return ranked
}

// argmax returns the index of the largest weight, or -1 for an all-zero row.
func argmax(row []float64) int {
	best := -1
	var bestWeight float64
	for i, w := range row {
		if w > bestWeight {
			best, bestWeight = i, w
		}
	}
	return best
}

// DefaultLabel is "<id>_<kw1>_<kw2>_<kw3>".
func DefaultLabel(id int, keywords []models.Keyword) string {
	parts := []string{strconv.Itoa(id)}
	for i := 0; i < len(keywords) && i < LABEL_KEYWORD_COUNT; i++ {
		parts = append(parts, keywords[i].Word)
	}
	return strings.Join(parts, "_")
}

func (e *Extractor) applyLabels(ctx context.Context, topics []models.Topic) {
	if e.labeler == nil || len(topics) == 0 {
		return
	}

	labels, err := e.labeler.Label(ctx, topics)
	if err != nil {
		slog.Warn("[TopicExtractor] Topic labeling failed, keeping keyword labels",
			slog.String("error", err.Error()))
		return
	}
	for i := range topics {
		if i < len(labels) && strings.TrimSpace(labels[i]) != "" {
			topics[i].Label = strings.TrimSpace(labels[i])
		}
	}
}

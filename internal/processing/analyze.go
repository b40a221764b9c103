package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/spacesedan/commentscope/internal/monitoring"
	"github.com/spacesedan/commentscope/internal/utils"
)

const (
	STEP_FETCH     = "fetch"
	STEP_SENTIMENT = "sentiment"
	STEP_TOPICS    = "topics"
)

type Fetcher interface {
	Fetch(ctx context.Context, videoID string, maxResults int) (models.CommentBatch, error)
}

type SentimentAnnotator interface {
	Annotate(ctx context.Context, texts []string) (models.SentimentSummary, error)
}

type TopicExtractor interface {
	Extract(ctx context.Context, texts []string, numTopics int) (models.TopicResult, error)
}

// Request is one analysis. Zero limits fall back to the analyzer defaults.
type Request struct {
	Input       string
	MaxComments int
	NumTopics   int
}

type Analyzer struct {
	fetcher     Fetcher
	annotator   SentimentAnnotator
	extractor   TopicExtractor
	metrics     *monitoring.Metrics
	maxComments int
	numTopics   int
}

func NewAnalyzer(fetcher Fetcher, annotator SentimentAnnotator, extractor TopicExtractor, metrics *monitoring.Metrics, maxComments, numTopics int) *Analyzer {
	return &Analyzer{
		fetcher:     fetcher,
		annotator:   annotator,
		extractor:   extractor,
		metrics:     metrics,
		maxComments: maxComments,
		numTopics:   numTopics,
	}
}

// Analyze runs fetch, then sentiment and topics side by side on the same
// comments. Only unusable input is returned as an error; upstream failures
// are recorded on the step they belong to.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*models.Analysis, error) {
	maxComments, numTopics, err := a.limits(req)
	if err != nil {
		return nil, err
	}

	videoID, err := utils.ResolveVideoID(req.Input)
	if err != nil {
		return nil, err
	}

	analysis := &models.Analysis{
		RequestID: uuid.NewString(),
		Input:     req.Input,
		VideoID:   videoID,
		StartedAt: time.Now(),
		NumTopics: numTopics,
	}
	logger := slog.With(slog.String("request_id", analysis.RequestID), slog.String("video_id", videoID))
	logger.Info("[Analyzer] Starting analysis",
		slog.Int("max_comments", maxComments),
		slog.Int("num_topics", numTopics))

	fetchStart := time.Now()
	comments, err := a.fetcher.Fetch(ctx, videoID, maxComments)
	if errors.Is(err, errs.ErrInputInvalid) {
		return nil, err
	}
	analysis.Comments = comments
	analysis.Fetch = a.record(STEP_FETCH, err, len(comments) > 0, fetchStart)
	a.metrics.ObserveComments(len(comments))

	texts := comments.Texts()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		start := time.Now()
		summary, err := a.annotator.Annotate(ctx, texts)
		if err == nil && !summary.Available {
			err = fmt.Errorf("%w: no comments to score", errs.ErrInsufficientData)
		}
		if err != nil {
			summary = models.UnavailableSentiment()
		}
		analysis.Sentiment = summary
		analysis.SentimentStep = a.record(STEP_SENTIMENT, err, false, start)
	}()

	go func() {
		defer wg.Done()
		start := time.Now()
		topics, err := a.extractor.Extract(ctx, texts, numTopics)
		analysis.Topics = topics
		analysis.TopicStep = a.record(STEP_TOPICS, err, false, start)
	}()

	wg.Wait()
	analysis.Duration = time.Since(analysis.StartedAt)

	logger.Info("[Analyzer] Analysis finished",
		slog.Int("comments", len(comments)),
		slog.String("fetch", string(analysis.Fetch.Status)),
		slog.String("sentiment", string(analysis.SentimentStep.Status)),
		slog.String("topics", string(analysis.TopicStep.Status)),
		slog.Duration("elapsed", analysis.Duration))

	return analysis, nil
}

func (a *Analyzer) limits(req Request) (int, int, error) {
	maxComments, numTopics := a.maxComments, a.numTopics
	if req.MaxComments < 0 {
		return 0, 0, errs.Invalid("max comments must be positive, got %d", req.MaxComments)
	}
	if req.NumTopics < 0 {
		return 0, 0, errs.Invalid("number of topics must be positive, got %d", req.NumTopics)
	}
	if req.MaxComments > 0 && req.MaxComments < maxComments {
		maxComments = req.MaxComments
	}
	if req.NumTopics > 0 {
		numTopics = req.NumTopics
	}
	return maxComments, numTopics, nil
}

func (a *Analyzer) record(step string, err error, hasData bool, start time.Time) models.StepReport {
	report := StepReportFrom(err, hasData)
	a.metrics.ObserveStep(step, report, time.Since(start))
	a.metrics.ObserveFailure(err)
	if err != nil && report.Status != models.StepSkipped {
		slog.Warn("[Analyzer] Step did not complete",
			slog.String("step", step),
			slog.String("status", string(report.Status)),
			slog.String("error", err.Error()))
	}
	return report
}

// StepReportFrom turns a step error into what the dashboard shows. hasData
// marks a failure that still produced usable output.
func StepReportFrom(err error, hasData bool) models.StepReport {
	if err == nil {
		return models.StepReport{Status: models.StepOK}
	}

	report := models.StepReport{Status: models.StepFailed, Message: err.Error()}
	if hasData {
		report.Status = models.StepPartial
	}

	switch {
	case errors.Is(err, errs.ErrInsufficientData):
		report.Status = models.StepSkipped
	case errors.Is(err, context.DeadlineExceeded):
		report.Message = "timed out waiting for upstream: " + err.Error()
	}

	if ue, ok := errs.Upstream(err); ok {
		report.StatusCode = ue.StatusCode
		report.Body = ue.Body
	}
	return report
}

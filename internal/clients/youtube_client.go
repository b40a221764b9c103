package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeClient lists top-level comment threads through the Data API v3.
type YouTubeClient struct {
	service *youtube.Service
	limiter *rate.Limiter
	timeout time.Duration
}

func NewYouTubeClient(ctx context.Context, cfg config.YouTubeConfig) (*YouTubeClient, error) {
	opts := []option.ClientOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithUserAgent(USER_AGENT),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("[YouTubeClient] Failed to create service: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	slog.Info("[YouTubeClient] Initializing Client",
		slog.Duration("request_interval", cfg.RequestInterval),
		slog.Duration("timeout", cfg.Timeout))

	return &YouTubeClient{
		service: service,
		limiter: rate.NewLimiter(limit, 1),
		timeout: cfg.Timeout,
	}, nil
}

// ListCommentThreads fetches one page of top-level comments in relevance order.
func (yc *YouTubeClient) ListCommentThreads(ctx context.Context, req models.CommentPageRequest) (models.CommentPage, error) {
	if err := yc.limiter.Wait(ctx); err != nil {
		return models.CommentPage{}, errs.Unavailable(SERVICE_YOUTUBE, 0, nil, err)
	}

	if yc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, yc.timeout)
		defer cancel()
	}

	call := yc.service.CommentThreads.List([]string{"snippet"}).
		VideoId(req.VideoID).
		TextFormat("plainText").
		Order("relevance").
		MaxResults(int64(req.PageSize)).
		Context(ctx)
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	start := time.Now()
	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			slog.Warn("[YouTubeClient] commentThreads.list returned an error status",
				slog.String("video_id", req.VideoID),
				slog.Int("status", apiErr.Code),
				slog.String("message", apiErr.Message))
			return models.CommentPage{}, errs.Unavailable(SERVICE_YOUTUBE, apiErr.Code, []byte(apiErr.Body), errors.New(apiErr.Message))
		}

		slog.Warn("[YouTubeClient] commentThreads.list request failed",
			slog.String("video_id", req.VideoID),
			slog.String("error", err.Error()))
		return models.CommentPage{}, errs.Unavailable(SERVICE_YOUTUBE, 0, nil, err)
	}

	page := models.CommentPage{
		Comments:      make([]models.Comment, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for i, item := range resp.Items {
		comment, err := toComment(item)
		if err != nil {
			return models.CommentPage{}, errs.Malformed(SERVICE_YOUTUBE, nil, fmt.Errorf("item %d: %w", i, err))
		}
		page.Comments = append(page.Comments, comment)
	}

	slog.Debug("[YouTubeClient] Fetched comment page",
		slog.String("video_id", req.VideoID),
		slog.Int("count", len(page.Comments)),
		slog.Bool("has_next", page.NextPageToken != ""),
		slog.Duration("elapsed", time.Since(start)))

	return page, nil
}

func toComment(item *youtube.CommentThread) (models.Comment, error) {
	if item == nil || item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
		return models.Comment{}, errors.New("missing topLevelComment snippet")
	}
	snippet := item.Snippet.TopLevelComment.Snippet

	published, err := time.Parse(time.RFC3339, snippet.PublishedAt)
	if err != nil {
		return models.Comment{}, fmt.Errorf("invalid publishedAt %q: %w", snippet.PublishedAt, err)
	}

	comment := models.Comment{
		Author:      snippet.AuthorDisplayName,
		PublishedAt: published,
		LikeCount:   snippet.LikeCount,
		Text:        snippet.TextDisplay,
	}

	if snippet.UpdatedAt != "" {
		updated, err := time.Parse(time.RFC3339, snippet.UpdatedAt)
		if err != nil {
			return models.Comment{}, fmt.Errorf("invalid updatedAt %q: %w", snippet.UpdatedAt, err)
		}
		if !updated.Equal(published) {
			comment.UpdatedAt = &updated
		}
	}

	return comment, nil
}

package processing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
)

// CommentSource returns one page of top-level comments for a video.
type CommentSource interface {
	ListCommentThreads(ctx context.Context, req models.CommentPageRequest) (models.CommentPage, error)
}

type CommentFetcher struct {
	source   CommentSource
	pageSize int
}

func NewCommentFetcher(source CommentSource, pageSize int) *CommentFetcher {
	if pageSize < 1 || pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}
	return &CommentFetcher{source: source, pageSize: pageSize}
}

// Fetch collects at most maxResults comments in upstream order. When a page
// fails, the comments gathered so far are returned along with the error.
func (f *CommentFetcher) Fetch(ctx context.Context, videoID string, maxResults int) (models.CommentBatch, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, errs.Invalid("video id is empty")
	}
	if maxResults < 1 {
		return nil, errs.Invalid("max results must be at least 1, got %d", maxResults)
	}

	start := time.Now()
	batch := make(models.CommentBatch, 0, min(maxResults, f.pageSize))
	seen := make(map[string]struct{})
	token := ""
	pages := 0

	for len(batch) < maxResults {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		remaining := maxResults - len(batch)
		page, err := f.source.ListCommentThreads(ctx, models.CommentPageRequest{
			VideoID:   videoID,
			PageSize:  min(f.pageSize, remaining),
			PageToken: token,
		})
		if err != nil {
			slog.Warn("[CommentFetcher] Page request failed, stopping pagination",
				slog.String("video_id", videoID),
				slog.Int("page", pages+1),
				slog.Int("collected", len(batch)),
				slog.String("error", err.Error()))
			return batch, fmt.Errorf("fetch page %d: %w", pages+1, err)
		}
		pages++

		comments := page.Comments
		if len(comments) > remaining {
			comments = comments[:remaining]
		}
		batch = append(batch, comments...)

		if page.NextPageToken == "" {
			break
		}
		if _, dup := seen[page.NextPageToken]; dup || page.NextPageToken == token {
			slog.Warn("[CommentFetcher] Continuation token repeated, stopping pagination",
				slog.String("video_id", videoID),
				slog.Int("page", pages))
			break
		}
		seen[page.NextPageToken] = struct{}{}
		token = page.NextPageToken
	}

	slog.Info("[CommentFetcher] Comments fetched",
		slog.String("video_id", videoID),
		slog.Int("count", len(batch)),
		slog.Int("pages", pages),
		slog.Duration("elapsed", time.Since(start)))

	return batch, nil
}

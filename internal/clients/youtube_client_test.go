package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commentPageJSON = `{
  "items": [
    {"snippet": {"topLevelComment": {"snippet": {
      "authorDisplayName": "@alice",
      "publishedAt": "2024-03-01T10:00:00Z",
      "updatedAt": "2024-03-01T10:00:00Z",
      "likeCount": 12,
      "textDisplay": "Great video!"
    }}}},
    {"snippet": {"topLevelComment": {"snippet": {
      "authorDisplayName": "@bob",
      "publishedAt": "2024-03-02T11:30:00Z",
      "updatedAt": "2024-03-03T08:00:00Z",
      "likeCount": 0,
      "textDisplay": "Not convinced."
    }}}}
  ],
  "nextPageToken": "PAGE2"
}`

func newTestYouTubeClient(t *testing.T, handler http.HandlerFunc) *YouTubeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewYouTubeClient(context.Background(), config.YouTubeConfig{
		APIKey:   "test-key",
		Endpoint: server.URL + "/",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestYouTubeClient_ListCommentThreads(t *testing.T) {
	client := newTestYouTubeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/commentThreads", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "VID123", q.Get("videoId"))
		assert.Equal(t, "plainText", q.Get("textFormat"))
		assert.Equal(t, "relevance", q.Get("order"))
		assert.Equal(t, "50", q.Get("maxResults"))
		assert.Equal(t, "PAGE1", q.Get("pageToken"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(commentPageJSON))
	})

	page, err := client.ListCommentThreads(context.Background(), models.CommentPageRequest{
		VideoID:   "VID123",
		PageSize:  50,
		PageToken: "PAGE1",
	})
	require.NoError(t, err)

	assert.Equal(t, "PAGE2", page.NextPageToken)
	require.Len(t, page.Comments, 2)

	first := page.Comments[0]
	assert.Equal(t, "@alice", first.Author)
	assert.Equal(t, int64(12), first.LikeCount)
	assert.Equal(t, "Great video!", first.Text)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), first.PublishedAt.UTC())
	assert.Nil(t, first.UpdatedAt, "unchanged comments carry no update time")

	second := page.Comments[1]
	require.NotNil(t, second.UpdatedAt)
	assert.Equal(t, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC), second.UpdatedAt.UTC())
}

func TestYouTubeClient_FirstPageOmitsToken(t *testing.T) {
	client := newTestYouTubeClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["pageToken"]
		assert.False(t, present)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	})

	page, err := client.ListCommentThreads(context.Background(), models.CommentPageRequest{VideoID: "VID123", PageSize: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Comments)
	assert.Empty(t, page.NextPageToken)
}

func TestYouTubeClient_ErrorStatus(t *testing.T) {
	client := newTestYouTubeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The video has disabled comments.","errors":[{"reason":"commentsDisabled"}]}}`))
	})

	_, err := client.ListCommentThreads(context.Background(), models.CommentPageRequest{VideoID: "VID123", PageSize: 100})
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	ue, ok := errs.Upstream(err)
	require.True(t, ok)
	assert.Equal(t, SERVICE_YOUTUBE, ue.Service)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Contains(t, ue.Body, "commentsDisabled")
}

func TestYouTubeClient_MalformedItem(t *testing.T) {
	client := newTestYouTubeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"snippet": {}}]}`))
	})

	_, err := client.ListCommentThreads(context.Background(), models.CommentPageRequest{VideoID: "VID123", PageSize: 100})
	require.ErrorIs(t, err, errs.ErrUpstreamMalformed)
}

func TestYouTubeClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/"
	server.Close()

	client, err := NewYouTubeClient(context.Background(), config.YouTubeConfig{APIKey: "k", Endpoint: endpoint})
	require.NoError(t, err)

	_, err = client.ListCommentThreads(context.Background(), models.CommentPageRequest{VideoID: "VID123", PageSize: 100})
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	ue, ok := errs.Upstream(err)
	require.True(t, ok)
	assert.Zero(t, ue.StatusCode)
}

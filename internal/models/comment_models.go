package models

import "time"

// Comment is one top-level comment as returned by the comment source.
type Comment struct {
	Author      string     `json:"author"`
	PublishedAt time.Time  `json:"published_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	LikeCount   int64      `json:"like_count"`
	Text        string     `json:"text"`
}

// CommentBatch keeps upstream relevance order across pages.
type CommentBatch []Comment

func (b CommentBatch) Texts() []string {
	texts := make([]string, len(b))
	for i, c := range b {
		texts[i] = c.Text
	}
	return texts
}

type CommentPageRequest struct {
	VideoID   string
	PageSize  int
	PageToken string
}

type CommentPage struct {
	Comments      []Comment
	NextPageToken string
}

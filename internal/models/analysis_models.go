package models

import "time"

type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepPartial StepStatus = "partial"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepReport is the user-facing outcome of one pipeline step.
type StepReport struct {
	Status     StepStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
	StatusCode int        `json:"status_code,omitempty"`
	Body       string     `json:"body,omitempty"`
}

func (s StepReport) OK() bool {
	return s.Status == StepOK
}

type Analysis struct {
	RequestID     string           `json:"request_id"`
	Input         string           `json:"input"`
	VideoID       string           `json:"video_id"`
	StartedAt     time.Time        `json:"started_at"`
	Duration      time.Duration    `json:"duration"`
	NumTopics     int              `json:"num_topics"`
	Comments      CommentBatch     `json:"comments"`
	Fetch         StepReport       `json:"fetch"`
	Sentiment     SentimentSummary `json:"sentiment"`
	SentimentStep StepReport       `json:"sentiment_step"`
	Topics        TopicResult      `json:"topics"`
	TopicStep     StepReport       `json:"topic_step"`
}

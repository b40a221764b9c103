package report

import (
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/commentscope/internal/models"
	"github.com/stretchr/testify/assert"
)

func sampleAnalysis() *models.Analysis {
	return &models.Analysis{
		RequestID: "req-1",
		VideoID:   "ABC123",
		Duration:  1500 * time.Millisecond,
		Comments: models.CommentBatch{
			{Author: "@alice", PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), LikeCount: 1200, Text: "Great | video\nreally"},
			{Author: "@bob", PublishedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Text: "meh"},
		},
		Fetch:         models.StepReport{Status: models.StepOK},
		Sentiment:     models.SummarizeLabels([]string{"POSITIVE", "NEGATIVE", "POSITIVE"}),
		SentimentStep: models.StepReport{Status: models.StepOK},
		Topics: models.TopicResult{
			Topics: []models.Topic{
				{ID: 0, Label: "0_light_heavy", Weight: 0.2, Keywords: []models.Keyword{{Word: "light"}, {Word: "heavy"}}},
				{ID: 1, Label: "1_big_topic", Weight: 0.8, Keywords: []models.Keyword{{Word: "big"}}},
			},
			Assignments: []int{1, 1},
		},
		TopicStep: models.StepReport{Status: models.StepOK},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleAnalysis())

	assert.Contains(t, md, "# Comment analysis for `ABC123`")
	assert.Contains(t, md, "- Positive: 66.67%")
	assert.Contains(t, md, "- Negative: 33.33%")
	assert.Contains(t, md, "| 1_big_topic | 0.800 | 2 | big |")
	assert.Contains(t, md, `Great \| video really`)
	assert.Contains(t, md, "1,200")
	assert.Less(t, strings.Index(md, "1_big_topic"), strings.Index(md, "0_light_heavy"), "topics are ranked by weight")
}

func TestMarkdown_FailedSteps(t *testing.T) {
	a := sampleAnalysis()
	a.Sentiment = models.UnavailableSentiment()
	a.SentimentStep = models.StepReport{Status: models.StepFailed, Message: "huggingface: upstream unavailable", StatusCode: 500}
	a.Topics = models.TopicResult{}
	a.TopicStep = models.StepReport{Status: models.StepSkipped, Message: "insufficient data"}

	md := Markdown(a)

	assert.Contains(t, md, "> **Sentiment failed**: huggingface: upstream unavailable (HTTP 500)")
	assert.Contains(t, md, "Sentiment unavailable.")
	assert.Contains(t, md, "> **Topics skipped**: insufficient data")
	assert.Contains(t, md, "No topics extracted.")
}

func TestHTML(t *testing.T) {
	html := string(HTML(sampleAnalysis()))

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<code>ABC123</code>")
	assert.NotContains(t, html, "| Label |")
}

func TestHTML_DropsRawHTML(t *testing.T) {
	a := sampleAnalysis()
	a.Comments[1].Text = `nice <script>alert(1)</script> video`

	html := string(HTML(a))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "nice")
}

func TestHTML_UnsafeLinksAreInert(t *testing.T) {
	a := sampleAnalysis()
	a.Comments[0].Text = "[click me](javascript:alert(document.cookie))"
	a.Comments[1].Text = "[docs](https://example.com/docs)"

	html := string(HTML(a))

	assert.NotContains(t, html, `href="javascript`)
	assert.Contains(t, html, "click me")
	assert.Contains(t, html, `href="https://example.com/docs"`)
}

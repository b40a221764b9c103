// Package report renders a finished analysis as Markdown and HTML.
package report

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/commentscope/internal/models"
)

const MAX_COMMENT_ROWS = 50

// Markdown renders the analysis as a self-contained Markdown document.
func Markdown(a *models.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Comment analysis for `%s`\n\n", a.VideoID)
	fmt.Fprintf(&b, "Request `%s` analysed %s comments in %s.\n\n",
		a.RequestID, humanize.Comma(int64(len(a.Comments))), a.Duration.Round(time.Millisecond))

	writeStep(&b, "Fetch", a.Fetch)
	writeSentiment(&b, a)
	writeTopics(&b, a)
	writeComments(&b, a.Comments)

	return b.String()
}

// HTML converts the Markdown report with tables enabled. Raw HTML in comment
// text is dropped and links with unsafe schemes are never rendered as anchors.
func HTML(a *models.Analysis) template.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink | blackfriday.NofollowLinks,
	})
	out := blackfriday.Run([]byte(Markdown(a)),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.AutoHeadingIDs),
		blackfriday.WithRenderer(renderer))
	return template.HTML(out)
}

func writeStep(b *strings.Builder, name string, step models.StepReport) {
	if step.Status == models.StepOK || step.Status == "" {
		return
	}
	fmt.Fprintf(b, "> **%s %s**: %s", name, step.Status, oneLine(step.Message))
	if step.StatusCode != 0 {
		fmt.Fprintf(b, " (HTTP %d)", step.StatusCode)
	}
	b.WriteString("\n\n")
}

func writeSentiment(b *strings.Builder, a *models.Analysis) {
	b.WriteString("## Sentiment\n\n")
	writeStep(b, "Sentiment", a.SentimentStep)
	if !a.Sentiment.Available {
		b.WriteString("Sentiment unavailable.\n\n")
		return
	}

	fmt.Fprintf(b, "- Positive: %.2f%%\n", a.Sentiment.Positive)
	fmt.Fprintf(b, "- Negative: %.2f%%\n", a.Sentiment.Negative)
	fmt.Fprintf(b, "- Scored comments: %s\n\n", humanize.Comma(int64(a.Sentiment.Total)))

	labels := make([]string, 0, len(a.Sentiment.Counts))
	for label := range a.Sentiment.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	b.WriteString("| Label | Count | Share |\n|---|---:|---:|\n")
	for _, label := range labels {
		count := a.Sentiment.Counts[label]
		fmt.Fprintf(b, "| %s | %d | %.2f%% |\n", label, count, models.Percent(count, a.Sentiment.Total))
	}
	b.WriteString("\n")
}

func writeTopics(b *strings.Builder, a *models.Analysis) {
	b.WriteString("## Topics\n\n")
	writeStep(b, "Topics", a.TopicStep)
	if len(a.Topics.Topics) == 0 {
		b.WriteString("No topics extracted.\n\n")
		return
	}

	docs := a.Topics.DocumentsPerTopic()
	b.WriteString("| Topic | Weight | Comments | Keywords |\n|---|---:|---:|---|\n")
	for _, t := range a.Topics.RankedByWeight() {
		words := make([]string, 0, len(t.Keywords))
		for _, k := range t.Keywords {
			words = append(words, k.Word)
		}
		fmt.Fprintf(b, "| %s | %.3f | %d | %s |\n", cell(t.Label), t.Weight, docs[t.ID], cell(strings.Join(words, ", ")))
	}
	b.WriteString("\n")
}

func writeComments(b *strings.Builder, comments models.CommentBatch) {
	if len(comments) == 0 {
		return
	}
	b.WriteString("## Comments\n\n| Author | Published | Likes | Comment |\n|---|---|---:|---|\n")
	for i, c := range comments {
		if i == MAX_COMMENT_ROWS {
			fmt.Fprintf(b, "\n_%s more comments not shown._\n", humanize.Comma(int64(len(comments)-MAX_COMMENT_ROWS)))
			break
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			cell(c.Author), c.PublishedAt.Format("2006-01-02"), humanize.Comma(c.LikeCount), cell(c.Text))
	}
	b.WriteString("\n")
}

// cell keeps a value on one table row.
func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

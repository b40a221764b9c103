package server

import (
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spacesedan/commentscope/internal/models"
)

const (
	MAX_BAR_WIDTH    = 100
	MAX_KEYWORD_BARS = 10
)

var templateFuncs = template.FuncMap{
	"comma": func(n any) string {
		switch v := n.(type) {
		case int:
			return humanize.Comma(int64(v))
		case int64:
			return humanize.Comma(v)
		default:
			return fmt.Sprint(v)
		}
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	"weight": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
	"topicBars":   topicBars,
	"keywordBars": keywordBars,
	"docCount": func(r models.TopicResult, id int) int {
		return r.DocumentsPerTopic()[id]
	},
}

// bar is one row of a horizontal bar chart. Width is a percentage of the
// widest bar.
type bar struct {
	Label string
	Value float64
	Width int
}

func topicBars(r models.TopicResult) []bar {
	ranked := r.RankedByWeight()
	bars := make([]bar, len(ranked))
	for i, t := range ranked {
		bars[i] = bar{Label: t.Label, Value: t.Weight}
	}
	return scale(bars)
}

func keywordBars(r models.TopicResult, id int) []bar {
	keywords := r.TopKeywords(id, MAX_KEYWORD_BARS)
	bars := make([]bar, len(keywords))
	for i, k := range keywords {
		bars[i] = bar{Label: k.Word, Value: k.Weight}
	}
	return scale(bars)
}

func scale(bars []bar) []bar {
	var peak float64
	for _, b := range bars {
		peak = math.Max(peak, b.Value)
	}
	if peak <= 0 {
		return bars
	}
	for i := range bars {
		bars[i].Width = int(math.Round(bars[i].Value / peak * MAX_BAR_WIDTH))
	}
	return bars
}

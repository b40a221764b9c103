package models

import "math"

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

type SentimentSummary struct {
	Available bool           `json:"available"`
	Total     int            `json:"total"`
	Counts    map[string]int `json:"counts"`
	Positive  float64        `json:"positive_pct"`
	Negative  float64        `json:"negative_pct"`
	// Labels is the top label per comment, in comment order.
	Labels []string `json:"labels,omitempty"`
}

func UnavailableSentiment() SentimentSummary {
	return SentimentSummary{Counts: map[string]int{}}
}

// Percent returns 100*count/total rounded to two decimals, or 0 when total is 0.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(hundredths(count, total)) / 100
}

// hundredths is the share in units of 0.01%.
func hundredths(count, total int) int64 {
	return int64(math.Round(float64(count) * 10000 / float64(total)))
}

// SummarizeLabels counts labels and derives the POSITIVE and NEGATIVE shares.
func SummarizeLabels(labels []string) SentimentSummary {
	if len(labels) == 0 {
		return UnavailableSentiment()
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}

	positive, negative := shares(counts[LabelPositive], counts[LabelNegative], len(labels))

	return SentimentSummary{
		Available: true,
		Total:     len(labels),
		Counts:    counts,
		Positive:  positive,
		Negative:  negative,
		Labels:    labels,
	}
}

// shares rounds both percentages to two decimals. Rounded independently they
// can overshoot 100.00 by a hundredth, so NEGATIVE takes what POSITIVE left.
func shares(positive, negative, total int) (float64, float64) {
	pos := hundredths(positive, total)
	neg := min(hundredths(negative, total), 10000-pos)
	return float64(pos) / 100, float64(neg) / 100
}

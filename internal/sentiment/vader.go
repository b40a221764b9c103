package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/commentscope/internal/models"
)

const (
	VADER_POSITIVE_THRESHOLD = 0.20
	VADER_NEGATIVE_THRESHOLD = -0.20
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// VaderClassifier scores text locally with VADER. It speaks the same ranked
// label contract as the hosted classifier.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) Name() string {
	return "vader"
}

func (v *VaderClassifier) Classify(ctx context.Context, inputs []string) (models.InferenceResponse, error) {
	out := make(models.InferenceResponse, len(inputs))
	for i, text := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, label := v.AnalyzeWithVADER(text)
		out[i] = rank(label, score)
	}
	return out, nil
}

func (v *VaderClassifier) HealthCheck(context.Context) bool {
	return true
}

func (v *VaderClassifier) AnalyzeWithVADER(text string) (float64, string) {
	plainText := strings.Join(strings.Fields(RemoveLinks(text)), " ")

	score := v.analyzer.PolarityScores(plainText).Compound

	var label string
	if score >= VADER_POSITIVE_THRESHOLD {
		label = models.LabelPositive
	} else if score <= VADER_NEGATIVE_THRESHOLD {
		label = models.LabelNegative
	} else {
		label = models.LabelNeutral
	}

	return score, label
}

// rank orders the winning label first, with the compound magnitude as its score.
func rank(label string, compound float64) []models.LabelScore {
	confidence := math.Abs(compound)
	if label == models.LabelNeutral {
		confidence = 1 - confidence
	}

	ranked := []models.LabelScore{{Label: label, Score: confidence}}
	for _, other := range []string{models.LabelPositive, models.LabelNegative, models.LabelNeutral} {
		if other != label {
			ranked = append(ranked, models.LabelScore{Label: other, Score: (1 - confidence) / 2})
		}
	}
	return ranked
}

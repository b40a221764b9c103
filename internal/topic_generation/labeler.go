package topicgeneration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
)

const labelSystemPrompt = `You name topics found in YouTube comments.
For each topic you receive its keywords, most important first.
Reply with a JSON array of strings holding one short label (at most four words) per topic, in the same order.
Reply with the JSON array only.`

// Completer is the chat completion call the labeler needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type OpenAILabeler struct {
	completer Completer
}

func NewOpenAILabeler(completer Completer) *OpenAILabeler {
	return &OpenAILabeler{completer: completer}
}

func (l *OpenAILabeler) Label(ctx context.Context, topics []models.Topic) ([]string, error) {
	var prompt strings.Builder
	for i, t := range topics {
		words := make([]string, 0, len(t.Keywords))
		for _, k := range t.Keywords {
			words = append(words, k.Word)
		}
		fmt.Fprintf(&prompt, "Topic %d: %s\n", i+1, strings.Join(words, ", "))
	}

	reply, err := l.completer.Complete(ctx, labelSystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("label %d topics: %w", len(topics), err)
	}

	var labels []string
	if err := json.Unmarshal([]byte(reply), &labels); err != nil {
		return nil, errs.Malformed("openai", []byte(reply), fmt.Errorf("failed to unmarshal labels: %w", err))
	}
	if len(labels) != len(topics) {
		return nil, errs.Malformed("openai", []byte(reply),
			fmt.Errorf("got %d labels for %d topics", len(labels), len(topics)))
	}

	slog.Debug("[TopicLabeler] Topics labeled", slog.Int("topics", len(labels)))
	return labels, nil
}

package models

import (
	"sort"
)

type Keyword struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

type Topic struct {
	ID       int       `json:"id"`
	Label    string    `json:"label"`
	Weight   float64   `json:"weight"`
	Keywords []Keyword `json:"keywords"`
}

// TopicModelOutput is the raw result of one fit: keyword weights per topic and
// the topic distribution per document.
type TopicModelOutput struct {
	TopicWords     [][]Keyword
	DocumentTopics [][]float64
}

type TopicResult struct {
	Topics         []Topic     `json:"topics"`
	DocumentTopics [][]float64 `json:"document_topics,omitempty"`
	// Assignments is the dominant topic ID per document, -1 when the document
	// had no modelled terms.
	Assignments []int `json:"assignments,omitempty"`
}

// RankedByWeight returns the topics ordered by prevalence, heaviest first.
func (r TopicResult) RankedByWeight() []Topic {
	ranked := make([]Topic, len(r.Topics))
	copy(ranked, r.Topics)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})
	return ranked
}

// TopKeywords returns at most n keywords of the topic with the given ID.
func (r TopicResult) TopKeywords(id, n int) []Keyword {
	for _, t := range r.Topics {
		if t.ID != id {
			continue
		}
		if n > len(t.Keywords) || n < 0 {
			n = len(t.Keywords)
		}
		return t.Keywords[:n]
	}
	return nil
}

// DocumentsPerTopic counts documents assigned to each topic ID.
func (r TopicResult) DocumentsPerTopic() map[int]int {
	counts := make(map[int]int, len(r.Topics))
	for _, a := range r.Assignments {
		if a >= 0 {
			counts[a]++
		}
	}
	return counts
}

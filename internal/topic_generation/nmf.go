package topicgeneration

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	NMF_EPSILON          = 1e-9
	DEFAULT_NMF_ITERS    = 200
	CONTEXT_CHECK_PERIOD = 10
)

// NMFModel factorises a TF-IDF document-term matrix V into W (documents x
// topics) and H (topics x terms) with multiplicative updates.
type NMFModel struct {
	cfg ModelConfig
	pre Preprocessor
}

func NewNMFModel(cfg ModelConfig) TopicModel {
	return &NMFModel{
		cfg: cfg,
		pre: Preprocessor{Language: cfg.Language, MinWordLength: cfg.MinWordLength},
	}
}

func (m *NMFModel) FitTransform(ctx context.Context, docs []string) (models.TopicModelOutput, error) {
	v, vocab := m.tfidf(docs)
	if len(vocab) == 0 {
		return models.TopicModelOutput{}, fmt.Errorf("%w: no terms left after stopword removal", errs.ErrInsufficientData)
	}

	n, terms := v.Dims()
	k := min(m.cfg.NumTopics, n, terms)
	if k < 1 {
		return models.TopicModelOutput{}, errs.Invalid("topic count must be positive, got %d", m.cfg.NumTopics)
	}

	w, h := m.initFactors(v, k)
	iters := m.cfg.MaxIterations
	if iters <= 0 {
		iters = DEFAULT_NMF_ITERS
	}

	var num, den, gram mat.Dense
	for it := 0; it < iters; it++ {
		if it%CONTEXT_CHECK_PERIOD == 0 {
			if err := ctx.Err(); err != nil {
				return models.TopicModelOutput{}, err
			}
		}

		// H <- H * (W^T V) / (W^T W H)
		num.Reset()
		num.Mul(w.T(), v)
		gram.Reset()
		gram.Mul(w.T(), w)
		den.Reset()
		den.Mul(&gram, h)
		update(h, &num, &den)

		// W <- W * (V H^T) / (W H H^T)
		num.Reset()
		num.Mul(v, h.T())
		gram.Reset()
		gram.Mul(h, h.T())
		den.Reset()
		den.Mul(w, &gram)
		update(w, &num, &den)
	}

	return models.TopicModelOutput{
		TopicWords:     topicWords(h, vocab, m.cfg.TopWords),
		DocumentTopics: documentTopics(w),
	}, nil
}

// tfidf builds the row-normalised TF-IDF matrix with smoothed idf. Terms are
// ordered alphabetically so the factorisation is reproducible.
func (m *NMFModel) tfidf(docs []string) (*mat.Dense, []string) {
	counts := make([]map[string]float64, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]float64)
		for _, tok := range m.pre.Tokenize(doc) {
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}
	if len(df) == 0 {
		return nil, nil
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	v := mat.NewDense(len(docs), len(vocab), nil)
	row := make([]float64, len(vocab))
	for i := range docs {
		for j, term := range vocab {
			tf := counts[i][term]
			if tf == 0 {
				row[j] = 0
				continue
			}
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			row[j] = tf * idf
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		v.SetRow(i, row)
	}
	return v, vocab
}

// initFactors seeds W and H uniformly, scaled to the magnitude of V.
func (m *NMFModel) initFactors(v *mat.Dense, k int) (*mat.Dense, *mat.Dense) {
	n, terms := v.Dims()
	rng := rand.New(rand.NewSource(m.cfg.Seed))
	scale := math.Sqrt(mat.Sum(v) / float64(n*terms) / float64(k))

	w := mat.NewDense(n, k, nil)
	w.Apply(func(_, _ int, _ float64) float64 { return scale*rng.Float64() + NMF_EPSILON }, w)
	h := mat.NewDense(k, terms, nil)
	h.Apply(func(_, _ int, _ float64) float64 { return scale*rng.Float64() + NMF_EPSILON }, h)
	return w, h
}

func update(factor, num, den *mat.Dense) {
	den.Apply(func(_, _ int, x float64) float64 { return x + NMF_EPSILON }, den)
	factor.MulElem(factor, num)
	factor.DivElem(factor, den)
}

func topicWords(h *mat.Dense, vocab []string, topN int) [][]models.Keyword {
	k, terms := h.Dims()
	if topN <= 0 || topN > terms {
		topN = terms
	}

	out := make([][]models.Keyword, k)
	for t := 0; t < k; t++ {
		row := mat.Row(nil, t, h)
		idx := make([]int, terms)
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] > row[idx[b]] })

		words := make([]models.Keyword, 0, topN)
		for _, j := range idx[:topN] {
			if row[j] <= NMF_EPSILON {
				break
			}
			words = append(words, models.Keyword{Word: vocab[j], Weight: row[j]})
		}
		out[t] = words
	}
	return out
}

// documentTopics normalises each row of W into a distribution. Rows without
// mass stay all zero.
func documentTopics(w *mat.Dense) [][]float64 {
	n, _ := w.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := mat.Row(nil, i, w)
		if sum := floats.Sum(row); sum > 0 {
			floats.Scale(1/sum, row)
		} else {
			for j := range row {
				row[j] = 0
			}
		}
		out[i] = row
	}
	return out
}

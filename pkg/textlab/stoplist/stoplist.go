package stoplist

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

// Manager tracks the current stopwords and proposes new ones from corpus
// statistics
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a word is a stopword
type Reason struct {
	HighDF      bool    // appears in a large share of documents
	HighEntropy bool    // spread evenly across labels
	IDF         float64 // inverse document frequency
	CatEntropy  float64 // label entropy
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[s] = Reason{}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a word is a stopword
func (m *Manager) IsStop(word string) bool {
	_, ok := m.stops[word]
	return ok
}

// Add adds a word to the stoplist with a reason
func (m *Manager) Add(word string, reason Reason) {
	m.stops[word] = reason
}

// Remove removes a word from the stoplist
func (m *Manager) Remove(word string) {
	delete(m.stops, word)
}

// All returns all stopwords in alphabetical order
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	slices.Sort(result)
	return result
}

// Stats holds the corpus statistics of one dictionary word
type Stats struct {
	Word       string
	DF         int
	DFPercent  float64
	IDF        float64
	CatEntropy float64 // normalized to [0,1]
}

// Candidate represents a candidate stopword
type Candidate struct {
	Word   string
	Reason Reason
	Score  float64 // confidence score
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent  float64 // e.g. 60: appears in more than 60% of documents
	CatEntropy float64 // e.g. 0.4: normalized label entropy above 0.4
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 60, CatEntropy: 0.4}
}

// SuggestCandidates returns the words that are frequent and evenly spread
// but not yet stopwords, best score first.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}

	var candidates []Candidate
	for _, s := range stats {
		if m.IsStop(s.Word) {
			continue // already a stopword
		}
		reason := Reason{
			HighDF:      s.DFPercent > thresholds.DFPercent,
			HighEntropy: s.CatEntropy > thresholds.CatEntropy,
			IDF:         s.IDF,
			CatEntropy:  s.CatEntropy,
		}
		if !reason.HighDF || !reason.HighEntropy {
			continue
		}
		candidates = append(candidates, Candidate{
			Word:   s.Word,
			Reason: reason,
			Score:  (s.DFPercent/100.0 + s.CatEntropy) / 2.0,
		})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return candidates
}

type labelCounts struct {
	perWord []map[string]int
	labels  map[string]struct{}
	docs    int
}

// Collect computes per-word statistics over unweighted corpus vectors:
// a word occurs in a document when its entry is non-zero.
func Collect(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled], dict *vocab.Dictionary) ([]Stats, error) {
	dim := dict.Len()
	acc, err := dataset.Aggregate(ctx, vectors,
		func() *labelCounts {
			return &labelCounts{perWord: make([]map[string]int, dim), labels: map[string]struct{}{}}
		},
		func(c *labelCounts, doc vectorize.Labeled) *labelCounts {
			c.docs++
			c.labels[doc.Label] = struct{}{}
			for i, x := range doc.Vector {
				if x == 0 || i >= dim {
					continue
				}
				if c.perWord[i] == nil {
					c.perWord[i] = make(map[string]int)
				}
				c.perWord[i][doc.Label]++
			}
			return c
		},
		func(a, b *labelCounts) *labelCounts {
			a.docs += b.docs
			for l := range b.labels {
				a.labels[l] = struct{}{}
			}
			for i, counts := range b.perWord {
				if counts == nil {
					continue
				}
				if a.perWord[i] == nil {
					a.perWord[i] = make(map[string]int, len(counts))
				}
				for l, n := range counts {
					a.perWord[i][l] += n
				}
			}
			return a
		},
	)
	if err != nil {
		return nil, fmt.Errorf("stopword stats: %w", err)
	}

	out := make([]Stats, 0, dim)
	for i, counts := range acc.perWord {
		df := 0
		for _, n := range counts {
			df += n
		}
		if df == 0 {
			continue
		}
		out = append(out, Stats{
			Word:       dict.Word(i),
			DF:         df,
			DFPercent:  100 * float64(df) / float64(acc.docs),
			IDF:        math.Log(float64(acc.docs) / float64(df)),
			CatEntropy: normalizedEntropy(counts, len(acc.labels)),
		})
	}
	return out, nil
}

// normalizedEntropy divides the entropy of counts by its maximum for the
// given number of labels. With a single label every word is evenly spread.
func normalizedEntropy(counts map[string]int, labels int) float64 {
	if labels <= 1 {
		return 1
	}
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(labels))
}

// Package vectorizer turns raw text into fixed-width TF-IDF vectors over
// character n-grams. A model is fitted once offline and is read-only at
// serving time, so it is safe to share across request goroutines.
package vectorizer

import (
	"math"
	"sort"
)

// Options control fitting. Zero values fall back to the defaults used
// for the main-emotion task.
type Options struct {
	MinN        int `json:"minN"`        // shortest n-gram, in runes
	MaxN        int `json:"maxN"`        // longest n-gram, in runes
	MinDocFreq  int `json:"minDocFreq"`  // n-grams seen in fewer docs are dropped
	MaxFeatures int `json:"maxFeatures"` // vocabulary cap
}

func (o Options) withDefaults() Options {
	if o.MinN <= 0 {
		o.MinN = 1
	}
	if o.MaxN < o.MinN {
		o.MaxN = 3
	}
	if o.MinDocFreq <= 0 {
		o.MinDocFreq = 2
	}
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = 4000
	}
	return o
}

// Model is a fitted vectorizer. Exported fields allow the artifact to
// round-trip through JSON.
type Model struct {
	Opts       Options        `json:"opts"`
	Vocabulary map[string]int `json:"vocabulary"` // n-gram -> column index
	IDF        []float64      `json:"idf"`        // indexed by column
}

// Dimensions reports the width of every vector the model produces.
func (m *Model) Dimensions() int { return len(m.IDF) }

// Fit learns a vocabulary and IDF weights from the corpus. N-grams seen
// in fewer than MinDocFreq documents are dropped; the survivors are
// ranked by collection frequency and capped at MaxFeatures.
func Fit(corpus []string, opts Options) *Model {
	opts = opts.withDefaults()

	docFreq := make(map[string]int)
	collFreq := make(map[string]int)
	for _, doc := range corpus {
		counts := ngramCounts(doc, opts.MinN, opts.MaxN)
		for gram, n := range counts {
			docFreq[gram]++
			collFreq[gram] += n
		}
	}

	kept := make([]string, 0, len(docFreq))
	for gram, df := range docFreq {
		if df >= opts.MinDocFreq {
			kept = append(kept, gram)
		}
	}
	// Highest collection frequency first; ties broken lexically so the
	// fitted vocabulary is deterministic.
	sort.Slice(kept, func(i, j int) bool {
		if collFreq[kept[i]] != collFreq[kept[j]] {
			return collFreq[kept[i]] > collFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > opts.MaxFeatures {
		kept = kept[:opts.MaxFeatures]
	}
	// Column order is alphabetical over the final vocabulary.
	sort.Strings(kept)

	vocab := make(map[string]int, len(kept))
	idf := make([]float64, len(kept))
	total := float64(len(corpus))
	for i, gram := range kept {
		vocab[gram] = i
		// Smoothed IDF: ln((1+n)/(1+df)) + 1.
		idf[i] = math.Log((1+total)/(1+float64(docFreq[gram]))) + 1
	}

	return &Model{Opts: opts, Vocabulary: vocab, IDF: idf}
}

// Transform maps text into the fitted space. Out-of-vocabulary n-grams
// are ignored, so degenerate or empty input yields a zero vector of the
// fitted width; Transform never fails.
func (m *Model) Transform(text string) []float64 {
	vec := make([]float64, len(m.IDF))
	if text == "" {
		return vec
	}
	for gram, n := range ngramCounts(text, m.Opts.MinN, m.Opts.MaxN) {
		if col, ok := m.Vocabulary[gram]; ok {
			vec[col] = float64(n) * m.IDF[col]
		}
	}
	return l2Normalize(vec)
}

// ngramCounts counts character n-grams of each length in [minN, maxN],
// operating on runes so multi-byte text segments correctly.
func ngramCounts(text string, minN, maxN int) map[string]int {
	runes := []rune(text)
	counts := make(map[string]int)
	for n := minN; n <= maxN; n++ {
		if n > len(runes) {
			break
		}
		for i := 0; i+n <= len(runes); i++ {
			counts[string(runes[i:i+n])]++
		}
	}
	return counts
}

func l2Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

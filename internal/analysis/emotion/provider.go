package emotion

import (
	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
)

// SubPrediction is a fine-grained emotion with the probability the
// specialized model assigned to it.
type SubPrediction struct {
	Label      string
	Confidence float64
}

// SubProvider predicts the sub-emotion conditioned on the main emotion.
// Implementations must degrade instead of failing: ok is false whenever
// a usable prediction cannot be made, and the caller substitutes the
// "no sub-emotion" sentinel. The two concrete shapes mirror the two
// artifact layouts that exist in the wild: one shared model, or one
// model per main emotion. The shape is resolved once at load time.
type SubProvider interface {
	Predict(mainEmotion, text string) (SubPrediction, bool)
}

// Single wraps one shared vectorizer/forest pair that ignores the
// conditioning label.
type Single struct {
	vec    *vectorizer.Model
	forest *forest.Forest
}

// NewSingle builds the shared-model provider.
func NewSingle(vec *vectorizer.Model, f *forest.Forest) *Single {
	return &Single{vec: vec, forest: f}
}

// Predict implements SubProvider.
func (s *Single) Predict(_ string, text string) (SubPrediction, bool) {
	if s == nil || s.vec == nil || s.forest == nil {
		return SubPrediction{}, false
	}
	return argmax(s.forest, s.vec.Transform(text))
}

type pair struct {
	vec    *vectorizer.Model
	forest *forest.Forest
}

// PerLabel holds one specialized vectorizer/forest pair per main
// emotion. A main emotion without an entry means the training data had
// too little sub-label diversity for a model; Predict reports ok=false
// for it.
type PerLabel struct {
	pairs map[string]pair
}

// NewPerLabel builds the per-main-emotion provider. Labels present in
// only one of the two maps are skipped: half a pair cannot predict.
func NewPerLabel(vecs map[string]*vectorizer.Model, forests map[string]*forest.Forest) *PerLabel {
	pairs := make(map[string]pair, len(forests))
	for label, f := range forests {
		vec, ok := vecs[label]
		if !ok || vec == nil || f == nil {
			continue
		}
		pairs[label] = pair{vec: vec, forest: f}
	}
	return &PerLabel{pairs: pairs}
}

// Predict implements SubProvider.
func (p *PerLabel) Predict(mainEmotion, text string) (SubPrediction, bool) {
	if p == nil {
		return SubPrediction{}, false
	}
	pr, ok := p.pairs[mainEmotion]
	if !ok {
		return SubPrediction{}, false
	}
	return argmax(pr.forest, pr.vec.Transform(text))
}

// Labels lists the main emotions that have a specialized model.
func (p *PerLabel) Labels() []string {
	out := make([]string, 0, len(p.pairs))
	for label := range p.pairs {
		out = append(out, label)
	}
	return out
}

func argmax(f *forest.Forest, vec []float64) (SubPrediction, bool) {
	proba := f.PredictProba(vec)
	if len(proba) == 0 {
		return SubPrediction{}, false
	}
	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	if proba[best] <= 0 {
		// Degenerate input landed on an all-zero distribution; treat it
		// as "confidence cannot be computed".
		return SubPrediction{}, false
	}
	return SubPrediction{Label: f.Classes[best], Confidence: proba[best]}, true
}

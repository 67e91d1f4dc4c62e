// Package emotion holds the two-tier learned classifier: a main-emotion
// predictor over the full label set, and sub-emotion providers
// specialized per main emotion. All types are read-only after load and
// shared across request goroutines without locking.
package emotion

import (
	"errors"

	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
)

// Classifier predicts the main (coarse) emotion from raw text.
type Classifier struct {
	vec    *vectorizer.Model
	forest *forest.Forest
}

// NewClassifier pairs a fitted vectorizer with its trained forest.
func NewClassifier(vec *vectorizer.Model, f *forest.Forest) (*Classifier, error) {
	if vec == nil || f == nil {
		return nil, errors.New("emotion: classifier needs both a vectorizer and a forest")
	}
	return &Classifier{vec: vec, forest: f}, nil
}

// Predict returns the highest-probability main emotion for text.
func (c *Classifier) Predict(text string) string {
	return c.forest.Predict(c.vec.Transform(text))
}

// Labels lists the emotions the classifier can produce, sorted.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.forest.Classes))
	copy(out, c.forest.Classes)
	return out
}

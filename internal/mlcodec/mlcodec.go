// Package mlcodec reads and writes the fitted model artifacts as JSON
// files. The sub-emotion artifacts exist in two historical shapes, a
// single object or a map keyed by main emotion, and both must decode.
// Shape detection happens here, once, so nothing downstream probes types
// per request.
package mlcodec

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
)

// Canonical artifact file names.
const (
	FileMainVectorizer = "vectorizer.json"
	FileMainModel      = "emotion_model.json"
	FileSubVectorizers = "sub_vectorizers.json"
	FileSubModels      = "sub_models.json"
)

// Save writes v as indented JSON, replacing any existing file.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return fmt.Errorf("mlcodec: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("mlcodec: write %s: %w", path, err)
	}
	return nil
}

// LoadVectorizer reads a single fitted vectorizer.
func LoadVectorizer(path string) (*vectorizer.Model, error) {
	var m vectorizer.Model
	if err := loadJSON(path, &m); err != nil {
		return nil, err
	}
	if len(m.IDF) == 0 {
		return nil, fmt.Errorf("mlcodec: %s holds no fitted vocabulary", path)
	}
	return &m, nil
}

// LoadForest reads a single trained forest.
func LoadForest(path string) (*forest.Forest, error) {
	var f forest.Forest
	if err := loadJSON(path, &f); err != nil {
		return nil, err
	}
	if len(f.Trees) == 0 || len(f.Classes) == 0 {
		return nil, fmt.Errorf("mlcodec: %s holds no trained ensemble", path)
	}
	return &f, nil
}

// LoadSubVectorizers reads the sub-emotion vectorizer artifact in either
// shape. Exactly one of single/perLabel is non-nil on success.
func LoadSubVectorizers(path string) (single *vectorizer.Model, perLabel map[string]*vectorizer.Model, err error) {
	if m, err := LoadVectorizer(path); err == nil {
		return m, nil, nil
	}
	var byLabel map[string]*vectorizer.Model
	if err := loadJSON(path, &byLabel); err != nil {
		return nil, nil, err
	}
	if len(byLabel) == 0 {
		return nil, nil, fmt.Errorf("mlcodec: %s matches neither sub-vectorizer shape", path)
	}
	return nil, byLabel, nil
}

// LoadSubForests reads the sub-emotion model artifact in either shape.
func LoadSubForests(path string) (single *forest.Forest, perLabel map[string]*forest.Forest, err error) {
	if f, err := LoadForest(path); err == nil {
		return f, nil, nil
	}
	var byLabel map[string]*forest.Forest
	if err := loadJSON(path, &byLabel); err != nil {
		return nil, nil, err
	}
	if len(byLabel) == 0 {
		return nil, nil, fmt.Errorf("mlcodec: %s matches neither sub-model shape", path)
	}
	return nil, byLabel, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mlcodec: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("mlcodec: decode %s: %w", path, err)
	}
	return nil
}

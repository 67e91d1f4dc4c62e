package mlcodec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
)

func fitTinyPair(t *testing.T) (*vectorizer.Model, *forest.Forest) {
	t.Helper()
	texts := []string{
		"화가 나서 참을 수 없어", "정말 화가 치밀어", "짜증나고 화가 나",
		"행복하고 기뻐", "정말 행복한 하루야", "기분이 좋고 행복해",
	}
	labels := []string{"분노", "분노", "분노", "행복", "행복", "행복"}

	vec := vectorizer.Fit(texts, vectorizer.Options{MinDocFreq: 1, MaxFeatures: 200})
	X := make([][]float64, len(texts))
	for i, txt := range texts {
		X[i] = vec.Transform(txt)
	}
	f, err := forest.Train(X, labels, forest.Options{Trees: 10, Seed: 42})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	return vec, f
}

func TestVectorizerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vec, _ := fitTinyPair(t)

	path := filepath.Join(dir, FileMainVectorizer)
	if err := Save(path, vec); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadVectorizer(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Dimensions() != vec.Dimensions() {
		t.Fatalf("dimensions changed across round trip: %d != %d", loaded.Dimensions(), vec.Dimensions())
	}
}

func TestForestRoundTripPreservesPredictions(t *testing.T) {
	dir := t.TempDir()
	vec, f := fitTinyPair(t)

	path := filepath.Join(dir, FileMainModel)
	if err := Save(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadForest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	probe := vec.Transform("너무 화가 나")
	if got, want := loaded.Predict(probe), f.Predict(probe); got != want {
		t.Fatalf("prediction changed across round trip: %q != %q", got, want)
	}
}

func TestLoadSubArtifactsSingleShape(t *testing.T) {
	dir := t.TempDir()
	vec, f := fitTinyPair(t)

	vecPath := filepath.Join(dir, FileSubVectorizers)
	modelPath := filepath.Join(dir, FileSubModels)
	if err := Save(vecPath, vec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(modelPath, f); err != nil {
		t.Fatalf("save: %v", err)
	}

	single, perLabel, err := LoadSubVectorizers(vecPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if single == nil || perLabel != nil {
		t.Fatal("single-shape artifact must load as single")
	}

	sf, pf, err := LoadSubForests(modelPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sf == nil || pf != nil {
		t.Fatal("single-shape artifact must load as single")
	}
}

func TestLoadSubArtifactsPerLabelShape(t *testing.T) {
	dir := t.TempDir()
	vec, f := fitTinyPair(t)

	vecPath := filepath.Join(dir, FileSubVectorizers)
	modelPath := filepath.Join(dir, FileSubModels)
	if err := Save(vecPath, map[string]*vectorizer.Model{"분노": vec, "행복": vec}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(modelPath, map[string]*forest.Forest{"분노": f, "행복": f}); err != nil {
		t.Fatalf("save: %v", err)
	}

	single, perLabel, err := LoadSubVectorizers(vecPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if single != nil || len(perLabel) != 2 {
		t.Fatalf("map-shape artifact must load per label, got single=%v map=%d", single != nil, len(perLabel))
	}

	sf, pf, err := LoadSubForests(modelPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sf != nil || len(pf) != 2 {
		t.Fatalf("map-shape artifact must load per label, got single=%v map=%d", sf != nil, len(pf))
	}
}

func TestLoadRejectsEmptyArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileMainModel)
	if err := os.WriteFile(path, []byte(`{"classes":[],"trees":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadForest(path); err == nil || !strings.Contains(err.Error(), "no trained ensemble") {
		t.Fatalf("err = %v, want trained-ensemble validation failure", err)
	}
	if _, err := LoadVectorizer(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("missing file must fail")
	}
}

package emotion

import (
	"strings"
	"testing"

	analysis "github.com/moodflick/backend/internal/analysis/emotion"
	"github.com/moodflick/backend/internal/analysis/forest"
	"github.com/moodflick/backend/internal/analysis/lexicon"
	"github.com/moodflick/backend/internal/analysis/vectorizer"
)

func trainedClassifier(t *testing.T) *analysis.Classifier {
	t.Helper()
	texts := []string{
		"정말 즐겁고 웃음이 가득한 하루였어", "웃음이 나고 마음이 가벼워",
		"마음이 무겁고 가라앉아", "가라앉은 기분이 계속돼",
	}
	labels := []string{"행복", "행복", "슬픔", "슬픔"}

	vec := vectorizer.Fit(texts, vectorizer.Options{MinDocFreq: 1, MaxFeatures: 200})
	x := make([][]float64, len(texts))
	for i, txt := range texts {
		x[i] = vec.Transform(txt)
	}
	f, err := forest.Train(x, labels, forest.Options{Trees: 20, Seed: 5})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	clf, err := analysis.NewClassifier(vec, f)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return clf
}

func TestResolveSummaryKeywordFirst(t *testing.T) {
	// No classifier at all: the keyword stage must be sufficient.
	svc := NewService(lexicon.Default(), nil, nil)

	if got := svc.ResolveSummary("사용자는 깊은 슬픔에 잠겨 있다"); got != "슬픔" {
		t.Fatalf("got %s, want 슬픔", got)
	}
	if got := svc.ResolveSummary("사용자는 호기심이 가득한 상태다"); got != "탐구" {
		t.Fatalf("got %s, want 탐구", got)
	}
}

func TestResolveSummaryFallsBackToClassifier(t *testing.T) {
	svc := NewService(lexicon.New(nil), trainedClassifier(t), nil)

	// The summary contains no fixed keyword and no dictionary trigger.
	got := svc.ResolveSummary("웃음이 가득하고 마음이 가벼워 보인다")
	if got != "행복" {
		t.Fatalf("got %s, want 행복", got)
	}
}

func TestResolveSummaryUnknownSentinel(t *testing.T) {
	svc := NewService(lexicon.New(nil), nil, nil)

	if got := svc.ResolveSummary("아무 단서도 없는 문장"); got != LabelUnknown {
		t.Fatalf("got %s, want %s", got, LabelUnknown)
	}
	if got := svc.ResolveSummary("   "); got != LabelUnknown {
		t.Fatalf("blank summary: got %s, want %s", got, LabelUnknown)
	}
}

func TestResolveMainDictionaryOverride(t *testing.T) {
	svc := NewService(lexicon.Default(), trainedClassifier(t), nil)

	// The dictionary hit must short-circuit the classifier.
	if got := svc.ResolveMain("요즘 스트레스 받아서 피곤해"); got != "스트레스" {
		t.Fatalf("got %s, want 스트레스", got)
	}
}

func TestResolveSubSentinelWithoutProvider(t *testing.T) {
	svc := NewService(lexicon.Default(), nil, nil)
	if got := svc.ResolveSub("행복", "즐거운 하루"); got != SubNone {
		t.Fatalf("got %s, want %s", got, SubNone)
	}
}

func TestSentinelsAreKorean(t *testing.T) {
	// Both sentinels surface to end users; keep them readable.
	for _, s := range []string{LabelUnknown, SubNone} {
		if strings.TrimSpace(s) == "" {
			t.Fatal("sentinel must not be empty")
		}
	}
}

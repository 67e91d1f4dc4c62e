// Package emotion implements the serve-time emotion resolution policy:
// dictionary override first, then the learned classifier, with explicit
// sentinels instead of errors. Nothing in this package can fail a
// request.
package emotion

import (
	"log"
	"strings"

	analysis "github.com/moodflick/backend/internal/analysis/emotion"
	"github.com/moodflick/backend/internal/analysis/lexicon"
)

// Sentinels used wherever a prediction degrades.
const (
	LabelUnknown = "알 수 없음"
	SubNone      = "세부감정 없음"
)

// summaryKeywords is the fixed keyword list checked against normalized
// summary text before any learned model runs. First match wins.
var summaryKeywords = []struct {
	emotion  string
	keywords []string
}{
	{"분노", []string{"분노", "화가", "짜증"}},
	{"슬픔", []string{"슬픔", "슬프", "우울", "상실"}},
	{"불안", []string{"불안", "걱정", "긴장"}},
	{"스트레스", []string{"스트레스", "지침", "피로"}},
	{"행복", []string{"행복", "기쁨", "즐거"}},
	{"심심", []string{"심심", "지루"}},
	{"탐구", []string{"탐구", "호기심", "궁금"}},
}

// Service bundles the lexicon and the two-tier classifier behind the
// resolution policy the handlers and the turn controller share.
type Service struct {
	lex  *lexicon.Lexicon
	main *analysis.Classifier
	sub  analysis.SubProvider
}

// NewService wires the resolution pipeline. sub may be nil; sub-emotion
// resolution then always yields the sentinel.
func NewService(lex *lexicon.Lexicon, main *analysis.Classifier, sub analysis.SubProvider) *Service {
	return &Service{lex: lex, main: main, sub: sub}
}

// ResolveMain infers the main emotion for direct user input: dictionary
// override first, then the classifier, never an error.
func (s *Service) ResolveMain(text string) string {
	if emotion, ok := s.lex.Match(text); ok {
		return emotion
	}
	if s.main == nil {
		log.Printf("[emotion] main classifier unavailable, resolving to %q", LabelUnknown)
		return LabelUnknown
	}
	return s.main.Predict(text)
}

// ResolveSummary infers the main emotion from a one-sentence dialogue
// summary. Resolution is three-stage: fixed keyword list on the
// normalized text, then the classifier on the dictionary-tagged text,
// then the explicit unknown sentinel.
func (s *Service) ResolveSummary(summary string) string {
	normalized := strings.ToLower(strings.TrimSpace(summary))
	if normalized == "" {
		return LabelUnknown
	}

	for _, bucket := range summaryKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(normalized, kw) {
				return bucket.emotion
			}
		}
	}

	if emotion, ok := s.lex.Match(summary); ok {
		return emotion
	}
	if s.main == nil {
		return LabelUnknown
	}
	return s.main.Predict(s.lex.Tag(summary))
}

// ResolveSub predicts the fine-grained emotion under mainEmotion,
// degrading to the sentinel whenever no specialized model applies.
func (s *Service) ResolveSub(mainEmotion, text string) string {
	if s.sub == nil {
		return SubNone
	}
	pred, ok := s.sub.Predict(mainEmotion, text)
	if !ok {
		return SubNone
	}
	log.Printf("[emotion] sub=%s confidence=%.3f", pred.Label, pred.Confidence)
	return pred.Label
}

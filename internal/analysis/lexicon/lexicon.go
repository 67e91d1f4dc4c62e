// Package lexicon implements the dictionary-based emotion override: an
// ordered word->emotion table checked by substring before any learned
// model runs. Iteration order is fixed so the first matching emotion
// always wins, keeping overrides reproducible.
package lexicon

import (
	"fmt"
	"strings"
)

// Entry binds one emotion label to its trigger words.
type Entry struct {
	Emotion  string   `json:"emotion"`
	Triggers []string `json:"triggers"`
}

// Lexicon is an ordered emotion dictionary, immutable after construction.
type Lexicon struct {
	entries []Entry
}

// New builds a lexicon from ordered entries. Empty triggers are dropped.
func New(entries []Entry) *Lexicon {
	cleaned := make([]Entry, 0, len(entries))
	for _, e := range entries {
		triggers := make([]string, 0, len(e.Triggers))
		for _, t := range e.Triggers {
			if t = strings.TrimSpace(t); t != "" {
				triggers = append(triggers, t)
			}
		}
		if e.Emotion != "" && len(triggers) > 0 {
			cleaned = append(cleaned, Entry{Emotion: e.Emotion, Triggers: triggers})
		}
	}
	return &Lexicon{entries: cleaned}
}

// Match scans the entries in order and returns the first emotion whose
// trigger occurs as a substring of text. ok is false for empty text or
// when nothing matches.
func (l *Lexicon) Match(text string) (emotion string, ok bool) {
	if l == nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, e := range l.entries {
		for _, trigger := range e.Triggers {
			if strings.Contains(text, trigger) {
				return e.Emotion, true
			}
		}
	}
	return "", false
}

// Tag prepends the bracketed dictionary tag used at training time, so
// the lexicon signal is baked into the feature space as well as the
// label. Text without a dictionary hit is returned unchanged.
func (l *Lexicon) Tag(text string) string {
	emotion, ok := l.Match(text)
	if !ok {
		return text
	}
	return fmt.Sprintf("[감정사전:%s] %s", emotion, text)
}

// Entries exposes a copy of the ordered table, mainly for diagnostics.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

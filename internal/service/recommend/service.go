// Package recommend maps a main emotion to a catalog genre and assembles
// the user-facing movie slate. Both the genre pick and the slate are
// deliberately random samples, trading optimality for variety between
// calls.
package recommend

import (
	"context"
	"log"
	"math/rand"
	"sync"

	"github.com/moodflick/backend/internal/catalog/tmdb"
	"github.com/moodflick/backend/internal/model/movie"
)

// SlateSize caps how many movies one recommendation carries.
const SlateSize = 5

// PlaceholderPoster substitutes for catalog entries without artwork.
const PlaceholderPoster = "/static/img/no_poster.png"

// DefaultGenre is drama, used for emotions absent from the table.
const DefaultGenre = 18

// genresByEmotion is the fixed mapping from main emotion to TMDB genre
// ids. Selection among an emotion's set is uniform-random per call.
var genresByEmotion = map[string][]int{
	"분노":   {28, 80, 53, 27, 9648},
	"불안":   {53, 9648, 18, 878},
	"스트레스": {35, 10402, 10751, 16},
	"슬픔":   {18, 10749, 10751, 99},
	"행복":   {12, 35, 16, 10751, 10402},
	"심심":   {14, 878, 12, 10751},
	"탐구":   {99, 36, 18, 37},
}

// Service assembles recommendations from the catalog capability.
type Service struct {
	catalog tmdb.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a recommender. rng may be nil; tests inject a seeded source
// to make sampling reproducible.
func New(catalog tmdb.Client, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Service{catalog: catalog, rng: rng}
}

// GenreFor picks one genre uniformly at random from the emotion's set,
// or the default genre for unknown emotions.
func (s *Service) GenreFor(emotion string) int {
	genres, ok := genresByEmotion[emotion]
	if !ok {
		return DefaultGenre
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return genres[s.rng.Intn(len(genres))]
}

// Build fetches the candidate pool for the emotion's genre and draws a
// random slate of up to SlateSize movies without replacement. An empty
// catalog yields an empty slate, never an error: the caller must be able
// to tell "nothing to recommend" apart from "classification failed".
func (s *Service) Build(ctx context.Context, emotion string) ([]movie.Movie, error) {
	genreID := s.GenreFor(emotion)
	pool, err := s.catalog.DiscoverByGenre(ctx, genreID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		log.Printf("[recommend] catalog empty for emotion=%s genre=%d", emotion, genreID)
		return []movie.Movie{}, nil
	}

	slate := s.sample(pool, SlateSize)
	for i := range slate {
		if slate[i].Poster == "" {
			slate[i].Poster = PlaceholderPoster
		}
	}
	return slate, nil
}

// sample draws up to n entries without replacement.
func (s *Service) sample(pool []movie.Movie, n int) []movie.Movie {
	if n > len(pool) {
		n = len(pool)
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(pool))
	s.mu.Unlock()

	out := make([]movie.Movie, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, pool[idx])
	}
	return out
}

// Emotions lists the labels with a configured genre set.
func Emotions() []string {
	out := make([]string, 0, len(genresByEmotion))
	for e := range genresByEmotion {
		out = append(out, e)
	}
	return out
}

// GenreSet exposes the configured genres for an emotion, for tests and
// diagnostics.
func GenreSet(emotion string) ([]int, bool) {
	genres, ok := genresByEmotion[emotion]
	if !ok {
		return nil, false
	}
	out := make([]int, len(genres))
	copy(out, genres)
	return out, true
}

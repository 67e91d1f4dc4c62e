package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/moodflick/backend/internal/model/movie"
)

type fakeCatalog struct {
	pool []movie.Movie
	err  error
}

func (f *fakeCatalog) DiscoverByGenre(_ context.Context, _ int) ([]movie.Movie, error) {
	return f.pool, f.err
}

func (f *fakeCatalog) SearchRating(_ context.Context, _ string) (movie.Movie, bool, error) {
	return movie.Movie{}, false, nil
}

func frozenPool(n int) []movie.Movie {
	pool := make([]movie.Movie, n)
	for i := range pool {
		pool[i] = movie.Movie{
			Title:  fmt.Sprintf("영화 %02d", i),
			Rating: 7.5,
			Poster: "https://image.tmdb.org/t/p/w500/p.jpg",
		}
	}
	return pool
}

func TestGenreForStaysInConfiguredSet(t *testing.T) {
	svc := New(&fakeCatalog{}, rand.New(rand.NewSource(1)))

	for _, emotion := range Emotions() {
		set, ok := GenreSet(emotion)
		if !ok {
			t.Fatalf("emotion %s missing from table", emotion)
		}
		members := make(map[int]bool, len(set))
		for _, g := range set {
			members[g] = true
		}
		for i := 0; i < 50; i++ {
			if g := svc.GenreFor(emotion); !members[g] {
				t.Fatalf("GenreFor(%s) = %d outside configured set %v", emotion, g, set)
			}
		}
	}
}

func TestGenreForUnknownEmotionDefaults(t *testing.T) {
	svc := New(&fakeCatalog{}, rand.New(rand.NewSource(1)))
	for _, label := range []string{"알 수 없음", "", "neutral"} {
		if g := svc.GenreFor(label); g != DefaultGenre {
			t.Fatalf("GenreFor(%q) = %d, want default %d", label, g, DefaultGenre)
		}
	}
}

func TestBuildDeterministicForSeed(t *testing.T) {
	catalog := &fakeCatalog{pool: frozenPool(40)}

	first, err := New(catalog, rand.New(rand.NewSource(99))).Build(context.Background(), "행복")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := New(catalog, rand.New(rand.NewSource(99))).Build(context.Background(), "행복")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("slate sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title {
			t.Fatalf("same seed produced different slates: %v vs %v", first, second)
		}
	}
}

func TestBuildCapsSlateSize(t *testing.T) {
	svc := New(&fakeCatalog{pool: frozenPool(40)}, rand.New(rand.NewSource(2)))
	slate, err := svc.Build(context.Background(), "슬픔")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(slate) != SlateSize {
		t.Fatalf("slate has %d movies, want %d", len(slate), SlateSize)
	}
}

func TestBuildSmallPool(t *testing.T) {
	svc := New(&fakeCatalog{pool: frozenPool(2)}, rand.New(rand.NewSource(2)))
	slate, err := svc.Build(context.Background(), "슬픔")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(slate) != 2 {
		t.Fatalf("slate has %d movies, want the whole pool", len(slate))
	}
}

func TestBuildEmptyCatalogYieldsEmptySlate(t *testing.T) {
	svc := New(&fakeCatalog{}, rand.New(rand.NewSource(3)))
	slate, err := svc.Build(context.Background(), "심심")
	if err != nil {
		t.Fatalf("empty catalog must not error: %v", err)
	}
	if slate == nil || len(slate) != 0 {
		t.Fatalf("want empty non-nil slate, got %v", slate)
	}
}

func TestBuildSubstitutesPlaceholderPoster(t *testing.T) {
	pool := []movie.Movie{{Title: "포스터 없는 영화", Rating: 8.0}}
	svc := New(&fakeCatalog{pool: pool}, rand.New(rand.NewSource(4)))

	slate, err := svc.Build(context.Background(), "행복")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if slate[0].Poster != PlaceholderPoster {
		t.Fatalf("poster = %q, want placeholder", slate[0].Poster)
	}
}

func TestBuildPropagatesCatalogError(t *testing.T) {
	svc := New(&fakeCatalog{err: errors.New("boom")}, rand.New(rand.NewSource(5)))
	if _, err := svc.Build(context.Background(), "행복"); err == nil {
		t.Fatal("expected catalog error to propagate")
	}
}

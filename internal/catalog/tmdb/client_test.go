package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moodflick/backend/internal/config"
)

func newTestClient(server *httptest.Server) *HTTPClient {
	return NewHTTPClient(config.CatalogConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Language: "ko-KR",
		Timeout:  2 * time.Second,
	})
}

func TestDiscoverPoolsAllPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vote_count.gte") != "500" || q.Get("sort_by") != "vote_average.desc" {
			t.Fatalf("missing discover filters: %v", q)
		}
		page := q.Get("page")
		fmt.Fprintf(w, `{"results":[{"title":"Movie %s","vote_average":7.5,"overview":"o","poster_path":"/p%s.jpg"}]}`, page, page)
	}))
	defer server.Close()

	pool, err := newTestClient(server).DiscoverByGenre(context.Background(), 18)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pool) != maxPages {
		t.Fatalf("pooled %d movies, want one per page (%d)", len(pool), maxPages)
	}
	if want := "https://image.tmdb.org/t/p/w500/p1.jpg"; pool[0].Poster != want {
		t.Fatalf("poster = %q, want %q", pool[0].Poster, want)
	}
}

func TestDiscoverSkipsFailedPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results":[{"title":"ok","vote_average":7.0}]}`)
	}))
	defer server.Close()

	pool, err := newTestClient(server).DiscoverByGenre(context.Background(), 18)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pool) != maxPages-1 {
		t.Fatalf("pooled %d movies, want %d with one page down", len(pool), maxPages-1)
	}
}

func TestDiscoverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).DiscoverByGenre(ctx, 18)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSearchRatingFirstHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "Inception" {
			t.Fatalf("query = %q", r.URL.Query().Get("query"))
		}
		fmt.Fprint(w, `{"results":[{"title":"Inception","vote_average":8.4},{"title":"Inception: The Cobol Job","vote_average":7.0}]}`)
	}))
	defer server.Close()

	m, found, err := newTestClient(server).SearchRating(context.Background(), "Inception")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if m.Title != "Inception" || m.Rating != 8.4 {
		t.Fatalf("got %+v, want first hit", m)
	}
	if m.Poster != "" {
		t.Fatalf("poster = %q, want empty without poster_path", m.Poster)
	}
}

func TestSearchRatingNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	_, found, err := newTestClient(server).SearchRating(context.Background(), "없는 영화")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if found {
		t.Fatal("found = true for an empty result set")
	}
}

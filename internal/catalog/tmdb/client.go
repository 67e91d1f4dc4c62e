// Package tmdb wraps the external movie-catalog provider. The service
// treats it as a black box: genre id in, bounded candidate pool out;
// title in, rating out.
package tmdb

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/moodflick/backend/internal/config"
	"github.com/moodflick/backend/internal/model/movie"
)

const (
	// TMDB pages hold at most 20 entries; 10 pages pools ~200 candidates.
	maxPages     = 10
	minVoteCount = 500

	posterBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Client is the catalog capability consumed by the recommender and the
// turn controller. Implementations must be safe for concurrent use.
type Client interface {
	// DiscoverByGenre pools rating-sorted, vote-count-filtered entries
	// for a genre. An empty slice is a valid answer.
	DiscoverByGenre(ctx context.Context, genreID int) ([]movie.Movie, error)
	// SearchRating resolves a title to its best catalog match. found is
	// false when the catalog knows nothing about the title.
	SearchRating(ctx context.Context, title string) (m movie.Movie, found bool, err error)
}

// HTTPClient talks to the real TMDB REST API.
type HTTPClient struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
}

// NewHTTPClient builds a client from catalog configuration.
func NewHTTPClient(cfg config.CatalogConfig) *HTTPClient {
	return &HTTPClient{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type discoverResponse struct {
	Results []entry `json:"results"`
}

type entry struct {
	Title       string  `json:"title"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
}

func (e entry) toMovie() movie.Movie {
	poster := ""
	if e.PosterPath != "" {
		poster = posterBaseURL + e.PosterPath
	}
	return movie.Movie{
		Title:    e.Title,
		Rating:   e.VoteAverage,
		Overview: e.Overview,
		Poster:   poster,
	}
}

// DiscoverByGenre implements Client. Pages that fail are skipped rather
// than failing the pool; a thinner slate beats no slate.
func (c *HTTPClient) DiscoverByGenre(ctx context.Context, genreID int) ([]movie.Movie, error) {
	var pool []movie.Movie
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("api_key", c.apiKey)
		params.Set("with_genres", strconv.Itoa(genreID))
		params.Set("language", c.language)
		params.Set("sort_by", "vote_average.desc")
		params.Set("vote_count.gte", strconv.Itoa(minVoteCount))
		params.Set("page", strconv.Itoa(page))

		var decoded discoverResponse
		if err := c.getJSON(ctx, "/discover/movie", params, &decoded); err != nil {
			if ctx.Err() != nil {
				return pool, ctx.Err()
			}
			log.Printf("[tmdb] discover page %d failed: %v", page, err)
			continue
		}
		for _, e := range decoded.Results {
			pool = append(pool, e.toMovie())
		}
	}
	return pool, nil
}

// SearchRating implements Client using the first search hit, matching
// the behavior users see on the catalog's own site.
func (c *HTTPClient) SearchRating(ctx context.Context, title string) (movie.Movie, bool, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	params.Set("query", title)

	var decoded discoverResponse
	if err := c.getJSON(ctx, "/search/movie", params, &decoded); err != nil {
		return movie.Movie{}, false, err
	}
	if len(decoded.Results) == 0 {
		return movie.Movie{}, false, nil
	}
	return decoded.Results[0].toMovie(), true, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return nil
}

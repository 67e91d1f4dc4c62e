// Package stats persists recommendation events to the relational store
// and serves the aggregate endpoints. Every read degrades to an empty
// result on failure; the service stays up without the database.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/moodflick/backend/internal/config"
)

// EmotionCount is one row of the per-emotion aggregate.
type EmotionCount struct {
	RepEmotion string `json:"rep_emotion"`
	Count      int    `json:"count"`
}

// MovieCount is one row of the most-recommended-movies aggregate.
type MovieCount struct {
	Movie string `json:"movie"`
	Count int    `json:"count"`
}

// Store wraps the MySQL-backed recommendation-event table.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DBConfig) (*Store, error) {
	dsn := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.Database,
		Collation:            "utf8mb4_general_ci",
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("stats: open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("stats: ping database: %w", err)
	}

	return &Store{db: db, timeout: cfg.Timeout}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one row per recommended movie for the given emotion.
// Best effort: a failed insert is reported but must not fail the turn.
func (s *Store) Record(ctx context.Context, emotion string, titles []string) error {
	if s == nil || s.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	for _, title := range titles {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO movies_emotions (rep_emotion, movie) VALUES (?, ?)",
			emotion, title,
		); err != nil {
			return fmt.Errorf("stats: record %q: %w", title, err)
		}
	}
	return nil
}

// ByEmotion aggregates recommendation events per main emotion,
// descending by count. Query failure yields an empty slice.
func (s *Store) ByEmotion(ctx context.Context) []EmotionCount {
	rows := []EmotionCount{}
	if s == nil || s.db == nil {
		return rows
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.QueryContext(ctx, `
		SELECT rep_emotion, COUNT(*) AS count
		FROM movies_emotions
		GROUP BY rep_emotion
		ORDER BY count DESC`)
	if err != nil {
		log.Printf("[stats] emotion aggregate failed: %v", err)
		return rows
	}
	defer result.Close()

	for result.Next() {
		var row EmotionCount
		if err := result.Scan(&row.RepEmotion, &row.Count); err != nil {
			log.Printf("[stats] emotion row scan failed: %v", err)
			return []EmotionCount{}
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		log.Printf("[stats] emotion aggregate iteration failed: %v", err)
		return []EmotionCount{}
	}
	return rows
}

// TopMovies aggregates the most recommended titles, descending, capped
// at limit. Query failure yields an empty slice.
func (s *Store) TopMovies(ctx context.Context, limit int) []MovieCount {
	rows := []MovieCount{}
	if s == nil || s.db == nil {
		return rows
	}
	if limit <= 0 {
		limit = 10
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.QueryContext(ctx, `
		SELECT movie, COUNT(*) AS count
		FROM movies_emotions
		GROUP BY movie
		ORDER BY count DESC
		LIMIT ?`, limit)
	if err != nil {
		log.Printf("[stats] top-movies aggregate failed: %v", err)
		return rows
	}
	defer result.Close()

	for result.Next() {
		var row MovieCount
		if err := result.Scan(&row.Movie, &row.Count); err != nil {
			log.Printf("[stats] movie row scan failed: %v", err)
			return []MovieCount{}
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		log.Printf("[stats] top-movies iteration failed: %v", err)
		return []MovieCount{}
	}
	return rows
}

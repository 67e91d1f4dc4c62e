package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moodflick/backend/internal/analysis/lexicon"
	"github.com/moodflick/backend/internal/catalog/tmdb"
	"github.com/moodflick/backend/internal/config"
	"github.com/moodflick/backend/internal/handler"
	"github.com/moodflick/backend/internal/modelstore"
	"github.com/moodflick/backend/internal/service/ai"
	chatservice "github.com/moodflick/backend/internal/service/chat"
	emotionservice "github.com/moodflick/backend/internal/service/emotion"
	"github.com/moodflick/backend/internal/service/recommend"
	statsservice "github.com/moodflick/backend/internal/service/stats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The generation credential is mandatory: without it the dialogue
	// endpoints cannot function at all.
	if !cfg.AI.Enabled() {
		log.Fatal("generation credential missing: set ARK_API_KEY (or AK/SK pair) and ARK_MODEL")
	}

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generation service: %v", err)
	}

	// Classifier artifacts are provisioned from remote storage on first
	// run; failure to load them is fatal before serving traffic.
	artifacts, err := modelstore.New(cfg.Models.Dir, cfg.Models.BaseURL).Load(ctx)
	if err != nil {
		log.Fatalf("failed to load classifier models: %v", err)
	}
	log.Printf("emotion models loaded: main labels=%v", artifacts.Main.Labels())

	emotionSvc := emotionservice.NewService(lexicon.Default(), artifacts.Main, artifacts.Sub)

	catalog := tmdb.NewHTTPClient(cfg.Catalog)
	recommender := recommend.New(catalog, nil)

	var statsStore *statsservice.Store
	if cfg.DB.Enabled() {
		statsStore, err = statsservice.Open(cfg.DB)
		if err != nil {
			log.Printf("warning: stats database unavailable: %v", err)
			log.Println("continuing without recommendation statistics")
			statsStore = nil
		} else {
			defer statsStore.Close()
		}
	} else {
		log.Println("stats database not configured, statistics endpoints will return empty results")
	}

	sessions := chatservice.NewStore(cfg.Session.TTL)
	defer sessions.Close()

	controller := chatservice.NewController(sessions, aiService, emotionSvc, recommender, catalog, statsStore)

	router := handler.NewRouter(handler.Deps{
		Emotions:    emotionSvc,
		Recommender: recommender,
		Controller:  controller,
		Sessions:    sessions,
		Streamer:    aiService,
		Stats:       statsStore,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("moodflick backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

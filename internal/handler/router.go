package handler

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/moodflick/backend/internal/handler/chat"
	emotionhandler "github.com/moodflick/backend/internal/handler/emotion"
	statshandler "github.com/moodflick/backend/internal/handler/stats"
	middlewarePkg "github.com/moodflick/backend/internal/middleware"
	chatservice "github.com/moodflick/backend/internal/service/chat"
	emotionservice "github.com/moodflick/backend/internal/service/emotion"
	statsservice "github.com/moodflick/backend/internal/service/stats"
)

// Deps bundles everything the router needs.
type Deps struct {
	Emotions    *emotionservice.Service
	Recommender emotionhandler.Recommender
	Controller  *chatservice.Controller
	Sessions    *chatservice.Store
	Streamer    chathandler.Streamer
	Stats       *statsservice.Store
	StaticDir   string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middlewarePkg.RecoverJSON)
	r.Use(middlewarePkg.CORS)

	emotionhandler.New(deps.Emotions, deps.Recommender).RegisterRoutes(r)
	chathandler.New(deps.Controller).RegisterRoutes(r)
	chathandler.NewStreamHandler(deps.Sessions, deps.Streamer).RegisterRoutes(r)
	statshandler.New(deps.Stats).RegisterRoutes(r)

	registerStatic(r, deps.StaticDir)

	return r
}

// registerStatic serves the demo frontend pages. Missing files simply
// 404; the API does not depend on them.
func registerStatic(r chi.Router, dir string) {
	if dir == "" {
		dir = "static"
	}

	servePage := func(name string) http.HandlerFunc {
		page := filepath.Join(dir, name)
		return func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, page)
		}
	}

	r.Get("/", servePage("index.html"))
	r.Get("/index.html", servePage("index.html"))
	r.Get("/chatbot", servePage("chatbot.html"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
}

package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	statsservice "github.com/moodflick/backend/internal/service/stats"
	"github.com/moodflick/backend/pkg/utils"
)

// Handler serves the aggregate statistics endpoints. A nil store is
// valid and yields empty rows; statistics are never load-bearing.
type Handler struct {
	store *statsservice.Store
}

// New creates the stats handler.
func New(store *statsservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the statistics endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.handleStats)
	r.Get("/top10", h.handleTop10)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.ByEmotion(r.Context()))
}

func (h *Handler) handleTop10(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.TopMovies(r.Context(), 10))
}

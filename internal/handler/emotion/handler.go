package emotion

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/moodflick/backend/internal/model/movie"
	emotionservice "github.com/moodflick/backend/internal/service/emotion"
	"github.com/moodflick/backend/pkg/utils"
)

// Recommender is the slate-assembly capability the handler consumes.
type Recommender interface {
	Build(ctx context.Context, emotion string) ([]movie.Movie, error)
}

// Handler serves the direct emotion-classification endpoint.
type Handler struct {
	emotions    *emotionservice.Service
	recommender Recommender
}

// New creates the emotion handler.
func New(emotions *emotionservice.Service, recommender Recommender) *Handler {
	return &Handler{emotions: emotions, recommender: recommender}
}

// RegisterRoutes mounts the emotion endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/emotion", h.handleClassify)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Emotion string `json:"emotion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondReply(w, http.StatusBadRequest, "감정을 입력해 주세요")
		return
	}

	input := strings.TrimSpace(payload.Emotion)
	if input == "" {
		utils.RespondReply(w, http.StatusBadRequest, "감정을 입력해 주세요")
		return
	}

	mainEmotion := h.emotions.ResolveMain(input)
	subEmotion := h.emotions.ResolveSub(mainEmotion, input)

	movies, err := h.recommender.Build(r.Context(), mainEmotion)
	if err != nil {
		log.Printf("[emotion] recommendation failed: %v", err)
		movies = []movie.Movie{}
	}

	utils.RespondJSON(w, http.StatusOK, movie.Recommendation{
		Emotion:    mainEmotion,
		SubEmotion: subEmotion,
		Movies:     movies,
	})
}

package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	chatservice "github.com/moodflick/backend/internal/service/chat"
	"github.com/moodflick/backend/pkg/utils"
)

// Handler serves the multi-turn dialogue endpoint.
type Handler struct {
	controller *chatservice.Controller
}

// New creates the chat handler.
func New(controller *chatservice.Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes mounts the chat endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleTurn)
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string          `json:"message"`
		Turn      json.RawMessage `json:"turn"`
		SessionID string          `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondReply(w, http.StatusBadRequest, "메시지를 입력해 주세요")
		return
	}

	turn := chatservice.ParseTurn(payload.Turn)
	result := h.controller.HandleTurn(r.Context(), payload.SessionID, payload.Message, turn)

	// The response shape depends on the dialogue phase; the frontend
	// keys off the presence and value of "final".
	switch result.Phase {
	case chatservice.PhaseFinal:
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"session_id":  result.SessionID,
			"reply":       result.Reply,
			"summary":     result.Summary,
			"final":       true,
			"emotion":     result.Emotion,
			"sub_emotion": result.SubEmotion,
			"movies":      result.Movies,
		})
	case chatservice.PhaseFollowUp:
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"session_id": result.SessionID,
			"reply":      result.Reply,
		})
	default:
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"session_id": result.SessionID,
			"reply":      result.Reply,
			"final":      false,
		})
	}
}

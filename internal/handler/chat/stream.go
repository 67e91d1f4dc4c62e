package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	chatmodel "github.com/moodflick/backend/internal/model/chat"
	chatservice "github.com/moodflick/backend/internal/service/chat"
	"github.com/moodflick/backend/pkg/utils"
)

// Streamer produces a chunked empathetic reply for the SSE endpoint.
type Streamer interface {
	StreamReply(ctx context.Context, history []chatmodel.Message, userMessage string) (*schema.StreamReader[*schema.Message], error)
}

// StreamHandler serves the streaming variant of a normal dialogue turn.
type StreamHandler struct {
	store    *chatservice.Store
	streamer Streamer
}

// NewStreamHandler creates the SSE handler. streamer may be nil when the
// generation capability is unavailable; the route then answers 503.
func NewStreamHandler(store *chatservice.Store, streamer Streamer) *StreamHandler {
	return &StreamHandler{store: store, streamer: streamer}
}

// RegisterRoutes mounts the streaming endpoint.
func (h *StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream", h.handleStream)
}

func (h *StreamHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondReply(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	if h.streamer == nil {
		utils.RespondReply(w, http.StatusServiceUnavailable, "streaming unavailable")
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondReply(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	sess := h.store.GetOrCreate(r.URL.Query().Get("session_id"))
	sess.Lock()
	prior := append([]chatmodel.Message(nil), sess.History...)
	sess.Append(chatmodel.RoleUser, message)
	sess.Unlock()

	stream, err := h.streamer.StreamReply(r.Context(), prior, message)
	if err != nil {
		log.Printf("[stream] failed to open reply stream: %v", err)
		utils.RespondReply(w, http.StatusInternalServerError, "서버에서 오류가 발생했어요")
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "session", map[string]string{"session_id": sess.ID})

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("[stream] recv failed: %v", err)
			utils.SendSSEEvent(w, flusher, "error", map[string]string{"message": "stream interrupted"})
			break
		}
		if chunk.Content == "" {
			continue
		}
		full.WriteString(chunk.Content)
		utils.SendSSEChunk(w, flusher, map[string]string{"delta": chunk.Content})
	}

	if full.Len() > 0 {
		sess.Lock()
		sess.Append(chatmodel.RoleAssistant, full.String())
		sess.Unlock()
	}
	utils.SendSSEEvent(w, flusher, "done", map[string]string{"session_id": sess.ID})
}

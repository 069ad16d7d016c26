package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/service"
)

type ChatServiceInterface interface {
	Stream(ctx context.Context, input service.ChatInput, fn func(delta string) error) error
}

type ChatHandler struct {
	service ChatServiceInterface
}

func NewChatHandler(service ChatServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

type ChatRequest struct {
	Message      string                `json:"message"`
	ReferenceIDs []string              `json:"reference_ids,omitempty"`
	History      []service.ChatMessage `json:"history,omitempty"`
}

// Stream answers a chat message as a server-sent event stream, one data
// event per completion delta.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	input := service.ChatInput{
		ExamID:           chi.URLParam(r, "id"),
		Message:          req.Message,
		ReferenceIDs:     req.ReferenceIDs,
		PreviousMessages: req.History,
	}

	headersSent := false
	err := h.service.Stream(r.Context(), input, func(delta string) error {
		if !headersSent {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			headersSent = true
		}

		payload, err := json.Marshal(map[string]string{"delta": delta})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Errors before the first delta still get a proper JSON response.
		if !headersSent {
			api.HandleError(w, err)
			return
		}
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	if !headersSent {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

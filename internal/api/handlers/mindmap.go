package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/you-education/examref/internal/api"
)

type MindmapServiceInterface interface {
	Generate(ctx context.Context, examID string, refresh bool) (string, error)
}

type MindmapHandler struct {
	service MindmapServiceInterface
}

func NewMindmapHandler(service MindmapServiceInterface) *MindmapHandler {
	return &MindmapHandler{service: service}
}

// Get returns the exam's mindmap, serving a cached one unless ?refresh=true.
func (h *MindmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	mindmap, err := h.service.Generate(r.Context(), chi.URLParam(r, "id"), refresh)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// The mindmap is already JSON produced by the model, pass it through.
	api.Success(w, http.StatusOK, json.RawMessage(mindmap))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/service"
)

type ReferenceServiceInterface interface {
	Upload(ctx context.Context, input service.UploadInput) (*domain.Reference, error)
	RegisterURL(ctx context.Context, input service.RegisterURLInput) (*domain.Reference, error)
	List(ctx context.Context, examID string) ([]*domain.Reference, error)
	GetDownloadURL(ctx context.Context, examID, referenceID string) (string, error)
	Delete(ctx context.Context, examID, referenceID string) (*service.DeletionOutcome, error)
}

type ReferenceHandler struct {
	service ReferenceServiceInterface
}

func NewReferenceHandler(service ReferenceServiceInterface) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

type ReferenceResponse struct {
	ID     string `json:"id"`
	ExamID string `json:"exam_id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
}

func referenceResponse(ref *domain.Reference) ReferenceResponse {
	return ReferenceResponse{
		ID:     ref.ID,
		ExamID: ref.ExamID,
		Kind:   string(ref.Kind),
		Name:   ref.Name,
	}
}

// Upload ingests a multipart file upload as a new reference.
func (h *ReferenceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "uploaded file too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "uploaded file too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	ref, err := h.service.Upload(r.Context(), service.UploadInput{
		ExamID:   chi.URLParam(r, "id"),
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, referenceResponse(ref))
}

type CreateURLReferenceRequest struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// CreateURL registers a website or YouTube URL as a new reference.
func (h *ReferenceHandler) CreateURL(w http.ResponseWriter, r *http.Request) {
	var req CreateURLReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	ref, err := h.service.RegisterURL(r.Context(), service.RegisterURLInput{
		ExamID: chi.URLParam(r, "id"),
		Kind:   domain.ReferenceKind(req.Kind),
		URL:    req.URL,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, referenceResponse(ref))
}

func (h *ReferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	refs, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]ReferenceResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, referenceResponse(ref))
	}
	api.Success(w, http.StatusOK, out)
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

func (h *ReferenceHandler) Download(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.GetDownloadURL(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "referenceID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, DownloadURLResponse{URL: url})
}

type DeleteReferenceResponse struct {
	ChunksRemoved int      `json:"chunks_removed"`
	FailedStores  []string `json:"failed_stores,omitempty"`
	FullyDeleted  bool     `json:"fully_deleted"`
}

// Delete removes a reference. A partial deletion still answers 200 and
// names the stores whose cleanup failed.
func (h *ReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "referenceID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteReferenceResponse{
		ChunksRemoved: outcome.ChunksRemoved,
		FailedStores:  outcome.FailedStores,
		FullyDeleted:  outcome.FullyDeleted(),
	})
}

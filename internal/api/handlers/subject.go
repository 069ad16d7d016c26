package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/domain"
)

type SubjectRepository interface {
	Create(ctx context.Context, s *domain.Subject) error
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	List(ctx context.Context) ([]*domain.Subject, error)
	Update(ctx context.Context, s *domain.Subject) error
	Delete(ctx context.Context, id string) error
}

type SubjectHandler struct {
	repo SubjectRepository
}

func NewSubjectHandler(repo SubjectRepository) *SubjectHandler {
	return &SubjectHandler{repo: repo}
}

type SubjectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SubjectResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func subjectResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{ID: s.ID, Name: s.Name, Color: s.Color}
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject := domain.NewSubject(uuid.NewString(), req.Name, req.Color)
	if err := domain.ValidateSubject(subject); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Create(r.Context(), subject); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, subjectResponse(subject))
}

func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	subject, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, subjectResponse(subject))
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repo.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectResponse(s))
	}
	api.Success(w, http.StatusOK, out)
}

func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject := domain.NewSubject(chi.URLParam(r, "id"), req.Name, req.Color)
	if err := domain.ValidateSubject(subject); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), subject); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, subjectResponse(subject))
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/pagination"
	"github.com/you-education/examref/internal/repository"
)

type ExamRepository interface {
	Create(ctx context.Context, e *domain.Exam) error
	GetByID(ctx context.Context, id string) (*domain.Exam, error)
	ListBySubjectWithCursor(ctx context.Context, subjectID string, cursor *pagination.Cursor, limit int) (*repository.ExamPageResult, error)
	Update(ctx context.Context, e *domain.Exam) error
	Delete(ctx context.Context, id string) error
}

type ExamHandler struct {
	repo ExamRepository
}

func NewExamHandler(repo ExamRepository) *ExamHandler {
	return &ExamHandler{repo: repo}
}

type ExamRequest struct {
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExamAt      time.Time `json:"exam_at"`
	TotalHours  float64   `json:"total_hours"`
}

type ExamResponse struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExamAt      time.Time `json:"exam_at"`
	TotalHours  float64   `json:"total_hours"`
}

type ExamListResponse struct {
	Items      []ExamResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

func examResponse(e *domain.Exam) ExamResponse {
	return ExamResponse{
		ID:          e.ID,
		SubjectID:   e.SubjectID,
		Name:        e.Name,
		Description: e.Description,
		ExamAt:      e.ExamAt,
		TotalHours:  e.TotalHours,
	}
}

func (h *ExamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam := domain.NewExam(uuid.NewString(), req.SubjectID, req.Name, req.Description, req.ExamAt, req.TotalHours)
	if err := domain.ValidateExam(exam); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Create(r.Context(), exam); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, examResponse(exam))
}

func (h *ExamHandler) Get(w http.ResponseWriter, r *http.Request) {
	exam, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, examResponse(exam))
}

// ListBySubject pages a subject's exams by exam date using an opaque cursor.
func (h *ExamHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "id")

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	page, err := h.repo.ListBySubjectWithCursor(r.Context(), subjectID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ExamListResponse{
		Items:      make([]ExamResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, e := range page.Items {
		resp.Items = append(resp.Items, examResponse(e))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *ExamHandler) Update(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(r.Context(), examID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	var req ExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam := domain.NewExam(examID, existing.SubjectID, req.Name, req.Description, req.ExamAt, req.TotalHours)
	if err := domain.ValidateExam(exam); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), exam); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, examResponse(exam))
}

func (h *ExamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}

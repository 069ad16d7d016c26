package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/api/handlers"
	"github.com/you-education/examref/internal/api/middleware"
)

type RouterConfig struct {
	SubjectHandler   *handlers.SubjectHandler
	ExamHandler      *handlers.ExamHandler
	ReferenceHandler *handlers.ReferenceHandler
	ChatHandler      *handlers.ChatHandler
	MindmapHandler   *handlers.MindmapHandler
	MetadataHandler  *handlers.MetadataHandler
	MaxUploadBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxUploadBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 50 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/subjects", func(r chi.Router) {
		r.Post("/", cfg.SubjectHandler.Create)
		r.Get("/", cfg.SubjectHandler.List)
		r.Get("/{id}", cfg.SubjectHandler.Get)
		r.Put("/{id}", cfg.SubjectHandler.Update)
		r.Delete("/{id}", cfg.SubjectHandler.Delete)
		r.Get("/{id}/exams", cfg.ExamHandler.ListBySubject)
	})

	r.Route("/exams", func(r chi.Router) {
		r.Post("/", cfg.ExamHandler.Create)
		r.Get("/{id}", cfg.ExamHandler.Get)
		r.Put("/{id}", cfg.ExamHandler.Update)
		r.Delete("/{id}", cfg.ExamHandler.Delete)

		r.Route("/{id}/references", func(r chi.Router) {
			r.Post("/upload", cfg.ReferenceHandler.Upload)
			r.Post("/", cfg.ReferenceHandler.CreateURL)
			r.Get("/", cfg.ReferenceHandler.List)
			r.Get("/{referenceID}/download", cfg.ReferenceHandler.Download)
			r.Delete("/{referenceID}", cfg.ReferenceHandler.Delete)
		})

		r.Post("/{id}/chat", cfg.ChatHandler.Stream)
		r.Get("/{id}/mindmap", cfg.MindmapHandler.Get)
	})

	r.Route("/metadata", func(r chi.Router) {
		r.Get("/youtube", cfg.MetadataHandler.YouTube)
		r.Get("/website", cfg.MetadataHandler.Website)
	})

	return r
}

package handlers

import (
	"context"
	"net/http"

	"github.com/you-education/examref/internal/api"
	"github.com/you-education/examref/internal/youtube"
)

type MetadataServiceInterface interface {
	YouTubeMetadata(ctx context.Context, url string) (*youtube.VideoMetadata, error)
	WebsiteTitle(ctx context.Context, url string) (string, error)
}

type MetadataHandler struct {
	service MetadataServiceInterface
}

func NewMetadataHandler(service MetadataServiceInterface) *MetadataHandler {
	return &MetadataHandler{service: service}
}

type YouTubeMetadataResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *MetadataHandler) YouTube(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		api.Error(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	meta, err := h.service.YouTubeMetadata(r.Context(), url)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, YouTubeMetadataResponse{
		URL:         meta.URL,
		Title:       meta.Title,
		Description: meta.Description,
	})
}

type WebsiteMetadataResponse struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (h *MetadataHandler) Website(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		api.Error(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	title, err := h.service.WebsiteTitle(r.Context(), url)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, WebsiteMetadataResponse{URL: url, Title: title})
}

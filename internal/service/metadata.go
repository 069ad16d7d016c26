package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/youtube"
)

// VideoMetadataGetter resolves video URLs into metadata
type VideoMetadataGetter interface {
	GetVideoMetadata(ctx context.Context, url string) (*youtube.VideoMetadata, error)
}

// MetadataService answers the metadata preview lookups the UI makes before
// a URL reference is registered.
type MetadataService struct {
	videos VideoMetadataGetter
	client *http.Client
}

func NewMetadataService(videos VideoMetadataGetter) *MetadataService {
	return &MetadataService{
		videos: videos,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// YouTubeMetadata returns the title and description of a video URL.
func (s *MetadataService) YouTubeMetadata(ctx context.Context, url string) (*youtube.VideoMetadata, error) {
	if s.videos == nil {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "YouTube API not configured")
	}

	meta, err := s.videos.GetVideoMetadata(ctx, url)
	if err != nil {
		if errors.Is(err, youtube.ErrInvalidVideoURL) {
			return nil, domain.WrapDomainError(
				domain.NewDomainError(domain.ErrCodeValidation, "invalid YouTube URL"), err)
		}
		return nil, err
	}
	return meta, nil
}

// WebsiteTitle fetches a page and returns its title tag, or a placeholder
// when the page has none.
func (s *MetadataService) WebsiteTitle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "examref/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "Untitled website"
	}
	return title, nil
}

package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

var (
	// ErrInvalidVideoURL is returned when no video id can be extracted from a URL
	ErrInvalidVideoURL = errors.New("invalid YouTube URL, could not extract video ID")
	// ErrVideoNotFound is returned when the Data API knows no such video
	ErrVideoNotFound = errors.New("YouTube video not found or unavailable")
)

var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([^&\s]+)`),
	regexp.MustCompile(`(?:https?://)?youtu\.be/([^?\s]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([^?\s]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([^?\s]+)`),
}

// ExtractVideoID pulls the video id out of the common YouTube URL shapes.
func ExtractVideoID(url string) (string, error) {
	for _, pattern := range videoURLPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) == 2 && m[1] != "" {
			return m[1], nil
		}
	}
	return "", ErrInvalidVideoURL
}

// VideoMetadata is the snippet data of one video.
type VideoMetadata struct {
	URL         string
	Title       string
	Description string
}

// Client wraps the YouTube Data API for metadata lookup and search.
type Client struct {
	service *youtubeapi.Service
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// GetVideoMetadata looks up the snippet of a video by its watch URL.
func (c *Client) GetVideoMetadata(ctx context.Context, url string) (*VideoMetadata, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	resp, err := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	snippet := resp.Items[0].Snippet
	return &VideoMetadata{
		URL:         "https://youtu.be/" + videoID,
		Title:       snippet.Title,
		Description: snippet.Description,
	}, nil
}

// Search returns up to maxResults videos matching the query.
func (c *Client) Search(ctx context.Context, query string, maxResults int64) ([]VideoMetadata, error) {
	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	results := make([]VideoMetadata, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		results = append(results, VideoMetadata{
			URL:         "https://youtu.be/" + item.Id.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	return results, nil
}

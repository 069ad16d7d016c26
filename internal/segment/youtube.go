package segment

import (
	"context"
	"strings"

	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/youtube"
)

// VideoMetadataSource resolves a video URL into its metadata.
type VideoMetadataSource interface {
	GetVideoMetadata(ctx context.Context, url string) (*youtube.VideoMetadata, error)
}

// YouTubeSegmenter indexes a video through its title and description, the
// text the Data API exposes without downloading the video itself.
type YouTubeSegmenter struct {
	source VideoMetadataSource
	cfg    SplitConfig
}

func NewYouTubeSegmenter(source VideoMetadataSource) *YouTubeSegmenter {
	return &YouTubeSegmenter{source: source, cfg: DefaultSplitConfig()}
}

func (s *YouTubeSegmenter) Kinds() []domain.ReferenceKind {
	return []domain.ReferenceKind{domain.ReferenceKindYouTube}
}

func (s *YouTubeSegmenter) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	meta, err := s.source.GetVideoMetadata(ctx, desc.URL)
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrExtractionFailed, err)
	}

	var b strings.Builder
	b.WriteString(meta.Title)
	if meta.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(meta.Description)
	}

	segments := splitText(b.String(), s.cfg)
	if len(segments) == 0 {
		return nil, domain.ErrExtractionFailed
	}
	return segments, nil
}

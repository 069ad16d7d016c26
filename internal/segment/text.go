package segment

import (
	"context"
	"unicode/utf8"

	"github.com/you-education/examref/internal/domain"
)

// TextSegmenter handles plain text and markdown payloads.
type TextSegmenter struct {
	cfg SplitConfig
}

func NewTextSegmenter() *TextSegmenter {
	return &TextSegmenter{cfg: DefaultSplitConfig()}
}

func (s *TextSegmenter) Kinds() []domain.ReferenceKind {
	return []domain.ReferenceKind{domain.ReferenceKindTXT, domain.ReferenceKindMD}
}

func (s *TextSegmenter) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	if !utf8.Valid(desc.Data) {
		return nil, domain.ErrExtractionFailed
	}
	segments := splitText(string(desc.Data), s.cfg)
	if len(segments) == 0 {
		return nil, domain.ErrExtractionFailed
	}
	return segments, nil
}

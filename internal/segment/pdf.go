package segment

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/you-education/examref/internal/domain"
)

// PDFSegmenter extracts text from PDF payloads page by page, then splits
// the concatenated text into segments.
type PDFSegmenter struct {
	cfg SplitConfig
}

func NewPDFSegmenter() *PDFSegmenter {
	return &PDFSegmenter{cfg: DefaultSplitConfig()}
}

func (s *PDFSegmenter) Kinds() []domain.ReferenceKind {
	return []domain.ReferenceKind{domain.ReferenceKindPDF}
}

func (s *PDFSegmenter) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(desc.Data), int64(len(desc.Data)))
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrExtractionFailed, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		text, err := p.GetPlainText(fonts)
		if err != nil {
			// Pages that fail to decode are skipped rather than failing
			// the whole document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	segments := splitText(b.String(), s.cfg)
	if len(segments) == 0 {
		return nil, domain.ErrExtractionFailed
	}
	return segments, nil
}

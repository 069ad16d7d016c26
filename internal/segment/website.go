package segment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/you-education/examref/internal/domain"
)

// WebsiteSegmenter fetches a web page and extracts its readable text.
type WebsiteSegmenter struct {
	client *http.Client
	cfg    SplitConfig
}

func NewWebsiteSegmenter() *WebsiteSegmenter {
	return &WebsiteSegmenter{
		client: &http.Client{Timeout: 30 * time.Second},
		cfg:    DefaultSplitConfig(),
	}
}

func (s *WebsiteSegmenter) Kinds() []domain.ReferenceKind {
	return []domain.ReferenceKind{domain.ReferenceKindWebsite}
}

func (s *WebsiteSegmenter) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	doc, err := s.fetch(ctx, desc.URL)
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrExtractionFailed, err)
	}

	text := extractPageText(doc)
	segments := splitText(text, s.cfg)
	if len(segments) == 0 {
		return nil, domain.ErrExtractionFailed
	}
	return segments, nil
}

func (s *WebsiteSegmenter) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "examref/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// extractPageText strips boilerplate elements and prefers semantic content
// containers, falling back to the whole body.
func extractPageText(doc *goquery.Document) string {
	sel := doc.Selection.Clone()
	sel.Find("script, style, nav, footer, header, aside, noscript").Remove()

	contentSelectors := []string{"main", "article", "[role='main']", "#content", ".content", "body"}

	var b strings.Builder
	for _, selector := range contentSelectors {
		sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 100 {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
		})
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return strings.TrimSpace(sel.Text())
	}
	return normalizeWhitespace(b.String())
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

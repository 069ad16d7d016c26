package segment

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-education/examref/internal/domain"
	"github.com/you-education/examref/internal/youtube"
)

func TestRegistry_UnsupportedKind(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTextSegmenter())

	_, err := r.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindPDF,
		Data: []byte("%PDF"),
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTextSegmenter())

	assert.True(t, r.Supports(domain.ReferenceKindTXT))
	assert.True(t, r.Supports(domain.ReferenceKindMD))
	assert.False(t, r.Supports(domain.ReferenceKindYouTube))
}

func TestSplitText_ShortInput(t *testing.T) {
	segments := splitText("hello world", DefaultSplitConfig())
	assert.Equal(t, []string{"hello world"}, segments)
}

func TestSplitText_Blank(t *testing.T) {
	assert.Nil(t, splitText("   \n\t  ", DefaultSplitConfig()))
	assert.Nil(t, splitText("", DefaultSplitConfig()))
}

func TestSplitText_LongInput(t *testing.T) {
	word := "lorem "
	text := strings.Repeat(word, 1000)

	cfg := DefaultSplitConfig()
	segments := splitText(text, cfg)

	require.Greater(t, len(segments), 1)
	for _, s := range segments {
		assert.LessOrEqual(t, len([]rune(s)), cfg.MaxChars)
		assert.NotEmpty(t, strings.TrimSpace(s))
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 200)
	first := splitText(text, DefaultSplitConfig())
	second := splitText(text, DefaultSplitConfig())
	assert.Equal(t, first, second)
}

func TestSplitText_MaxSegments(t *testing.T) {
	text := strings.Repeat("word ", 5000)
	cfg := SplitConfig{MaxChars: 100, MinChars: 20, Overlap: 0, MaxSegments: 3}
	segments := splitText(text, cfg)
	assert.Len(t, segments, 3)
}

func TestTextSegmenter_Segment(t *testing.T) {
	s := NewTextSegmenter()

	segments, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindTXT,
		Data: []byte("The mitochondria is the powerhouse of the cell."),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"The mitochondria is the powerhouse of the cell."}, segments)
}

func TestTextSegmenter_EmptyPayload(t *testing.T) {
	s := NewTextSegmenter()

	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindTXT,
		Data: []byte("   "),
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestTextSegmenter_InvalidUTF8(t *testing.T) {
	s := NewTextSegmenter()

	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindTXT,
		Data: []byte{0xff, 0xfe, 0xfd},
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestPDFSegmenter_InvalidPayload(t *testing.T) {
	s := NewPDFSegmenter()

	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindPDF,
		Data: []byte("not a pdf"),
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOOXMLSegmenter_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Cell biology covers the structure</w:t></w:r><w:r><w:t>of eukaryotic cells.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	s := NewOOXMLSegmenter()
	segments, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindDOCX,
		Data: buildDocx(t, doc),
	})

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0], "Cell biology covers the structure")
	assert.Contains(t, segments[0], "of eukaryotic cells.")
}

func TestOOXMLSegmenter_Pptx(t *testing.T) {
	slide := func(text string) string {
		return `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	// Written out of order to check slide sorting.
	for _, part := range []struct{ name, text string }{
		{"ppt/slides/slide2.xml", "Second slide content"},
		{"ppt/slides/slide1.xml", "First slide content"},
	} {
		f, err := w.Create(part.name)
		require.NoError(t, err)
		_, err = f.Write([]byte(slide(part.text)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	s := NewOOXMLSegmenter()
	segments, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindPPT,
		Data: buf.Bytes(),
	})

	require.NoError(t, err)
	require.Len(t, segments, 1)
	first := strings.Index(segments[0], "First slide content")
	second := strings.Index(segments[0], "Second slide content")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestOOXMLSegmenter_NotAZip(t *testing.T) {
	s := NewOOXMLSegmenter()

	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindDOCX,
		Data: []byte("plain text, not an archive"),
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestWebsiteSegmenter_Segment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Thermodynamics</title><script>ignored()</script></head>
<body><nav>menu</nav><main>` + strings.Repeat("The first law of thermodynamics states that energy is conserved. ", 5) + `</main></body></html>`))
	}))
	defer srv.Close()

	s := NewWebsiteSegmenter()
	segments, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindWebsite,
		URL:  srv.URL,
	})

	require.NoError(t, err)
	require.NotEmpty(t, segments)
	assert.Contains(t, segments[0], "first law of thermodynamics")
	assert.NotContains(t, segments[0], "ignored()")
	assert.NotContains(t, segments[0], "menu")
}

func TestWebsiteSegmenter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewWebsiteSegmenter()
	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindWebsite,
		URL:  srv.URL,
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

type stubVideoSource struct {
	meta *youtube.VideoMetadata
	err  error
}

func (s *stubVideoSource) GetVideoMetadata(ctx context.Context, url string) (*youtube.VideoMetadata, error) {
	return s.meta, s.err
}

func TestYouTubeSegmenter_Segment(t *testing.T) {
	s := NewYouTubeSegmenter(&stubVideoSource{meta: &youtube.VideoMetadata{
		URL:         "https://youtu.be/abc123",
		Title:       "Intro to Linear Algebra",
		Description: "Vectors, matrices and linear maps.",
	}})

	segments, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindYouTube,
		URL:  "https://youtu.be/abc123",
	})

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0], "Intro to Linear Algebra")
	assert.Contains(t, segments[0], "Vectors, matrices and linear maps.")
}

func TestYouTubeSegmenter_LookupFails(t *testing.T) {
	s := NewYouTubeSegmenter(&stubVideoSource{err: errors.New("quota exceeded")})

	_, err := s.Segment(context.Background(), Descriptor{
		Kind: domain.ReferenceKindYouTube,
		URL:  "https://youtu.be/abc123",
	})

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

package segment

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/you-education/examref/internal/domain"
)

// OOXMLSegmenter extracts text from docx and pptx payloads. Both formats are
// zip archives of XML parts; visible text lives in <w:t> runs (Word) and
// <a:t> runs (PowerPoint).
type OOXMLSegmenter struct {
	cfg SplitConfig
}

func NewOOXMLSegmenter() *OOXMLSegmenter {
	return &OOXMLSegmenter{cfg: DefaultSplitConfig()}
}

func (s *OOXMLSegmenter) Kinds() []domain.ReferenceKind {
	return []domain.ReferenceKind{domain.ReferenceKindDOCX, domain.ReferenceKindPPT}
}

func (s *OOXMLSegmenter) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(desc.Data), int64(len(desc.Data)))
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrExtractionFailed, err)
	}

	var text string
	switch desc.Kind {
	case domain.ReferenceKindDOCX:
		text, err = extractDocumentText(reader, "word/document.xml")
	case domain.ReferenceKindPPT:
		text, err = extractSlideText(reader)
	default:
		return nil, domain.ErrUnsupportedKind
	}
	if err != nil {
		return nil, domain.WrapDomainError(domain.ErrExtractionFailed, err)
	}

	segments := splitText(text, s.cfg)
	if len(segments) == 0 {
		return nil, domain.ErrExtractionFailed
	}
	return segments, nil
}

func extractDocumentText(reader *zip.Reader, part string) (string, error) {
	f, err := openZipPart(reader, part)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return extractRunText(f)
}

// extractSlideText concatenates the text of every slide part in slide order.
// Slide parts are named ppt/slides/slideN.xml; a lexical sort with a length
// tiebreak orders slide2 before slide10.
func extractSlideText(reader *zip.Reader) (string, error) {
	var names []string
	for _, f := range reader.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	for _, name := range names {
		f, err := openZipPart(reader, name)
		if err != nil {
			return "", err
		}
		text, err := extractRunText(f)
		f.Close()
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func openZipPart(reader *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range reader.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, io.ErrUnexpectedEOF
}

// extractRunText walks the XML stream collecting character data inside
// elements locally named "t", which covers both w:t and a:t runs.
func extractRunText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	depth := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				depth++
			} else if depth == 0 && (t.Name.Local == "p" || t.Name.Local == "br") {
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" && depth > 0 {
				depth--
				b.WriteString(" ")
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

package segment

import (
	"context"

	"github.com/you-education/examref/internal/domain"
)

// Descriptor describes one reference payload handed to a segmenter. File
// kinds carry Data, URL kinds carry URL.
type Descriptor struct {
	Kind domain.ReferenceKind
	Name string
	Data []byte
	URL  string
}

// Segmenter extracts the ordered text segments of one reference kind.
type Segmenter interface {
	Kinds() []domain.ReferenceKind
	Segment(ctx context.Context, desc Descriptor) ([]string, error)
}

// Registry dispatches segmentation by reference kind.
type Registry struct {
	segmenters map[domain.ReferenceKind]Segmenter
}

func NewRegistry() *Registry {
	return &Registry{segmenters: make(map[domain.ReferenceKind]Segmenter)}
}

// Register binds a segmenter to every kind it declares. A later registration
// for the same kind wins.
func (r *Registry) Register(s Segmenter) {
	for _, kind := range s.Kinds() {
		r.segmenters[kind] = s
	}
}

// Supports reports whether a segmenter is registered for the kind.
func (r *Registry) Supports(kind domain.ReferenceKind) bool {
	_, ok := r.segmenters[kind]
	return ok
}

// Segment extracts the segments of the descriptor, or ErrUnsupportedKind
// when no segmenter handles its kind.
func (r *Registry) Segment(ctx context.Context, desc Descriptor) ([]string, error) {
	s, ok := r.segmenters[desc.Kind]
	if !ok {
		return nil, domain.ErrUnsupportedKind
	}
	return s.Segment(ctx, desc)
}

// DefaultRegistry wires up the segmenters for every supported reference
// kind. The YouTube segmenter is only registered when a Data API client is
// available.
func DefaultRegistry(website *WebsiteSegmenter, youtube *YouTubeSegmenter) *Registry {
	r := NewRegistry()
	r.Register(NewTextSegmenter())
	r.Register(NewPDFSegmenter())
	r.Register(NewOOXMLSegmenter())
	if website != nil {
		r.Register(website)
	}
	if youtube != nil {
		r.Register(youtube)
	}
	return r
}

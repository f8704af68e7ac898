package signature

import (
	"encoding/json"
	"io"
	"slices"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// Signature is a normalized trace with its stroke configuration.
type Signature struct {
	trace []Segment
	cfg   Config
}

// New builds a Signature from either input shape. Text (string, []byte or
// json.RawMessage) is decoded with [Parse]; a list of records is normalized
// with [FromRecords]. Any other input is an INVALID_INPUT error.
func New(input any, opts ...Option) (*Signature, error) {
	switch v := input.(type) {
	case string:
		return Parse([]byte(v), opts...)
	case []byte:
		return Parse(v, opts...)
	case json.RawMessage:
		return Parse(v, opts...)
	}

	records, ok, err := recordsOf(input)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported input type %T: want trace text or a list of records", input)
	}
	if err != nil {
		return nil, err
	}
	return FromRecords(records, opts...)
}

// Parse builds a Signature from trace text: a JSON array whose elements are
// objects or arrays of four numbers.
func Parse(text []byte, opts ...Option) (*Signature, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	trace, err := decodeTrace(text)
	if err != nil {
		return nil, err
	}
	return &Signature{trace: trace, cfg: cfg}, nil
}

// FromRecords builds a Signature from already-decoded records.
func FromRecords(records []Record, opts ...Option) (*Signature, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	trace, err := normalizeRecords(records)
	if err != nil {
		return nil, err
	}
	return &Signature{trace: trace, cfg: cfg}, nil
}

// Trace returns a copy of the normalized segments.
func (s *Signature) Trace() []Segment { return slices.Clone(s.trace) }

// Len returns the number of segments.
func (s *Signature) Len() int { return len(s.trace) }

// Config returns a copy of the stroke configuration.
func (s *Signature) Config() Config { return s.cfg.clone() }

// Size returns the image width and height.
func (s *Signature) Size() (width, height int) {
	return BoundsOf(s.trace).Size(s.cfg.PenWidth)
}

// Image renders the SVG document.
func (s *Signature) Image() string { return Render(s.trace, s.cfg) }

// Compressed renders the gzipped SVG document.
func (s *Signature) Compressed() ([]byte, error) { return RenderCompressed(s.trace, s.cfg) }

// WriteTo writes the SVG document to w.
func (s *Signature) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.Image())
	return int64(n), err
}

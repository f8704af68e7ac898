package signature

import (
	"encoding/json"
	"fmt"
	"math"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// Record is one decoded coordinate record. Values returns its numbers in
// order: start-x, start-y, end-x, end-y.
type Record interface {
	Values() []float64
}

// Segment is a normalized line segment (x1, y1, x2, y2).
type Segment [4]float64

// Values implements Record.
func (s Segment) Values() []float64 { return s[:] }

// X1 returns the start x coordinate.
func (s Segment) X1() float64 { return s[0] }

// Y1 returns the start y coordinate.
func (s Segment) Y1() float64 { return s[1] }

// X2 returns the end x coordinate.
func (s Segment) X2() float64 { return s[2] }

// Y2 returns the end y coordinate.
func (s Segment) Y2() float64 { return s[3] }

// Field is one key/value entry of a map-shaped record.
type Field struct {
	Key   string
	Value float64
}

// Fields is a map-shaped record that keeps insertion order. Keys are not
// interpreted; only the order of values matters.
type Fields []Field

// Values implements Record.
func (f Fields) Values() []float64 {
	out := make([]float64, len(f))
	for i, fld := range f {
		out[i] = fld.Value
	}
	return out
}

type tuple []float64

func (t tuple) Values() []float64 { return t }

// newSegment validates one record's values. Records with other than four
// values would misalign the x/y slot parity used for bounds, so they are
// rejected rather than truncated.
func newSegment(index int, vals []float64) (Segment, error) {
	if len(vals) != 4 {
		return Segment{}, errs.NewParse(errs.CauseShape, nil,
			fmt.Sprintf("record %d has %d values, want 4", index, len(vals)))
	}
	var s Segment
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Segment{}, errs.NewParse(errs.CauseShape, nil,
				fmt.Sprintf("record %d value %d is not finite", index, i))
		}
		s[i] = v
	}
	return s, nil
}

func normalizeRecords(records []Record) ([]Segment, error) {
	trace := make([]Segment, 0, len(records))
	for i, r := range records {
		if r == nil {
			return nil, errs.NewParse(errs.CauseShape, nil, fmt.Sprintf("record %d is nil", i))
		}
		s, err := newSegment(i, r.Values())
		if err != nil {
			return nil, err
		}
		trace = append(trace, s)
	}
	return trace, nil
}

// recordsOf converts the accepted in-memory list shapes to records. ok is
// false when input is not a list at all.
func recordsOf(input any) (records []Record, ok bool, err error) {
	switch v := input.(type) {
	case []Record:
		return v, true, nil
	case []Segment:
		return convert(v, func(s Segment) Record { return s }), true, nil
	case []Fields:
		return convert(v, func(f Fields) Record { return f }), true, nil
	case [][4]float64:
		return convert(v, func(a [4]float64) Record { return Segment(a) }), true, nil
	case [][]float64:
		return convert(v, func(a []float64) Record { return tuple(a) }), true, nil
	case []any:
		records = make([]Record, 0, len(v))
		for i, el := range v {
			r, err := recordOf(i, el)
			if err != nil {
				return nil, true, err
			}
			records = append(records, r)
		}
		return records, true, nil
	}
	return nil, false, nil
}

func recordOf(index int, el any) (Record, error) {
	switch r := el.(type) {
	case Record:
		return r, nil
	case [4]float64:
		return Segment(r), nil
	case []float64:
		return tuple(r), nil
	case []any:
		vals := make([]float64, len(r))
		for i, x := range r {
			f, ok := toFloat(x)
			if !ok {
				return nil, errs.NewParse(errs.CauseShape, nil,
					fmt.Sprintf("record %d value %d is %T, want number", index, i, x))
			}
			vals[i] = f
		}
		return tuple(vals), nil
	case map[string]any, map[string]float64:
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"record %d is a Go map, which has no value order; use signature.Fields", index)
	case json.RawMessage:
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"record %d is raw JSON; pass the whole trace as text instead", index)
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "record %d has unsupported type %T", index, el)
}

func convert[T any](in []T, fn func(T) Record) []Record {
	out := make([]Record, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

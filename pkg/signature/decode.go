package signature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// maxDepth bounds container nesting in trace text.
const maxDepth = 512

var errTooDeep = errors.New("nesting depth exceeded")

// member is one key/value pair of a decoded JSON object.
type member struct {
	key   string
	value any
}

// object is a decoded JSON object in source order. encoding/json maps lose
// member order, which carries the coordinate slots.
type object []member

// decodeTrace parses trace text into segments. The whole document is decoded
// before its shape is checked, so malformed JSON is always reported as such.
func decodeTrace(data []byte) ([]Segment, error) {
	v, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}
	return segmentsOf(v)
}

func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readValue(dec, 0)
	if err != nil {
		return nil, classify(err)
	}
	tok, err := dec.Token()
	switch {
	case err == io.EOF:
		return v, nil
	case err != nil:
		return nil, classify(err)
	default:
		return nil, errs.NewParse(errs.CauseSyntax, nil, fmt.Sprintf("unexpected %v after top-level value", tok))
	}
}

func readValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	if depth+1 > maxDepth {
		return nil, errTooDeep
	}

	switch delim {
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := readValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, closeDelim(dec, ']')
	case '{':
		obj := object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := readValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: v})
		}
		return obj, closeDelim(dec, '}')
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}

// classify maps a decoder failure onto the most specific parse cause.
func classify(err error) error {
	var syn *json.SyntaxError
	switch {
	case errors.Is(err, errTooDeep):
		return errs.NewParse(errs.CauseDepth, nil, fmt.Sprintf("limit is %d", maxDepth))
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return errs.NewParse(errs.CauseSyntax, err, "unexpected end of input")
	case errors.As(err, &syn):
		if r, ok := offendingChar(syn.Error()); ok && isControl(r) {
			return errs.NewParse(errs.CauseControlCharacter, err, fmt.Sprintf("near offset %d", syn.Offset))
		}
		return errs.NewParse(errs.CauseSyntax, err, fmt.Sprintf("near offset %d", syn.Offset))
	}
	return errs.NewParse(errs.CauseUnknown, err, "")
}

// offendingChar extracts the character quoted in an encoding/json
// "invalid character 'c' ..." message.
func offendingChar(msg string) (rune, bool) {
	const prefix = "invalid character '"
	if !strings.HasPrefix(msg, prefix) {
		return 0, false
	}
	rest := msg[len(prefix):]
	end := strings.Index(rest, "' ")
	if end <= 0 {
		return 0, false
	}
	r, _, tail, err := strconv.UnquoteChar(rest[:end], '\'')
	if err != nil || tail != "" {
		return 0, false
	}
	return r, true
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func segmentsOf(v any) ([]Segment, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, errs.NewParse(errs.CauseShape, nil, fmt.Sprintf("trace must be a JSON array, got %s", jsonKind(v)))
	}
	trace := make([]Segment, 0, len(arr))
	for i, el := range arr {
		var raw []any
		switch rec := el.(type) {
		case object:
			raw = make([]any, len(rec))
			for j, m := range rec {
				raw[j] = m.value
			}
		case []any:
			raw = rec
		default:
			return nil, errs.NewParse(errs.CauseShape, nil,
				fmt.Sprintf("record %d is %s, want object or array", i, jsonKind(el)))
		}

		vals := make([]float64, len(raw))
		for j, x := range raw {
			n, ok := x.(json.Number)
			if !ok {
				return nil, errs.NewParse(errs.CauseShape, nil,
					fmt.Sprintf("record %d value %d is %s, want number", i, j, jsonKind(x)))
			}
			f, err := n.Float64()
			if err != nil {
				return nil, errs.NewParse(errs.CauseShape, err,
					fmt.Sprintf("record %d value %d is out of range", i, j))
			}
			vals[j] = f
		}

		s, err := newSegment(i, vals)
		if err != nil {
			return nil, err
		}
		trace = append(trace, s)
	}
	return trace, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number"
	case object:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

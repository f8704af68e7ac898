package errors

import (
	"errors"
	"fmt"
)

// ParseCause names the reason a trace could not be decoded.
type ParseCause string

// Parse causes, from most to least specific.
const (
	CauseDepth            ParseCause = "depth"
	CauseControlCharacter ParseCause = "control_character"
	CauseSyntax           ParseCause = "syntax"
	CauseShape            ParseCause = "shape"
	CauseUnknown          ParseCause = "unknown"
)

var causeMessages = map[ParseCause]string{
	CauseDepth:            "maximum nesting depth exceeded",
	CauseControlCharacter: "unexpected control character found",
	CauseSyntax:           "syntax error, malformed JSON",
	CauseShape:            "record is not a 4-value coordinate tuple",
	CauseUnknown:          "unknown error",
}

// Describe returns the human-readable diagnosis for the cause.
func (c ParseCause) Describe() string {
	if msg, ok := causeMessages[c]; ok {
		return msg
	}
	return "cannot decode trace"
}

// NewParse creates a PARSE_ERROR whose message leads with the cause's
// diagnosis. detail is appended when non-empty.
func NewParse(cause ParseCause, err error, detail string) *Error {
	msg := cause.Describe()
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &Error{
		Code:    ErrCodeParse,
		Message: msg,
		Parse:   cause,
		Cause:   err,
	}
}

// CauseOf returns the parse cause carried by err, or "" when err is not a
// parse error.
func CauseOf(err error) ParseCause {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrCodeParse {
		return e.Parse
	}
	return ""
}

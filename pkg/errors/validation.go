package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePenWidth rejects pen widths that cannot produce a stroke.
func ValidatePenWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidConfig, "pen width must be finite")
	}
	if w <= 0 {
		return New(ErrCodeInvalidConfig, "pen width must be positive, got %g", w)
	}
	return nil
}

// ValidateColour validates a stroke colour received from an untrusted source
// such as a query string. The renderer passes colours through unaltered, so
// this check is what keeps hostile values out of the stroke attribute.
//
// The validation rules are intentionally conservative:
//   - No empty values
//   - Maximum length of 64 characters
//   - No control characters
//   - No markup-special characters (quotes, angle brackets, ampersand)
func ValidateColour(colour string) error {
	if colour == "" {
		return New(ErrCodeInvalidConfig, "pen colour cannot be empty")
	}
	if len(colour) > 64 {
		return New(ErrCodeInvalidConfig, "pen colour too long (max 64 characters)")
	}
	for _, r := range colour {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "pen colour contains invalid control characters")
		}
	}
	if i := strings.IndexAny(colour, `"'<>&`); i >= 0 {
		return New(ErrCodeInvalidConfig, "pen colour contains invalid character: %q", colour[i])
	}
	return nil
}

// ValidateTitle bounds the length of a document title. Special characters
// are allowed since the renderer escapes them.
func ValidateTitle(title string) error {
	const maxTitleLength = 256
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidConfig, "title too long (max %d characters)", maxTitleLength)
	}
	return nil
}

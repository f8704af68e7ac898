package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePenWidth(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"default", 2, false},
		{"fractional", 3.7, false},
		{"thin", 0.1, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePenWidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePenWidth(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidatePenWidth(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateColour(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"hex", "#145394", false},
		{"short hex", "#000", false},
		{"named", "navy", false},
		{"rgb", "rgb(20, 83, 148)", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"quote", `red" onload="x`, true},
		{"apostrophe", "red'", true},
		{"angle bracket", "red><script>", true},
		{"ampersand", "red&amp;", true},
		{"control char", "red\x01", true},
		{"newline", "red\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColour(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColour(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "Signature", false},
		{"empty", "", false},
		{"special chars", `<script>&"'`, false},
		{"too long", strings.Repeat("x", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

package signature

import (
	"math"
	"testing"
)

func TestBoundsAdd(t *testing.T) {
	tests := []struct {
		name  string
		start Bounds
		seg   Segment
		want  Bounds
	}{
		{"from zero", Bounds{}, Segment{45, 42, 45, 72}, Bounds{45, 72}},
		{"end point wins", Bounds{}, Segment{41, 36, 95, 42}, Bounds{95, 42}},
		{"no decrease", Bounds{100, 100}, Segment{1, 2, 3, 4}, Bounds{100, 100}},
		{"negative ignored", Bounds{}, Segment{-5, -6, -7, -8}, Bounds{}},
		{"x slots only raise x", Bounds{}, Segment{10, 0, 20, 0}, Bounds{20, 0}},
		{"nan ignored", Bounds{1, 1}, Segment{math.NaN(), math.NaN(), 0, 0}, Bounds{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.Add(tt.seg); got != tt.want {
				t.Errorf("Add() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundsSize(t *testing.T) {
	tests := []struct {
		name     string
		bounds   Bounds
		penWidth float64
		wantW    int
		wantH    int
	}{
		{"default pen", Bounds{95, 72}, 2, 96, 73},
		{"empty default pen", Bounds{}, 2, 1, 1},
		{"fractional pen", Bounds{95, 72}, 3.7, 97, 74},
		{"empty fractional pen", Bounds{}, 3.7, 2, 2},
		{"half rounds away from zero", Bounds{10, 10}, 1, 11, 11},
		{"rounded once after adding", Bounds{10.3, 10.3}, 0.4, 11, 11},
		{"fractional maxima", Bounds{10.2, 9.7}, 0.2, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.bounds.Size(tt.penWidth)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size(%v) = (%d, %d), want (%d, %d)", tt.penWidth, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	if got, want := BoundsOf(twoSegmentsTrace), (Bounds{95, 72}); got != want {
		t.Errorf("BoundsOf() = %v, want %v", got, want)
	}
	if got := BoundsOf(nil); got != (Bounds{}) {
		t.Errorf("BoundsOf(nil) = %v, want zero", got)
	}
}

package signature

import "math"

// Bounds holds the running maximum of each axis over a trace. The zero value
// is the seed for a fold.
type Bounds struct {
	MaxX, MaxY float64
}

// Add folds one segment into the bounds. Slots 1 and 3 raise MaxX, slots 2
// and 4 raise MaxY. Values are not validated.
func (b Bounds) Add(s Segment) Bounds {
	for i, v := range s {
		if i%2 == 0 {
			if v > b.MaxX {
				b.MaxX = v
			}
		} else if v > b.MaxY {
			b.MaxY = v
		}
	}
	return b
}

// Size finalizes the bounds into integer image dimensions. Half the pen
// width is added before rounding, and rounding is applied once.
func (b Bounds) Size(penWidth float64) (width, height int) {
	half := penWidth / 2
	return int(math.Round(b.MaxX + half)), int(math.Round(b.MaxY + half))
}

// BoundsOf folds a whole trace.
func BoundsOf(trace []Segment) Bounds {
	var b Bounds
	for _, s := range trace {
		b = b.Add(s)
	}
	return b
}

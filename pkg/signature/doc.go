// Package signature converts a recorded pen-stroke trace into an SVG document.
//
// # Overview
//
// A signature-capture widget records a signature as an ordered list of line
// segments, each a 4-tuple (x1, y1, x2, y2). This package normalizes that
// trace from either of its two input shapes and renders it as an SVG Tiny 1.2
// document:
//
//   - Text: a JSON array of objects (or arrays) holding four numbers each.
//     Object keys are discarded; values are taken in their order of
//     appearance.
//   - Records: an already-decoded slice of [Record] values such as [Segment]
//     (an ordered tuple) or [Fields] (an ordered key/value list).
//
// # Usage
//
//	sig, err := signature.New(`[{"lx":20,"ly":34,"mx":20,"my":34}]`,
//	    signature.WithTitle("Jane Doe"),
//	    signature.WithPenWidth(3),
//	)
//	if err != nil {
//	    return err
//	}
//	svg := sig.Image()
//	svgz, err := sig.Compressed()
//
// # Sizing
//
// The image is sized to the largest x and y seen in the trace plus half the
// pen width, rounded to the nearest integer. The stroke-width attribute uses
// the pen width truncated to an integer; the two uses are independent.
//
// # Concurrency
//
// A [Signature] is immutable after construction. [Signature.Image] and
// [Signature.Compressed] rebuild the document on every call and are safe for
// concurrent use.
package signature

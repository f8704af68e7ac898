package signature

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
)

// MimeType is the media type of a rendered signature.
const MimeType = "image/svg+xml"

// EncodingGzip is the content coding of [Signature.Compressed] output.
const EncodingGzip = "gzip"

// ContentType returns the media type of a rendered signature.
func ContentType() string { return MimeType }

// Render builds the SVG document for a trace. Lines are emitted in trace
// order while the bounds are folded, then wrapped in the document header
// once the final size is known.
func Render(trace []Segment, cfg Config) string {
	var lines bytes.Buffer
	var b Bounds
	for _, s := range trace {
		fmt.Fprintf(&lines, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`,
			coord(s[0]), coord(s[1]), coord(s[2]), coord(s[3]))
		b = b.Add(s)
	}
	width, height := b.Size(cfg.PenWidth)

	var buf bytes.Buffer
	buf.Grow(lines.Len() + 320)
	buf.WriteString(`<?xml version="1.0"?>`)
	fmt.Fprintf(&buf, `<svg baseProfile="tiny" width="%d" height="%d" version="1.2" xmlns="http://www.w3.org/2000/svg">`,
		width, height)
	fmt.Fprintf(&buf, `<g fill="red" stroke="%s" stroke-width="%d" stroke-linecap="round" stroke-linejoin="round">`,
		cfg.PenColour, int64(cfg.PenWidth))
	buf.WriteString("<title>")
	xml.EscapeText(&buf, []byte(cfg.Title))
	buf.WriteString("</title>")
	buf.Write(lines.Bytes())
	buf.WriteString("</g></svg>")
	return buf.String()
}

// coord formats a coordinate as an integer. Fractional values are truncated
// toward zero, the same rule applied to the stroke width.
func coord(v float64) int64 {
	return int64(math.Trunc(v))
}

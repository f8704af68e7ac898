// Package render converts rendered signature SVG into raster and print
// formats.
//
// # Formats
//
//   - [ToPNG] rasterises in-process with oksvg/rasterx, so PNG export works
//     without any external tool.
//   - [ToPDF] shells out to rsvg-convert (librsvg). When the tool is missing
//     the error code is UNSUPPORTED and callers may fall back to SVG.
//
// Usage:
//
//	svg := sig.Image()
//	w, h := sig.Size()
//	png, err := render.ToPNG([]byte(svg), w, h, 2.0) // 2x scale
//	pdf, err := render.ToPDF(ctx, []byte(svg))
package render

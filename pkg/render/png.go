package render

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// MaxPixels caps the area of a rasterised image.
const MaxPixels = 1 << 26

// ToPNG rasterises an SVG document of the given pixel size. scale multiplies
// the output resolution; values <= 0 mean 1.
func ToPNG(svg []byte, width, height int, scale float64) ([]byte, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "scale must be finite, got %g", scale)
	}
	if scale <= 0 {
		scale = 1
	}
	if width <= 0 || height <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png export needs a positive size, got %dx%d", width, height)
	}
	fw, fh := math.Round(float64(width)*scale), math.Round(float64(height)*scale)
	if fw < 1 || fh < 1 || fw*fh > MaxPixels {
		return nil, errs.New(errs.ErrCodeInvalidConfig,
			"png size %gx%g at scale %g is outside 1..%d pixels", fw, fh, scale, MaxPixels)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.WarnErrorMode)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read svg for png export")
	}
	// The document carries width/height but no viewBox.
	if icon.ViewBox.W == 0 || icon.ViewBox.H == 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = float64(width), float64(height)
	}

	w, h := int(fw), int(fh)
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

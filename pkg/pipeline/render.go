package pipeline

import (
	"context"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/render"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

// Render produces one artifact for a parsed signature.
func Render(ctx context.Context, sig *signature.Signature, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG:
		return []byte(sig.Image()), nil
	case FormatSVGZ:
		return sig.Compressed()
	case FormatPNG:
		w, h := sig.Size()
		return render.ToPNG([]byte(sig.Image()), w, h, scale)
	case FormatPDF:
		return render.ToPDF(ctx, []byte(sig.Image()))
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unsupported format: %s", format)
}

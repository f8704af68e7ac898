package render

import (
	"bytes"
	"context"
	"os/exec"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// rsvgConvertBin is the librsvg converter looked up on PATH.
var rsvgConvertBin = "rsvg-convert"

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// Available reports whether PDF export can run on this machine.
func Available() bool {
	_, err := exec.LookPath(rsvgConvertBin)
	return err == nil
}

func rsvgConvert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	path, err := exec.LookPath(rsvgConvertBin)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnsupported, err,
			"%s export requires librsvg (macOS: brew install librsvg, Linux: apt install librsvg2-bin)", format)
	}

	cmd := exec.CommandContext(ctx, path, "-f", format)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}

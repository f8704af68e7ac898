package signature

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// RenderCompressed renders the trace and gzips the document at the best
// compression level. A failure to set up the compressor is an UNSUPPORTED
// error; callers may fall back to [Render].
func RenderCompressed(trace []Segment, cfg Config) ([]byte, error) {
	return compress(Render(trace, cfg))
}

func compress(doc string) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnsupported, err, "gzip compression unavailable")
	}
	if _, err := io.WriteString(zw, doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "compress document")
	}
	if err := zw.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "compress document")
	}
	return buf.Bytes(), nil
}

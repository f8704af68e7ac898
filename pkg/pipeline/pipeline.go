// Package pipeline provides the parse → render → export pipeline for sigsvg.
//
// Both the CLI and the HTTP server run signatures through a [Runner] so that
// caching, logging and observability behave the same at every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Trace:   body,
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatSVGZ},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG].Data
//
// Artifacts are cached under a key derived from the trace text, the stroke
// configuration and the format, so a hit is byte-identical to a fresh render.
package pipeline

import (
	"fmt"
	"math"
	"time"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatSVGZ = "svgz"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 24 * time.Hour
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatSVGZ: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// contentTypes maps formats to their media type.
var contentTypes = map[string]string{
	FormatSVG:  signature.MimeType,
	FormatSVGZ: signature.MimeType,
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// ContentType returns the media type of a format.
func ContentType(format string) string {
	return contentTypes[format]
}

// ContentEncoding returns the content coding of a format, or "" when the
// bytes are not encoded.
func ContentEncoding(format string) string {
	if format == FormatSVGZ {
		return signature.EncodingGzip
	}
	return ""
}

// Options configures a pipeline run.
type Options struct {
	// Trace is the JSON trace text.
	Trace []byte

	// Config is the stroke configuration. Nil means signature.DefaultConfig.
	Config *signature.Config

	// Formats lists the artifacts to produce. Empty means svg only.
	Formats []string

	// Scale is the PNG resolution multiplier. Zero means DefaultScale.
	Scale float64

	// Refresh skips the cache lookup (results are still stored).
	Refresh bool
}

// ValidateAndSetDefaults validates the options and fills defaults in place.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) || o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "scale must be a positive number, got %g", o.Scale)
	}
	if o.Config == nil {
		cfg := signature.DefaultConfig()
		o.Config = &cfg
	}
	return o.Config.Validate()
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidConfig, "invalid format: %s (must be 'svg', 'svgz', 'png', or 'pdf')", format)
	}
	return nil
}

// ValidateFormats checks every requested format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Artifact is one rendered output.
type Artifact struct {
	Data            []byte
	ContentType     string
	ContentEncoding string
	Cached          bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string]Artifact

	// Segments, Width and Height describe the signature.
	Segments int
	Width    int
	Height   int

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime  time.Duration
	RenderTime time.Duration
}

// AllCached reports whether every artifact came from the cache.
func (r *Result) AllCached() bool {
	for _, a := range r.Artifacts {
		if !a.Cached {
			return false
		}
	}
	return len(r.Artifacts) > 0
}

func (r *Result) String() string {
	return fmt.Sprintf("%d segments, %dx%d", r.Segments, r.Width, r.Height)
}

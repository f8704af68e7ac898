package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sigsvg/pkg/cache"
	"github.com/matzehuels/sigsvg/pkg/observability"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

const keyTypeArtifact = "artifact"

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// cachedArtifact is the cache envelope. The size travels with the bytes so a
// fully cached run does not need to parse the trace.
type cachedArtifact struct {
	Data     []byte `json:"data"`
	Segments int    `json:"segments"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Execute parses the trace once and produces every requested format, serving
// what it can from the cache.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string]Artifact, len(opts.Formats))}
	var sig *signature.Signature

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(opts.Trace, keyOpts(opts, format))

		if !opts.Refresh {
			if entry, ok := r.lookup(ctx, key); ok {
				result.Artifacts[format] = newArtifact(format, entry.Data, true)
				result.Segments, result.Width, result.Height = entry.Segments, entry.Width, entry.Height
				r.Logger.Debug("artifact cache hit", "format", format, "bytes", len(entry.Data))
				continue
			}
		}

		if sig == nil {
			start := time.Now()
			parsed, err := r.Parse(ctx, opts.Trace, *opts.Config)
			if err != nil {
				return nil, err
			}
			sig = parsed
			result.Stats.ParseTime = time.Since(start)
			result.Segments = sig.Len()
			result.Width, result.Height = sig.Size()
		}

		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)
		data, err := Render(ctx, sig, format, opts.Scale)
		elapsed := time.Since(start)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), elapsed, err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Stats.RenderTime += elapsed
		result.Artifacts[format] = newArtifact(format, data, false)

		r.store(ctx, key, cachedArtifact{
			Data:     data,
			Segments: result.Segments,
			Width:    result.Width,
			Height:   result.Height,
		})
	}

	r.Logger.Debug("pipeline complete",
		"formats", opts.Formats,
		"segments", result.Segments,
		"cached", result.AllCached(),
		"render", result.Stats.RenderTime)

	return result, nil
}

// Parse decodes trace text into a signature, reporting to the pipeline hooks.
func (r *Runner) Parse(ctx context.Context, trace []byte, cfg signature.Config) (*signature.Signature, error) {
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(trace))

	// cfg is complete; WithTitle keeps an explicitly empty title.
	sig, err := signature.Parse(trace, signature.WithConfig(cfg), signature.WithTitle(cfg.Title))

	segments := 0
	if sig != nil {
		segments = sig.Len()
	}
	observability.Pipeline().OnParseComplete(ctx, segments, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("parsed trace", "segments", segments, "duration", time.Since(start))
	return sig, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (cachedArtifact, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return cachedArtifact{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		return cachedArtifact{}, false
	}
	var entry cachedArtifact
	if err := json.Unmarshal(data, &entry); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "error", err)
		_ = r.Cache.Delete(ctx, key)
		return cachedArtifact{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
	return entry, true
}

func (r *Runner) store(ctx context.Context, key string, entry cachedArtifact) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
}

func keyOpts(opts Options, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:    format,
		Title:     opts.Config.Title,
		PenWidth:  opts.Config.PenWidth,
		PenColour: opts.Config.PenColour,
	}
	if format == FormatPNG {
		k.Scale = opts.Scale
	}
	return k
}

func newArtifact(format string, data []byte, cached bool) Artifact {
	return Artifact{
		Data:            data,
		ContentType:     ContentType(format),
		ContentEncoding: ContentEncoding(format),
		Cached:          cached,
	}
}

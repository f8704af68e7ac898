package pipeline

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/sigsvg/pkg/cache"
	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/observability"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

const trace = `[{"x1":45,"y1":42,"x2":45,"y2":72},{"x1":41,"y1":36,"x2":95,"y2":42}]`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"svgz", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Config == nil || opts.Config.Title != signature.DefaultTitle || opts.Config.PenWidth != signature.DefaultPenWidth {
		t.Errorf("Config = %+v, want defaults", opts.Config)
	}

	bad := Options{Config: &signature.Config{PenWidth: -1}}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("negative pen width error = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
}

func TestOptionsInvalidScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
	}{
		{"negative", -2},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Scale: tt.scale}
			if err := opts.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("ValidateAndSetDefaults(scale=%g) error = %v, want %s", tt.scale, err, errs.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestExecutePNGScaleTooLarge(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Trace:   []byte(trace),
		Formats: []string{FormatPNG},
		Scale:   1e300,
	})
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Execute() error = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
}

func TestExecuteKeepsEmptyTitle(t *testing.T) {
	cfg := signature.DefaultConfig()
	cfg.Title = ""
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Trace: []byte(trace), Config: &cfg})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := string(res.Artifacts[FormatSVG].Data); !strings.Contains(got, "<title></title>") {
		t.Errorf("svg = %s, want an empty <title>", got)
	}
}

func TestContentTypes(t *testing.T) {
	tests := []struct {
		format, contentType, encoding string
	}{
		{FormatSVG, "image/svg+xml", ""},
		{FormatSVGZ, "image/svg+xml", "gzip"},
		{FormatPNG, "image/png", ""},
		{FormatPDF, "application/pdf", ""},
	}
	for _, tt := range tests {
		if got := ContentType(tt.format); got != tt.contentType {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.contentType)
		}
		if got := ContentEncoding(tt.format); got != tt.encoding {
			t.Errorf("ContentEncoding(%q) = %q, want %q", tt.format, got, tt.encoding)
		}
	}
}

func TestExecuteRendersFormats(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Trace:   []byte(trace),
		Formats: []string{FormatSVG, FormatSVGZ, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	sig, _ := signature.New(trace)
	if got := string(res.Artifacts[FormatSVG].Data); got != sig.Image() {
		t.Errorf("svg artifact = %s, want %s", got, sig.Image())
	}

	zr, err := gzip.NewReader(bytes.NewReader(res.Artifacts[FormatSVGZ].Data))
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	unzipped, _ := io.ReadAll(zr)
	if string(unzipped) != sig.Image() {
		t.Error("svgz artifact does not decompress to the svg document")
	}

	if png := res.Artifacts[FormatPNG].Data; !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("png artifact missing PNG signature")
	}

	if res.Segments != 2 || res.Width != 96 || res.Height != 73 {
		t.Errorf("Result = %s, want 2 segments, 96x73", res)
	}
	if res.AllCached() {
		t.Error("AllCached() = true without a cache")
	}
}

func TestExecuteCacheHitMatchesFreshRender(t *testing.T) {
	mem := newMemCache()
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	opts := Options{Trace: []byte(trace), Formats: []string{FormatSVG, FormatSVGZ}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !second.AllCached() {
		t.Error("second run should be served from cache")
	}
	for _, f := range opts.Formats {
		if !bytes.Equal(first.Artifacts[f].Data, second.Artifacts[f].Data) {
			t.Errorf("%s cached bytes differ from fresh render", f)
		}
	}
	if second.Width != first.Width || second.Height != first.Height || second.Segments != first.Segments {
		t.Errorf("cached result = %s, want %s", second, first)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if third.AllCached() {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteCacheKeyIncludesConfig(t *testing.T) {
	mem := newMemCache()
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Trace: []byte(trace)}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	cfg := signature.DefaultConfig()
	cfg.Title = "Other"
	res, err := r.Execute(ctx, Options{Trace: []byte(trace), Config: &cfg})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.AllCached() {
		t.Error("different title should miss the cache")
	}
	if !bytes.Contains(res.Artifacts[FormatSVG].Data, []byte("<title>Other</title>")) {
		t.Error("artifact does not carry the configured title")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	mem := newMemCache()
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	opts := Options{Trace: []byte(trace)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.ArtifactKey(opts.Trace, keyOpts(opts, FormatSVG))
	_ = mem.Set(ctx, key, []byte("{broken"), 0)

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.AllCached() {
		t.Error("corrupt entry should be treated as a miss")
	}
}

func TestExecuteParseError(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Trace: []byte(`[{`)})
	if !errs.Is(err, errs.ErrCodeParse) {
		t.Errorf("Execute() error = %v, want %s", err, errs.ErrCodeParse)
	}
}

func TestExecuteInvalidFormat(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Trace: []byte(trace), Formats: []string{"gif"}})
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Execute() error = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	for range 2 {
		if _, err := r.Execute(ctx, Options{Trace: []byte(trace)}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.parses != 1 || hooks.renders != 1 {
		t.Errorf("parses = %d, renders = %d, want 1 and 1", hooks.parses, hooks.renders)
	}
	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits = %d, misses = %d, sets = %d, want 1 each", hooks.hits, hooks.misses, hooks.sets)
	}
}

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu                 sync.Mutex
	parses, renders    int
	hits, misses, sets int
}

func (h *recordingHooks) OnParseComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	h.parses++
	h.mu.Unlock()
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	h.renders++
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	h.hits++
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	h.misses++
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	h.sets++
	h.mu.Unlock()
}

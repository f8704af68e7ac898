package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sigsvg/internal/config"
	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/pipeline"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

// stdinName is the input argument that reads the trace from standard input.
const stdinName = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats); "-" for stdout
	formats    []string // output formats: "svg", "svgz", "png", "pdf"
	title      string   // document title
	penWidth   float64  // stroke width
	penColour  string   // stroke colour
	gzip       bool     // compress the SVG output
	scale      float64  // PNG resolution multiplier
	configPath string   // config file (default: $XDG_CONFIG_HOME/sigsvg/config.toml)
	noCache    bool     // bypass the render cache entirely
	refresh    bool     // re-render even when a cached artifact exists
}

// renderCommand creates the render command for converting traces.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a signature trace to SVG",
		Long: `Render reads a JSON stroke trace from a file, or from stdin when the file is
omitted or "-", and writes the signature as an SVG document.

The output format follows --format, then the extension of --output. Use
--gzip (or an .svgz output) for a compressed document.`,
		Example: `  sigsvg render trace.json
  sigsvg render trace.json -o signature.svgz
  cat trace.json | sigsvg render --pen-colour black > signature.svg
  sigsvg render trace.json -f svg,png,pdf --title "Contract 42"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}
			opts.formats = resolveFormats(formatsStr, opts.output, opts.gzip)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			stroke, ttl, err := loadStroke(cmd, &opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), input, stroke, ttl, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format) or base path (multiple); "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), svgz, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", signature.DefaultTitle, "document title")
	cmd.Flags().Float64Var(&opts.penWidth, "pen-width", signature.DefaultPenWidth, "stroke width")
	cmd.Flags().StringVar(&opts.penColour, "pen-colour", signature.DefaultPenColour, "stroke colour")
	cmd.Flags().BoolVarP(&opts.gzip, "gzip", "z", false, "gzip-compress the SVG output")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sigsvg/config.toml)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// resolveFormats decides the output formats. Explicit --format wins, then
// the extension of --output; --gzip turns svg into svgz.
func resolveFormats(formatsStr, output string, gzip bool) []string {
	formats := parseFormats(formatsStr)
	if formatsStr == "" && output != "" && output != stdinName {
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); pipeline.ValidFormats[ext] {
			formats = []string{ext}
		}
	}
	if gzip {
		for i, f := range formats {
			if f == pipeline.FormatSVG {
				formats[i] = pipeline.FormatSVGZ
			}
		}
	}
	seen := make(map[string]bool, len(formats))
	return slices.DeleteFunc(formats, func(f string) bool {
		if seen[f] {
			return true
		}
		seen[f] = true
		return false
	})
}

// loadStroke layers the stroke configuration: defaults, then the config
// file, then flags the user set explicitly.
func loadStroke(cmd *cobra.Command, opts *renderOpts) (signature.Config, time.Duration, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return signature.Config{}, 0, err
	}
	stroke, err := cfg.StrokeConfig()
	if err != nil {
		return signature.Config{}, 0, err
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		if err := errs.ValidateTitle(opts.title); err != nil {
			return signature.Config{}, 0, err
		}
		stroke.Title = opts.title
	}
	if flags.Changed("pen-width") {
		stroke.PenWidth = opts.penWidth
	}
	if flags.Changed("pen-colour") {
		if err := errs.ValidateColour(opts.penColour); err != nil {
			return signature.Config{}, 0, err
		}
		stroke.PenColour = opts.penColour
	}
	if err := stroke.Validate(); err != nil {
		return signature.Config{}, 0, err
	}
	return stroke, cfg.Cache.TTL.Duration, nil
}

// runRender reads the trace, runs the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, stroke signature.Config, ttl time.Duration, opts *renderOpts) error {
	data, err := readTrace(stdin, input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Read %d bytes from %s", len(data), displayName(input))

	runner, err := c.newRunner(opts.noCache, ttl)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Trace:   data,
		Config:  &stroke,
		Formats: opts.formats,
		Scale:   opts.scale,
		Refresh: opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", result))

	toStdout := opts.output == stdinName || (opts.output == "" && input == stdinName)
	if toStdout {
		if len(opts.formats) > 1 {
			return fmt.Errorf("cannot write %d formats to stdout; use --output", len(opts.formats))
		}
		_, err := stdout.Write(result.Artifacts[opts.formats[0]].Data)
		return err
	}

	paths := outputPaths(input, opts.output, opts.formats)
	for _, f := range opts.formats {
		if err := writeOutput(paths[f], result.Artifacts[f].Data); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", displayName(input))
	for _, f := range opts.formats {
		printFile(paths[f])
	}
	printStats(result.Segments, result.Width, result.Height, result.AllCached())
	return nil
}

func readTrace(stdin io.Reader, input string) ([]byte, error) {
	if input == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return data, nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit --output writes exactly there; otherwise files are named
// <base>.<format>.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input (stdin renders to
// "signature"). If output has a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinName {
			return "signature"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayName(input string) string {
	if input == stdinName {
		return "stdin"
	}
	return input
}

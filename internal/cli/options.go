package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/idelchi/dendo/internal/config"
	"github.com/idelchi/dendo/internal/listing"
	"github.com/idelchi/dendo/internal/scan"
)

// DefaultInput is the listing read when no input is given.
const DefaultInput = "sample_files.csv"

// DefaultHTMLFile receives the treemap when stdout is a terminal.
const DefaultHTMLFile = "treemap.html"

// DefaultExcludes contains the default exclusion patterns for directory scans.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`.*\.git/.*`, `.*node_modules/.*`}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"html", "json", "table"}

// Options configures a run.
type Options struct {
	// Input is a listing file, "-" for stdin, or a directory to scan.
	Input string
	// Output is the output format.
	Output string
	// Out is the destination file, "" or "-" for stdout.
	Out string
	// Title is the treemap title.
	Title string
	// ScriptURL is the Plotly bundle referenced by the treemap page.
	ScriptURL string
	// Focus restricts the output to the subtree below this node.
	Focus string
	// MaxDepth limits the visible treemap levels (0=unlimited).
	MaxDepth int
	// TopN is the number of entries in table output.
	TopN int
	// LeavesOnly restricts table output to leaf entries.
	LeavesOnly bool
	// Open shows a rendered treemap in the browser.
	Open bool
	// Separator splits paths into segments.
	Separator string
	// Listing configures the listing columns and delimiter.
	Listing listing.Options
	// Scan configures directory scans.
	Scan scan.Options
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Version indicates whether to show version and exit.
	Version bool

	delimiter  string
	minSize    string
	configPath string
}

// set assigns value to dst unless the flag was given explicitly or value is
// the zero value.
func set[T comparable](flags *pflag.FlagSet, name string, dst *T, value T) {
	var zero T

	if flags.Lookup(name) != nil && !flags.Changed(name) && value != zero {
		*dst = value
	}
}

// setSlice is set for slice values.
func setSlice(flags *pflag.FlagSet, name string, dst *[]string, value []string) {
	if flags.Lookup(name) != nil && !flags.Changed(name) && len(value) > 0 {
		*dst = slices.Clone(value)
	}
}

// resolve merges the configuration file into options and validates the result.
// Flags set on the command line take precedence over the file.
func (o *Options) resolve(flags *pflag.FlagSet) error {
	load := config.LoadOptional
	if flags.Changed("config") {
		load = config.Load
	}

	cfg, err := load(o.configPath)
	if err != nil {
		return err
	}

	set(flags, "output", &o.Output, cfg.Output)
	set(flags, "out", &o.Out, cfg.Out)
	set(flags, "title", &o.Title, cfg.Title)
	set(flags, "script-url", &o.ScriptURL, cfg.ScriptURL)
	set(flags, "path-column", &o.Listing.PathColumn, cfg.PathColumn)
	set(flags, "size-column", &o.Listing.SizeColumn, cfg.SizeColumn)
	set(flags, "delimiter", &o.delimiter, cfg.Delimiter)
	set(flags, "separator", &o.Separator, cfg.Separator)
	set(flags, "top", &o.TopN, cfg.Top)
	set(flags, "max-depth", &o.MaxDepth, cfg.MaxDepth)
	set(flags, "depth", &o.Scan.Depth, cfg.Depth)
	set(flags, "min-size", &o.minSize, cfg.MinSize)
	setSlice(flags, "exclude", &o.Scan.Excludes, cfg.Excludes)
	setSlice(flags, "ext", &o.Scan.Extensions, cfg.Extensions)

	if !slices.Contains(allowedOutputs, o.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", o.Output, allowedOutputs)
	}

	if o.Scan.Depth < 0 {
		return errors.New("depth cannot be negative")
	}

	if o.MaxDepth < 0 {
		return errors.New("max-depth cannot be negative")
	}

	if o.TopN < 0 {
		return errors.New("top cannot be negative")
	}

	o.Listing.Delimiter, err = listing.ParseDelimiter(o.delimiter)
	if err != nil {
		return err
	}

	if o.minSize != "" {
		size, err := humanize.ParseBytes(o.minSize)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}

		o.Scan.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	o.Scan.Debug = o.Debug

	return nil
}

package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dendo/internal/config"
	"github.com/idelchi/dendo/internal/render"
	"github.com/idelchi/dendo/internal/tree"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the command tree.
func (c CLI) Command() *cobra.Command {
	var options Options

	root := &cobra.Command{
		Use:   "dendo [flags] [listing.csv | - | directory]",
		Short: "Aggregate file sizes by directory and render them as a treemap",
		Long: heredoc.Doc(`
			dendo aggregates a listing of file paths and byte sizes per directory
			and renders the hierarchy as an interactive treemap.

			Positional Arguments:
			  input                  Listing file with a header row, '-' for stdin, or a
			                         directory to scan. Defaults to 'sample_files.csv'.

			Every prefix of every path becomes one entry whose size is the sum of all
			files below it. The treemap is written as a standalone HTML page; when stdout
			is a terminal it is saved to 'treemap.html' instead.

			Settings are read from '.dendo.yaml' when present. Flags take precedence.
		`),
		Example: heredoc.Doc(`
			dendo files.csv --open
			dendo files.csv -o table --top 20 --leaves
			du -ab . | awk 'BEGIN{print "Bytes\tFilepath"} {print}' | dendo - --delimiter tab
			dendo scan ~/src > files.csv
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Version {
				fmt.Fprintln(cmd.OutOrStdout(), c.version)

				return nil
			}

			if err := options.resolve(cmd.Flags()); err != nil {
				return err
			}

			options.Input = DefaultInput
			if len(args) > 0 {
				options.Input = args[0]
			}

			return logic(cmd, options)
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVarP(&options.configPath, "config", "c", config.DefaultFile, "Path to a YAML configuration file")
	persistent.StringVarP(&options.Out, "out", "f", "", "Write output to this file instead of stdout")
	persistent.StringVar(&options.Listing.PathColumn, "path-column", "Filepath", "Header of the path column")
	persistent.StringVar(&options.Listing.SizeColumn, "size-column", "Bytes", "Header of the byte size column")
	persistent.StringVar(&options.delimiter, "delimiter", ",", "Listing field delimiter ('tab' or '\\t' for tabs)")
	persistent.StringSliceVarP(&options.Scan.Excludes, "exclude", "e", DefaultExcludes, "Regex patterns to exclude when scanning")
	persistent.StringSliceVarP(
		&options.Scan.Extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to include when scanning (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log)",
	)
	persistent.StringVar(&options.minSize, "min-size", "0KB", "Minimum file size when scanning (e.g., 1KB)")
	persistent.IntVarP(&options.Scan.Depth, "depth", "d", 0, "Maximum scan depth (0=unlimited)")
	persistent.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	persistent.SortFlags = false

	flags := root.Flags()
	flags.StringVarP(&options.Output, "output", "o", "html", "Output format: html, json or table")
	flags.StringVar(&options.Separator, "separator", tree.DefaultSeparator, "Path segment separator")
	flags.StringVar(&options.Focus, "focus", "", "Only show the entry with this path and everything below it")
	flags.IntVar(&options.MaxDepth, "max-depth", 0, "Number of treemap levels shown at once (0=all)")
	flags.IntVarP(&options.TopN, "top", "t", 10, "Number of largest entries in table output")
	flags.BoolVar(&options.LeavesOnly, "leaves", false, "Only list files (leaf entries) in table output")
	flags.StringVar(&options.Title, "title", render.DefaultTitle, "Treemap title")
	flags.StringVar(&options.ScriptURL, "script-url", render.DefaultScriptURL, "Location of the Plotly bundle")
	flags.BoolVar(&options.Open, "open", false, "Open the rendered treemap in the browser")
	flags.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")
	flags.SortFlags = false

	root.AddCommand(scanCommand(&options))

	return root
}

func scanCommand(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [flags] [directory]",
		Short: "Write a listing of all files below a directory",
		Long: heredoc.Doc(`
			scan walks a directory tree in parallel and writes one row per regular file
			with its path and size in bytes. The result can be fed back to dendo.

			Positional Arguments:
			  directory              Directory to scan. Defaults to the current directory.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.resolve(cmd.Flags()); err != nil {
				return err
			}

			options.Input = "."
			if len(args) > 0 {
				options.Input = args[0]
			}

			return scanLogic(cmd, *options)
		},
	}
}

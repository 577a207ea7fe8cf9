package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/dendo/internal/debug"
	"github.com/idelchi/dendo/internal/listing"
	"github.com/idelchi/dendo/internal/render"
	"github.com/idelchi/dendo/internal/scan"
	"github.com/idelchi/dendo/internal/tree"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && isatty.IsTerminal(file.Fd())
}

// walk scans a directory, printing progress to stderr when it is a terminal.
func walk(ctx context.Context, opt scan.Options, stderr io.Writer) (*scan.Result, error) {
	enableProgress := !opt.Debug && isTerminal(stderr)

	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %s files, %s",
				humanize.Comma(files), humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	result, err := scan.Run(ctx, opt, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	return result, err
}

// load reads records from the configured input.
func load(cmd *cobra.Command, options Options, log debug.Logger) ([]tree.Record, error) {
	if options.Input == "-" {
		log.Printf("reading listing from stdin\n")

		records, err := listing.Read(cmd.InOrStdin(), options.Listing)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return records, nil
	}

	info, err := os.Stat(options.Input)
	if err != nil {
		return nil, fmt.Errorf("accessing input %q: %w", options.Input, err)
	}

	if info.IsDir() {
		opt := options.Scan
		opt.Path = options.Input

		result, err := walk(cmd.Context(), opt, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}

		return result.Records, nil
	}

	log.Printf("reading listing %s\n", options.Input)

	file, err := os.Open(options.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	records, err := listing.Read(file, options.Listing)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", options.Input, err)
	}

	return records, nil
}

// isStdout reports whether path selects standard output.
func isStdout(path string) bool {
	return path == "" || path == "-"
}

// destination opens the output file, or returns stdout.
func destination(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if isStdout(path) {
		return stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}

	return file, file.Close, nil
}

func logic(cmd *cobra.Command, options Options) (err error) {
	log := debug.New(options.Debug).To(cmd.ErrOrStderr())
	start := time.Now()

	records, err := load(cmd, options, log)
	if err != nil {
		return err
	}

	result, err := tree.Aggregate(records, options.Separator)
	if err != nil {
		return fmt.Errorf("aggregating: %w", err)
	}

	log.Printf("aggregated %d records on separator %q\n", len(records), result.Separator())

	if options.Focus != "" {
		if result, err = result.Subtree(options.Focus); err != nil {
			return fmt.Errorf("focusing: %w", err)
		}
	}

	log.Printf("%d entries, %s total\n", result.Len(), tree.HumanReadable(result.Total()))

	if options.Output == "html" && isStdout(options.Out) && (options.Open || isTerminal(cmd.OutOrStdout())) {
		options.Out = DefaultHTMLFile
	}

	writer, closer, err := destination(options.Out, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()

	switch options.Output {
	case "json":
		return PrintJSON(result, writer)
	case "table":
		return PrintTable(Summary{
			Tree:       result,
			TopN:       options.TopN,
			LeavesOnly: options.LeavesOnly,
			Elapsed:    time.Since(start),
		}, writer)
	case "html":
		if err := render.HTML(writer, result, render.Options{
			Title:     options.Title,
			MaxDepth:  options.MaxDepth,
			ScriptURL: options.ScriptURL,
		}); err != nil {
			return err
		}

		if isStdout(options.Out) {
			return nil
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Treemap written to %s\n", options.Out)

		if options.Open {
			return render.Open(options.Out)
		}

		return nil
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}

func scanLogic(cmd *cobra.Command, options Options) (err error) {
	opt := options.Scan
	opt.Path = options.Input

	result, err := walk(cmd.Context(), opt, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	writer, closer, err := destination(options.Out, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()

	if err := listing.Write(writer, result.Records, options.Listing); err != nil {
		return err
	}

	if result.ErrorCount > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s unreadable entries\n", humanize.Comma(result.ErrorCount))
	}

	return nil
}

// Package render turns an aggregated tree into an interactive treemap page.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os/exec"
	"runtime"

	"github.com/valyala/bytebufferpool"

	"github.com/idelchi/dendo/internal/tree"
)

const (
	// DefaultTitle is the page and chart title.
	DefaultTitle = "Directory Size Treemap (Aggregated)"
	// DefaultScriptURL is the Plotly bundle loaded by the page.
	DefaultScriptURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

	hoverTemplate = "<b>%{label}</b><br>Full Path: %{customdata[1]}<br>Size: %{customdata[0]}<extra></extra>"
)

// Treemap contains the page template.
//
//go:embed treemap.html.tmpl
var Treemap string

//nolint:gochecknoglobals // Parsed once
var page = template.Must(template.New("treemap").Parse(Treemap))

// Options configures the rendered page.
type Options struct {
	// Title is shown as page and chart title.
	Title string
	// MaxDepth limits the number of visible levels, -1 or 0 for all.
	MaxDepth int
	// ScriptURL is the location of the Plotly bundle.
	ScriptURL string
}

// data is the template input, one slice entry per node.
type data struct {
	Title         string
	ScriptURL     string
	MaxDepth      int
	HoverTemplate string
	IDs           []string
	Parents       []string
	Labels        []string
	Values        []int64
	CustomData    [][2]string
}

// HTML writes a standalone treemap page for t to w. Nothing is written if
// rendering fails.
func HTML(w io.Writer, t *tree.Tree, opts Options) error {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}

	if opts.MaxDepth <= 0 {
		opts.MaxDepth = -1
	}

	nodes := t.Nodes()

	input := data{
		Title:         opts.Title,
		ScriptURL:     opts.ScriptURL,
		MaxDepth:      opts.MaxDepth,
		HoverTemplate: hoverTemplate,
		IDs:           make([]string, 0, len(nodes)),
		Parents:       make([]string, 0, len(nodes)),
		Labels:        make([]string, 0, len(nodes)),
		Values:        make([]int64, 0, len(nodes)),
		CustomData:    make([][2]string, 0, len(nodes)),
	}

	for _, node := range nodes {
		input.IDs = append(input.IDs, node.ID)
		input.Parents = append(input.Parents, node.Parent)
		input.Labels = append(input.Labels, node.Label)
		input.Values = append(input.Values, node.Size)
		input.CustomData = append(input.CustomData, [2]string{tree.HumanReadable(node.Size), node.ID})
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := page.Execute(buf, input); err != nil {
		return fmt.Errorf("rendering treemap: %w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing treemap: %w", err)
	}

	return nil
}

// Open shows the file at path in the system browser.
func Open(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		opener, err := exec.LookPath("xdg-open")
		if err != nil {
			return fmt.Errorf("no browser opener found: %w", err)
		}

		cmd = exec.Command(opener, path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}

	return nil
}

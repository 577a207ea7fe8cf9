package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dendo/internal/tree"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Entry is the output record of a single node.
type Entry struct {
	ID           string `json:"id"`
	Parent       string `json:"parent"`
	Label        string `json:"label"`
	Size         int64  `json:"size"`
	ReadableSize string `json:"readable_size"`
	FullPath     string `json:"full_path"`
}

// Entries converts the nodes of t into output records.
func Entries(t *tree.Tree) []Entry {
	nodes := t.Nodes()
	entries := make([]Entry, 0, len(nodes))

	for _, node := range nodes {
		entries = append(entries, Entry{
			ID:           node.ID,
			Parent:       node.Parent,
			Label:        node.Label,
			Size:         node.Size,
			ReadableSize: tree.HumanReadable(node.Size),
			FullPath:     node.ID,
		})
	}

	return entries
}

// Summary is the input of the table output.
type Summary struct {
	// Tree holds the aggregated entries.
	Tree *tree.Tree
	// TopN is the number of largest entries to list.
	TopN int
	// LeavesOnly restricts the list to leaf entries.
	LeavesOnly bool
	// Elapsed is the time taken to load and aggregate the input.
	Elapsed time.Duration
}

// PrintJSON outputs the aggregated entries in JSON format.
func PrintJSON(t *tree.Tree, writer io.Writer) error {
	data, err := json.MarshalIndent(Entries(t), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the largest entries and totals in human-readable table format.
// Entries are listed smallest first so the largest ends up next to the prompt.
func PrintTable(summary Summary, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	total := summary.Tree.Total()
	top := summary.Tree.Largest(summary.TopN, summary.LeavesOnly)

	if summary.LeavesOnly {
		fmt.Fprintln(w, "\nTop files:\t\t")
	} else {
		fmt.Fprintln(w, "\nTop entries:\t\t")
	}

	for i := len(top) - 1; i >= 0; i-- {
		node := top[i]

		pct := 0.0
		if total > 0 {
			pct = 100.0 * float64(node.Size) / float64(total)
		}

		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n", i+1, node.ID, tree.HumanReadable(node.Size), pct)
	}

	leaves := 0

	for _, node := range summary.Tree.Nodes() {
		if node.Leaf {
			leaves++
		}
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total entries:\t%s\n", humanize.Comma(int64(summary.Tree.Len())))
	fmt.Fprintf(w, "Total files:\t%s\n", humanize.Comma(int64(leaves)))
	fmt.Fprintf(w, "Total size:\t%s (%s bytes)\n", tree.HumanReadable(total), humanize.Comma(total))

	fmt.Fprintf(w, "\nElapsed:\t%v\n", summary.Elapsed)

	return w.Flush()
}

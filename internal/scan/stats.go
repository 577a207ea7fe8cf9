package scan

import (
	"sort"
	"sync"
	"time"

	"github.com/idelchi/dendo/internal/tree"
)

// Result holds the records and counters of a directory walk.
type Result struct {
	// Records contains one entry per included file, sorted by path.
	Records []tree.Record `json:"records"`
	// FileCount is the number of included files.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all included files.
	TotalBytes int64 `json:"total_bytes"`
	// ErrorCount is the number of entries that could not be read.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the total time taken by the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a directory walk.
type Options struct {
	// Path is the directory to walk.
	Path string
	// Extensions to include (empty = all). A '!' prefix excludes.
	Extensions []string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// collector gathers records from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu         sync.Mutex
	records    []tree.Record
	fileCount  int64
	totalBytes int64
	errorCount int64
}

// addError increments the error counter. This operation is protected by a mutex
// since fastwalk calls the callback from multiple goroutines concurrently.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}

// add records a file.
func (c *collector) add(path string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileCount++
	c.totalBytes += size
	c.records = append(c.records, tree.Record{Path: path, Size: size})
}

// progress returns the current file and byte counters.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// finalize produces the Result with records in path order, so that repeated
// walks of the same tree yield identical output.
func (c *collector) finalize() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]tree.Record, len(c.records))
	copy(records, c.records)

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	return &Result{
		Records:    records,
		FileCount:  c.fileCount,
		TotalBytes: c.totalBytes,
		ErrorCount: c.errorCount,
	}
}

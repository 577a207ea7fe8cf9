package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/idelchi/dendo/internal/debug"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// shouldIncludeByExtension checks if file should be included based on extension filters.
// Returns true if file should be included, false if excluded.
func shouldIncludeByExtension(path string, include, exclude map[string]struct{}) bool {
	// Check excludes first
	for ext := range exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	// If no include filter, include all
	if len(include) == 0 {
		return true
	}
	// Check includes
	for ext := range include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// splitExtensions sorts extension filters into include and exclude sets.
func splitExtensions(extensions []string) (map[string]struct{}, map[string]struct{}) {
	include := make(map[string]struct{}, len(extensions))
	exclude := make(map[string]struct{}, len(extensions))

	for _, e := range extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(e, "'\"")

		if strings.HasPrefix(e, "!") {
			exclude[strings.TrimPrefix(e, "!")] = struct{}{}
		} else {
			include[e] = struct{}{}
		}
	}

	return include, exclude
}

// rootName returns the label under which all records of root are placed.
// It is empty when root has no meaningful base name, such as "/".
func rootName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}

	return name
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run walks the directory at opt.Path and returns one record per regular
// file. Record paths use '/' as separator, are relative to opt.Path and are
// prefixed with the directory's base name, so the records share a single
// top-level prefix.
//
// Files are filtered by opt.Excludes, opt.Extensions, opt.MinSize and
// opt.Depth. Entries that cannot be read are counted and skipped.
//
// The walk operation can be cancelled via ctx. Progress updates are sent
// to progressHook if provided.
//
//nolint:gocognit,funlen // Walk callback carries all filters.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Result, error) {
	log := debug.New(opt.Debug)

	if opt.Path == "" {
		opt.Path = "."
	}

	// filepath.Clean handles both separators and converts to native format
	opt.Path = filepath.Clean(opt.Path)

	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	extInclude, extExclude := splitExtensions(opt.Extensions)

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	prefix := rootName(opt.Path)

	log.Printf("scanning %s as %q\n", opt.Path, prefix)

	if log.Enabled() {
		for ext := range extInclude {
			log.Printf("include extension: %s\n", ext)
		}

		for ext := range extExclude {
			log.Printf("exclude extension: %s\n", ext)
		}

		for _, re := range excludeRegexes {
			log.Printf("exclude regex: %s\n", re.String())
		}
	}

	collector := &collector{}

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("error accessing path %s: %v\n", path, err)
			collector.addError()

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		currentDepth := calculateDepth(path, opt.Path)
		if opt.Depth > 0 && currentDepth > opt.Depth {
			if d.IsDir() {
				log.Printf("skipping directory (beyond depth %d): %s\n", opt.Depth, path)

				return filepath.SkipDir
			}

			return nil
		}

		if matchedPattern := shouldExcludeByPattern(path, excludeRegexes); matchedPattern != nil {
			log.Printf("excluding %s (matched %s)\n", filepath.ToSlash(path), matchedPattern.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			collector.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		if fileInfo.Size() < opt.MinSize {
			return nil
		}

		if !shouldIncludeByExtension(path, extInclude, extExclude) {
			return nil
		}

		rel, err := filepath.Rel(opt.Path, path)
		if err != nil {
			collector.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		record := filepath.ToSlash(rel)
		if prefix != "" {
			record = prefix + "/" + record
		}

		collector.add(record, fileInfo.Size())

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	result := collector.finalize()
	result.Elapsed = time.Since(start)

	log.Printf("scanned %d files (%d errors) in %v\n", result.FileCount, result.ErrorCount, result.Elapsed)

	return result, nil
}

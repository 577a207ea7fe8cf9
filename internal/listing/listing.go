// Package listing reads and writes delimited path/size listings.
package listing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/idelchi/dendo/internal/tree"
)

const (
	// DefaultPathColumn is the header of the path column.
	DefaultPathColumn = "Filepath"
	// DefaultSizeColumn is the header of the byte size column.
	DefaultSizeColumn = "Bytes"
	// DefaultDelimiter is the field delimiter.
	DefaultDelimiter = ','
)

// Options configures the listing format.
type Options struct {
	// PathColumn is the header name of the path column.
	PathColumn string
	// SizeColumn is the header name of the size column.
	SizeColumn string
	// Delimiter separates fields.
	Delimiter rune
}

func (o Options) withDefaults() Options {
	if o.PathColumn == "" {
		o.PathColumn = DefaultPathColumn
	}

	if o.SizeColumn == "" {
		o.SizeColumn = DefaultSizeColumn
	}

	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}

	return o
}

// ParseDelimiter converts a delimiter flag value into a rune.
// "\t" and "tab" both select a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case `\t`, "tab":
		return '\t', nil
	}

	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q: must be a single character", s)
	}

	r, _ := utf8.DecodeRuneInString(s)

	return r, nil
}

// Read parses a listing with a header row into records.
//
// Header names are trimmed of surrounding whitespace and a leading byte order
// mark. Quotes inside unquoted fields are taken literally. The path and size columns
// must each appear exactly once; other columns are ignored. Sizes must be
// non-negative integers. Any violation wraps tree.ErrMalformedInput and names
// the offending line.
func Read(r io.Reader, opts Options) ([]tree.Record, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", tree.ErrMalformedInput)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", tree.ErrMalformedInput, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	pathIdx, err := column(header, opts.PathColumn)
	if err != nil {
		return nil, err
	}

	sizeIdx, err := column(header, opts.SizeColumn)
	if err != nil {
		return nil, err
	}

	var records []tree.Record

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", tree.ErrMalformedInput, err)
		}

		line, _ := reader.FieldPos(0)

		if pathIdx >= len(row) || sizeIdx >= len(row) {
			return nil, fmt.Errorf("line %d: %w: expected at least %d fields, got %d",
				line, tree.ErrMalformedInput, max(pathIdx, sizeIdx)+1, len(row))
		}

		field := strings.TrimSpace(row[sizeIdx])

		size, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: size %q is not an integer", line, tree.ErrMalformedInput, field)
		}

		if size < 0 {
			return nil, fmt.Errorf("line %d: %w: negative size %d", line, tree.ErrMalformedInput, size)
		}

		records = append(records, tree.Record{Path: row[pathIdx], Size: size})
	}

	return records, nil
}

// column returns the index of the header named name.
func column(header []string, name string) (int, error) {
	idx := -1

	for i, h := range header {
		if strings.TrimSpace(h) != name {
			continue
		}

		if idx >= 0 {
			return 0, fmt.Errorf("%w: duplicate column %q", tree.ErrMalformedInput, name)
		}

		idx = i
	}

	if idx < 0 {
		return 0, fmt.Errorf("%w: missing column %q", tree.ErrMalformedInput, name)
	}

	return idx, nil
}

// Write emits records as a listing that Read accepts with the same options.
func Write(w io.Writer, records []tree.Record, opts Options) error {
	opts = opts.withDefaults()

	writer := csv.NewWriter(w)
	writer.Comma = opts.Delimiter

	if err := writer.Write([]string{opts.PathColumn, opts.SizeColumn}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write([]string{record.Path, strconv.FormatInt(record.Size, 10)}); err != nil {
			return fmt.Errorf("writing %q: %w", record.Path, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

package tree

import "errors"

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrEmptyPath      = errors.New("empty path")
	ErrNotFound       = errors.New("node not found")
)

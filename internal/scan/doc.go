// Package scan produces path/size records by walking a directory tree.
//
// It walks directory trees using fastwalk for parallel traversal, applies
// exclusion, extension, size and depth filters, and returns one record per
// regular file, ready to be aggregated like a listing file.
package scan

// Package tree aggregates flat (path, size) records into a hierarchy of
// path prefixes.
//
// Every prefix of every input path becomes exactly one Node whose size is
// the sum of all records at or below it. The result is an immutable Tree
// that keeps nodes in order of first encounter and indexes them for exact
// lookups, subtree extraction and size ranking.
package tree

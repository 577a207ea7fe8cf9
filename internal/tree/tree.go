package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/armon/go-radix"
	"github.com/google/btree"
)

// DefaultSeparator is the path segment delimiter used when none is given.
const DefaultSeparator = "/"

// rankingDegree is the btree degree of the size ranking index.
const rankingDegree = 16

// Record is a single input row: a path and its size in bytes.
type Record struct {
	// Path is the separator-delimited file path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Node is one aggregated path prefix.
type Node struct {
	// ID is the full prefix, the path truncated to Depth segments.
	ID string `json:"id"`
	// Parent is the ID of the enclosing prefix, empty for top-level nodes.
	Parent string `json:"parent"`
	// Label is the last segment of ID.
	Label string `json:"label"`
	// Size is the cumulative size of all records at or below this prefix.
	Size int64 `json:"size"`
	// Depth is the number of segments in ID, 1 for top-level nodes.
	Depth int `json:"depth"`
	// Leaf indicates that no other node has this node as its parent.
	Leaf bool `json:"leaf"`
}

// Tree is the immutable result of an aggregation.
type Tree struct {
	separator string
	nodes     []Node
	// index maps a node ID to its position in nodes.
	index    *radix.Tree
	children map[string][]int
	ranking  *btree.BTreeG[Node]
}

// Aggregate walks every record's path segments and accumulates its size into
// each prefix. Nodes are kept in order of first encounter.
//
// An empty separator selects DefaultSeparator. Empty segments from doubled or
// trailing separators are dropped; a leading separator becomes a top-level
// node of its own. A negative size yields ErrMalformedInput and a path without
// segments yields ErrEmptyPath; either aborts the whole aggregation.
func Aggregate(records []Record, separator string) (*Tree, error) {
	if separator == "" {
		separator = DefaultSeparator
	}

	position := make(map[string]int)
	nodes := make([]Node, 0, len(records))

	for i, record := range records {
		if record.Size < 0 {
			return nil, fmt.Errorf("record %d (%q): %w: negative size %d", i+1, record.Path, ErrMalformedInput, record.Size)
		}

		segments := split(record.Path, separator)
		if len(segments) == 0 {
			return nil, fmt.Errorf("record %d: %w", i+1, ErrEmptyPath)
		}

		parent := ""

		for depth, segment := range segments {
			id := join(parent, segment, separator)

			pos, ok := position[id]
			if !ok {
				pos = len(nodes)
				position[id] = pos
				nodes = append(nodes, Node{
					ID:     id,
					Parent: parent,
					Label:  segment,
					Depth:  depth + 1,
				})
			}

			nodes[pos].Size += record.Size
			parent = id
		}
	}

	return freeze(nodes, separator), nil
}

// split breaks path into its non-empty segments. A leading separator is
// returned as the first segment.
func split(path, separator string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	segments := make([]string, 0, strings.Count(path, separator)+1)

	if strings.HasPrefix(path, separator) {
		segments = append(segments, separator)
	}

	for _, segment := range strings.Split(path, separator) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	if len(segments) == 1 && segments[0] == separator {
		return nil
	}

	return segments
}

// join appends segment to the parent prefix.
func join(parent, segment, separator string) string {
	switch parent {
	case "":
		return segment
	case separator:
		return separator + segment
	default:
		return parent + separator + segment
	}
}

// freeze takes ownership of nodes and builds the lookup indexes.
func freeze(nodes []Node, separator string) *Tree {
	t := &Tree{
		separator: separator,
		nodes:     nodes,
		index:     radix.New(),
		children:  make(map[string][]int),
		ranking: btree.NewG(rankingDegree, func(a, b Node) bool {
			if a.Size != b.Size {
				return a.Size < b.Size
			}

			return a.ID > b.ID
		}),
	}

	for pos, node := range nodes {
		t.index.Insert(node.ID, pos)
		t.children[node.Parent] = append(t.children[node.Parent], pos)
	}

	for pos := range t.nodes {
		_, hasChildren := t.children[t.nodes[pos].ID]
		t.nodes[pos].Leaf = !hasChildren
		t.ranking.ReplaceOrInsert(t.nodes[pos])
	}

	return t
}

// Separator returns the segment delimiter the tree was built with.
func (t *Tree) Separator() string {
	return t.separator
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nodes returns a copy of all nodes in order of first encounter.
func (t *Tree) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)

	return out
}

// Node looks up a node by its ID.
func (t *Tree) Node(id string) (Node, bool) {
	value, ok := t.index.Get(id)
	if !ok {
		return Node{}, false
	}

	return t.nodes[value.(int)], true //nolint:forcetypeassert // Index only holds positions
}

// Children returns the direct children of id. The empty ID selects the
// top-level nodes.
func (t *Tree) Children(id string) []Node {
	positions := t.children[id]

	out := make([]Node, 0, len(positions))
	for _, pos := range positions {
		out = append(out, t.nodes[pos])
	}

	return out
}

// Total returns the combined size of the top-level nodes, which equals the
// sum of all input sizes.
func (t *Tree) Total() int64 {
	var total int64

	for _, pos := range t.children[""] {
		total += t.nodes[pos].Size
	}

	return total
}

// Subtree returns a new tree holding the node id and all of its descendants.
// The selected node becomes top-level and depths are rebased onto it; IDs are
// left untouched.
func (t *Tree) Subtree(id string) (*Tree, error) {
	value, ok := t.index.Get(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	root := value.(int) //nolint:forcetypeassert // Index only holds positions
	positions := []int{root}

	t.index.WalkPrefix(join(id, "", t.separator), func(key string, value any) bool {
		if key != id {
			positions = append(positions, value.(int)) //nolint:forcetypeassert // Index only holds positions
		}

		return false
	})

	sort.Ints(positions)

	offset := t.nodes[root].Depth - 1
	nodes := make([]Node, 0, len(positions))

	for _, pos := range positions {
		node := t.nodes[pos]
		node.Depth -= offset

		if pos == root {
			node.Parent = ""
		}

		nodes = append(nodes, node)
	}

	return freeze(nodes, t.separator), nil
}

// Largest returns up to n nodes ordered by descending size, ties broken by
// ascending ID. With leavesOnly set, only leaf nodes are considered. A
// non-positive n returns every matching node.
func (t *Tree) Largest(n int, leavesOnly bool) []Node {
	var out []Node

	t.ranking.Descend(func(node Node) bool {
		if leavesOnly && !node.Leaf {
			return true
		}

		out = append(out, node)

		return n <= 0 || len(out) < n
	})

	return out
}

package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idelchi/dendo/internal/tree"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
}

func fixture(t *testing.T) (string, string) {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "a/b/file1.go", 100)
	writeFile(t, root, "a/b/file2.log", 50)
	writeFile(t, root, "a/c/file3.go", 10)
	writeFile(t, root, ".git/objects/pack", 5000)
	writeFile(t, root, "top.txt", 1)

	return root, filepath.Base(root)
}

func TestRun(t *testing.T) {
	root, name := fixture(t)

	result, err := Run(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Equal(t, []tree.Record{
		{Path: name + "/.git/objects/pack", Size: 5000},
		{Path: name + "/a/b/file1.go", Size: 100},
		{Path: name + "/a/b/file2.log", Size: 50},
		{Path: name + "/a/c/file3.go", Size: 10},
		{Path: name + "/top.txt", Size: 1},
	}, result.Records)
	require.Equal(t, int64(5), result.FileCount)
	require.Equal(t, int64(5161), result.TotalBytes)
	require.Zero(t, result.ErrorCount)
}

func TestRun_Filters(t *testing.T) {
	root, name := fixture(t)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "exclude regex",
			opts: Options{Excludes: []string{`.*\.git/.*`}},
			want: []string{"/a/b/file1.go", "/a/b/file2.log", "/a/c/file3.go", "/top.txt"},
		},
		{
			name: "extension include",
			opts: Options{Extensions: []string{".go"}},
			want: []string{"/a/b/file1.go", "/a/c/file3.go"},
		},
		{
			name: "extension exclude",
			opts: Options{Extensions: []string{"!.go", "!pack"}},
			want: []string{"/a/b/file2.log", "/top.txt"},
		},
		{
			name: "min size",
			opts: Options{MinSize: 50},
			want: []string{"/.git/objects/pack", "/a/b/file1.go", "/a/b/file2.log"},
		},
		{
			name: "depth",
			opts: Options{Depth: 1},
			want: []string{"/top.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Path = root

			result, err := Run(context.Background(), tt.opts, nil)
			require.NoError(t, err)

			got := make([]string, 0, len(result.Records))
			for _, record := range result.Records {
				got = append(got, record.Path[len(name):])
			}

			require.Equal(t, tt.want, got)
		})
	}
}

func TestRun_FeedsAggregate(t *testing.T) {
	root, name := fixture(t)

	result, err := Run(context.Background(), Options{Path: root, Excludes: []string{`.*\.git/.*`}}, nil)
	require.NoError(t, err)

	aggregated, err := tree.Aggregate(result.Records, "/")
	require.NoError(t, err)

	top := aggregated.Children("")
	require.Len(t, top, 1)
	require.Equal(t, name, top[0].ID)
	require.Equal(t, int64(161), top[0].Size)

	node, ok := aggregated.Node(name + "/a/b")
	require.True(t, ok)
	require.Equal(t, int64(150), node.Size)
}

func TestRun_Errors(t *testing.T) {
	root, _ := fixture(t)

	_, err := Run(context.Background(), Options{Path: filepath.Join(root, "missing")}, nil)
	require.Error(t, err)

	_, err = Run(context.Background(), Options{Path: filepath.Join(root, "top.txt")}, nil)
	require.ErrorContains(t, err, "is not a directory")

	_, err = Run(context.Background(), Options{Path: root, Excludes: []string{"("}}, nil)
	require.ErrorContains(t, err, "compiling exclusion pattern")
}

func TestRun_Cancelled(t *testing.T) {
	root, _ := fixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Path: root}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCalculateDepth(t *testing.T) {
	sep := string(filepath.Separator)

	require.Equal(t, 0, calculateDepth("root", "root"))
	require.Equal(t, 1, calculateDepth("root"+sep+"a", "root"))
	require.Equal(t, 3, calculateDepth("root"+sep+"a"+sep+"b"+sep+"c", "root"))
}

func TestRootName(t *testing.T) {
	require.Equal(t, "project", rootName(filepath.Join("some", "project")))
	require.Empty(t, rootName(string(filepath.Separator)))
}

type progressCalls struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (p *progressCalls) hook(files, bytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, [2]int64{files, bytes})
}

func (p *progressCalls) snapshot() [][2]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][2]int64, len(p.calls))
	copy(out, p.calls)

	return out
}

func TestStartProgressReporter(t *testing.T) {
	c := &collector{}
	c.add("a/b", 7)
	c.add("a/c", 5)

	var calls progressCalls

	ctx, cancel := context.WithCancel(context.Background())
	startProgressReporter(ctx, c, calls.hook, time.Millisecond)

	require.Eventually(t, func() bool {
		return len(calls.snapshot()) >= 2
	}, time.Second, time.Millisecond)

	require.Equal(t, [2]int64{2, 12}, calls.snapshot()[0])

	cancel()

	// One tick may still be in flight when ctx is cancelled.
	time.Sleep(20 * time.Millisecond)
	stopped := len(calls.snapshot())
	time.Sleep(20 * time.Millisecond)
	require.Len(t, calls.snapshot(), stopped)
}

func TestStartProgressReporter_CancelledContext(t *testing.T) {
	var calls progressCalls

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	startProgressReporter(ctx, &collector{}, calls.hook, time.Hour)
	startProgressReporter(context.Background(), &collector{}, nil, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	require.Empty(t, calls.snapshot())
}

func TestRun_Progress(t *testing.T) {
	root, _ := fixture(t)

	for i := 0; i < 200; i++ {
		writeFile(t, root, filepath.Join("bulk", string(rune('a'+i%26)), time.Duration(i).String()), 1)
	}

	var calls progressCalls

	result, err := Run(context.Background(), Options{Path: root, ProgressInterval: time.Millisecond}, calls.hook)
	require.NoError(t, err)

	// The walk may finish before the first tick; every reported value must be
	// a partial count of the final result.
	var prev [2]int64

	for _, call := range calls.snapshot() {
		require.GreaterOrEqual(t, call[0], prev[0])
		require.GreaterOrEqual(t, call[1], prev[1])
		require.LessOrEqual(t, call[0], result.FileCount)
		require.LessOrEqual(t, call[1], result.TotalBytes)

		prev = call
	}

	require.Equal(t, int64(205), result.FileCount)
}

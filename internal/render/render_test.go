package render_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idelchi/dendo/internal/render"
	"github.com/idelchi/dendo/internal/tree"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func sample(t *testing.T) *tree.Tree {
	t.Helper()

	result, err := tree.Aggregate([]tree.Record{
		{Path: "a/b/file1", Size: 100},
		{Path: "a/b/file2", Size: 1536},
	}, "")
	require.NoError(t, err)

	return result
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, render.HTML(&buf, sample(t), render.Options{}))

	out := buf.String()
	require.Contains(t, out, "<title>"+render.DefaultTitle+"</title>")
	require.Contains(t, out, `src="`+render.DefaultScriptURL+`"`)
	require.Contains(t, out, `"a/b/file1"`)
	require.Contains(t, out, `"1.50 KB"`)
	require.Contains(t, out, "1636")
	require.Contains(t, out, `branchvalues: "total"`)
	require.Regexp(t, `maxdepth:\s*-1\s*,`, out)
	require.Contains(t, out, `\u003cb\u003e%{label}`)
}

func TestHTML_Options(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, render.HTML(&buf, sample(t), render.Options{
		Title:     "Disk <usage>",
		MaxDepth:  2,
		ScriptURL: "https://example.com/plotly.js",
	}))

	out := buf.String()
	require.Contains(t, out, "<title>Disk &lt;usage&gt;</title>")
	require.Contains(t, out, `src="https://example.com/plotly.js"`)
	require.Regexp(t, `maxdepth:\s*2\s*,`, out)
}

func TestHTML_WriteError(t *testing.T) {
	err := render.HTML(failingWriter{}, sample(t), render.Options{})
	require.ErrorContains(t, err, "disk full")
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treediff/treediff/internal/diff"
)

// writeDir materializes files under root on the real filesystem.
func writeDir(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// memTree builds an in-memory tree for driving run directly.
func memTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/", 0o755))
	for p, content := range files {
		require.NoError(t, util.WriteFile(fs, path.Join("/", p), []byte(content), 0o644))
	}
	return fs
}

// failFS fails ReadDir for one path.
type failFS struct {
	billy.Filesystem
	failPath string
}

func (f *failFS) ReadDir(p string) ([]os.FileInfo, error) {
	if path.Clean(p) == f.failPath {
		return nil, errors.New("boom")
	}
	return f.Filesystem.ReadDir(p)
}

func TestRunTable(t *testing.T) {
	disableColor(t)

	left := t.TempDir()
	right := t.TempDir()
	writeDir(t, left, map[string]string{
		"project-1/README.txt": "docs",
		"project-2/README.txt": "stuff",
		"project-3/README.txt": "old",
	})
	writeDir(t, right, map[string]string{
		"project-1/README.txt":         "docs",
		"project-2/SOMETHING-ELSE.txt": "stuff",
		"project-4/README.txt":         "new",
	})

	cfg := &Config{Left: left, Right: right, Depth: 1}
	require.NoError(t, cfg.Validate())

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Contains(t, lines[0], "-------")
	assert.Contains(t, lines[0], left)
	assert.Contains(t, lines[0], right)

	assert.Contains(t, lines[1], markerMatches)
	assert.Contains(t, lines[1], filepath.Join(left, "project-1"))
	assert.Contains(t, lines[1], filepath.Join(right, "project-1"))

	assert.Contains(t, lines[2], markerDiffers)
	assert.Contains(t, lines[2], filepath.Join(left, "project-2"))

	assert.Contains(t, lines[3], markerLeftOnly)
	assert.Contains(t, lines[3], filepath.Join(left, "project-3"))
	assert.NotContains(t, lines[3], "project-4")

	assert.Contains(t, lines[4], markerRightOnly)
	assert.Contains(t, lines[4], filepath.Join(right, "project-4"))
}

func TestRunJSON(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeDir(t, left, map[string]string{"p1/f.txt": "same", "p2/f.txt": "mine"})
	writeDir(t, right, map[string]string{"p1/f.txt": "same", "p3/f.txt": "theirs"})

	cfg := &Config{Left: left, Right: right, Depth: 1, JSON: true}
	require.NoError(t, cfg.Validate())

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var results []diff.TreeDiff
	for _, line := range lines {
		var td diff.TreeDiff
		require.NoError(t, sonic.Unmarshal([]byte(line), &td))
		results = append(results, td)
	}

	want := []diff.TreeDiff{
		{Status: diff.StatusMatches, Left: filepath.Join(left, "p1"), Right: filepath.Join(right, "p1")},
		{Status: diff.StatusLeftOnly, Left: filepath.Join(left, "p2")},
		{Status: diff.StatusRightOnly, Right: filepath.Join(right, "p3")},
	}
	assert.Equal(t, want, results)
}

func TestRunAbortsOnScanError(t *testing.T) {
	disableColor(t)

	tree := map[string]string{"a/f": "1", "b/f": "2", "c/f": "3"}
	left := memTree(t, tree)
	right := &failFS{Filesystem: memTree(t, tree), failPath: "/b"}

	cfg := &Config{Left: "L", Right: "R", Depth: 1}
	var buf bytes.Buffer
	err := run(context.Background(), cfg, left, right, &buf)
	require.Error(t, err)
	assert.ErrorContains(t, err, "right")

	out := buf.String()
	assert.Contains(t, out, markerMatches)
	assert.Contains(t, out, "ERROR: Encountered an error while scanning directories:")
	assert.Contains(t, out, "Aborting directory scan.")
	assert.NotContains(t, out, "L/c")
}

func TestRunUnreadableRootFailsBeforeOutput(t *testing.T) {
	left := memTree(t, map[string]string{"a/f": "1"})
	right := &failFS{Filesystem: memTree(t, nil), failPath: "/"}

	cfg := &Config{Left: "L", Right: "R", Depth: 1}
	var buf bytes.Buffer
	err := run(context.Background(), cfg, left, right, &buf)
	require.Error(t, err)
	assert.ErrorContains(t, err, "right")
	assert.Empty(t, buf.String())
}

func TestRunCanceledContext(t *testing.T) {
	tree := map[string]string{"a/f": "1"}
	cfg := &Config{Left: "L", Right: "R", Depth: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := run(ctx, cfg, memTree(t, tree), memTree(t, tree), &buf)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunExcludes(t *testing.T) {
	disableColor(t)

	left := memTree(t, map[string]string{"p1/f": "x"})
	right := memTree(t, map[string]string{"p1/f": "x", "tmp/junk": "y"})

	cfg := &Config{Left: "L", Right: "R", Depth: 1, Excludes: []string{"tmp"}}
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, left, right, &buf))

	out := buf.String()
	assert.Contains(t, out, markerMatches)
	assert.NotContains(t, out, "tmp")
}

func TestRunBadExcludePattern(t *testing.T) {
	cfg := &Config{Left: "L", Right: "R", Depth: 1, Excludes: []string{"[oops"}}
	var buf bytes.Buffer
	err := run(context.Background(), cfg, memTree(t, nil), memTree(t, nil), &buf)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestColumnWidth(t *testing.T) {
	fs := memTree(t, map[string]string{"alpha/f": "", "bb": ""})

	w, err := columnWidth(fs, "base", 1)
	require.NoError(t, err)
	assert.Equal(t, len("base/alpha"), w)

	w, err = columnWidth(fs, "base", 2)
	require.NoError(t, err)
	assert.Equal(t, len("base/alpha/f"), w)
}

func TestDisplayDiff(t *testing.T) {
	cfg := &Config{Left: "./backup", Right: "./live"}

	got := cfg.displayDiff(diff.TreeDiff{Status: diff.StatusMatches, Left: "p1", Right: "p1"})
	assert.Equal(t, filepath.Join("backup", "p1"), got.Left)
	assert.Equal(t, filepath.Join("live", "p1"), got.Right)

	got = cfg.displayDiff(diff.TreeDiff{Status: diff.StatusRightOnly, Right: "p4"})
	assert.Empty(t, got.Left)
	assert.Equal(t, filepath.Join("live", "p4"), got.Right)
}

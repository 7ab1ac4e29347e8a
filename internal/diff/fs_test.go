package diff

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// fixtureFS builds an in-memory tree. Keys are slash paths from the root
// mapped to file contents; a key with a trailing slash creates an empty
// directory.
func fixtureFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/", 0o755))
	for p, content := range files {
		if strings.HasSuffix(p, "/") {
			require.NoError(t, fs.MkdirAll(path.Join("/", p), 0o755))
			continue
		}
		require.NoError(t, util.WriteFile(fs, path.Join("/", p), []byte(content), 0o644))
	}
	return fs
}

// hookFS wraps a filesystem to fail selected calls and record opens.
type hookFS struct {
	billy.Filesystem
	readDirErr map[string]error
	openErr    map[string]error
	opened     []string
}

func (h *hookFS) ReadDir(p string) ([]os.FileInfo, error) {
	if err, ok := h.readDirErr[path.Clean(p)]; ok {
		return nil, err
	}
	return h.Filesystem.ReadDir(p)
}

func (h *hookFS) Open(p string) (billy.File, error) {
	h.opened = append(h.opened, path.Clean(p))
	if err, ok := h.openErr[path.Clean(p)]; ok {
		return nil, err
	}
	return h.Filesystem.Open(p)
}

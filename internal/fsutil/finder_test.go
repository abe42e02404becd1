package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.hcl", "b.txt", "nested/c.hcl", "nested/d.yaml", "nested/deeper/e.yml"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	t.Run("single extension", func(t *testing.T) {
		files, err := FindFilesByExtension(root, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "a.hcl"),
			filepath.Join(root, "nested", "c.hcl"),
		}, files)
	})

	t.Run("several extensions", func(t *testing.T) {
		files, err := FindFilesByExtension(root, ".yaml", ".yml")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "nested", "d.yaml"),
			filepath.Join(root, "nested", "deeper", "e.yml"),
		}, files)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(root, "nope"), ".hcl")
		assert.Error(t, err)
	})

	t.Run("empty extension panics", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
		assert.Panics(t, func() { _, _ = FindFilesByExtension(root) })
	})
}

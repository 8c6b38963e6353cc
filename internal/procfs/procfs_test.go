package procfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFS_ReadFileJoinsRootAndRelativePath(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(root, "cgroup"), []byte("42:name=systemd:/\n"), 0o644))

	fs := FS{Root: root}
	data, err := fs.ReadFile("cgroup")

	assert.NoError(t, err)
	assert.Contains(t, string(data), "systemd")
}

func TestFS_ReadFileMissingReturnsError(t *testing.T) {
	fs := FS{Root: t.TempDir()}
	_, err := fs.ReadFile("does-not-exist")
	assert.Error(t, err)
}

package procfs

import (
	"os"
	"path/filepath"
)

// FS is a very small helper around a procfs mount point.
//
// We keep it intentionally minimal:
// - reading `/proc/<pid>/cgroup` for container-id resolution
//
// This abstraction makes it easy to test against a fixture directory by
// pointing --path.procfs at something other than /proc.
type FS struct {
	Root string
}

func (fs FS) Path(rel string) string {
	return filepath.Join(fs.Root, rel)
}

func (fs FS) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(fs.Path(rel))
}


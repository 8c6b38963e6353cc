package container

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/events"
	"netconnd/internal/procfs"
)

func TestProcfsResolver_ExtractsDockerContainerID(t *testing.T) {
	root := t.TempDir()
	id := "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
	writeCgroup(t, root, 1234, "12:devices:/kubepods.slice/kubepods-burstable.slice/docker-"+id+".scope")

	r := NewProcfsResolver(procfs.FS{Root: root})
	got, ok := r.ContainerID(events.Event{Thread: events.ThreadInfo{PID: 1234}})

	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestProcfsResolver_NoMatchWhenCgroupHasNoContainerID(t *testing.T) {
	root := t.TempDir()
	writeCgroup(t, root, 1, "0::/init.scope")

	r := NewProcfsResolver(procfs.FS{Root: root})
	_, ok := r.ContainerID(events.Event{Thread: events.ThreadInfo{PID: 1}})

	assert.False(t, ok)
}

func TestProcfsResolver_RejectsNonPositivePID(t *testing.T) {
	r := NewProcfsResolver(procfs.FS{Root: t.TempDir()})
	_, ok := r.ContainerID(events.Event{Thread: events.ThreadInfo{PID: 0}})
	assert.False(t, ok)
}

func TestStaticResolver(t *testing.T) {
	id, ok := StaticResolver{ID: "fixed"}.ContainerID(events.Event{})
	assert.True(t, ok)
	assert.Equal(t, "fixed", id)

	_, ok = StaticResolver{}.ContainerID(events.Event{})
	assert.False(t, ok)
}

func writeCgroup(t *testing.T, root string, pid int, content string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	assert.NoError(t, os.MkdirAll(dir, 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "cgroup"), []byte(content), 0o644))
}

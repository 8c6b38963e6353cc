// Package container implements the ContainerResolver contract (spec.md
// §6): ContainerID(event) -> string|none. The kernel probe may already
// stamp an event with a container id (events.ThreadInfo.HasContainerID);
// this package is the fallback path used when it hasn't, resolving from
// /proc/<pid>/cgroup the way the teacher's procfs.FS reads
// /proc/net/nf_conntrack — same abstraction, different relative path.
package container

import (
	"fmt"
	"regexp"

	"netconnd/internal/events"
	"netconnd/internal/procfs"
)

// Resolver is the ContainerResolver contract.
type Resolver interface {
	ContainerID(ev events.Event) (string, bool)
}

// containerIDPattern matches the 64-hex-character container id segment
// that docker/containerd/cri-o all place somewhere in a cgroup path, e.g.
// "...kubepods.slice/.../docker-<64 hex>.scope" or
// "...cri-containerd-<64 hex>.scope".
var containerIDPattern = regexp.MustCompile(`[0-9a-f]{64}`)

// ProcfsResolver resolves a container id by reading the target process's
// cgroup membership out of procfs.
type ProcfsResolver struct {
	fs procfs.FS
}

func NewProcfsResolver(fs procfs.FS) *ProcfsResolver {
	return &ProcfsResolver{fs: fs}
}

func (r *ProcfsResolver) ContainerID(ev events.Event) (string, bool) {
	if ev.Thread.PID <= 0 {
		return "", false
	}

	rel := fmt.Sprintf("%d/cgroup", ev.Thread.PID)
	data, err := r.fs.ReadFile(rel)
	if err != nil {
		return "", false
	}

	if m := containerIDPattern.FindString(string(data)); m != "" {
		return m, true
	}
	return "", false
}

// StaticResolver always returns the same id (or none when ID is empty).
// Used in tests; the daemon itself wires only ProcfsResolver.
type StaticResolver struct {
	ID string
}

func (r StaticResolver) ContainerID(ev events.Event) (string, bool) {
	if r.ID == "" {
		return "", false
	}
	return r.ID, true
}

package events

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/connection"
)

func TestJSONLSource_ParsesWireEvent(t *testing.T) {
	tape := `{"type":"accept<","ts_micros":100,"fd_kind":"ipv4","fd_role":"server","fd_proto":"tcp","src_ip":"10.0.0.1","src_port":8080,"dst_ip":"10.0.0.2","dst_port":51000,"syscall_return":0,"pid":42,"comm":"nginx","container_id":"c1"}
`
	src := NewJSONLSource(strings.NewReader(tape))

	ev, err := src.Next(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, "accept<", ev.Type)
	assert.True(t, ev.HasFD)
	assert.Equal(t, connection.RoleServer, ev.FD.Role)
	assert.Equal(t, connection.ProtoTCP, ev.FD.Proto)
	assert.True(t, ev.HasSyscallReturn)
	assert.EqualValues(t, 0, ev.SyscallReturn)
	assert.True(t, ev.Thread.HasContainerID)
	assert.Equal(t, "c1", ev.Thread.ContainerID)
	assert.Equal(t, 42, ev.Thread.PID)
}

func TestJSONLSource_SkipsBlankLines(t *testing.T) {
	tape := "\n{\"type\":\"execve<\",\"ts_micros\":1}\n\n"
	src := NewJSONLSource(strings.NewReader(tape))

	ev, err := src.Next(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "execve<", ev.Type)
}

func TestJSONLSource_ReturnsEndOfStream(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(""))

	_, err := src.Next(context.Background())
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestJSONLSource_RespectsCancelledContext(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(`{"type":"accept<"}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	assert.Error(t, err)
}

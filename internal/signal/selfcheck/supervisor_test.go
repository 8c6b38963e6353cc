package selfcheck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/events"
)

func TestSupervisor_AwaitSucceedsOnceBothObserved(t *testing.T) {
	process := NewProcessHandler(Identity{Comm: "probe-check"}, time.Second)
	netHandler := NewNetworkHandler(Identity{Comm: "probe-check"}, time.Second)
	sup := NewSupervisor(process, netHandler)

	go func() {
		time.Sleep(10 * time.Millisecond)
		process.HandleSignal(context.Background(), events.Event{Type: "execve<", Thread: events.ThreadInfo{Comm: "probe-check"}})
		netHandler.HandleSignal(context.Background(), events.Event{Type: "connect<", Thread: events.ThreadInfo{Comm: "probe-check"}})
	}()

	assert.NoError(t, sup.Await())
}

func TestSupervisor_AwaitFailsOnTimeout(t *testing.T) {
	process := NewProcessHandler(Identity{Comm: "probe-check"}, 10*time.Millisecond)
	netHandler := NewNetworkHandler(Identity{Comm: "probe-check"}, 10*time.Millisecond)
	sup := NewSupervisor(process, netHandler)

	assert.Error(t, sup.Await())
}

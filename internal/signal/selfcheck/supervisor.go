package selfcheck

import (
	"fmt"
	"time"
)

// Supervisor polls both self-check handlers until either both have
// observed their event, or one of them times out before observing it
// (spec.md §4.4). It is
// short-lived by design: it runs once at startup and then exits.
type Supervisor struct {
	process *ProcessHandler
	network *NetworkHandler
	poll    time.Duration
}

func NewSupervisor(process *ProcessHandler, network *NetworkHandler) *Supervisor {
	return &Supervisor{process: process, network: network, poll: 50 * time.Millisecond}
}

// Await blocks until both handlers have observed their event, or returns an
// error the moment either one times out without having observed its event.
// The timeout error is meant to
// surface as a fatal startup error (spec.md §7).
func (s *Supervisor) Await() error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		if s.process.State().Observed() && s.network.State().Observed() {
			return nil
		}
		if !s.process.State().Observed() && s.process.State().HasTimedOut() {
			return fmt.Errorf("self-check timed out: process handler never observed %s", "execve<")
		}
		if !s.network.State().Observed() && s.network.State().HasTimedOut() {
			return fmt.Errorf("self-check timed out: network handler never observed matching socket activity")
		}
		<-ticker.C
	}
}

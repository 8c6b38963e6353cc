// Package control implements the RuntimeControlClient (spec.md §4.5): a
// persistent duplex session with the upstream sensor that applies
// configuration updates and acknowledges them. The state machine
// (Stopped -> Dialing -> Session -> Draining -> Stopped) is driven by one
// goroutine; Start/Stop are safe to call from any goroutine, guarded by a
// dedicated mutex the way spec.md §5 requires.
package control

import (
	"context"
	"sync"
	"time"

	"netconnd/internal/logging"
	"netconnd/internal/rpc"
	"netconnd/internal/runtimeconfig"
)

// State is the RuntimeControlClient's lifecycle state.
type State uint8

const (
	Stopped State = iota
	Dialing
	Session
	Draining
)

func (s State) String() string {
	switch s {
	case Dialing:
		return "dialing"
	case Session:
		return "session"
	case Draining:
		return "draining"
	default:
		return "stopped"
	}
}

const dialRetryInterval = 2 * time.Second

// Client is the RuntimeControlClient.
type Client struct {
	log    *logging.Logger
	dialer rpc.Dialer
	rcfg   *runtimeconfig.RuntimeConfig

	runMu     sync.Mutex
	shouldRun bool
	stopCh    chan struct{}
	done      chan struct{}

	stateMu sync.Mutex
	state   State

	sendMu      sync.Mutex
	activeStream rpc.ControlStream
}

func New(log *logging.Logger, dialer rpc.Dialer, rcfg *runtimeconfig.RuntimeConfig) *Client {
	return &Client{
		log:    log.With("component", "control-client"),
		dialer: dialer,
		rcfg:   rcfg,
	}
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// Start transitions Stopped -> Dialing and begins the session loop on a new
// goroutine.
func (c *Client) Start(ctx context.Context) {
	c.runMu.Lock()
	if c.shouldRun {
		c.runMu.Unlock()
		return
	}
	c.shouldRun = true
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})
	stopCh := c.stopCh
	done := c.done
	c.runMu.Unlock()

	go c.run(ctx, stopCh, done)
}

// Stop signals the session loop to exit. If wait is true, it blocks until
// the loop has actually exited; otherwise it returns immediately and the
// loop finishes on its own goroutine (spec.md §4.5's detach option).
func (c *Client) Stop(wait bool) {
	c.runMu.Lock()
	if !c.shouldRun {
		c.runMu.Unlock()
		return
	}
	c.shouldRun = false
	close(c.stopCh)
	done := c.done
	c.runMu.Unlock()

	if wait {
		<-done
	}
}

func (c *Client) run(ctx context.Context, stopCh chan struct{}, done chan struct{}) {
	defer close(done)
	defer c.setState(Stopped)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.setState(Dialing)
		stream, err := c.dialer.Dial(ctx)
		if err != nil {
			c.log.Warn("dial failed, retrying", "err", err)
			if !interruptibleSleep(stopCh, dialRetryInterval) {
				return
			}
			continue
		}

		c.setState(Session)
		c.sendMu.Lock()
		c.activeStream = stream
		c.sendMu.Unlock()

		c.runSession(stream, stopCh)

		c.sendMu.Lock()
		c.activeStream = nil
		c.sendMu.Unlock()

		select {
		case <-stopCh:
			c.setState(Draining)
			return
		case <-ctx.Done():
			c.setState(Draining)
			return
		default:
		}
	}
}

// runSession spawns a reader that invokes onMessage for every inbound
// Envelope; the writer side just sleeps in 1s ticks so it can be
// interrupted by stop, per spec.md §4.5. The outbound ack/heartbeat cadence
// beyond the immediate ack is intentionally left as an extension point
// (spec.md §9 open question) — nothing beyond Send() is invented here.
func (c *Client) runSession(stream rpc.ControlStream, stopCh chan struct{}) {
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			env, err := stream.Recv()
			if err != nil {
				c.log.Warn("control stream read error", "err", err)
				return
			}
			c.onMessage(env, stream)
		}
	}()

	for {
		select {
		case <-readerDone:
			return
		case <-stopCh:
			_ = stream.CloseSend()
			return
		case <-time.After(1 * time.Second):
			// extension point for a future outbound heartbeat.
		}
	}
}

func (c *Client) onMessage(env rpc.Envelope, stream rpc.ControlStream) {
	switch env.Kind {
	case rpc.KindRuntimeFilteringConfiguration:
		if env.FilteringConfiguration == nil {
			return
		}
		cfg := rpc.ToConfig(*env.FilteringConfiguration)
		c.rcfg.Update(cfg)
		if err := stream.Send(rpc.Envelope{Kind: rpc.KindRuntimeFiltersAck, FiltersAck: &rpc.FiltersAck{}}); err != nil {
			c.log.Warn("failed to send filters ack", "err", err)
		}
	default:
		c.log.Debug("dropping unrecognized control message", "kind", env.Kind)
	}
}

// Send writes env on the currently active session stream, if any. It is
// used by the Reporter to push ConnectionUpdate/SelfCheckResult without
// blocking event processing — if there is no active session the message is
// dropped, matching the "filter change may be observed by events already
// in flight or not" tolerance spec.md §5 allows for config updates.
func (c *Client) Send(env rpc.Envelope) error {
	c.sendMu.Lock()
	stream := c.activeStream
	c.sendMu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Send(env)
}

func interruptibleSleep(stopCh chan struct{}, d time.Duration) bool {
	select {
	case <-stopCh:
		return false
	case <-time.After(d):
		return true
	}
}

package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/workspace"
)

// EventName is the message name events travel under.
const EventName = "workspace_event"

// Transport moves encoded events between peers. Receive handlers may be
// called from any goroutine.
type Transport interface {
	Send(data []byte) error
	Receive(fn func(data []byte)) (stop func())
	Close() error
}

// Client relays the events of one workspace over a Transport.
//
// A workspace is not safe for concurrent use, so events arriving from the
// transport are queued and only applied by Apply or Run, on the goroutine
// that owns the workspace.
type Client struct {
	transport Transport
	logger    *slog.Logger

	// inbox is unbounded so the transport goroutine never waits on the
	// workspace owner. ready holds one token while inbox is non-empty.
	inboxMu sync.Mutex
	inbox   [][]byte
	ready   chan struct{}

	ws      *workspace.Workspace
	g       guard
	stopRx  func()
	removeL func()

	mu   sync.Mutex
	sent int
	got  int
}

// NewClient returns a client over t. The logger is taken from ctx.
func NewClient(ctx context.Context, t Transport) *Client {
	return &Client{
		transport: t,
		logger:    ctxlog.FromContext(ctx).With("component", "relay"),
		ready:     make(chan struct{}, 1),
	}
}

// Attach starts relaying ws. Local events are sent as they fire; remote ones
// are queued. A client serves one workspace at a time.
func (c *Client) Attach(ws *workspace.Workspace) error {
	if c.ws != nil {
		return fmt.Errorf("relay client already attached to workspace %s", c.ws.ID())
	}
	c.ws = ws
	c.stopRx = c.transport.Receive(c.enqueue)
	c.removeL = ws.AddChangeListener(c.onLocal)
	c.logger.Debug("Attached relay", "workspace_id", ws.ID())
	return nil
}

// Detach stops relaying. Queued remote events are dropped.
func (c *Client) Detach() {
	if c.ws == nil {
		return
	}
	c.stopRx()
	c.removeL()
	if n := c.dropQueued(); n > 0 {
		c.logger.Warn("Dropped queued remote events", "workspace_id", c.ws.ID(), "count", n)
	}
	c.logger.Debug("Detached relay", "workspace_id", c.ws.ID())
	c.ws = nil
}

// enqueue is the transport's receive handler. It never blocks.
func (c *Client) enqueue(data []byte) {
	c.inboxMu.Lock()
	c.inbox = append(c.inbox, data)
	c.inboxMu.Unlock()
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// dequeue pops the oldest queued event.
func (c *Client) dequeue() ([]byte, bool) {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	if len(c.inbox) == 0 {
		return nil, false
	}
	data := c.inbox[0]
	c.inbox[0] = nil
	c.inbox = c.inbox[1:]
	return data, true
}

func (c *Client) dropQueued() int {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	n := len(c.inbox)
	c.inbox = nil
	return n
}

// Pending returns how many remote events wait to be applied.
func (c *Client) Pending() int {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	return len(c.inbox)
}

func (c *Client) onLocal(e *events.Event) {
	if c.g.applying {
		return
	}
	data, err := encode(e)
	if err != nil {
		c.logger.Error("Dropping event", "type", e.Type(), "error", err)
		return
	}
	if data == nil {
		return
	}
	if err := c.transport.Send(data); err != nil {
		c.logger.Error("Failed to send event", "type", e.Type(), "error", err)
		return
	}
	c.mu.Lock()
	c.sent++
	c.mu.Unlock()
}

// Apply runs every queued remote event and returns how many it applied.
// It does not block.
func (c *Client) Apply() (int, error) {
	n := 0
	for {
		data, ok := c.dequeue()
		if !ok {
			return n, nil
		}
		if err := c.applyOne(data); err != nil {
			return n, err
		}
		n++
	}
}

// Run applies remote events as they arrive until ctx is done. Use it when
// the relay is the only writer of the workspace.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ready:
			for data, ok := c.dequeue(); ok; data, ok = c.dequeue() {
				if err := c.applyOne(data); err != nil {
					c.logger.Warn("Skipping remote event", "error", err)
				}
			}
		}
	}
}

func (c *Client) applyOne(data []byte) error {
	if c.ws == nil {
		return fmt.Errorf("relay client is not attached")
	}
	if err := c.g.apply(c.ws, data); err != nil {
		return fmt.Errorf("applying remote event: %w", err)
	}
	c.mu.Lock()
	c.got++
	c.mu.Unlock()
	return nil
}

// Stats returns how many events were sent and applied.
func (c *Client) Stats() (sent, applied int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent, c.got
}

// Close detaches and closes the transport.
func (c *Client) Close() error {
	c.Detach()
	return c.transport.Close()
}

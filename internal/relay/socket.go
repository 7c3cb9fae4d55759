package relay

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketConfig describes a socket.io peer. A zero ConnectTimeout waits 15s.
type SocketConfig struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`

	ConnectTimeout time.Duration
}

// SocketTransport relays events over a socket.io connection, websocket only.
type SocketTransport struct {
	io     *socket.Socket
	logger *slog.Logger

	mu      sync.Mutex
	handler func([]byte)
}

// DialSocket connects to a socket.io server and waits for the handshake.
func DialSocket(ctx context.Context, cfg SocketConfig) (*SocketTransport, error) {
	logger := ctxlog.FromContext(ctx).With("transport", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	t := &SocketTransport{io: io, logger: logger}

	io.On(types.EventName(EventName), func(args ...any) {
		t.dispatch(args)
	})

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connected <- err
	})
	logger.Debug("Connecting")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return t, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// dispatch hands an incoming message to the current handler. Payloads may
// arrive as text, bytes or an already decoded object.
func (t *SocketTransport) dispatch(args []any) {
	if len(args) == 0 {
		return
	}
	var data []byte
	switch v := args[0].(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			t.logger.Warn("Dropping undecodable message", "error", err)
			return
		}
	}
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h != nil {
		h(data)
	}
}

// Send emits data as a workspace event.
func (t *SocketTransport) Send(data []byte) error {
	t.io.Emit(EventName, string(data))
	return nil
}

// Receive sets the handler for incoming workspace events.
func (t *SocketTransport) Receive(fn func([]byte)) func() {
	t.mu.Lock()
	t.handler = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.handler = nil
		t.mu.Unlock()
	}
}

// Close disconnects from the server.
func (t *SocketTransport) Close() error {
	t.logger.Info("Disconnecting", "sid", t.io.Id())
	t.io.Disconnect()
	return nil
}

package relay

import (
	"errors"
	"sync"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.New("relay: transport closed")

// pipeEnd is one side of an in-process transport pair.
type pipeEnd struct {
	mu      sync.Mutex
	handler func([]byte)
	closed  bool
	peer    *pipeEnd
}

// Pipe returns two connected in-process transports. Whatever one sends, the
// other receives synchronously.
func Pipe() (Transport, Transport) {
	a, b := &pipeEnd{}, &pipeEnd{}
	a.peer, b.peer = b, a
	return a, b
}

func (p *pipeEnd) Send(data []byte) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	p.peer.mu.Lock()
	h := p.peer.handler
	p.peer.mu.Unlock()
	if h != nil {
		h(append([]byte(nil), data...))
	}
	return nil
}

func (p *pipeEnd) Receive(fn func([]byte)) func() {
	p.mu.Lock()
	p.handler = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.handler = nil
		p.mu.Unlock()
	}
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.handler = nil
	return nil
}

package bridge

import (
	"errors"
	"sync"
)

var ClosedTransport = errors.New("transport closed")

// Loopback is one end of an in-memory transport pair. Publish hands the
// payload straight to the other end's handler.
type Loopback struct {
	lock    *sync.Mutex
	peer    *Loopback
	handler func(payload []byte)
	closed  bool
}

func NewLoopback() (*Loopback, *Loopback) {
	a := &Loopback{lock: &sync.Mutex{}}
	b := &Loopback{lock: &sync.Mutex{}}
	a.peer, b.peer = b, a
	return a, b
}

func (l *Loopback) Subscribe(handler func(payload []byte)) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return ClosedTransport
	}
	l.handler = handler
	return nil
}

func (l *Loopback) Publish(payload []byte) error {
	l.lock.Lock()
	closed := l.closed
	l.lock.Unlock()
	if closed {
		return ClosedTransport
	}

	l.peer.lock.Lock()
	handler := l.peer.handler
	l.peer.lock.Unlock()
	if handler != nil {
		handler(append([]byte{}, payload...))
	}
	return nil
}

func (l *Loopback) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.closed = true
	l.handler = nil
	return nil
}

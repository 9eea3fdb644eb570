// Package coretest provides scripted in-memory transport fakes for testing
// the channel managers and the orchestrator without a network.
package coretest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetwire/rtms/internal/core"
)

var errConnClosed = errors.New("use of closed fake connection")

// FakeConn implements core.Conn. Tests push inbound frames with Push and
// observe outbound frames with NextWrite.
type FakeConn struct {
	inbound chan []byte
	writes  chan []byte
	closed  chan struct{}
	once    sync.Once
}

func NewFakeConn() *FakeConn {
	return &FakeConn{
		inbound: make(chan []byte, 16),
		writes:  make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (c *FakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.inbound:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	}
}

func (c *FakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	case c.writes <- data:
		return nil
	}
}

func (c *FakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (c *FakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *FakeConn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Push marshals v and delivers it as an inbound frame.
func (c *FakeConn) Push(t testing.TB, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("push marshal: %v", err)
	}
	c.PushRaw(t, b)
}

func (c *FakeConn) PushRaw(t testing.TB, data []byte) {
	t.Helper()
	select {
	case c.inbound <- data:
	case <-time.After(2 * time.Second):
		t.Fatal("push timed out, inbound queue full")
	}
}

// NextWrite returns the next outbound frame or fails the test.
func (c *FakeConn) NextWrite(t testing.TB) []byte {
	t.Helper()
	select {
	case data := <-c.writes:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")
		return nil
	}
}

// FakeDialer implements core.Dialer, handing out a fresh FakeConn per dial
// and recording dial order.
type FakeDialer struct {
	mu    sync.Mutex
	conns []*FakeConn
	urls  []string

	// FailNext makes the next N dials return an error.
	FailNext int
}

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

func (d *FakeDialer) DialContext(ctx context.Context, urlStr string) (core.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailNext > 0 {
		d.FailNext--
		return nil, errors.New("fake dial refused")
	}
	conn := NewFakeConn()
	d.conns = append(d.conns, conn)
	d.urls = append(d.urls, urlStr)
	return conn, nil
}

func (d *FakeDialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *FakeDialer) Conn(i int) *FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *FakeDialer) URL(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.urls[i]
}

// FakeSocket implements core.Socket for entity-level tests.
type FakeSocket struct {
	mu     sync.Mutex
	closed bool
	Sent   []core.Frame
}

func (s *FakeSocket) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrSocketClosed
	}
	s.Sent = append(s.Sent, f)
	return nil
}

func (s *FakeSocket) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *FakeSocket) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

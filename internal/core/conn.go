package core

import (
	"context"
	"errors"
	"time"
)

// Frame is a raw wire payload.
type Frame []byte

var (
	ErrInvalidEndpoint = errors.New("endpoint is not a websocket url")
	ErrBackpressure    = errors.New("backpressure")
	ErrSocketClosed    = errors.New("socket closed")
)

// Conn is the subset of a websocket connection the channel managers need.
// gorilla's *websocket.Conn satisfies it directly; tests substitute fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens an outbound websocket connection.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string) (Conn, error)
}

// Socket is the send-side handle a Session keeps per channel.
// Owned by the adapter that created it; the adapter must Close() it.
type Socket interface {
	TrySend(Frame) error
	Close()
	IsClosed() bool
}

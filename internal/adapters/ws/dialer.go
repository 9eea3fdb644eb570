// Package ws holds the gorilla-backed transport pieces shared by the
// signaling and media channel managers.
package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetwire/rtms/internal/core"
)

// GorillaDialer implements core.Dialer on top of gorilla/websocket.
type GorillaDialer struct {
	HandshakeTimeout time.Duration
	ReadLimit        int64
}

func (d *GorillaDialer) DialContext(ctx context.Context, urlStr string) (core.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}
	conn, resp, err := dialer.DialContext(ctx, urlStr, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}
	return conn, nil
}

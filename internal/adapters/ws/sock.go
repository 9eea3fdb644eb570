package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/core"
)

const sendBuffer = 32

// Sock pairs a raw connection with a buffered outbound queue drained by
// WritePump. Sends are fire-and-forget; a full queue drops the frame.
type Sock struct {
	conn core.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func NewSock(conn core.Conn) *Sock {
	return &Sock{
		conn: conn,
		send: make(chan core.Frame, sendBuffer),
	}
}

func (s *Sock) TrySend(f core.Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrSocketClosed
	}
	select {
	case s.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// SendJSON marshals v and queues it. Marshal failures are logged and the
// frame dropped, matching the fire-and-forget send contract.
func (s *Sock) SendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("sendJSON marshal")
		return err
	}
	return s.TrySend(b)
}

// Close is idempotent and safe to call from any goroutine.
func (s *Sock) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.Close()
	s.mu.Unlock()
}

func (s *Sock) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ReadMessage exposes the raw read side to the owning manager's read pump.
func (s *Sock) ReadMessage() (int, []byte, error) {
	return s.conn.ReadMessage()
}

// WritePump drains the send queue onto the wire. It exits when the queue is
// closed or a write fails; read-side error handling owns reconnection.
func (s *Sock) WritePump(ctx context.Context, module string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", module).Msg("writePump ctx done")
			return
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", module).Msg("writePump set deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", module).Msg("writePump write error")
				return
			}
		}
	}
}

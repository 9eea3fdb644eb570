package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/protocol"
)

func (m *Manager) readPump(ctx context.Context, sess *core.Session, sock *ws.Sock) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sess.SessionID())).Msg("readPump closing")
		sock.Close()
		sess.SetSignalingState(core.StateClosed)
		if m.Hooks != nil {
			m.Hooks.SignalingClosed(sess)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sess.SessionID())).Msg("readPump ctx done")
			return
		default:
			_, data, err := sock.ReadMessage()
			if err != nil {
				// Transport errors surface here as read errors; the
				// deferred close handler owns reconnection.
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sess.SessionID())).Msg("readPump read error")
				return
			}
			m.dispatch(sess, sock, data)
		}
	}
}

func (m *Manager) dispatch(sess *core.Session, sock *ws.Sock, data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		// Malformed frame: discard, connection untouched.
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.MsgType {
	case protocol.MsgSignalingHandshakeResp:
		m.handleHandshakeResp(sess, sock, data)
	case protocol.MsgEventNotify:
		m.handleEvent(sess, data)
	case protocol.MsgStreamStateChanged:
		m.handleStreamState(sess, data)
	case protocol.MsgSessionStateChanged:
		m.handleSessionState(sess, data)
	case protocol.MsgKeepAliveReq:
		m.handleKeepAlive(sess, sock, data)
	default:
		log.Warn().Str("module", "signal").Int("msg_type", env.MsgType).Msg("unknown message type")
	}
}

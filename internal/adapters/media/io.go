package media

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/protocol"
)

func (m *Manager) readPump(ctx context.Context, sess *core.Session, sock *ws.Sock) {
	defer func() {
		log.Info().Str("module", "media").Str("sid", string(sess.SessionID())).Msg("readPump closing")
		sock.Close()
		sess.SetMediaState(core.StateClosed)
		if m.Hooks != nil {
			m.Hooks.MediaClosed(sess)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "media").Str("sid", string(sess.SessionID())).Msg("readPump ctx done")
			return
		default:
			_, data, err := sock.ReadMessage()
			if err != nil {
				log.Warn().Err(err).Str("module", "media").Str("sid", string(sess.SessionID())).Msg("readPump read error")
				return
			}
			m.dispatch(sess, sock, data)
		}
	}
}

func (m *Manager) dispatch(sess *core.Session, sock *ws.Sock, data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		log.Error().Err(err).Str("module", "media").Msg("bad json")
		return
	}

	switch env.MsgType {
	case protocol.MsgMediaHandshakeResp:
		m.handleHandshakeResp(sess, sock, data)
	case protocol.MsgKeepAliveReq:
		m.handleKeepAlive(sess, sock, data)
	case protocol.MsgAudioPayload,
		protocol.MsgVideoPayload,
		protocol.MsgScreenSharePayload,
		protocol.MsgTranscriptPayload,
		protocol.MsgChatPayload:
		m.handlePayload(env.MsgType, data)
	default:
		log.Warn().Str("module", "media").Int("msg_type", env.MsgType).Msg("unknown message type")
	}
}

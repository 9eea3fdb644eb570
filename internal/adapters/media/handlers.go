package media

import (
	"encoding/base64"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/domain"
	"github.com/meetwire/rtms/internal/protocol"
)

func (m *Manager) handleHandshakeResp(sess *core.Session, sock *ws.Sock, data []byte) {
	var resp protocol.HandshakeResp
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Error().Err(err).Str("module", "media").Msg("bad handshake response")
		return
	}

	if resp.Status != protocol.StatusOK {
		log.Error().Str("module", "media").
			Str("sid", string(sess.SessionID())).
			Int("status", resp.Status).
			Str("reason", resp.Reason).
			Msg("media handshake rejected")
		return
	}

	if !sess.SetMediaState(core.StateStreaming) {
		log.Warn().Str("module", "media").
			Str("sid", string(sess.SessionID())).
			Msg("handshake response outside authenticated state, ignoring")
		return
	}
	_ = sock.SendJSON(protocol.StreamStartReq{
		MsgType:  protocol.MsgStreamStartReq,
		StreamID: string(sess.StreamID()),
	})

	log.Info().Str("module", "media").Str("sid", string(sess.SessionID())).Msg("media streaming")
}

func (m *Manager) handleKeepAlive(sess *core.Session, sock *ws.Sock, data []byte) {
	var ka protocol.KeepAlive
	if err := json.Unmarshal(data, &ka); err != nil {
		log.Error().Err(err).Str("module", "media").Msg("bad keep-alive payload")
		return
	}
	sess.TouchMediaKeepAlive(ka.Timestamp)
	_ = sock.SendJSON(protocol.KeepAlive{
		MsgType:   protocol.MsgKeepAliveResp,
		Timestamp: ka.Timestamp,
	})
}

// handlePayload demultiplexes a media frame by kind and decodes the
// transport envelope. The payload content itself is never interpreted here.
func (m *Manager) handlePayload(msgType int, data []byte) {
	var p protocol.MediaPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "media").Msg("bad media payload")
		return
	}
	// Absent payload field is a skip, not an error.
	if p.Content.Data == "" {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(p.Content.Data)
	if err != nil {
		log.Error().Err(err).Str("module", "media").Int("msg_type", msgType).Msg("bad base64 payload")
		return
	}

	sender := domain.Participant{
		ID:   domain.UserID(p.Content.UserID),
		Name: p.Content.UserName,
	}

	switch msgType {
	case protocol.MsgAudioPayload:
		m.Sinks.Audio(core.MediaFrame{Sender: sender, Data: raw, Timestamp: p.Content.Timestamp})
	case protocol.MsgVideoPayload:
		m.Sinks.Video(core.MediaFrame{Sender: sender, Data: raw, Timestamp: p.Content.Timestamp})
	case protocol.MsgScreenSharePayload:
		m.Sinks.ScreenShare(core.MediaFrame{Sender: sender, Data: raw, Timestamp: p.Content.Timestamp})
	case protocol.MsgTranscriptPayload:
		m.Sinks.Transcript(core.TextMessage{Sender: sender, Text: string(raw), Timestamp: p.Content.Timestamp})
	case protocol.MsgChatPayload:
		m.Sinks.Chat(core.TextMessage{Sender: sender, Text: string(raw), Timestamp: p.Content.Timestamp})
	}
}

package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/protocol"
)

// subscribedEvents are the auxiliary notifications requested right after a
// successful handshake. First-packet timing arrives without a subscription.
var subscribedEvents = []int{
	protocol.EventActiveSpeakerChange,
	protocol.EventParticipantJoin,
	protocol.EventParticipantLeave,
}

func (m *Manager) handleHandshakeResp(sess *core.Session, sock *ws.Sock, data []byte) {
	var resp protocol.HandshakeResp
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad handshake response")
		return
	}

	if resp.Status != protocol.StatusOK {
		// No handshake-level retry: the close handler's reconnect
		// timer is the only retry path.
		log.Error().Str("module", "signal").
			Str("sid", string(sess.SessionID())).
			Int("status", resp.Status).
			Str("reason", resp.Reason).
			Msg("signaling handshake rejected")
		return
	}

	// A channel torn down between send and dispatch fails this edge; acting
	// on the response then would dial media for a dead signaling socket.
	if !sess.SetSignalingState(core.StateReady) {
		log.Warn().Str("module", "signal").
			Str("sid", string(sess.SessionID())).
			Msg("handshake response outside authenticated state, ignoring")
		return
	}
	_ = sock.SendJSON(protocol.EventSubscribeReq{
		MsgType: protocol.MsgEventSubscribe,
		Events:  subscribedEvents,
	})

	log.Info().Str("module", "signal").
		Str("sid", string(sess.SessionID())).
		Str("media_url", resp.MediaURL).
		Msg("signaling ready")

	if m.Hooks != nil {
		m.Hooks.SignalingReady(sess, resp.MediaURL)
	}
}

func (m *Manager) handleEvent(sess *core.Session, data []byte) {
	var ev protocol.EventNotify
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad event payload")
		return
	}

	switch ev.EventType {
	case protocol.EventFirstPacket,
		protocol.EventActiveSpeakerChange,
		protocol.EventParticipantJoin,
		protocol.EventParticipantLeave:
		log.Debug().Str("module", "signal").
			Str("sid", string(sess.SessionID())).
			Int("event_type", ev.EventType).
			Msg("event notification")
		m.Sinks.Event(ev.EventType, ev.Payload)
	default:
		log.Warn().Str("module", "signal").Int("event_type", ev.EventType).Msg("unrecognized event type")
	}
}

func (m *Manager) handleStreamState(sess *core.Session, data []byte) {
	var st protocol.StreamStateChanged
	if err := json.Unmarshal(data, &st); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad stream state payload")
		return
	}

	log.Info().Str("module", "signal").
		Str("sid", string(sess.SessionID())).
		Int("state", st.State).
		Int("reason", st.Reason).
		Msg("stream state changed")

	if protocol.TerminalStreamState(st.State, st.Reason) && m.Hooks != nil {
		m.Hooks.StreamTerminated(sess, st.State, st.Reason)
	}
}

func (m *Manager) handleSessionState(sess *core.Session, data []byte) {
	var st protocol.SessionStateChanged
	if err := json.Unmarshal(data, &st); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad session state payload")
		return
	}
	// Informational only.
	log.Info().Str("module", "signal").
		Str("sid", string(sess.SessionID())).
		Int("state", st.State).
		Msg("session state changed")
}

func (m *Manager) handleKeepAlive(sess *core.Session, sock *ws.Sock, data []byte) {
	var ka protocol.KeepAlive
	if err := json.Unmarshal(data, &ka); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad keep-alive payload")
		return
	}
	sess.TouchSignalingKeepAlive(ka.Timestamp)
	_ = sock.SendJSON(protocol.KeepAlive{
		MsgType:   protocol.MsgKeepAliveResp,
		Timestamp: ka.Timestamp,
	})
}

// Package signal owns the signaling (control) channel: handshake,
// event subscription, keep-alive echo and terminal-state detection.
package signal

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/auth"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/protocol"
)

type Manager struct {
	Dialer   core.Dialer
	Hooks    core.LifecycleHooks
	Sinks    *core.Sinks
	ClientID string
	Secret   string
}

// Connect dials the session's signaling endpoint, binds the socket to the
// entity and sends the authentication handshake. The channel state advances
// to authenticated optimistically; the handshake response confirms or
// refutes it later.
func (m *Manager) Connect(ctx context.Context, sess *core.Session) error {
	errb := oops.In("signal").
		With("session_id", string(sess.SessionID())).
		With("stream_id", string(sess.StreamID()))

	endpoint := sess.SignalingURL()
	if err := core.ValidateEndpoint(endpoint); err != nil {
		log.Error().Str("module", "signal").Str("endpoint", endpoint).Msg("invalid signaling endpoint")
		return errb.With("endpoint", endpoint).Wrap(err)
	}

	// The transition into connecting claims the channel; a second caller
	// racing an in-flight attempt fails the edge and backs off.
	if !sess.SetSignalingState(core.StateConnecting) {
		log.Debug().Str("module", "signal").Str("sid", string(sess.SessionID())).Msg("connect attempt already in flight")
		return nil
	}
	conn, err := m.Dialer.DialContext(ctx, endpoint)
	if err != nil {
		sess.SetSignalingState(core.StateError)
		log.Error().Err(err).Str("module", "signal").Str("endpoint", endpoint).Msg("signaling dial failed")
		return errb.With("endpoint", endpoint).Wrapf(err, "dial signaling")
	}

	sock := ws.NewSock(conn)
	sess.BindSignaling(sock)

	// A stale reconnect may complete its dial after teardown; close the
	// fresh socket without handshaking and walk away.
	if !sess.ReconnectAllowed() {
		sock.Close()
		sess.SetSignalingState(core.StateClosed)
		log.Info().Str("module", "signal").Str("sid", string(sess.SessionID())).Msg("connected after stop, closing")
		return nil
	}

	sig, err := auth.Signature(m.ClientID, m.Secret, string(sess.SessionID()), string(sess.StreamID()))
	if err != nil {
		sock.Close()
		sess.SetSignalingState(core.StateClosed)
		log.Error().Err(err).Str("module", "signal").Msg("cannot sign signaling handshake")
		return errb.Wrap(err)
	}

	// Committed before the read loop starts so a handshake response lands
	// on the authenticated edge however fast it arrives.
	sess.SetSignalingState(core.StateAuthenticated)
	go sock.WritePump(ctx, "signal")
	go m.readPump(ctx, sess, sock)

	_ = sock.SendJSON(protocol.SignalingHandshakeReq{
		MsgType:         protocol.MsgSignalingHandshakeReq,
		ProtocolVersion: protocol.ProtocolVersion,
		SessionID:       string(sess.SessionID()),
		StreamID:        string(sess.StreamID()),
		Signature:       sig,
	})

	log.Info().Str("module", "signal").
		Str("sid", string(sess.SessionID())).
		Str("endpoint", endpoint).
		Msg("signaling handshake sent")
	return nil
}

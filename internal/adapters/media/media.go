// Package media owns the data channel: data handshake with the negotiated
// media profiles, stream-start, payload demultiplexing and keep-alive echo.
package media

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

// Connect dials the media endpoint supplied by signaling and sends the data
// handshake declaring the desired media kinds and their fixed profiles.
// Like signaling, the state advances optimistically before the response.
func (m *Manager) Connect(ctx context.Context, sess *core.Session, mediaURL string) error {
	errb := oops.In("media").
		With("session_id", string(sess.SessionID())).
		With("stream_id", string(sess.StreamID()))

	// The transition into connecting claims the channel; while a live media
	// socket holds it, a redial is refused instead of binding a second one.
	if !sess.SetMediaState(core.StateConnecting) {
		log.Debug().Str("module", "media").Str("sid", string(sess.SessionID())).Msg("media channel busy, skipping dial")
		return nil
	}
	conn, err := m.Dialer.DialContext(ctx, mediaURL)
	if err != nil {
		sess.SetMediaState(core.StateError)
		log.Error().Err(err).Str("module", "media").Str("endpoint", mediaURL).Msg("media dial failed")
		return errb.With("endpoint", mediaURL).Wrapf(err, "dial media")
	}

	sock := ws.NewSock(conn)
	sess.BindMedia(sock)

	if !sess.ReconnectAllowed() {
		sock.Close()
		sess.SetMediaState(core.StateClosed)
		log.Info().Str("module", "media").Str("sid", string(sess.SessionID())).Msg("connected after stop, closing")
		return nil
	}

	sig, err := auth.Signature(m.ClientID, m.Secret, string(sess.SessionID()), string(sess.StreamID()))
	if err != nil {
		sock.Close()
		sess.SetMediaState(core.StateClosed)
		log.Error().Err(err).Str("module", "media").Msg("cannot sign media handshake")
		return errb.Wrap(err)
	}

	// Committed before the read loop starts so a handshake response lands
	// on the authenticated edge however fast it arrives.
	sess.SetMediaState(core.StateAuthenticated)
	go sock.WritePump(ctx, "media")
	go m.readPump(ctx, sess, sock)

	_ = sock.SendJSON(protocol.MediaHandshakeReq{
		MsgType:         protocol.MsgMediaHandshakeReq,
		ProtocolVersion: protocol.ProtocolVersion,
		SessionID:       string(sess.SessionID()),
		StreamID:        string(sess.StreamID()),
		Signature:       sig,
		MediaTypes:      protocol.MediaTypeAll,
		MediaParams:     protocol.DefaultMediaParams(),
	})

	log.Info().Str("module", "media").
		Str("sid", string(sess.SessionID())).
		Str("endpoint", mediaURL).
		Msg("media handshake sent")
	return nil
}

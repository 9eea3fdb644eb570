package app

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/auth"
	"github.com/meetwire/rtms/internal/core"
)

// The orchestrator implements core.LifecycleHooks; cross-channel policy
// lives here and nowhere else.
var _ core.LifecycleHooks = (*Orchestrator)(nil)

// SignalingReady opens the media channel against the endpoint carried in
// the signaling handshake response.
func (o *Orchestrator) SignalingReady(sess *core.Session, mediaURL string) {
	if mediaURL != "" {
		sess.SetMediaURL(mediaURL)
	}
	if !sess.ReconnectAllowed() {
		return
	}
	if sess.MediaActive() {
		log.Debug().Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("media channel already live, keeping it")
		return
	}

	target := sess.MediaURL()
	if target == "" {
		log.Error().Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("signaling ready without media endpoint")
		return
	}

	if err := o.Media.Connect(o.ctx, sess, target); err != nil {
		o.scheduleMediaReconnect(sess)
	}
}

// SignalingClosed takes the media socket down with it: media liveness
// depends on signaling, and the recovered signaling channel re-opens media
// through its own handshake response. The retry reuses the same entity and
// endpoint so identity survives and nothing re-registers.
func (o *Orchestrator) SignalingClosed(sess *core.Session) {
	sess.CloseMedia()
	o.scheduleSignalingReconnect(sess)
}

// MediaClosed decides between a media-only reconnect and a full restart:
// if signaling still holds a ready, open socket only media retries;
// otherwise signaling is presumed unhealthy and the whole pair restarts
// through the signaling connect path.
func (o *Orchestrator) MediaClosed(sess *core.Session) {
	if !sess.ReconnectAllowed() {
		return
	}
	if sess.SignalingHealthy() {
		o.scheduleMediaReconnect(sess)
		return
	}
	o.scheduleSignalingReconnect(sess)
}

// StreamTerminated handles the reserved terminal (state, reason) pair:
// full teardown instead of reconnection.
func (o *Orchestrator) StreamTerminated(sess *core.Session, state, reason int) {
	log.Info().Str("module", "app.orchestrator").
		Str("sid", string(sess.SessionID())).
		Int("state", state).
		Int("reason", reason).
		Msg("terminal stream state, tearing down")
	o.teardown(sess)
}

func (o *Orchestrator) delay() time.Duration {
	if o.ReconnectDelay > 0 {
		return o.ReconnectDelay
	}
	return DefaultReconnectDelay
}

// scheduleSignalingReconnect arms a one-shot retry of the signaling channel.
// The reconnect gate is re-checked when the timer fires so a teardown that
// won the race turns the retry into a no-op, and a retry is skipped when
// another signaling attempt is already in flight.
func (o *Orchestrator) scheduleSignalingReconnect(sess *core.Session) {
	if !sess.ReconnectAllowed() {
		return
	}
	log.Info().Str("module", "app.orchestrator").
		Str("sid", string(sess.SessionID())).
		Dur("delay", o.delay()).
		Msg("scheduling signaling reconnect")

	time.AfterFunc(o.delay(), func() {
		if !sess.ReconnectAllowed() {
			log.Debug().Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("skipping stale signaling reconnect")
			return
		}
		if !sess.SignalingSettled() {
			return
		}
		if err := o.Signal.Connect(o.ctx, sess); err != nil {
			if errors.Is(err, core.ErrInvalidEndpoint) || errors.Is(err, auth.ErrMissingSecret) {
				log.Error().Err(err).Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("signaling reconnect not retryable")
				return
			}
			o.scheduleSignalingReconnect(sess)
		}
	})
}

// scheduleMediaReconnect arms a one-shot media-only retry. If signaling
// degraded while the timer was pending, the retry falls back to the full
// restart path.
func (o *Orchestrator) scheduleMediaReconnect(sess *core.Session) {
	if !sess.ReconnectAllowed() {
		return
	}
	log.Info().Str("module", "app.orchestrator").
		Str("sid", string(sess.SessionID())).
		Dur("delay", o.delay()).
		Msg("scheduling media reconnect")

	time.AfterFunc(o.delay(), func() {
		if !sess.ReconnectAllowed() {
			log.Debug().Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("skipping stale media reconnect")
			return
		}
		if !sess.SignalingHealthy() {
			o.scheduleSignalingReconnect(sess)
			return
		}
		if err := o.Media.Connect(o.ctx, sess, sess.MediaURL()); err != nil {
			if errors.Is(err, auth.ErrMissingSecret) {
				log.Error().Err(err).Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("media reconnect not retryable")
				return
			}
			o.scheduleMediaReconnect(sess)
		}
	})
}

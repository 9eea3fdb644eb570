package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/auth"
	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/domain"
)

// DefaultReconnectDelay is the fixed pause before any reconnect attempt.
const DefaultReconnectDelay = 3 * time.Second

// SignalConnector is the signaling channel manager as the orchestrator
// sees it.
type SignalConnector interface {
	Connect(ctx context.Context, sess *core.Session) error
}

// MediaConnector is the media channel manager as the orchestrator sees it.
type MediaConnector interface {
	Connect(ctx context.Context, sess *core.Session, mediaURL string) error
}

// Orchestrator is the session lifecycle coordinator. It owns entity
// creation and teardown and every cross-channel decision: when signaling
// readiness opens media, when a dropped socket retries, and when a media
// failure demands a full signaling restart. The channel managers themselves
// never touch their sibling channel.
type Orchestrator struct {
	Registry *Registry
	Signal   SignalConnector
	Media    MediaConnector

	// ReconnectDelay is fixed; retries are unbounded.
	ReconnectDelay time.Duration

	ctx context.Context
}

func NewOrchestrator(ctx context.Context, reg *Registry, sig SignalConnector, med MediaConnector) *Orchestrator {
	return &Orchestrator{
		Registry:       reg,
		Signal:         sig,
		Media:          med,
		ReconnectDelay: DefaultReconnectDelay,
		ctx:            ctx,
	}
}

// Start handles an inbound "session started" signal. A session id that is
// already registered reuses the existing entity; an invalid signaling
// endpoint is rejected before anything is allocated or registered.
func (o *Orchestrator) Start(sessionID, streamID, signalingURL string) error {
	key, err := domain.NewSessionKey(sessionID, streamID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Msg("rejecting session start")
		return err
	}
	if err := core.ValidateEndpoint(signalingURL); err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Str("sid", sessionID).Msg("rejecting session start")
		return err
	}

	// Registered before dialing: a terminal event or stop racing the
	// handshake must find the entity, and a concurrent duplicate start
	// loses here before it can open a socket.
	sess := core.NewSession(key, signalingURL)
	if _, loaded := o.Registry.Register(sess); loaded {
		log.Warn().Str("module", "app.orchestrator").Str("sid", sessionID).Msg("session already active, reusing entity")
		return nil
	}

	if err := o.Signal.Connect(o.ctx, sess); err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			o.Registry.Remove(sess.SessionID())
			return err
		}
		// Transport-level dial failure: keep the entity and retry the
		// way a socket close would.
		o.scheduleSignalingReconnect(sess)
	}
	return nil
}

// Stop handles an explicit "session stopped" signal. Idempotent: an unknown
// session id is a no-op.
func (o *Orchestrator) Stop(sessionID string) {
	sess, ok := o.Registry.Get(domain.SessionID(sessionID))
	if !ok {
		return
	}
	o.teardown(sess)
}

// ShutdownAll tears down every registered session, used at process exit.
func (o *Orchestrator) ShutdownAll() {
	for _, sid := range o.Registry.IDs() {
		o.Stop(string(sid))
	}
}

// teardown flags the entity non-reconnectable, asks both sockets to close
// and removes the entity. Closes are fire-and-forget: once the entity is
// out of the registry and the reconnect gate is down, nothing can
// resurrect it.
func (o *Orchestrator) teardown(sess *core.Session) {
	sess.Disable()
	sess.CloseSignaling()
	sess.CloseMedia()
	o.Registry.Remove(sess.SessionID())
	log.Info().Str("module", "app.orchestrator").Str("sid", string(sess.SessionID())).Msg("session torn down")
}

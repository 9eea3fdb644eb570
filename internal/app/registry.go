package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/domain"
)

// Registry is the process-wide map from session id to connection entity.
// It is mutated only by session start and teardown; at most one entity per
// session id exists at any time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*core.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]*core.Session),
	}
}

// Register stores sess unless an entity for the same session id already
// exists, in which case the existing one is returned with loaded=true.
func (r *Registry) Register(sess *core.Session) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[sess.SessionID()]; ok {
		return existing, true
	}
	r.sessions[sess.SessionID()] = sess
	log.Info().Str("module", "app.registry").Str("sid", string(sess.SessionID())).Msg("registered session")
	return sess, false
}

func (r *Registry) Get(sid domain.SessionID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sid]
	return sess, ok
}

// Remove is idempotent; removing an absent id is a no-op.
func (r *Registry) Remove(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed session")
}

func (r *Registry) IDs() []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(r.sessions))
	for sid := range r.sessions {
		out = append(out, sid)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot is a read-only view of every active session for APIs.
func (r *Registry) Snapshot() []core.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionInfo, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess.Info())
	}
	return out
}

package core

import (
	"sync"

	"github.com/meetwire/rtms/internal/domain"
)

// channel is one half of a Session: socket handle, state machine instance
// and the last keep-alive timestamp seen from the peer.
type channel struct {
	sock          Socket
	state         ChannelState
	lastKeepAlive int64
}

// Session is the per-stream connection entity. The signaling socket is owned
// exclusively by the signaling manager and the media socket by the media
// manager; cross-channel effects go through state reads and the lifecycle
// hooks, never through the sibling's handle.
//
// All fields are guarded by mu: socket callbacks run on per-channel
// goroutines, not a single event loop.
type Session struct {
	mu sync.Mutex

	key          domain.SessionKey
	signalingURL string
	mediaURL     string

	// reconnect transitions true->false exactly once; once false every
	// pending reconnect timer must turn into a no-op.
	reconnect bool

	signaling channel
	media     channel
}

func NewSession(key domain.SessionKey, signalingURL string) *Session {
	return &Session{
		key:          key,
		signalingURL: signalingURL,
		reconnect:    true,
		signaling:    channel{state: StateIdle},
		media:        channel{state: StateIdle},
	}
}

func (s *Session) SessionID() domain.SessionID { return s.key.SessionID }
func (s *Session) StreamID() domain.StreamID   { return s.key.StreamID }

func (s *Session) SignalingURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalingURL
}

// SetSignalingURL replaces the endpoint when a restart supplies a new one.
func (s *Session) SetSignalingURL(u string) {
	s.mu.Lock()
	s.signalingURL = u
	s.mu.Unlock()
}

func (s *Session) MediaURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediaURL
}

func (s *Session) SetMediaURL(u string) {
	s.mu.Lock()
	s.mediaURL = u
	s.mu.Unlock()
}

func (s *Session) ReconnectAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnect
}

// Disable permanently turns off reconnection for this entity.
func (s *Session) Disable() {
	s.mu.Lock()
	s.reconnect = false
	s.mu.Unlock()
}

func (s *Session) BindSignaling(sock Socket) {
	s.mu.Lock()
	s.signaling.sock = sock
	s.mu.Unlock()
}

func (s *Session) BindMedia(sock Socket) {
	s.mu.Lock()
	s.media.sock = sock
	s.mu.Unlock()
}

func (s *Session) SignalingState() ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaling.state
}

func (s *Session) MediaState() ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media.state
}

// SetSignalingState applies a transition if it is a legal edge and reports
// whether it was applied.
func (s *Session) SetSignalingState(next ChannelState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.signaling.state.CanTransition(next) {
		return false
	}
	s.signaling.state = next
	return true
}

func (s *Session) SetMediaState(next ChannelState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.media.state.CanTransition(next) {
		return false
	}
	s.media.state = next
	return true
}

func (s *Session) TouchSignalingKeepAlive(ts int64) {
	s.mu.Lock()
	s.signaling.lastKeepAlive = ts
	s.mu.Unlock()
}

func (s *Session) TouchMediaKeepAlive(ts int64) {
	s.mu.Lock()
	s.media.lastKeepAlive = ts
	s.mu.Unlock()
}

func (s *Session) SignalingKeepAlive() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaling.lastKeepAlive
}

func (s *Session) MediaKeepAlive() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media.lastKeepAlive
}

// SignalingHealthy reports whether signaling finished its handshake and its
// socket is still open. The media close handler reads this to decide between
// a media-only reconnect and a full signaling restart.
func (s *Session) SignalingHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaling.state == StateReady && s.signaling.sock != nil && !s.signaling.sock.IsClosed()
}

// MediaActive reports whether the media channel already holds an open socket
// past the dial, so a recovered signaling channel must not open a second one.
func (s *Session) MediaActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.media.state {
	case StateConnecting, StateAuthenticated, StateStreaming:
		return s.media.sock != nil && !s.media.sock.IsClosed()
	}
	return false
}

// SignalingSettled reports whether no signaling connect attempt is in
// flight, i.e. a reconnect may be scheduled without racing a live one.
func (s *Session) SignalingSettled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.signaling.state {
	case StateIdle, StateClosed, StateError:
		return true
	default:
		return false
	}
}

// CloseSignaling asks the signaling socket to close. Fire-and-forget: the
// read pump observes the closed transport and drives the state change.
func (s *Session) CloseSignaling() {
	s.mu.Lock()
	sock := s.signaling.sock
	s.mu.Unlock()
	if sock != nil {
		sock.Close()
	}
}

func (s *Session) CloseMedia() {
	s.mu.Lock()
	sock := s.media.sock
	s.mu.Unlock()
	if sock != nil {
		sock.Close()
	}
}

// SessionInfo is a read-only view for APIs (no transport fields).
type SessionInfo struct {
	SessionID      domain.SessionID `json:"session_id"`
	StreamID       domain.StreamID  `json:"stream_id"`
	SignalingState string           `json:"signaling_state"`
	MediaState     string           `json:"media_state"`
	Reconnect      bool             `json:"reconnect"`
}

func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		SessionID:      s.key.SessionID,
		StreamID:       s.key.StreamID,
		SignalingState: s.signaling.state.String(),
		MediaState:     s.media.state.String(),
		Reconnect:      s.reconnect,
	}
}

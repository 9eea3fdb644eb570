// Package domain contains identity types without logic, just meta-data.
package domain

import "errors"

var (
	ErrSessionIDEmpty = errors.New("session id empty")
	ErrStreamIDEmpty  = errors.New("stream id empty")
)

type (
	SessionID string
	StreamID  string
	UserID    string
)

// SessionKey pairs the two opaque external tokens identifying a stream.
// Both are immutable for the life of a session connection.
type SessionKey struct {
	SessionID SessionID
	StreamID  StreamID
}

func NewSessionKey(sessionID, streamID string) (SessionKey, error) {
	if sessionID == "" {
		return SessionKey{}, ErrSessionIDEmpty
	}
	if streamID == "" {
		return SessionKey{}, ErrStreamIDEmpty
	}
	return SessionKey{SessionID: SessionID(sessionID), StreamID: StreamID(streamID)}, nil
}

// Package protocol defines the JSON wire contract shared by the signaling
// and media channels. Every message carries a numeric msg_type discriminator;
// the codes are a fixed external contract and must not be renumbered.
package protocol

import (
	"encoding/json"
	"errors"
)

const (
	MsgSignalingHandshakeReq  = 1
	MsgSignalingHandshakeResp = 2
	MsgMediaHandshakeReq      = 3
	MsgMediaHandshakeResp     = 4
	MsgEventSubscribe         = 5
	MsgEventNotify            = 6
	MsgStreamStartReq         = 7
	MsgStreamStateChanged     = 8
	MsgSessionStateChanged    = 9
	MsgKeepAliveReq           = 12
	MsgKeepAliveResp          = 13
	MsgAudioPayload           = 14
	MsgVideoPayload           = 15
	MsgScreenSharePayload     = 16
	MsgTranscriptPayload      = 17
	MsgChatPayload            = 18
)

// Status code 0 is success in both handshake responses.
const StatusOK = 0

// Event types carried by MsgEventNotify. FirstPacket arrives unsolicited;
// the other three require an explicit MsgEventSubscribe.
const (
	EventFirstPacket         = 0
	EventActiveSpeakerChange = 1
	EventParticipantJoin     = 2
	EventParticipantLeave    = 3
)

// Stream states and stop reasons reported by MsgStreamStateChanged.
const (
	StreamStateActive      = 1
	StreamStatePaused      = 2
	StreamStateInterrupted = 3
	StreamStateTerminated  = 4
)

const (
	StopReasonUndefined     = 0
	StopReasonHostTriggered = 1
	StopReasonUserTriggered = 2
	StopReasonConnFailure   = 5
	StopReasonSessionEnded  = 6
)

// TerminalStreamState reports whether a (state, reason) pair signals a
// final administrative termination: the session must be torn down rather
// than reconnected.
func TerminalStreamState(state, reason int) bool {
	return state == StreamStateTerminated && reason == StopReasonSessionEnded
}

var ErrEmptyMessage = errors.New("empty message")

// Envelope is the minimal frame read first to pick a dispatch branch.
type Envelope struct {
	MsgType int `json:"msg_type"`
}

func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if len(data) == 0 {
		return env, ErrEmptyMessage
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return env, err
	}
	return env, nil
}

type SignalingHandshakeReq struct {
	MsgType         int    `json:"msg_type"`
	ProtocolVersion int    `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	StreamID        string `json:"stream_id"`
	Signature       string `json:"signature"`
}

// HandshakeResp is shared by both channels; MediaURL is only populated in
// the signaling variant.
type HandshakeResp struct {
	MsgType  int    `json:"msg_type"`
	Status   int    `json:"status"`
	Reason   string `json:"reason,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
}

type EventSubscribeReq struct {
	MsgType int   `json:"msg_type"`
	Events  []int `json:"events"`
}

type EventNotify struct {
	MsgType   int             `json:"msg_type"`
	EventType int             `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type StreamStateChanged struct {
	MsgType   int   `json:"msg_type"`
	State     int   `json:"state"`
	Reason    int   `json:"reason"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

type SessionStateChanged struct {
	MsgType   int   `json:"msg_type"`
	State     int   `json:"state"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

// KeepAlive covers both directions; a response must echo the request
// timestamp untouched.
type KeepAlive struct {
	MsgType   int   `json:"msg_type"`
	Timestamp int64 `json:"timestamp"`
}

type MediaHandshakeReq struct {
	MsgType         int         `json:"msg_type"`
	ProtocolVersion int         `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	StreamID        string      `json:"stream_id"`
	Signature       string      `json:"signature"`
	MediaTypes      int         `json:"media_types"`
	MediaParams     MediaParams `json:"media_params"`
}

type StreamStartReq struct {
	MsgType  int    `json:"msg_type"`
	StreamID string `json:"stream_id"`
}

// MediaPayload is the envelope of msg types 14..18. Data is base64 on the
// wire for every kind, binary and text alike.
type MediaPayload struct {
	MsgType int          `json:"msg_type"`
	Content MediaContent `json:"content"`
}

type MediaContent struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

const ProtocolVersion = 1

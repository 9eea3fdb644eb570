package core

import "github.com/meetwire/rtms/internal/domain"

// MediaFrame is one decoded payload handed to a sink: sender identity plus
// the transport-envelope-decoded bytes. The receiver interprets nothing.
type MediaFrame struct {
	Sender    domain.Participant
	Data      []byte
	Timestamp int64
}

// TextMessage is a decoded transcript or chat entry.
type TextMessage struct {
	Sender    domain.Participant
	Text      string
	Timestamp int64
}

// Sinks holds the external consumer callbacks, one per media kind. Nil
// callbacks are skipped; dispatch helpers below keep the managers nil-safe.
type Sinks struct {
	OnAudio       func(MediaFrame)
	OnVideo       func(MediaFrame)
	OnScreenShare func(MediaFrame)
	OnTranscript  func(TextMessage)
	OnChat        func(TextMessage)

	// OnEvent receives auxiliary signaling notifications: first-packet,
	// active-speaker change, participant join/leave. detail is the raw
	// event payload.
	OnEvent func(kind int, detail []byte)
}

func (s *Sinks) Audio(f MediaFrame) {
	if s != nil && s.OnAudio != nil {
		s.OnAudio(f)
	}
}

func (s *Sinks) Video(f MediaFrame) {
	if s != nil && s.OnVideo != nil {
		s.OnVideo(f)
	}
}

func (s *Sinks) ScreenShare(f MediaFrame) {
	if s != nil && s.OnScreenShare != nil {
		s.OnScreenShare(f)
	}
}

func (s *Sinks) Transcript(m TextMessage) {
	if s != nil && s.OnTranscript != nil {
		s.OnTranscript(m)
	}
}

func (s *Sinks) Chat(m TextMessage) {
	if s != nil && s.OnChat != nil {
		s.OnChat(m)
	}
}

func (s *Sinks) Event(kind int, detail []byte) {
	if s != nil && s.OnEvent != nil {
		s.OnEvent(kind, detail)
	}
}

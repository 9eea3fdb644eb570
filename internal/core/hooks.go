package core

// LifecycleHooks is the narrow surface the channel managers report into.
// All cross-channel policy (opening media after signaling authenticates,
// reconnect scheduling, teardown) lives behind it, so the socket code never
// touches its sibling channel.
type LifecycleHooks interface {
	// SignalingReady fires after a successful signaling handshake.
	// mediaURL is the endpoint carried in that exact handshake response.
	SignalingReady(s *Session, mediaURL string)

	// SignalingClosed fires when the signaling socket is gone, whatever
	// the cause.
	SignalingClosed(s *Session)

	// MediaClosed fires when the media socket is gone.
	MediaClosed(s *Session)

	// StreamTerminated fires on the reserved terminal (state, reason)
	// pair from signaling.
	StreamTerminated(s *Session, state, reason int)
}

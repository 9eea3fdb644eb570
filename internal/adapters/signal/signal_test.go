package signal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwire/rtms/internal/core"
	"github.com/meetwire/rtms/internal/core/coretest"
	"github.com/meetwire/rtms/internal/domain"
	"github.com/meetwire/rtms/internal/protocol"
)

// hookRecorder captures lifecycle notifications for assertions.
type hookRecorder struct {
	mu         sync.Mutex
	ready      []string
	closed     int
	terminated []int
}

func (h *hookRecorder) SignalingReady(s *core.Session, mediaURL string) {
	h.mu.Lock()
	h.ready = append(h.ready, mediaURL)
	h.mu.Unlock()
}

func (h *hookRecorder) SignalingClosed(s *core.Session) {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
}

func (h *hookRecorder) MediaClosed(s *core.Session) {}

func (h *hookRecorder) StreamTerminated(s *core.Session, state, reason int) {
	h.mu.Lock()
	h.terminated = append(h.terminated, reason)
	h.mu.Unlock()
}

func (h *hookRecorder) readyCalls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ready...)
}

func newSession(t *testing.T, url string) *core.Session {
	t.Helper()
	key, err := domain.NewSessionKey("sess-1", "stream-1")
	require.NoError(t, err)
	return core.NewSession(key, url)
}

func newManager() (*Manager, *coretest.FakeDialer, *hookRecorder) {
	dialer := coretest.NewFakeDialer()
	hooks := &hookRecorder{}
	m := &Manager{
		Dialer:   dialer,
		Hooks:    hooks,
		Sinks:    &core.Sinks{},
		ClientID: "client",
		Secret:   "secret",
	}
	return m, dialer, hooks
}

func TestConnectInvalidSchemeDoesNotDial(t *testing.T) {
	m, dialer, _ := newManager()
	sess := newSession(t, "https://signal.example")

	err := m.Connect(context.Background(), sess)
	assert.ErrorIs(t, err, core.ErrInvalidEndpoint)
	assert.Equal(t, 0, dialer.DialCount())
}

func TestConnectMissingSecret(t *testing.T) {
	m, dialer, _ := newManager()
	m.Secret = ""
	sess := newSession(t, "wss://signal.example/ws")

	err := m.Connect(context.Background(), sess)
	assert.Error(t, err)
	require.Equal(t, 1, dialer.DialCount())
	assert.True(t, dialer.Conn(0).Closed(), "socket must not outlive a failed signature")
}

func TestConnectAfterStopClosesImmediately(t *testing.T) {
	m, dialer, hooks := newManager()
	sess := newSession(t, "wss://signal.example/ws")
	sess.Disable()

	require.NoError(t, m.Connect(context.Background(), sess))
	require.Equal(t, 1, dialer.DialCount())
	assert.True(t, dialer.Conn(0).Closed())
	assert.Empty(t, hooks.readyCalls(), "no handshake after stop")
}

func TestHandshakeRejectedLeavesStateUnready(t *testing.T) {
	m, dialer, hooks := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t) // handshake request

	conn.Push(t, protocol.HandshakeResp{
		MsgType: protocol.MsgSignalingHandshakeResp,
		Status:  7,
		Reason:  "bad signature",
	})

	// Push a keep-alive afterwards so we know the rejection was processed.
	conn.Push(t, protocol.KeepAlive{MsgType: protocol.MsgKeepAliveReq, Timestamp: 1})
	conn.NextWrite(t)

	assert.Empty(t, hooks.readyCalls(), "rejected handshake must not open media")
	assert.Equal(t, core.StateAuthenticated, sess.SignalingState())
}

func TestHandshakeResponseMarksReady(t *testing.T) {
	m, dialer, hooks := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	// The authenticated state is committed before the read loop starts, so
	// an immediate response still lands on a legal edge.
	assert.Equal(t, core.StateAuthenticated, sess.SignalingState())

	conn := dialer.Conn(0)
	conn.NextWrite(t) // handshake request

	conn.Push(t, protocol.HandshakeResp{
		MsgType:  protocol.MsgSignalingHandshakeResp,
		Status:   protocol.StatusOK,
		MediaURL: "wss://media.example/ws",
	})

	require.Eventually(t, func() bool { return sess.SignalingState() == core.StateReady },
		2*time.Second, 5*time.Millisecond)
	assert.True(t, sess.SignalingHealthy())
	assert.Equal(t, []string{"wss://media.example/ws"}, hooks.readyCalls())
}

func TestHandshakeResponseAfterCloseIsIgnored(t *testing.T) {
	m, dialer, hooks := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t) // handshake request

	// The channel left authenticated between the response being sent and
	// dispatched; acting on it would open media for a dead channel.
	require.True(t, sess.SetSignalingState(core.StateClosed))

	conn.Push(t, protocol.HandshakeResp{
		MsgType: protocol.MsgSignalingHandshakeResp,
		Status:  protocol.StatusOK,
	})
	conn.Push(t, protocol.KeepAlive{MsgType: protocol.MsgKeepAliveReq, Timestamp: 3})
	conn.NextWrite(t) // keep-alive echo proves the response was dispatched

	assert.Empty(t, hooks.readyCalls())
	assert.Equal(t, core.StateClosed, sess.SignalingState())
}

func TestConnectWhileInFlightIsSkipped(t *testing.T) {
	m, dialer, _ := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	require.NoError(t, m.Connect(context.Background(), sess))

	assert.Equal(t, 1, dialer.DialCount(), "second connect must not open a socket")
}

func TestKeepAliveEchoesTimestamp(t *testing.T) {
	m, dialer, _ := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t) // handshake request

	conn.Push(t, protocol.KeepAlive{MsgType: protocol.MsgKeepAliveReq, Timestamp: 424242})

	var resp protocol.KeepAlive
	require.NoError(t, json.Unmarshal(conn.NextWrite(t), &resp))
	assert.Equal(t, protocol.MsgKeepAliveResp, resp.MsgType)
	assert.Equal(t, int64(424242), resp.Timestamp)
	assert.Equal(t, int64(424242), sess.SignalingKeepAlive())
}

func TestMalformedFrameIsDiscarded(t *testing.T) {
	m, dialer, _ := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t) // handshake request

	conn.PushRaw(t, []byte(`{"msg_type":`))
	conn.PushRaw(t, []byte(`not json at all`))

	// The dispatch loop survives and still answers keep-alives.
	conn.Push(t, protocol.KeepAlive{MsgType: protocol.MsgKeepAliveReq, Timestamp: 5})
	var resp protocol.KeepAlive
	require.NoError(t, json.Unmarshal(conn.NextWrite(t), &resp))
	assert.Equal(t, int64(5), resp.Timestamp)
	assert.False(t, conn.Closed())
}

func TestEventRoutedToSink(t *testing.T) {
	m, dialer, _ := newManager()

	events := make(chan int, 4)
	m.Sinks = &core.Sinks{
		OnEvent: func(kind int, detail []byte) { events <- kind },
	}
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t)

	conn.Push(t, protocol.EventNotify{
		MsgType:   protocol.MsgEventNotify,
		EventType: protocol.EventActiveSpeakerChange,
	})

	select {
	case kind := <-events:
		assert.Equal(t, protocol.EventActiveSpeakerChange, kind)
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the sink")
	}
}

func TestCloseReportsToHooks(t *testing.T) {
	m, dialer, hooks := newManager()
	sess := newSession(t, "wss://signal.example/ws")

	require.NoError(t, m.Connect(context.Background(), sess))
	conn := dialer.Conn(0)
	conn.NextWrite(t)

	conn.Close()

	require.Eventually(t, func() bool {
		hooks.mu.Lock()
		defer hooks.mu.Unlock()
		return hooks.closed == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, core.StateClosed, sess.SignalingState())
}

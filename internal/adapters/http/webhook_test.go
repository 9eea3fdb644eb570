package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwire/rtms/internal/auth"
	"github.com/meetwire/rtms/internal/config"
	"github.com/meetwire/rtms/internal/core"
)

type fakeCoordinator struct {
	started [][3]string
	stopped []string
	err     error
}

func (f *fakeCoordinator) Start(sessionID, streamID, signalingURL string) error {
	f.started = append(f.started, [3]string{sessionID, streamID, signalingURL})
	return f.err
}

func (f *fakeCoordinator) Stop(sessionID string) {
	f.stopped = append(f.stopped, sessionID)
}

type fakeLister struct{ infos []core.SessionInfo }

func (f *fakeLister) Snapshot() []core.SessionInfo { return f.infos }

func testConfig() *config.Config {
	return &config.Config{
		Mode:             "release",
		ClientSecret:     "secret",
		WebhookPath:      "/webhook",
		WebhookRateLimit: 100,
		WebhookRateSpan:  time.Minute,
	}
}

func postWebhook(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookURLValidation(t *testing.T) {
	coord := &fakeCoordinator{}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	w := postWebhook(t, r, gin.H{
		"event":   EventURLValidation,
		"payload": gin.H{"plain_token": "abc123"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		PlainToken     string `json:"plain_token"`
		EncryptedToken string `json:"encrypted_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	want, err := auth.HMACHex("secret", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.PlainToken)
	assert.Equal(t, want, resp.EncryptedToken)
}

func TestWebhookStreamingStarted(t *testing.T) {
	coord := &fakeCoordinator{}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	w := postWebhook(t, r, gin.H{
		"event": EventStreamingStarted,
		"payload": gin.H{
			"session_id":    "sess-1",
			"stream_id":     "stream-1",
			"signaling_url": "wss://signal.example/ws",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, coord.started, 1)
	assert.Equal(t, [3]string{"sess-1", "stream-1", "wss://signal.example/ws"}, coord.started[0])
}

func TestWebhookStartedInvalidEndpoint(t *testing.T) {
	coord := &fakeCoordinator{err: core.ErrInvalidEndpoint}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	w := postWebhook(t, r, gin.H{
		"event": EventStreamingStarted,
		"payload": gin.H{
			"session_id":    "sess-1",
			"stream_id":     "stream-1",
			"signaling_url": "https://not-ws.example",
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookStreamingStopped(t *testing.T) {
	coord := &fakeCoordinator{}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	w := postWebhook(t, r, gin.H{
		"event":   EventStreamingStopped,
		"payload": gin.H{"session_id": "sess-1"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sess-1"}, coord.stopped)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	coord := &fakeCoordinator{}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	w := postWebhook(t, r, gin.H{"event": "session.something_else"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, coord.started)
	assert.Empty(t, coord.stopped)
}

func TestWebhookBadJSON(t *testing.T) {
	coord := &fakeCoordinator{}
	r := SetupRouter(testConfig(), coord, &fakeLister{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{"event":`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsEndpoint(t *testing.T) {
	lister := &fakeLister{infos: []core.SessionInfo{
		{SessionID: "sess-1", SignalingState: "ready", MediaState: "streaming", Reconnect: true},
	}}
	r := SetupRouter(testConfig(), &fakeCoordinator{}, lister)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var infos []core.SessionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "streaming", infos[0].MediaState)
}

func TestSourceRateLimiter(t *testing.T) {
	rl := NewSourceRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other sources are unaffected.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimitMiddlewareRejects(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookRateLimit = 1
	coord := &fakeCoordinator{}
	r := SetupRouter(cfg, coord, &fakeLister{})

	first := postWebhook(t, r, gin.H{"event": "session.unknown"})
	assert.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(t, r, gin.H{"event": "session.unknown"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/auth"
	"github.com/meetwire/rtms/internal/core"
)

// Webhook event names sent by the conferencing platform.
const (
	EventURLValidation    = "endpoint.url_validation"
	EventStreamingStarted = "session.streaming_started"
	EventStreamingStopped = "session.streaming_stopped"
)

type webhookRequest struct {
	Event   string `json:"event"`
	Payload struct {
		PlainToken   string `json:"plain_token"`
		SessionID    string `json:"session_id"`
		StreamID     string `json:"stream_id"`
		SignalingURL string `json:"signaling_url"`
	} `json:"payload"`
}

type WebhookHandler struct {
	Coord  Coordinator
	Secret string
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch req.Event {
	case EventURLValidation:
		h.handleValidation(c, req)
	case EventStreamingStarted:
		h.handleStarted(c, req)
	case EventStreamingStopped:
		h.handleStopped(c, req)
	default:
		// Unknown events are acknowledged so the sender does not retry.
		log.Warn().Str("module", "adapters.http").Str("event", req.Event).Msg("unknown webhook event")
		c.JSON(http.StatusOK, gin.H{})
	}
}

// handleValidation answers the endpoint-ownership challenge: the plain token
// comes back alongside its keyed hash.
func (h *WebhookHandler) handleValidation(c *gin.Context, req webhookRequest) {
	encrypted, err := auth.HMACHex(h.Secret, req.Payload.PlainToken)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("url validation without secret")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plain_token":     req.Payload.PlainToken,
		"encrypted_token": encrypted,
	})
}

func (h *WebhookHandler) handleStarted(c *gin.Context, req webhookRequest) {
	log.Info().Str("module", "adapters.http").
		Str("sid", req.Payload.SessionID).
		Str("stream_id", req.Payload.StreamID).
		Msg("session started webhook")

	err := h.Coord.Start(req.Payload.SessionID, req.Payload.StreamID, req.Payload.SignalingURL)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEndpoint) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signaling endpoint"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "start failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *WebhookHandler) handleStopped(c *gin.Context, req webhookRequest) {
	log.Info().Str("module", "adapters.http").
		Str("sid", req.Payload.SessionID).
		Msg("session stopped webhook")

	h.Coord.Stop(req.Payload.SessionID)
	c.JSON(http.StatusOK, gin.H{})
}

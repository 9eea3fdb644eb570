// Package http is the webhook front door: it translates conferencing
// platform callbacks into session lifecycle calls and exposes a read-only
// view of active sessions. No connection logic lives here.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/meetwire/rtms/internal/config"
	"github.com/meetwire/rtms/internal/core"
)

// Coordinator is the session lifecycle surface the webhook drives.
type Coordinator interface {
	Start(sessionID, streamID, signalingURL string) error
	Stop(sessionID string)
}

// SessionLister exposes the registry snapshot for the sessions API.
type SessionLister interface {
	Snapshot() []core.SessionInfo
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Header("X-Request-Id", rid)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, coord Coordinator, sessions SessionLister) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	limiter := NewSourceRateLimiter(cfg.WebhookRateLimit, cfg.WebhookRateSpan)
	wh := &WebhookHandler{Coord: coord, Secret: cfg.ClientSecret}
	r.POST(cfg.WebhookPath, RateLimitMiddleware(limiter), wh.Handle)

	api := r.Group("/api")
	api.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, sessions.Snapshot())
	})
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("webhook", cfg.WebhookPath).Msg("router setup")
	return r
}

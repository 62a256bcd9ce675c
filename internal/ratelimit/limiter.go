// Package ratelimit throttles per-IP WebSocket upgrades and room
// creation using an in-memory store: this server has no Redis
// dependency to share limiter state across processes (see DESIGN.md).
package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/hemolymph/bloodless-server/internal/logging"
	"github.com/hemolymph/bloodless-server/internal/metrics"
)

// Limiter holds the two rates this server enforces.
type Limiter struct {
	wsConnect   *limiter.Limiter
	roomCreate  *limiter.Limiter
	m           *metrics.Metrics
}

// New builds a Limiter from formatted rate strings (e.g. "100-M"),
// backed by an in-process memory store.
func New(wsConnectRate, roomCreateRate string, m *metrics.Metrics) (*Limiter, error) {
	wsRate, err := limiter.NewRateFromFormatted(wsConnectRate)
	if err != nil {
		return nil, fmt.Errorf("invalid WS connect rate %q: %w", wsConnectRate, err)
	}
	roomRate, err := limiter.NewRateFromFormatted(roomCreateRate)
	if err != nil {
		return nil, fmt.Errorf("invalid room create rate %q: %w", roomCreateRate, err)
	}

	store := memory.NewStore()
	return &Limiter{
		wsConnect:  limiter.New(store, wsRate),
		roomCreate: limiter.New(store, roomRate),
		m:          m,
	}, nil
}

// AllowWSConnect reports whether ip may open another WebSocket
// connection right now, failing open if the store itself errors.
func (l *Limiter) AllowWSConnect(ctx context.Context, ip string) bool {
	return l.allow(ctx, l.wsConnect, ip, "ws_connect")
}

// AllowRoomCreate reports whether ip may issue another CreateRoom right
// now, failing open if the store itself errors.
func (l *Limiter) AllowRoomCreate(ctx context.Context, ip string) bool {
	return l.allow(ctx, l.roomCreate, ip, "room_create")
}

func (l *Limiter) allow(ctx context.Context, lim *limiter.Limiter, key, reason string) bool {
	result, err := lim.Get(ctx, key)
	if err != nil {
		logging.Error(ctx, "rate limiter store failed, failing open", zap.Error(err))
		return true
	}
	if result.Reached {
		l.m.ConnectionsRejected.WithLabelValues(reason).Inc()
		return false
	}
	return true
}

// Middleware returns a Gin handler that rejects a request with 429 once
// the calling IP has exceeded roomCreateRate. Intended for any HTTP
// (non-WS) endpoint that triggers room creation.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.AllowRoomCreate(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

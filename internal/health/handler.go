// Package health implements liveness/readiness endpoints. Readiness has
// no external dependency to probe: the server holds no persisted state
// beyond the in-memory room registry.
package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RoomCounter reports how many rooms the registry currently holds, so
// readiness can reflect actual server state rather than a bare ping.
type RoomCounter interface {
	Len() int
}

// Handler serves /healthz and /readyz.
type Handler struct {
	rooms RoomCounter
}

// NewHandler builds a Handler backed by rooms, whose Len reflects the
// registry's current size.
func NewHandler(rooms RoomCounter) *Handler {
	return &Handler{rooms: rooms}
}

// LivenessResponse is the /healthz body: the process is alive, full stop.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the /readyz body.
type ReadinessResponse struct {
	Status     string `json:"status"`
	RoomsCount int    `json:"rooms_count"`
	Timestamp  string `json:"timestamp"`
}

// Liveness handles GET /healthz: 200 as long as the process can answer.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness handles GET /readyz: 200 once the registry is constructed
// and reachable. There is no external dependency to fail this server's
// readiness, so it mirrors liveness plus the current room count.
func (h *Handler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, ReadinessResponse{
		Status:     "ready",
		RoomsCount: h.rooms.Len(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

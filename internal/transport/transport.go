// Package transport implements the WebSocket acceptor: it upgrades a
// connection, resolves the room named by the connection's
// first CreateRoom/JoinRoom control message, then hands the connection
// off to internal/participant for the rest of its life. No credential
// management step: this server has no authentication concept.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hemolymph/bloodless-server/internal/logging"
	"github.com/hemolymph/bloodless-server/internal/metrics"
	"github.com/hemolymph/bloodless-server/internal/participant"
	"github.com/hemolymph/bloodless-server/internal/ratelimit"
	"github.com/hemolymph/bloodless-server/internal/registry"
	"github.com/hemolymph/bloodless-server/internal/room"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

// wsConn is the slice of *websocket.Conn the handshake needs, narrowed
// so tests can supply a mock instead of a real socket.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Server accepts WebSocket connections and spawns one room (on the
// first CreateRoom) or joins one (on the first JoinRoom), then runs the
// connection's participant event loop until it disconnects.
type Server struct {
	reg             *registry.Registry[room.Room]
	metrics         *metrics.Metrics
	limiter         *ratelimit.Limiter
	allowedOrigins  []string
	broadcastBuffer int
}

// NewServer builds a Server. limiter may be nil to disable rate
// limiting (e.g. in tests). broadcastBuffer sizes every room's
// per-participant outbound channel (BROADCAST_BUFFER); a value below 1
// falls back to room's own default.
func NewServer(reg *registry.Registry[room.Room], m *metrics.Metrics, limiter *ratelimit.Limiter, allowedOrigins []string, broadcastBuffer int) *Server {
	return &Server{reg: reg, metrics: m, limiter: limiter, allowedOrigins: allowedOrigins, broadcastBuffer: broadcastBuffer}
}

// RegisterRoutes wires this server's handlers onto r.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/room", s.ServeWS)
}

// ServeWS is the GET /ws/room handler: validate origin and rate limit,
// upgrade, resolve the room from the first control frame, then run the
// participant loop.
func (s *Server) ServeWS(c *gin.Context) {
	ctx := c.Request.Context()

	if s.limiter != nil && !s.limiter.AllowWSConnect(ctx, c.ClientIP()) {
		s.metrics.ConnectionsRejected.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connections"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return validateOrigin(r, s.allowedOrigins) == nil
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.metrics.ConnectionsRejected.WithLabelValues("upgrade_failed").Inc()
		logging.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}

	r, id, ok := s.admitConnection(ctx, c, conn)
	if !ok {
		_ = conn.Close()
		return
	}

	ctx = context.WithValue(ctx, logging.RoomIDKey, string(r.RoomID()))
	participant.Run(ctx, conn, r, id)
}

// admitConnection reads the connection's first frame, which must be a
// CreateRoom or JoinRoom control message: the room id is never part of
// the URL, since CreateRoom may mint a room that doesn't exist yet. It
// resolves the message to a *room.Room. Any other first
// frame, or a room lookup/creation failure, is a protocol or semantic
// error; this function replies appropriately and returns ok=false.
func (s *Server) admitConnection(ctx context.Context, c *gin.Context, conn wsConn) (*room.Room, wire.ParticipantID, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, "", false
	}

	msg, err := wire.DecodeClientMsg(data)
	if err != nil {
		logging.Warn(ctx, "first frame was not a valid client message", zap.Error(err))
		return nil, "", false
	}

	switch m := msg.(type) {
	case wire.CreateRoomMsg:
		return s.createRoom(ctx, c, conn, m.Room)
	case wire.JoinRoomMsg:
		return s.joinRoom(ctx, conn, m.Room)
	default:
		// Not a protocol violation in the strict sense (it decoded fine),
		// but no room is yet resolvable; a connection that can't be
		// routed to a room is closed rather than negotiated further.
		logging.Warn(ctx, "first frame was neither CreateRoom nor JoinRoom")
		return nil, "", false
	}
}

func (s *Server) createRoom(ctx context.Context, c *gin.Context, conn wsConn, id wire.RoomID) (*room.Room, wire.ParticipantID, bool) {
	if s.limiter != nil && !s.limiter.AllowRoomCreate(ctx, c.ClientIP()) {
		// No wire.ServerErr variant models "rate limited"; a connection
		// that can't create a room right now is closed rather than
		// inventing a new error the schema was never given.
		s.metrics.ConnectionsRejected.WithLabelValues("room_create_rate_limited").Inc()
		return nil, "", false
	}

	r := room.New(id, s.broadcastBuffer)
	if err := s.reg.Create(id, r); err != nil {
		writeErr(conn, wire.RoomAlreadyExistErr{Room: id})
		return nil, "", false
	}
	// The room outlives the creator's request: it ends when it goes
	// desolate, not when this connection's handler returns.
	go r.Run(context.WithoutCancel(ctx), s.reg, s.metrics)

	if !writeOk(conn, wire.RoomCreatedMsg{Room: id}) {
		return nil, "", false
	}
	return r, newParticipantID(), true
}

func (s *Server) joinRoom(ctx context.Context, conn wsConn, id wire.RoomID) (*room.Room, wire.ParticipantID, bool) {
	r, ok := s.reg.Lookup(id)
	if !ok {
		writeErr(conn, wire.RoomDoesntExistErr{Room: id})
		return nil, "", false
	}
	return r, newParticipantID(), true
}

func newParticipantID() wire.ParticipantID {
	return wire.ParticipantID(uuid.New().String())
}

func writeOk(conn wsConn, msg wire.ServerMsg) bool {
	data, err := json.Marshal(wire.Ok(msg))
	if err != nil {
		return false
	}
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}

func writeErr(conn wsConn, e wire.ServerErr) {
	data, err := json.Marshal(wire.Err(e))
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

// validateOrigin checks the request's Origin header against allowed,
// matching scheme and host. A missing Origin header is allowed through
// (non-browser clients, and local testing).
func validateOrigin(r *http.Request, allowed []string) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return err
	}
	for _, a := range allowed {
		allowedURL, err := url.Parse(a)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return nil
		}
	}
	return &originNotAllowedError{origin: origin}
}

type originNotAllowedError struct{ origin string }

func (e *originNotAllowedError) Error() string { return "origin not allowed: " + e.origin }

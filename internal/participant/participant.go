// Package participant implements the per-connection event loop: decode
// inbound frames, forward actions to the room, and relay broadcast
// records back out with per-recipient view projection already applied
// by the room.
package participant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hemolymph/bloodless-server/internal/logging"
	"github.com/hemolymph/bloodless-server/internal/room"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsConnection is the slice of *websocket.Conn this package depends on,
// narrowed so tests can supply a mock instead of a real socket.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// Roomer is the slice of *room.Room a participant depends on, narrowed
// for testability.
type Roomer interface {
	Admit(ctx context.Context, id wire.ParticipantID) (outbound <-chan room.OutboundRecord, view wire.LocalState, ok bool)
	Send(id wire.ParticipantID, msg wire.ClientMsg)
}

// Run drives one connection until reading from it fails (disconnect or
// read deadline; ctx cancellation does not stop the read loop):
// admits id into room, then runs the read loop and write loop
// concurrently, returning once both have stopped. Always sends a
// courtesy LeaveRoom on the way out so the room sees a clean departure
// whether the socket closed gracefully or not.
func Run(ctx context.Context, conn wsConnection, rm Roomer, id wire.ParticipantID) {
	ctx = context.WithValue(ctx, logging.ParticipantIDKey, string(id))

	outbound, view, ok := rm.Admit(ctx, id)
	if !ok {
		_ = conn.Close()
		return
	}

	initial, err := json.Marshal(wire.Ok(wire.JoinedRoomMsg{State: view}))
	if err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, initial)
	}

	done := make(chan struct{})
	go func() {
		writeLoop(conn, outbound, rm, id)
		close(done)
	}()

	readLoop(ctx, conn, rm, id)

	rm.Send(id, wire.LeaveRoomMsg{})
	<-done
	_ = conn.Close()
}

func readLoop(ctx context.Context, conn wsConnection, rm Roomer, id wire.ParticipantID) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		msg, err := wire.DecodeClientMsg(data)
		if err != nil {
			logging.Warn(ctx, "dropping malformed frame", zap.Error(err))
			continue
		}
		// A connection's very first CreateRoom/JoinRoom is resolved by the
		// acceptor before this loop ever starts; any later one is just
		// another authored message, forwarded into the room it is already
		// bound to so the room can reply JoinedRoom or AlreadyInGame.
		rm.Send(id, msg)
	}
}

func writeLoop(conn wsConnection, outbound <-chan room.OutboundRecord, rm Roomer, id wire.ParticipantID) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var lastSeq uint64
	haveSeq := false

	for {
		select {
		case rec, open := <-outbound:
			if !open {
				return
			}
			if haveSeq && rec.Seq != lastSeq+1 {
				// Seq is room-wide, so a gap means either the room dropped
				// a record for us while our buffer was full or it sent one
				// to another participant; either way, ask for a full
				// resync instead of risking a stale view.
				rm.Send(id, wire.UpdateMsg{})
			}
			lastSeq, haveSeq = rec.Seq, true

			data, err := json.Marshal(rec.Env)
			if err != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ Roomer = (*room.Room)(nil)

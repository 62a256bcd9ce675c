// Package room implements the per-room authority actor: a single
// goroutine that owns a game.State, serializes every action through one
// inbound channel, and fans results back out to participants with
// per-recipient view projection.
package room

import (
	"context"

	"github.com/hemolymph/bloodless-server/internal/game"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

// inboundCapacity bounds the room's inbound channel. Actions are tiny
// and processed far faster than participants can generate them in
// practice, so a generous fixed buffer stands in for the unbounded
// mpsc queue the original room_task used; a room that fills this buffer
// is backpressuring misbehaving or abusive clients, not losing
// legitimate traffic.
const inboundCapacity = 4096

// defaultOutboundCapacity is the per-participant broadcast buffer's
// bounded capacity used when New is not given an explicit size (see
// BROADCAST_BUFFER in internal/config).
const defaultOutboundCapacity = 16

// Destination says who a broadcast record is for.
type Destination interface {
	isDestination()
}

// ToAll is delivered to every participant (seated or spectating). When
// the pendingSend's PerRecipientUpdate is set, fanOut projects a fresh
// view per recipient rather than reusing one shared Env — see
// pendingSend in dispatch.go.
type ToAll struct{}

// ToParticipant is delivered only to the named participant.
type ToParticipant struct{ ID wire.ParticipantID }

func (ToAll) isDestination()         {}
func (ToParticipant) isDestination() {}

// OutboundRecord is what a participant actually reads off its channel:
// a monotonic sequence number (room-wide, not per recipient) plus the
// envelope to relay. Every record the room emits takes the next number,
// including records addressed only to other participants, so a gap in
// Seq appears both when this participant's channel was full and a
// record was dropped and when a record went to someone else. A
// participant resynchronizes by sending itself an Update on any gap.
type OutboundRecord struct {
	Seq uint64
	Env wire.Envelope
}

// authoredMsg pairs an inbound ClientMsg with the participant that sent
// it, mirroring the original AuthoredClientMsg.
type authoredMsg struct {
	author wire.ParticipantID
	msg    wire.ClientMsg
}

// admitRequest asks the room task to register a newly accepted
// participant. Routed through the same single-goroutine serialization
// point as every other action, so a participant can never observe a
// broadcast recorded before its subscription nor miss one recorded
// after — there is no window where state mutation and channel
// registration are visible out of order.
type admitRequest struct {
	id    wire.ParticipantID
	reply chan admitReply
}

type admitReply struct {
	outbound <-chan OutboundRecord
	view     wire.LocalState
}

// seat tracks which participant, if any, occupies a side.
type seat struct {
	participant wire.ParticipantID
	occupied    bool
}

// Room is the authority for one named room: its game state, seating,
// spectators, and the channels participants use to talk to it.
type Room struct {
	id    wire.RoomID
	state *game.State

	home seat
	away seat

	participants   map[wire.ParticipantID]chan OutboundRecord
	outboundBuffer int
	nextSeq        uint64

	inbound chan authoredMsg
	admit   chan admitRequest
	done    chan struct{}

	// fatal is set by dispatch when an action hits an invariant violation
	// (e.g. AddCounter against a zone that cannot carry a full card). Run
	// checks it after every dispatch and tears the room down if set.
	fatal error
}

// RoomID reports the id this room is registered under.
func (r *Room) RoomID() wire.RoomID { return r.id }

// Admit registers a newly accepted participant as a spectator and
// returns the channel it should read broadcasts from plus the initial
// view to send it. Blocks until the room task services the request or
// ctx is canceled; returns ok=false if the room has already torn down.
func (r *Room) Admit(ctx context.Context, id wire.ParticipantID) (<-chan OutboundRecord, wire.LocalState, bool) {
	req := admitRequest{id: id, reply: make(chan admitReply, 1)}
	select {
	case r.admit <- req:
	case <-r.done:
		return nil, wire.LocalState{}, false
	case <-ctx.Done():
		return nil, wire.LocalState{}, false
	}
	select {
	case rep := <-req.reply:
		return rep.outbound, rep.view, true
	case <-r.done:
		return nil, wire.LocalState{}, false
	case <-ctx.Done():
		return nil, wire.LocalState{}, false
	}
}

// Send enqueues msg as if authored by id. It blocks only while the
// inbound buffer (inboundCapacity) is full, and returns at once without
// sending once the room task has exited.
func (r *Room) Send(id wire.ParticipantID, msg wire.ClientMsg) {
	select {
	case r.inbound <- authoredMsg{author: id, msg: msg}:
	case <-r.done:
	}
}

// Done reports when the room task has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

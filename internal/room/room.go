package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hemolymph/bloodless-server/internal/game"
	"github.com/hemolymph/bloodless-server/internal/logging"
	"github.com/hemolymph/bloodless-server/internal/metrics"
	"github.com/hemolymph/bloodless-server/internal/registry"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

// New constructs an empty Room ready to run. It is not registered and
// its task has not started: the caller registers it with
// registry.Create and then starts Run. outboundBuffer sizes
// each participant's outbound channel (the BROADCAST_BUFFER config
// knob); a value below 1 falls back to defaultOutboundCapacity so a
// caller that forgets to set it still gets a working room rather than
// a zero-capacity channel that could never deliver anything.
func New(id wire.RoomID, outboundBuffer int) *Room {
	if outboundBuffer < 1 {
		outboundBuffer = defaultOutboundCapacity
	}
	return &Room{
		id:              id,
		state:           game.New(),
		participants:    make(map[wire.ParticipantID]chan OutboundRecord),
		outboundBuffer:  outboundBuffer,
		inbound:         make(chan authoredMsg, inboundCapacity),
		admit:           make(chan admitRequest, 64),
		done:            make(chan struct{}),
	}
}

// Run owns the room, already registered under its own id by the caller,
// until it goes desolate (no seated players, no spectators), hits an
// invariant violation, or ctx is canceled.
// It is the only goroutine that ever touches r.state, a single-owner
// rule that makes state mutation lock-free. Run always deletes the
// room's registry entry and closes every participant's outbound channel
// before returning, so callers can rely on Done() to mean full teardown.
func (r *Room) Run(ctx context.Context, reg *registry.Registry[Room], m *metrics.Metrics) {
	defer close(r.done)
	defer reg.Delete(r.id)
	defer r.closeAllOutbound()

	m.RoomsActive.Inc()
	defer m.RoomsActive.Dec()
	start := time.Now()
	defer func() { m.RoomLifetimeSeconds.Observe(time.Since(start).Seconds()) }()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-r.admit:
			ch := make(chan OutboundRecord, r.outboundBuffer)
			r.participants[req.id] = ch
			r.state.Spectators.Insert(req.id)
			req.reply <- admitReply{outbound: ch, view: r.state.ViewFor(nil)}
			m.ParticipantsActive.Inc()
		case am := <-r.inbound:
			m.ActionsProcessed.WithLabelValues(string(r.id)).Inc()
			before := len(r.participants)
			sends := r.dispatch(am.author, am.msg)
			if after := len(r.participants); after < before {
				m.ParticipantsActive.Sub(float64(before - after))
			}
			r.fanOut(sends, m)
			if r.fatal != nil {
				logging.Error(ctx, "room hit an invariant violation, tearing down",
					zap.String("room_id", string(r.id)), zap.String("author_id", string(am.author)),
					zap.Error(r.fatal))
				return
			}
			if r.desolate() {
				logging.Info(ctx, "room desolate, tearing down", zap.String("room_id", string(r.id)))
				return
			}
		}
	}
}

func (r *Room) desolate() bool {
	return !r.home.occupied && !r.away.occupied && r.state.Spectators.Len() == 0
}

func (r *Room) fanOut(sends []pendingSend, m *metrics.Metrics) {
	for _, s := range sends {
		r.nextSeq++
		switch d := s.Dest.(type) {
		case ToAll:
			for id, ch := range r.participants {
				env := s.Env
				if s.PerRecipientUpdate {
					env = wire.Ok(wire.UpdateStateMsg{State: r.state.ViewFor(r.sidePtrOf(id))})
				}
				r.deliver(ch, OutboundRecord{Seq: r.nextSeq, Env: env}, m)
			}
		case ToParticipant:
			if ch, ok := r.participants[d.ID]; ok {
				r.deliver(ch, OutboundRecord{Seq: r.nextSeq, Env: s.Env}, m)
			}
		}
	}
}

// deliver never blocks: a participant whose channel is full has fallen
// behind and will notice the Seq gap on its next delivery, at which
// point it resynchronizes with an Update (see internal/participant).
func (r *Room) deliver(ch chan OutboundRecord, rec OutboundRecord, m *metrics.Metrics) {
	select {
	case ch <- rec:
	default:
		m.BroadcastLagEvents.WithLabelValues(string(r.id)).Inc()
	}
}

func (r *Room) closeAllOutbound() {
	for _, ch := range r.participants {
		close(ch)
	}
}

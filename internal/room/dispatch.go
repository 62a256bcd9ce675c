package room

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/hemolymph/bloodless-server/internal/game"
	"github.com/hemolymph/bloodless-server/internal/wire"
)

// The acceptor resolves a connection's first CreateRoom/JoinRoom against
// the registry before a participant is ever attached to a Room's inbound
// channel, so that first frame never reaches dispatch. Every later
// CreateRoom/JoinRoom the same connection sends does reach here, once
// the participant task is already bound to this room: both cases below
// mirror spec.md's room-level semantics for a room that is already a
// participant's current_room.

// dispatch applies one authored action to state, returning the
// participant-facing replies it produces. Most actions produce exactly
// one ToAll(UpdateState) record; a few additionally or instead reply
// only to the author.
func (r *Room) dispatch(author wire.ParticipantID, msg wire.ClientMsg) []pendingSend {
	switch m := msg.(type) {
	case wire.JoinRoomMsg:
		return r.joinRoom(author, m)
	case wire.CreateRoomMsg:
		return r.errTo(author, wire.AlreadyInGameErr{Action: "create room"})
	case wire.LeaveRoomMsg:
		return r.leave(author)
	case wire.PlayAsMsg:
		return r.playAs(author)
	case wire.SetDeckMsg:
		return r.setDeck(author, m)
	case wire.DrawMsg:
		return r.draw(author, m)
	case wire.MoveMsg:
		return r.move(author, m)
	case wire.ShuffleMsg:
		return r.shuffle(author, m)
	case wire.RequestSearchMsg:
		return r.requestSearch(author, m)
	case wire.FinishSearchMsg:
		return r.finishSearch(author, m)
	case wire.AddCounterMsg:
		return r.addCounter(author, m)
	case wire.CreateCounterMsg:
		return r.createCounter(author, m)
	case wire.AddBloodMsg:
		return r.addBlood(author, m)
	case wire.AddHealthMsg:
		return r.addHealth(author, m)
	case wire.EndTurnMsg:
		return r.endTurn(author)
	case wire.CreateCardMsg:
		return r.createCard(author, m)
	case wire.UpdateMsg:
		return r.updateFor(author)
	default:
		return r.errTo(author, wire.NotInGameErr{Action: "Unknown"})
	}
}

// pendingSend is a reply the room wants fanned out; dispatch builds a
// plain slice of these rather than writing to channels directly so it
// stays trivially unit-testable without goroutines. PerRecipientUpdate,
// when set on a ToAll send, tells fanOut to replace Env with a view
// projected fresh for each recipient instead of delivering Env verbatim
// — every occupant's hand is private, so a room-wide broadcast can never
// carry one shared Env.
type pendingSend struct {
	Dest               Destination
	Env                wire.Envelope
	PerRecipientUpdate bool
}

func (r *Room) errTo(id wire.ParticipantID, e wire.ServerErr) []pendingSend {
	return []pendingSend{{Dest: ToParticipant{ID: id}, Env: wire.Err(e)}}
}

// updateAll refreshes every occupant and spectator, each with a view
// projected for their own seat — see PerRecipientUpdate.
func (r *Room) updateAll() []pendingSend {
	return []pendingSend{{Dest: ToAll{}, PerRecipientUpdate: true}}
}

func (r *Room) sidePtrOf(id wire.ParticipantID) *wire.Side {
	side, ok := r.sideOf(id)
	if !ok {
		return nil
	}
	return &side
}

func (r *Room) updateFor(id wire.ParticipantID) []pendingSend {
	return []pendingSend{{Dest: ToParticipant{ID: id}, Env: wire.Ok(wire.UpdateStateMsg{State: r.state.ViewFor(r.sidePtrOf(id))})}}
}

// updateAuthorAndOpponent replies to author with its own view and, if the
// opposing seat is occupied, to that occupant with the opposing view —
// the narrower fan-out SetDeck and Move use instead of update_all, so
// spectators don't see a state refresh on every private-deck edit.
func (r *Room) updateAuthorAndOpponent(id wire.ParticipantID, side wire.Side) []pendingSend {
	sends := []pendingSend{{Dest: ToParticipant{ID: id}, Env: wire.Ok(wire.UpdateStateMsg{State: r.state.ViewFor(&side)})}}
	oppSide := side.Opposite()
	if opp := r.seatFor(oppSide); opp.occupied {
		sends = append(sends, pendingSend{Dest: ToParticipant{ID: opp.participant}, Env: wire.Ok(wire.UpdateStateMsg{State: r.state.ViewFor(&oppSide)})})
	}
	return sends
}

// sideOf reports the seat, if any, id occupies.
func (r *Room) sideOf(id wire.ParticipantID) (wire.Side, bool) {
	if r.home.occupied && r.home.participant == id {
		return wire.SideHome, true
	}
	if r.away.occupied && r.away.participant == id {
		return wire.SideAway, true
	}
	return "", false
}

func (r *Room) requireSide(id wire.ParticipantID, action string) (wire.Side, []pendingSend) {
	side, ok := r.sideOf(id)
	if !ok {
		return "", r.errTo(id, wire.NotInGameErr{Action: action})
	}
	return side, nil
}

// joinRoom handles a JoinRoom sent by a participant whose current_room is
// already this room. A matching id enrolls (or re-enrolls) the author as
// a spectator and replies with JoinedRoom; any other id is rejected with
// AlreadyInGame, since this task is already committed to a room.
func (r *Room) joinRoom(id wire.ParticipantID, m wire.JoinRoomMsg) []pendingSend {
	if m.Room != r.id {
		return r.errTo(id, wire.AlreadyInGameErr{Action: "join room"})
	}
	r.state.Spectators.Insert(id)
	return []pendingSend{{Dest: ToParticipant{ID: id}, Env: wire.Ok(wire.JoinedRoomMsg{State: r.state.ViewFor(r.sidePtrOf(id))})}}
}

func (r *Room) leave(id wire.ParticipantID) []pendingSend {
	if r.home.occupied && r.home.participant == id {
		r.home = seat{}
	}
	if r.away.occupied && r.away.participant == id {
		r.away = seat{}
	}
	if ch, ok := r.participants[id]; ok {
		close(ch)
		delete(r.participants, id)
	}
	r.state.Spectators.Delete(id)
	return r.updateAll()
}

// playAs seats author in the first open slot, home before away — PlayAs
// carries no side choice over the wire; the room assigns the seat.
func (r *Room) playAs(id wire.ParticipantID) []pendingSend {
	if _, already := r.sideOf(id); already {
		return r.errTo(id, wire.AlreadyInGameErr{Action: "PlayAs"})
	}
	r.state.Spectators.Delete(id)
	var sends []pendingSend
	switch {
	case !r.home.occupied:
		r.home = seat{participant: id, occupied: true}
	case !r.away.occupied:
		r.away = seat{participant: id, occupied: true}
	default:
		r.state.Spectators.Insert(id)
		sends = append(sends, r.errTo(id, wire.GameIsFullErr{})...)
	}
	return append(sends, r.updateFor(id)...)
}

func (r *Room) seatFor(side wire.Side) *seat {
	if side == wire.SideHome {
		return &r.home
	}
	return &r.away
}

// setDeck replaces only the chosen deck with a fresh id sequence; the
// other deck survives untouched (spec.md §4.4: "replace the author's
// chosen deck").
func (r *Room) setDeck(id wire.ParticipantID, m wire.SetDeckMsg) []pendingSend {
	side, errs := r.requireSide(id, "SetDeck")
	if errs != nil {
		return errs
	}
	ps := r.playerStateFor(side)
	ids := make([]wire.CardID, 0, len(m.Names))
	for _, name := range m.Names {
		ids = append(ids, r.state.AllocateCard(name))
	}
	if m.Deck == wire.DeckBlood {
		ps.BloodDeck = ids
	} else {
		ps.MainDeck = ids
	}
	return r.updateAuthorAndOpponent(id, side)
}

func (r *Room) playerStateFor(side wire.Side) *game.PlayerState {
	if side == wire.SideHome {
		return &r.state.Home
	}
	return &r.state.Away
}

func (r *Room) draw(id wire.ParticipantID, m wire.DrawMsg) []pendingSend {
	authorSide, errs := r.requireSide(id, "Draw")
	if errs != nil {
		return errs
	}
	r.state.Draw(m.Side.Resolve(authorSide), authorSide, m.Deck)
	return r.updateAll()
}

func (r *Room) move(id wire.ParticipantID, m wire.MoveMsg) []pendingSend {
	side, errs := r.requireSide(id, "Move")
	if errs != nil {
		return errs
	}
	card, err := r.state.PopCard(m.From, side)
	if err != nil {
		return r.asErr(id, err)
	}
	if err := r.state.PushCard(card, m.To, side); err != nil {
		// Restore the card to its source so a rejected destination (e.g.
		// an occupied Space slot) never strands it outside every zone.
		_ = r.state.PushCard(card, inverseTo(m.From), side)
		return r.asErr(id, err)
	}
	var sends []pendingSend
	if dt := r.playerStateFor(side).Searching; dt != nil {
		sends = append(sends, pendingSend{Dest: ToParticipant{ID: id}, Env: wire.Ok(wire.BeginSearchMsg{Cards: r.namedDeck(r.playerStateFor(side), *dt)})})
	}
	return append(sends, r.updateAuthorAndOpponent(id, side)...)
}

// inverseTo builds a best-effort PlaceTo that returns a card to where a
// PlaceFrom took it from, used only to undo a Move whose destination
// half failed after the source half already succeeded.
func inverseTo(from wire.PlaceFrom) wire.PlaceTo {
	switch v := from.(type) {
	case wire.HandFrom:
		return wire.HandTo{}
	case wire.SpaceFrom:
		return wire.SpaceTo{Side: v.Side, Slot: v.Slot}
	case wire.DiscardFrom:
		return wire.DiscardTo{Side: v.Side}
	case wire.TimelineFrom:
		return wire.TimelineTo{Side: v.Side}
	case wire.DeckFrom:
		return wire.DeckPlaceTo{Direction: wire.DeckTop, Side: v.Side, Deck: v.Deck}
	default:
		return wire.LiberateTo{}
	}
}

func (r *Room) shuffle(id wire.ParticipantID, m wire.ShuffleMsg) []pendingSend {
	side, errs := r.requireSide(id, "Shuffle")
	if errs != nil {
		return errs
	}
	r.state.Shuffle(side, m.Deck, func(n int, swap func(i, j int)) {
		rand.Shuffle(n, swap)
	})
	return r.updateAll()
}

func (r *Room) requestSearch(id wire.ParticipantID, m wire.RequestSearchMsg) []pendingSend {
	side, errs := r.requireSide(id, "RequestSearch")
	if errs != nil {
		return errs
	}
	ps := r.playerStateFor(side)
	deck := m.Deck
	ps.Searching = &deck
	return []pendingSend{{Dest: ToParticipant{ID: id}, Env: wire.Ok(wire.BeginSearchMsg{Cards: r.namedDeck(ps, deck)})}}
}

func (r *Room) namedDeck(ps *game.PlayerState, dt wire.DeckType) []wire.NamedCardID {
	deck := ps.MainDeck
	if dt == wire.DeckBlood {
		deck = ps.BloodDeck
	}
	cards := make([]wire.NamedCardID, 0, len(deck))
	for _, cardID := range deck {
		name, _ := r.state.NameOf(cardID)
		cards = append(cards, wire.NamedCardID{Card: cardID, Name: name})
	}
	return cards
}

func (r *Room) finishSearch(id wire.ParticipantID, _ wire.FinishSearchMsg) []pendingSend {
	side, errs := r.requireSide(id, "FinishSearch")
	if errs != nil {
		return errs
	}
	r.playerStateFor(side).Searching = nil
	return r.updateAll()
}

// fullCardPlace resolves a PlaceFrom that is required to name a full Card
// record (Space or Timeline). found reports whether a card currently sits
// there; zone reports whether place is even one of those two zone kinds —
// AddCounter/CreateCounter against any other zone (hand, discard, decks)
// is an invariant violation per spec, not an ordinary NoCardIn, since
// those zones never hold per-instance counter state.
func (r *Room) fullCardPlace(place wire.PlaceFrom, author wire.Side) (id wire.CardID, found, zone bool) {
	switch v := place.(type) {
	case wire.SpaceFrom:
		ps := r.playerStateFor(v.Side.Resolve(author))
		occ := ps.Row.At(v.Slot)
		if occ == nil {
			return 0, false, true
		}
		return occ.Card, true, true
	case wire.TimelineFrom:
		ps := r.playerStateFor(v.Side.Resolve(author))
		for _, occ := range ps.Timeline {
			if occ.Card == v.Card {
				return v.Card, true, true
			}
		}
		return 0, false, true
	default:
		return 0, false, false
	}
}

func (r *Room) addCounter(id wire.ParticipantID, m wire.AddCounterMsg) []pendingSend {
	side, errs := r.requireSide(id, "AddCounter")
	if errs != nil {
		return errs
	}
	cardID, found, zone := r.fullCardPlace(m.Place, side)
	if !zone {
		r.fatal = fmt.Errorf("AddCounter targeted a zone that cannot carry a full card: %T", m.Place)
		return nil
	}
	if !found {
		return r.errTo(id, wire.NoCardInErr{Place: m.Place})
	}
	r.state.AddCounter(cardID, m.Name, m.Up)
	return r.updateAll()
}

func (r *Room) createCounter(id wire.ParticipantID, m wire.CreateCounterMsg) []pendingSend {
	side, errs := r.requireSide(id, "CreateCounter")
	if errs != nil {
		return errs
	}
	cardID, found, zone := r.fullCardPlace(m.Place, side)
	if !zone {
		r.fatal = fmt.Errorf("CreateCounter targeted a zone that cannot carry a full card: %T", m.Place)
		return nil
	}
	if !found {
		return r.errTo(id, wire.NoCardInErr{Place: m.Place})
	}
	r.state.CreateCounter(cardID, m.Name)
	return r.updateAll()
}

func (r *Room) addBlood(id wire.ParticipantID, m wire.AddBloodMsg) []pendingSend {
	authorSide, errs := r.requireSide(id, "AddBlood")
	if errs != nil {
		return errs
	}
	r.state.AddBlood(m.Side.Resolve(authorSide), m.Up)
	return r.updateAll()
}

func (r *Room) addHealth(id wire.ParticipantID, m wire.AddHealthMsg) []pendingSend {
	if _, errs := r.requireSide(id, "AddHealth"); errs != nil {
		return errs
	}
	r.state.AddHealth(m.Up)
	return r.updateAll()
}

func (r *Room) endTurn(id wire.ParticipantID) []pendingSend {
	if _, errs := r.requireSide(id, "EndTurn"); errs != nil {
		return errs
	}
	return r.updateFor(id)
}

func (r *Room) createCard(id wire.ParticipantID, m wire.CreateCardMsg) []pendingSend {
	side, errs := r.requireSide(id, "CreateCard")
	if errs != nil {
		return errs
	}
	cardID := r.state.AllocateCard(m.Name)
	r.playerStateFor(side).Hand = append(r.playerStateFor(side).Hand, cardID)
	return r.updateAll()
}

// asErr unwraps a ServerErr carried inside a wrapped error, or falls
// back to a generic NotInGame if the error isn't one of ours — as for
// PushCard's plain error on an already occupied Space slot.
func (r *Room) asErr(id wire.ParticipantID, err error) []pendingSend {
	var serr wire.ServerErr
	if errors.As(err, &serr) {
		return r.errTo(id, serr)
	}
	return r.errTo(id, wire.NotInGameErr{Action: "Move"})
}

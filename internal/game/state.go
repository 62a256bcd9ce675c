// Package game holds the canonical, id-indexed table-game state a room
// task mutates directly: the card name table, both players' zones, and
// the shared health total. Nothing here takes a lock: mutation happens
// only on the single goroutine that owns the room task, so State is not
// safe to share across goroutines.
package game

import (
	"fmt"

	"k8s.io/utils/set"

	"github.com/hemolymph/bloodless-server/internal/wire"
)

// Occupant is a Space slot's contents: a card id plus whether it is
// placed face down. Face-down status lives on the slot, not the card
// record, since the same card could in principle re-enter face up later.
type Occupant struct {
	Card     wire.CardID
	FaceDown bool
}

// PlayerState is one side's zones. Decks are ordered slices; the back of
// the slice is the draw end (Draw and DeckTop use it), uniformly for both
// sides, while Deck(Top, ...) pushes land at the front (see PushCard).
// Timeline, like Row, is a full-card
// zone: its entries carry backside state, not just an id, since a card
// moved there from Row must keep whatever face it was showing.
type PlayerState struct {
	Hand      []wire.CardID
	MainDeck  []wire.CardID
	BloodDeck []wire.CardID
	Blood     int64
	Discard   []wire.CardID
	Timeline  []Occupant
	Row       wire.Row[Occupant]

	// Searching names the deck this player is currently inspecting via
	// RequestSearch, or nil when not searching.
	Searching *wire.DeckType
}

// State is the full canonical state of one room's game: the card name
// table, both players' zones, and shared health.
type State struct {
	Cards      map[wire.CardID]*wire.Card
	nextID     wire.CardID
	Home       PlayerState
	Away       PlayerState
	Health     int64
	Spectators set.Set[wire.ParticipantID]
}

// initialHealth is the shared health total a fresh room starts with.
const initialHealth = 20

// New returns an empty game ready for two PlayAs calls and two SetDeck
// calls before anything else makes sense.
func New() *State {
	return &State{
		Cards:      make(map[wire.CardID]*wire.Card),
		Spectators: set.New[wire.ParticipantID](),
		Health:     initialHealth,
	}
}

func (s *State) playerState(side wire.Side) *PlayerState {
	if side == wire.SideHome {
		return &s.Home
	}
	return &s.Away
}

// AllocateCard mints a fresh CardID, records name in the table, and
// returns it. IDs are never reused within a room's lifetime.
func (s *State) AllocateCard(name string) wire.CardID {
	s.nextID++
	id := s.nextID
	s.Cards[id] = &wire.Card{ID: id, Name: name, Counters: map[string]int64{}}
	return id
}

// NameOf returns the name table entry for id, or false if the id was
// never allocated in this room.
func (s *State) NameOf(id wire.CardID) (string, bool) {
	c, ok := s.Cards[id]
	if !ok {
		return "", false
	}
	return c.Name, true
}

// Card returns the full record for id, or false if unallocated.
func (s *State) Card(id wire.CardID) (*wire.Card, bool) {
	c, ok := s.Cards[id]
	return c, ok
}

func removeAt[T any](xs []T, i int) []T {
	return append(xs[:i], xs[i+1:]...)
}

func findCard(xs []wire.CardID, id wire.CardID) int {
	for i, x := range xs {
		if x == id {
			return i
		}
	}
	return -1
}

func findOccupant(xs []Occupant, id wire.CardID) int {
	for i, x := range xs {
		if x.Card == id {
			return i
		}
	}
	return -1
}

// PoppedCard is what PopCard hands back: a bare id plus whatever
// per-instance backside state the source zone was carrying. Bare-id
// zones (hand, discard, decks) always report FaceDown false, matching
// the "promote with backside: false" default a full-card destination
// applies when only a bare id was popped. Full-card zones (Space,
// Timeline) report the occupant's real backside so a destination that
// has no flip control of its own (Timeline) can carry it forward.
type PoppedCard struct {
	ID       wire.CardID
	FaceDown bool
}

// PopCard removes and returns the card addressed by from, resolved
// against authorSide. Aside is declared in the wire schema but never
// resolves to a real zone, so it always fails with NoCardIn.
func (s *State) PopCard(from wire.PlaceFrom, authorSide wire.Side) (PoppedCard, error) {
	switch v := from.(type) {
	case wire.HandFrom:
		ps := s.playerState(authorSide)
		i := findCard(ps.Hand, v.Card)
		if i < 0 {
			return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
		}
		ps.Hand = removeAt(ps.Hand, i)
		return PoppedCard{ID: v.Card}, nil
	case wire.SpaceFrom:
		ps := s.playerState(v.Side.Resolve(authorSide))
		occ := ps.Row.At(v.Slot)
		if occ == nil {
			return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
		}
		popped := PoppedCard{ID: occ.Card, FaceDown: occ.FaceDown}
		ps.Row.Set(v.Slot, nil)
		return popped, nil
	case wire.DiscardFrom:
		ps := s.playerState(v.Side.Resolve(authorSide))
		i := findCard(ps.Discard, v.Card)
		if i < 0 {
			return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
		}
		ps.Discard = removeAt(ps.Discard, i)
		return PoppedCard{ID: v.Card}, nil
	case wire.TimelineFrom:
		ps := s.playerState(v.Side.Resolve(authorSide))
		i := findOccupant(ps.Timeline, v.Card)
		if i < 0 {
			return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
		}
		occ := ps.Timeline[i]
		ps.Timeline = removeAt(ps.Timeline, i)
		return PoppedCard{ID: occ.Card, FaceDown: occ.FaceDown}, nil
	case wire.DeckFrom:
		ps := s.playerState(v.Side.Resolve(authorSide))
		deck := ps.deckFor(v.Deck)
		i := findCard(*deck, v.Card)
		if i < 0 {
			return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
		}
		*deck = removeAt(*deck, i)
		return PoppedCard{ID: v.Card}, nil
	case wire.AsideFrom:
		return PoppedCard{}, fmt.Errorf("%w", wire.NoCardInErr{Place: from})
	default:
		return PoppedCard{}, fmt.Errorf("pop card: unhandled PlaceFrom %T", from)
	}
}

// PushCard inserts card into the zone addressed by to, resolved against
// authorSide. Aside never resolves to a real zone, so pushing there
// always fails with NoCardIn (the room then returns the card to its
// source); Liberate intentionally removes the card from every zone
// without a new home. Bare-id destinations ignore card.FaceDown; Space's own Flipped
// field always wins over whatever the source reported, since Space is
// the one zone whose wire payload carries an explicit flip control.
// Timeline has no such control, so it carries card.FaceDown forward
// unchanged — a card leaving Row face down arrives in Timeline face down.
func (s *State) PushCard(card PoppedCard, to wire.PlaceTo, authorSide wire.Side) error {
	id := card.ID
	switch v := to.(type) {
	case wire.HandTo:
		ps := s.playerState(authorSide)
		ps.Hand = append(ps.Hand, id)
		return nil
	case wire.SpaceTo:
		ps := s.playerState(v.Side.Resolve(authorSide))
		if ps.Row.At(v.Slot) != nil {
			return fmt.Errorf("push card: slot %v already occupied", v.Slot)
		}
		ps.Row.Set(v.Slot, &Occupant{Card: id, FaceDown: v.Flipped})
		return nil
	case wire.DiscardTo:
		ps := s.playerState(v.Side.Resolve(authorSide))
		ps.Discard = append(ps.Discard, id)
		return nil
	case wire.TimelineTo:
		ps := s.playerState(v.Side.Resolve(authorSide))
		ps.Timeline = append(ps.Timeline, Occupant{Card: id, FaceDown: card.FaceDown})
		return nil
	case wire.DeckPlaceTo:
		// pop_back is "drawing from the top" (see Draw), so the deque's
		// back is the draw point. Confusingly, Deck(Top, ...) still
		// pushes to the deque's front and Deck(Bottom, ...) to its back —
		// the wire names these ends from the player's mental model, not
		// from deque orientation.
		ps := s.playerState(v.Side.Resolve(authorSide))
		deck := ps.deckFor(v.Deck)
		if v.Direction == wire.DeckTop {
			*deck = append([]wire.CardID{id}, *deck...)
		} else {
			*deck = append(*deck, id)
		}
		return nil
	case wire.AsideTo:
		return fmt.Errorf("%w", wire.NoCardInErr{})
	case wire.LiberateTo:
		return nil
	default:
		return fmt.Errorf("push card: unhandled PlaceTo %T", to)
	}
}

func (ps *PlayerState) deckFor(dt wire.DeckType) *[]wire.CardID {
	if dt == wire.DeckBlood {
		return &ps.BloodDeck
	}
	return &ps.MainDeck
}

// DeckTop returns the id at the top of the chosen deck (the back of the
// slice), or false if the deck is empty.
func (ps *PlayerState) DeckTop(dt wire.DeckType) (wire.CardID, bool) {
	deck := *ps.deckFor(dt)
	if len(deck) == 0 {
		return 0, false
	}
	return deck[len(deck)-1], true
}

// Draw pops the top card (the back of the slice) of deckSide's chosen
// deck and pushes it onto handSide's hand — ordinarily the same side, but
// the wire protocol lets the author draw from either side's deck into
// their own hand via the RelSide parameter. Drawing from an empty deck is
// a silent no-op: deck-out is not a loss condition here.
func (s *State) Draw(deckSide, handSide wire.Side, dt wire.DeckType) (wire.CardID, bool) {
	deck := s.playerState(deckSide).deckFor(dt)
	if len(*deck) == 0 {
		return 0, false
	}
	last := len(*deck) - 1
	id := (*deck)[last]
	*deck = (*deck)[:last]
	hand := s.playerState(handSide)
	hand.Hand = append(hand.Hand, id)
	return id, true
}

// saturatingAdd adds delta to cur, clamping at 0 from below. blood and
// health never go negative (spec invariant 7).
func saturatingAdd(cur, delta int64) int64 {
	if delta < 0 && -delta > cur {
		return 0
	}
	return cur + delta
}

// AddBlood applies a saturating +1/-1 to side's blood counter.
func (s *State) AddBlood(side wire.Side, up bool) {
	ps := s.playerState(side)
	if up {
		ps.Blood = saturatingAdd(ps.Blood, 1)
	} else {
		ps.Blood = saturatingAdd(ps.Blood, -1)
	}
}

// AddHealth applies a saturating +1/-1 to the shared health total.
func (s *State) AddHealth(up bool) {
	if up {
		s.Health = saturatingAdd(s.Health, 1)
	} else {
		s.Health = saturatingAdd(s.Health, -1)
	}
}

// AddCounter applies a saturating +1/-1 to a card's named counter.
func (s *State) AddCounter(id wire.CardID, name string, up bool) {
	card := s.Cards[id]
	if up {
		card.Counters[name] = saturatingAdd(card.Counters[name], 1)
	} else {
		card.Counters[name] = saturatingAdd(card.Counters[name], -1)
	}
}

// CreateCounter ensures a zero-valued counter entry exists on id, without
// disturbing an existing value.
func (s *State) CreateCounter(id wire.CardID, name string) {
	card := s.Cards[id]
	if _, exists := card.Counters[name]; !exists {
		card.Counters[name] = 0
	}
}

// Shuffle randomizes the order of the chosen deck using the supplied
// entropy source, so room logic (and tests) control determinism.
func (s *State) Shuffle(side wire.Side, dt wire.DeckType, shuffler func(n int, swap func(i, j int))) {
	ps := s.playerState(side)
	deck := ps.deckFor(dt)
	shuffler(len(*deck), func(i, j int) { (*deck)[i], (*deck)[j] = (*deck)[j], (*deck)[i] })
}

package game

import "github.com/hemolymph/bloodless-server/internal/wire"

// ViewFor projects the canonical state into the LocalState one recipient
// is entitled to see. recipient names the seated side the view's "own"
// perspective belongs to; nil means a spectator, who gets the
// home-perspective projection (Home's hand visible, Away's private) —
// the viewing side defaults to Home when no side is given.
func (s *State) ViewFor(recipient *wire.Side) wire.LocalState {
	viewing := wire.SideHome
	if recipient != nil {
		viewing = *recipient
	}
	return wire.LocalState{
		Home:       s.localPlayerState(wire.SideHome, viewing),
		Away:       s.localPlayerState(wire.SideAway, viewing),
		Health:     s.Health,
		Spectators: s.spectatorList(),
		AuthorSide: recipient,
	}
}

func (s *State) spectatorList() []wire.ParticipantID {
	ids := s.Spectators.UnsortedList()
	out := make([]wire.ParticipantID, len(ids))
	copy(out, ids)
	return out
}

func (s *State) localPlayerState(side wire.Side, viewing wire.Side) wire.LocalPlayerState {
	ps := s.playerState(side)
	owned := viewing == side

	lps := wire.LocalPlayerState{
		Hand:          s.localHand(ps.Hand, owned),
		MainDeckSize:  len(ps.MainDeck),
		BloodDeckSize: len(ps.BloodDeck),
		Blood:         ps.Blood,
		Discard:       s.localCards(ps.Discard),
		Timeline:      s.localTimeline(ps.Timeline),
	}
	if top, ok := ps.DeckTop(wire.DeckMain); ok {
		lps.MainTop = &wire.DeckTop{Card: top}
	}
	if top, ok := ps.DeckTop(wire.DeckBlood); ok {
		lps.BloodTop = &wire.DeckTop{Card: top}
	}
	lps.Row = s.localRow(ps.Row)
	return lps
}

// localHand expands the recipient's own hand into named entries. The
// opposing hand is private and never appears in the view at all — not
// even as Hidden entries, which would leak its size — so callers get an
// empty slice for any side but the recipient's own.
func (s *State) localHand(hand []wire.CardID, owned bool) []wire.LocalCard {
	if !owned {
		return []wire.LocalCard{}
	}
	out := make([]wire.LocalCard, 0, len(hand))
	for _, id := range hand {
		out = append(out, s.localCard(id, true))
	}
	return out
}

func (s *State) localCards(ids []wire.CardID) []wire.LocalCard {
	out := make([]wire.LocalCard, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.localCard(id, true))
	}
	return out
}

// localTimeline mirrors localRow: each entry carries its own backside
// state, so a card placed face down keeps its name hidden wherever its
// timeline position puts it, same as it would in Row.
func (s *State) localTimeline(timeline []Occupant) []wire.LocalCard {
	out := make([]wire.LocalCard, 0, len(timeline))
	for _, occ := range timeline {
		out = append(out, s.localCard(occ.Card, !occ.FaceDown))
	}
	return out
}

func (s *State) localRow(row wire.Row[Occupant]) wire.Row[wire.LocalCard] {
	var out wire.Row[wire.LocalCard]
	for _, slot := range []wire.Space{wire.SpaceFirst, wire.SpaceSecond, wire.SpaceThird, wire.SpaceFourth} {
		occ := row.At(slot)
		if occ == nil {
			continue
		}
		lc := s.localCard(occ.Card, !occ.FaceDown)
		out.Set(slot, &lc)
	}
	return out
}

// localCard builds the projection for a single card: visible controls
// whether the name is revealed, counters are always revealed since they
// carry no hidden information in this game.
func (s *State) localCard(id wire.CardID, visible bool) wire.LocalCard {
	lc := wire.LocalCard{ID: id, Counters: map[string]int64{}}
	card, ok := s.Cards[id]
	if ok {
		for k, v := range card.Counters {
			lc.Counters[k] = v
		}
	}
	if visible && ok {
		lc.Name = wire.NewUnhidden(card.Name)
	} else {
		lc.Name = wire.NewHidden[string]()
	}
	return lc
}

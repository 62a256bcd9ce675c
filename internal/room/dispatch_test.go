package room

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemolymph/bloodless-server/internal/wire"
)

func newTestRoom() *Room {
	r := New("table-1", 16)
	return r
}

func firstEnvelope(t *testing.T, sends []pendingSend) wire.Envelope {
	t.Helper()
	require.NotEmpty(t, sends)
	return sends[0].Env
}

func TestPlayAsSeatsBothSides(t *testing.T) {
	r := newTestRoom()

	sends := r.dispatch("home-1", wire.PlayAsMsg{})
	env := firstEnvelope(t, sends)
	require.Nil(t, env.Err)

	sends = r.dispatch("away-1", wire.PlayAsMsg{})
	env = firstEnvelope(t, sends)
	require.Nil(t, env.Err)

	side, ok := r.sideOf("home-1")
	require.True(t, ok)
	require.Equal(t, wire.SideHome, side)

	side, ok = r.sideOf("away-1")
	require.True(t, ok)
	require.Equal(t, wire.SideAway, side)
}

func TestPlayAsRejectsWhenBothSeatsTaken(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("away-1", wire.PlayAsMsg{})

	sends := r.dispatch("spectator-1", wire.PlayAsMsg{})
	var errs []wire.ServerErr
	for _, s := range sends {
		if s.Env.Err != nil {
			errs = append(errs, s.Env.Err)
		}
	}
	require.Contains(t, errs, wire.GameIsFullErr{})
}

func TestPlayAsRejectsAlreadySeatedAuthor(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})

	sends := r.dispatch("home-1", wire.PlayAsMsg{})
	env := firstEnvelope(t, sends)
	require.Equal(t, wire.AlreadyInGameErr{Action: "PlayAs"}, env.Err)
}

func TestActionsRequireASeat(t *testing.T) {
	r := newTestRoom()
	sends := r.dispatch("spectator-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	env := firstEnvelope(t, sends)
	require.Equal(t, wire.NotInGameErr{Action: "Draw"}, env.Err)
}

func TestSetDeckAllocatesIDsAndDrawMovesThem(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf", "Bat", "Imp"}})

	require.Len(t, r.state.Home.MainDeck, 3)
	ids := map[wire.CardID]bool{}
	for _, id := range r.state.Home.MainDeck {
		require.False(t, ids[id], "card ids must be unique")
		ids[id] = true
	}

	sends := r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	require.NotEmpty(t, sends)
	require.Len(t, r.state.Home.Hand, 1)
	require.Len(t, r.state.Home.MainDeck, 2)

	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	require.Len(t, r.state.Home.Hand, 2)
	require.Len(t, r.state.Home.MainDeck, 1)
}

func TestSetDeckOnlyReplacesTheNamedDeck(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf", "Bat"}})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckBlood, Names: []string{"Vial"}})
	require.Len(t, r.state.Home.MainDeck, 2, "setting the blood deck must not clobber the main deck")

	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Imp"}})
	require.Len(t, r.state.Home.BloodDeck, 1, "setting the main deck must not clobber the blood deck")
	require.Len(t, r.state.Home.MainDeck, 1)
}

func TestMoveFromHandToSpace(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf"}})
	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	cardID := r.state.Home.Hand[0]

	sends := r.dispatch("home-1", wire.MoveMsg{
		From: wire.HandFrom{Card: cardID},
		To:   wire.SpaceTo{Side: wire.RelSame, Slot: wire.SpaceFirst},
	})
	env := firstEnvelope(t, sends)
	require.Nil(t, env.Err)
	require.Empty(t, r.state.Home.Hand)
	occ := r.state.Home.Row.At(wire.SpaceFirst)
	require.NotNil(t, occ)
	require.Equal(t, cardID, occ.Card)
}

func TestMoveFromEmptyHandFails(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})

	sends := r.dispatch("home-1", wire.MoveMsg{
		From: wire.HandFrom{Card: 999},
		To:   wire.SpaceTo{Side: wire.RelSame, Slot: wire.SpaceFirst},
	})
	env := firstEnvelope(t, sends)
	require.NotNil(t, env.Err)
	_, isNoCardIn := env.Err.(wire.NoCardInErr)
	require.True(t, isNoCardIn)
}

func TestMoveToOccupiedSlotRestoresSourceCard(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf", "Bat"}})
	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	first, second := r.state.Home.Hand[0], r.state.Home.Hand[1]

	r.dispatch("home-1", wire.MoveMsg{
		From: wire.HandFrom{Card: first},
		To:   wire.SpaceTo{Side: wire.RelSame, Slot: wire.SpaceFirst},
	})
	sends := r.dispatch("home-1", wire.MoveMsg{
		From: wire.HandFrom{Card: second},
		To:   wire.SpaceTo{Side: wire.RelSame, Slot: wire.SpaceFirst},
	})
	env := firstEnvelope(t, sends)
	require.NotNil(t, env.Err)

	require.Contains(t, r.state.Home.Hand, second)
	occ := r.state.Home.Row.At(wire.SpaceFirst)
	require.NotNil(t, occ)
	require.Equal(t, first, occ.Card)
}

func TestAsideIsAlwaysRejected(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})

	sends := r.dispatch("home-1", wire.MoveMsg{
		From: wire.AsideFrom{Card: 1},
		To:   wire.HandTo{},
	})
	env := firstEnvelope(t, sends)
	_, isNoCardIn := env.Err.(wire.NoCardInErr)
	require.True(t, isNoCardIn)
}

func TestRequestSearchHonorsDeckType(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckBlood, Names: []string{"Vial"}})

	sends := r.dispatch("home-1", wire.RequestSearchMsg{Deck: wire.DeckBlood})
	require.Len(t, sends, 1)
	begin, ok := sends[0].Env.Ok.(wire.BeginSearchMsg)
	require.True(t, ok)
	require.Len(t, begin.Cards, 1)
	require.Equal(t, "Vial", begin.Cards[0].Name)
}

func TestEndTurnRepliesOnlyToAuthor(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("away-1", wire.PlayAsMsg{})

	sends := r.dispatch("home-1", wire.EndTurnMsg{})
	require.Len(t, sends, 1)
	dest, ok := sends[0].Dest.(ToParticipant)
	require.True(t, ok)
	require.Equal(t, wire.ParticipantID("home-1"), dest.ID)
}

func TestLeaveVacatesSeatAndNotifiesAll(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("away-1", wire.PlayAsMsg{})

	sends := r.dispatch("home-1", wire.LeaveRoomMsg{})
	require.Len(t, sends, 1)
	_, isToAll := sends[0].Dest.(ToAll)
	require.True(t, isToAll)

	_, ok := r.sideOf("home-1")
	require.False(t, ok)
	require.False(t, r.home.occupied)
}

func TestAddCounterAndCreateCounterOnSpaceOccupant(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf"}})
	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	cardID := r.state.Home.Hand[0]
	r.dispatch("home-1", wire.MoveMsg{
		From: wire.HandFrom{Card: cardID},
		To:   wire.SpaceTo{Side: wire.RelSame, Slot: wire.SpaceFirst},
	})

	place := wire.SpaceFrom{Side: wire.RelSame, Slot: wire.SpaceFirst}
	r.dispatch("home-1", wire.CreateCounterMsg{Place: place, Name: "mana"})
	for i := 0; i < 3; i++ {
		r.dispatch("home-1", wire.AddCounterMsg{Place: place, Name: "mana", Up: true})
	}
	r.dispatch("home-1", wire.AddCounterMsg{Place: place, Name: "mana", Up: false})

	card, ok := r.state.Card(cardID)
	require.True(t, ok)
	require.Equal(t, int64(2), card.Counters["mana"])
}

func TestAddCounterOnHandZoneIsFatal(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})
	r.dispatch("home-1", wire.SetDeckMsg{Deck: wire.DeckMain, Names: []string{"Wolf"}})
	r.dispatch("home-1", wire.DrawMsg{Side: wire.RelSame, Deck: wire.DeckMain})
	cardID := r.state.Home.Hand[0]

	r.dispatch("home-1", wire.AddCounterMsg{Place: wire.HandFrom{Card: cardID}, Name: "mana", Up: true})
	require.Error(t, r.fatal)
}

func TestJoinRoomMatchingIDEnrollsSpectatorAndRepliesJoinedRoom(t *testing.T) {
	r := newTestRoom()

	sends := r.dispatch("spectator-1", wire.JoinRoomMsg{Room: "table-1"})
	require.Len(t, sends, 1)
	_, ok := sends[0].Env.Ok.(wire.JoinedRoomMsg)
	require.True(t, ok)
	require.True(t, r.state.Spectators.Has("spectator-1"))
}

func TestJoinRoomMismatchedIDIsAlreadyInGame(t *testing.T) {
	r := newTestRoom()

	sends := r.dispatch("spectator-1", wire.JoinRoomMsg{Room: "other-room"})
	env := firstEnvelope(t, sends)
	require.Equal(t, wire.AlreadyInGameErr{Action: "join room"}, env.Err)
}

func TestCreateRoomOnceAlreadyBoundIsAlreadyInGame(t *testing.T) {
	r := newTestRoom()

	sends := r.dispatch("home-1", wire.CreateRoomMsg{Room: "table-1"})
	env := firstEnvelope(t, sends)
	require.Equal(t, wire.AlreadyInGameErr{Action: "create room"}, env.Err)
}

func TestAddBloodAndHealthSaturateAtZero(t *testing.T) {
	r := newTestRoom()
	r.dispatch("home-1", wire.PlayAsMsg{})

	r.dispatch("home-1", wire.AddBloodMsg{Side: wire.RelSame, Up: false})
	require.Equal(t, int64(0), r.state.Home.Blood)

	for i := 0; i < 25; i++ {
		r.dispatch("home-1", wire.AddHealthMsg{Up: false})
	}
	require.Equal(t, int64(0), r.state.Health)
}

package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientMsgRoundTrip(t *testing.T) {
	cases := []ClientMsg{
		CreateRoomMsg{Room: "table-1"},
		JoinRoomMsg{Room: "table-1"},
		LeaveRoomMsg{},
		PlayAsMsg{},
		SetDeckMsg{Deck: DeckMain, Names: []string{"Wolf", "Bat"}},
		DrawMsg{Side: RelSame, Deck: DeckMain},
		MoveMsg{
			From: HandFrom{Card: 5},
			To:   SpaceTo{Side: RelSame, Slot: SpaceSecond, Flipped: false},
		},
		ShuffleMsg{Deck: DeckBlood},
		RequestSearchMsg{Deck: DeckBlood},
		FinishSearchMsg{},
		AddCounterMsg{Place: SpaceFrom{Side: RelSame, Slot: SpaceFirst}, Name: "mana", Up: true},
		CreateCounterMsg{Place: SpaceFrom{Side: RelSame, Slot: SpaceFirst}, Name: "mana"},
		AddBloodMsg{Side: RelSame, Up: true},
		AddHealthMsg{Up: false},
		EndTurnMsg{},
		CreateCardMsg{Name: "Imp"},
		UpdateMsg{},
	}
	for _, want := range cases {
		raw, err := EncodeClientMsg(want)
		require.NoError(t, err)
		got, err := DecodeClientMsg(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestClientMsgUnitVariantsAreBareStrings(t *testing.T) {
	raw, err := EncodeClientMsg(LeaveRoomMsg{})
	require.NoError(t, err)
	require.JSONEq(t, `"LeaveRoom"`, string(raw))
}

func TestClientMsgDataVariantIsDiscriminatorObject(t *testing.T) {
	raw, err := EncodeClientMsg(JoinRoomMsg{Room: "table-1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"JoinRoom":"table-1"}`, string(raw))
}

func TestServerMsgRoundTrip(t *testing.T) {
	state := LocalState{
		Home: LocalPlayerState{
			Hand:     []LocalCard{{ID: 1, Name: NewUnhidden("Wolf"), Counters: map[string]int64{}}},
			MainTop:  &DeckTop{Card: 9},
			Blood:    2,
			Discard:  []LocalCard{},
			Timeline: []LocalCard{},
		},
		Away: LocalPlayerState{
			Hand:     []LocalCard{{ID: 2, Name: NewHidden[string](), Counters: map[string]int64{}}},
			Discard:  []LocalCard{},
			Timeline: []LocalCard{},
		},
		Health: 20,
	}
	cases := []ServerMsg{
		RoomCreatedMsg{Room: "table-1"},
		JoinedRoomMsg{State: state},
		UpdateStateMsg{State: state},
		BeginSearchMsg{Cards: []NamedCardID{{Card: 1, Name: "Wolf"}}},
	}
	for _, want := range cases {
		raw, err := EncodeServerMsg(want)
		require.NoError(t, err)
		got, err := DecodeServerMsg(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestServerErrRoundTrip(t *testing.T) {
	cases := []ServerErr{
		RoomDoesntExistErr{Room: "ghost"},
		RoomAlreadyExistErr{Room: "table-1"},
		NotInGameErr{Action: "Move"},
		NotInSideErr{},
		NoPlayerInSideErr{Side: SideHome},
		NoCardInErr{Place: AsideFrom{Card: 4}},
		SideOccupiedErr{Side: SideAway},
		GameIsFullErr{},
		AlreadyInGameErr{Action: "PlayAs"},
	}
	for _, want := range cases {
		raw, err := EncodeServerErr(want)
		require.NoError(t, err)
		got, err := DecodeServerErr(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestHiddenMarshalsAsUnitOrTagged(t *testing.T) {
	hidden := NewHidden[string]()
	raw, err := json.Marshal(hidden)
	require.NoError(t, err)
	require.JSONEq(t, `"Hidden"`, string(raw))

	visible := NewUnhidden("Wolf")
	raw, err = json.Marshal(visible)
	require.NoError(t, err)
	require.JSONEq(t, `{"Unhidden":"Wolf"}`, string(raw))

	var back Hidden[string]
	require.NoError(t, json.Unmarshal(raw, &back))
	name, ok := back.Visible()
	require.True(t, ok)
	require.Equal(t, "Wolf", name)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	e := Ok(RoomCreatedMsg{Room: "table-1"})
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var back Envelope
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Nil(t, back.Err)
	require.Equal(t, RoomCreatedMsg{Room: "table-1"}, back.Ok)

	e = Err(GameIsFullErr{})
	raw, err = json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, GameIsFullErr{}, back.Err)
}

func TestDecodeClientMsgRejectsMultiKeyObject(t *testing.T) {
	_, err := DecodeClientMsg([]byte(`{"CreateRoom":"a","JoinRoom":"b"}`))
	require.Error(t, err)
}

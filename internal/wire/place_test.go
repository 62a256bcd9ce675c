package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceFromRoundTrip(t *testing.T) {
	cases := []PlaceFrom{
		HandFrom{Card: 7},
		SpaceFrom{Side: RelSame, Slot: SpaceThird},
		DiscardFrom{Side: RelOther, Card: 3},
		AsideFrom{Card: 9},
		TimelineFrom{Side: RelSame, Card: 1},
		DeckFrom{Side: RelOther, Deck: DeckBlood, Card: 42},
	}
	for _, want := range cases {
		raw, err := EncodePlaceFrom(want)
		require.NoError(t, err)
		got, err := DecodePlaceFrom(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPlaceToRoundTrip(t *testing.T) {
	cases := []PlaceTo{
		HandTo{},
		SpaceTo{Side: RelSame, Slot: SpaceFirst, Flipped: true},
		DiscardTo{Side: RelOther},
		AsideTo{},
		TimelineTo{Side: RelSame},
		DeckPlaceTo{Direction: DeckTop, Side: RelOther, Deck: DeckMain},
		LiberateTo{},
	}
	for _, want := range cases {
		raw, err := EncodePlaceTo(want)
		require.NoError(t, err)
		got, err := DecodePlaceTo(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDecodePlaceFromRejectsUnitValue(t *testing.T) {
	_, err := DecodePlaceFrom([]byte(`"Hand"`))
	require.Error(t, err)
}

func TestDecodePlaceToRejectsUnknownTag(t *testing.T) {
	_, err := DecodePlaceTo([]byte(`{"Nowhere": {}}`))
	require.Error(t, err)
}

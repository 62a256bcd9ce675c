package wire

import (
	"encoding/json"
	"fmt"
)

// Side is one of the two seatable roles in a room.
type Side string

const (
	SideHome Side = "Home"
	SideAway Side = "Away"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

func (s Side) valid() bool { return s == SideHome || s == SideAway }

// RelSide is resolved against the author's seat at the moment the room
// processes an action, making every action side-agnostic over the wire.
type RelSide string

const (
	RelSame  RelSide = "Same"
	RelOther RelSide = "Other"
)

// Resolve converts a RelSide to an absolute Side given the acting side.
func (r RelSide) Resolve(author Side) Side {
	if r == RelOther {
		return author.Opposite()
	}
	return author
}

func (r RelSide) valid() bool { return r == RelSame || r == RelOther }

// DeckType selects which of a player's two decks an operation targets.
type DeckType string

const (
	DeckMain  DeckType = "Main"
	DeckBlood DeckType = "Blood"
)

func (d DeckType) valid() bool { return d == DeckMain || d == DeckBlood }

// Space is one of the four fixed row slots.
type Space string

const (
	SpaceFirst  Space = "First"
	SpaceSecond Space = "Second"
	SpaceThird  Space = "Third"
	SpaceFourth Space = "Fourth"
)

// Index returns the 0-3 array index for the slot.
func (s Space) Index() int {
	switch s {
	case SpaceFirst:
		return 0
	case SpaceSecond:
		return 1
	case SpaceThird:
		return 2
	case SpaceFourth:
		return 3
	default:
		return -1
	}
}

func (s Space) valid() bool { return s.Index() >= 0 }

// DeckEnd selects which end of a deck a card is pushed onto. Named from
// the player's mental model ("top"/"bottom"), not the underlying slice
// orientation — see internal/game for the pop-back-is-top convention.
type DeckEnd string

const (
	DeckTop    DeckEnd = "Top"
	DeckBottom DeckEnd = "Bottom"
)

func (d DeckEnd) valid() bool { return d == DeckTop || d == DeckBottom }

func unmarshalEnum[T ~string](data []byte, allowed func(T) bool, kind string) (T, error) {
	var s T
	if err := json.Unmarshal(data, (*string)(&s)); err != nil {
		return s, fmt.Errorf("decode %s: %w", kind, err)
	}
	if !allowed(s) {
		return s, fmt.Errorf("decode %s: unknown value %q", kind, s)
	}
	return s, nil
}

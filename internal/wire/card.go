package wire

import (
	"encoding/json"
	"fmt"
)

// Card is the full record a room keeps for a card it has allocated a
// CardID for: a name-table entry and its counters. Face-down state is
// not kept here; it lives on the Row or Timeline slot holding the card.
type Card struct {
	ID       CardID
	Name     string
	Counters map[string]int64
}

// Row holds the four fixed slots of one side's battlefield. Index by
// Space.Index(); a nil entry is an empty slot.
type Row[T any] struct {
	First  *T
	Second *T
	Third  *T
	Fourth *T
}

// At returns the slot contents for the given space.
func (r *Row[T]) At(s Space) *T {
	switch s {
	case SpaceFirst:
		return r.First
	case SpaceSecond:
		return r.Second
	case SpaceThird:
		return r.Third
	case SpaceFourth:
		return r.Fourth
	default:
		return nil
	}
}

// Set assigns the slot contents for the given space.
func (r *Row[T]) Set(s Space, v *T) {
	switch s {
	case SpaceFirst:
		r.First = v
	case SpaceSecond:
		r.Second = v
	case SpaceThird:
		r.Third = v
	case SpaceFourth:
		r.Fourth = v
	}
}

// Hidden wraps a value that may or may not be visible to the recipient a
// view was built for: Unhidden carries the real value, Hidden carries
// nothing. This is how LocalCard hides a face-down card's name.
type Hidden[T any] struct {
	visible bool
	value   T
}

func NewHidden[T any]() Hidden[T] {
	return Hidden[T]{}
}

func NewUnhidden[T any](v T) Hidden[T] {
	return Hidden[T]{visible: true, value: v}
}

func (h Hidden[T]) Visible() (T, bool) {
	return h.value, h.visible
}

func (h Hidden[T]) MarshalJSON() ([]byte, error) {
	if !h.visible {
		return json.Marshal("Hidden")
	}
	return taggedObject("Unhidden", h.value)
}

func (h *Hidden[T]) UnmarshalJSON(data []byte) error {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return fmt.Errorf("decode Hidden: %w", err)
	}
	if !ok {
		if tag != "Hidden" {
			return fmt.Errorf("decode Hidden: unknown unit value %q", tag)
		}
		*h = Hidden[T]{}
		return nil
	}
	if tag != "Unhidden" {
		return fmt.Errorf("decode Hidden: unknown tag %q", tag)
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("decode Hidden.Unhidden: %w", err)
	}
	*h = Hidden[T]{visible: true, value: v}
	return nil
}

// LocalCard is the per-recipient projection of a Card: the name is
// Hidden for face-down Row and Timeline cards (the opposing hand is left
// out of a view entirely), counters are always visible since they carry no
// information the owner would hide in this game.
type LocalCard struct {
	ID       CardID
	Name     Hidden[string]
	Counters map[string]int64
}

// DeckTop is the opaque marker a view substitutes for the top card of a
// deck the recipient may not inspect: only the allocated CardID is
// revealed, never the name, so the client can still refer to the card in
// a later Move.
type DeckTop struct {
	Card CardID
}

// NamedCardID pairs a CardID with its resolved name, used by BeginSearch
// to list the cards a search may pick from.
type NamedCardID struct {
	Card CardID
	Name string
}

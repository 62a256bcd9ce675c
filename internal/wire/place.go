package wire

import (
	"encoding/json"
	"fmt"
)

// PlaceFrom addresses a zone a card is popped from. RelSide is always
// resolved against the acting participant's seat, never an absolute side,
// so the same message works unmodified for either player.
type PlaceFrom interface {
	placeFromTag() string
}

type HandFrom struct {
	Card CardID
}

type SpaceFrom struct {
	Side RelSide
	Slot Space
}

type DiscardFrom struct {
	Side RelSide
	Card CardID
}

// AsideFrom is declared for wire compatibility but never resolves to a
// real zone: the room always rejects it with ServerErr.NoCardIn.
type AsideFrom struct {
	Card CardID
}

type TimelineFrom struct {
	Side RelSide
	Card CardID
}

type DeckFrom struct {
	Side RelSide
	Deck DeckType
	Card CardID
}

func (HandFrom) placeFromTag() string     { return "Hand" }
func (SpaceFrom) placeFromTag() string    { return "Space" }
func (DiscardFrom) placeFromTag() string  { return "Discard" }
func (AsideFrom) placeFromTag() string    { return "Aside" }
func (TimelineFrom) placeFromTag() string { return "Timeline" }
func (DeckFrom) placeFromTag() string     { return "Deck" }

// EncodePlaceFrom renders a PlaceFrom to its {"Tag": payload} wire form.
func EncodePlaceFrom(p PlaceFrom) (json.RawMessage, error) {
	switch v := p.(type) {
	case HandFrom:
		return taggedObject("Hand", v.Card)
	case SpaceFrom:
		raw, err := tuple(v.Side, v.Slot)
		if err != nil {
			return nil, err
		}
		return taggedObject("Space", raw)
	case DiscardFrom:
		raw, err := tuple(v.Side, v.Card)
		if err != nil {
			return nil, err
		}
		return taggedObject("Discard", raw)
	case AsideFrom:
		return taggedObject("Aside", v.Card)
	case TimelineFrom:
		raw, err := tuple(v.Side, v.Card)
		if err != nil {
			return nil, err
		}
		return taggedObject("Timeline", raw)
	case DeckFrom:
		raw, err := tuple(v.Side, v.Deck, v.Card)
		if err != nil {
			return nil, err
		}
		return taggedObject("Deck", raw)
	default:
		return nil, fmt.Errorf("encode PlaceFrom: unhandled variant %T", p)
	}
}

// DecodePlaceFrom parses a PlaceFrom out of its wire form.
func DecodePlaceFrom(data []byte) (PlaceFrom, error) {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return nil, fmt.Errorf("decode PlaceFrom: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("decode PlaceFrom: unexpected unit value %q", tag)
	}
	switch tag {
	case "Hand":
		var card CardID
		if err := json.Unmarshal(payload, &card); err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Hand: %w", err)
		}
		return HandFrom{Card: card}, nil
	case "Space":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Space: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		slot, err := unmarshalEnum(elems[1], Space.valid, "Space")
		if err != nil {
			return nil, err
		}
		return SpaceFrom{Side: side, Slot: slot}, nil
	case "Discard":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Discard: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var card CardID
		if err := json.Unmarshal(elems[1], &card); err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Discard card: %w", err)
		}
		return DiscardFrom{Side: side, Card: card}, nil
	case "Aside":
		var card CardID
		if err := json.Unmarshal(payload, &card); err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Aside: %w", err)
		}
		return AsideFrom{Card: card}, nil
	case "Timeline":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Timeline: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var card CardID
		if err := json.Unmarshal(elems[1], &card); err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Timeline card: %w", err)
		}
		return TimelineFrom{Side: side, Card: card}, nil
	case "Deck":
		elems, err := decodeTuple(payload, 3)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Deck: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		deck, err := unmarshalEnum(elems[1], DeckType.valid, "DeckType")
		if err != nil {
			return nil, err
		}
		var card CardID
		if err := json.Unmarshal(elems[2], &card); err != nil {
			return nil, fmt.Errorf("decode PlaceFrom.Deck card: %w", err)
		}
		return DeckFrom{Side: side, Deck: deck, Card: card}, nil
	default:
		return nil, fmt.Errorf("decode PlaceFrom: unknown tag %q", tag)
	}
}

// PlaceTo addresses a zone a card is pushed into.
type PlaceTo interface {
	placeToTag() string
}

type HandTo struct{}

type SpaceTo struct {
	Side    RelSide
	Slot    Space
	Flipped bool
}

type DiscardTo struct {
	Side RelSide
}

// AsideTo mirrors AsideFrom: declared, always rejected.
type AsideTo struct{}

type TimelineTo struct {
	Side RelSide
}

type DeckPlaceTo struct {
	Direction DeckEnd
	Side      RelSide
	Deck      DeckType
}

// LiberateTo removes a card from the game entirely (no destination zone).
type LiberateTo struct{}

func (HandTo) placeToTag() string      { return "Hand" }
func (SpaceTo) placeToTag() string     { return "Space" }
func (DiscardTo) placeToTag() string   { return "Discard" }
func (AsideTo) placeToTag() string     { return "Aside" }
func (TimelineTo) placeToTag() string  { return "Timeline" }
func (DeckPlaceTo) placeToTag() string { return "Deck" }
func (LiberateTo) placeToTag() string  { return "Liberate" }

// EncodePlaceTo renders a PlaceTo to its wire form.
func EncodePlaceTo(p PlaceTo) (json.RawMessage, error) {
	switch v := p.(type) {
	case HandTo:
		return json.Marshal("Hand")
	case SpaceTo:
		raw, err := tuple(v.Side, v.Slot, v.Flipped)
		if err != nil {
			return nil, err
		}
		return taggedObject("Space", raw)
	case DiscardTo:
		return taggedObject("Discard", v.Side)
	case AsideTo:
		return json.Marshal("Aside")
	case TimelineTo:
		return taggedObject("Timeline", v.Side)
	case DeckPlaceTo:
		raw, err := tuple(v.Direction, v.Side, v.Deck)
		if err != nil {
			return nil, err
		}
		return taggedObject("Deck", raw)
	case LiberateTo:
		return json.Marshal("Liberate")
	default:
		return nil, fmt.Errorf("encode PlaceTo: unhandled variant %T", p)
	}
}

// DecodePlaceTo parses a PlaceTo out of its wire form.
func DecodePlaceTo(data []byte) (PlaceTo, error) {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return nil, fmt.Errorf("decode PlaceTo: %w", err)
	}
	if !ok {
		switch tag {
		case "Hand":
			return HandTo{}, nil
		case "Aside":
			return AsideTo{}, nil
		case "Liberate":
			return LiberateTo{}, nil
		default:
			return nil, fmt.Errorf("decode PlaceTo: unknown unit value %q", tag)
		}
	}
	switch tag {
	case "Space":
		elems, err := decodeTuple(payload, 3)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceTo.Space: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		slot, err := unmarshalEnum(elems[1], Space.valid, "Space")
		if err != nil {
			return nil, err
		}
		var flipped bool
		if err := json.Unmarshal(elems[2], &flipped); err != nil {
			return nil, fmt.Errorf("decode PlaceTo.Space flipped: %w", err)
		}
		return SpaceTo{Side: side, Slot: slot, Flipped: flipped}, nil
	case "Discard":
		side, err := unmarshalEnum(payload, RelSide.valid, "RelSide")
		if err != nil {
			return nil, fmt.Errorf("decode PlaceTo.Discard: %w", err)
		}
		return DiscardTo{Side: side}, nil
	case "Timeline":
		side, err := unmarshalEnum(payload, RelSide.valid, "RelSide")
		if err != nil {
			return nil, fmt.Errorf("decode PlaceTo.Timeline: %w", err)
		}
		return TimelineTo{Side: side}, nil
	case "Deck":
		elems, err := decodeTuple(payload, 3)
		if err != nil {
			return nil, fmt.Errorf("decode PlaceTo.Deck: %w", err)
		}
		dir, err := unmarshalEnum(elems[0], DeckEnd.valid, "DeckEnd")
		if err != nil {
			return nil, err
		}
		side, err := unmarshalEnum(elems[1], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		deck, err := unmarshalEnum(elems[2], DeckType.valid, "DeckType")
		if err != nil {
			return nil, err
		}
		return DeckPlaceTo{Direction: dir, Side: side, Deck: deck}, nil
	default:
		return nil, fmt.Errorf("decode PlaceTo: unknown tag %q", tag)
	}
}

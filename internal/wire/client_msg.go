package wire

import (
	"encoding/json"
	"fmt"
)

// ClientMsg is every message a participant may send. The room resolves
// RelSide/Space addressing against the sender's own seat, so a message
// never needs to name its own author.
type ClientMsg interface {
	clientMsgTag() string
}

type CreateRoomMsg struct{ Room RoomID }
type JoinRoomMsg struct{ Room RoomID }
type LeaveRoomMsg struct{}
type PlayAsMsg struct{}
type SetDeckMsg struct {
	Deck  DeckType
	Names []string
}
type DrawMsg struct {
	Side RelSide
	Deck DeckType
}
type MoveMsg struct {
	From PlaceFrom
	To   PlaceTo
}
type ShuffleMsg struct{ Deck DeckType }
type RequestSearchMsg struct{ Deck DeckType }
type FinishSearchMsg struct{}
type AddCounterMsg struct {
	Place PlaceFrom
	Name  string
	Up    bool
}
type CreateCounterMsg struct {
	Place PlaceFrom
	Name  string
}
type AddBloodMsg struct {
	Side RelSide
	Up   bool
}
type AddHealthMsg struct{ Up bool }
type EndTurnMsg struct{}
type CreateCardMsg struct{ Name string }
type UpdateMsg struct{}

func (CreateRoomMsg) clientMsgTag() string    { return "CreateRoom" }
func (JoinRoomMsg) clientMsgTag() string      { return "JoinRoom" }
func (LeaveRoomMsg) clientMsgTag() string     { return "LeaveRoom" }
func (PlayAsMsg) clientMsgTag() string        { return "PlayAs" }
func (SetDeckMsg) clientMsgTag() string       { return "SetDeck" }
func (DrawMsg) clientMsgTag() string          { return "Draw" }
func (MoveMsg) clientMsgTag() string          { return "Move" }
func (ShuffleMsg) clientMsgTag() string       { return "Shuffle" }
func (RequestSearchMsg) clientMsgTag() string { return "RequestSearch" }
func (FinishSearchMsg) clientMsgTag() string  { return "FinishSearch" }
func (AddCounterMsg) clientMsgTag() string    { return "AddCounter" }
func (CreateCounterMsg) clientMsgTag() string { return "CreateCounter" }
func (AddBloodMsg) clientMsgTag() string      { return "AddBlood" }
func (AddHealthMsg) clientMsgTag() string     { return "AddHealth" }
func (EndTurnMsg) clientMsgTag() string       { return "EndTurn" }
func (CreateCardMsg) clientMsgTag() string    { return "CreateCard" }
func (UpdateMsg) clientMsgTag() string        { return "Update" }

// EncodeClientMsg renders a ClientMsg to its wire form.
func EncodeClientMsg(m ClientMsg) (json.RawMessage, error) {
	switch v := m.(type) {
	case LeaveRoomMsg:
		return json.Marshal("LeaveRoom")
	case EndTurnMsg:
		return json.Marshal("EndTurn")
	case UpdateMsg:
		return json.Marshal("Update")
	case FinishSearchMsg:
		return json.Marshal("FinishSearch")
	case PlayAsMsg:
		return json.Marshal("PlayAs")
	case CreateRoomMsg:
		return taggedObject("CreateRoom", v.Room)
	case JoinRoomMsg:
		return taggedObject("JoinRoom", v.Room)
	case SetDeckMsg:
		raw, err := tuple(v.Deck, v.Names)
		if err != nil {
			return nil, err
		}
		return taggedObject("SetDeck", raw)
	case DrawMsg:
		raw, err := tuple(v.Side, v.Deck)
		if err != nil {
			return nil, err
		}
		return taggedObject("Draw", raw)
	case MoveMsg:
		fromRaw, err := EncodePlaceFrom(v.From)
		if err != nil {
			return nil, err
		}
		toRaw, err := EncodePlaceTo(v.To)
		if err != nil {
			return nil, err
		}
		raw, err := tuple(fromRaw, toRaw)
		if err != nil {
			return nil, err
		}
		return taggedObject("Move", raw)
	case ShuffleMsg:
		return taggedObject("Shuffle", v.Deck)
	case RequestSearchMsg:
		return taggedObject("RequestSearch", v.Deck)
	case AddCounterMsg:
		placeRaw, err := EncodePlaceFrom(v.Place)
		if err != nil {
			return nil, err
		}
		raw, err := tuple(placeRaw, v.Name, v.Up)
		if err != nil {
			return nil, err
		}
		return taggedObject("AddCounter", raw)
	case CreateCounterMsg:
		placeRaw, err := EncodePlaceFrom(v.Place)
		if err != nil {
			return nil, err
		}
		raw, err := tuple(placeRaw, v.Name)
		if err != nil {
			return nil, err
		}
		return taggedObject("CreateCounter", raw)
	case AddBloodMsg:
		raw, err := tuple(v.Side, v.Up)
		if err != nil {
			return nil, err
		}
		return taggedObject("AddBlood", raw)
	case AddHealthMsg:
		return taggedObject("AddHealth", v.Up)
	case CreateCardMsg:
		return taggedObject("CreateCard", v.Name)
	default:
		return nil, fmt.Errorf("encode ClientMsg: unhandled variant %T", m)
	}
}

// DecodeClientMsg parses a ClientMsg out of its wire form.
func DecodeClientMsg(data []byte) (ClientMsg, error) {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return nil, fmt.Errorf("decode ClientMsg: %w", err)
	}
	if !ok {
		switch tag {
		case "LeaveRoom":
			return LeaveRoomMsg{}, nil
		case "EndTurn":
			return EndTurnMsg{}, nil
		case "Update":
			return UpdateMsg{}, nil
		case "FinishSearch":
			return FinishSearchMsg{}, nil
		case "PlayAs":
			return PlayAsMsg{}, nil
		default:
			return nil, fmt.Errorf("decode ClientMsg: unknown unit value %q", tag)
		}
	}
	switch tag {
	case "CreateRoom":
		var room RoomID
		if err := json.Unmarshal(payload, &room); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.CreateRoom: %w", err)
		}
		return CreateRoomMsg{Room: room}, nil
	case "JoinRoom":
		var room RoomID
		if err := json.Unmarshal(payload, &room); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.JoinRoom: %w", err)
		}
		return JoinRoomMsg{Room: room}, nil
	case "SetDeck":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.SetDeck: %w", err)
		}
		deck, err := unmarshalEnum(elems[0], DeckType.valid, "DeckType")
		if err != nil {
			return nil, err
		}
		var names []string
		if err := json.Unmarshal(elems[1], &names); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.SetDeck names: %w", err)
		}
		return SetDeckMsg{Deck: deck, Names: names}, nil
	case "Draw":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.Draw: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		deck, err := unmarshalEnum(elems[1], DeckType.valid, "DeckType")
		if err != nil {
			return nil, err
		}
		return DrawMsg{Side: side, Deck: deck}, nil
	case "Move":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.Move: %w", err)
		}
		from, err := DecodePlaceFrom(elems[0])
		if err != nil {
			return nil, err
		}
		to, err := DecodePlaceTo(elems[1])
		if err != nil {
			return nil, err
		}
		return MoveMsg{From: from, To: to}, nil
	case "Shuffle":
		deck, err := unmarshalEnum(payload, DeckType.valid, "DeckType")
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.Shuffle: %w", err)
		}
		return ShuffleMsg{Deck: deck}, nil
	case "RequestSearch":
		deck, err := unmarshalEnum(payload, DeckType.valid, "DeckType")
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.RequestSearch: %w", err)
		}
		return RequestSearchMsg{Deck: deck}, nil
	case "AddCounter":
		elems, err := decodeTuple(payload, 3)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddCounter: %w", err)
		}
		place, err := DecodePlaceFrom(elems[0])
		if err != nil {
			return nil, err
		}
		var name string
		if err := json.Unmarshal(elems[1], &name); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddCounter name: %w", err)
		}
		var up bool
		if err := json.Unmarshal(elems[2], &up); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddCounter up: %w", err)
		}
		return AddCounterMsg{Place: place, Name: name, Up: up}, nil
	case "CreateCounter":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.CreateCounter: %w", err)
		}
		place, err := DecodePlaceFrom(elems[0])
		if err != nil {
			return nil, err
		}
		var name string
		if err := json.Unmarshal(elems[1], &name); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.CreateCounter name: %w", err)
		}
		return CreateCounterMsg{Place: place, Name: name}, nil
	case "AddBlood":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddBlood: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var up bool
		if err := json.Unmarshal(elems[1], &up); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddBlood up: %w", err)
		}
		return AddBloodMsg{Side: side, Up: up}, nil
	case "AddHealth":
		var up bool
		if err := json.Unmarshal(payload, &up); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.AddHealth: %w", err)
		}
		return AddHealthMsg{Up: up}, nil
	case "CreateCard":
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, fmt.Errorf("decode ClientMsg.CreateCard: %w", err)
		}
		return CreateCardMsg{Name: name}, nil
	default:
		return nil, fmt.Errorf("decode ClientMsg: unknown tag %q", tag)
	}
}

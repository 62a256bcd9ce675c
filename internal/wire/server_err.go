package wire

import (
	"encoding/json"
	"fmt"
)

// ServerErr is the inline error taxonomy for semantic failures: the
// action was structurally valid but could not be applied. Protocol-level
// failures (malformed frames) never become a ServerErr — they close the
// connection.
type ServerErr interface {
	serverErrTag() string
}

type RoomDoesntExistErr struct{ Room RoomID }

// RoomAlreadyExistErr is returned when CreateRoom names a room id that is
// already registered.
type RoomAlreadyExistErr struct{ Room RoomID }

type NotInGameErr struct{ Action string }
type NotInSideErr struct{}
type NoPlayerInSideErr struct{ Side Side }
type NoCardInErr struct{ Place PlaceFrom }
type SideOccupiedErr struct{ Side Side }
type GameIsFullErr struct{}
type AlreadyInGameErr struct{ Action string }

func (RoomDoesntExistErr) serverErrTag() string  { return "RoomDoesntExist" }
func (RoomAlreadyExistErr) serverErrTag() string { return "RoomAlreadyExist" }
func (NotInGameErr) serverErrTag() string        { return "NotInGame" }
func (NotInSideErr) serverErrTag() string        { return "NotInSide" }
func (NoPlayerInSideErr) serverErrTag() string   { return "NoPlayerInSide" }
func (NoCardInErr) serverErrTag() string         { return "NoCardIn" }
func (SideOccupiedErr) serverErrTag() string     { return "SideOccupied" }
func (GameIsFullErr) serverErrTag() string       { return "GameIsFull" }
func (AlreadyInGameErr) serverErrTag() string    { return "AlreadyInGame" }

// Every ServerErr variant also satisfies Go's error interface, so room
// logic can return them directly as the error half of a (T, error) pair;
// the room task unwraps the returned error with errors.As and relays a
// ServerErr it finds to the author (any other error becomes NotInGame).
func (e RoomDoesntExistErr) Error() string  { return fmt.Sprintf("room %q does not exist", e.Room) }
func (e RoomAlreadyExistErr) Error() string { return fmt.Sprintf("room %q already exists", e.Room) }
func (e NotInGameErr) Error() string        { return fmt.Sprintf("not in game: %s", e.Action) }
func (e NotInSideErr) Error() string        { return "author is not seated in a side" }
func (e NoPlayerInSideErr) Error() string   { return fmt.Sprintf("no player in side %s", e.Side) }
func (e NoCardInErr) Error() string         { return "no card in the addressed place" }
func (e SideOccupiedErr) Error() string     { return fmt.Sprintf("side %s is already occupied", e.Side) }
func (e GameIsFullErr) Error() string       { return "game already has two seated players" }
func (e AlreadyInGameErr) Error() string    { return fmt.Sprintf("already in game: %s", e.Action) }

// EncodeServerErr renders a ServerErr to its wire form.
func EncodeServerErr(e ServerErr) (json.RawMessage, error) {
	switch v := e.(type) {
	case NotInSideErr:
		return json.Marshal("NotInSide")
	case GameIsFullErr:
		return json.Marshal("GameIsFull")
	case RoomDoesntExistErr:
		return taggedObject("RoomDoesntExist", v.Room)
	case RoomAlreadyExistErr:
		return taggedObject("RoomAlreadyExist", v.Room)
	case NotInGameErr:
		return taggedObject("NotInGame", v.Action)
	case NoPlayerInSideErr:
		return taggedObject("NoPlayerInSide", v.Side)
	case NoCardInErr:
		placeRaw, err := EncodePlaceFrom(v.Place)
		if err != nil {
			return nil, err
		}
		return taggedObject("NoCardIn", placeRaw)
	case SideOccupiedErr:
		return taggedObject("SideOccupied", v.Side)
	case AlreadyInGameErr:
		return taggedObject("AlreadyInGame", v.Action)
	default:
		return nil, fmt.Errorf("encode ServerErr: unhandled variant %T", e)
	}
}

// DecodeServerErr parses a ServerErr out of its wire form.
func DecodeServerErr(data []byte) (ServerErr, error) {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return nil, fmt.Errorf("decode ServerErr: %w", err)
	}
	if !ok {
		switch tag {
		case "NotInSide":
			return NotInSideErr{}, nil
		case "GameIsFull":
			return GameIsFullErr{}, nil
		default:
			return nil, fmt.Errorf("decode ServerErr: unknown unit value %q", tag)
		}
	}
	switch tag {
	case "RoomDoesntExist":
		var room RoomID
		if err := json.Unmarshal(payload, &room); err != nil {
			return nil, fmt.Errorf("decode ServerErr.RoomDoesntExist: %w", err)
		}
		return RoomDoesntExistErr{Room: room}, nil
	case "RoomAlreadyExist":
		var room RoomID
		if err := json.Unmarshal(payload, &room); err != nil {
			return nil, fmt.Errorf("decode ServerErr.RoomAlreadyExist: %w", err)
		}
		return RoomAlreadyExistErr{Room: room}, nil
	case "NotInGame":
		var action string
		if err := json.Unmarshal(payload, &action); err != nil {
			return nil, fmt.Errorf("decode ServerErr.NotInGame: %w", err)
		}
		return NotInGameErr{Action: action}, nil
	case "NoPlayerInSide":
		side, err := unmarshalEnum(payload, Side.valid, "Side")
		if err != nil {
			return nil, fmt.Errorf("decode ServerErr.NoPlayerInSide: %w", err)
		}
		return NoPlayerInSideErr{Side: side}, nil
	case "NoCardIn":
		place, err := DecodePlaceFrom(payload)
		if err != nil {
			return nil, fmt.Errorf("decode ServerErr.NoCardIn: %w", err)
		}
		return NoCardInErr{Place: place}, nil
	case "SideOccupied":
		side, err := unmarshalEnum(payload, Side.valid, "Side")
		if err != nil {
			return nil, fmt.Errorf("decode ServerErr.SideOccupied: %w", err)
		}
		return SideOccupiedErr{Side: side}, nil
	case "AlreadyInGame":
		var action string
		if err := json.Unmarshal(payload, &action); err != nil {
			return nil, fmt.Errorf("decode ServerErr.AlreadyInGame: %w", err)
		}
		return AlreadyInGameErr{Action: action}, nil
	default:
		return nil, fmt.Errorf("decode ServerErr: unknown tag %q", tag)
	}
}

package wire

import (
	"encoding/json"
	"fmt"
)

// ServerMsg is every message a room may send back. Most rooms only ever
// construct RoomCreated, JoinedRoom, UpdateState, and BeginSearch; the
// narrow Update* variants are reserved wire compatibility for a future
// coalescing optimization and are never built by internal/room today.
type ServerMsg interface {
	serverMsgTag() string
}

type RoomCreatedMsg struct{ Room RoomID }
type JoinedRoomMsg struct{ State LocalState }
type UpdateStateMsg struct{ State LocalState }
type BeginSearchMsg struct{ Cards []NamedCardID }

// Reserved narrow-update variants: unconstructed today, kept for wire
// compatibility with a future partial-update optimization.
type UpdateHandMsg struct{ Hand []LocalCard }
type UpdateSpacesMsg struct {
	Side RelSide
	Row  Row[LocalCard]
}
type UpdateDiscardMsg struct {
	Side    RelSide
	Discard []LocalCard
}
type UpdateTimelineMsg struct {
	Side     RelSide
	Timeline []LocalCard
}

func (RoomCreatedMsg) serverMsgTag() string    { return "RoomCreated" }
func (JoinedRoomMsg) serverMsgTag() string     { return "JoinedRoom" }
func (UpdateStateMsg) serverMsgTag() string    { return "UpdateState" }
func (BeginSearchMsg) serverMsgTag() string    { return "BeginSearch" }
func (UpdateHandMsg) serverMsgTag() string     { return "UpdateHand" }
func (UpdateSpacesMsg) serverMsgTag() string   { return "UpdateSpaces" }
func (UpdateDiscardMsg) serverMsgTag() string  { return "UpdateDiscard" }
func (UpdateTimelineMsg) serverMsgTag() string { return "UpdateTimeline" }

// EncodeServerMsg renders a ServerMsg to its wire form.
func EncodeServerMsg(m ServerMsg) (json.RawMessage, error) {
	switch v := m.(type) {
	case RoomCreatedMsg:
		return taggedObject("RoomCreated", v.Room)
	case JoinedRoomMsg:
		return taggedObject("JoinedRoom", v.State)
	case UpdateStateMsg:
		return taggedObject("UpdateState", v.State)
	case BeginSearchMsg:
		return taggedObject("BeginSearch", v.Cards)
	case UpdateHandMsg:
		return taggedObject("UpdateHand", v.Hand)
	case UpdateSpacesMsg:
		raw, err := tuple(v.Side, v.Row)
		if err != nil {
			return nil, err
		}
		return taggedObject("UpdateSpaces", raw)
	case UpdateDiscardMsg:
		raw, err := tuple(v.Side, v.Discard)
		if err != nil {
			return nil, err
		}
		return taggedObject("UpdateDiscard", raw)
	case UpdateTimelineMsg:
		raw, err := tuple(v.Side, v.Timeline)
		if err != nil {
			return nil, err
		}
		return taggedObject("UpdateTimeline", raw)
	default:
		return nil, fmt.Errorf("encode ServerMsg: unhandled variant %T", m)
	}
}

// DecodeServerMsg parses a ServerMsg out of its wire form.
func DecodeServerMsg(data []byte) (ServerMsg, error) {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return nil, fmt.Errorf("decode ServerMsg: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("decode ServerMsg: unexpected unit value %q", tag)
	}
	switch tag {
	case "RoomCreated":
		var room RoomID
		if err := json.Unmarshal(payload, &room); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.RoomCreated: %w", err)
		}
		return RoomCreatedMsg{Room: room}, nil
	case "JoinedRoom":
		var state LocalState
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.JoinedRoom: %w", err)
		}
		return JoinedRoomMsg{State: state}, nil
	case "UpdateState":
		var state LocalState
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateState: %w", err)
		}
		return UpdateStateMsg{State: state}, nil
	case "BeginSearch":
		var cards []NamedCardID
		if err := json.Unmarshal(payload, &cards); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.BeginSearch: %w", err)
		}
		return BeginSearchMsg{Cards: cards}, nil
	case "UpdateHand":
		var hand []LocalCard
		if err := json.Unmarshal(payload, &hand); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateHand: %w", err)
		}
		return UpdateHandMsg{Hand: hand}, nil
	case "UpdateSpaces":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateSpaces: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var row Row[LocalCard]
		if err := json.Unmarshal(elems[1], &row); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateSpaces row: %w", err)
		}
		return UpdateSpacesMsg{Side: side, Row: row}, nil
	case "UpdateDiscard":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateDiscard: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var discard []LocalCard
		if err := json.Unmarshal(elems[1], &discard); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateDiscard discard: %w", err)
		}
		return UpdateDiscardMsg{Side: side, Discard: discard}, nil
	case "UpdateTimeline":
		elems, err := decodeTuple(payload, 2)
		if err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateTimeline: %w", err)
		}
		side, err := unmarshalEnum(elems[0], RelSide.valid, "RelSide")
		if err != nil {
			return nil, err
		}
		var timeline []LocalCard
		if err := json.Unmarshal(elems[1], &timeline); err != nil {
			return nil, fmt.Errorf("decode ServerMsg.UpdateTimeline timeline: %w", err)
		}
		return UpdateTimelineMsg{Side: side, Timeline: timeline}, nil
	default:
		return nil, fmt.Errorf("decode ServerMsg: unknown tag %q", tag)
	}
}

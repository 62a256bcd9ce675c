package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the outer frame a room sends to a participant: either a
// successful ServerMsg or a ServerErr, mirroring the Rust
// Result<ServerMsg, ServerErr> the room_task produces for every
// DestinedServerMsg.
type Envelope struct {
	Ok  ServerMsg
	Err ServerErr
}

func Ok(m ServerMsg) Envelope  { return Envelope{Ok: m} }
func Err(e ServerErr) Envelope { return Envelope{Err: e} }

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		raw, err := EncodeServerErr(e.Err)
		if err != nil {
			return nil, fmt.Errorf("encode Envelope.Err: %w", err)
		}
		return taggedObject("Err", raw)
	}
	raw, err := EncodeServerMsg(e.Ok)
	if err != nil {
		return nil, fmt.Errorf("encode Envelope.Ok: %w", err)
	}
	return taggedObject("Ok", raw)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	tag, payload, ok, err := singleVariant(data)
	if err != nil {
		return fmt.Errorf("decode Envelope: %w", err)
	}
	if !ok {
		return fmt.Errorf("decode Envelope: unexpected unit value %q", tag)
	}
	switch tag {
	case "Ok":
		msg, err := DecodeServerMsg(payload)
		if err != nil {
			return fmt.Errorf("decode Envelope.Ok: %w", err)
		}
		*e = Envelope{Ok: msg}
		return nil
	case "Err":
		serr, err := DecodeServerErr(payload)
		if err != nil {
			return fmt.Errorf("decode Envelope.Err: %w", err)
		}
		*e = Envelope{Err: serr}
		return nil
	default:
		return fmt.Errorf("decode Envelope: unknown tag %q", tag)
	}
}

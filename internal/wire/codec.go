package wire

import (
	"encoding/json"
	"fmt"
)

// taggedObject builds the {"Tag": payload} discriminator object that every
// data-bearing variant in this package encodes to.
func taggedObject(tag string, payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", tag, err)
	}
	obj := map[string]json.RawMessage{tag: raw}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", tag, err)
	}
	return out, nil
}

// tuple marshals parts positionally into a JSON array, matching how serde
// encodes a Rust tuple-variant's payload.
func tuple(parts ...any) (json.RawMessage, error) {
	elems := make([]json.RawMessage, len(parts))
	for i, p := range parts {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode tuple element %d: %w", i, err)
		}
		elems[i] = raw
	}
	out, err := json.Marshal(elems)
	if err != nil {
		return nil, fmt.Errorf("encode tuple: %w", err)
	}
	return out, nil
}

// decodeTuple splits a JSON array payload back into its n positional
// elements for individual decode.
func decodeTuple(raw json.RawMessage, n int) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode tuple: %w", err)
	}
	if len(elems) != n {
		return nil, fmt.Errorf("decode tuple: want %d elements, got %d", n, len(elems))
	}
	return elems, nil
}

// singleVariant extracts the one tag and payload out of a discriminator
// object. Returns ok=false (no error) if data is a bare string, so callers
// can fall back to unit-variant handling.
func singleVariant(data []byte) (tag string, payload json.RawMessage, ok bool, err error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return asString, nil, false, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, false, fmt.Errorf("decode variant: %w", err)
	}
	if len(obj) != 1 {
		return "", nil, false, fmt.Errorf("decode variant: expected exactly one key, got %d", len(obj))
	}
	for k, v := range obj {
		tag, payload = k, v
	}
	return tag, payload, true, nil
}

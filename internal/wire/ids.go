// Package wire defines the JSON wire schema shared between the room
// authority and its participants: the ClientMsg/ServerMsg/ServerErr tagged
// unions, place addressing, and the view types a room sends back.
//
// Encoding follows the discriminator-object convention: a data-bearing
// variant is a single-key JSON object {"Variant": payload}, a unit variant
// is the bare string "Variant". This mirrors the default external tagging
// Hemolymph/cassowary's Rust shared crate gets from serde_json, which
// clients on either side of the wire already expect.
package wire

// ParticipantID identifies one connection for the lifetime of that
// connection. Minted by the acceptor (see internal/transport), never
// reused.
type ParticipantID string

// RoomID is the caller-supplied name a room is registered under.
type RoomID string

// CardID is a per-room monotonically increasing identifier. Never reused
// within a room; the room's name table grows but is never pruned.
type CardID uint64

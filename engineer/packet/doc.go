// Package packet decodes the F1 25 UDP telemetry wire format.
//
// Every datagram starts with a 29-byte little-endian Header. The packet id in
// the header selects the category layout; per-car categories repeat a
// fixed-size sub-record for each of the 22 car slots and the decoders here pick
// the slot of a single player. Decoders are pure functions: they never panic on
// malformed input and report failure through a false second return value.
//
// Only the fields the engineer consumes are decoded. Layout offsets are
// bit-exact with the game's published structs.
package packet

// Package engineer turns the live car state into at most one spoken-style
// advisory per tick.
//
// # Flow
//
// A Detector evaluates threshold and edge-triggered rules against a state
// Snapshot and returns candidate Events. An Arbiter ranks them and applies
// per-key cooldowns, the global comms throttle and the urgent escalation
// override. The Engine drives both on a timer and hands the winner to a Sink.
//
// Detector and Arbiter are not safe for concurrent use; the Engine owns them
// on its own goroutine and only reads the state cache through snapshots.
package engineer

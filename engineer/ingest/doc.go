// Package ingest moves raw datagrams from a source to the state cache.
//
// A source (the UDP Listener or the Replayer) feeds a bounded raw queue. A
// fan-out stage copies every datagram to the optional Recorder tap and hands
// it to the dispatch queue, where the Dispatcher validates the header and
// applies the payload to the state cache. Pipeline wires the stages together
// under one errgroup.
//
// Recordings use a small container format:
//
//	magic "INGREC1\x00" | u16 version (1)
//	repeated: u64 timestamp ns | u32 length | payload
//
// All integers are little-endian.
package ingest

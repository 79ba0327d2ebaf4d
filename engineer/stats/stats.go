// Package stats holds the ingestion runtime counters. Every counter has a
// single writing goroutine; readers (reporters, the metrics endpoint) load
// them atomically without locking.
package stats

import (
	"sort"
	"sync/atomic"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

// Runtime counts what happened to every datagram.
type Runtime struct {
	UDPReceived atomic.Uint64
	UDPDropped  atomic.Uint64 // raw queue full
	UDPErrors   atomic.Uint64 // transient socket read errors, skipped
	ReplaySent  atomic.Uint64

	Dispatched    atomic.Uint64 // headers parsed and accepted
	DropBadHeader atomic.Uint64
	DropFormat    atomic.Uint64
	DropYear      atomic.Uint64
	ApplyErrors   atomic.Uint64
	SessionResets atomic.Uint64

	RecordEnqueued atomic.Uint64
	RecordDropped  atomic.Uint64
	RecordWritten  atomic.Uint64

	byID      [packet.MaxID]atomic.Uint64
	byIDOther atomic.Uint64
}

// New returns zeroed counters.
func New() *Runtime {
	return &Runtime{}
}

// CountPacket counts one dispatched packet of the given id.
func (r *Runtime) CountPacket(id uint8) {
	if int(id) < len(r.byID) {
		r.byID[id].Add(1)
		return
	}
	r.byIDOther.Add(1)
}

// PacketCount returns the number of dispatched packets with id.
func (r *Runtime) PacketCount(id uint8) uint64 {
	if int(id) < len(r.byID) {
		return r.byID[id].Load()
	}
	return r.byIDOther.Load()
}

// IDCount is a packet id with its dispatch count.
type IDCount struct {
	ID    uint8
	Count uint64
}

// PacketCounts lists the ids seen so far in id order. Ids above the known
// range are folded into a single entry with ID 255.
func (r *Runtime) PacketCounts() []IDCount {
	var out []IDCount
	for id := range r.byID {
		if n := r.byID[id].Load(); n > 0 {
			out = append(out, IDCount{ID: uint8(id), Count: n})
		}
	}
	if n := r.byIDOther.Load(); n > 0 {
		out = append(out, IDCount{ID: 255, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Received is the number of datagrams that entered the pipeline from either
// source.
func (r *Runtime) Received() uint64 {
	return r.UDPReceived.Load() + r.ReplaySent.Load()
}

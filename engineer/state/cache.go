package state

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

// ErrDecode is returned by Apply when a payload cannot be decoded. It is
// never fatal: the previous value of the category is kept.
var ErrDecode = errors.New("decode failed")

// Cache is the engineer state store. Apply and Reset must be called from a
// single goroutine; Snapshot and StaleFlags are safe from any goroutine.
type Cache struct {
	ttl TTL
	cur Snapshot
	pub atomic.Pointer[Snapshot]
}

// New creates an empty Cache with the given TTLs.
func New(ttl TTL) *Cache {
	c := &Cache{ttl: ttl, cur: emptySnapshot()}
	c.publish()
	return c
}

// TTL returns the staleness configuration of the cache.
func (c *Cache) TTL() TTL { return c.ttl }

func (c *Cache) publish() {
	snap := c.cur
	c.pub.Store(&snap)
}

// Snapshot returns the most recently published state.
func (c *Cache) Snapshot() Snapshot {
	return *c.pub.Load()
}

// StaleFlags computes staleness of the published state at session time now.
func (c *Cache) StaleFlags(now float64) StaleFlags {
	return c.Snapshot().Stale(c.ttl, now)
}

// Reset forgets everything, including the tracked player. Used when a new
// session starts and session time restarts from zero.
func (c *Cache) Reset() {
	epoch := c.cur.Epoch + 1
	c.cur = emptySnapshot()
	c.cur.Epoch = epoch
	c.publish()
}

// Apply decodes payload according to packetID and merges it into the state.
//
// Session packets apply regardless of playerIndex. Per-car packets apply only
// for the tracked player; the first successfully decoded per-car packet
// adopts its player index. A category only moves forward in session time.
// Packet ids the cache does not track are ignored.
func (c *Cache) Apply(packetID uint8, payload []byte, sessionTime float64, playerIndex uint8) error {
	cat, ok := CategoryOf(packetID)
	if !ok {
		return nil
	}
	if cat != CategorySession && c.cur.PlayerTracked && playerIndex != c.cur.PlayerIndex {
		c.cur.IgnoredPlayer++
		c.publish()
		return nil
	}

	var accepted bool
	switch cat {
	case CategorySession:
		v, ok := packet.DecodeSession(payload)
		if !ok {
			return c.fail(cat, len(payload))
		}
		accepted = accept(&c.cur.Session, v, sessionTime)
	case CategoryLap:
		v, ok := packet.DecodeLap(payload, playerIndex)
		if !ok {
			return c.fail(cat, len(payload))
		}
		accepted = accept(&c.cur.Lap, v, sessionTime)
	case CategoryStatus:
		v, ok := packet.DecodeStatus(payload, playerIndex)
		if !ok {
			return c.fail(cat, len(payload))
		}
		accepted = accept(&c.cur.Status, v, sessionTime)
	case CategoryTelemetry:
		v, ok := packet.DecodeTelemetry(payload, playerIndex)
		if !ok {
			return c.fail(cat, len(payload))
		}
		accepted = accept(&c.cur.Telemetry, v, sessionTime)
	case CategoryDamage:
		v, ok := packet.DecodeDamage(payload, playerIndex)
		if !ok {
			return c.fail(cat, len(payload))
		}
		accepted = accept(&c.cur.Damage, v, sessionTime)
	}

	if cat != CategorySession && !c.cur.PlayerTracked {
		c.cur.PlayerTracked = true
		c.cur.PlayerIndex = playerIndex
	}
	if accepted && sessionTime > c.cur.LatestSessionTime {
		c.cur.LatestSessionTime = sessionTime
	}
	c.publish()
	return nil
}

func (c *Cache) fail(cat Category, n int) error {
	c.cur.DecodeErrors++
	c.publish()
	return fmt.Errorf("%s packet (%d bytes): %w", cat, n, ErrDecode)
}

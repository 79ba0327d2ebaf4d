package ingest

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// Applier consumes validated datagrams. *state.Cache satisfies it.
type Applier interface {
	Apply(packetID uint8, payload []byte, sessionTime float64, playerIndex uint8) error
	Reset()
}

// DispatcherConfig sets the expected source. In strict mode a mismatch drops
// the datagram; otherwise it is accepted after a single warning.
type DispatcherConfig struct {
	PacketFormat uint16
	GameYear     uint8
	StrictFormat bool
	StrictYear   bool
}

// Dispatcher validates headers and applies datagrams. It is the only writer
// of its Applier.
type Dispatcher struct {
	cfg     DispatcherConfig
	applier Applier
	stats   *stats.Runtime

	warnedFormat bool
	warnedYear   bool
	sessionUID   uint64
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig, a Applier, st *stats.Runtime) *Dispatcher {
	return &Dispatcher{cfg: cfg, applier: a, stats: st}
}

// Run handles datagrams from in until it is closed or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, in <-chan []byte) error {
	logrus.Infof("[dispatch] running (format=%d year=%d strict_format=%t strict_year=%t)",
		d.cfg.PacketFormat, d.cfg.GameYear, d.cfg.StrictFormat, d.cfg.StrictYear)
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-in:
			if !ok {
				return nil
			}
			d.Handle(data)
		}
	}
}

// Handle validates one datagram and applies it. It reports whether the
// datagram passed validation.
func (d *Dispatcher) Handle(data []byte) bool {
	hdr, ok := packet.ParseHeader(data)
	if !ok {
		d.stats.DropBadHeader.Add(1)
		return false
	}

	if hdr.PacketFormat != d.cfg.PacketFormat {
		if d.cfg.StrictFormat {
			d.stats.DropFormat.Add(1)
			return false
		}
		if !d.warnedFormat {
			d.warnedFormat = true
			logrus.Warnf("[dispatch] packet format mismatch (got=%d expected=%d); accepting", hdr.PacketFormat, d.cfg.PacketFormat)
		}
	}
	if hdr.GameYear != d.cfg.GameYear {
		if d.cfg.StrictYear {
			d.stats.DropYear.Add(1)
			return false
		}
		if !d.warnedYear {
			d.warnedYear = true
			logrus.Warnf("[dispatch] game year mismatch (got=%d expected=%d); accepting", hdr.GameYear, d.cfg.GameYear)
		}
	}

	d.stats.Dispatched.Add(1)
	d.stats.CountPacket(hdr.PacketID)

	// Session time restarts with every session; stale state from the previous
	// one would block updates until the clock caught up.
	if hdr.SessionUID != 0 && hdr.SessionUID != d.sessionUID {
		if d.sessionUID != 0 {
			logrus.Infof("[dispatch] new session %x (was %x); resetting state", hdr.SessionUID, d.sessionUID)
			d.applier.Reset()
			d.stats.SessionResets.Add(1)
		}
		d.sessionUID = hdr.SessionUID
	}

	if err := d.applier.Apply(hdr.PacketID, data, float64(hdr.SessionTime), hdr.PlayerCarIndex); err != nil {
		d.stats.ApplyErrors.Add(1)
		if errors.Is(err, state.ErrDecode) {
			logrus.Debugf("[dispatch] %s: %v", packet.IDName(hdr.PacketID), err)
		} else {
			logrus.Warnf("[dispatch] apply %s: %v", packet.IDName(hdr.PacketID), err)
		}
	}
	return true
}

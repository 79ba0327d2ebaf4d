package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// MinReplaySpeed is the slowest replay speed accepted.
const MinReplaySpeed = 0.01

// Replayer emits the datagrams of a recording in file order.
type Replayer struct {
	Path string
	// Speed scales the recorded gaps between datagrams; 2 replays twice as
	// fast. Values below MinReplaySpeed are raised to it.
	Speed float64
	// NoPacing emits as fast as the consumer accepts.
	NoPacing bool
	Stats    *stats.Runtime
}

// Run replays the recording into out and closes out when it returns. A clean
// end of file returns nil; an invalid or truncated recording returns an error
// wrapping ErrBadMagic, ErrUnsupportedVersion or ErrTruncatedRecord. Records
// read before a truncation are still delivered.
func (r *Replayer) Run(ctx context.Context, out chan<- []byte) error {
	defer close(out)
	speed := max(r.Speed, MinReplaySpeed)

	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	cr, err := NewContainerReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Path, err)
	}

	logrus.Infof("[replay] replaying %s (speed=%.2f, pacing=%t)", r.Path, speed, !r.NoPacing)
	var (
		sent   uint64
		lastTs uint64
		first  = true
	)
	defer func() { logrus.Infof("[replay] finished: sent=%d", sent) }()

	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: record %d: %w", r.Path, sent+1, err)
		}

		if !r.NoPacing && !first && rec.TimestampNs > lastTs {
			gap := time.Duration(float64(rec.TimestampNs-lastTs) / speed)
			if !sleepCtx(ctx, gap) {
				return nil
			}
		}
		first = false
		lastTs = rec.TimestampNs

		select {
		case out <- rec.Payload:
		case <-ctx.Done():
			return nil
		}
		sent++
		if r.Stats != nil {
			r.Stats.ReplaySent.Add(1)
		}
	}
}

// sleepCtx waits for d and reports false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

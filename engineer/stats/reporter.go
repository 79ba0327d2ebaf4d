package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MinReportInterval is the fastest the health line is logged.
const MinReportInterval = 500 * time.Millisecond

// Reporter logs a health line with throughput and queue depths.
type Reporter struct {
	Stats    *Runtime
	Interval time.Duration
	Queues   []Queue

	lastAt time.Time
	lastRx uint64
}

// Run logs every Interval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) error {
	interval := max(r.Interval, MinReportInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	r.lastAt = time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			logrus.Infof("[stats] %s", r.line(now.Sub(r.lastAt)))
			r.lastAt = now
		}
	}
}

// line renders the counters and advances the throughput baseline.
func (r *Reporter) line(elapsed time.Duration) string {
	s := r.Stats
	rx := s.Received()
	secs := max(elapsed.Seconds(), 1e-6)
	pps := float64(rx-r.lastRx) / secs
	r.lastRx = rx

	var b strings.Builder
	fmt.Fprintf(&b, "rx=%d (%.1f pkt/s) ok=%d", rx, pps, s.Dispatched.Load())
	fmt.Fprintf(&b, " drop_udp=%d drop_hdr=%d drop_fmt=%d drop_year=%d apply_err=%d",
		s.UDPDropped.Load(), s.DropBadHeader.Load(), s.DropFormat.Load(), s.DropYear.Load(), s.ApplyErrors.Load())
	if n := s.UDPErrors.Load(); n > 0 {
		fmt.Fprintf(&b, " udp_err=%d", n)
	}
	if enq := s.RecordEnqueued.Load(); enq > 0 || s.RecordDropped.Load() > 0 {
		fmt.Fprintf(&b, " rec=%d/%d drop_rec=%d", s.RecordWritten.Load(), enq, s.RecordDropped.Load())
	}
	for _, q := range r.Queues {
		fmt.Fprintf(&b, " q_%s=%d/%d", q.Name, q.Len(), q.Cap)
	}
	if ids := s.PacketCounts(); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, c := range ids {
			parts[i] = fmt.Sprintf("%d:%d", c.ID, c.Count)
		}
		fmt.Fprintf(&b, " ids={%s}", strings.Join(parts, ","))
	}
	return b.String()
}

package stats

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

const namespace = "ingeniero"

// Queue describes a bounded queue for depth reporting.
type Queue struct {
	Name string
	Len  func() int
	Cap  int
}

func counter(subsystem, name, help string, v interface{ Load() uint64 }) prometheus.Collector {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(v.Load()) })
}

// Register exposes the counters on reg.
func (r *Runtime) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		counter("udp", "received_total", "Datagrams read from the UDP socket.", &r.UDPReceived),
		counter("udp", "dropped_total", "Datagrams dropped because the raw queue was full.", &r.UDPDropped),
		counter("udp", "read_errors_total", "Transient UDP read errors that were skipped.", &r.UDPErrors),
		counter("replay", "sent_total", "Records emitted by the replayer.", &r.ReplaySent),
		counter("dispatch", "accepted_total", "Datagrams accepted by the dispatcher.", &r.Dispatched),
		counter("dispatch", "bad_header_total", "Datagrams dropped for an unreadable header.", &r.DropBadHeader),
		counter("dispatch", "format_mismatch_total", "Datagrams dropped for an unexpected packet format.", &r.DropFormat),
		counter("dispatch", "year_mismatch_total", "Datagrams dropped for an unexpected game year.", &r.DropYear),
		counter("dispatch", "apply_errors_total", "Datagrams the state cache failed to decode.", &r.ApplyErrors),
		counter("dispatch", "session_resets_total", "State resets caused by a new session uid.", &r.SessionResets),
		counter("recorder", "enqueued_total", "Datagrams queued for recording.", &r.RecordEnqueued),
		counter("recorder", "dropped_total", "Datagrams not recorded because the tap was full or disabled.", &r.RecordDropped),
		counter("recorder", "written_total", "Records written to the recording file.", &r.RecordWritten),
	}
	for id := range r.byID {
		c := &r.byID[id]
		collectors = append(collectors, prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "dispatch",
			Name:        "packets_total",
			Help:        "Accepted datagrams by packet id.",
			ConstLabels: prometheus.Labels{"id": strconv.Itoa(id), "packet": packet.IDName(uint8(id))},
		}, func() float64 { return float64(c.Load()) }))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering runtime metrics: %w", err)
		}
	}
	return nil
}

// RegisterQueues exposes the current depth and capacity of each queue.
func RegisterQueues(reg prometheus.Registerer, queues ...Queue) error {
	for _, q := range queues {
		depth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "depth",
			Help:        "Items currently buffered in the queue.",
			ConstLabels: prometheus.Labels{"queue": q.Name},
		}, func() float64 { return float64(q.Len()) })
		capacity := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "capacity",
			Help:        "Maximum items the queue can buffer.",
			ConstLabels: prometheus.Labels{"queue": q.Name},
		}, func() float64 { return float64(q.Cap) })
		for _, c := range []prometheus.Collector{depth, capacity} {
			if err := reg.Register(c); err != nil {
				return fmt.Errorf("registering queue %s: %w", q.Name, err)
			}
		}
	}
	return nil
}

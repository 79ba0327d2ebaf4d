package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// RecorderConfig configures a Recorder. Zero fields take defaults.
type RecorderConfig struct {
	Dir       string
	QueueSize int // default 2048
	// FlushEvery is the number of buffered records that forces a flush.
	FlushEvery int // default 64
	// FlushInterval flushes pending records when no new ones arrive.
	FlushInterval time.Duration // default 500ms
	// Now stamps records; defaults to time.Now.
	Now func() time.Time
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if c.Dir == "" {
		c.Dir = "recordings"
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 2048
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 64
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 500 * time.Millisecond
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type stamped struct {
	tsNs    uint64
	payload []byte
}

// Recorder writes a copy of the datagram stream to a recording file. It is a
// side tap: TryEnqueue never blocks and recording failures only disable the
// recorder.
type Recorder struct {
	cfg      RecorderConfig
	stats    *stats.Runtime
	queue    chan stamped
	disabled atomic.Bool
	path     atomic.Pointer[string]
}

// NewRecorder creates a Recorder. Nothing touches the disk until Run.
func NewRecorder(cfg RecorderConfig, st *stats.Runtime) *Recorder {
	cfg = cfg.withDefaults()
	return &Recorder{
		cfg:   cfg,
		stats: st,
		queue: make(chan stamped, cfg.QueueSize),
	}
}

// Path is the file being written, empty before Run created it.
func (r *Recorder) Path() string {
	if p := r.path.Load(); p != nil {
		return *p
	}
	return ""
}

// Queue describes the tap queue for depth reporting.
func (r *Recorder) Queue() stats.Queue {
	return stats.Queue{Name: "record", Len: func() int { return len(r.queue) }, Cap: cap(r.queue)}
}

// TryEnqueue stamps payload with the wall clock and queues it for writing.
// It reports false when the payload was dropped.
func (r *Recorder) TryEnqueue(payload []byte) bool {
	if r.disabled.Load() {
		r.stats.RecordDropped.Add(1)
		return false
	}
	select {
	case r.queue <- stamped{tsNs: uint64(r.cfg.Now().UnixNano()), payload: payload}:
		r.stats.RecordEnqueued.Add(1)
		return true
	default:
		r.stats.RecordDropped.Add(1)
		return false
	}
}

func (r *Recorder) newPath() string {
	name := fmt.Sprintf("%s_%s_f1udp.ingrec", r.cfg.Now().Format("20060102_150405"), uuid.NewString()[:8])
	return filepath.Join(r.cfg.Dir, name)
}

// fail disables recording for the rest of the run.
func (r *Recorder) fail(err error) {
	r.disabled.Store(true)
	logrus.Errorf("[recorder] %v; recording disabled", err)
}

// Run writes queued records until ctx is cancelled, then writes what is
// still queued, flushes and syncs the file. I/O errors disable recording and
// Run returns nil; they never stop the pipeline.
func (r *Recorder) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.Dir, 0o755); err != nil {
		r.fail(fmt.Errorf("creating %s: %w", r.cfg.Dir, err))
		return nil
	}
	path := r.newPath()
	f, err := os.Create(path)
	if err != nil {
		r.fail(fmt.Errorf("creating recording: %w", err))
		return nil
	}
	r.path.Store(&path)
	logrus.Infof("[recorder] recording to %s", path)

	cw, err := NewContainerWriter(f)
	if err != nil {
		f.Close()
		r.fail(err)
		return nil
	}
	w := &batchWriter{cw: cw, stats: r.stats}

	closeFile := func() {
		if err := w.flush(); err != nil {
			r.fail(fmt.Errorf("flushing %s: %w", path, err))
		}
		if err := f.Sync(); err != nil {
			logrus.Warnf("[recorder] sync %s: %v", path, err)
		}
		if err := f.Close(); err != nil {
			logrus.Warnf("[recorder] close %s: %v", path, err)
		}
		logrus.Infof("[recorder] closed %s (%d records)", path, r.stats.RecordWritten.Load())
	}

	abort := func(err error) error {
		r.fail(err)
		f.Close()
		return nil
	}

	idle := time.NewTicker(r.cfg.FlushInterval)
	defer idle.Stop()
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case rec := <-r.queue:
					if err := w.add(rec); err != nil {
						return abort(err)
					}
				default:
					closeFile()
					return nil
				}
			}
		case rec := <-r.queue:
			if err := w.add(rec); err != nil {
				return abort(err)
			}
			if w.pending >= r.cfg.FlushEvery {
				if err := w.flush(); err != nil {
					return abort(err)
				}
			}
		case <-idle.C:
			if err := w.flush(); err != nil {
				return abort(err)
			}
		}
	}
}

// batchWriter counts records between flushes.
type batchWriter struct {
	cw      *ContainerWriter
	stats   *stats.Runtime
	pending int
}

func (b *batchWriter) add(rec stamped) error {
	if err := b.cw.WriteRecord(rec.tsNs, rec.payload); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	b.pending++
	return nil
}

func (b *batchWriter) flush() error {
	if b.pending == 0 {
		return nil
	}
	if err := b.cw.Flush(); err != nil {
		return err
	}
	b.stats.RecordWritten.Add(uint64(b.pending))
	b.pending = 0
	return nil
}

package ingest

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// Config selects the datagram source and sizes the queues.
type Config struct {
	// ListenAddr is the UDP address to bind when ReplayPath is empty.
	ListenAddr string

	ReplayPath     string
	ReplaySpeed    float64
	ReplayNoPacing bool

	QueueSize         int // raw queue, default 2048
	DispatchQueueSize int // default 2048

	Dispatcher DispatcherConfig
}

// Task is a long-running function stopped by cancelling its context.
type Task func(ctx context.Context) error

// Pipeline wires a source, the fan-out, the dispatcher and the optional
// recorder. A Pipeline runs once.
type Pipeline struct {
	Config   Config
	Cache    *state.Cache
	Stats    *stats.Runtime
	Recorder *Recorder // nil disables recording

	raw      chan []byte
	dispatch chan []byte
}

// NewPipeline allocates the queues so they can be observed before Run.
func NewPipeline(cfg Config, cache *state.Cache, st *stats.Runtime, rec *Recorder) *Pipeline {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 2048
	}
	if cfg.DispatchQueueSize <= 0 {
		cfg.DispatchQueueSize = 2048
	}
	return &Pipeline{
		Config:   cfg,
		Cache:    cache,
		Stats:    st,
		Recorder: rec,
		raw:      make(chan []byte, cfg.QueueSize),
		dispatch: make(chan []byte, cfg.DispatchQueueSize),
	}
}

// Queues describes the pipeline queues for depth reporting.
func (p *Pipeline) Queues() []stats.Queue {
	qs := []stats.Queue{
		{Name: "raw", Len: func() int { return len(p.raw) }, Cap: cap(p.raw)},
		{Name: "dispatch", Len: func() int { return len(p.dispatch) }, Cap: cap(p.dispatch)},
	}
	if p.Recorder != nil {
		qs = append(qs, p.Recorder.Queue())
	}
	return qs
}

// Run starts all stages plus extra until ctx is cancelled or, in replay mode,
// until the recording has been fully dispatched. Extra tasks are stopped once
// the dispatcher is done and the recorder once the fan-out is done. A replay error ends the replay
// only; it is logged and Run still returns nil. A UDP bind error is returned.
func (p *Pipeline) Run(ctx context.Context, extra ...Task) error {
	var source Task
	if p.Config.ReplayPath != "" {
		rp := &Replayer{
			Path:     p.Config.ReplayPath,
			Speed:    p.Config.ReplaySpeed,
			NoPacing: p.Config.ReplayNoPacing,
			Stats:    p.Stats,
		}
		source = func(ctx context.Context) error {
			if err := rp.Run(ctx, p.raw); err != nil {
				logrus.Errorf("[replay] %v", err)
			}
			return nil
		}
		logrus.Infof("[pipeline] mode=replay path=%s record=%t", p.Config.ReplayPath, p.Recorder != nil)
	} else {
		l, err := Listen(ctx, p.Config.ListenAddr, p.Stats)
		if err != nil {
			return err
		}
		source = func(ctx context.Context) error { return l.Serve(ctx, p.raw) }
		logrus.Infof("[pipeline] mode=udp listen=%s record=%t", l.Addr(), p.Recorder != nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	auxCtx, stopAux := context.WithCancel(gctx)
	defer stopAux()

	// The recorder stops only after the fan-out, its sole producer, has
	// returned, so its final drain sees every enqueued datagram.
	recCtx, stopRecorder := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRecorder()

	var tap Tap
	if p.Recorder != nil {
		tap = p.Recorder
		g.Go(func() error { return p.Recorder.Run(recCtx) })
	}
	g.Go(func() error { return source(gctx) })
	g.Go(func() error {
		defer stopRecorder()
		return FanOut(gctx, p.raw, p.dispatch, tap)
	})
	g.Go(func() error {
		defer stopAux()
		return NewDispatcher(p.Config.Dispatcher, p.Cache, p.Stats).Run(gctx, p.dispatch)
	})
	for _, t := range extra {
		g.Go(func() error { return t(auxCtx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

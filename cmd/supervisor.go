package cmd

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	supervisorInitialBackoff = 500 * time.Millisecond
	supervisorMaxBackoff     = 10 * time.Second
)

// backoff doubles from initial up to max.
type backoff struct {
	next time.Duration
	max  time.Duration
}

func newBackoff(initial, limit time.Duration) *backoff {
	return &backoff{next: initial, max: limit}
}

// Next returns the current delay and doubles it for the following call.
func (b *backoff) Next() time.Duration {
	d := b.next
	b.next = min(b.next*2, b.max)
	return d
}

// supervise runs run until it returns nil or ctx is cancelled. Errors and
// panics are logged and the run is restarted after a backoff delay.
func supervise(ctx context.Context, run func(context.Context) error, b *backoff) error {
	for attempt := 1; ; attempt++ {
		logrus.Infof("[supervisor] launching app (attempt %d)", attempt)
		err := runGuarded(ctx, run)
		if ctx.Err() != nil {
			logrus.Info("[supervisor] interrupted")
			return nil
		}
		if err == nil {
			logrus.Info("[supervisor] exited normally")
			return nil
		}
		delay := b.Next()
		logrus.Errorf("[supervisor] crashed: %v; restarting in %s", err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			logrus.Info("[supervisor] interrupted")
			return nil
		case <-timer.C:
		}
	}
}

// runGuarded converts a panic in run into an error.
func runGuarded(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Debugf("[supervisor] panic stack:\n%s", debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(ctx)
}

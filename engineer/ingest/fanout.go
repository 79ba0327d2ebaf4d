package ingest

import "context"

// Tap receives a copy of every datagram without slowing the main path.
type Tap interface {
	TryEnqueue(payload []byte) bool
}

// FanOut forwards every datagram from in to out, offering it to tap first when
// tap is not nil. The send to out waits for room; the upstream raw queue
// absorbs bursts. out is closed when in is closed or ctx is cancelled.
func FanOut(ctx context.Context, in <-chan []byte, out chan<- []byte, tap Tap) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-in:
			if !ok {
				return nil
			}
			if tap != nil {
				tap.TryEnqueue(data)
			}
			select {
			case out <- data:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

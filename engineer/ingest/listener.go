package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// maxDatagram is larger than any packet the game sends.
const maxDatagram = 4096

// Listener reads telemetry datagrams from a UDP socket.
type Listener struct {
	conn  net.PacketConn
	stats *stats.Runtime
}

// Listen binds addr ("host:port").
func Listen(ctx context.Context, addr string, st *stats.Runtime) (*Listener, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding udp %s: %w", addr, err)
	}
	return &Listener{conn: conn, stats: st}, nil
}

// Addr is the bound local address.
func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

// Close releases the socket. Serve closes it on return as well.
func (l *Listener) Close() error { return l.conn.Close() }

// Serve pushes every datagram into out until ctx is cancelled, then closes
// both the socket and out. The receive path never waits on out: when it is
// full the datagram is dropped and counted.
func (l *Listener) Serve(ctx context.Context, out chan<- []byte) error {
	defer close(out)
	stop := context.AfterFunc(ctx, func() { l.conn.Close() })
	defer stop()
	defer l.conn.Close()

	logrus.Infof("[udp] listening on %s", l.conn.LocalAddr())
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if transientReadError(err) {
				if l.stats.UDPErrors.Add(1) == 1 {
					logrus.Warnf("[udp] transient read error, continuing: %v", err)
				} else {
					logrus.Debugf("[udp] transient read error: %v", err)
				}
				continue
			}
			return fmt.Errorf("reading udp: %w", err)
		}
		l.stats.UDPReceived.Add(1)
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case out <- data:
		default:
			l.stats.UDPDropped.Add(1)
		}
	}
}

// transientReadError reports errors a UDP socket can surface from ICMP
// feedback or a short-lived timeout. The socket stays usable after them.
func transientReadError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

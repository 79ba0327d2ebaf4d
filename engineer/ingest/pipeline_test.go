package ingest

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingeniero-f1/ingeniero/engineer/internal/testutil"
	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

// writeRecording stores datagrams 50ms apart.
func writeRecording(t *testing.T, dir string, datagrams ...[]byte) string {
	t.Helper()
	var recs []Record
	for i, d := range datagrams {
		recs = append(recs, Record{TimestampNs: uint64(i) * uint64(50*time.Millisecond), Payload: d})
	}
	path := filepath.Join(dir, "session.ingrec")
	require.NoError(t, os.WriteFile(path, encode(t, recs...), 0o644))
	return path
}

func TestPipeline_ReplayEndsRun(t *testing.T) {
	// GIVEN a short recording of a race, replayed while recording again
	dir := t.TempDir()
	path := writeRecording(t, dir,
		testutil.SessionPacket(1.0, testutil.SessionFields{TotalLaps: 5, SafetyCar: packet.SafetyCarFull}),
		testutil.LapPacket(1.1, 0, testutil.LapFields{LapNum: 2, Position: 4}),
		[]byte{0xde, 0xad},
		testutil.DamagePacket(1.2, 0, testutil.DamageFields{FrontLeftWing: 40}),
		testutil.LapPacket(1.3, 0, testutil.LapFields{LapNum: 3, Position: 3}),
	)
	cache := state.New(state.DefaultTTL())
	st := stats.New()
	rec := NewRecorder(RecorderConfig{Dir: filepath.Join(dir, "out")}, st)
	p := NewPipeline(Config{
		ReplayPath:     path,
		ReplayNoPacing: true,
		Dispatcher:     expected,
	}, cache, st, rec)

	extraStopped := make(chan struct{})
	extra := func(ctx context.Context) error {
		<-ctx.Done()
		close(extraStopped)
		return nil
	}

	// WHEN run without any external cancellation
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx, extra))

	// THEN every datagram was dispatched and the state reflects the last lap
	assert.NoError(t, ctx.Err(), "pipeline must finish on its own")
	assert.Equal(t, uint64(5), st.ReplaySent.Load())
	assert.Equal(t, uint64(4), st.Dispatched.Load())
	assert.Equal(t, uint64(1), st.DropBadHeader.Load())
	s := cache.Snapshot()
	assert.Equal(t, uint8(3), s.Lap.Value.LapNum)
	assert.Equal(t, uint8(40), s.Damage.Value.FrontLeftWing)
	assert.Equal(t, packet.SafetyCarFull, s.Session.Value.SafetyCarStatus)

	// AND the extra task was stopped and the tap recorded everything
	select {
	case <-extraStopped:
	default:
		t.Fatal("extra task still running")
	}
	assert.Equal(t, uint64(5), st.RecordWritten.Load())
	summary, err := Inspect(rec.Path(), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Records)
}

func TestPipeline_BadRecordingEndsQuietly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ingrec")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))
	p := NewPipeline(Config{ReplayPath: path, Dispatcher: expected}, state.New(state.DefaultTTL()), stats.New(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, p.Run(ctx))
	assert.NoError(t, ctx.Err())
}

func TestPipeline_BindErrorReturned(t *testing.T) {
	taken, err := Listen(context.Background(), "127.0.0.1:0", stats.New())
	require.NoError(t, err)
	defer taken.Close()

	p := NewPipeline(Config{ListenAddr: taken.Addr().String()}, state.New(state.DefaultTTL()), stats.New(), nil)
	assert.Error(t, p.Run(context.Background()))
}

func TestPipeline_UDPModeStopsOnCancel(t *testing.T) {
	p := NewPipeline(Config{ListenAddr: "127.0.0.1:0", Dispatcher: expected}, state.New(state.DefaultTTL()), stats.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("pipeline did not stop")
	}
}

func TestPipeline_Queues(t *testing.T) {
	st := stats.New()
	p := NewPipeline(Config{QueueSize: 8, DispatchQueueSize: 4}, state.New(state.DefaultTTL()), st, NewRecorder(RecorderConfig{QueueSize: 2}, st))
	qs := p.Queues()
	require.Len(t, qs, 3)
	assert.Equal(t, "raw", qs[0].Name)
	assert.Equal(t, 8, qs[0].Cap)
	assert.Equal(t, 4, qs[1].Cap)
	assert.Equal(t, "record", qs[2].Name)
	assert.Equal(t, 2, qs[2].Cap)
}

func TestPipeline_UDPCancelKeepsEveryEnqueuedRecord(t *testing.T) {
	// GIVEN a UDP pipeline recording a steady stream
	probe, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.LocalAddr().String()
	require.NoError(t, probe.Close())

	dir := t.TempDir()
	st := stats.New()
	rec := NewRecorder(RecorderConfig{Dir: dir, QueueSize: 4096}, st)
	p := NewPipeline(Config{ListenAddr: addr, QueueSize: 4096, DispatchQueueSize: 4096, Dispatcher: expected},
		state.New(state.DefaultTTL()), st, rec)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer conn.Close()
	datagram := testutil.LapPacket(1, 0, testutil.LapFields{LapNum: 1})
	deadline := time.Now().Add(3 * time.Second)
	for st.UDPReceived.Load() < 200 && time.Now().Before(deadline) {
		_, _ = conn.Write(datagram)
		time.Sleep(time.Millisecond)
	}
	require.GreaterOrEqual(t, st.UDPReceived.Load(), uint64(200))

	// WHEN the pipeline is cancelled while datagrams are still flowing
	go func() {
		for range 200 {
			_, _ = conn.Write(datagram)
		}
	}()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop")
	}

	// THEN every record accepted by the recorder reached the file
	assert.Zero(t, st.RecordDropped.Load())
	assert.Equal(t, st.RecordEnqueued.Load(), st.RecordWritten.Load())
	summary, err := Inspect(rec.Path(), 0)
	require.NoError(t, err)
	assert.Equal(t, int(st.RecordEnqueued.Load()), summary.Records)
}

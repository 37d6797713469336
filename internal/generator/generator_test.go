package generator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hlbar/internal/telemetry"
)

type countingSignaler struct {
	n atomic.Int64
}

func (c *countingSignaler) RequestRedraw() { c.n.Add(1) }
func (c *countingSignaler) count() int64   { return c.n.Load() }

func TestTickerSignalsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := &countingSignaler{}

	done := make(chan error, 1)
	go func() { done <- Ticker(ctx, 5*time.Millisecond, sig) }()

	require.Eventually(t, func() bool { return sig.count() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not observe cancellation")
	}
}

func TestTickerRejectsNonPositiveInterval(t *testing.T) {
	assert.Error(t, Ticker(context.Background(), 0, &countingSignaler{}))
}

type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) add(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *lineCollector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestStreamDeliversLinesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines := &lineCollector{}

	done := make(chan error, 1)
	go func() {
		done <- Stream(ctx, StreamConfig{
			Name:   "test",
			Argv:   []string{"/bin/sh", "-c", "echo one; echo two; echo three; exec sleep 60"},
			OnLine: lines.add,
		})
	}()

	require.Eventually(t, func() bool { return len(lines.snapshot()) == 3 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, lines.snapshot())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

func TestStreamMergesStderr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines := &lineCollector{}

	go func() {
		_ = Stream(ctx, StreamConfig{
			Name:        "merged",
			Argv:        []string{"/bin/sh", "-c", "echo from-stderr >&2; exec sleep 60"},
			MergeStderr: true,
			OnLine:      lines.add,
		})
	}()

	require.Eventually(t, func() bool { return len(lines.snapshot()) == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, "from-stderr", lines.snapshot()[0])
}

func TestStreamRestartsEndedProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)

	sig := &countingSignaler{}
	go func() {
		_ = Stream(ctx, StreamConfig{
			Name:    "flaky",
			Argv:    []string{"/bin/sh", "-c", "echo changed"},
			OnLine:  func(string) { sig.RequestRedraw() },
			BackOff: backoff.NewConstantBackOff(5 * time.Millisecond),
			Metrics: metrics,
		})
	}()

	require.Eventually(t, func() bool { return sig.count() >= 4 }, 5*time.Second, time.Millisecond,
		"a watcher that exits is started again")

	families, err := reg.Gather()
	require.NoError(t, err)
	var restarts float64
	for _, f := range families {
		if f.GetName() == "hlbar_watcher_restarts_total" {
			restarts = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.GreaterOrEqual(t, restarts, 3.0)
}

func TestStreamFirstSpawnFailureIsFatal(t *testing.T) {
	err := Stream(context.Background(), StreamConfig{
		Name:   "missing",
		Argv:   []string{filepath.Join(t.TempDir(), "no-such-binary")},
		OnLine: func(string) {},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestStreamRejectsEmptyCommand(t *testing.T) {
	err := Stream(context.Background(), StreamConfig{Name: "empty", OnLine: func(string) {}})
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestWatchFileSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	sig := &countingSignaler{}
	done := make(chan error, 1)
	go func() { done <- WatchFile(ctx, path, sig, nil) }()

	// Writes to other files in the directory are ignored. The watch may not
	// be registered yet on the first write, so keep writing until it lands.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte("b\n"), 0o644)
		return sig.count() > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := &countingSignaler{}
	go func() { _ = WatchFile(ctx, path, sig, nil) }()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling"), []byte("x"), 0o644))
	}
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sig.count())
}

func TestWatchFileMissingDirectory(t *testing.T) {
	err := WatchFile(context.Background(), filepath.Join(t.TempDir(), "gone", "status"), &countingSignaler{}, nil)
	assert.ErrorIs(t, err, ErrSpawn)
}

package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/1broseidon/hlbar/internal/telemetry"
)

var errStreamEnded = errors.New("stream ended")

// StreamConfig describes a long-lived observer process.
type StreamConfig struct {
	// Name identifies the stream in logs and metrics.
	Name string
	// Argv is the command and its arguments.
	Argv []string
	// MergeStderr sends the process's stderr into the same line stream.
	MergeStderr bool
	// OnLine is called for every line the process prints.
	OnLine func(line string)
	// BackOff paces restarts. Nil means an exponential backoff from 100ms
	// capped at 30s.
	BackOff backoff.BackOff
	// HealthyRun is how long a process must have run for the backoff to
	// start over from its initial interval. Zero means 30s.
	HealthyRun time.Duration

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Stream runs cfg.Argv and feeds its output to cfg.OnLine line by line. When
// the process exits the whole process is started again, paced by cfg.BackOff,
// for as long as ctx lives.
//
// Only the very first start is checked: if it fails Stream returns an error
// wrapping ErrSpawn. Later failures are retried. Stream returns nil once ctx
// is cancelled.
func Stream(ctx context.Context, cfg StreamConfig) error {
	if len(cfg.Argv) == 0 {
		return fmt.Errorf("%w: %s: empty command", ErrSpawn, cfg.Name)
	}
	if cfg.OnLine == nil {
		return fmt.Errorf("%s: no line handler", cfg.Name)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("stream", cfg.Name)

	b := cfg.BackOff
	if b == nil {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 100 * time.Millisecond
		eb.MaxInterval = 30 * time.Second
		b = eb
	}
	healthy := cfg.HealthyRun
	if healthy <= 0 {
		healthy = 30 * time.Second
	}

	first, err := startStream(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, cfg.Name, err)
	}
	logger.Debug("stream started", "argv", cfg.Argv)
	first.consume(cfg.OnLine)
	if ctx.Err() != nil {
		return nil
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		cfg.Metrics.WatcherRestarted(cfg.Name)
		p, err := startStream(ctx, cfg)
		if err != nil {
			return struct{}{}, err
		}
		began := time.Now()
		p.consume(cfg.OnLine)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		if time.Since(began) >= healthy {
			b.Reset()
		}
		return struct{}{}, errStreamEnded
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("stream restarting", "error", err, "in", next)
		}),
	)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

type streamProc struct {
	cmd *exec.Cmd
	out io.ReadCloser
}

func startStream(ctx context.Context, cfg StreamConfig) (*streamProc, error) {
	cmd := exec.CommandContext(ctx, cfg.Argv[0], cfg.Argv[1:]...)
	// Own process group, so cancellation also reaches children that would
	// otherwise keep the pipe open.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if cfg.MergeStderr {
		cmd.Stderr = cmd.Stdout
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &streamProc{cmd: cmd, out: out}, nil
}

// consume reads lines until the process closes its output, then reaps it.
func (p *streamProc) consume(onLine func(string)) {
	scanner := bufio.NewScanner(p.out)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	_ = p.cmd.Wait()
}

package modules

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/render"
)

// LoadSample is one reading of system load.
type LoadSample struct {
	CPUPercent float64
	MemPercent float64
	Load1      float64
}

// LoadSampler takes a LoadSample.
type LoadSampler func() (LoadSample, error)

// SampleSystemLoad reads CPU usage since the previous call, memory usage and
// the one-minute load average.
func SampleSystemLoad() (LoadSample, error) {
	var s LoadSample

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return s, fmt.Errorf("cpu percent: %w", err)
	}
	if len(percents) == 0 {
		return s, errors.New("cpu percent: no data")
	}
	s.CPUPercent = percents[0]

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("virtual memory: %w", err)
	}
	s.MemPercent = vm.UsedPercent

	// Load average is optional.
	if avg, err := load.Avg(); err == nil {
		s.Load1 = avg.Load1
	}
	return s, nil
}

// Load shows CPU and memory usage.
type Load struct {
	cfg    config.LoadConfig
	text   render.Color
	align  render.Alignment
	sample LoadSampler
}

// NewLoad creates the module. A nil sampler means SampleSystemLoad.
func NewLoad(cfg config.LoadConfig, text render.Color, align render.Alignment, sample LoadSampler) *Load {
	if sample == nil {
		sample = SampleSystemLoad
	}
	return &Load{cfg: cfg, text: text, align: align, sample: sample}
}

func (l *Load) Name() string { return "load" }

func (l *Load) Render(c render.Canvas, g bar.Geometry, cursor int) (int, error) {
	s, err := l.sample()
	if err != nil {
		return cursor, err
	}
	return render.TextBox{
		Text:       fmt.Sprintf("cpu %2.0f%% mem %2.0f%% %.2f", s.CPUPercent, s.MemPercent, s.Load1),
		Height:     g.Height,
		Foreground: l.text,
		Background: l.cfg.Background,
		Align:      l.align,
		Anchor:     cursor,
		Margin:     l.cfg.Margin,
	}.Draw(c)
}

func (l *Load) Produce(ctx context.Context, sig bar.Signaler) error {
	return generator.Ticker(ctx, l.cfg.Interval, sig)
}

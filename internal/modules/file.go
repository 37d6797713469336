package modules

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/render"
)

// File shows the first line of a file and redraws when the file changes.
type File struct {
	cfg    config.FileConfig
	text   render.Color
	align  render.Alignment
	logger *slog.Logger
}

func NewFile(cfg config.FileConfig, text render.Color, align render.Alignment, opts Options) *File {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &File{cfg: cfg, text: text, align: align, logger: logger}
}

func (f *File) Name() string { return "file" }

func (f *File) Render(c render.Canvas, g bar.Geometry, cursor int) (int, error) {
	line, err := firstLine(f.cfg.Path)
	if err != nil {
		return cursor, err
	}
	if line == "" {
		return cursor, nil
	}
	return render.TextBox{
		Text:       line,
		Height:     g.Height,
		Foreground: f.text,
		Background: f.cfg.Background,
		Align:      f.align,
		Anchor:     cursor,
		Margin:     f.cfg.Margin,
	}.Draw(c)
}

func (f *File) Produce(ctx context.Context, sig bar.Signaler) error {
	return generator.WatchFile(ctx, f.cfg.Path, sig, f.logger)
}

func firstLine(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return "", nil
}

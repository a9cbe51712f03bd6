package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"trailmap/internal/config"
	"trailmap/internal/logging"
	"trailmap/internal/metrics"
	"trailmap/internal/tiles"
	"trailmap/internal/trail"
	"trailmap/internal/tui"
	"trailmap/internal/widget"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "trailmap:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags()
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: trailmap [flags] [reference-file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	logging.Setup(logFile, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				slog.Error("metrics server", "err", err)
			}
		}()
	}

	src := tiles.NewHTTPSource(cfg.Tiles.URL,
		tiles.WithShards(cfg.Tiles.Shards...),
		tiles.WithUserAgent(cfg.Tiles.UserAgent),
		tiles.WithRateLimit(cfg.Tiles.RateLimit, cfg.Tiles.Burst),
		tiles.WithTimeout(cfg.Tiles.Timeout),
	)

	opts := tui.Options{Reference: fs.Arg(0)}
	proj := cfg.Map.Projection()
	switch cfg.Map.Mode {
	case config.ModeWidget:
		w := widget.New(src,
			widget.WithCenter(cfg.Widget.Center(proj.Center())),
			widget.WithZoom(cfg.Widget.Zoom),
			widget.WithRetries(cfg.Widget.Retries, cfg.Widget.RetryInterval),
		)
		cw, ch := w.Size()
		opts.Strategy = w
		opts.Recorder = trail.NewRecorder(w, cw, ch, nil)
		opts.Widget = w
	default:
		s := trail.MosaicStrategy{Projection: proj}
		cw, ch := proj.Size()
		opts.Strategy = s
		opts.Recorder = trail.NewRecorder(s, cw, ch, nil)
		opts.Loader = tiles.NewLoader(proj, src)
	}

	slog.Info("starting", "mode", cfg.Map.Mode, "tiles", cfg.Tiles.URL, "zoom", proj.Zoom)
	if _, err := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return err
	}
	slog.Info("stopped")
	return nil
}

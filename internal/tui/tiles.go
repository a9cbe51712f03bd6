package tui

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"trailmap/internal/tiles"
	"trailmap/internal/widget"
)

// tilesStartedMsg carries the channel the mosaic's tiles arrive on.
type tilesStartedMsg struct{ ch <-chan tiles.Descriptor }

// tileMsg is one settled mosaic cell.
type tileMsg struct{ d tiles.Descriptor }

// baseMsg delivers a fully rendered base image (widget mode).
type baseMsg struct{ img image.Image }

func startMosaic(ctx context.Context, l *tiles.Loader) tea.Cmd {
	return func() tea.Msg {
		return tilesStartedMsg{ch: l.Fetch(ctx)}
	}
}

// waitTile blocks for the next tile. A closed channel yields no message.
func waitTile(ch <-chan tiles.Descriptor) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return tileMsg{d: d}
	}
}

func renderWidget(ctx context.Context, w *widget.Map) tea.Cmd {
	return func() tea.Msg {
		return baseMsg{img: w.Render(ctx)}
	}
}

package tui

import (
	"context"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	spinner "github.com/charmbracelet/bubbles/spinner"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"trailmap/internal/geo"
	"trailmap/internal/tiles"
	"trailmap/internal/trail"
	"trailmap/internal/widget"
)

// Options wires the model to its collaborators. Exactly one of Loader and
// Widget backs the canvas.
type Options struct {
	Strategy trail.Strategy
	Recorder *trail.Recorder
	Loader   *tiles.Loader
	Widget   *widget.Map
	// Reference is an optional file loaded as a reference layer at start.
	Reference string
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool
	mono        bool

	status string

	ctx    context.Context
	cancel context.CancelFunc

	// Canvas
	strategy trail.Strategy
	rec      *trail.Recorder
	loader   *tiles.Loader
	widget   *widget.Map
	tileCh   <-chan tiles.Descriptor
	loading  bool
	settled  int
	fallback int
	spin     spinner.Model

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hoverHasGeo bool
	hoverGeo    geo.GeoPoint

	// points table
	showTable bool
	tbl       table.Model
}

func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		helpVisible: true,
		status:      "trailmap ready",
		ctx:         ctx,
		cancel:      cancel,
		strategy:    opts.Strategy,
		rec:         opts.Recorder,
		loader:      opts.Loader,
		widget:      opts.Widget,
		loading:     true,
	}
	m.cwd, _ = os.Getwd()
	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Reference layers"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*). Press Enter to add as reference; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithColumns(pointColumns()), table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	if opts.Reference != "" {
		m.loadPath(opts.Reference)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	switch {
	case m.loader != nil:
		return tea.Batch(m.spin.Tick, startMosaic(m.ctx, m.loader))
	case m.widget != nil:
		return tea.Batch(m.spin.Tick, renderWidget(m.ctx, m.widget))
	}
	return nil
}

// Recorder exposes the path being drawn.
func (m Model) Recorder() *trail.Recorder { return m.rec }

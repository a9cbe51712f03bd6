package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	spinner "github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"trailmap/internal/geom"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncFrame()
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tilesStartedMsg:
		m.tileCh = msg.ch
		m.status = fmt.Sprintf("loading tiles 0/%d", m.loader.Total())
		return m, waitTile(m.tileCh)
	case tileMsg:
		return m.settleTile(msg)
	case baseMsg:
		m.loading = false
		m.rec.SetBase(msg.img)
		m.status = "map ready: click to draw a path"
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		case "esc":
			m.inspectPopup = ""
			m.showTable = false
		case "r":
			m.rec.Reset()
			m.inspectPopup = ""
			if m.showTable {
				m.refreshPoints()
			}
			m.status = "path reset"
		case "c":
			m.mono = !m.mono
			m.status = fmt.Sprintf("mono: %v", m.mono)
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			m.syncFrame()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showTable = !m.showTable
			if m.showTable {
				m.inspectPopup = ""
				m.refreshPoints()
			}
		case "i":
			if m.inspectPopup != "" {
				m.inspectPopup = ""
				break
			}
			m.showTable = false
			m.inspectPopup = m.inspect()
			m.status = "inspect popup"
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		}
	case tea.MouseMsg:
		lay := m.layout()
		x, y, inMap := lay.cellToCanvas(msg.X, msg.Y, m.rec.Canvas())
		m.hoverHasGeo = inMap
		if inMap {
			m.hoverGeo = m.strategy.Locate(x, y)
		}
		if inMap && !m.overlayed() && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			p := m.rec.RecordClick(x, y)
			m.status = fmt.Sprintf("point %d at %s", p.Index+1, p.Geo)
			if m.showTable {
				m.refreshPoints()
			}
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) settleTile(msg tileMsg) (tea.Model, tea.Cmd) {
	if msg.d.Fallback {
		m.fallback++
	}
	m.settled++
	if !m.loader.Settle(msg.d) {
		m.status = fmt.Sprintf("loading tiles %d/%d", m.settled, m.loader.Total())
		return m, waitTile(m.tileCh)
	}
	m.loading = false
	m.rec.SetBase(m.loader.Mosaic())
	m.status = "map ready: click to draw a path"
	if m.fallback > 0 {
		m.status = fmt.Sprintf("map ready (%d of %d tiles blank)", m.fallback, m.loader.Total())
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		d, err := geom.ParseWKTData(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.setReference("<pasted>", d)
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// overlayed reports whether something covers the canvas, in which case
// clicks do not draw.
func (m Model) overlayed() bool {
	return m.pasteMode || m.showTable || m.inspectPopup != ""
}

// syncFrame sizes the recorder's frame to the displayed image.
func (m *Model) syncFrame() {
	lay := m.layout()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lay.mapH-2)
	}
	if lay.imgW > 0 && lay.imgH > 0 {
		m.rec.SetFrameSize(lay.imgW, lay.imgH)
	}
}

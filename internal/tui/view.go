package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	lay := m.layout()
	contentWidth := max(10, m.width)

	// Header
	header := titleStyle.Render(" trailmap ─ draw a path, measure it ")
	header = lipgloss.NewStyle().Width(contentWidth).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	// Map area: table, popup or paste box replace the canvas while open
	var mapView string
	switch {
	case m.showTable:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		box := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, box)
	case m.inspectPopup != "":
		maxPopupW := max(20, min(60, lay.mapW-4))
		box := boxStyle.Width(maxPopupW).Render(m.inspectPopup)
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Left, lipgloss.Center, box)
	case m.pasteMode:
		m.ta.SetWidth(lay.mapW)
		m.ta.SetHeight(min(lay.mapH, 12))
		mapView = m.ta.View()
	default:
		mapView = m.renderMap(lay)
	}
	mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).MaxHeight(lay.mapH).Render(mapView)

	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer: length output on the first line, status/help/coords below
	length := lengthStyle.Render(" " + m.rec.LengthText())
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lat=%.5f lon=%.5f  ", m.hoverGeo.Lat, m.hoverGeo.Lon))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(contentWidth).Render(length),
		lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right)),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"click draw",
		"r reset",
		"i inspect",
		"a points",
		"Tab layers",
		"p paste",
		"c mono",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}

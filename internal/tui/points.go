package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

func pointColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "lat", Width: 11},
		{Title: "lon", Width: 12},
		{Title: "segment mi", Width: 11},
		{Title: "total mi", Width: 10},
	}
}

// pointRows lists the path in click order with running distances.
func (m Model) pointRows() []table.Row {
	pts := m.rec.Points()
	segs := m.rec.SegmentMiles()
	rows := make([]table.Row, 0, len(pts))
	total := 0.0
	for i, p := range pts {
		seg := "-"
		if i > 0 {
			total += segs[i-1]
			seg = fmt.Sprintf("%.2f", segs[i-1])
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.6f", p.Geo.Lat),
			fmt.Sprintf("%.6f", p.Geo.Lon),
			seg,
			fmt.Sprintf("%.2f", total),
		})
	}
	return rows
}

// refreshPoints rebuilds the table rows from the current path.
func (m *Model) refreshPoints() {
	m.tbl.SetRows(m.pointRows())
	if m.rec.Empty() {
		m.status = "no points yet"
	}
}

package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	mutedFg   = lipgloss.Color("#6B7280")
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	gridStyle   = lipgloss.NewStyle().Foreground(borderCol)
	cursorStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(mutedFg)
	textStyle   = lipgloss.NewStyle().Foreground(baseFg)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderCol).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentFg).
			Padding(1, 2)

	severityColors = map[domain.Severity]lipgloss.Color{
		domain.SeveritySuccess: lipgloss.Color("#22C55E"),
		domain.SeverityInfo:    lipgloss.Color("#38BDF8"),
		domain.SeverityWarning: lipgloss.Color("#F59E0B"),
		domain.SeverityError:   lipgloss.Color("#EF4444"),
	}
)

const helpText = "arrows move · HJKL pan · +/- zoom · tab next · enter open · n new · m move · e edit · x delete · r reload · q quit"

func (m *Model) View() string {
	if d := m.dialog(); d != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderDialog(d))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMap(), " ", m.renderSidebar())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

type cell struct {
	ch     string
	style  *lipgloss.Style
	marker bool
}

func (m *Model) renderMap() string {
	cols, rows := m.vp.Cols, m.vp.Rows
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
	}
	m.drawGraticule(grid)

	for _, id := range m.order {
		mv := m.markers[id]
		c, r, ok := m.vp.Cell(mv.Position)
		if !ok {
			continue
		}
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(mv.Style.FillColor))
		ch := "●"
		if mv.Pending || mv.Style.Dashed {
			ch = "◌"
		}
		if id == m.selected {
			st = st.Reverse(true)
		}
		grid[r][c] = cell{ch: ch, style: &st, marker: true}
	}

	cur := grid[m.cursorRow][m.cursorCol]
	if !cur.marker {
		grid[m.cursorRow][m.cursorCol] = cell{ch: "+", style: &cursorStyle}
	} else {
		st := cur.style.Underline(true).Bold(true)
		grid[m.cursorRow][m.cursorCol] = cell{ch: cur.ch, style: &st}
	}

	var b strings.Builder
	for r, row := range grid {
		for _, c := range row {
			if c.style == nil {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(c.ch))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// drawGraticule marks every meridian and parallel that is a multiple of the
// current grid step.
func (m *Model) drawGraticule(grid [][]cell) {
	step := gridStep(m.vp.Zoom)
	meridian := make([]bool, m.vp.Cols)
	for c := range meridian {
		meridian[c] = crosses(m.vp.at(float64(c), 0).Lng, m.vp.at(float64(c+1), 0).Lng, step)
	}
	for r := range grid {
		parallel := crosses(m.vp.at(0, float64(r+1)).Lat, m.vp.at(0, float64(r)).Lat, step)
		for c := range grid[r] {
			switch {
			case meridian[c] && parallel:
				grid[r][c] = cell{ch: "┼", style: &gridStyle}
			case meridian[c]:
				grid[r][c] = cell{ch: "│", style: &gridStyle}
			case parallel:
				grid[r][c] = cell{ch: "─", style: &gridStyle}
			}
		}
	}
}

// crosses reports whether [lo, hi) contains a multiple of step.
func crosses(lo, hi, step float64) bool {
	return math.Ceil(lo/step)*step < hi
}

func (m *Model) renderSidebar() string {
	var lines []string
	lines = append(lines, titleStyle.Render(m.title), "")
	lines = append(lines, labelStyle.Render("Status ")+textStyle.Render(m.status))
	lines = append(lines, labelStyle.Render("Total  ")+textStyle.Render(m.total), "")

	lines = append(lines, labelStyle.Render("Languages"))
	if len(m.legend.Rows) == 0 {
		lines = append(lines, textStyle.Render(m.legend.Placeholder))
	}
	for _, row := range m.legend.Rows {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render("●")
		lines = append(lines, fmt.Sprintf("%s %s %s", dot, textStyle.Render(row.Language), labelStyle.Render(fmt.Sprintf("(%d)", row.Count))))
	}

	if mv := m.markers[m.selected]; mv != nil {
		lines = append(lines, "", m.renderPopup(mv))
	} else if mv := m.markerAtCursor(); mv != nil {
		lines = append(lines, "", textStyle.Render(mv.Tooltip))
	}

	at := m.cursor()
	lines = append(lines, "", labelStyle.Render(fmt.Sprintf("%s, %s  z%d", at.LatString(), at.LngString(), m.vp.Zoom)))
	if m.drag != nil {
		lines = append(lines, cursorStyle.Render("moving: enter or m to drop, esc to cancel"))
	}

	inner := sidebarWidth - 2
	return sidebarStyle.Width(inner).Height(m.vp.Rows - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPopup(mv *domain.MarkerView) string {
	p := mv.Popup
	badge := lipgloss.NewStyle().
		Background(lipgloss.Color(p.BadgeColor)).
		Foreground(lipgloss.Color("#000000")).
		Padding(0, 1).
		Render(p.Language)
	lines := []string{titleStyle.Render(p.Title), badge}
	if p.Description != "" {
		lines = append(lines, textStyle.Width(sidebarWidth-4).Render(p.Description))
	}
	lines = append(lines,
		labelStyle.Render("by ")+textStyle.Render(p.Author),
		labelStyle.Render(p.PubDate),
		labelStyle.Render(fmt.Sprintf("%d visits", p.Visits)),
	)
	if p.Editable {
		lines = append(lines, labelStyle.Render("[e] edit coordinates  [x] delete"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	lines := make([]string, 0, footerRows)
	for _, t := range m.toasts {
		st := lipgloss.NewStyle().Foreground(severityColors[t.notice.Severity]).Bold(true)
		line := st.Render(t.notice.Title)
		if t.notice.Text != "" {
			line += " " + textStyle.Render(t.notice.Text)
		}
		lines = append(lines, line)
	}
	for len(lines) < footerRows-1 {
		lines = append(lines, "")
	}
	lines = append(lines, labelStyle.Render(helpText))
	return strings.Join(lines, "\n")
}

func (m *Model) renderDialog(d *dialog) string {
	lines := []string{titleStyle.Render(d.title), textStyle.Width(48).Render(d.text), ""}
	switch d.kind {
	case dialogConfirm:
		lines = append(lines, labelStyle.Render("[y] yes   [n] no"))
	case dialogCoordinates:
		for _, in := range d.inputs {
			lines = append(lines, in.View())
		}
		lines = append(lines, "", labelStyle.Render("tab switch · enter save · esc cancel"))
	}
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

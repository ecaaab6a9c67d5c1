package tui

import (
	"fmt"
	"strings"

	"kanban-cli/internal/board"

	"github.com/charmbracelet/lipgloss"
)

func (m boardModel) View() string {
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		// No WindowSizeMsg yet.
		w, h = 80, 24
	}
	bodyH := h - 2
	if bodyH < 1 {
		bodyH = 1
	}

	v := m.view()
	var body string
	switch {
	case !m.loaded && m.engine.Store().Len() == 0 && len(m.engine.Store().Lists()) == 0:
		body = normalizePane(styleMuted().Render(" "+m.spinner.View()+" Loading board"), w, bodyH)
	case m.mode == modeDetail:
		body = m.detailView(w, bodyH)
	case m.mode == modeHelp:
		body = m.helpView(w, bodyH)
	default:
		body = renderColumns(v, m.columnsOpts(), w, bodyH)
	}

	return strings.Join([]string{
		m.headerView(v, w),
		body,
		m.footerView(w),
	}, "\n")
}

func (m boardModel) columnsOpts() columnsOpts {
	o := columnsOpts{sel: m.sel, now: m.now()}
	if sess, ok := m.engine.DragSession(); ok && m.engine.DragState() == board.DragDragging {
		o.dragging = true
		o.dragID = sess.Card.ID
		o.hover = m.hover
	}
	return o
}

func (m boardModel) headerView(v board.View, w int) string {
	parts := []string{fmt.Sprintf("Board %d", m.engine.Store().BoardID())}
	if m.filter.IsZero() {
		parts = append(parts, fmt.Sprintf("%d cards", v.Total))
	} else {
		parts = append(parts, fmt.Sprintf("%d/%d cards", v.Matched, v.Total))
		parts = append(parts, m.filterSummary())
	}
	if m.inflight > 0 {
		parts = append(parts, m.spinner.View()+" syncing")
	}
	sep := " " + glyphBullet() + " "
	st := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	return st.Render(normalizePane(" "+strings.Join(parts, sep), w, 1))
}

func (m boardModel) filterSummary() string {
	out := make([]string, 0, 3)
	if q := strings.TrimSpace(m.filter.Query); q != "" {
		out = append(out, fmt.Sprintf("%q", q))
	}
	if m.filter.LabelID != nil {
		name := fmt.Sprintf("label %d", *m.filter.LabelID)
		for _, l := range board.Labels(m.engine.Store()) {
			if l.ID == *m.filter.LabelID {
				name = "label " + l.Name
				break
			}
		}
		out = append(out, name)
	}
	if m.filter.ResponsibleID != nil {
		out = append(out, responsibleName(*m.filter.ResponsibleID))
	}
	return strings.Join(out, ", ")
}

func (m boardModel) footerView(w int) string {
	switch m.mode {
	case modeSearch:
		return normalizePane(m.search.View(), w, 1)
	case modeConfirmDelete:
		st := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorErrorBg)
		return st.Render(normalizePane(fmt.Sprintf(" Delete card #%d? (y/N)", m.deleteID), w, 1))
	}
	if m.status != "" {
		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if m.statusErr {
			st = lipgloss.NewStyle().Bold(true).Foreground(colorErrorFg)
		}
		return st.Render(normalizePane(" "+m.status, w, 1))
	}
	help := m.keys.boardHelp()
	if m.engine.DragState() == board.DragDragging {
		help = m.keys.dragHelp()
	}
	return styleMuted().Render(normalizePane(" "+helpLine(help), w, 1))
}

func (m boardModel) detailView(w, h int) string {
	c, ok := m.engine.Store().Card(m.detail.cardID)
	if !ok {
		return normalizePane(styleMuted().Render(" Card is gone"), w, h)
	}
	listName := fmt.Sprintf("list %d", c.ListID)
	if l, ok := m.engine.Store().List(c.ListID); ok {
		listName = l.Name
	}
	return renderDetail(c, listName, m.detail, w, h, m.now())
}

func (m boardModel) helpView(w, h int) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(" Keys"), ""}
	for _, b := range m.keys.allHelp() {
		hb := b.Help()
		lines = append(lines, fmt.Sprintf("  %-8s %s", hb.Key, hb.Desc))
	}
	lines = append(lines, "", styleMuted().Render("  Reordering within a column is not saved and is lost on reload."))
	return normalizePane(strings.Join(lines, "\n"), w, h)
}

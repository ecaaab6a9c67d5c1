package tui

import (
	"fmt"
	"strings"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

type columnsOpts struct {
	sel cursor
	// While dragging, hover is the drop slot and dragID the grabbed card.
	dragging bool
	dragID   int64
	hover    cursor
	now      time.Time
}

type cardLook int

const (
	lookNormal cardLook = iota
	lookSelected
	lookDropTarget
	lookDragged
)

const columnGap = 2

// columnWidth splits width between n columns separated by columnGap.
func columnWidth(width, n int) int {
	if n <= 0 {
		return 0
	}
	w := (width - columnGap*(n-1)) / n
	if w < 14 {
		w = 14
	}
	return w
}

func renderColumns(v board.View, o columnsOpts, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := len(v.Columns)
	if n == 0 {
		return normalizePane(styleMuted().Render("No lists on this board"), width, height)
	}
	colW := columnWidth(width, n)

	rendered := make([]string, 0, n)
	for i, col := range v.Columns {
		rendered = append(rendered, renderColumn(i, col, o, colW, height))
	}

	out := rendered[0]
	sep := strings.Repeat(" ", columnGap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, height)
}

func renderColumn(idx int, col board.Column, o columnsOpts, colW, height int) string {
	active := (!o.dragging && o.sel.col == idx) || (o.dragging && o.hover.col == idx)

	head := truncateText(fmt.Sprintf("%s (%d)", col.List.Name, len(col.Cards)), colW)
	hs := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
	if active {
		hs = lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
	}
	if o.dragging && o.hover.col == idx {
		hs = lipgloss.NewStyle().Bold(true).Foreground(colorDropFg).Background(colorDropBg)
	}

	blocks := make([][]string, 0, len(col.Cards)+1)
	for i, c := range col.Cards {
		look := lookNormal
		switch {
		case o.dragging && c.ID == o.dragID:
			look = lookDragged
		case o.dragging && o.hover.col == idx && o.hover.row == i:
			look = lookDropTarget
		case !o.dragging && o.sel.col == idx && o.sel.row == i:
			look = lookSelected
		}
		blocks = append(blocks, renderCard(c, look, colW, o.now))
	}

	focus := -1
	switch {
	case o.dragging && o.hover.col == idx:
		focus = o.hover.row
		if focus >= len(col.Cards) {
			slot := lipgloss.NewStyle().Width(colW).Foreground(colorDropFg).Background(colorDropBg).
				Render(" " + glyphArrow() + " drop here")
			blocks = append(blocks, []string{slot})
		}
	case !o.dragging && o.sel.col == idx:
		focus = o.sel.row
	}

	lines := []string{hs.Width(colW).Render(head)}
	if len(blocks) == 0 {
		lines = append(lines, styleMuted().Render("(empty)"))
		return normalizePane(strings.Join(lines, "\n"), colW, height)
	}

	start := firstVisibleBlock(blocks, focus, height-1)
	if start > 0 {
		lines = append(lines, styleMuted().Render(fmt.Sprintf(" %d more above", start)))
		start = firstVisibleBlock(blocks, focus, height-2)
	}
	for i := start; i < len(blocks); i++ {
		if i > start {
			lines = append(lines, "")
		}
		lines = append(lines, blocks[i]...)
	}
	return normalizePane(strings.Join(lines, "\n"), colW, height)
}

// firstVisibleBlock returns the first block to draw so that the focused block
// fits in avail lines (blocks are separated by one blank line).
func firstVisibleBlock(blocks [][]string, focus, avail int) int {
	if focus < 0 || focus >= len(blocks) || avail <= 0 {
		return 0
	}
	start := 0
	for start < focus {
		used := 0
		for i := start; i <= focus; i++ {
			used += len(blocks[i])
			if i > start {
				used++
			}
		}
		if used <= avail {
			break
		}
		start++
	}
	return start
}

type token struct {
	s string
	w int
}

func wrapTokens(tokens []token, maxW int) []string {
	if maxW <= 0 || len(tokens) == 0 {
		return nil
	}
	lines := make([]string, 0, 2)
	cur := make([]string, 0, 4)
	used := 0
	for _, tok := range tokens {
		next := tok.w
		if used > 0 {
			next++
		}
		if used+next <= maxW {
			cur = append(cur, tok.s)
			used += next
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur, used = nil, 0
		}
		if tok.w > maxW {
			lines = append(lines, xansi.Cut(tok.s, 0, maxW))
			continue
		}
		cur = append(cur, tok.s)
		used = tok.w
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

func renderCard(c model.Card, look cardLook, colW int, now time.Time) []string {
	innerW := colW - 2
	if innerW < 1 {
		innerW = 1
	}

	base := lipgloss.NewStyle()
	switch look {
	case lookSelected:
		base = base.Foreground(colorSelectedFg).Background(colorSelectedBg)
	case lookDropTarget:
		base = base.Foreground(colorDropFg).Background(colorDropBg)
	case lookDragged:
		base = faintIfDark(base.Foreground(colorMuted)).Italic(true)
	}
	// Tokens carry the block background so inner resets don't punch holes in it.
	withBg := func(st lipgloss.Style) lipgloss.Style {
		switch look {
		case lookSelected:
			return st.Background(colorSelectedBg)
		case lookDropTarget:
			return st.Background(colorDropBg)
		}
		return st
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "(untitled)"
	}
	prefix := "  "
	if look == lookDragged {
		prefix = glyphGrip() + " "
	}
	titleStyle := base.Bold(look != lookDragged)

	lines := make([]string, 0, 4)
	for i, ln := range wrapWords(title, innerW-xansi.StringWidth(prefix)) {
		p := "  "
		if i == 0 {
			p = prefix
		}
		lines = append(lines, titleStyle.Render(p+ln))
	}

	meta := cardMetaTokens(c, now, withBg)
	for _, ln := range wrapTokens(meta, innerW-2) {
		lines = append(lines, base.Render("  ")+ln)
	}

	block := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	if look == lookSelected {
		block = block.Background(colorSelectedBg)
	} else if look == lookDropTarget {
		block = block.Background(colorDropBg)
	}
	return strings.Split(block.Render(strings.Join(lines, "\n")), "\n")
}

func cardMetaTokens(c model.Card, now time.Time, withBg func(lipgloss.Style) lipgloss.Style) []token {
	add := func(tokens []token, st lipgloss.Style, s string) []token {
		seg := withBg(st).Render(s)
		return append(tokens, token{s: seg, w: xansi.StringWidth(seg)})
	}
	meta := lipgloss.NewStyle().Foreground(colorCardMetaFg)

	tokens := make([]token, 0, 4+len(c.Labels))
	tokens = add(tokens, faintIfDark(lipgloss.NewStyle().Foreground(colorMuted)), fmt.Sprintf("#%d", c.ID))
	if c.TotalHours > 0 {
		tokens = add(tokens, meta, formatHours(c.TotalHours))
	}
	for _, l := range c.Labels {
		tokens = add(tokens, lipgloss.NewStyle().Foreground(labelColor(l.Color)), glyphBullet()+l.Name)
	}
	if c.DueDate != nil {
		st := c.Deadline(now)
		tokens = add(tokens, lipgloss.NewStyle().Foreground(deadlineColor(st)).Bold(st == model.DeadlineExpired), "due "+formatDue(*c.DueDate, now))
	}
	if c.SubtasksTotal > 0 {
		tokens = add(tokens, meta, fmt.Sprintf("%d/%d", c.SubtasksCompleted, c.SubtasksTotal))
	}
	return tokens
}

func formatHours(h float64) string {
	return humanize.FtoaWithDigits(h, 2) + "h"
}

// formatDue prints a date-only due date; the year is shown only when it differs.
func formatDue(d time.Time, now time.Time) string {
	if d.Year() == now.Year() {
		return d.Format("Jan 2")
	}
	return d.Format("Jan 2 2006")
}

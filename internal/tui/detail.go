package tui

import (
	"fmt"
	"strings"
	"time"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderDetail draws the card detail pane: header fields, the description as
// markdown, then the card's worklog.
func renderDetail(c model.Card, listName string, d detailState, width, height int, now time.Time) string {
	if width < 20 {
		width = 20
	}
	innerW := width - 4
	label := lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	title := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)

	field := func(name, value string) string {
		return label.Render(name) + truncateText(value, innerW-12)
	}

	lines := make([]string, 0, 24)
	for _, ln := range wrapWords(fmt.Sprintf("#%d %s", c.ID, c.Title), innerW) {
		lines = append(lines, title.Render(ln))
	}
	lines = append(lines, "")
	lines = append(lines, field("List", listName))
	lines = append(lines, field("Responsible", responsibleName(c.ResponsibleID)))
	if len(c.Labels) > 0 {
		parts := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			parts = append(parts, lipgloss.NewStyle().Foreground(labelColor(l.Color)).Render(glyphBullet()+l.Name))
		}
		lines = append(lines, label.Render("Labels")+strings.Join(parts, " "))
	}
	if c.DueDate != nil {
		st := c.Deadline(now)
		due := c.DueDate.Format("2006-01-02")
		if st != model.DeadlineNone && st != model.DeadlineNormal {
			due += " (" + string(st) + ")"
		}
		lines = append(lines, label.Render("Due")+lipgloss.NewStyle().Foreground(deadlineColor(st)).Render(due))
	}
	lines = append(lines, field("Hours", formatHours(c.TotalHours)))
	if c.SubtasksTotal > 0 {
		lines = append(lines, field("Subtasks", fmt.Sprintf("%d/%d (%d%%)", c.SubtasksCompleted, c.SubtasksTotal, c.Progress())))
	}
	if !c.CreatedAt.IsZero() {
		lines = append(lines, field("Created", humanize.RelTime(c.CreatedAt, now, "ago", "from now")))
	}
	if !c.UpdatedAt.IsZero() {
		lines = append(lines, field("Updated", humanize.RelTime(c.UpdatedAt, now, "ago", "from now")))
	}

	lines = append(lines, "")
	if desc := renderMarkdown(c.Description, innerW); desc != "" {
		lines = append(lines, strings.Split(desc, "\n")...)
	} else {
		lines = append(lines, styleMuted().Render("No description."))
	}

	lines = append(lines, "", title.Render("Worklog"))
	switch {
	case d.loading:
		lines = append(lines, styleMuted().Render("Loading"+glyphEllipsis()))
	case d.err != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(colorErrorFg).Render(d.err.Error()))
	case len(d.worklogs) == 0:
		lines = append(lines, styleMuted().Render("No time logged."))
	default:
		total := 0.0
		for _, w := range d.worklogs {
			total += w.Hours
			row := fmt.Sprintf("%s %s  %6s", glyphBullet(), w.Date.Format("2006-01-02"), formatHours(w.Hours))
			if note := strings.TrimSpace(w.Note); note != "" {
				row += "  " + note
			}
			lines = append(lines, truncateText(row, innerW))
		}
		lines = append(lines, styleMuted().Render(fmt.Sprintf("%s total", formatHours(total))))
	}

	body := lipgloss.NewStyle().Padding(0, 2).Render(normalizePane(strings.Join(lines, "\n"), innerW, 0))
	return normalizePane(body, width, height)
}

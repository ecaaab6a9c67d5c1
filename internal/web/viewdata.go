package web

import (
	"fmt"
	"strconv"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	"github.com/dustin/go-humanize"
)

type option struct {
	Value    string
	Name     string
	Selected bool
}

type pageData struct {
	BoardID     int64
	Query       string
	Labels      []option
	Owners      []option
	EventsURL   string
	DatastarURL string
	ReadOnly    bool
	Board       boardData
}

type boardData struct {
	Columns  []columnData
	Total    int
	Matched  int
	ReadOnly bool
}

type columnData struct {
	ID          int64
	Name        string
	Target      string
	Cards       []cardData
	Placeholder bool
}

type cardData struct {
	ID        int64
	Title     string
	Target    string
	Hours     string
	Labels    []model.Label
	Due       string
	DueStatus model.DeadlineStatus
	Subtasks  string
}

type worklogRow struct {
	Date  string
	Hours string
	Note  string
}

type detailData struct {
	cardData
	List         string
	Responsible  string
	Created      string
	Updated      string
	Description  description
	Worklogs     []worklogRow
	WorklogTotal string
	WorklogErr   string
	ReadOnly     bool
}

type flashData struct {
	Text string
	Err  bool
}

func newBoardData(v board.View, readOnly bool, now time.Time) boardData {
	out := boardData{Total: v.Total, Matched: v.Matched, ReadOnly: readOnly}
	for _, col := range v.Columns {
		cd := columnData{
			ID:          col.List.ID,
			Name:        col.List.Name,
			Target:      board.ListTarget(col.List.ID),
			Cards:       make([]cardData, 0, len(col.Cards)),
			Placeholder: col.Placeholder,
		}
		for _, c := range col.Cards {
			cd.Cards = append(cd.Cards, newCardData(c, now))
		}
		out.Columns = append(out.Columns, cd)
	}
	return out
}

func newCardData(c model.Card, now time.Time) cardData {
	d := cardData{
		ID:        c.ID,
		Title:     c.Title,
		Target:    board.CardTarget(c.ID),
		Labels:    c.Labels,
		DueStatus: c.Deadline(now),
	}
	if c.TotalHours > 0 {
		d.Hours = formatHours(c.TotalHours)
	}
	if c.DueDate != nil {
		d.Due = formatDue(*c.DueDate, now)
	}
	if c.SubtasksTotal > 0 {
		d.Subtasks = fmt.Sprintf("%d/%d", c.SubtasksCompleted, c.SubtasksTotal)
	}
	return d
}

func newDetailData(c model.Card, listName string, entries []model.WorklogEntry, wlErr error, now time.Time) detailData {
	d := detailData{
		cardData:    newCardData(c, now),
		List:        listName,
		Responsible: "unassigned",
		Description: renderDescription(c.Description),
	}
	if d.List == "" {
		d.List = "list " + strconv.FormatInt(c.ListID, 10)
	}
	if c.ResponsibleID != 0 {
		d.Responsible = "user " + strconv.FormatInt(c.ResponsibleID, 10)
	}
	if !c.CreatedAt.IsZero() {
		d.Created = humanize.RelTime(c.CreatedAt, now, "ago", "from now")
	}
	if !c.UpdatedAt.IsZero() {
		d.Updated = humanize.RelTime(c.UpdatedAt, now, "ago", "from now")
	}
	if wlErr != nil {
		d.WorklogErr = wlErr.Error()
		return d
	}
	var total float64
	for _, e := range entries {
		d.Worklogs = append(d.Worklogs, worklogRow{
			Date:  e.Date.Format("2006-01-02"),
			Hours: formatHours(e.Hours),
			Note:  e.Note,
		})
		total += e.Hours
	}
	d.WorklogTotal = formatHours(total)
	return d
}

func labelOptions(labels []model.Label, selected string) []option {
	out := make([]option, 0, len(labels))
	for _, l := range labels {
		v := strconv.FormatInt(l.ID, 10)
		out = append(out, option{Value: v, Name: l.Name, Selected: v == selected})
	}
	return out
}

func ownerOptions(ids []int64, selected string) []option {
	out := []option{{Value: "0", Name: "Unassigned", Selected: selected == "0"}}
	for _, id := range ids {
		v := strconv.FormatInt(id, 10)
		out = append(out, option{Value: v, Name: "user " + v, Selected: v == selected})
	}
	return out
}

func formatHours(h float64) string {
	return humanize.FtoaWithDigits(h, 2) + "h"
}

func formatDue(d, now time.Time) string {
	if d.Year() == now.Year() {
		return d.Format("Jan 2")
	}
	return d.Format("Jan 2 2006")
}

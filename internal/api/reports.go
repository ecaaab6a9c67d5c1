package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kanban-cli/internal/model"
)

func weekQuery(w model.Week) url.Values {
	return url.Values{"week": []string{w.String()}}
}

func reportPath(boardID int64, name string) string {
	return "/report/" + strconv.FormatInt(boardID, 10) + "/" + name
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type reportCardDTO struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	ListID        *int64  `json:"list_id"`
	ResponsibleID *int64  `json:"responsible_id"`
	DueDate       *string `json:"due_date"`
}

func (d reportCardDTO) toModel() model.ReportCard {
	c := model.ReportCard{ID: d.ID, Title: d.Title}
	if d.ListID != nil {
		c.ListID = *d.ListID
	}
	if d.ResponsibleID != nil {
		c.ResponsibleID = *d.ResponsibleID
	}
	if d.DueDate != nil {
		if t := parseDate(*d.DueDate); !t.IsZero() {
			c.DueDate = &t
		}
	}
	return c
}

func reportCards(dtos []reportCardDTO) []model.ReportCard {
	out := make([]model.ReportCard, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out
}

type weeklySummaryDTO struct {
	BoardID int64 `json:"board_id"`
	Range   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"range"`
	New       []reportCardDTO `json:"new"`
	Completed []reportCardDTO `json:"completed"`
	Overdue   []reportCardDTO `json:"overdue"`
}

// WeeklySummary returns the cards created, completed (in the "Hecho" list) and
// overdue during week (GET /report/{board}/summary).
func (c *Client) WeeklySummary(ctx context.Context, boardID int64, week model.Week) (model.WeeklySummary, error) {
	var dto weeklySummaryDTO
	if err := c.do(ctx, http.MethodGet, reportPath(boardID, "summary"), weekQuery(week), nil, &dto); err != nil {
		return model.WeeklySummary{}, err
	}
	out := model.WeeklySummary{
		BoardID:   dto.BoardID,
		Week:      week,
		Start:     parseDate(dto.Range.Start),
		End:       parseDate(dto.Range.End),
		New:       reportCards(dto.New),
		Completed: reportCards(dto.Completed),
		Overdue:   reportCards(dto.Overdue),
	}
	if out.Start.IsZero() {
		out.Start, out.End = week.Start(), week.End()
	}
	return out, nil
}

type userHoursDTO struct {
	UserID     int64   `json:"user_id"`
	TotalHours float64 `json:"total_hours"`
	TasksCount int     `json:"tasks_count"`
}

func (c *Client) HoursByUser(ctx context.Context, boardID int64, week model.Week) ([]model.UserHours, error) {
	var dtos []userHoursDTO
	if err := c.do(ctx, http.MethodGet, reportPath(boardID, "hours-by-user"), weekQuery(week), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.UserHours, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, model.UserHours{UserID: d.UserID, TotalHours: d.TotalHours, Cards: d.TasksCount})
	}
	return out, nil
}

type cardHoursDTO struct {
	CardID        int64   `json:"card_id"`
	Title         string  `json:"title"`
	ResponsibleID *int64  `json:"responsible_id"`
	Status        string  `json:"status"`
	TotalHours    float64 `json:"total_hours"`
}

// HoursByCard returns per-card totals, largest first as sent by the server.
func (c *Client) HoursByCard(ctx context.Context, boardID int64, week model.Week) ([]model.CardHours, error) {
	var dtos []cardHoursDTO
	if err := c.do(ctx, http.MethodGet, reportPath(boardID, "hours-by-card"), weekQuery(week), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.CardHours, 0, len(dtos))
	for _, d := range dtos {
		h := model.CardHours{CardID: d.CardID, Title: d.Title, Status: d.Status, TotalHours: d.TotalHours}
		if d.ResponsibleID != nil {
			h.ResponsibleID = *d.ResponsibleID
		}
		out = append(out, h)
	}
	return out, nil
}

type worklogWeekDTO struct {
	TotalWeekHours float64 `json:"total_week_hours"`
	ByDay          []struct {
		Date  string  `json:"date"`
		Hours float64 `json:"hours"`
	} `json:"by_day"`
	Worklogs []worklogDTO `json:"worklogs"`
}

// MyWorklogs returns the current user's entries for week, oldest first
// (GET /users/me/worklogs/summary).
func (c *Client) MyWorklogs(ctx context.Context, week model.Week) (model.WorklogWeek, error) {
	var dto worklogWeekDTO
	if err := c.do(ctx, http.MethodGet, "/users/me/worklogs/summary", weekQuery(week), nil, &dto); err != nil {
		return model.WorklogWeek{}, err
	}
	out := model.WorklogWeek{
		Week:       week,
		TotalHours: dto.TotalWeekHours,
		ByDay:      make([]model.DayHours, 0, len(dto.ByDay)),
		Worklogs:   make([]model.WorklogEntry, 0, len(dto.Worklogs)),
	}
	for _, d := range dto.ByDay {
		out.ByDay = append(out.ByDay, model.DayHours{Date: parseDate(d.Date), Hours: d.Hours})
	}
	for _, d := range dto.Worklogs {
		out.Worklogs = append(out.Worklogs, d.toModel())
	}
	return out, nil
}

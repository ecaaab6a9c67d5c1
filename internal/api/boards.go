package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kanban-cli/internal/model"
)

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out)
	return out, err
}

type boardDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	var dtos []boardDTO
	if err := c.do(ctx, http.MethodGet, "/boards/", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.Board, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, model.Board{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

type worklogDTO struct {
	ID     int64   `json:"id"`
	CardID int64   `json:"card_id"`
	UserID int64   `json:"user_id"`
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
	Note   *string `json:"note"`
}

func (d worklogDTO) toModel() model.WorklogEntry {
	w := model.WorklogEntry{ID: d.ID, CardID: d.CardID, UserID: d.UserID, Hours: d.Hours}
	if t, err := time.Parse(time.DateOnly, d.Date); err == nil {
		w.Date = t
	}
	if d.Note != nil {
		w.Note = *d.Note
	}
	return w
}

func worklogsPath(cardID int64) string {
	return "/cards/" + strconv.FormatInt(cardID, 10) + "/worklogs"
}

func (c *Client) ListWorklogs(ctx context.Context, cardID int64) ([]model.WorklogEntry, error) {
	var dtos []worklogDTO
	if err := c.do(ctx, http.MethodGet, worklogsPath(cardID), nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.WorklogEntry, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

type WorklogCreate struct {
	Date  time.Time
	Hours float64
	Note  string
}

func (c *Client) AddWorklog(ctx context.Context, cardID int64, in WorklogCreate) (model.WorklogEntry, error) {
	body := map[string]any{
		"date":  in.Date.Format(time.DateOnly),
		"hours": in.Hours,
	}
	if in.Note != "" {
		body["note"] = in.Note
	}
	var dto worklogDTO
	if err := c.do(ctx, http.MethodPost, worklogsPath(cardID), nil, body, &dto); err != nil {
		return model.WorklogEntry{}, err
	}
	return dto.toModel(), nil
}

// WorklogUpdate carries only the fields that change. Only the author may edit
// or delete an entry; anyone else gets 403.
type WorklogUpdate struct {
	Date  *time.Time
	Hours *float64
	Note  *string
}

func (u WorklogUpdate) Empty() bool {
	return u.Date == nil && u.Hours == nil && u.Note == nil
}

func worklogPath(worklogID int64) string {
	return "/worklogs/" + strconv.FormatInt(worklogID, 10)
}

func (c *Client) UpdateWorklog(ctx context.Context, worklogID int64, in WorklogUpdate) (model.WorklogEntry, error) {
	body := map[string]any{}
	if in.Date != nil {
		body["date"] = in.Date.Format(time.DateOnly)
	}
	if in.Hours != nil {
		body["hours"] = *in.Hours
	}
	if in.Note != nil {
		body["note"] = *in.Note
	}
	var dto worklogDTO
	if err := c.do(ctx, http.MethodPatch, worklogPath(worklogID), nil, body, &dto); err != nil {
		return model.WorklogEntry{}, err
	}
	return dto.toModel(), nil
}

func (c *Client) DeleteWorklog(ctx context.Context, worklogID int64) error {
	return c.do(ctx, http.MethodDelete, worklogPath(worklogID), nil, nil, nil)
}

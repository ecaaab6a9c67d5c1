package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

func boardQuery(boardID int64) url.Values {
	return url.Values{"board_id": []string{strconv.FormatInt(boardID, 10)}}
}

func cardPath(cardID int64) string { return "/cards/" + strconv.FormatInt(cardID, 10) }

// ListLists returns the board's raw list records (GET /lists/?board_id=).
func (c *Client) ListLists(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/lists/", boardQuery(boardID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCards returns the board's raw card records (GET /cards/?board_id=).
func (c *Client) ListCards(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/cards/", boardQuery(boardID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCard(ctx context.Context, cardID int64) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, cardPath(cardID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MoveCard sends the single-field partial update {"list_id": n}. Repeating it is harmless.
func (c *Client) MoveCard(ctx context.Context, cardID, listID int64) error {
	body := map[string]int64{"list_id": listID}
	return c.do(ctx, http.MethodPatch, cardPath(cardID), nil, body, nil)
}

func (c *Client) DeleteCard(ctx context.Context, cardID int64) error {
	return c.do(ctx, http.MethodDelete, cardPath(cardID), nil, nil, nil)
}

type CardCreate struct {
	BoardID     int64      `json:"board_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"-"`
}

func (cc CardCreate) MarshalJSON() ([]byte, error) {
	type alias CardCreate
	return json.Marshal(struct {
		alias
		DueDate *string `json:"due_date,omitempty"`
	}{alias: alias(cc), DueDate: dateString(cc.DueDate)})
}

// CardUpdate carries only the fields that change; nil fields are omitted.
type CardUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"-"`
}

func (cu CardUpdate) MarshalJSON() ([]byte, error) {
	type alias CardUpdate
	return json.Marshal(struct {
		alias
		DueDate *string `json:"due_date,omitempty"`
	}{alias: alias(cu), DueDate: dateString(cu.DueDate)})
}

func (cu CardUpdate) Empty() bool {
	return cu.Title == nil && cu.Description == nil && cu.DueDate == nil
}

// CreateCard creates a card; the server places it in the board's first list.
func (c *Client) CreateCard(ctx context.Context, in CardCreate) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/cards/", nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCard(ctx context.Context, cardID int64, in CardUpdate) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPatch, cardPath(cardID), nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

// Package normalize turns raw card/list records from the board API into typed
// model values.
//
// It is the only place where untyped server payloads are handled. Every function
// here is total: absent, null or malformed optional fields are replaced with safe
// defaults instead of returning an error, so downstream code can assume fully
// populated records.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/model"
)

// FallbackListID is used as the default list when no lists are known.
const FallbackListID int64 = 1

type record map[string]any

func decode(raw []byte) record {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return record{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return record{}
	}
	return record(m)
}

// Card normalizes one raw card. A null, absent or non-numeric list_id becomes
// defaultListID.
func Card(raw json.RawMessage, defaultListID int64) model.Card {
	return cardFrom(decode(raw), defaultListID)
}

func cardFrom(r record, defaultListID int64) model.Card {
	c := model.Card{
		ID:                r.intField("id", 0),
		BoardID:           r.intField("board_id", 0),
		ListID:            r.intField("list_id", defaultListID),
		Title:             r.stringField("title"),
		Description:       r.stringField("description"),
		DueDate:           r.dateField("due_date"),
		ResponsibleID:     r.intField("user_id", 0),
		TotalHours:        r.floatField("total_hours", 0),
		Labels:            labelsFrom(r["labels"]),
		SubtasksTotal:     int(r.intField("subtasks_total", 0)),
		SubtasksCompleted: int(r.intField("subtasks_completed", 0)),
		CreatedAt:         r.timeField("created_at"),
		UpdatedAt:         r.timeField("updated_at"),
	}
	if c.ResponsibleID == 0 {
		c.ResponsibleID = r.intField("responsible_id", 0)
	}
	c.SubtasksTotal = max(c.SubtasksTotal, 0)
	c.SubtasksCompleted = max(c.SubtasksCompleted, 0)
	if c.SubtasksCompleted > c.SubtasksTotal {
		c.SubtasksCompleted = c.SubtasksTotal
	}
	return c
}

// Cards normalizes a batch, keeping server order.
func Cards(raws []json.RawMessage, defaultListID int64) []model.Card {
	out := make([]model.Card, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Card(raw, defaultListID))
	}
	return out
}

func List(raw json.RawMessage) model.List {
	r := decode(raw)
	name := r.stringField("name")
	if name == "" {
		name = r.stringField("title")
	}
	return model.List{
		ID:      r.intField("id", 0),
		BoardID: r.intField("board_id", 0),
		Name:    name,
		Order:   int(r.intField("order", 0)),
	}
}

// Lists normalizes a batch and returns it in column order (order, then id).
func Lists(raws []json.RawMessage) []model.List {
	out := make([]model.List, 0, len(raws))
	for _, raw := range raws {
		out = append(out, List(raw))
	}
	SortLists(out)
	return out
}

func SortLists(lists []model.List) {
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].Order != lists[j].Order {
			return lists[i].Order < lists[j].Order
		}
		return lists[i].ID < lists[j].ID
	})
}

// DefaultListID is the first list in column order, or FallbackListID.
func DefaultListID(lists []model.List) int64 {
	if len(lists) == 0 {
		return FallbackListID
	}
	sorted := append([]model.List(nil), lists...)
	SortLists(sorted)
	return sorted[0].ID
}

func labelsFrom(v any) []model.Label {
	xs, ok := v.([]any)
	if !ok {
		return []model.Label{}
	}
	out := make([]model.Label, 0, len(xs))
	for _, x := range xs {
		m, ok := x.(map[string]any)
		if !ok {
			continue
		}
		r := record(m)
		out = append(out, model.Label{
			ID:    r.intField("id", 0),
			Name:  r.stringField("name"),
			Color: model.ParseLabelColor(strings.ToLower(r.stringField("color"))),
		})
	}
	return out
}

func (r record) stringField(k string) string {
	switch v := r[k].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (r record) intField(k string, def int64) int64 {
	switch v := r[k].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds.
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (r record) floatField(k string, def float64) float64 {
	var f float64
	var err error
	switch v := r[k].(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return def
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func (r record) dateField(k string) *time.Time {
	s := r.stringField(k)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

// Server timestamps may come with or without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (r record) timeField(k string) time.Time {
	s := r.stringField(k)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

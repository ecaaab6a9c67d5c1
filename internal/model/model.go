package model

import (
	"math"
	"time"
)

type Board struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"boardId"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
}

// LabelColor is one of a fixed palette. Unknown colors are normalized to LabelGray.
type LabelColor string

const (
	LabelRed    LabelColor = "red"
	LabelGreen  LabelColor = "green"
	LabelYellow LabelColor = "yellow"
	LabelBlue   LabelColor = "blue"
	LabelGray   LabelColor = "gray"
)

func ParseLabelColor(s string) LabelColor {
	switch LabelColor(s) {
	case LabelRed, LabelGreen, LabelYellow, LabelBlue:
		return LabelColor(s)
	default:
		return LabelGray
	}
}

type Label struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Color LabelColor `json:"color"`
}

type Card struct {
	ID      int64 `json:"id"`
	BoardID int64 `json:"boardId"`
	ListID  int64 `json:"listId"`

	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"` // date only (UTC midnight)

	// ResponsibleID is the server-side user_id; 0 means unassigned.
	ResponsibleID int64 `json:"responsibleId,omitempty"`

	TotalHours        float64 `json:"totalHours"`
	Labels            []Label `json:"labels"`
	SubtasksTotal     int     `json:"subtasksTotal"`
	SubtasksCompleted int     `json:"subtasksCompleted"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Progress returns the rounded percentage of completed subtasks (0 when there are none).
func (c Card) Progress() int {
	if c.SubtasksTotal <= 0 {
		return 0
	}
	return int(math.Round(float64(c.SubtasksCompleted) / float64(c.SubtasksTotal) * 100))
}

func (c Card) HasLabel(labelID int64) bool {
	for _, l := range c.Labels {
		if l.ID == labelID {
			return true
		}
	}
	return false
}

type DeadlineStatus string

const (
	DeadlineNone    DeadlineStatus = ""
	DeadlineExpired DeadlineStatus = "expired"
	DeadlineSoon    DeadlineStatus = "soon"
	DeadlineNormal  DeadlineStatus = "normal"
)

// soonWindowDays is how close a due date must be to count as "soon".
const soonWindowDays = 2

// Deadline classifies the card's due date relative to the calendar day of now.
func (c Card) Deadline(now time.Time) DeadlineStatus {
	if c.DueDate == nil {
		return DeadlineNone
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(c.DueDate.Year(), c.DueDate.Month(), c.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(due.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return DeadlineExpired
	case days <= soonWindowDays:
		return DeadlineSoon
	default:
		return DeadlineNormal
	}
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type WorklogEntry struct {
	ID     int64     `json:"id"`
	CardID int64     `json:"cardId"`
	UserID int64     `json:"userId"`
	Date   time.Time `json:"date"`
	Hours  float64   `json:"hours"`
	Note   string    `json:"note,omitempty"`
}

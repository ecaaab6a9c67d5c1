package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Week is an ISO 8601 week, written YYYY-WW ("2025-05") on the wire.
type Week struct {
	Year int
	Num  int
}

var weekPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

func ParseWeek(s string) (Week, error) {
	m := weekPattern.FindStringSubmatch(s)
	if m == nil {
		return Week{}, fmt.Errorf("invalid week %q (want YYYY-WW)", s)
	}
	year, _ := strconv.Atoi(m[1])
	num, _ := strconv.Atoi(m[2])
	w := Week{Year: year, Num: num}
	if num < 1 || num > weeksIn(year) {
		return Week{}, fmt.Errorf("invalid week %q: %d has %d ISO weeks", s, year, weeksIn(year))
	}
	return w, nil
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, n := t.ISOWeek()
	return Week{Year: y, Num: n}
}

// Dec 28 always falls in the last ISO week of its year.
func weeksIn(year int) int {
	_, n := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return n
}

func (w Week) String() string { return fmt.Sprintf("%04d-%02d", w.Year, w.Num) }

// Start is the Monday of the week (UTC midnight).
func (w Week) Start() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	back := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -back+(w.Num-1)*7)
}

// End is the following Monday; the week is [Start, End).
func (w Week) End() time.Time { return w.Start().AddDate(0, 0, 7) }

func (w Week) Prev() Week { return WeekOf(w.Start().AddDate(0, 0, -7)) }

func (w Week) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Week) UnmarshalText(b []byte) error {
	parsed, err := ParseWeek(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ReportCard is the slim card shape used by weekly reports.
type ReportCard struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	ListID        int64      `json:"listId"`
	ResponsibleID int64      `json:"responsibleId,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
}

// WeeklySummary lists the cards created, completed and overdue in one week.
type WeeklySummary struct {
	BoardID   int64        `json:"boardId"`
	Week      Week         `json:"week"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	New       []ReportCard `json:"new"`
	Completed []ReportCard `json:"completed"`
	Overdue   []ReportCard `json:"overdue"`
}

type UserHours struct {
	UserID     int64   `json:"userId"`
	TotalHours float64 `json:"totalHours"`
	Cards      int     `json:"cards"`
}

type CardHours struct {
	CardID        int64   `json:"cardId"`
	Title         string  `json:"title"`
	ResponsibleID int64   `json:"responsibleId,omitempty"`
	Status        string  `json:"status"`
	TotalHours    float64 `json:"totalHours"`
}

type DayHours struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// WorklogWeek is the current user's hours for one week.
type WorklogWeek struct {
	Week       Week           `json:"week"`
	TotalHours float64        `json:"totalHours"`
	ByDay      []DayHours     `json:"byDay"`
	Worklogs   []WorklogEntry `json:"worklogs"`
}

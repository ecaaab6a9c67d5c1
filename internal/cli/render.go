package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	"github.com/dustin/go-humanize"
)

// cardOut is a card plus the fields derived for display.
type cardOut struct {
	model.Card
	ListName string               `json:"listName,omitempty"`
	Deadline model.DeadlineStatus `json:"deadline,omitempty"`
	Progress int                  `json:"progress"`
}

func newCardOut(s *board.Store, c model.Card, now time.Time) cardOut {
	out := cardOut{Card: c, Deadline: c.Deadline(now), Progress: c.Progress()}
	if l, ok := s.List(c.ListID); ok {
		out.ListName = l.Name
	}
	if out.Labels == nil {
		out.Labels = []model.Label{}
	}
	return out
}

func (c cardOut) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", c.ID, c.Title)
	if c.TotalHours > 0 {
		fmt.Fprintf(&b, " [%sh]", strconv.FormatFloat(c.TotalHours, 'f', -1, 64))
	}
	for _, l := range c.Labels {
		fmt.Fprintf(&b, " {%s:%s}", l.Color, l.Name)
	}
	if c.DueDate != nil {
		fmt.Fprintf(&b, " due %s", c.DueDate.Format(time.DateOnly))
		if c.Deadline != model.DeadlineNormal {
			fmt.Fprintf(&b, " (%s)", c.Deadline)
		}
	}
	if c.SubtasksTotal > 0 {
		fmt.Fprintf(&b, " %d/%d", c.SubtasksCompleted, c.SubtasksTotal)
	}
	return b.String()
}

func (c cardOut) WriteText(w io.Writer) error {
	fmt.Fprintln(w, c.summary())
	fmt.Fprintf(w, "list: %s (%d)\n", c.ListName, c.ListID)
	if c.ResponsibleID != 0 {
		fmt.Fprintf(w, "responsible: user %d\n", c.ResponsibleID)
	}
	if c.SubtasksTotal > 0 {
		fmt.Fprintf(w, "progress: %d%%\n", c.Progress)
	}
	if !c.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated: %s\n", humanize.Time(c.UpdatedAt))
	}
	if d := strings.TrimSpace(c.Description); d != "" {
		fmt.Fprintf(w, "\n%s\n", d)
	}
	return nil
}

type columnOut struct {
	List  model.List `json:"list"`
	Cards []cardOut  `json:"cards"`
}

type boardOut struct {
	BoardID int64       `json:"boardId"`
	Columns []columnOut `json:"columns"`
	Total   int         `json:"total"`
	Matched int         `json:"matched"`
}

func newBoardOut(s *board.Store, v board.View, now time.Time) boardOut {
	out := boardOut{BoardID: s.BoardID(), Total: v.Total, Matched: v.Matched, Columns: make([]columnOut, 0, len(v.Columns))}
	for _, col := range v.Columns {
		co := columnOut{List: col.List, Cards: make([]cardOut, 0, len(col.Cards))}
		for _, c := range col.Cards {
			co.Cards = append(co.Cards, newCardOut(s, c, now))
		}
		out.Columns = append(out.Columns, co)
	}
	return out
}

func (b boardOut) WriteText(w io.Writer) error {
	for i, col := range b.Columns {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s (%d) ==\n", col.List.Name, len(col.Cards))
		for _, c := range col.Cards {
			fmt.Fprintf(w, "  %s\n", c.summary())
		}
	}
	if b.Matched != b.Total {
		fmt.Fprintf(w, "\n%d of %d cards shown\n", b.Matched, b.Total)
	}
	return nil
}

type cardList []cardOut

func (cs cardList) WriteText(w io.Writer) error {
	for _, c := range cs {
		fmt.Fprintf(w, "%-12s %s\n", c.ListName, c.summary())
	}
	return nil
}

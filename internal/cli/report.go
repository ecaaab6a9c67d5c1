package cli

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/api"
	"kanban-cli/internal/model"

	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Weekly reports for the current board",
		Long: strings.TrimSpace(`
Weekly reports computed by the server for the current board.

--week takes an ISO week (YYYY-WW), "this" or "last"; it defaults to this week.
Weeks run Monday to Sunday.
`),
	}
	cmd.AddCommand(newReportSummaryCmd(app))
	cmd.AddCommand(newReportHoursByUserCmd(app))
	cmd.AddCommand(newReportHoursByCardCmd(app))
	return cmd
}

// parseWeekFlag accepts YYYY-WW plus the shorthands "this" and "last".
func parseWeekFlag(s string, now time.Time) (model.Week, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "this":
		return model.WeekOf(now), nil
	case "last":
		return model.WeekOf(now).Prev(), nil
	default:
		return model.ParseWeek(v)
	}
}

// reportRequest resolves the shared board, client and week for report commands.
func reportRequest(app *App, week string) (*api.Client, int64, model.Week, error) {
	w, err := parseWeekFlag(week, time.Now())
	if err != nil {
		return nil, 0, model.Week{}, err
	}
	boardID, err := app.boardID()
	if err != nil {
		return nil, 0, model.Week{}, err
	}
	c, err := app.client()
	if err != nil {
		return nil, 0, model.Week{}, err
	}
	return c, boardID, w, nil
}

func reportErr(err error, boardID int64) error {
	if api.IsStatus(err, http.StatusForbidden) {
		return fmt.Errorf("%w; board %d is not yours (reports are owner only)", err, boardID)
	}
	return explain(err)
}

type summaryOut struct {
	model.WeeklySummary
}

func (s summaryOut) WriteText(w io.Writer) error {
	last := s.End.AddDate(0, 0, -1)
	fmt.Fprintf(w, "Board %d, week %s (%s to %s)\n", s.BoardID, s.Week, s.Start.Format(time.DateOnly), last.Format(time.DateOnly))
	section := func(title string, cards []model.ReportCard) {
		fmt.Fprintf(w, "\n%s: %d\n", title, len(cards))
		for _, c := range cards {
			line := fmt.Sprintf("  #%d %s", c.ID, c.Title)
			if c.DueDate != nil {
				line += " due " + c.DueDate.Format(time.DateOnly)
			}
			if c.ResponsibleID != 0 {
				line += fmt.Sprintf(" (user %d)", c.ResponsibleID)
			}
			fmt.Fprintln(w, line)
		}
	}
	section("New", s.New)
	section("Completed", s.Completed)
	section("Overdue", s.Overdue)
	return nil
}

func newReportSummaryCmd(app *App) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Cards created, completed and overdue during a week",
		Long: strings.TrimSpace(`
Cards created during the week, cards completed (moved to the "Hecho" list and
updated that week) and cards due that week that are not done yet.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, boardID, w, err := reportRequest(app, week)
			if err != nil {
				return writeErr(cmd, err)
			}
			sum, err := c.WeeklySummary(ctxOf(cmd), boardID, w)
			if err != nil {
				return writeErr(cmd, reportErr(err, boardID))
			}
			return writeOut(cmd, app, map[string]any{
				"data": summaryOut{sum},
				"meta": map[string]any{
					"new":       len(sum.New),
					"completed": len(sum.Completed),
					"overdue":   len(sum.Overdue),
				},
				"_hints": []string{"kanban report hours-by-card --week " + w.String()},
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "ISO week YYYY-WW, this or last (default this)")
	return cmd
}

type userHoursList []model.UserHours

func (us userHoursList) WriteText(w io.Writer) error {
	if len(us) == 0 {
		fmt.Fprintln(w, "No hours logged.")
		return nil
	}
	var total float64
	for _, u := range us {
		total += u.TotalHours
		fmt.Fprintf(w, "user %-6d %8sh  %d cards\n", u.UserID, hoursText(u.TotalHours), u.Cards)
	}
	fmt.Fprintf(w, "total: %sh\n", hoursText(total))
	return nil
}

func newReportHoursByUserCmd(app *App) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "hours-by-user",
		Short: "Hours logged per user during a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, boardID, w, err := reportRequest(app, week)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows, err := c.HoursByUser(ctxOf(cmd), boardID, w)
			if err != nil {
				return writeErr(cmd, reportErr(err, boardID))
			}
			return writeOut(cmd, app, map[string]any{
				"data": userHoursList(rows),
				"meta": map[string]any{"week": w, "totalHours": sumHours(rows, func(u model.UserHours) float64 { return u.TotalHours })},
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "ISO week YYYY-WW, this or last (default this)")
	return cmd
}

type cardHoursList []model.CardHours

func (cs cardHoursList) WriteText(w io.Writer) error {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No hours logged.")
		return nil
	}
	for _, c := range cs {
		fmt.Fprintf(w, "%8sh  %-12s #%d %s\n", hoursText(c.TotalHours), c.Status, c.CardID, c.Title)
	}
	return nil
}

func newReportHoursByCardCmd(app *App) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "hours-by-card",
		Short: "Hours logged per card during a week (largest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, boardID, w, err := reportRequest(app, week)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows, err := c.HoursByCard(ctxOf(cmd), boardID, w)
			if err != nil {
				return writeErr(cmd, reportErr(err, boardID))
			}
			hints := []string{}
			if len(rows) > 0 {
				hints = append(hints, "kanban cards show "+strconv.FormatInt(rows[0].CardID, 10))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   cardHoursList(rows),
				"meta":   map[string]any{"week": w, "totalHours": sumHours(rows, func(c model.CardHours) float64 { return c.TotalHours })},
				"_hints": hints,
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "ISO week YYYY-WW, this or last (default this)")
	return cmd
}

func sumHours[T any](rows []T, hours func(T) float64) float64 {
	var total float64
	for _, r := range rows {
		total += hours(r)
	}
	return total
}

func hoursText(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

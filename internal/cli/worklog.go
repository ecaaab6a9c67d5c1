package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/api"
	"kanban-cli/internal/model"

	"github.com/spf13/cobra"
)

func newWorklogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklog",
		Short: "Hours logged against a card",
	}
	cmd.AddCommand(newWorklogAddCmd(app))
	cmd.AddCommand(newWorklogListCmd(app))
	cmd.AddCommand(newWorklogEditCmd(app))
	cmd.AddCommand(newWorklogDeleteCmd(app))
	cmd.AddCommand(newWorklogMineCmd(app))
	return cmd
}

type worklogList []model.WorklogEntry

func (ws worklogList) WriteText(w io.Writer) error {
	var total float64
	for _, e := range ws {
		total += e.Hours
		fmt.Fprintf(w, "%s  %6sh  %s\n", e.Date.Format(time.DateOnly), strconv.FormatFloat(e.Hours, 'f', 2, 64), e.Note)
	}
	fmt.Fprintf(w, "total: %sh\n", strconv.FormatFloat(total, 'f', 2, 64))
	return nil
}

// worklogErr maps the author-only rule and missing entries to readable errors.
func worklogErr(err error, worklogID int64) error {
	switch {
	case api.IsStatus(err, http.StatusNotFound):
		return errNotFound("worklog", worklogID)
	case api.IsStatus(err, http.StatusForbidden):
		return fmt.Errorf("worklog %d was logged by someone else; only its author can change it", worklogID)
	}
	return explain(err)
}

func newWorklogAddCmd(app *App) *cobra.Command {
	var (
		hours float64
		date  string
		note  string
	)
	cmd := &cobra.Command{
		Use:   "add <card-id>",
		Short: "Log hours on a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if hours <= 0 {
				return writeErr(cmd, errors.New("--hours must be greater than zero"))
			}
			day := time.Now()
			if s := strings.TrimSpace(date); s != "" {
				if day, err = time.Parse(time.DateOnly, s); err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date))
				}
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			entry, err := c.AddWorklog(ctxOf(cmd), cardID, api.WorklogCreate{
				Date:  day,
				Hours: hours,
				Note:  strings.TrimSpace(note),
			})
			if err != nil {
				if api.IsStatus(err, http.StatusNotFound) {
					return writeErr(cmd, errNotFound("card", cardID))
				}
				return writeErr(cmd, explain(err))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   entry,
				"_hints": []string{"kanban worklog list " + strconv.FormatInt(cardID, 10)},
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours worked")
	cmd.Flags().StringVar(&date, "date", "", "Day worked (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newWorklogListCmd(app *App) *cobra.Command {
	var (
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "list <card-id>",
		Short: "List worklog entries for a card (oldest first; paginated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			all, err := c.ListWorklogs(ctxOf(cmd), cardID)
			if err != nil {
				if api.IsStatus(err, http.StatusNotFound) {
					return writeErr(cmd, errNotFound("card", cardID))
				}
				return writeErr(cmd, explain(err))
			}
			sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })

			var hours float64
			for _, e := range all {
				hours += e.Hours
			}
			total := len(all)
			if offset < 0 {
				offset = 0
			}
			if offset > total {
				offset = total
			}
			end := total
			if limit > 0 && offset+limit < end {
				end = offset + limit
			}

			sid := strconv.FormatInt(cardID, 10)
			hints := []string{"kanban worklog add " + sid + " --hours <h>"}
			if end < total {
				hints = append(hints, "kanban worklog list "+sid+" --limit "+strconv.Itoa(limit)+" --offset "+strconv.Itoa(end))
			}
			return writeOut(cmd, app, map[string]any{
				"data": worklogList(all[offset:end]),
				"meta": map[string]any{
					"total":      total,
					"limit":      limit,
					"offset":     offset,
					"returned":   end - offset,
					"totalHours": hours,
				},
				"_hints": hints,
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max entries to return (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}

func newWorklogEditCmd(app *App) *cobra.Command {
	var (
		hours float64
		date  string
		note  string
	)
	cmd := &cobra.Command{
		Use:   "edit <worklog-id>",
		Short: "Change the hours, day or note of one of your entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("worklog", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var in api.WorklogUpdate
			if cmd.Flags().Changed("hours") {
				if hours <= 0 {
					return writeErr(cmd, errors.New("--hours must be greater than zero"))
				}
				in.Hours = &hours
			}
			if cmd.Flags().Changed("date") {
				day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date))
				}
				in.Date = &day
			}
			if cmd.Flags().Changed("note") {
				n := strings.TrimSpace(note)
				in.Note = &n
			}
			if in.Empty() {
				return writeErr(cmd, errors.New("nothing to change (use --hours, --date or --note)"))
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			entry, err := c.UpdateWorklog(ctxOf(cmd), id, in)
			if err != nil {
				return writeErr(cmd, worklogErr(err, id))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   entry,
				"_hints": []string{"kanban worklog list " + strconv.FormatInt(entry.CardID, 10)},
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours worked")
	cmd.Flags().StringVar(&date, "date", "", "Day worked (YYYY-MM-DD)")
	cmd.Flags().StringVar(&note, "note", "", "Note (empty clears it)")
	return cmd
}

func newWorklogDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <worklog-id>",
		Short: "Delete one of your worklog entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("worklog", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.DeleteWorklog(ctxOf(cmd), id); err != nil {
				return writeErr(cmd, worklogErr(err, id))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
}

type worklogWeekOut struct {
	model.WorklogWeek
}

func (ww worklogWeekOut) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Week %s: %sh\n", ww.Week, hoursText(ww.TotalHours))
	for _, d := range ww.ByDay {
		fmt.Fprintf(w, "  %s %-3s %8sh\n", d.Date.Format(time.DateOnly), d.Date.Weekday().String()[:3], hoursText(d.Hours))
	}
	if len(ww.Worklogs) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	for _, e := range ww.Worklogs {
		fmt.Fprintf(w, "%-6d %s  card #%-6d %6sh  %s\n", e.ID, e.Date.Format(time.DateOnly), e.CardID, hoursText(e.Hours), e.Note)
	}
	return nil
}

func newWorklogMineCmd(app *App) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Your hours for a week, per day and per entry",
		Long: strings.TrimSpace(`
Your own worklog entries across every board for one ISO week, with daily and
weekly totals.

--week takes YYYY-WW, "this" or "last"; it defaults to this week.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWeekFlag(week, time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			got, err := c.MyWorklogs(ctxOf(cmd), w)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": worklogWeekOut{got},
				"meta": map[string]any{"entries": len(got.Worklogs), "days": len(got.ByDay)},
				"_hints": []string{
					"kanban worklog mine --week " + w.Prev().String(),
					"kanban worklog edit <worklog-id> --hours <h>",
				},
			})
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "ISO week YYYY-WW, this or last (default this)")
	return cmd
}

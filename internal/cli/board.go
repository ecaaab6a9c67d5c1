package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/board"

	"github.com/spf13/cobra"
)

type filterFlags struct {
	query       string
	responsible string
	label       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.query, "query", "", "Search title/description (case and accent insensitive)")
	cmd.Flags().StringVar(&f.responsible, "responsible", "", "Responsible user id (or 'none' for unassigned)")
	cmd.Flags().StringVar(&f.label, "label", "", "Label id")
}

func (f filterFlags) filter() (board.Filter, error) {
	out := board.Filter{Query: strings.TrimSpace(f.query)}
	switch r := strings.ToLower(strings.TrimSpace(f.responsible)); r {
	case "":
	case "none":
		zero := int64(0)
		out.ResponsibleID = &zero
	default:
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil || id < 0 {
			return board.Filter{}, fmt.Errorf("invalid --responsible %q", f.responsible)
		}
		out.ResponsibleID = &id
	}
	if l := strings.TrimSpace(f.label); l != "" {
		id, err := strconv.ParseInt(l, 10, 64)
		if err != nil {
			return board.Filter{}, fmt.Errorf("invalid --label %q", f.label)
		}
		out.LabelID = &id
	}
	return out, nil
}

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "The current board",
	}
	cmd.AddCommand(newBoardShowCmd(app))
	return cmd
}

func newBoardShowCmd(app *App) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board's columns and cards (optionally filtered)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return writeErr(cmd, err)
			}
			e, _, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()

			out := newBoardOut(e.Store(), e.View(f), time.Now())
			hints := []string{}
			if !f.IsZero() {
				hints = append(hints, "kanban board show")
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{
					"total":        out.Total,
					"matched":      out.Matched,
					"responsibles": board.Responsibles(e.Store()),
					"labels":       board.Labels(e.Store()),
				},
				"_hints": hints,
			})
		},
	}
	ff.register(cmd)
	return cmd
}

package cli

import (
	"fmt"
	"io"

	"kanban-cli/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type journalList []store.JournalEntry

func (js journalList) WriteText(w io.Writer) error {
	for _, e := range js {
		line := fmt.Sprintf("%-14s %-6s card %-6d", humanize.Time(e.At), e.Op, e.CardID)
		if e.Op == "move" {
			line += fmt.Sprintf(" %d -> %d", e.FromListID, e.ToListID)
		}
		line += "  " + e.Outcome
		if e.Error != "" {
			line += ": " + e.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Local log of sync attempts (moves and deletes)",
	}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show recent sync attempts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.JournalPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			j, err := store.OpenJournal(ctxOf(cmd), path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer j.Close()
			entries, err := j.Recent(ctxOf(cmd), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": journalList(entries),
				"meta": map[string]any{"path": path, "returned": len(entries), "limit": limit},
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Max entries (0 = all)")
	cmd.AddCommand(list)
	return cmd
}

package cli

import (
	"strconv"

	"kanban-cli/internal/normalize"
	"kanban-cli/internal/store"

	"github.com/spf13/cobra"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List boards and select the current one",
	}
	cmd.AddCommand(newBoardsListCmd(app))
	cmd.AddCommand(newBoardsUseCmd(app))
	return cmd
}

func newBoardsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the boards visible to the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			boards, err := c.ListBoards(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			current := app.config().CurrentBoardID
			return writeOut(cmd, app, map[string]any{
				"data":   boards,
				"meta":   map[string]any{"total": len(boards), "currentBoardId": current},
				"_hints": []string{"kanban boards use <board-id>"},
			})
		},
	}
}

func newBoardsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <board-id>",
		Short: "Select the board used by board/cards commands and the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("board", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			boards, err := c.ListBoards(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			found := false
			for _, b := range boards {
				if b.ID == id {
					found = true
					break
				}
			}
			if !found {
				return writeErr(cmd, errNotFound("board", id))
			}
			cfg, err := store.UpdateConfig(func(cfg *store.GlobalConfig) { cfg.CurrentBoardID = id })
			if err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"currentBoardId": id},
				"_hints": []string{"kanban board show", "kanban"},
			})
		},
	}
}

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Board columns",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the current board's columns in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := app.boardID()
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			raws, err := c.ListLists(ctxOf(cmd), boardID)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			lists := normalize.Lists(raws)
			hints := []string{}
			if len(lists) > 0 {
				hints = append(hints, "kanban cards move <card-id> list:"+strconv.FormatInt(lists[0].ID, 10))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   lists,
				"meta":   map[string]any{"boardId": boardID, "total": len(lists)},
				"_hints": hints,
			})
		},
	})
	return cmd
}

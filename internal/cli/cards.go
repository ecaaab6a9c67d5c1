package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/api"
	"kanban-cli/internal/board"
	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/normalize"

	"github.com/spf13/cobra"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Cards on the current board",
	}
	cmd.AddCommand(newCardsListCmd(app))
	cmd.AddCommand(newCardsShowCmd(app))
	cmd.AddCommand(newCardsMoveCmd(app))
	cmd.AddCommand(newCardsReorderCmd(app))
	cmd.AddCommand(newCardsCreateCmd(app))
	cmd.AddCommand(newCardsEditCmd(app))
	cmd.AddCommand(newCardsDeleteCmd(app))
	return cmd
}

func newCardsListCmd(app *App) *cobra.Command {
	var (
		ff     filterFlags
		listID string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in column order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return writeErr(cmd, err)
			}
			var only int64
			if strings.TrimSpace(listID) != "" {
				if only, err = parseID("list", listID); err != nil {
					return writeErr(cmd, err)
				}
			}
			e, _, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()
			if only != 0 && !e.Store().HasList(only) {
				return writeErr(cmd, errNotFound("list", only))
			}

			now := time.Now()
			out := cardList{}
			for _, col := range e.View(f).Columns {
				if only != 0 && col.List.ID != only {
					continue
				}
				for _, c := range col.Cards {
					out = append(out, newCardOut(e.Store(), c, now))
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data":   out,
				"meta":   map[string]any{"total": e.Store().Len(), "returned": len(out)},
				"_hints": []string{"kanban cards show <card-id>", "kanban cards move <card-id> list:<list-id>"},
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&listID, "list", "", "Only cards in this list id")
	return cmd
}

func newCardsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show a card",
		Long: strings.TrimSpace(`
Show one card, fetched fresh from the server along with the board's lists.
The rest of the board is not loaded.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			boardID, err := app.boardID()
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := ctxOf(cmd)
			raw, err := c.GetCard(ctx, id)
			if err != nil {
				if api.IsStatus(err, http.StatusNotFound) {
					return writeErr(cmd, errNotFound("card", id))
				}
				return writeErr(cmd, explain(err))
			}
			rawLists, err := c.ListLists(ctx, boardID)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			lists := normalize.Lists(rawLists)
			card := normalize.Card(raw, normalize.DefaultListID(lists))
			if card.BoardID != 0 && card.BoardID != boardID {
				return writeErr(cmd, errNotFound("card", id))
			}
			sid := strconv.FormatInt(id, 10)
			return writeOut(cmd, app, map[string]any{
				"data": newCardOut(board.NewStore(boardID, lists), card, time.Now()),
				"_hints": []string{
					"kanban worklog list " + sid,
					"kanban cards move " + sid + " list:<list-id>",
				},
			})
		},
	}
}

func newCardsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <card-id> <target>",
		Short: "Move a card to another list (same rules as dragging it in the TUI)",
		Long: strings.TrimSpace(`
Move a card the way a drag-and-drop gesture would.

<target> may be:
  list:<id>   drop on a column background
  card:<id>   drop on a card (the card's current list wins)
  <id>        a card id if one exists, otherwise a list id

A target in the card's own list reorders locally and is not sent to the server.
The move is applied, persisted, and the board is re-fetched; on failure the
server's state is restored and the command exits non-zero.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			e, _, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()

			p, pending, err := e.MoveCard(id, args[1])
			if err != nil {
				if errors.Is(err, boardsync.ErrUnknownCard) {
					return writeErr(cmd, errNotFound("card", id))
				}
				return writeErr(cmd, err)
			}
			if p.Kind == board.PlaceNone {
				return writeErr(cmd, fmt.Errorf("target %q does not resolve to another list or card on this board", args[1]))
			}
			if err := e.Run(ctxOf(cmd), pending); err != nil {
				return writeErr(cmd, explain(err))
			}
			return writeMoved(cmd, app, e, p)
		},
	}
}

func newCardsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <card-id> <over-card-id>",
		Short: "Reorder a card within its list (local only; not persisted)",
		Long: strings.TrimSpace(`
Move a card to another card's position in the same list.

The server has no ordering field, so this order is never sent and is lost on the
next refresh. The command prints the resulting local order.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			over, err := parseID("card", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			e, _, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()

			p, _, err := e.MoveCard(id, board.CardTarget(over))
			if err != nil {
				if errors.Is(err, boardsync.ErrUnknownCard) {
					return writeErr(cmd, errNotFound("card", id))
				}
				return writeErr(cmd, err)
			}
			if p.Kind != board.PlaceReorder {
				return writeErr(cmd, fmt.Errorf("cards %d and %d are not in the same list (use `kanban cards move`)", id, over))
			}
			return writeMoved(cmd, app, e, p)
		},
	}
}

func writeMoved(cmd *cobra.Command, app *App, e *boardsync.Engine, p board.Placement) error {
	c, ok := e.Store().Card(p.CardID)
	if !ok {
		// Deleted remotely in the meantime; the refetch removed it.
		return writeErr(cmd, errNotFound("card", p.CardID))
	}
	order := []int64{}
	for _, x := range e.Store().CardsInList(c.ListID) {
		order = append(order, x.ID)
	}
	hints := []string{}
	if p.Kind == board.PlaceReorder {
		hints = append(hints, "intra-list order is local only and is lost on the next refresh")
	}
	return writeOut(cmd, app, map[string]any{
		"data": newCardOut(e.Store(), c, time.Now()),
		"meta": map[string]any{
			"placement":  p.Kind.String(),
			"fromListId": p.FromListID,
			"toListId":   p.ToListID,
			"listOrder":  order,
		},
		"_hints": hints,
	})
}

type cardFields struct {
	title       string
	description string
	due         string
}

func (f cardFields) dueDate() (*time.Time, error) {
	s := strings.TrimSpace(f.due)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --due %q (want YYYY-MM-DD)", f.due)
	}
	return &t, nil
}

func newCardsCreateCmd(app *App) *cobra.Command {
	var (
		fields cardFields
		listID string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card (optionally moving it to --list)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(fields.title)
			if title == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			due, err := fields.dueDate()
			if err != nil {
				return writeErr(cmd, err)
			}
			boardID, err := app.boardID()
			if err != nil {
				return writeErr(cmd, err)
			}
			in := api.CardCreate{BoardID: boardID, Title: title, DueDate: due}
			if d := strings.TrimSpace(fields.description); d != "" {
				in.Description = &d
			}

			var to int64
			if strings.TrimSpace(listID) != "" {
				if to, err = parseID("list", listID); err != nil {
					return writeErr(cmd, err)
				}
			}

			e, c, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()
			if to != 0 && !e.Store().HasList(to) {
				return writeErr(cmd, errNotFound("list", to))
			}
			raw, err := c.CreateCard(ctxOf(cmd), in)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			created := normalize.Card(raw, normalize.DefaultListID(e.Store().Lists()))
			if err := e.Run(ctxOf(cmd), e.Refresh()); err != nil {
				return writeErr(cmd, explain(err))
			}
			if to != 0 {
				_, pending, err := e.MoveCard(created.ID, board.ListTarget(to))
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := e.Run(ctxOf(cmd), pending); err != nil {
					return writeErr(cmd, explain(err))
				}
			}
			if cur, ok := e.Store().Card(created.ID); ok {
				created = cur
			}
			return writeOut(cmd, app, map[string]any{
				"data":   newCardOut(e.Store(), created, time.Now()),
				"_hints": []string{"kanban cards show " + strconv.FormatInt(created.ID, 10)},
			})
		},
	}
	cmd.Flags().StringVar(&fields.title, "title", "", "Card title")
	cmd.Flags().StringVar(&fields.description, "description", "", "Card description (markdown)")
	cmd.Flags().StringVar(&fields.due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&listID, "list", "", "Move the new card to this list id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newCardsEditCmd(app *App) *cobra.Command {
	var fields cardFields
	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Edit a card's title, description or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var in api.CardUpdate
			if cmd.Flags().Changed("title") {
				t := strings.TrimSpace(fields.title)
				if t == "" {
					return writeErr(cmd, errors.New("--title cannot be empty"))
				}
				in.Title = &t
			}
			if cmd.Flags().Changed("description") {
				d := fields.description
				in.Description = &d
			}
			if cmd.Flags().Changed("due") {
				if in.DueDate, err = fields.dueDate(); err != nil {
					return writeErr(cmd, err)
				}
			}
			if in.Empty() {
				return writeErr(cmd, errors.New("nothing to change (use --title, --description or --due)"))
			}

			e, c, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()
			if _, ok := e.Store().Card(id); !ok {
				return writeErr(cmd, errNotFound("card", id))
			}
			if _, err := c.UpdateCard(ctxOf(cmd), id, in); err != nil {
				return writeErr(cmd, explain(err))
			}
			if err := e.Run(ctxOf(cmd), e.Refresh()); err != nil {
				return writeErr(cmd, explain(err))
			}
			updated, ok := e.Store().Card(id)
			if !ok {
				return writeErr(cmd, errNotFound("card", id))
			}
			return writeOut(cmd, app, map[string]any{"data": newCardOut(e.Store(), updated, time.Now())})
		},
	}
	cmd.Flags().StringVar(&fields.title, "title", "", "New title")
	cmd.Flags().StringVar(&fields.description, "description", "", "New description (markdown)")
	cmd.Flags().StringVar(&fields.due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func newCardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card and refresh the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("card", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			e, _, done, err := app.loadEngine(cmd)
			if err != nil {
				return writeErr(cmd, explain(err))
			}
			defer done()
			if _, ok := e.Store().Card(id); !ok {
				return writeErr(cmd, errNotFound("card", id))
			}
			if err := e.Run(ctxOf(cmd), e.Delete(id)); err != nil {
				return writeErr(cmd, explain(err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": id},
				"meta": map[string]any{"total": e.Store().Len()},
			})
		},
	}
}

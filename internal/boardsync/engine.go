package boardsync

import (
	"context"
	"errors"
	"fmt"

	"kanban-cli/internal/board"
	"kanban-cli/internal/normalize"
)

var ErrUnknownCard = errors.New("card not found on this board")

// Notifier receives human-readable failure messages.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

type Engine struct {
	rec    *Reconciler
	store  *board.Store
	drag   board.DragController
	notify Notifier
}

type EngineOption func(*Engine)

func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notify = n }
}

// NewEngine creates an engine with an empty store for the reconciler's board.
// Call Load (and apply its Result) before using it.
func NewEngine(rec *Reconciler, opts ...EngineOption) *Engine {
	e := &Engine{
		rec:   rec,
		store: board.NewStore(rec.BoardID(), nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Store exposes the board state for reading. Callers must not mutate it outside
// the owning thread.
func (e *Engine) Store() *board.Store { return e.store }

func (e *Engine) DragState() board.DragState { return e.drag.State() }

func (e *Engine) DragSession() (board.DragSession, bool) { return e.drag.Session() }

func (e *Engine) View(f board.Filter) board.View { return board.Project(e.store, f) }

func (e *Engine) BeginDrag(cardID int64) error {
	c, ok := e.store.Card(cardID)
	if !ok {
		return fmt.Errorf("card %d: %w", cardID, ErrUnknownCard)
	}
	return e.drag.Begin(c)
}

func (e *Engine) DragOver(target string) { e.drag.Over(target) }

func (e *Engine) CancelDrag() {
	e.drag.Cancel()
	e.drag.Settle()
}

// Drop ends the active gesture. The optimistic mutation is applied before Drop
// returns; for a cross-list move the returned Pending persists it. The controller
// is always back to idle afterwards.
func (e *Engine) Drop() (board.Placement, Pending) {
	defer e.drag.Settle()

	sess, commit := e.drag.Release()
	if !commit {
		return board.Placement{Kind: board.PlaceNone, CardID: sess.Card.ID}, nil
	}
	p := board.Resolve(e.store, sess.Card.ID, sess.Over)
	switch p.Kind {
	case board.PlaceReorder:
		e.store.ReorderWithinList(p.CardID, p.OverCardID)
		return p, nil
	case board.PlaceMove:
		e.store.MoveCardToList(p.CardID, p.ToListID)
		return p, func(ctx context.Context) Result {
			return e.rec.Persist(ctx, p.CardID, p.FromListID, p.ToListID)
		}
	default:
		return p, nil
	}
}

// MoveCard is a whole gesture in one call: begin, hover target, drop.
func (e *Engine) MoveCard(cardID int64, target string) (board.Placement, Pending, error) {
	if err := e.BeginDrag(cardID); err != nil {
		return board.Placement{Kind: board.PlaceNone, CardID: cardID}, nil, err
	}
	e.DragOver(target)
	p, pending := e.Drop()
	return p, pending, nil
}

func (e *Engine) Load() Pending {
	return e.rec.Load
}

func (e *Engine) Refresh() Pending {
	return e.rec.Refresh
}

func (e *Engine) Delete(cardID int64) Pending {
	return func(ctx context.Context) Result {
		return e.rec.Delete(ctx, cardID)
	}
}

// Apply installs a Result on the owning thread. Snapshots replace the store
// wholesale, so whichever Result is applied last wins. When the refetch itself
// failed the store keeps its current (possibly optimistic) state. Failures are
// sent to the notifier and returned.
func (e *Engine) Apply(r Result) error {
	if r.HasLists {
		e.store.SetLists(r.Lists)
	}
	if r.HasSnapshot {
		e.store.ApplySnapshot(normalize.Cards(r.RawCards, normalize.DefaultListID(e.store.Lists())))
	}
	if !r.Failed() {
		return nil
	}
	err := r.Err
	if err == nil {
		err = r.RefreshErr
	}
	err = failure(r, err)
	if e.notify != nil {
		e.notify.Notify(err.Error())
	}
	return err
}

// Run executes p inline and applies its Result. A nil Pending is a no-op.
func (e *Engine) Run(ctx context.Context, p Pending) error {
	if p == nil {
		return nil
	}
	return e.Apply(p(ctx))
}

func failure(r Result, err error) error {
	switch {
	case r.Op == OpMove && r.Err != nil:
		return fmt.Errorf("could not move card %d: %w", r.CardID, err)
	case r.Op == OpDelete && r.Err != nil:
		return fmt.Errorf("could not delete card %d: %w", r.CardID, err)
	default:
		return fmt.Errorf("could not reload board: %w", err)
	}
}

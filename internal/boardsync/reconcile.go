// Package boardsync connects the in-memory board to the remote API.
//
// A Reconciler performs only remote work and may run on any goroutine. The Engine
// owns the board.Store and the drag controller and must be driven from one logical
// thread: it applies optimistic mutations synchronously and hands back Pending
// closures whose Results are later applied on that same thread.
package boardsync

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"kanban-cli/internal/model"
	"kanban-cli/internal/normalize"
	"kanban-cli/internal/store"

	"github.com/sirupsen/logrus"
)

// Remote is the subset of the API client the sync layer needs.
type Remote interface {
	ListLists(ctx context.Context, boardID int64) ([]json.RawMessage, error)
	ListCards(ctx context.Context, boardID int64) ([]json.RawMessage, error)
	MoveCard(ctx context.Context, cardID, listID int64) error
	DeleteCard(ctx context.Context, cardID int64) error
}

// Journal receives one entry per persistence attempt.
type Journal interface {
	Record(ctx context.Context, e store.JournalEntry) error
}

type Op string

const (
	OpLoad    Op = "load"
	OpRefresh Op = "refresh"
	OpMove    Op = "move"
	OpDelete  Op = "delete"
)

// Result is the outcome of one remote round trip. Cards are raw records; they are
// normalized when the Result is applied, against the lists installed at that time.
type Result struct {
	Op         Op
	CardID     int64
	FromListID int64
	ToListID   int64

	Lists    []model.List
	HasLists bool

	RawCards    []json.RawMessage
	HasSnapshot bool

	// Err is the failure of the operation itself (move, delete, list fetch).
	Err error
	// RefreshErr is the failure of the snapshot refetch that follows it.
	RefreshErr error
}

// Failed reports whether any part of the round trip failed.
func (r Result) Failed() bool { return r.Err != nil || r.RefreshErr != nil }

// Pending is deferred remote work. It is safe to run off the owning thread.
type Pending func(ctx context.Context) Result

type Reconciler struct {
	boardID int64
	remote  Remote
	journal Journal
	log     logrus.FieldLogger
	now     func() time.Time
}

type ReconcilerOption func(*Reconciler)

func WithJournal(j Journal) ReconcilerOption {
	return func(r *Reconciler) { r.journal = j }
}

func WithLogger(l logrus.FieldLogger) ReconcilerOption {
	return func(r *Reconciler) { r.log = l }
}

func NewReconciler(boardID int64, remote Remote, opts ...ReconcilerOption) *Reconciler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	r := &Reconciler{
		boardID: boardID,
		remote:  remote,
		log:     discard,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Reconciler) BoardID() int64 { return r.boardID }

// Load fetches the board's lists and then its cards.
func (r *Reconciler) Load(ctx context.Context) Result {
	res := Result{Op: OpLoad}
	raws, err := r.remote.ListLists(ctx, r.boardID)
	if err != nil {
		res.Err = err
		r.log.WithError(err).WithField("board_id", r.boardID).Warn("load lists failed")
		return res
	}
	res.Lists = normalize.Lists(raws)
	res.HasLists = true
	r.snapshot(ctx, &res)
	return res
}

// Refresh refetches the card snapshot only.
func (r *Reconciler) Refresh(ctx context.Context) Result {
	res := Result{Op: OpRefresh}
	r.snapshot(ctx, &res)
	return res
}

// Persist sends a card's new list to the server and then always refetches the
// snapshot, whether the update succeeded or not. There is no retry.
func (r *Reconciler) Persist(ctx context.Context, cardID, fromListID, toListID int64) Result {
	res := Result{Op: OpMove, CardID: cardID, FromListID: fromListID, ToListID: toListID}
	start := r.now()
	res.Err = r.remote.MoveCard(ctx, cardID, toListID)
	r.snapshot(ctx, &res)
	r.record(ctx, res, start)
	return res
}

// Delete removes a card remotely and refetches the snapshot.
func (r *Reconciler) Delete(ctx context.Context, cardID int64) Result {
	res := Result{Op: OpDelete, CardID: cardID}
	start := r.now()
	res.Err = r.remote.DeleteCard(ctx, cardID)
	r.snapshot(ctx, &res)
	r.record(ctx, res, start)
	return res
}

func (r *Reconciler) snapshot(ctx context.Context, res *Result) {
	raws, err := r.remote.ListCards(ctx, r.boardID)
	if err != nil {
		res.RefreshErr = err
		r.log.WithError(err).WithField("board_id", r.boardID).Warn("card refetch failed")
		return
	}
	res.RawCards = raws
	res.HasSnapshot = true
}

func (r *Reconciler) record(ctx context.Context, res Result, start time.Time) {
	e := store.JournalEntry{
		At:         start.UTC(),
		BoardID:    r.boardID,
		CardID:     res.CardID,
		Op:         string(res.Op),
		FromListID: res.FromListID,
		ToListID:   res.ToListID,
		Outcome:    store.OutcomeOK,
		ElapsedMS:  r.now().Sub(start).Milliseconds(),
	}
	switch {
	case res.Err != nil:
		e.Outcome = store.OutcomeRejected
		e.Error = res.Err.Error()
	case res.RefreshErr != nil:
		e.Outcome = store.OutcomeRefreshError
		e.Error = res.RefreshErr.Error()
	}

	fields := logrus.Fields{
		"op":         e.Op,
		"card_id":    e.CardID,
		"to_list_id": e.ToListID,
		"outcome":    e.Outcome,
		"elapsed_ms": e.ElapsedMS,
	}
	if e.Outcome == store.OutcomeOK {
		r.log.WithFields(fields).Info("sync")
	} else {
		r.log.WithFields(fields).WithField("error", e.Error).Warn("sync")
	}

	if r.journal == nil {
		return
	}
	if err := r.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		r.log.WithError(err).Warn("journal record failed")
	}
}

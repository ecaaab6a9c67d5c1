package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/logging"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeRemote serves one board: Todo(1) holds 10 and 11, Doing(2) holds 12, Done(3) is empty.
type fakeRemote struct {
	cards    []map[string]any
	moveErr  error
	moves    []int64
	worklogs map[int64][]model.WorklogEntry
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		cards: []map[string]any{
			{"id": 10, "list_id": 1, "title": "Invoice export", "total_hours": 2.5},
			{"id": 11, "list_id": 1, "title": "Login bug", "labels": []any{map[string]any{"id": 5, "name": "Bug", "color": "red"}}},
			{"id": 12, "list_id": 2, "title": "Search page", "user_id": 3},
		},
		worklogs: map[int64][]model.WorklogEntry{
			10: {{ID: 1, CardID: 10, Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Hours: 1.5, Note: "first pass"}},
		},
	}
}

func (f *fakeRemote) ListLists(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	lists := []map[string]any{
		{"id": 1, "name": "Todo", "order": 1},
		{"id": 2, "name": "Doing", "order": 2},
		{"id": 3, "name": "Done", "order": 3},
	}
	out := make([]json.RawMessage, 0, len(lists))
	for _, l := range lists {
		b, _ := json.Marshal(l)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) ListCards(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(f.cards))
	for _, c := range f.cards {
		b, _ := json.Marshal(c)
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) MoveCard(ctx context.Context, cardID, listID int64) error {
	f.moves = append(f.moves, cardID)
	if f.moveErr != nil {
		return f.moveErr
	}
	for _, c := range f.cards {
		if c["id"] == int(cardID) {
			c["list_id"] = listID
		}
	}
	return nil
}

func (f *fakeRemote) DeleteCard(ctx context.Context, cardID int64) error {
	kept := f.cards[:0]
	for _, c := range f.cards {
		if c["id"] != int(cardID) {
			kept = append(kept, c)
		}
	}
	f.cards = kept
	return nil
}

func (f *fakeRemote) ListWorklogs(ctx context.Context, cardID int64) ([]model.WorklogEntry, error) {
	return f.worklogs[cardID], nil
}

func newTestModel(t *testing.T, remote *fakeRemote, restore store.BoardViewState) boardModel {
	t.Helper()
	e := boardsync.NewEngine(boardsync.NewReconciler(7, remote))
	m := newBoardModel(context.Background(), e, remote, logging.Discard(), restore)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	m = drain(t, m, m.Init())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(boardModel)
}

// drain runs cmd and feeds sync and worklog results back into Update. Timer
// driven messages (spinner ticks, cursor blinks) are not followed.
func drain(t *testing.T, m boardModel, cmd tea.Cmd) boardModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case syncResultMsg, worklogsMsg:
		next, more := m.Update(msg)
		m = drain(t, next.(boardModel), more)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends keys in order and returns the command produced by the last one.
func press(t *testing.T, m boardModel, keys ...string) (boardModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(boardModel)
	}
	return m, cmd
}

func listOf(t *testing.T, m boardModel, cardID int64) int64 {
	t.Helper()
	c, ok := m.engine.Store().Card(cardID)
	if !ok {
		t.Fatalf("card %d missing from store", cardID)
	}
	return c.ListID
}

func TestInit_LoadsBoardAndSelectsFirstCard(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})
	if !m.loaded || m.inflight != 0 {
		t.Fatalf("expected loaded with nothing in flight, loaded=%v inflight=%d", m.loaded, m.inflight)
	}
	if m.sel.cardID != 10 || m.sel.col != 0 {
		t.Fatalf("expected first card selected, got %+v", m.sel)
	}
	out := m.View()
	for _, want := range []string{"Todo (2)", "Doing (1)", "Done (0)", "Invoice export"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view, got=%q", want, out)
		}
	}
}

func TestDragAcrossColumns_OptimisticThenPersisted(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, store.BoardViewState{})

	m, _ = press(t, m, " ", "l")
	if m.engine.DragState() != board.DragDragging {
		t.Fatalf("expected dragging, got %s", m.engine.DragState())
	}
	if sess, _ := m.engine.DragSession(); sess.Over != board.CardTarget(12) {
		t.Fatalf("expected hover over card 12, got %q", sess.Over)
	}

	m, cmd := press(t, m, " ")
	if cmd == nil {
		t.Fatalf("expected a sync command for a cross-list drop")
	}
	if got := listOf(t, m, 10); got != 2 {
		t.Fatalf("expected optimistic move to list 2, got %d", got)
	}
	if len(remote.moves) != 0 {
		t.Fatalf("expected no request before the command runs")
	}
	if !strings.Contains(m.status, "Moved #10") || !strings.Contains(m.status, "Doing") {
		t.Fatalf("unexpected status %q", m.status)
	}

	m = drain(t, m, cmd)
	if len(remote.moves) != 1 || remote.moves[0] != 10 {
		t.Fatalf("expected one persisted move, got %v", remote.moves)
	}
	if got := listOf(t, m, 10); got != 2 {
		t.Fatalf("expected card 10 in list 2 after refetch, got %d", got)
	}
	if m.status != "Saved #10" || m.inflight != 0 {
		t.Fatalf("unexpected state after sync: status=%q inflight=%d", m.status, m.inflight)
	}
	if m.sel.cardID != 10 || m.sel.col != 1 {
		t.Fatalf("expected selection to follow the card, got %+v", m.sel)
	}
}

func TestDragIntoEmptyColumn_TargetsTheList(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, store.BoardViewState{})

	m, _ = press(t, m, " ", "l", "l")
	if sess, _ := m.engine.DragSession(); sess.Over != board.ListTarget(3) {
		t.Fatalf("expected hover over list 3, got %q", sess.Over)
	}
	if out := m.View(); !strings.Contains(out, "drop here") {
		t.Fatalf("expected drop slot in view, got=%q", out)
	}
	m, cmd := press(t, m, " ")
	m = drain(t, m, cmd)
	if got := listOf(t, m, 10); got != 3 {
		t.Fatalf("expected card 10 in Done, got %d", got)
	}
}

func TestDragCancel_LeavesBoardUntouched(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, store.BoardViewState{})

	m, cmd := press(t, m, " ", "l", "esc")
	if cmd != nil {
		t.Fatalf("expected no command on cancel")
	}
	if m.engine.DragState() != board.DragIdle {
		t.Fatalf("expected idle, got %s", m.engine.DragState())
	}
	if got := listOf(t, m, 10); got != 1 {
		t.Fatalf("expected card 10 to stay in Todo, got %d", got)
	}
	if len(remote.moves) != 0 {
		t.Fatalf("expected no requests, got %v", remote.moves)
	}
}

func TestReorderWithinColumn_IsLocalOnly(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, store.BoardViewState{})

	m, cmd := press(t, m, " ", "j", " ")
	if cmd != nil {
		t.Fatalf("expected reorder to stay local")
	}
	todo := m.engine.Store().CardsInList(1)
	if len(todo) != 2 || todo[0].ID != 11 || todo[1].ID != 10 {
		t.Fatalf("unexpected order after reorder: %+v", todo)
	}
	if !strings.Contains(m.status, "not saved") {
		t.Fatalf("expected not-saved hint, got %q", m.status)
	}

	m, cmd = press(t, m, "r")
	m = drain(t, m, cmd)
	todo = m.engine.Store().CardsInList(1)
	if todo[0].ID != 10 {
		t.Fatalf("expected reload to restore server order, got %+v", todo)
	}
}

func TestFailedMove_RollsBackAndShowsError(t *testing.T) {
	remote := newFakeRemote()
	remote.moveErr = errors.New("boom")
	m := newTestModel(t, remote, store.BoardViewState{})

	m, cmd := press(t, m, " ", "l", " ")
	m = drain(t, m, cmd)
	if got := listOf(t, m, 10); got != 1 {
		t.Fatalf("expected rollback to list 1, got %d", got)
	}
	if !m.statusErr || !strings.Contains(m.status, "could not move card 10") {
		t.Fatalf("expected move error in status, got %q (err=%v)", m.status, m.statusErr)
	}
}

func TestSearch_FiltersWhileTypingAndEscRestores(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})

	m, _ = press(t, m, "/", "l", "o", "g")
	if m.mode != modeSearch || m.filter.Query != "log" {
		t.Fatalf("expected live query, mode=%v query=%q", m.mode, m.filter.Query)
	}
	if v := m.view(); v.Matched != 1 || m.sel.cardID != 11 {
		t.Fatalf("expected one match selected, matched=%d sel=%+v", v.Matched, m.sel)
	}
	// Keys typed into the search box must not reach the board.
	if m.engine.DragState() != board.DragIdle {
		t.Fatalf("expected no drag from search input")
	}

	m, _ = press(t, m, "esc")
	if m.mode != modeBoard || m.filter.Query != "" {
		t.Fatalf("expected esc to restore the previous query, got %q", m.filter.Query)
	}

	m, _ = press(t, m, "/", "s", "e", "a", "r", "enter")
	if m.mode != modeBoard || m.filter.Query != "sear" {
		t.Fatalf("expected enter to keep the query, got %q", m.filter.Query)
	}
	if got := m.viewState(); got.Query != "sear" || got.SelectedCardID != 12 {
		t.Fatalf("unexpected view state %+v", got)
	}
}

func TestLabelFilter_Cycles(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})

	m, _ = press(t, m, "f")
	if m.filter.LabelID == nil || *m.filter.LabelID != 5 {
		t.Fatalf("expected label 5 filter, got %v", m.filter.LabelID)
	}
	if m.sel.cardID != 11 {
		t.Fatalf("expected selection to move to a visible card, got %+v", m.sel)
	}
	if out := m.View(); !strings.Contains(out, "label Bug") || !strings.Contains(out, "1/3 cards") {
		t.Fatalf("expected filter summary in header, got=%q", out)
	}

	m, _ = press(t, m, "f")
	if m.filter.LabelID != nil {
		t.Fatalf("expected label filter off")
	}
}

func TestResponsibleFilter_CyclesUnassignedThenUsers(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})

	m, _ = press(t, m, "u")
	if m.filter.ResponsibleID == nil || *m.filter.ResponsibleID != 0 {
		t.Fatalf("expected unassigned first")
	}
	if v := m.view(); v.Matched != 2 {
		t.Fatalf("expected two unassigned cards, got %d", v.Matched)
	}
	m, _ = press(t, m, "u")
	if m.filter.ResponsibleID == nil || *m.filter.ResponsibleID != 3 {
		t.Fatalf("expected user 3 next")
	}
	m, _ = press(t, m, "u")
	if m.filter.ResponsibleID != nil {
		t.Fatalf("expected responsible filter off")
	}

	m, _ = press(t, m, "u", "c")
	if !m.filter.IsZero() {
		t.Fatalf("expected clear to drop every filter, got %+v", m.filter)
	}
}

func TestDelete_AsksForConfirmation(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, store.BoardViewState{})

	m, cmd := press(t, m, "d", "n")
	if cmd != nil || m.mode != modeBoard {
		t.Fatalf("expected cancel without a command")
	}
	if _, ok := m.engine.Store().Card(10); !ok {
		t.Fatalf("expected card 10 to survive a cancelled delete")
	}

	m, _ = press(t, m, "d")
	if out := m.View(); !strings.Contains(out, "Delete card #10?") {
		t.Fatalf("expected confirmation prompt, got=%q", out)
	}
	m, cmd = press(t, m, "y")
	m = drain(t, m, cmd)
	if _, ok := m.engine.Store().Card(10); ok {
		t.Fatalf("expected card 10 to be gone after refetch")
	}
	if m.status != "Deleted #10" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if m.sel.cardID != 11 {
		t.Fatalf("expected selection to move to the next card, got %+v", m.sel)
	}
}

func TestDetail_ShowsCardAndWorklog(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})

	m, cmd := press(t, m, "enter")
	if m.mode != modeDetail || !m.detail.loading {
		t.Fatalf("expected detail mode while loading")
	}
	m = drain(t, m, cmd)
	if m.detail.loading || len(m.detail.worklogs) != 1 {
		t.Fatalf("expected worklog loaded, got %+v", m.detail)
	}
	out := m.View()
	for _, want := range []string{"#10 Invoice export", "Todo", "2.5h", "first pass", "1.5h total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in detail view, got=%q", want, out)
		}
	}

	m, _ = press(t, m, "esc")
	if m.mode != modeBoard {
		t.Fatalf("expected esc to close the detail pane")
	}
}

func TestRestore_SelectsSavedCard(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{SelectedCardID: 12})
	if m.sel.col != 1 || m.sel.cardID != 12 {
		t.Fatalf("expected saved card to be selected, got %+v", m.sel)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

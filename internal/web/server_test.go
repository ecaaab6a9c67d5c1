package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu      sync.Mutex
	listOf  map[int64]int64
	titles  map[int64]string
	descs   map[int64]string
	moveErr error
	moves   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		listOf: map[int64]int64{10: 1, 11: 1, 12: 2},
		titles: map[int64]string{10: "Invoice export", 11: "Login bug", 12: "Search page"},
		descs:  map[int64]string{10: "Export **all** invoices"},
	}
}

func (f *fakeRemote) ListLists(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	return []json.RawMessage{
		json.RawMessage(`{"id":1,"name":"Todo","order":1}`),
		json.RawMessage(`{"id":2,"name":"Doing","order":2}`),
		json.RawMessage(`{"id":3,"name":"Done","order":3}`),
	}, nil
}

func (f *fakeRemote) ListCards(ctx context.Context, boardID int64) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.listOf))
	for id := range f.listOf {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		b, _ := json.Marshal(map[string]any{
			"id":          id,
			"board_id":    boardID,
			"list_id":     f.listOf[id],
			"title":       f.titles[id],
			"description": f.descs[id],
		})
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRemote) MoveCard(ctx context.Context, cardID, listID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves++
	if f.moveErr != nil {
		return f.moveErr
	}
	f.listOf[cardID] = listID
	return nil
}

func (f *fakeRemote) DeleteCard(ctx context.Context, cardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listOf, cardID)
	return nil
}

type fakeWorklogs struct{}

func (fakeWorklogs) ListWorklogs(ctx context.Context, cardID int64) ([]model.WorklogEntry, error) {
	if cardID != 10 {
		return nil, nil
	}
	return []model.WorklogEntry{
		{ID: 1, CardID: 10, Date: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), Hours: 1.5, Note: "pairing"},
	}, nil
}

func newTestServer(t *testing.T, remote *fakeRemote, readOnly bool) (*Server, *boardsync.Engine) {
	t.Helper()
	e := boardsync.NewEngine(boardsync.NewReconciler(7, remote))
	require.NoError(t, e.Run(context.Background(), e.Load()))
	s, err := NewServer(ServerConfig{Engine: e, Worklogs: fakeWorklogs{}, ReadOnly: readOnly})
	require.NoError(t, err)
	return s, e
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cardList(t *testing.T, e *boardsync.Engine, id int64) int64 {
	t.Helper()
	c, ok := e.Store().Card(id)
	require.True(t, ok, "card %d missing", id)
	return c.ListID
}

func TestNewServer_RequiresEngine(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestBoardPage_RendersColumnsAndCards(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	rec := do(t, s.Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, want := range []string{"Todo", "Doing", "Done", "Invoice export", "Search page", `id="card-10"`, `draggable="true"`, "@get('/events')", DefaultDatastarURL, "3/3 cards"} {
		assert.Contains(t, body, want)
	}
}

func TestBoardPage_FilterCarriesIntoEventStream(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	rec := do(t, s.Handler(), http.MethodGet, "/?q=invoice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Invoice export")
	assert.NotContains(t, body, "Login bug")
	assert.Contains(t, body, "/events?q=invoice")
	assert.Contains(t, body, "1/3 cards")
}

func TestBoardPage_ReadOnlyHasNoDragHandlers(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), true)
	body := do(t, s.Handler(), http.MethodGet, "/", "").Body.String()
	assert.NotContains(t, body, `draggable="true"`)
	assert.NotContains(t, body, "/refresh")
}

func TestDrop_MovesAcrossListsAndPersists(t *testing.T) {
	remote := newFakeRemote()
	s, e := newTestServer(t, remote, false)

	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":10,"over":"list:2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Moved #10 → Doing")
	assert.Equal(t, 1, remote.moves)
	assert.Equal(t, int64(2), cardList(t, e, 10))
}

func TestDrop_OnCardInAnotherList(t *testing.T) {
	remote := newFakeRemote()
	s, e := newTestServer(t, remote, false)

	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":11,"over":"card:12"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Moved #11 → Doing")
	assert.Equal(t, int64(2), cardList(t, e, 11))
}

func TestDrop_SameListReorderIsLocal(t *testing.T) {
	remote := newFakeRemote()
	s, e := newTestServer(t, remote, false)

	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":10,"over":"card:11"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reordered #10")
	assert.Equal(t, 0, remote.moves)

	cards := e.Store().CardsInList(1)
	require.Len(t, cards, 2)
	assert.Equal(t, int64(11), cards[0].ID)
	assert.Equal(t, int64(10), cards[1].ID)
}

func TestDrop_FailureRollsBack(t *testing.T) {
	remote := newFakeRemote()
	remote.moveErr = errors.New("boom")
	s, e := newTestServer(t, remote, false)

	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":10,"over":"list:3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not move card 10")
	assert.Contains(t, rec.Body.String(), `class="error"`)
	assert.Equal(t, int64(1), cardList(t, e, 10))
}

func TestDrop_WithoutTargetOrCard(t *testing.T) {
	remote := newFakeRemote()
	s, e := newTestServer(t, remote, false)

	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":10,"over":""}`)
	assert.Contains(t, rec.Body.String(), "Nothing moved")
	assert.Equal(t, int64(1), cardList(t, e, 10))

	rec = do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":0,"over":"list:2"}`)
	assert.Contains(t, rec.Body.String(), "Nothing moved")

	rec = do(t, s.Handler(), http.MethodPost, "/drop", `{"dragging":99,"over":"list:2"}`)
	assert.Contains(t, rec.Body.String(), "card not found")
	assert.Equal(t, 0, remote.moves)
}

func TestDrop_BadSignals(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	rec := do(t, s.Handler(), http.MethodPost, "/drop", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutationsRejectedWhenReadOnly(t *testing.T) {
	remote := newFakeRemote()
	s, _ := newTestServer(t, remote, true)
	h := s.Handler()

	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/drop", `{"dragging":10,"over":"list:2"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/refresh", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/cards/10", "").Code)
	assert.Equal(t, 0, remote.moves)
}

func TestCardDetail_MarkdownAndWorklogs(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)

	rec := do(t, s.Handler(), http.MethodGet, "/cards/10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>all</strong>")
	assert.Contains(t, body, "pairing")
	assert.Contains(t, body, "1.5h")
	assert.Contains(t, body, "Todo")

	rec = do(t, s.Handler(), http.MethodGet, "/cards/12", "")
	assert.Contains(t, rec.Body.String(), "No description.")
	assert.Contains(t, rec.Body.String(), "No time logged.")
}

func TestCardDetail_UnknownAndInvalid(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	assert.Equal(t, http.StatusNotFound, do(t, s.Handler(), http.MethodGet, "/cards/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/cards/abc", "").Code)
}

func TestDeleteCard(t *testing.T) {
	s, e := newTestServer(t, newFakeRemote(), false)

	rec := do(t, s.Handler(), http.MethodDelete, "/cards/10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deleted #10")
	_, ok := e.Store().Card(10)
	assert.False(t, ok)

	assert.Equal(t, http.StatusNotFound, do(t, s.Handler(), http.MethodDelete, "/cards/10", "").Code)
}

func TestRefreshPicksUpRemoteChanges(t *testing.T) {
	remote := newFakeRemote()
	s, e := newTestServer(t, remote, false)

	remote.mu.Lock()
	remote.listOf[12] = 3
	remote.mu.Unlock()

	rec := do(t, s.Handler(), http.MethodPost, "/refresh", "")
	assert.Contains(t, rec.Body.String(), "Reloaded")
	assert.Equal(t, int64(3), cardList(t, e, 12))
}

func TestEvents_StreamsBoardAndPatchesOnChange(t *testing.T) {
	s, _ := newTestServer(t, newFakeRemote(), false)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case ln, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q", want)
				}
				if strings.Contains(ln, want) {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}

	waitFor("datastar-patch-elements")
	waitFor(`id="card-10"`)

	drop, err := http.Post(ts.URL+"/drop", "application/json", strings.NewReader(`{"dragging":10,"over":"list:3"}`))
	require.NoError(t, err)
	_ = drop.Body.Close()

	waitFor("datastar-patch-elements")
	waitFor(`id="card-10"`)
}

func TestParseFilter(t *testing.T) {
	f := parseFilter(url.Values{"q": {"  invoice "}, "label": {"5"}, "owner": {"0"}})
	assert.Equal(t, "invoice", f.Query)
	require.NotNil(t, f.LabelID)
	assert.Equal(t, int64(5), *f.LabelID)
	require.NotNil(t, f.ResponsibleID)
	assert.Equal(t, int64(0), *f.ResponsibleID)

	f = parseFilter(url.Values{"label": {"x"}, "owner": {""}})
	assert.True(t, f.IsZero())
}

func TestEventsURL(t *testing.T) {
	assert.Equal(t, "/events", eventsURL(url.Values{}))
	assert.Equal(t, "/events?label=5&q=a+b", eventsURL(url.Values{"q": {"a b"}, "label": {"5"}, "page": {"2"}}))
}

func TestBoardHub_CoalescesWakeups(t *testing.T) {
	h := newBoardHub()
	ch, cancel := h.subscribe()
	h.broadcast()
	h.broadcast()
	assert.Len(t, ch, 1)
	assert.Equal(t, 1, h.len())
	cancel()
	assert.Equal(t, 0, h.len())
}

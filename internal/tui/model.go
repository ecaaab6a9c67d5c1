package tui

import (
	"context"
	"strings"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type mode int

const (
	modeBoard mode = iota
	modeSearch
	modeDetail
	modeConfirmDelete
	modeHelp
)

// WorklogSource is the part of the API client the detail pane reads from.
type WorklogSource interface {
	ListWorklogs(ctx context.Context, cardID int64) ([]model.WorklogEntry, error)
}

// syncResultMsg carries a remote round trip back to the Update loop, which is
// the only place the engine's Results are applied.
type syncResultMsg struct {
	res boardsync.Result
}

type worklogsMsg struct {
	cardID  int64
	entries []model.WorklogEntry
	err     error
}

// cursor addresses a slot in the filtered view. For the drag hover, row may be
// len(cards), which is the column body below the last card.
type cursor struct {
	col    int
	row    int
	cardID int64
}

type detailState struct {
	cardID   int64
	worklogs []model.WorklogEntry
	loading  bool
	err      error
}

type boardModel struct {
	ctx      context.Context
	engine   *boardsync.Engine
	worklogs WorklogSource
	log      logrus.FieldLogger
	keys     keyMap
	now      func() time.Time

	width  int
	height int
	mode   mode

	filter    board.Filter
	search    textinput.Model
	prevQuery string

	sel   cursor
	hover cursor

	spinner  spinner.Model
	inflight int
	loaded   bool

	status    string
	statusErr bool

	detail   detailState
	deleteID int64
}

func newBoardModel(ctx context.Context, e *boardsync.Engine, wl WorklogSource, log logrus.FieldLogger, restore store.BoardViewState) boardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search title or description"
	ti.CharLimit = 200
	ti.SetValue(restore.Query)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return boardModel{
		ctx:      ctx,
		engine:   e,
		worklogs: wl,
		log:      log,
		keys:     defaultKeyMap(),
		now:      time.Now,
		filter:   board.Filter{Query: strings.TrimSpace(restore.Query)},
		search:   ti,
		sel:      cursor{cardID: restore.SelectedCardID},
		spinner:  sp,
		// Init starts the initial load.
		inflight: 1,
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, syncCmd(m.ctx, m.engine.Load()))
}

func syncCmd(ctx context.Context, p boardsync.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return syncResultMsg{res: p(ctx)}
	}
}

// startSync runs p off the Update loop. A nil Pending starts nothing.
func (m *boardModel) startSync(p boardsync.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	m.inflight++
	if m.inflight == 1 {
		return tea.Batch(m.spinner.Tick, syncCmd(m.ctx, p))
	}
	return syncCmd(m.ctx, p)
}

func (m boardModel) fetchWorklogs(cardID int64) tea.Cmd {
	if m.worklogs == nil {
		return nil
	}
	ctx, wl := m.ctx, m.worklogs
	return func() tea.Msg {
		entries, err := wl.ListWorklogs(ctx, cardID)
		return worklogsMsg{cardID: cardID, entries: entries, err: err}
	}
}

func (m boardModel) view() board.View {
	return m.engine.View(m.filter)
}

// clampSelection keeps the selection on the same card when it is still visible,
// otherwise on the nearest slot.
func (m *boardModel) clampSelection(v board.View) {
	lost := m.sel.cardID != 0
	if lost {
		for ci, col := range v.Columns {
			for ri, c := range col.Cards {
				if c.ID == m.sel.cardID {
					m.sel.col, m.sel.row = ci, ri
					return
				}
			}
		}
	}
	if len(v.Columns) == 0 {
		m.sel = cursor{}
		return
	}
	m.sel.col = clamp(m.sel.col, 0, len(v.Columns)-1)
	if lost && len(v.Columns[m.sel.col].Cards) == 0 {
		m.sel.col = nearestNonEmpty(v, m.sel.col)
	}
	cards := v.Columns[m.sel.col].Cards
	if len(cards) == 0 {
		m.sel.row, m.sel.cardID = 0, 0
		return
	}
	m.sel.row = clamp(m.sel.row, 0, len(cards)-1)
	m.sel.cardID = cards[m.sel.row].ID
}

// nearestNonEmpty returns the closest column with cards, preferring the right,
// or col itself when every column is empty.
func nearestNonEmpty(v board.View, col int) int {
	for d := 1; d < len(v.Columns); d++ {
		for _, c := range []int{col + d, col - d} {
			if c >= 0 && c < len(v.Columns) && len(v.Columns[c].Cards) > 0 {
				return c
			}
		}
	}
	return col
}

func (m boardModel) selectedCard(v board.View) (model.Card, bool) {
	if m.sel.col < 0 || m.sel.col >= len(v.Columns) {
		return model.Card{}, false
	}
	cards := v.Columns[m.sel.col].Cards
	if m.sel.row < 0 || m.sel.row >= len(cards) {
		return model.Card{}, false
	}
	return cards[m.sel.row], true
}

// hoverTarget turns the hover cursor into a drop target id. Card slots use the
// card tier only and the slot below the last card uses the list tier only, so an
// empty column is always a valid target.
func hoverTarget(v board.View, h cursor) string {
	if h.col < 0 || h.col >= len(v.Columns) {
		return ""
	}
	col := v.Columns[h.col]
	if h.row >= 0 && h.row < len(col.Cards) {
		return board.CardTarget(col.Cards[h.row].ID)
	}
	return board.ListTarget(col.List.ID)
}

func (m *boardModel) setStatus(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *boardModel) setError(err error) {
	m.status, m.statusErr = err.Error(), true
	if m.log != nil {
		m.log.WithError(err).Warn("tui")
	}
}

// viewState is what survives a relaunch.
func (m boardModel) viewState() store.BoardViewState {
	return store.BoardViewState{
		SelectedCardID: m.sel.cardID,
		Query:          strings.TrimSpace(m.filter.Query),
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

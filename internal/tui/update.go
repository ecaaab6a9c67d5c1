package tui

import (
	"fmt"
	"strconv"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/boardsync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(10, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		// Let the tick chain die once nothing is in flight.
		if m.inflight <= 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncResultMsg:
		return m.applyResult(msg.res)

	case clipboardMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("copy failed: %w", msg.err))
		} else {
			m.setStatus("Copied " + msg.what)
		}
		return m, nil

	case worklogsMsg:
		if msg.cardID == m.detail.cardID {
			m.detail.loading = false
			m.detail.worklogs = msg.entries
			m.detail.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeHelp:
			m.mode = modeBoard
			return m, nil
		}
		if m.engine.DragState() == board.DragDragging {
			return m.updateDrag(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m boardModel) applyResult(res boardsync.Result) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	err := m.engine.Apply(res)
	if res.Op == boardsync.OpLoad && res.HasSnapshot {
		m.loaded = true
	}
	switch {
	case err != nil:
		m.setError(err)
	case res.Op == boardsync.OpDelete:
		m.setStatus(fmt.Sprintf("Deleted #%d", res.CardID))
	case res.Op == boardsync.OpMove:
		m.setStatus(fmt.Sprintf("Saved #%d", res.CardID))
	case res.Op == boardsync.OpRefresh:
		m.setStatus("Reloaded")
	}

	v := m.view()
	m.clampSelection(v)
	if m.engine.DragState() == board.DragDragging {
		m.clampHover(v)
	}
	if m.mode == modeDetail {
		if _, ok := m.engine.Store().Card(m.detail.cardID); !ok {
			m.mode = modeBoard
		}
	}
	return m, nil
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view()
	m.clampSelection(v)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		m.moveSelection(v, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(v, 1, 0)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(v, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(v, 0, 1)

	case key.Matches(msg, m.keys.Grab):
		c, ok := m.selectedCard(v)
		if !ok {
			m.setStatus("Nothing to grab")
			return m, nil
		}
		if err := m.engine.BeginDrag(c.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.hover = m.sel
		m.engine.DragOver(hoverTarget(v, m.hover))
		m.setStatus(fmt.Sprintf("Moving #%d", c.ID))

	case key.Matches(msg, m.keys.Open):
		c, ok := m.selectedCard(v)
		if !ok {
			return m, nil
		}
		m.mode = modeDetail
		m.detail = detailState{cardID: c.ID, loading: m.worklogs != nil}
		return m, m.fetchWorklogs(c.ID)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.prevQuery = m.filter.Query
		m.search.SetValue(m.filter.Query)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Label):
		m.cycleLabelFilter()
		m.clampSelection(m.view())
	case key.Matches(msg, m.keys.Owner):
		m.cycleResponsibleFilter()
		m.clampSelection(m.view())
	case key.Matches(msg, m.keys.Clear):
		m.filter = board.Filter{}
		m.search.SetValue("")
		m.setStatus("Filters cleared")
		m.clampSelection(m.view())

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading")
		return m, m.startSync(m.engine.Refresh())

	case key.Matches(msg, m.keys.Delete):
		c, ok := m.selectedCard(v)
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.deleteID = c.ID

	case key.Matches(msg, m.keys.Copy):
		if c, ok := m.selectedCard(v); ok {
			return m, copyCmd(fmt.Sprintf("#%d", c.ID), cardRef(c))
		}
	case key.Matches(msg, m.keys.CopyCmd):
		if c, ok := m.selectedCard(v); ok {
			return m, copyCmd("show command", cardShowCommand(c, m.engine.Store().BoardID()))
		}

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}
	return m, nil
}

func (m *boardModel) moveSelection(v board.View, dcol, drow int) {
	if len(v.Columns) == 0 {
		return
	}
	m.sel.col = clamp(m.sel.col+dcol, 0, len(v.Columns)-1)
	cards := v.Columns[m.sel.col].Cards
	if len(cards) == 0 {
		m.sel.row, m.sel.cardID = 0, 0
		return
	}
	m.sel.row = clamp(m.sel.row+drow, 0, len(cards)-1)
	m.sel.cardID = cards[m.sel.row].ID
}

func (m boardModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view()
	m.clampHover(v)

	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveHover(v, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveHover(v, 1, 0)
	case key.Matches(msg, m.keys.Up):
		m.moveHover(v, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveHover(v, 0, 1)

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.engine.CancelDrag()
		m.setStatus("Move cancelled")

	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Open):
		p, pending := m.engine.Drop()
		m.sel.cardID = p.CardID
		m.setStatus(m.dropStatus(p))
		m.clampSelection(m.view())
		return m, m.startSync(pending)
	}
	return m, nil
}

func (m *boardModel) clampHover(v board.View) {
	if len(v.Columns) == 0 {
		m.hover = cursor{}
		return
	}
	m.hover.col = clamp(m.hover.col, 0, len(v.Columns)-1)
	m.hover.row = clamp(m.hover.row, 0, len(v.Columns[m.hover.col].Cards))
}

func (m *boardModel) moveHover(v board.View, dcol, drow int) {
	if len(v.Columns) == 0 {
		return
	}
	m.hover.col = clamp(m.hover.col+dcol, 0, len(v.Columns)-1)
	m.hover.row = clamp(m.hover.row+drow, 0, len(v.Columns[m.hover.col].Cards))
	m.engine.DragOver(hoverTarget(v, m.hover))
}

func (m boardModel) dropStatus(p board.Placement) string {
	switch p.Kind {
	case board.PlaceMove:
		name := "list " + strconv.FormatInt(p.ToListID, 10)
		if l, ok := m.engine.Store().List(p.ToListID); ok {
			name = l.Name
		}
		return fmt.Sprintf("Moved #%d %s %s", p.CardID, glyphArrow(), name)
	case board.PlaceReorder:
		return fmt.Sprintf("Reordered #%d (not saved; lost on reload)", p.CardID)
	default:
		return "Nothing moved"
	}
}

func (m boardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBoard
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeBoard
		m.search.Blur()
		m.filter.Query = m.prevQuery
		m.search.SetValue(m.prevQuery)
		m.clampSelection(m.view())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.clampSelection(m.view())
	return m, cmd
}

func (m boardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Quit):
		m.mode = modeBoard
		m.detail = detailState{}
	}
	return m, nil
}

func (m boardModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deleteID
	m.mode = modeBoard
	m.deleteID = 0
	if strings.ToLower(msg.String()) != "y" {
		m.setStatus("Delete cancelled")
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Deleting #%d", id))
	return m, m.startSync(m.engine.Delete(id))
}

// cycleLabelFilter steps through the labels present on the board, then off.
func (m *boardModel) cycleLabelFilter() {
	labels := board.Labels(m.engine.Store())
	if len(labels) == 0 {
		m.filter.LabelID = nil
		m.setStatus("No labels on this board")
		return
	}
	next := 0
	if m.filter.LabelID != nil {
		next = len(labels)
		for i, l := range labels {
			if l.ID == *m.filter.LabelID {
				next = i + 1
				break
			}
		}
	}
	if next >= len(labels) {
		m.filter.LabelID = nil
		m.setStatus("Label filter off")
		return
	}
	id := labels[next].ID
	m.filter.LabelID = &id
	m.setStatus("Label: " + labels[next].Name)
}

// cycleResponsibleFilter steps through unassigned, each responsible, then off.
func (m *boardModel) cycleResponsibleFilter() {
	opts := append([]int64{0}, board.Responsibles(m.engine.Store())...)
	next := 0
	if m.filter.ResponsibleID != nil {
		next = len(opts)
		for i, id := range opts {
			if id == *m.filter.ResponsibleID {
				next = i + 1
				break
			}
		}
	}
	if next >= len(opts) {
		m.filter.ResponsibleID = nil
		m.setStatus("Responsible filter off")
		return
	}
	id := opts[next]
	m.filter.ResponsibleID = &id
	m.setStatus("Responsible: " + responsibleName(id))
}

func responsibleName(id int64) string {
	if id == 0 {
		return "unassigned"
	}
	return "user " + strconv.FormatInt(id, 10)
}

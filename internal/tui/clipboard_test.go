package tui

import (
	"errors"
	"testing"

	"kanban-cli/internal/model"
	"kanban-cli/internal/store"
)

func TestCardRefAndShowCommand(t *testing.T) {
	c := model.Card{ID: 12, Title: "  Search page "}
	if got := cardRef(c); got != "#12 Search page" {
		t.Fatalf("cardRef: got %q", got)
	}
	if got := cardShowCommand(c, 7); got != "kanban --board 7 cards show 12" {
		t.Fatalf("cardShowCommand: got %q", got)
	}
}

func TestCopyKeys_ReturnCommandsAndReportOutcome(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), store.BoardViewState{})

	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatalf("expected a clipboard command for y")
	}
	_, cmd = press(t, m, "Y")
	if cmd == nil {
		t.Fatalf("expected a clipboard command for Y")
	}

	next, _ := m.Update(clipboardMsg{what: "#10"})
	m = next.(boardModel)
	if m.status != "Copied #10" || m.statusErr {
		t.Fatalf("expected copy status, got %q err=%v", m.status, m.statusErr)
	}

	next, _ = m.Update(clipboardMsg{what: "#10", err: errors.New("xclip: not found")})
	m = next.(boardModel)
	if !m.statusErr {
		t.Fatalf("expected an error status, got %q", m.status)
	}
}

package tui

import (
	"context"
	"errors"

	"kanban-cli/internal/boardsync"
	"kanban-cli/internal/logging"
	"kanban-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Engine must be created for the board to show; Run performs the initial load.
	Engine *boardsync.Engine
	// Client is optional; without it the detail pane has no worklog.
	Client WorklogSource
	Log    logrus.FieldLogger
	Prefs  *store.TUIConfig
}

// Run starts the interactive board and blocks until the user quits. The
// bubbletea Update loop is the only goroutine that touches the engine's store.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Engine == nil {
		return errors.New("tui: no board engine")
	}
	log := cfg.Log
	if log == nil {
		log = logging.Discard()
	}
	prefs := store.TUIConfig{}
	if cfg.Prefs != nil {
		prefs = *cfg.Prefs
	}
	applyColorProfilePreference()
	applyThemePreference(prefs.Theme)
	applyGlyphPreference(prefs.Glyphs)

	st, err := store.LoadTUIState()
	if err != nil {
		log.WithError(err).Warn("load tui state")
		st = &store.TUIState{Version: 1}
	}
	boardID := cfg.Engine.Store().BoardID()

	m := newBoardModel(ctx, cfg.Engine, cfg.Client, log, st.Board(boardID))
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(boardModel); ok {
		st.SetBoard(boardID, fm.viewState())
		if err := store.SaveTUIState(st); err != nil {
			log.WithError(err).Warn("save tui state")
		}
	}
	return nil
}

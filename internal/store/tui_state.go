package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing UI state for restoring the board on relaunch.
//
// It is "best effort": callers should tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Boards is keyed by board id.
	Boards map[string]BoardViewState `json:"boards,omitempty"`
}

type BoardViewState struct {
	SelectedCardID int64  `json:"selectedCardId,omitempty"`
	Query          string `json:"query,omitempty"`
}

func tuiStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tuiStateFileName), nil
}

func LoadTUIState() (*TUIState, error) {
	path, err := tuiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state is treated as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	path, err := tuiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "tui_state.json.*.tmp", path, b, 0o644)
}

func (st *TUIState) Board(boardID int64) BoardViewState {
	if st == nil || st.Boards == nil {
		return BoardViewState{}
	}
	return st.Boards[strconv.FormatInt(boardID, 10)]
}

func (st *TUIState) SetBoard(boardID int64, v BoardViewState) {
	if st.Boards == nil {
		st.Boards = map[string]BoardViewState{}
	}
	st.Boards[strconv.FormatInt(boardID, 10)] = v
}

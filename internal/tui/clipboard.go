package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"kanban-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type clipboardMsg struct {
	what string
	err  error
}

// cardRef is what "y" copies: enough to find the card again in chat or a commit.
func cardRef(c model.Card) string {
	return fmt.Sprintf("#%d %s", c.ID, strings.TrimSpace(c.Title))
}

// cardShowCommand is what "Y" copies.
func cardShowCommand(c model.Card, boardID int64) string {
	return fmt.Sprintf("kanban --board %d cards show %d", boardID, c.ID)
}

// copyCmd runs the clipboard tool off the Update loop.
func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: copyToClipboard(text)}
	}
}

func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	switch runtime.GOOS {
	case "darwin":
		return runClipboardCmd("pbcopy", nil, s)
	case "windows":
		if err := runClipboardCmd("cmd", []string{"/c", "clip"}, s); err == nil {
			return nil
		}
		return runClipboardCmd("powershell", []string{"-NoProfile", "-Command", "Set-Clipboard"}, s)
	default:
		// Wayland first, then X11.
		if err := runClipboardCmd("wl-copy", nil, s); err == nil {
			return nil
		}
		if err := runClipboardCmd("xclip", []string{"-selection", "clipboard"}, s); err == nil {
			return nil
		}
		return runClipboardCmd("xsel", []string{"--clipboard", "--input"}, s)
	}
}

func runClipboardCmd(name string, args []string, stdin string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if err := cmd.Run(); err != nil {
		return errors.New(name + ": " + err.Error())
	}
	return nil
}

package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The board must stay readable on light and dark terminals. Colors are
// lipgloss.AdaptiveColor pairs and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "235")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorCardMetaFg lipgloss.TerminalColor = ac("238", "250")
	colorErrorFg    lipgloss.TerminalColor = ac("160", "203")
	colorErrorBg    lipgloss.TerminalColor = ac("196", "160")

	// Drop-target highlight while a card is being dragged.
	colorDropBg lipgloss.TerminalColor = ac("153", "24")
	colorDropFg lipgloss.TerminalColor = ac("17", "255")

	colorDeadlineExpired lipgloss.TerminalColor = ac("160", "203")
	colorDeadlineSoon    lipgloss.TerminalColor = ac("130", "214")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func labelColor(c model.LabelColor) lipgloss.TerminalColor {
	switch c {
	case model.LabelRed:
		return ac("160", "203")
	case model.LabelGreen:
		return ac("28", "114")
	case model.LabelYellow:
		return ac("136", "221")
	case model.LabelBlue:
		return ac("25", "75")
	default:
		return colorMuted
	}
}

func deadlineColor(st model.DeadlineStatus) lipgloss.TerminalColor {
	switch st {
	case model.DeadlineExpired:
		return colorDeadlineExpired
	case model.DeadlineSoon:
		return colorDeadlineSoon
	default:
		return colorCardMetaFg
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the board.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a full-screen app. We honor NO_COLOR and KANBAN_COLOR and otherwise
// follow the terminal.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KANBAN_COLOR"))) {
	case "none", "ascii", "off":
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	case "ansi", "16":
		lipgloss.SetColorProfile(termenv.ANSI)
		return
	case "256", "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	case "truecolor", "24bit":
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	profile := termenv.ColorProfile()

	// Some terminals under-report during probing; trust TERM/COLORTERM when they
	// claim more.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection for AdaptiveColor.
//
// Priority:
// 1) KANBAN_TUI_THEME=light|dark|auto
// 2) tui.theme in config.json
// 3) KANBAN_TUI_DARKBG=true|false
// 4) COLORFGBG heuristic ("15;0" = fg;bg)
// 5) macOS appearance
func applyThemePreference(configured string) {
	if resolveTheme(os.Getenv("KANBAN_TUI_THEME"), configured) {
		return
	}

	if v := strings.TrimSpace(os.Getenv("KANBAN_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}

	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

// resolveTheme applies the first explicit light/dark choice and reports whether
// one was found.
func resolveTheme(values ...string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			lipgloss.SetHasDarkBackground(false)
			return true
		case "dark":
			lipgloss.SetHasDarkBackground(true)
			return true
		}
	}
	return false
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// Prints "Dark" in dark mode; exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}

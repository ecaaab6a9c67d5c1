package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane(t *testing.T) {
	out := normalizePane("abc\nlonger line here", 8, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 8 {
			t.Fatalf("line %d: expected width 8, got %d (%q)", i, w, ln)
		}
	}
	if lines[0] != "abc     " {
		t.Fatalf("expected padding, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], glyphEllipsis()) {
		t.Fatalf("expected truncation marker, got %q", lines[1])
	}
}

func TestTruncateText(t *testing.T) {
	cases := []struct {
		in   string
		w    int
		want string
	}{
		{in: "hello", w: 10, want: "hello"},
		{in: "hello", w: 0, want: ""},
		{in: "hello", w: 1, want: "h"},
		{in: "hello", w: 4, want: "hel…"},
	}
	for _, tc := range cases {
		if got := truncateText(tc.in, tc.w); got != tc.want {
			t.Fatalf("truncateText(%q, %d) = %q, want %q", tc.in, tc.w, got, tc.want)
		}
	}
}

func TestWrapWords(t *testing.T) {
	got := wrapWords("fix the invoice exporter", 10)
	want := []string{"fix the", "invoice", "exporter"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
	got = wrapWords("abcdefghij", 4)
	if strings.Join(got, "|") != "abcd|efgh|ij" {
		t.Fatalf("expected hard cut, got %q", got)
	}
	if got := wrapWords("   ", 4); len(got) != 1 || got[0] != "" {
		t.Fatalf("expected one empty line, got %q", got)
	}
}

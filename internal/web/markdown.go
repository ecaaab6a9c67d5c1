package web

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// maxDescriptionBytes bounds what the detail pane renders; the CLI and TUI still
// show the full text.
const maxDescriptionBytes = 16 << 10

// Raw HTML in card descriptions is never passed through.
var descriptionMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// description is a card description prepared for the detail pane.
type description struct {
	HTML      template.HTML
	Truncated bool
	// Checklist counts GFM task items ("- [ ]" / "- [x]").
	TasksDone  int
	TasksTotal int
}

func (d description) Checklist() string {
	if d.TasksTotal == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", d.TasksDone, d.TasksTotal)
}

func renderDescription(src string) description {
	src = strings.TrimSpace(src)
	if src == "" {
		return description{}
	}
	var d description
	src, d.Truncated = truncateDescription(src, maxDescriptionBytes)

	source := []byte(src)
	doc := descriptionMarkdown.Parser().Parse(text.NewReader(source))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if box, ok := n.(*extast.TaskCheckBox); ok {
			d.TasksTotal++
			if box.IsChecked {
				d.TasksDone++
			}
		}
		return ast.WalkContinue, nil
	})

	var b bytes.Buffer
	if err := descriptionMarkdown.Renderer().Render(&b, source, doc); err != nil {
		d.HTML = template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
		return d
	}
	d.HTML = template.HTML(b.String())
	return d
}

// truncateDescription cuts src to at most limit bytes, preferring the last line
// break in the second half of the allowance and never splitting a rune.
func truncateDescription(src string, limit int) (string, bool) {
	if len(src) <= limit {
		return src, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	if nl := strings.LastIndexByte(src[:cut], '\n'); nl > limit/2 {
		cut = nl
	}
	return strings.TrimSpace(src[:cut]), true
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Grab    key.Binding
	Cancel  key.Binding
	Open    key.Binding
	Search  key.Binding
	Label   key.Binding
	Owner   key.Binding
	Clear   key.Binding
	Reload  key.Binding
	Delete  key.Binding
	Copy    key.Binding
	CopyCmd key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/←", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/→", "right")),
		Up:      key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("k/↑", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("j/↓", "down")),
		Grab:    key.NewBinding(key.WithKeys(" ", "m"), key.WithHelp("space", "grab/drop")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Label:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "label filter")),
		Owner:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "responsible filter")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy ref")),
		CopyCmd: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy show command")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// boardHelp is the footer shown when nothing else claims the status line.
func (k keyMap) boardHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Open, k.Search, k.Label, k.Owner, k.Reload, k.Delete, k.Help, k.Quit}
}

func (k keyMap) dragHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Grab, k.Cancel}
}

func (k keyMap) allHelp() []key.Binding {
	return []key.Binding{
		k.Left, k.Right, k.Up, k.Down, k.Grab, k.Cancel, k.Open,
		k.Search, k.Label, k.Owner, k.Clear, k.Reload, k.Delete, k.Copy, k.CopyCmd, k.Quit,
	}
}

func helpLine(bindings []key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}

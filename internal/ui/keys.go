package ui

import "github.com/charmbracelet/bubbles/key"

type listKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	New       key.Binding
	Delete    key.Binding
	Undo      key.Binding
	Search    key.Binding
	Sort      key.Binding
	DeleteAll key.Binding
	Refresh   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		DeleteAll: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close search")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k listKeyMap) help() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Delete, k.Search, k.Sort, k.DeleteAll, k.Quit}
}

type taskKeyMap struct {
	Save     key.Binding
	Delete   key.Binding
	Priority key.Binding
	Focus    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func newTaskKeyMap() taskKeyMap {
	return taskKeyMap{
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Priority: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "priority")),
		Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k taskKeyMap) help() []key.Binding {
	return []key.Binding{k.Save, k.Delete, k.Priority, k.Focus, k.Back}
}

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func newConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

func helpLine(bindings []key.Binding) string {
	line := ""
	for i, b := range bindings {
		if i > 0 {
			line += " • "
		}
		h := b.Help()
		line += h.Key + " " + h.Desc
	}
	return mutedStyle.Render(line)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/coordinator"
	"github.com/nibzard/todo-go/internal/task"
)

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	if m.confirmDeleteAll {
		switch {
		case key.Matches(msg, m.confirmKeys.Yes):
			m.confirmDeleteAll = false
			m.cursor = 0
			m.nav.ToList(task.ActionDeleteAll)
		case key.Matches(msg, m.confirmKeys.No):
			m.confirmDeleteAll = false
		}
		return nil
	}

	if m.search.Focused() {
		return m.updateSearch(msg)
	}

	visible := m.list.Visible()
	switch {
	case key.Matches(msg, m.listKeys.Quit):
		return tea.Quit
	case key.Matches(msg, m.listKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.listKeys.Down):
		if m.cursor < len(visible.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.listKeys.Open):
		if t, ok := m.selected(visible); ok {
			m.nav.ToTask(t.ID)
		}
	case key.Matches(msg, m.listKeys.New):
		m.nav.ToTask(task.NewID)
	case key.Matches(msg, m.listKeys.Delete):
		if t, ok := m.selected(visible); ok {
			m.list.SwipeToDelete(t)
		}
	case key.Matches(msg, m.listKeys.Undo):
		if m.list.Snackbar.Get().CanUndo() {
			m.list.UndoLastDelete()
		}
	case key.Matches(msg, m.listKeys.Search):
		m.list.SetSearchBarState(task.SearchOpened)
		return m.search.Focus()
	case key.Matches(msg, m.listKeys.Sort):
		m.cursor = 0
		m.list.PersistSortFilter(nextSort(m.list.SortFilter.Get()))
	case key.Matches(msg, m.listKeys.DeleteAll):
		if len(visible.Tasks) > 0 {
			m.confirmDeleteAll = true
		}
	case key.Matches(msg, m.listKeys.Refresh):
		m.list.LoadAllTasks()
		m.list.LoadByPriorityAsc()
		m.list.LoadByPriorityDesc()
	case key.Matches(msg, m.listKeys.Back):
		if m.list.SearchBar.Get() != task.SearchClosed {
			m.search.SetValue("")
			m.list.CloseSearch()
			m.cursor = 0
		}
	}
	m.clampCursor()
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.list.SetSearchQuery("")
			return nil
		}
		m.search.Blur()
		m.list.CloseSearch()
		m.cursor = 0
		return nil
	case tea.KeyEnter:
		if err := m.list.Search(m.search.Value()); err != nil {
			return m.showToast("Type something to search")
		}
		m.search.Blur()
		m.cursor = 0
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.list.SetSearchQuery(m.search.Value())
	return cmd
}

func (m *Model) selected(v coordinator.Visible) (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(v.Tasks) {
		return task.Task{}, false
	}
	return v.Tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.list.Visible().Tasks)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) viewList() string {
	m.clampCursor()
	var b strings.Builder

	header := headerStyle.Render("To-Do")
	sort := m.list.SortFilter.Get()
	header += " " + mutedStyle.Render(fmt.Sprintf("sort: %s", strings.ToLower(string(sort))))
	b.WriteString(header + "\n")

	if m.list.SearchBar.Get() != task.SearchClosed {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	v := m.list.Visible()
	switch v.Status {
	case coordinator.StatusIdle, coordinator.StatusLoading:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case coordinator.StatusError:
		b.WriteString(errorStyle.Render("Error: "+v.Err.Error()) + "\n")
	case coordinator.StatusEmpty:
		b.WriteString(mutedStyle.Render("No tasks found.") + "\n")
	default:
		for i, t := range v.Tasks {
			b.WriteString(m.renderRow(i, t) + "\n")
		}
	}

	if m.confirmDeleteAll {
		dialog := "Remove all tasks?\n\n" + helpLine([]key.Binding{m.confirmKeys.Yes, m.confirmKeys.No})
		b.WriteString("\n" + dialogStyle.Render(dialog) + "\n")
	}

	if sb := m.list.Snackbar.Get(); sb.Visible() {
		text := sb.Message
		if sb.Failed {
			text = errorStyle.Render(text)
		}
		if sb.Label != "" {
			hint := sb.Label
			if sb.CanUndo() {
				hint += " (u)"
			}
			text = lipgloss.JoinHorizontal(lipgloss.Top, text, "  ", labelStyle.Render(hint))
		}
		b.WriteString("\n" + snackbarStyle.Render(text) + "\n")
	}

	if m.toast != "" {
		b.WriteString("\n" + toastStyle.Render(m.toast) + "\n")
	}

	b.WriteString("\n" + helpLine(m.listKeys.help()))
	return b.String()
}

func (m *Model) renderRow(i int, t task.Task) string {
	cursor := "  "
	title := t.Title
	if i == m.cursor {
		cursor = "> "
		title = selectedStyle.Render(title)
	}
	row := cursor + priorityDot(t.Priority) + " " + title
	if t.Description != "" {
		width := m.width - lipgloss.Width(row) - 4
		if width < 20 {
			width = 40
		}
		row += "  " + mutedStyle.Render(truncate(t.Description, width))
	}
	return row
}

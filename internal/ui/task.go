package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/task"
)

func (m *Model) updateTask(msg tea.KeyMsg) tea.Cmd {
	buf := m.editor.Buffer()
	switch {
	case key.Matches(msg, m.taskKeys.Quit):
		return tea.Quit
	case key.Matches(msg, m.taskKeys.Back):
		m.nav.ToList(task.ActionNone)
		return nil
	case key.Matches(msg, m.taskKeys.Save):
		if err := m.editor.Validate(); err != nil {
			return m.showToast("Fields Empty!")
		}
		if buf.ID == task.NewID {
			m.nav.ToList(task.ActionAdd)
		} else {
			m.nav.ToList(task.ActionUpdate)
		}
		return nil
	case key.Matches(msg, m.taskKeys.Delete):
		if buf.ID != task.NewID {
			m.nav.ToList(task.ActionDelete)
		}
		return nil
	case key.Matches(msg, m.taskKeys.Priority):
		m.editor.UpdatePriority(nextPriority(buf.Priority))
		return nil
	case key.Matches(msg, m.taskKeys.Focus):
		if m.title.Focused() {
			m.title.Blur()
			return m.desc.Focus()
		}
		m.desc.Blur()
		return m.title.Focus()
	}

	var cmd tea.Cmd
	if m.desc.Focused() {
		m.desc, cmd = m.desc.Update(msg)
		m.editor.UpdateDescription(m.desc.Value())
		return cmd
	}
	m.title, cmd = m.title.Update(msg)
	m.editor.UpdateTitle(m.title.Value())
	return cmd
}

func (m *Model) viewTask() string {
	buf := m.editor.Buffer()
	var b strings.Builder

	heading := "Add Task"
	if buf.ID != task.NewID {
		heading = "Edit Task"
	}
	b.WriteString(headerStyle.Render(heading) + "\n\n")

	b.WriteString(labelStyle.Render("Title") + "\n")
	b.WriteString(m.title.View() + "\n\n")

	priority := lipgloss.NewStyle().Foreground(PriorityColor(buf.Priority)).Render(string(buf.Priority))
	b.WriteString(labelStyle.Render("Priority") + " " + priorityDot(buf.Priority) + " " + priority + "\n\n")

	b.WriteString(labelStyle.Render("Description") + "\n")
	b.WriteString(m.desc.View() + "\n")

	if m.toast != "" {
		b.WriteString("\n" + toastStyle.Render(m.toast) + "\n")
	}

	b.WriteString("\n" + helpLine(m.taskKeys.help()))
	return b.String()
}

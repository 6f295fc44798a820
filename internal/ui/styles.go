package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/task"
)

var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("#E74C3C")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(colorAccent).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	snackbarStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted)
	dialogStyle   = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(colorError)
	toastStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

// PriorityColor maps a priority to its display colour.
func PriorityColor(p task.Priority) lipgloss.Color {
	switch p {
	case task.PriorityHigh:
		return lipgloss.Color("#E74C3C")
	case task.PriorityMedium:
		return lipgloss.Color("#F1C40F")
	case task.PriorityLow:
		return lipgloss.Color("#2ECC71")
	default:
		return lipgloss.Color("245")
	}
}

func priorityDot(p task.Priority) string {
	return lipgloss.NewStyle().Foreground(PriorityColor(p)).Render("●")
}

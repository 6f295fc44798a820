package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/ui"
)

// printTask prints a single task.
func printTask(w io.Writer, t task.Task, verbose bool) {
	dot := lipgloss.NewStyle().Foreground(ui.PriorityColor(t.Priority)).Render("●")
	fmt.Fprintf(w, "  %s [%d] (%s) %s\n", dot, t.ID, t.Priority, t.Title)
	if verbose && t.Description != "" {
		fmt.Fprintf(w, "      %s\n", t.Description)
	}
}

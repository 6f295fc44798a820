package task

import (
	"fmt"
	"strings"
)

// NewID marks a task that has not been persisted yet (create mode).
const NewID = -1

// Task represents a single to-do item.
type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// IsNew returns true if the task has not been assigned a store id.
func (t Task) IsNew() bool {
	return t.ID <= 0
}

// String returns a short human-readable form used in logs.
func (t Task) String() string {
	return fmt.Sprintf("#%d %q (%s)", t.ID, t.Title, t.Priority)
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SearchAppBarState is the state of the list screen's search bar.
type SearchAppBarState int

const (
	// SearchClosed shows the default toolbar.
	SearchClosed SearchAppBarState = iota
	// SearchOpened shows the search field with no query submitted yet.
	SearchOpened
	// SearchTriggered means a query was submitted and results are shown.
	SearchTriggered
)

func (s SearchAppBarState) String() string {
	switch s {
	case SearchClosed:
		return "CLOSED"
	case SearchOpened:
		return "OPENED"
	case SearchTriggered:
		return "TRIGGERED"
	default:
		return fmt.Sprintf("SearchAppBarState(%d)", int(s))
	}
}

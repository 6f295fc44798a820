package task

import "strings"

// Action is a pending mutating intent selected by the user.
type Action string

const (
	ActionAdd       Action = "ADD"
	ActionUpdate    Action = "UPDATE"
	ActionDelete    Action = "DELETE"
	ActionDeleteAll Action = "DELETE_ALL"
	ActionUndo      Action = "UNDO"
	ActionNone      Action = "NO_ACTION"
)

// ParseAction decodes an action name. Unknown or empty input yields
// ActionNone, matching how list routes are decoded.
func ParseAction(s string) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionAdd:
		return ActionAdd
	case ActionUpdate:
		return ActionUpdate
	case ActionDelete:
		return ActionDelete
	case ActionDeleteAll:
		return ActionDeleteAll
	case ActionUndo:
		return ActionUndo
	default:
		return ActionNone
	}
}

// String implements fmt.Stringer.
func (a Action) String() string {
	if a == "" {
		return string(ActionNone)
	}
	return string(a)
}

// Mutating reports whether the action writes to the store.
func (a Action) Mutating() bool {
	return a != ActionNone && a != ""
}

// NeedsValidation reports whether leaving the editor with this action
// requires non-blank fields.
func (a Action) NeedsValidation() bool {
	return a == ActionAdd || a == ActionUpdate
}

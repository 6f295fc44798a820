// Package navigation defines the screen routes and a Navigator that moves
// between them.
package navigation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/state"
	"github.com/nibzard/todo-go/internal/task"
)

// Screen identifies a destination.
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenList
	ScreenTask
)

func (s Screen) String() string {
	switch s {
	case ScreenSplash:
		return "splash"
	case ScreenList:
		return "list"
	case ScreenTask:
		return "task"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Route is a destination plus its argument.
type Route struct {
	Screen Screen
	Action task.Action
	TaskID int
}

func Splash() Route {
	return Route{Screen: ScreenSplash}
}

func List(a task.Action) Route {
	if a == "" {
		a = task.ActionNone
	}
	return Route{Screen: ScreenList, Action: a}
}

func Task(id int) Route {
	return Route{Screen: ScreenTask, TaskID: id}
}

// String renders the route as "splash", "list/{ACTION}" or "task/{id}".
func (r Route) String() string {
	switch r.Screen {
	case ScreenList:
		return "list/" + List(r.Action).Action.String()
	case ScreenTask:
		return "task/" + strconv.Itoa(r.TaskID)
	default:
		return "splash"
	}
}

// Parse is the inverse of Route.String. Unknown list actions decode to
// NO_ACTION.
func Parse(s string) (Route, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(s), "/")
	switch name {
	case "splash":
		return Splash(), nil
	case "list":
		return List(task.ParseAction(arg)), nil
	case "task":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return Route{}, fmt.Errorf("invalid task route %q: %w", s, err)
		}
		return Task(id), nil
	default:
		return Route{}, fmt.Errorf("unknown route %q", s)
	}
}

// ListTarget receives the action carried by a list route.
type ListTarget interface {
	UpdateAction(a task.Action)
	DispatchPendingAction()
	DismissSnackbar()
}

// TaskTarget loads the task named by a task route.
type TaskTarget interface {
	LoadSelectedTask(id int)
}

// Navigator holds the current route.
type Navigator struct {
	Current *state.Observable[Route]
}

// New returns a Navigator positioned at start.
func New(start Route) *Navigator {
	return &Navigator{Current: state.NewObservable(start)}
}

// Attach makes route changes drive the coordinators: entering the list
// dispatches its action, entering the editor dismisses the list's
// notification and loads the selected task. The returned function detaches.
func (n *Navigator) Attach(list ListTarget, editor TaskTarget) (detach func()) {
	return n.Current.Subscribe(func(r Route) {
		switch r.Screen {
		case ScreenList:
			list.UpdateAction(r.Action)
			list.DispatchPendingAction()
		case ScreenTask:
			list.DismissSnackbar()
			editor.LoadSelectedTask(r.TaskID)
		}
	})
}

func (n *Navigator) ToListFromSplash() {
	n.Current.Set(List(task.ActionNone))
}

func (n *Navigator) ToList(a task.Action) {
	n.Current.Set(List(a))
}

func (n *Navigator) ToTask(id int) {
	n.Current.Set(Task(id))
}

// Route returns the current route.
func (n *Navigator) Route() Route {
	return n.Current.Get()
}

package navigation

import (
	"testing"

	"github.com/nibzard/todo-go/internal/task"
)

func TestRouteRoundTrip(t *testing.T) {
	routes := []Route{
		Splash(),
		List(task.ActionNone),
		List(task.ActionAdd),
		List(task.ActionDeleteAll),
		Task(task.NewID),
		Task(42),
	}
	for _, r := range routes {
		t.Run(r.String(), func(t *testing.T) {
			got, err := Parse(r.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", r.String(), err)
			}
			if got != r {
				t.Fatalf("Parse(%q) = %+v, want %+v", r.String(), got, r)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Route
		wantErr bool
	}{
		{in: "list/BOGUS", want: List(task.ActionNone)},
		{in: "list", want: List(task.ActionNone)},
		{in: "list/delete", want: List(task.ActionDelete)},
		{in: "task/-1", want: Task(-1)},
		{in: "task/x", wantErr: true},
		{in: "settings", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

type recorder struct {
	actions   []task.Action
	dispatch  int
	dismissed int
	loaded    []int
}

func (r *recorder) UpdateAction(a task.Action) { r.actions = append(r.actions, a) }
func (r *recorder) DispatchPendingAction()     { r.dispatch++ }
func (r *recorder) DismissSnackbar()           { r.dismissed++ }
func (r *recorder) LoadSelectedTask(id int)    { r.loaded = append(r.loaded, id) }

func TestNavigatorAttach(t *testing.T) {
	n := New(Splash())
	rec := &recorder{}
	detach := n.Attach(rec, rec)

	n.ToListFromSplash()
	n.ToTask(3)
	n.ToList(task.ActionUpdate)

	if got := n.Route(); got != List(task.ActionUpdate) {
		t.Fatalf("Route = %v", got)
	}
	if len(rec.actions) != 2 || rec.actions[1] != task.ActionUpdate || rec.dispatch != 2 {
		t.Fatalf("list target saw %v, %d dispatches", rec.actions, rec.dispatch)
	}
	if rec.dismissed != 1 || len(rec.loaded) != 1 || rec.loaded[0] != 3 {
		t.Fatalf("task target saw dismiss=%d loaded=%v", rec.dismissed, rec.loaded)
	}

	detach()
	n.ToTask(4)
	if len(rec.loaded) != 1 {
		t.Fatalf("detached navigator still notified")
	}
}

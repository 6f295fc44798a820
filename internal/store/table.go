package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/todo-go/internal/task"
)

// table is the in-process task table behind the memory and file backends.
// Callers hold their own lock.
type table struct {
	NextID int         `json:"next_id"`
	Sort   string      `json:"sort_state,omitempty"`
	Tasks  []task.Task `json:"tasks"`
}

func newTable() *table {
	return &table{NextID: 1, Tasks: []task.Task{}}
}

func (tb *table) indexOf(id int) int {
	for i := range tb.Tasks {
		if tb.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (tb *table) insert(t task.Task) (int, error) {
	if t.ID > 0 {
		if tb.indexOf(t.ID) >= 0 {
			return 0, fmt.Errorf("task id %d already exists", t.ID)
		}
	} else {
		t.ID = tb.NextID
	}
	if t.ID >= tb.NextID {
		tb.NextID = t.ID + 1
	}
	if t.Priority == "" {
		t.Priority = task.PriorityNone
	}
	tb.Tasks = append(tb.Tasks, t)
	sort.Slice(tb.Tasks, func(i, j int) bool { return tb.Tasks[i].ID < tb.Tasks[j].ID })
	return t.ID, nil
}

func (tb *table) update(t task.Task) {
	if i := tb.indexOf(t.ID); i >= 0 {
		tb.Tasks[i] = t
	}
}

func (tb *table) remove(id int) {
	if i := tb.indexOf(id); i >= 0 {
		tb.Tasks = append(tb.Tasks[:i], tb.Tasks[i+1:]...)
	}
}

func (tb *table) clear() {
	tb.Tasks = []task.Task{}
}

func (tb *table) get(id int) (task.Task, error) {
	if i := tb.indexOf(id); i >= 0 {
		return tb.Tasks[i], nil
	}
	return task.Task{}, task.ErrNotFound
}

func (tb *table) all() []task.Task {
	out := make([]task.Task, len(tb.Tasks))
	copy(out, tb.Tasks)
	return out
}

func (tb *table) byRank(rank func(task.Priority) int) []task.Task {
	out := tb.all()
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Priority), rank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (tb *table) search(query string) []task.Task {
	q := strings.ToLower(query)
	out := []task.Task{}
	for _, t := range tb.Tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

func (tb *table) sortState() task.Priority {
	p, err := task.ParsePriority(tb.Sort)
	if err != nil {
		return task.PriorityNone
	}
	return p
}

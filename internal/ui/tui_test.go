package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/todo-go/internal/coordinator"
	"github.com/nibzard/todo-go/internal/navigation"
	"github.com/nibzard/todo-go/internal/repository"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/task"
)

func neverFire(time.Duration, func()) func() bool {
	return func() bool { return true }
}

type harness struct {
	model *Model
	repo  *repository.Repository
}

func newHarness(t *testing.T, seed ...task.Task) *harness {
	t.Helper()
	ctx := context.Background()
	repo := repository.New(store.NewMemory(), nil, time.Second)
	for _, s := range seed {
		if _, err := repo.Add(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	sched := coordinator.NewInline(ctx)
	editor := coordinator.NewEditor(repo, sched, nil)
	undo := coordinator.NewUndo(time.Minute, sched, neverFire)
	list := coordinator.NewList(repo, editor, undo, sched, nil)

	m := NewModel(Deps{List: list, Navigator: navigation.New(navigation.Splash())})
	t.Cleanup(m.Close)
	m.Init()
	m.Update(splashDoneMsg{})
	return &harness{model: m, repo: repo}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.model.Update(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) titles(t *testing.T) []string {
	t.Helper()
	all, err := h.repo.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	out := make([]string, 0, len(all))
	for _, a := range all {
		out = append(out, a.Title)
	}
	return out
}

func TestSplashMovesToList(t *testing.T) {
	h := newHarness(t)
	if got := h.model.nav.Route(); got != navigation.List(task.ActionNone) {
		t.Fatalf("route = %s, want list", got)
	}
	if view := h.model.View(); !strings.Contains(view, "No tasks found.") {
		t.Fatalf("view missing empty state:\n%s", view)
	}
}

func TestAddTask(t *testing.T) {
	h := newHarness(t)

	h.press("n")
	if got := h.model.nav.Route(); got != navigation.Task(task.NewID) {
		t.Fatalf("route = %s, want new task", got)
	}
	h.typeText("milk")
	h.press("tab")
	h.typeText("2 litres")
	h.press("ctrl+p")

	buf := h.model.editor.Buffer()
	want := coordinator.EditBuffer{ID: task.NewID, Title: "milk", Description: "2 litres", Priority: nextPriority(task.PriorityLow)}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Fatalf("buffer mismatch (-want +got):\n%s", diff)
	}

	h.press("ctrl+s")
	if got := h.model.nav.Route().Screen; got != navigation.ScreenList {
		t.Fatalf("screen = %s, want list", got)
	}
	if diff := cmp.Diff([]string{"milk"}, h.titles(t)); diff != "" {
		t.Fatalf("stored titles (-want +got):\n%s", diff)
	}
	if got := h.model.list.Snackbar.Get().Message; got != "ADD: milk" {
		t.Fatalf("snackbar = %q", got)
	}
	if view := h.model.View(); !strings.Contains(view, "milk") {
		t.Fatalf("view missing task:\n%s", view)
	}
}

func TestSaveEmptyShowsToast(t *testing.T) {
	h := newHarness(t)
	h.press("n", "ctrl+s")

	if got := h.model.nav.Route().Screen; got != navigation.ScreenTask {
		t.Fatalf("screen = %s, want task", got)
	}
	if h.model.toast != "Fields Empty!" {
		t.Fatalf("toast = %q", h.model.toast)
	}
	if got := h.titles(t); len(got) != 0 {
		t.Fatalf("stored %v, want nothing", got)
	}

	h.model.Update(toastTimeoutMsg{seq: h.model.toastSeq})
	if h.model.toast != "" {
		t.Fatalf("toast not cleared")
	}
}

func TestEditExistingTask(t *testing.T) {
	h := newHarness(t, task.Task{Title: "milk", Description: "2 litres", Priority: task.PriorityLow})

	h.press("enter")
	if got := h.model.title.Value(); got != "milk" {
		t.Fatalf("title input = %q, want loaded title", got)
	}
	h.typeText(" and eggs")
	h.press("ctrl+s")

	if diff := cmp.Diff([]string{"milk and eggs"}, h.titles(t)); diff != "" {
		t.Fatalf("stored titles (-want +got):\n%s", diff)
	}
	if got := h.model.list.Snackbar.Get().Action; got != task.ActionUpdate {
		t.Fatalf("snackbar action = %s, want UPDATE", got)
	}
}

func TestDeleteFromEditor(t *testing.T) {
	h := newHarness(t, task.Task{Title: "milk", Priority: task.PriorityLow})
	h.press("enter", "ctrl+d")

	if got := h.titles(t); len(got) != 0 {
		t.Fatalf("stored %v, want nothing", got)
	}
	if !h.model.list.Snackbar.Get().CanUndo() {
		t.Fatalf("snackbar should offer undo")
	}
}

func TestDeleteAndUndo(t *testing.T) {
	h := newHarness(t, task.Task{Title: "milk", Priority: task.PriorityHigh})

	h.press("x")
	if got := h.titles(t); len(got) != 0 {
		t.Fatalf("stored %v after delete", got)
	}
	if view := h.model.View(); !strings.Contains(view, "UNDO") {
		t.Fatalf("view missing undo label:\n%s", view)
	}

	h.press("u")
	if diff := cmp.Diff([]string{"milk"}, h.titles(t)); diff != "" {
		t.Fatalf("stored titles after undo (-want +got):\n%s", diff)
	}
}

func TestDeleteAllNeedsConfirmation(t *testing.T) {
	h := newHarness(t,
		task.Task{Title: "a", Priority: task.PriorityLow},
		task.Task{Title: "b", Priority: task.PriorityHigh},
	)

	h.press("D", "n")
	if got := h.titles(t); len(got) != 2 {
		t.Fatalf("declined confirmation removed tasks: %v", got)
	}

	h.press("D")
	if view := h.model.View(); !strings.Contains(view, "Remove all tasks?") {
		t.Fatalf("view missing dialog:\n%s", view)
	}
	h.press("y")
	if got := h.titles(t); len(got) != 0 {
		t.Fatalf("stored %v after delete all", got)
	}
	if got := h.model.list.Snackbar.Get().Message; got != "All tasks have been removed." {
		t.Fatalf("snackbar = %q", got)
	}
}

func TestSearch(t *testing.T) {
	h := newHarness(t,
		task.Task{Title: "milk", Priority: task.PriorityLow},
		task.Task{Title: "bread", Priority: task.PriorityLow},
	)

	h.press("/")
	if got := h.model.list.SearchBar.Get(); got != task.SearchOpened {
		t.Fatalf("search bar = %v, want opened", got)
	}
	h.typeText("mi")
	if got := h.model.list.SearchQuery.Get(); got != "mi" {
		t.Fatalf("query = %q", got)
	}
	h.press("enter")

	if got := h.model.list.SearchBar.Get(); got != task.SearchTriggered {
		t.Fatalf("search bar = %v, want triggered", got)
	}
	v := h.model.list.Visible()
	if v.Source != "search" || len(v.Tasks) != 1 || v.Tasks[0].Title != "milk" {
		t.Fatalf("visible = %+v", v)
	}

	h.press("esc")
	if got := h.model.list.SearchBar.Get(); got != task.SearchClosed {
		t.Fatalf("search bar = %v, want closed", got)
	}
	if got := h.model.list.Visible().Source; got != "all" {
		t.Fatalf("source = %q, want all", got)
	}
}

func TestBlankSearchKeepsBarOpen(t *testing.T) {
	h := newHarness(t)
	h.press("/", "enter")

	if !h.model.search.Focused() {
		t.Fatalf("search input lost focus on blank query")
	}
	if got := h.model.list.SearchBar.Get(); got != task.SearchOpened {
		t.Fatalf("search bar = %v, want opened", got)
	}
	if h.model.toast == "" {
		t.Fatalf("expected a hint for blank query")
	}

	h.press("esc")
	if h.model.search.Focused() || h.model.list.SearchBar.Get() != task.SearchClosed {
		t.Fatalf("esc on empty input should close search")
	}
}

func TestSortCycle(t *testing.T) {
	h := newHarness(t)
	want := []task.Priority{task.PriorityMedium, task.PriorityHigh, task.PriorityLow, task.PriorityNone}
	for _, p := range want {
		h.press("s")
		if got := h.model.list.SortFilter.Get(); got != p {
			t.Fatalf("sort = %s, want %s", got, p)
		}
	}
	saved, err := h.repo.SortState(context.Background())
	if err != nil {
		t.Fatalf("SortState: %v", err)
	}
	if saved != task.PriorityNone {
		t.Fatalf("saved sort = %s, want NONE", saved)
	}
}

func TestSnackbarTimeout(t *testing.T) {
	h := newHarness(t)
	h.model.list.Snackbar.Set(coordinator.Snackbar{Message: "ADD: x", Label: "OK", Action: task.ActionAdd})
	if cmd := h.model.watchSnackbar(); cmd == nil {
		t.Fatalf("expected a dismissal timer")
	}

	h.model.Update(snackbarTimeoutMsg{seq: h.model.snackbarSeq - 1})
	if !h.model.list.Snackbar.Get().Visible() {
		t.Fatalf("stale timeout dismissed snackbar")
	}
	h.model.Update(snackbarTimeoutMsg{seq: h.model.snackbarSeq})
	if h.model.list.Snackbar.Get().Visible() {
		t.Fatalf("snackbar not dismissed")
	}
}

func TestWaitForApply(t *testing.T) {
	ch := make(chan func(), 1)
	ran := false
	ch <- func() { ran = true }

	msg, ok := waitForApply(ch)().(applyMsg)
	if !ok {
		t.Fatalf("expected applyMsg")
	}
	msg.fn()
	if !ran {
		t.Fatalf("apply closure not delivered")
	}

	close(ch)
	if _, ok := waitForApply(ch)().(applyClosedMsg); !ok {
		t.Fatalf("expected applyClosedMsg after close")
	}
}

func TestNextPriority(t *testing.T) {
	seen := map[task.Priority]bool{}
	p := task.PriorityLow
	for range task.Priorities() {
		p = nextPriority(p)
		seen[p] = true
	}
	if len(seen) != len(task.Priorities()) {
		t.Fatalf("cycle visited %d priorities, want %d", len(seen), len(task.Priorities()))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"a longer line", 8, "a lon..."},
		{"two\nlines", 20, "two lines"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Fatalf("buffer reported as TTY")
	}
}

// Package coordinator holds the list and editor state machines that sit
// between the presentation layer and the task repository.
//
// Coordinator methods are called on the UI context. Store I/O runs through
// a Scheduler and its results are applied back on the UI context.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/repository"
	"github.com/nibzard/todo-go/internal/state"
	"github.com/nibzard/todo-go/internal/task"
)

// Tasks is the observable state of one task collection.
type Tasks = state.RequestState[[]task.Task]

// Snackbar is the transient notification shown after an action.
type Snackbar struct {
	Message string
	Label   string
	Action  task.Action
	Failed  bool
}

// Visible reports whether a notification is showing.
func (s Snackbar) Visible() bool {
	return s.Message != ""
}

// CanUndo reports whether the notification offers to restore a deleted task.
func (s Snackbar) CanUndo() bool {
	return s.Action == task.ActionDelete && s.Label == labelUndo && !s.Failed
}

const (
	labelUndo = "UNDO"
	labelOK   = "OK"

	allRemovedMessage = "All tasks have been removed."
)

// Status summarises the selected collection for rendering.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusEmpty
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Visible is the list the presentation layer should render.
type Visible struct {
	Tasks  []task.Task
	Source string
	Status Status
	Err    error
}

type collection int

const (
	collAll collection = iota
	collSearched
	collLow
	collHigh
	numCollections
)

// List coordinates filtering, sorting, searching and action dispatch for
// the list screen.
type List struct {
	repo   *repository.Repository
	editor *Editor
	undo   *Undo
	sched  Scheduler
	logger *log.Logger

	// mu serializes mutations and the re-query that follows them.
	mu sync.Mutex

	genMu sync.Mutex
	gens  [numCollections]uint64
	// dispatched counts mutating dispatches; a DELETE only arms undo if it
	// is still the latest one when its result is applied.
	dispatched uint64

	AllTasks          *state.Observable[Tasks]
	SearchedTasks     *state.Observable[Tasks]
	LowPriorityTasks  *state.Observable[Tasks]
	HighPriorityTasks *state.Observable[Tasks]
	SortFilter        *state.Observable[task.Priority]
	SearchBar         *state.Observable[task.SearchAppBarState]
	SearchQuery       *state.Observable[string]
	Action            *state.Observable[task.Action]
	Snackbar          *state.Observable[Snackbar]
}

// NewList wires a List to its collaborators.
func NewList(repo *repository.Repository, editor *Editor, undo *Undo, sched Scheduler, logger *log.Logger) *List {
	c := &List{
		repo:              repo,
		editor:            editor,
		undo:              undo,
		sched:             sched,
		logger:            orDiscard(logger),
		AllTasks:          state.NewObservable(state.NewIdle[[]task.Task]()),
		SearchedTasks:     state.NewObservable(state.NewIdle[[]task.Task]()),
		LowPriorityTasks:  state.NewObservable(state.NewIdle[[]task.Task]()),
		HighPriorityTasks: state.NewObservable(state.NewIdle[[]task.Task]()),
		SortFilter:        state.NewObservable(task.PriorityNone),
		SearchBar:         state.NewObservable(task.SearchClosed),
		SearchQuery:       state.NewObservable(""),
		Action:            state.NewObservable(task.ActionNone),
		Snackbar:          state.NewObservable(Snackbar{}),
	}
	undo.OnExpire(func(t task.Task) {
		if sb := c.Snackbar.Get(); sb.CanUndo() {
			c.Snackbar.Set(Snackbar{})
		}
		c.logger.Debug("undo window expired", "id", t.ID)
	})
	return c
}

// Editor returns the editor sharing this list's edit buffer.
func (c *List) Editor() *Editor {
	return c.editor
}

// Undo returns the undo tracker.
func (c *List) Undo() *Undo {
	return c.undo
}

func (c *List) observable(coll collection) *state.Observable[Tasks] {
	switch coll {
	case collSearched:
		return c.SearchedTasks
	case collLow:
		return c.LowPriorityTasks
	case collHigh:
		return c.HighPriorityTasks
	default:
		return c.AllTasks
	}
}

func (c *List) claim(coll collection) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[coll]++
	return c.gens[coll]
}

func (c *List) latest(coll collection, gen uint64) bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gens[coll] == gen
}

// publish stores the outcome of a fetch, keeping previous data on error.
func (c *List) publish(coll collection, tasks []task.Task, err error) {
	obs := c.observable(coll)
	if err != nil {
		obs.Set(state.NewError(err, obs.Get().Data))
		return
	}
	obs.Set(state.NewSuccess(tasks))
}

func (c *List) load(coll collection, name string, fetch func(ctx context.Context) ([]task.Task, error)) {
	gen := c.claim(coll)
	obs := c.observable(coll)
	obs.Set(state.NewLoading(obs.Get().Data))

	c.sched.Go(name, func(ctx context.Context) func() {
		tasks, err := fetch(ctx)
		return func() {
			if !c.latest(coll, gen) {
				return
			}
			c.publish(coll, tasks, err)
		}
	})
}

// Start restores the sort preference and loads every collection.
func (c *List) Start() {
	c.ReadSortFilter()
	c.LoadAllTasks()
	c.LoadByPriorityAsc()
	c.LoadByPriorityDesc()
}

// LoadAllTasks refreshes AllTasks.
func (c *List) LoadAllTasks() {
	c.load(collAll, "load all tasks", c.repo.All)
}

// LoadByPriorityAsc refreshes LowPriorityTasks.
func (c *List) LoadByPriorityAsc() {
	c.load(collLow, "load low priority", c.repo.ByPriorityAsc)
}

// LoadByPriorityDesc refreshes HighPriorityTasks.
func (c *List) LoadByPriorityDesc() {
	c.load(collHigh, "load high priority", c.repo.ByPriorityDesc)
}

// Search looks up tasks whose title or description contains query. A blank
// query returns task.ErrEmptyQuery and changes nothing.
func (c *List) Search(query string) error {
	if task.IsBlank(query) {
		return task.ErrEmptyQuery
	}
	c.SearchQuery.Set(query)

	gen := c.claim(collSearched)
	c.SearchedTasks.Set(state.NewLoading(c.SearchedTasks.Get().Data))
	c.sched.Go("search", func(ctx context.Context) func() {
		tasks, err := c.repo.Search(ctx, query)
		return func() {
			if !c.latest(collSearched, gen) {
				return
			}
			c.publish(collSearched, tasks, err)
			c.SearchBar.Set(task.SearchTriggered)
		}
	})
	return nil
}

// SetSortFilter selects the collection shown when no search is triggered.
func (c *List) SetSortFilter(p task.Priority) {
	c.SortFilter.Set(p)
}

// SetSearchBarState sets the search bar state.
func (c *List) SetSearchBarState(s task.SearchAppBarState) {
	c.SearchBar.Set(s)
}

// SetSearchQuery stores the text typed into the search bar.
func (c *List) SetSearchQuery(q string) {
	c.SearchQuery.Set(q)
}

// CloseSearch closes the search bar and clears the query.
func (c *List) CloseSearch() {
	c.SearchBar.Set(task.SearchClosed)
	c.SearchQuery.Set("")
}

// PersistSortFilter selects p and saves it as the preferred filter.
func (c *List) PersistSortFilter(p task.Priority) {
	c.SortFilter.Set(p)
	c.sched.Go("persist sort state", func(ctx context.Context) func() {
		if err := c.repo.SaveSortState(ctx, p); err != nil {
			c.logger.Warn("persist sort state", "priority", p, "err", err)
		}
		return nil
	})
}

// ReadSortFilter restores the saved filter.
func (c *List) ReadSortFilter() {
	c.sched.Go("read sort state", func(ctx context.Context) func() {
		p, err := c.repo.SortState(ctx)
		if err != nil {
			c.logger.Warn("read sort state", "err", err)
			return nil
		}
		return func() { c.SortFilter.Set(p) }
	})
}

// UpdateAction sets the pending action.
func (c *List) UpdateAction(a task.Action) {
	c.Action.Set(a)
}

// DispatchPendingAction performs the pending action exactly once. The
// pending action is reset to NO_ACTION before the mutation starts.
func (c *List) DispatchPendingAction() {
	a := c.Action.Get()
	c.Action.Set(task.ActionNone)
	if !a.Mutating() {
		return
	}

	buf := c.editor.Buffer()
	var restore task.Task
	if a == task.ActionUndo {
		t, ok := c.undo.Take()
		if !ok {
			c.logger.Debug("nothing to undo")
			return
		}
		restore = t
	} else {
		c.undo.Discard()
	}
	searching := c.SearchBar.Get() == task.SearchTriggered
	query := c.SearchQuery.Get()
	seq := c.nextDispatch()

	c.sched.Serial("dispatch "+a.String(), func(ctx context.Context) func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		res := c.mutate(ctx, a, buf, restore)
		fresh := c.refetch(ctx, searching, query)
		return func() {
			fresh.apply(c)
			c.finish(a, res, seq)
		}
	})
}

func (c *List) nextDispatch() uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.dispatched++
	return c.dispatched
}

func (c *List) latestDispatch(seq uint64) bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.dispatched == seq
}

type mutation struct {
	title   string
	deleted *task.Task
	err     error
}

func (c *List) mutate(ctx context.Context, a task.Action, buf EditBuffer, restore task.Task) mutation {
	switch a {
	case task.ActionAdd:
		t := buf.Task(nil)
		_, err := c.repo.Add(ctx, t)
		return mutation{title: t.Title, err: err}
	case task.ActionUpdate:
		id := buf.ID
		t := buf.Task(&id)
		return mutation{title: t.Title, err: c.repo.Update(ctx, t)}
	case task.ActionDelete:
		// Only a stored snapshot can be restored; the buffer may differ.
		snapshot, getErr := c.repo.Get(ctx, buf.ID)
		title := snapshot.Title
		if getErr != nil {
			title = buf.Title
			c.logger.Warn("no undo snapshot", "id", buf.ID, "err", getErr)
		}
		if err := c.repo.Delete(ctx, buf.ID); err != nil {
			return mutation{title: title, err: err}
		}
		if getErr != nil {
			return mutation{title: title}
		}
		return mutation{title: title, deleted: &snapshot}
	case task.ActionDeleteAll:
		return mutation{err: c.repo.DeleteAll(ctx)}
	case task.ActionUndo:
		_, err := c.repo.Add(ctx, restore)
		return mutation{title: restore.Title, err: err}
	default:
		return mutation{}
	}
}

type refetched struct {
	gens     [numCollections]uint64
	tasks    [numCollections][]task.Task
	errs     [numCollections]error
	searched bool
}

// refetch reads every collection affected by a mutation.
func (c *List) refetch(ctx context.Context, searching bool, query string) refetched {
	var r refetched
	r.tasks[collAll], r.errs[collAll] = c.repo.All(ctx)
	r.tasks[collLow], r.errs[collLow] = c.repo.ByPriorityAsc(ctx)
	r.tasks[collHigh], r.errs[collHigh] = c.repo.ByPriorityDesc(ctx)
	if searching && !task.IsBlank(query) {
		r.searched = true
		r.tasks[collSearched], r.errs[collSearched] = c.repo.Search(ctx, query)
	}
	return r
}

func (r refetched) apply(c *List) {
	for coll := collection(0); coll < numCollections; coll++ {
		if coll == collSearched && !r.searched {
			continue
		}
		// Claiming a generation drops any read issued before the mutation.
		c.claim(coll)
		c.publish(coll, r.tasks[coll], r.errs[coll])
	}
}

func (c *List) finish(a task.Action, res mutation, seq uint64) {
	if res.err != nil {
		c.logger.Error("action failed", "action", a, "title", res.title, "err", res.err)
		c.Snackbar.Set(Snackbar{
			Message: fmt.Sprintf("%s failed: %v", a, res.err),
			Label:   labelOK,
			Action:  a,
			Failed:  true,
		})
		return
	}

	c.logger.Info("action", "action", a, "title", res.title)
	switch a {
	case task.ActionDelete:
		if res.deleted != nil && c.latestDispatch(seq) {
			c.undo.Arm(*res.deleted)
			c.Snackbar.Set(Snackbar{Message: fmt.Sprintf("%s: %s", a, res.title), Label: labelUndo, Action: a})
			return
		}
		c.Snackbar.Set(Snackbar{Message: fmt.Sprintf("%s: %s", a, res.title), Label: labelOK, Action: a})
	case task.ActionDeleteAll:
		c.Snackbar.Set(Snackbar{Message: allRemovedMessage, Label: labelOK, Action: a})
	default:
		c.Snackbar.Set(Snackbar{Message: fmt.Sprintf("%s: %s", a, res.title), Label: labelOK, Action: a})
	}
}

// SwipeToDelete deletes t through the normal dispatch path.
func (c *List) SwipeToDelete(t task.Task) {
	c.editor.LoadFromTask(t)
	c.UpdateAction(task.ActionDelete)
	c.DispatchPendingAction()
}

// UndoLastDelete restores the last deleted task if its undo window is open.
func (c *List) UndoLastDelete() bool {
	if !c.undo.Armed() {
		return false
	}
	c.UpdateAction(task.ActionUndo)
	c.DispatchPendingAction()
	return true
}

// DismissSnackbar hides the notification and makes a pending delete final.
func (c *List) DismissSnackbar() {
	c.Snackbar.Set(Snackbar{})
	c.undo.Discard()
}

// Visible applies the selection rule: a triggered search wins, then the
// sort filter picks the collection.
func (c *List) Visible() Visible {
	var (
		src    Tasks
		source string
		medium bool
	)
	switch sort := c.SortFilter.Get(); {
	case c.SearchBar.Get() == task.SearchTriggered:
		src, source = c.SearchedTasks.Get(), "search"
	case sort == task.PriorityLow:
		src, source = c.LowPriorityTasks.Get(), "low"
	case sort == task.PriorityHigh:
		src, source = c.HighPriorityTasks.Get(), "high"
	case sort == task.PriorityMedium:
		src, source, medium = c.AllTasks.Get(), "medium", true
	default:
		src, source = c.AllTasks.Get(), "all"
	}

	v := Visible{Source: source, Tasks: []task.Task{}}
	switch src.Kind {
	case state.Loading:
		v.Status = StatusLoading
	case state.Error:
		v.Status = StatusError
		v.Err = src.Err
	case state.Success:
		for _, t := range src.Data {
			if medium && t.Priority != task.PriorityMedium {
				continue
			}
			v.Tasks = append(v.Tasks, t)
		}
		v.Status = StatusReady
		if len(v.Tasks) == 0 {
			v.Status = StatusEmpty
		}
	default:
		v.Status = StatusIdle
	}
	return v
}

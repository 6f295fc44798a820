package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/todo-go/internal/task"
)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) Store { return NewMemory() }},
		{name: "file", open: func(t *testing.T) Store {
			s, err := OpenFile(filepath.Join(t.TempDir(), "todo.json"))
			if err != nil {
				t.Fatalf("OpenFile: %v", err)
			}
			return s
		}},
		{name: "sqlite", open: func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		}},
	}
}

func seed(t *testing.T, s Store, tasks ...task.Task) []int {
	t.Helper()
	ids := make([]int, 0, len(tasks))
	for _, tk := range tasks {
		id, err := s.Insert(context.Background(), tk)
		if err != nil {
			t.Fatalf("Insert(%v): %v", tk, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func ids(tasks []task.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestStoreConformance(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("insert assigns ids in order", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				got := seed(t, s,
					task.Task{ID: task.NewID, Title: "a", Priority: task.PriorityLow},
					task.Task{ID: task.NewID, Title: "b", Priority: task.PriorityHigh},
				)
				if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
					t.Fatalf("ids mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("insert keeps explicit id", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				seed(t, s, task.Task{ID: task.NewID, Title: "a"})
				id, err := s.Insert(ctx, task.Task{ID: 7, Title: "restored", Priority: task.PriorityMedium})
				if err != nil {
					t.Fatalf("Insert: %v", err)
				}
				if id != 7 {
					t.Fatalf("id = %d, want 7", id)
				}
				got, err := s.GetByID(ctx, 7)
				if err != nil {
					t.Fatalf("GetByID: %v", err)
				}
				want := task.Task{ID: 7, Title: "restored", Priority: task.PriorityMedium}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("task mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("update and delete", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				seed(t, s,
					task.Task{ID: task.NewID, Title: "a", Description: "x", Priority: task.PriorityLow},
					task.Task{ID: task.NewID, Title: "b", Priority: task.PriorityLow},
				)
				if err := s.Update(ctx, task.Task{ID: 1, Title: "a2", Description: "y", Priority: task.PriorityHigh}); err != nil {
					t.Fatalf("Update: %v", err)
				}
				if err := s.Update(ctx, task.Task{ID: 99, Title: "ghost"}); err != nil {
					t.Fatalf("Update unknown id: %v", err)
				}
				got, err := s.GetByID(ctx, 1)
				if err != nil {
					t.Fatalf("GetByID: %v", err)
				}
				if got.Title != "a2" || got.Description != "y" || got.Priority != task.PriorityHigh {
					t.Fatalf("updated task = %+v", got)
				}

				if err := s.DeleteByID(ctx, 1); err != nil {
					t.Fatalf("DeleteByID: %v", err)
				}
				if err := s.DeleteByID(ctx, 99); err != nil {
					t.Fatalf("DeleteByID unknown id: %v", err)
				}
				if _, err := s.GetByID(ctx, 1); !errors.Is(err, task.ErrNotFound) {
					t.Fatalf("GetByID after delete err = %v, want ErrNotFound", err)
				}
				all, err := s.GetAll(ctx)
				if err != nil {
					t.Fatalf("GetAll: %v", err)
				}
				if diff := cmp.Diff([]int{2}, ids(all)); diff != "" {
					t.Fatalf("remaining ids (-want +got):\n%s", diff)
				}

				if err := s.DeleteAll(ctx); err != nil {
					t.Fatalf("DeleteAll: %v", err)
				}
				all, err = s.GetAll(ctx)
				if err != nil {
					t.Fatalf("GetAll: %v", err)
				}
				if len(all) != 0 {
					t.Fatalf("GetAll after DeleteAll = %v, want empty", all)
				}
			})

			t.Run("priority order", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				seed(t, s,
					task.Task{Title: "none", Priority: task.PriorityNone},
					task.Task{Title: "high", Priority: task.PriorityHigh},
					task.Task{Title: "low", Priority: task.PriorityLow},
					task.Task{Title: "medium", Priority: task.PriorityMedium},
					task.Task{Title: "high2", Priority: task.PriorityHigh},
				)

				asc, err := s.GetByPriorityAsc(ctx)
				if err != nil {
					t.Fatalf("GetByPriorityAsc: %v", err)
				}
				if diff := cmp.Diff([]int{3, 4, 2, 5, 1}, ids(asc)); diff != "" {
					t.Fatalf("asc order (-want +got):\n%s", diff)
				}

				desc, err := s.GetByPriorityDesc(ctx)
				if err != nil {
					t.Fatalf("GetByPriorityDesc: %v", err)
				}
				if diff := cmp.Diff([]int{2, 5, 4, 3, 1}, ids(desc)); diff != "" {
					t.Fatalf("desc order (-want +got):\n%s", diff)
				}
			})

			t.Run("search", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				seed(t, s,
					task.Task{Title: "Buy milk", Description: "two litres"},
					task.Task{Title: "Call mom", Description: "about MILK prices"},
					task.Task{Title: "100% done", Description: ""},
					task.Task{Title: "read", Description: "book"},
					task.Task{Title: "Élan café", Description: "ÜBER straße"},
				)

				tests := []struct {
					query string
					want  []int
				}{
					{query: "milk", want: []int{1, 2}},
					{query: "MILK", want: []int{1, 2}},
					{query: "%", want: []int{3}},
					{query: "_", want: []int{}},
					{query: "zzz", want: []int{}},
					{query: "élan", want: []int{5}},
					{query: "ÉLAN CAFÉ", want: []int{5}},
					{query: "über", want: []int{5}},
				}
				for _, tt := range tests {
					got, err := s.Search(ctx, tt.query)
					if err != nil {
						t.Fatalf("Search(%q): %v", tt.query, err)
					}
					if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
						t.Errorf("Search(%q) (-want +got):\n%s", tt.query, diff)
					}
				}
			})

			t.Run("sort state", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				got, err := s.ReadSortState(ctx)
				if err != nil {
					t.Fatalf("ReadSortState: %v", err)
				}
				if got != task.PriorityNone {
					t.Fatalf("default sort state = %s, want NONE", got)
				}
				for _, p := range []task.Priority{task.PriorityHigh, task.PriorityLow} {
					if err := s.PersistSortState(ctx, p); err != nil {
						t.Fatalf("PersistSortState(%s): %v", p, err)
					}
					got, err := s.ReadSortState(ctx)
					if err != nil {
						t.Fatalf("ReadSortState: %v", err)
					}
					if got != p {
						t.Fatalf("sort state = %s, want %s", got, p)
					}
				}
			})

			t.Run("cancelled context", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				cctx, cancel := context.WithCancel(ctx)
				cancel()
				if _, err := s.GetAll(cctx); err == nil {
					t.Fatalf("GetAll with cancelled context succeeded")
				}
			})
		})
	}
}

func TestFileStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "todo.json")

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	seed(t, s, task.Task{Title: "persist me", Priority: task.PriorityHigh})
	if err := s.PersistSortState(ctx, task.PriorityLow); err != nil {
		t.Fatalf("PersistSortState: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.HasSuffix(string(data), "}\n") || !strings.Contains(string(data), "\n  \"next_id\": 2") {
		t.Fatalf("document not indented with trailing newline:\n%s", data)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	all, err := reopened.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all[0].Title != "persist me" {
		t.Fatalf("reopened tasks = %v", all)
	}
	sortState, _ := reopened.ReadSortState(ctx)
	if sortState != task.PriorityLow {
		t.Fatalf("reopened sort state = %s, want LOW", sortState)
	}
	id, err := reopened.Insert(ctx, task.Task{Title: "next"})
	if err != nil || id != 2 {
		t.Fatalf("Insert after reopen = %d, %v; want 2", id, err)
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantErr  bool
		wantPath string
	}{
		{
			name: "valid",
			doc:  `{"schema_version":1,"next_id":2,"tasks":[{"id":1,"title":"a","priority":"LOW"}]}`,
		},
		{
			name:    "not json",
			doc:     `{`,
			wantErr: true,
		},
		{
			name:     "bad priority",
			doc:      `{"schema_version":1,"next_id":2,"tasks":[{"id":1,"title":"a","priority":"URGENT"}]}`,
			wantErr:  true,
			wantPath: "tasks[0].priority",
		},
		{
			name:     "empty title",
			doc:      `{"schema_version":1,"next_id":2,"tasks":[{"id":1,"title":"","priority":"LOW"}]}`,
			wantErr:  true,
			wantPath: "tasks[0].title",
		},
		{
			name:    "wrong version",
			doc:     `{"schema_version":2,"next_id":1,"tasks":[]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateDocument([]byte(tt.doc))
			if (len(errs) > 0) != tt.wantErr {
				t.Fatalf("ValidateDocument errs = %v, wantErr %v", errs, tt.wantErr)
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, err := range errs {
				var ve *ValidationError
				if errors.As(err, &ve) && ve.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Fatalf("no error at %s in %v", tt.wantPath, errs)
			}
		})
	}
}

func TestOpenFileRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.json")
	if err := os.WriteFile(path, []byte(`{"schema_version":1,"next_id":1,"tasks":[{"id":0,"title":"x","priority":"LOW"}]}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatalf("OpenFile accepted an invalid document")
	}
}

func TestValidateMinimal(t *testing.T) {
	doc := &Document{
		SchemaVersion: 1,
		NextID:        3,
		Tasks: []task.Task{
			{ID: 1, Title: "a", Priority: task.PriorityLow},
			{ID: 1, Title: "b", Priority: task.PriorityLow},
			{ID: 2, Title: " ", Priority: task.PriorityLow},
		},
	}
	errs := doc.validateMinimal()
	if len(errs) != 2 {
		t.Fatalf("validateMinimal errs = %v, want 2", errs)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"/tasks":         "tasks",
		"/tasks/0/title": "tasks[0].title",
		"#/tasks/12/id":  "tasks[12].id",
		"/sort_state":    "sort_state",
		"/a~1b/0":        "a/b[0]",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike("50%_off!"); got != "50!%!_off!!" {
		t.Fatalf("escapeLike = %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Fatalf("Open accepted unknown driver")
	}
	s, err := Open(context.Background(), Options{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	s.Close()
}

package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todo-go/internal/task"
)

//go:embed schema/todo.schema.json
var documentSchema string

const (
	documentVersion  = 1
	documentSchemaID = "todo.schema.json"
)

// Document is the on-disk form of the file backend.
type Document struct {
	SchemaVersion int         `json:"schema_version"`
	NextID        int         `json:"next_id"`
	SortState     string      `json:"sort_state,omitempty"`
	Tasks         []task.Task `json:"tasks"`
}

// ValidationError locates a document validation failure.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// File is a Store backed by a JSON document. Every mutation rewrites the
// document atomically.
type File struct {
	mu   sync.RWMutex
	path string
	tb   *table
}

// OpenFile loads the document at path, or starts an empty one if the file
// does not exist yet.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	doc, err := LoadDocument(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		doc = &Document{SchemaVersion: documentVersion, NextID: 1, Tasks: []task.Task{}}
	}
	return &File{
		path: path,
		tb:   &table{NextID: doc.NextID, Sort: doc.SortState, Tasks: doc.Tasks},
	}, nil
}

// LoadDocument reads and validates a document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task document: %w", err)
	}
	if errs := ValidateDocument(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid task document %s: %w", path, errors.Join(errs...))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task document: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	return &doc, nil
}

// Save writes the document with 2-space indentation and a trailing newline.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task document: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create task document dir: %w", err)
		}
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write task document: %w", err)
	}
	return nil
}

// ValidateDocument checks raw document bytes against the embedded JSON
// Schema, falling back to minimal checks if the schema cannot be compiled.
func ValidateDocument(data []byte) []error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("parse: %w", err)}}
	}

	schema, err := compileDocumentSchema()
	if err == nil {
		if err := schema.Validate(raw); err != nil {
			return schemaErrors(err)
		}
		return nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{&ValidationError{Err: err}}
	}
	return doc.validateMinimal()
}

func compileDocumentSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(documentSchemaID, strings.NewReader(documentSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(documentSchemaID)
}

func (d *Document) validateMinimal() []error {
	var errs []error
	if d.SchemaVersion != documentVersion {
		errs = append(errs, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", documentVersion, d.SchemaVersion),
		})
	}
	if d.Tasks == nil {
		errs = append(errs, &ValidationError{Path: "tasks", Err: fmt.Errorf("missing required field")})
		return errs
	}
	seen := make(map[int]bool, len(d.Tasks))
	for i, t := range d.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		switch {
		case t.ID < 1:
			errs = append(errs, &ValidationError{Path: path + ".id", Err: fmt.Errorf("must be positive, got %d", t.ID)})
		case seen[t.ID]:
			errs = append(errs, &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate id %d", t.ID)})
		case task.IsBlank(t.Title):
			errs = append(errs, &ValidationError{Path: path + ".title", Err: fmt.Errorf("missing required field")})
		case !t.Priority.Valid():
			errs = append(errs, &ValidationError{Path: path + ".priority", Err: fmt.Errorf("invalid priority %q", t.Priority)})
		}
		seen[t.ID] = true
	}
	return errs
}

func schemaErrors(err error) []error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath turns "/tasks/0/title" into "tasks[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// persist must be called with f.mu held for writing.
func (f *File) persist() error {
	doc := &Document{
		SchemaVersion: documentVersion,
		NextID:        f.tb.NextID,
		SortState:     f.tb.Sort,
		Tasks:         f.tb.Tasks,
	}
	return doc.Save(f.path)
}

// Path returns the document path.
func (f *File) Path() string {
	return f.path
}

func (f *File) mutate(ctx context.Context, fn func(tb *table) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	backup := *f.tb
	backup.Tasks = f.tb.all()
	if err := fn(f.tb); err != nil {
		return err
	}
	if err := f.persist(); err != nil {
		*f.tb = backup
		return err
	}
	return nil
}

func (f *File) read(ctx context.Context, fn func(tb *table)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn(f.tb)
	return nil
}

func (f *File) Insert(ctx context.Context, t task.Task) (int, error) {
	var id int
	err := f.mutate(ctx, func(tb *table) error {
		var err error
		id, err = tb.insert(t)
		return err
	})
	return id, err
}

func (f *File) Update(ctx context.Context, t task.Task) error {
	return f.mutate(ctx, func(tb *table) error {
		tb.update(t)
		return nil
	})
}

func (f *File) DeleteByID(ctx context.Context, id int) error {
	return f.mutate(ctx, func(tb *table) error {
		tb.remove(id)
		return nil
	})
}

func (f *File) DeleteAll(ctx context.Context) error {
	return f.mutate(ctx, func(tb *table) error {
		tb.clear()
		return nil
	})
}

func (f *File) GetAll(ctx context.Context) ([]task.Task, error) {
	var out []task.Task
	err := f.read(ctx, func(tb *table) { out = tb.all() })
	return out, err
}

func (f *File) GetByID(ctx context.Context, id int) (task.Task, error) {
	var (
		out    task.Task
		getErr error
	)
	if err := f.read(ctx, func(tb *table) { out, getErr = tb.get(id) }); err != nil {
		return task.Task{}, err
	}
	return out, getErr
}

func (f *File) GetByPriorityAsc(ctx context.Context) ([]task.Task, error) {
	var out []task.Task
	err := f.read(ctx, func(tb *table) { out = tb.byRank(task.Priority.AscRank) })
	return out, err
}

func (f *File) GetByPriorityDesc(ctx context.Context) ([]task.Task, error) {
	var out []task.Task
	err := f.read(ctx, func(tb *table) { out = tb.byRank(task.Priority.DescRank) })
	return out, err
}

func (f *File) Search(ctx context.Context, query string) ([]task.Task, error) {
	var out []task.Task
	err := f.read(ctx, func(tb *table) { out = tb.search(query) })
	return out, err
}

func (f *File) ReadSortState(ctx context.Context) (task.Priority, error) {
	p := task.PriorityNone
	err := f.read(ctx, func(tb *table) { p = tb.sortState() })
	return p, err
}

func (f *File) PersistSortState(ctx context.Context, p task.Priority) error {
	return f.mutate(ctx, func(tb *table) error {
		tb.Sort = p.String()
		return nil
	})
}

// Close is a no-op; every mutation is already on disk.
func (f *File) Close() error {
	return nil
}

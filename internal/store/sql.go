package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/nibzard/todo-go/internal/task"
)

var (
	//go:embed schema/sqlite.sql
	sqliteSchema string

	//go:embed schema/mysql.sql
	mysqlSchema string
)

const sortStateKey = "sort_state"

// sqliteDriver is go-sqlite3 with a Unicode-aware ulower() function;
// SQLite's built-in LOWER() only folds ASCII.
const sqliteDriver = "sqlite3_todo"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name       string
	schema     string
	upsertPref string
	// lower is the case-folding SQL function used by Search.
	lower string
}

var (
	sqliteDialect = dialect{
		name:   "sqlite3",
		schema: sqliteSchema,
		lower:  "ulower",
		upsertPref: `INSERT INTO preferences (pref_key, pref_value) VALUES (?, ?)
			ON CONFLICT(pref_key) DO UPDATE SET pref_value = excluded.pref_value`,
	}
	mysqlDialect = dialect{
		name:   "mysql",
		schema: mysqlSchema,
		lower:  "LOWER",
		upsertPref: `INSERT INTO preferences (pref_key, pref_value) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE pref_value = VALUES(pref_value)`,
	}
)

const (
	selectTasks  = `SELECT id, title, description, priority FROM todo_table`
	ascPriority  = `CASE priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 ELSE 4 END`
	descPriority = `CASE priority WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 3 ELSE 4 END`
)

type taskRow struct {
	ID          int    `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Priority    string `db:"priority"`
}

func (r taskRow) task() task.Task {
	p, err := task.ParsePriority(r.Priority)
	if err != nil {
		p = task.PriorityNone
	}
	return task.Task{ID: r.ID, Title: r.Title, Description: r.Description, Priority: p}
}

// SQL is a Store backed by a relational database.
type SQL struct {
	db *sqlx.DB
	d  dialect
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	raw, err := sql.Open(sqliteDriver, path+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db := sqlx.NewDb(raw, sqliteDialect.name)
	// One connection keeps ":memory:" databases shared and avoids lock contention.
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, sqliteDialect)
}

// OpenMySQL connects to the MySQL server described by dsn and applies the
// schema.
func OpenMySQL(ctx context.Context, dsn string) (*SQL, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql dsn is empty")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.MultiStatements = false

	db, err := sqlx.Open(mysqlDialect.name, cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return newSQL(ctx, db, mysqlDialect)
}

func newSQL(ctx context.Context, db *sqlx.DB, d dialect) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.name, err)
	}
	s := &SQL{db: db, d: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate executes the schema one statement at a time.
func (s *SQL) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(s.d.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.d.name, err)
		}
	}
	return nil
}

func (s *SQL) Insert(ctx context.Context, t task.Task) (int, error) {
	if t.Priority == "" {
		t.Priority = task.PriorityNone
	}
	var (
		res sql.Result
		err error
	)
	if t.ID > 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO todo_table (id, title, description, priority) VALUES (?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Priority.String())
	} else {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO todo_table (title, description, priority) VALUES (?, ?, ?)`,
			t.Title, t.Description, t.Priority.String())
	}
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	if t.ID > 0 {
		return t.ID, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return int(id), nil
}

func (s *SQL) Update(ctx context.Context, t task.Task) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE todo_table SET title = ?, description = ?, priority = ? WHERE id = ?`,
		t.Title, t.Description, t.Priority.String(), t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return nil
}

func (s *SQL) DeleteByID(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todo_table WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *SQL) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todo_table`); err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

func (s *SQL) selectTasks(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.task())
	}
	return out, nil
}

func (s *SQL) GetAll(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.selectTasks(ctx, selectTasks+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQL) GetByID(ctx context.Context, id int) (task.Task, error) {
	var row taskRow
	if err := s.db.GetContext(ctx, &row, selectTasks+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return row.task(), nil
}

func (s *SQL) GetByPriorityAsc(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.selectTasks(ctx, selectTasks+` ORDER BY `+ascPriority+`, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get tasks by priority: %w", err)
	}
	return tasks, nil
}

func (s *SQL) GetByPriorityDesc(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.selectTasks(ctx, selectTasks+` ORDER BY `+descPriority+`, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get tasks by priority: %w", err)
	}
	return tasks, nil
}

func (s *SQL) Search(ctx context.Context, query string) ([]task.Task, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	where := fmt.Sprintf(` WHERE %[1]s(title) LIKE ? ESCAPE '!' OR %[1]s(description) LIKE ? ESCAPE '!' ORDER BY id ASC`, s.d.lower)
	tasks, err := s.selectTasks(ctx, selectTasks+where, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func (s *SQL) ReadSortState(ctx context.Context) (task.Priority, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT pref_value FROM preferences WHERE pref_key = ?`, sortStateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return task.PriorityNone, nil
	}
	if err != nil {
		return task.PriorityNone, fmt.Errorf("read sort state: %w", err)
	}
	p, err := task.ParsePriority(value)
	if err != nil {
		return task.PriorityNone, nil
	}
	return p, nil
}

func (s *SQL) PersistSortState(ctx context.Context, p task.Priority) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsertPref, sortStateKey, p.String()); err != nil {
		return fmt.Errorf("persist sort state: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

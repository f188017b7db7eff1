package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ticklite/internal/store"
	"ticklite/internal/task"
)

var (
	// ErrNoState means the database has never had a collection saved to it.
	ErrNoState = store.ErrNoState
	// ErrMalformed wraps rows that cannot be decoded back into tasks.
	ErrMalformed = store.ErrMalformed
)

const (
	timeLayout = time.RFC3339Nano
	savedKey   = "saved_at"
)

// Store persists the full task collection in a sqlite database. It
// implements store.Repository.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	due TEXT DEFAULT NULL,
	priority TEXT NOT NULL DEFAULT 'Medium',
	completed INTEGER NOT NULL DEFAULT 0,
	completed_at TEXT DEFAULT NULL,
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS task_tags (
	task_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (task_id, position)
);`, `
CREATE TABLE IF NOT EXISTS meta (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"notes":  "ALTER TABLE tasks ADD COLUMN notes TEXT NOT NULL DEFAULT '';",
		"repeat": "ALTER TABLE tasks ADD COLUMN repeat TEXT NOT NULL DEFAULT 'none';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the saved collection in its saved order.
func (s *Store) Load(ctx context.Context) ([]task.Task, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE name = ?;`, savedKey).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}

	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, notes, due, priority, completed, completed_at, repeat, created_at FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		var completed int
		var priority, repeat, createdStr string
		var dueStr, completedStr sql.NullString

		if err := rows.Scan(&t.ID, &t.Title, &t.Notes, &dueStr, &priority, &completed, &completedStr, &repeat, &createdStr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if err := decodeTask(&t, completed, priority, repeat, createdStr, dueStr, completedStr); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformed, t.ID, err)
		}
		t.Tags = tags[t.ID]
		if t.Tags == nil {
			t.Tags = []string{}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) loadTags(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id, tag FROM task_tags ORDER BY task_id, position;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := map[string][]string{}
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("%w: tag: %v", ErrMalformed, err)
		}
		tags[id] = append(tags[id], tag)
	}
	return tags, rows.Err()
}

func decodeTask(t *task.Task, completed int, priority, repeat, created string, due, completedAt sql.NullString) error {
	var err error
	if t.Priority, err = task.ParsePriority(priority); err != nil {
		return err
	}
	if t.Repeat, err = task.ParseRepeat(repeat); err != nil {
		return err
	}
	if t.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if t.Due, err = parseNullTime(due); err != nil {
		return fmt.Errorf("due: %w", err)
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return fmt.Errorf("completed_at: %w", err)
	}
	t.Completed = completed == 1
	if t.Completed != (t.CompletedAt != nil) {
		return errors.New("completed flag and completed_at disagree")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("empty title")
	}
	return nil
}

// Save replaces the stored collection with tasks in a single transaction.
func (s *Store) Save(ctx context.Context, tasks []task.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags;`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks;`); err != nil {
		return err
	}

	insertTask, err := tx.PrepareContext(ctx, `INSERT INTO tasks (id, position, title, notes, due, priority, completed, completed_at, repeat, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer insertTask.Close()
	insertTag, err := tx.PrepareContext(ctx, `INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?);`)
	if err != nil {
		return err
	}
	defer insertTag.Close()

	for i, t := range tasks {
		completed := 0
		if t.Completed {
			completed = 1
		}
		if _, err := insertTask.ExecContext(ctx, t.ID, i, t.Title, t.Notes, formatNullTime(t.Due), string(t.Priority),
			completed, formatNullTime(t.CompletedAt), string(t.Repeat), t.CreatedAt.Format(timeLayout)); err != nil {
			return fmt.Errorf("insert task %q: %w", t.ID, err)
		}
		for j, tag := range t.Tags {
			if _, err := insertTag.ExecContext(ctx, t.ID, j, tag); err != nil {
				return fmt.Errorf("insert tag for %q: %w", t.ID, err)
			}
		}
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value;`, savedKey, now); err != nil {
		return err
	}
	return tx.Commit()
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

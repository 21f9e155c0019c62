// Package journal implements the Error Journal: a persistent diary of
// method failures and successes keyed by (tool, app), so the Escalating
// Resolver can skip straight to whatever method has worked before instead
// of re-discovering it on every call.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"warden/internal/logging"
)

// maxEntries bounds the journal; eviction favors high success_count entries
// and drops the rest oldest-first.
const maxEntries = 500

// Entry is one journal row: a tool+app method-selection record.
type Entry struct {
	Tool          string
	App           string
	Window        string
	MethodFailed  string
	MethodWorked  string
	ErrorMessage  string
	SuccessCount  int
	FailureCount  int
	Timestamp     time.Time
}

// Journal is the persistent method-selection history store, backed by a
// local SQLite database under the engine's config directory.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the journal database at dir/memory/error_journal.db.
func Open(dir string) (*Journal, error) {
	path := filepath.Join(dir, "memory", "error_journal.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return j, nil
}

// Close closes the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tool TEXT NOT NULL,
		app TEXT NOT NULL,
		window TEXT NOT NULL,
		method_failed TEXT NOT NULL,
		method_worked TEXT,
		error_message TEXT,
		success_count INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_tool_app ON entries(tool, app);
	`
	_, err := j.db.Exec(schema)
	return err
}

// normalizeApp extracts the app name from a window title, e.g.
// "Document - Notepad" -> "notepad".
func normalizeApp(window string) string {
	w := strings.TrimSpace(window)
	if w == "" {
		return "unknown"
	}
	if idx := strings.LastIndex(w, " - "); idx >= 0 {
		w = w[idx+3:]
	}
	return strings.ToLower(strings.TrimSpace(w))
}

// RecordFailure records that method failed for tool on window's app. If an
// identical (tool, app, method) failure already exists, its failure count
// is incremented instead of creating a duplicate row.
func (j *Journal) RecordFailure(tool, window, method, errMsg string) error {
	app := normalizeApp(window)

	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.Exec(`
		UPDATE entries SET error_message = ?, failure_count = failure_count + 1, updated_at = ?
		WHERE tool = ? AND app = ? AND method_failed = ?`,
		errMsg, time.Now(), tool, app, method)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	_, err = j.db.Exec(`
		INSERT INTO entries (tool, app, window, method_failed, error_message, success_count, failure_count, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 1, ?)`,
		tool, app, window, method, errMsg, time.Now())
	if err != nil {
		return err
	}

	j.evictLocked()
	return nil
}

// RecordSuccess links method as the working fallback for the most recent
// failure of a different method on tool+app (whether or not that failure
// already has a working method), incrementing its success count.
func (j *Journal) RecordSuccess(tool, window, method string) error {
	app := normalizeApp(window)

	j.mu.Lock()
	defer j.mu.Unlock()

	row := j.db.QueryRow(`
		SELECT id FROM entries
		WHERE tool = ? AND app = ? AND method_failed != ? AND method_failed IS NOT NULL
		ORDER BY id DESC LIMIT 1`, tool, app, method)

	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	_, err := j.db.Exec(`
		UPDATE entries SET method_worked = ?, success_count = success_count + 1, updated_at = ?
		WHERE id = ?`, method, time.Now(), id)
	return err
}

// BestMethod returns the method with the highest recorded success count for
// tool+app, or "" if the journal has no usable data.
func (j *Journal) BestMethod(tool, window string) string {
	app := normalizeApp(window)

	j.mu.Lock()
	defer j.mu.Unlock()

	var method string
	row := j.db.QueryRow(`
		SELECT method_worked FROM entries
		WHERE tool = ? AND app = ? AND method_worked IS NOT NULL AND success_count > 0
		ORDER BY success_count DESC LIMIT 1`, tool, app)
	if err := row.Scan(&method); err != nil {
		return ""
	}
	return method
}

// KnownIssues lists journal entries, optionally filtered to one window's app.
func (j *Journal) KnownIssues(window string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query := `SELECT tool, app, window, method_failed, COALESCE(method_worked, ''), COALESCE(error_message, ''), success_count, failure_count, updated_at FROM entries`
	args := []any{}
	if window != "" {
		query += " WHERE app = ?"
		args = append(args, normalizeApp(window))
	}
	query += " ORDER BY id"

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Tool, &e.App, &e.Window, &e.MethodFailed, &e.MethodWorked, &e.ErrorMessage, &e.SuccessCount, &e.FailureCount, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes journal entries, optionally restricted to one window's app.
func (j *Journal) Clear(window string) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var res sql.Result
	var err error
	if window != "" {
		res, err = j.db.Exec(`DELETE FROM entries WHERE app = ?`, normalizeApp(window))
	} else {
		res, err = j.db.Exec(`DELETE FROM entries`)
	}
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// evictLocked trims the journal to maxEntries, keeping the highest
// success_count rows and dropping the rest oldest-first. Caller must hold mu.
func (j *Journal) evictLocked() {
	var count int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&count); err != nil || count <= maxEntries {
		return
	}

	excess := count - maxEntries
	res, err := j.db.Exec(`
		DELETE FROM entries WHERE id IN (
			SELECT id FROM entries ORDER BY success_count ASC, updated_at ASC LIMIT ?
		)`, excess)
	if err != nil {
		logging.Get(logging.CategoryJournal).Warn("eviction failed: %v", err)
		return
	}
	n, _ := res.RowsAffected()
	logging.Get(logging.CategoryJournal).Debug("evicted %d journal entries", n)
}

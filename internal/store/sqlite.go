package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

// SQLiteStore wraps an SQLite database connection with record operations.
type SQLiteStore struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// OpenSQLite opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// PRAGMAs are per connection; keep a single one so they always apply.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{
		conn: conn,
		path: path,
	}, nil
}

// Close closes the database connection.
func (db *SQLiteStore) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *SQLiteStore) Path() string {
	return db.path
}

// Migrate applies all pending schema migrations.
func (db *SQLiteStore) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Papers},
		{2, migrationV2Milestones},
		{3, migrationV3Tasks},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Migration SQL statements
const migrationV1Papers = `
CREATE TABLE IF NOT EXISTS papers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	deadline TEXT NOT NULL,
	conference TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	archived INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_papers_name ON papers(name COLLATE NOCASE);
`

const migrationV2Milestones = `
CREATE TABLE IF NOT EXISTS milestones (
	id TEXT PRIMARY KEY,
	paper_id TEXT NOT NULL REFERENCES papers(id),
	description TEXT NOT NULL,
	due_date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	priority INTEGER NOT NULL DEFAULT 1,
	decomposed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_milestones_paper_id ON milestones(paper_id);
`

const migrationV3Tasks = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	milestone_id TEXT NOT NULL REFERENCES milestones(id),
	paper_id TEXT NOT NULL REFERENCES papers(id),
	description TEXT NOT NULL,
	scheduled_date TEXT NOT NULL,
	estimated_hours REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_milestone_id ON tasks(milestone_id);
CREATE INDEX IF NOT EXISTS idx_tasks_paper_id ON tasks(paper_id);
CREATE INDEX IF NOT EXISTS idx_tasks_scheduled_date ON tasks(scheduled_date);
`

// Exec executes a query that doesn't return rows.
func (db *SQLiteStore) Exec(query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows.
func (db *SQLiteStore) Query(query string, args ...any) (*sql.Rows, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *SQLiteStore) QueryRow(query string, args ...any) *sql.Row {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.QueryRow(query, args...)
}

// Transaction runs the given function within a transaction.
func (db *SQLiteStore) Transaction(fn func(tx *sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// isConstraintError reports whether err came from a violated SQLite
// constraint.
func isConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// Paper CRUD operations

const paperColumns = `id, name, deadline, conference, description, archived, created_at`

func scanPaper(scan func(dest ...any) error) (*models.Paper, error) {
	var p models.Paper
	var createdAt string
	if err := scan(&p.ID, &p.Name, &p.Deadline, &p.Conference, &p.Description, &p.Archived, &createdAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = parseTime(createdAt)
	return &p, nil
}

// CreatePaper creates a new paper.
func (db *SQLiteStore) CreatePaper(p *models.Paper) error {
	_, err := db.Exec(`
		INSERT INTO papers (`+paperColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Deadline, p.Conference, p.Description, p.Archived, formatTime(p.CreatedAt))
	if isConstraintError(err) {
		return fmt.Errorf("create paper %s: %w", p.ID, ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("create paper: %w", err)
	}
	return nil
}

// GetPaper retrieves a paper by ID.
func (db *SQLiteStore) GetPaper(id string) (*models.Paper, error) {
	row := db.QueryRow(`SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	return p, nil
}

// UpdatePaper updates a paper.
func (db *SQLiteStore) UpdatePaper(p *models.Paper) error {
	res, err := db.Exec(`
		UPDATE papers SET name = ?, deadline = ?, conference = ?, description = ?, archived = ?
		WHERE id = ?
	`, p.Name, p.Deadline, p.Conference, p.Description, p.Archived, p.ID)
	if err != nil {
		return fmt.Errorf("update paper: %w", err)
	}
	return requireRow(res, "paper", p.ID)
}

// ListPapers lists all papers ordered by deadline, then name.
func (db *SQLiteStore) ListPapers() ([]models.Paper, error) {
	rows, err := db.Query(`SELECT ` + paperColumns + ` FROM papers ORDER BY deadline, name`)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	var papers []models.Paper
	for rows.Next() {
		p, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// Milestone CRUD operations

const milestoneColumns = `id, paper_id, description, due_date, status, priority, decomposed, created_at`

func scanMilestone(scan func(dest ...any) error) (*models.Milestone, error) {
	var m models.Milestone
	var createdAt string
	if err := scan(&m.ID, &m.PaperID, &m.Description, &m.DueDate, &m.Status, &m.Priority, &m.Decomposed, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt, _ = parseTime(createdAt)
	return &m, nil
}

// CreateMilestone creates a new milestone. Its paper must exist.
func (db *SQLiteStore) CreateMilestone(m *models.Milestone) error {
	return db.Transaction(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT COUNT(*) FROM papers WHERE id = ?`, m.PaperID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("create milestone: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("create milestone: paper %s: %w", m.PaperID, ErrIntegrity)
		}

		_, err = tx.Exec(`
			INSERT INTO milestones (`+milestoneColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.PaperID, m.Description, m.DueDate, string(m.Status), m.Priority, m.Decomposed, formatTime(m.CreatedAt))
		if isConstraintError(err) {
			return fmt.Errorf("create milestone %s: %w", m.ID, ErrDuplicateID)
		}
		if err != nil {
			return fmt.Errorf("create milestone: %w", err)
		}
		return nil
	})
}

// GetMilestone retrieves a milestone by ID.
func (db *SQLiteStore) GetMilestone(id string) (*models.Milestone, error) {
	row := db.QueryRow(`SELECT `+milestoneColumns+` FROM milestones WHERE id = ?`, id)
	m, err := scanMilestone(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

// UpdateMilestone updates a milestone.
func (db *SQLiteStore) UpdateMilestone(m *models.Milestone) error {
	res, err := db.Exec(`
		UPDATE milestones SET description = ?, due_date = ?, status = ?, priority = ?, decomposed = ?
		WHERE id = ?
	`, m.Description, m.DueDate, string(m.Status), m.Priority, m.Decomposed, m.ID)
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	return requireRow(res, "milestone", m.ID)
}

// ListMilestones lists milestones matching the filter ordered by due date,
// then priority (highest first), then creation time.
func (db *SQLiteStore) ListMilestones(f MilestoneFilter) ([]models.Milestone, error) {
	var where []string
	var args []any
	if f.PaperID != "" {
		where = append(where, "paper_id = ?")
		args = append(args, f.PaperID)
	}
	if f.Decomposed != nil {
		where = append(where, "decomposed = ?")
		args = append(args, *f.Decomposed)
	}
	if f.ExcludeCompleted {
		where = append(where, "status != ?")
		args = append(args, string(models.MilestoneCompleted))
	}

	query := `SELECT ` + milestoneColumns + ` FROM milestones`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date, priority DESC, created_at"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

// Task CRUD operations

const taskColumns = `id, milestone_id, paper_id, description, scheduled_date, estimated_hours, status, created_at`

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var t models.Task
	var createdAt string
	if err := scan(&t.ID, &t.MilestoneID, &t.PaperID, &t.Description, &t.ScheduledDate, &t.EstimatedHours, &t.Status, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt, _ = parseTime(createdAt)
	return &t, nil
}

// CreateTasks inserts all tasks in one transaction.
func (db *SQLiteStore) CreateTasks(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO tasks (` + taskColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare task insert: %w", err)
		}
		defer stmt.Close()

		owners := make(map[string]string)
		for i := range tasks {
			t := &tasks[i]

			owner, ok := owners[t.MilestoneID]
			if !ok {
				err := tx.QueryRow(`SELECT paper_id FROM milestones WHERE id = ?`, t.MilestoneID).Scan(&owner)
				if err == sql.ErrNoRows {
					return fmt.Errorf("create task: milestone %s: %w", t.MilestoneID, ErrIntegrity)
				}
				if err != nil {
					return fmt.Errorf("create task: %w", err)
				}
				owners[t.MilestoneID] = owner
			}
			if owner != t.PaperID {
				return fmt.Errorf("create task: paper %s does not own milestone %s: %w", t.PaperID, t.MilestoneID, ErrIntegrity)
			}

			_, err := stmt.Exec(t.ID, t.MilestoneID, t.PaperID, t.Description, t.ScheduledDate,
				t.EstimatedHours, string(t.Status), formatTime(t.CreatedAt))
			if isConstraintError(err) {
				return fmt.Errorf("create task %s: %w", t.ID, ErrDuplicateID)
			}
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
		}
		return nil
	})
}

// GetTask retrieves a task by ID.
func (db *SQLiteStore) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask updates a task.
func (db *SQLiteStore) UpdateTask(t *models.Task) error {
	res, err := db.Exec(`
		UPDATE tasks SET description = ?, scheduled_date = ?, estimated_hours = ?, status = ?
		WHERE id = ?
	`, t.Description, t.ScheduledDate, t.EstimatedHours, string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(res, "task", t.ID)
}

// ListTasks lists tasks matching the filter ordered by scheduled date,
// keeping insertion order within a day.
func (db *SQLiteStore) ListTasks(f TaskFilter) ([]models.Task, error) {
	var where []string
	var args []any
	if f.PaperID != "" {
		where = append(where, "paper_id = ?")
		args = append(args, f.PaperID)
	}
	if f.MilestoneID != "" {
		where = append(where, "milestone_id = ?")
		args = append(args, f.MilestoneID)
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.From.IsZero() {
		where = append(where, "scheduled_date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "scheduled_date <= ?")
		args = append(args, f.To)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scheduled_date, rowid"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DeleteTasksByMilestone deletes every task of a milestone.
func (db *SQLiteStore) DeleteTasksByMilestone(milestoneID string) (int, error) {
	res, err := db.Exec(`DELETE FROM tasks WHERE milestone_id = ?`, milestoneID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return int(n), nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// Package sqlstore implements domain.TaskStore on SQLite. Records keep
// their canonical text encoding as the payload, so anything the codec
// preserves (unknown fields included) survives the database unchanged; the
// id and area columns exist for lookup and routing.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hseto/minute/internal/codec"
	"github.com/hseto/minute/internal/domain"
)

const schemaVersion = 1

// Store implements domain.TaskStore backed by a SQLite database.
type Store struct {
	db     *sql.DB
	clock  domain.Clock
	logger domain.Logger
}

// Open opens (or creates) the database at dbPath. logger may be nil;
// skipped undecodable rows are then silent.
func Open(dbPath string, clock domain.Clock, logger domain.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &Store{db: db, clock: clock, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the schema and repairs the ID counter when record rows
// have outrun it.
func (s *Store) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id      TEXT PRIMARY KEY,
		area    TEXT NOT NULL,
		content TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		schema  INTEGER NOT NULL,
		next_id INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM meta`).Scan(&count); err != nil {
		return fmt.Errorf("read meta: %w", err)
	}
	if count == 0 {
		if _, err := s.db.Exec(`INSERT INTO meta (schema, next_id) VALUES (?, 1)`, schemaVersion); err != nil {
			return fmt.Errorf("write meta: %w", err)
		}
	}

	minNext, err := s.minNextID()
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE meta SET next_id = ? WHERE next_id < ?`, minNext, minNext); err != nil {
		return fmt.Errorf("repair next_id: %w", err)
	}
	return nil
}

func (s *Store) minNextID() (int, error) {
	rows, err := s.db.Query(`SELECT id FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("scan ids: %w", err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		if n, ok := parseID(id); ok && n > max {
			max = n
		}
	}
	return max + 1, rows.Err()
}

// Get retrieves a record by ID from any area. Returns nil if not found.
func (s *Store) Get(id string) (*domain.TaskRecord, error) {
	var area, content string
	err := s.db.QueryRow(`SELECT area, content FROM tasks WHERE id = ?`, id).Scan(&area, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return decodeRow(id, area, content)
}

// List retrieves records matching the filter. Rows that fail to decode are
// skipped, with a warning, so one corrupt row never hides the rest.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	query := `SELECT id, area, content FROM tasks`
	var args []any
	if filter.Area != "" {
		query += ` WHERE area = ?`
		args = append(args, string(filter.Area))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var recs []*domain.TaskRecord
	for rows.Next() {
		var id, area, content string
		if err := rows.Scan(&id, &area, &content); err != nil {
			return nil, err
		}
		rec, err := decodeRow(id, area, content)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn(id, "store", fmt.Sprintf("skipping undecodable row: %v", err))
			}
			continue
		}
		if matches(rec, filter) {
			recs = append(recs, rec)
		}
	}
	return recs, rows.Err()
}

// Put creates or replaces a record. An existing record keeps its area; a
// new record lands in the area the record claims, defaulting to active.
func (s *Store) Put(rec *domain.TaskRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	content, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	area := rec.Area
	if area == "" {
		area = domain.AreaActive
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (id, area, content) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content`,
		rec.ID, string(area), string(content))
	if err != nil {
		return fmt.Errorf("put %s: %w", rec.ID, err)
	}
	return nil
}

// Patch applies field-level updates to an existing record.
func (s *Store) Patch(id string, patch domain.FieldPatch) (*domain.TaskRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin patch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var area, content string
	err = tx.QueryRow(`SELECT area, content FROM tasks WHERE id = ?`, id).Scan(&area, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", id, err)
	}

	rec, err := decodeRow(id, area, content)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(rec, domain.Today(s.clock))

	encoded, err := codec.Encode(updated)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if _, err := tx.Exec(`UPDATE tasks SET content = ? WHERE id = ?`, string(encoded), id); err != nil {
		return nil, fmt.Errorf("patch %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit patch: %w", err)
	}
	return updated, nil
}

// Move relocates a record to another area.
func (s *Store) Move(id string, area domain.Area) error {
	res, err := s.db.Exec(`UPDATE tasks SET area = ? WHERE id = ?`, string(area), id)
	if err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}

// NextID allocates the next TASK-NNN identifier.
func (s *Store) NextID() (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin next_id: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRow(`SELECT next_id FROM meta`).Scan(&next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotInitialized
		}
		return "", fmt.Errorf("read next_id: %w", err)
	}
	if _, err := tx.Exec(`UPDATE meta SET next_id = next_id + 1`); err != nil {
		return "", fmt.Errorf("advance next_id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit next_id: %w", err)
	}
	return fmt.Sprintf("TASK-%03d", next), nil
}

var _ domain.TaskStore = (*Store)(nil)
var _ domain.StoreInitializer = (*Store)(nil)

func decodeRow(id, area, content string) (*domain.TaskRecord, error) {
	rec, err := codec.Decode(content)
	if err != nil {
		var parseErr *codec.ParseError
		if errors.As(err, &parseErr) {
			rec, err = codec.DecodeFallback(content)
		}
		if err != nil {
			return nil, fmt.Errorf("parse record %s: %w", id, err)
		}
	}
	rec.Area = domain.Area(area)
	return rec, nil
}

func matches(rec *domain.TaskRecord, filter domain.TaskFilter) bool {
	if filter.Status != nil && rec.Status != *filter.Status {
		return false
	}
	if filter.Assignee != "" && rec.Assignee != filter.Assignee {
		return false
	}
	if filter.Label != "" && !slices.Contains(rec.Labels, filter.Label) {
		return false
	}
	if filter.MinScore != nil && (rec.Score == nil || *rec.Score < *filter.MinScore) {
		return false
	}
	if filter.MaxScore != nil && rec.Score != nil && *rec.Score > *filter.MaxScore {
		return false
	}
	return true
}

func parseID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "TASK-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

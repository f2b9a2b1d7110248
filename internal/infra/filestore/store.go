// Package filestore implements domain.TaskStore on flat files. Each record
// is one markdown file named after its ID, kept under an area directory
// (tasks, holding, archive); the file itself is the canonical encoding, so
// the store is fully inspectable and editable with a text editor.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/hseto/minute/internal/codec"
	"github.com/hseto/minute/internal/domain"
)

const metaSchema = 1

var areaDirs = map[domain.Area]string{
	domain.AreaActive:  "tasks",
	domain.AreaHolding: "holding",
	domain.AreaArchive: "archive",
}

// areaOrder fixes the lookup order for ID resolution across areas.
var areaOrder = []domain.Area{domain.AreaActive, domain.AreaHolding, domain.AreaArchive}

// Store implements domain.TaskStore using files under rootDir.
type Store struct {
	rootDir  string
	lockPath string
	clock    domain.Clock
	logger   domain.Logger
}

// New creates a Store rooted at rootDir (typically .minute). logger may be
// nil; skipped unreadable files are then silent.
func New(rootDir string, clock domain.Clock, logger domain.Logger) *Store {
	return &Store{
		rootDir:  rootDir,
		lockPath: filepath.Join(rootDir, ".lock"),
		clock:    clock,
		logger:   logger,
	}
}

// Get retrieves a record by ID from any area. Returns nil if not found.
func (s *Store) Get(id string) (*domain.TaskRecord, error) {
	var rec *domain.TaskRecord
	err := s.withLock(syscall.LOCK_SH, func() error {
		r, _, err := s.readRecord(id)
		rec = r
		return err
	})
	return rec, err
}

// List retrieves records matching the filter. Files that fail to parse are
// skipped, with a warning, so one corrupt record never hides the rest.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	var recs []*domain.TaskRecord
	err := s.withLock(syscall.LOCK_SH, func() error {
		areas := areaOrder
		if filter.Area != "" {
			areas = []domain.Area{filter.Area}
		}
		for _, area := range areas {
			ids, err := s.listIDs(area)
			if err != nil {
				return err
			}
			for _, id := range ids {
				rec, err := s.readFromArea(id, area)
				if err != nil {
					if s.logger != nil {
						s.logger.Warn(id, "store", fmt.Sprintf("skipping unreadable record in %s: %v", areaDirs[area], err))
					}
					continue
				}
				if rec == nil {
					continue
				}
				if matches(rec, filter) {
					recs = append(recs, rec)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(recs, func(a, b *domain.TaskRecord) int {
		return strings.Compare(a.ID, b.ID)
	})
	return recs, nil
}

// Put creates or replaces a record. An existing record keeps its area; a
// new record lands in the area the record claims, defaulting to active.
func (s *Store) Put(rec *domain.TaskRecord) error {
	return s.withLock(syscall.LOCK_EX, func() error {
		if rec == nil {
			return errors.New("record is nil")
		}
		existing, area, err := s.readRecord(rec.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			area = rec.Area
			if area == "" {
				area = domain.AreaActive
			}
		}
		return s.writeRecord(rec, area)
	})
}

// Patch applies field-level updates to an existing record.
func (s *Store) Patch(id string, patch domain.FieldPatch) (*domain.TaskRecord, error) {
	var out *domain.TaskRecord
	err := s.withLock(syscall.LOCK_EX, func() error {
		rec, area, err := s.readRecord(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		updated := patch.Apply(rec, domain.Today(s.clock))
		if err := s.writeRecord(updated, area); err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

// Move relocates a record's file to another area directory.
func (s *Store) Move(id string, area domain.Area) error {
	return s.withLock(syscall.LOCK_EX, func() error {
		rec, current, err := s.readRecord(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
		}
		if current == area {
			return nil
		}
		from := s.recordPath(id, current)
		to := s.recordPath(id, area)
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("move record: %w", err)
		}
		return nil
	})
}

// NextID allocates the next TASK-NNN identifier.
func (s *Store) NextID() (string, error) {
	var id string
	err := s.withLock(syscall.LOCK_EX, func() error {
		meta, err := s.readMeta()
		if err != nil {
			return err
		}
		id = formatID(meta.NextID)
		meta.NextID++
		return s.writeMeta(meta)
	})
	return id, err
}

// IsInitialized checks if the store has been initialized.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.metaPath())
	return err == nil
}

// Initialize creates the store layout and repairs next_id when existing
// record files have outrun the counter.
func (s *Store) Initialize() error {
	return s.withLock(syscall.LOCK_EX, func() error {
		for _, dir := range areaDirs {
			if err := os.MkdirAll(filepath.Join(s.rootDir, dir), 0o750); err != nil {
				return fmt.Errorf("create area dir: %w", err)
			}
		}

		meta, err := s.readMeta()
		if err != nil {
			if !errors.Is(err, domain.ErrNotInitialized) {
				return err
			}
			meta = storeMeta{Schema: metaSchema, NextID: 1}
		}

		minNext, err := s.minNextID()
		if err != nil {
			return err
		}
		if meta.NextID < minNext {
			meta.NextID = minNext
		}
		return s.writeMeta(meta)
	})
}

var _ domain.TaskStore = (*Store)(nil)
var _ domain.StoreInitializer = (*Store)(nil)

type storeMetaPayload struct {
	Schema *int `json:"schema"`
	NextID *int `json:"next_id"`
}

type storeMeta struct {
	Schema int
	NextID int
}

func (s *Store) metaPath() string {
	return filepath.Join(s.rootDir, "meta.json")
}

func (s *Store) recordPath(id string, area domain.Area) string {
	return filepath.Join(s.rootDir, areaDirs[area], id+".md")
}

func (s *Store) withLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(s.rootDir, 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
		_ = lock.Close()
	}()

	return fn()
}

func (s *Store) ensureInitialized() error {
	_, err := s.readMeta()
	return err
}

func (s *Store) readMeta() (storeMeta, error) {
	content, err := os.ReadFile(s.metaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return storeMeta{}, domain.ErrNotInitialized
		}
		return storeMeta{}, fmt.Errorf("read store meta: %w", err)
	}

	var payload storeMetaPayload
	if err := decodeJSONStrict(content, &payload); err != nil {
		return storeMeta{}, fmt.Errorf("parse store meta: %w", err)
	}
	if payload.Schema == nil || payload.NextID == nil {
		return storeMeta{}, errors.New("store meta missing required fields")
	}
	if *payload.Schema != metaSchema {
		return storeMeta{}, fmt.Errorf("store meta schema mismatch: %d", *payload.Schema)
	}
	if *payload.NextID < 1 {
		return storeMeta{}, errors.New("store meta next_id must be positive")
	}

	return storeMeta{Schema: *payload.Schema, NextID: *payload.NextID}, nil
}

func (s *Store) writeMeta(meta storeMeta) error {
	payload := storeMetaPayload{Schema: &meta.Schema, NextID: &meta.NextID}
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store meta: %w", err)
	}
	return writeAtomic(s.metaPath(), content, 0o644)
}

// minNextID scans every area for the highest numbered record file.
func (s *Store) minNextID() (int, error) {
	max := 0
	for _, area := range areaOrder {
		ids, err := s.listIDs(area)
		if err != nil {
			return 0, err
		}
		for _, id := range ids {
			if n, ok := parseID(id); ok && n > max {
				max = n
			}
		}
	}
	return max + 1, nil
}

func (s *Store) listIDs(area domain.Area) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.rootDir, areaDirs[area]))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read area dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		if _, ok := parseID(id); !ok {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// readRecord resolves id across areas in fixed order.
func (s *Store) readRecord(id string) (*domain.TaskRecord, domain.Area, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, "", err
	}
	for _, area := range areaOrder {
		rec, err := s.readFromArea(id, area)
		if err != nil {
			return nil, "", err
		}
		if rec != nil {
			return rec, area, nil
		}
	}
	return nil, "", nil
}

// readFromArea decodes one record file. The full parser is primary; when
// the text defeats it, the minimal line parser gets a turn before the file
// is declared unreadable.
func (s *Store) readFromArea(id string, area domain.Area) (*domain.TaskRecord, error) {
	content, err := os.ReadFile(s.recordPath(id, area))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	rec, err := codec.Decode(string(content))
	if err != nil {
		var parseErr *codec.ParseError
		if errors.As(err, &parseErr) {
			rec, err = codec.DecodeFallback(string(content))
		}
		if err != nil {
			return nil, fmt.Errorf("parse record %s: %w", id, err)
		}
	}
	rec.Area = area
	return rec, nil
}

func (s *Store) writeRecord(rec *domain.TaskRecord, area domain.Area) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	content, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return writeAtomic(s.recordPath(rec.ID, area), content, 0o644)
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

func formatID(n int) string {
	return fmt.Sprintf("TASK-%03d", n)
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

func decodeJSONStrict(content []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing content")
	}
	return nil
}

func writeAtomic(path string, content []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

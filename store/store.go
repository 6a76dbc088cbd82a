package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"albumbot/model"
)

// ErrNotFound is returned when no record with the requested tag exists.
var ErrNotFound = errors.New("record not found")

// RecordStore defines the ledger operations used by the conversation engine.
type RecordStore interface {
	// EnsureUser creates an empty record list for the user if one does not
	// exist yet. Reports whether the user was newly created.
	EnsureUser(userID string) (bool, error)

	// Append adds a record to the user's list, assigning the next
	// sequential tag, and returns the assigned tag.
	Append(userID string, rec *model.Record) (int, error)

	// Get returns the record with the given tag.
	Get(userID string, tag int) (*model.Record, error)

	// Update applies fn to the record with the given tag and persists the
	// result. If fn returns an error nothing is persisted.
	Update(userID string, tag int, fn func(*model.Record) error) (*model.Record, error)

	// Records returns a copy of the user's record list.
	Records(userID string) []*model.Record

	// Snapshot returns a deep copy of the whole ledger.
	Snapshot() model.Ledger
}

// FileStore keeps the ledger in memory and rewrites the whole backing file
// on every mutation. There is no partial write: readers of the file always
// see a fully formed previous version. Concurrent processes are not
// coordinated; the last writer wins.
type FileStore struct {
	path string

	mu     sync.Mutex
	ledger model.Ledger
}

// Open loads the ledger from path. If the file does not exist an empty
// ledger file is created, parent directories included. Any other I/O error
// is returned as-is; callers treat it as fatal.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, ledger: model.Ledger{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.ledger); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	if s.ledger == nil {
		s.ledger = model.Ledger{}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// EnsureUser creates an empty record list for the user if one does not exist.
func (s *FileStore) EnsureUser(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledger[userID]; ok {
		return false, nil
	}
	s.ledger[userID] = []*model.Record{}
	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// Append adds a record to the user's list and assigns the next sequential
// tag. The tag equals the pre-insertion list length and is never recomputed
// afterwards.
func (s *FileStore) Append(userID string, rec *model.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Tag = len(s.ledger[userID])
	s.ledger[userID] = append(s.ledger[userID], rec)
	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return rec.Tag, nil
}

// Get returns a copy of the record with the given tag.
func (s *FileStore) Get(userID string, tag int) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(userID, tag)
	if rec == nil {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.Genres = append([]string(nil), rec.Genres...)
	return &cp, nil
}

// Update applies fn to the record with the given tag and persists the whole
// ledger.
func (s *FileStore) Update(userID string, tag int, fn func(*model.Record) error) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findLocked(userID, tag)
	if rec == nil {
		return nil, ErrNotFound
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	cp := *rec
	cp.Genres = append([]string(nil), rec.Genres...)
	return &cp, nil
}

// Records returns a copy of the user's record list.
func (s *FileStore) Records(userID string) []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*model.Record, 0, len(s.ledger[userID]))
	for _, rec := range s.ledger[userID] {
		cp := *rec
		cp.Genres = append([]string(nil), rec.Genres...)
		records = append(records, &cp)
	}
	return records
}

// Snapshot returns a deep copy of the whole ledger.
func (s *FileStore) Snapshot() model.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.Ledger, len(s.ledger))
	for userID, records := range s.ledger {
		cps := make([]*model.Record, 0, len(records))
		for _, rec := range records {
			cp := *rec
			cp.Genres = append([]string(nil), rec.Genres...)
			cps = append(cps, &cp)
		}
		out[userID] = cps
	}
	return out
}

// findLocked resolves a record by its pinned tag, not by list position.
func (s *FileStore) findLocked(userID string, tag int) *model.Record {
	for _, rec := range s.ledger[userID] {
		if rec.Tag == tag {
			return rec
		}
	}
	return nil
}

// persistLocked serializes the full ledger to the backing file. The write
// goes through a temp file and rename so a crash mid-write leaves the
// previous version intact.
func (s *FileStore) persistLocked() error {
	data, err := json.Marshal(s.ledger)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

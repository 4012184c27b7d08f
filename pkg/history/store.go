package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrClosed is returned by every operation on a closed store
var ErrClosed = errors.New("history store is closed")

// DefaultPath is where the CLI keeps its history unless told otherwise
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "coerce", "history.db")
}

// Store records evaluations in a bolt database. The database is opened per
// operation so that a REPL and a server can share one file.
type Store struct {
	path   string
	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

// Open prepares the store at path, creating its directory and database
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create history directory for %s", path)
	}
	s := &Store{path: path, now: time.Now}
	db, err := s.openDB()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history %s", path)
	}
	if err := db.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}

// Path returns the database file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) openDB() (*bolthold.Store, error) {
	return bolthold.Open(s.path, 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
}

func (s *Store) withDB(fn func(db *bolthold.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	db, err := s.openDB()
	if err != nil {
		return errors.Wrapf(err, "failed to open history %s", s.path)
	}
	defer db.Close()
	return fn(db)
}

// Append stores entry and fills in its ID and CreatedAt
func (s *Store) Append(entry *Entry) error {
	return s.withDB(func(db *bolthold.Store) error {
		if entry.CreatedAt == 0 {
			entry.CreatedAt = s.now().UnixNano()
		}
		if err := db.Insert(bolthold.NextSequence(), entry); err != nil {
			return errors.Wrap(err, "failed to insert history entry")
		}
		// write back id to db
		if err := db.Update(entry.ID, entry); err != nil {
			return errors.Wrap(err, "failed to update history entry")
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first. A limit below one
// returns everything.
func (s *Store) Recent(limit int) ([]*Entry, error) {
	var entries []*Entry
	err := s.withDB(func(db *bolthold.Store) error {
		query := (&bolthold.Query{}).SortBy("CreatedAt", "ID").Reverse()
		if limit > 0 {
			query = query.Limit(limit)
		}
		return errors.Wrap(db.Find(&entries, query), "failed to read history")
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune deletes entries older than maxAge and reports how many went
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	deleted := 0
	err := s.withDB(func(db *bolthold.Store) error {
		var entries []*Entry
		if err := db.Find(&entries, bolthold.Where("CreatedAt").Lt(s.now().Add(-maxAge).UnixNano())); err != nil {
			return errors.Wrap(err, "failed to find old history entries")
		}
		for _, entry := range entries {
			if err := db.Delete(entry.ID, entry); err != nil {
				return errors.Wrapf(err, "failed to delete history entry %d", entry.ID)
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// Clear removes every entry and reports how many there were
func (s *Store) Clear() (int, error) {
	deleted := 0
	err := s.withDB(func(db *bolthold.Store) error {
		n, err := db.Count(&Entry{}, nil)
		if err != nil {
			return errors.Wrap(err, "failed to count history entries")
		}
		deleted = int(n)
		return errors.Wrap(db.DeleteMatching(&Entry{}, nil), "failed to clear history")
	})
	return deleted, err
}

// Close marks the store closed. It is safe to call more than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

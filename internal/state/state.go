// Package state persists static export bookkeeping in a bbolt database:
// the fingerprint of every page written and a summary of the last run.
package state

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.folio/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second

	// dbFile is the database name inside the state directory.
	dbFile = "state.db"
)

var lastRunKey = []byte("last_run")

// Buckets are per export directory, so one database can track several
// output trees.
func pagesBucket(target string) []byte {
	return []byte("export:" + target + ":pages")
}

func metaBucket(target string) []byte {
	return []byte("export:" + target + ":meta")
}

// PageRecord is the last exported version of one output file.
type PageRecord struct {
	Path       string `json:"path"`
	Hash       string `json:"hash"`
	Size       int64  `json:"size"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportRun summarises one export.
type ExportRun struct {
	Time      int64  `json:"time"`
	Origin    string `json:"origin"`
	Written   int    `json:"written"`
	Unchanged int    `json:"unchanged"`
	Removed   int    `json:"removed"`
}

// State wraps a bbolt database for export bookkeeping.
type State struct {
	db *bolt.DB
}

// Load opens dir/state.db, creating it if it does not exist.
func Load(dir string) (*State, error) {
	return LoadAt(filepath.Join(dir, dbFile))
}

// LoadAt opens a state database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	return &State{db: db}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// InitTarget ensures the buckets for an export directory exist. Call it
// once before recording pages.
func (s *State) InitTarget(target string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(pagesBucket(target)); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(metaBucket(target))

		return err
	})
}

// GetPage returns the record for an output path, or nil if not found.
func (s *State) GetPage(target, path string) (*PageRecord, error) {
	var rec *PageRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket(target))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(path))
		if v == nil {
			return nil
		}

		rec = &PageRecord{}

		return json.Unmarshal(v, rec)
	})

	return rec, err
}

// SetPage persists the record for an output path.
func (s *State) SetPage(target string, rec PageRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket(target))
		if b == nil {
			return fmt.Errorf("pages bucket not initialized for %s", target)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put([]byte(rec.Path), data)
	})
}

// DeletePage removes the record for an output path.
func (s *State) DeletePage(target, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket(target))
		if b == nil {
			return nil
		}

		return b.Delete([]byte(path))
	})
}

// AllPages returns every page record for an export directory.
func (s *State) AllPages(target string) (map[string]PageRecord, error) {
	result := make(map[string]PageRecord)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(pagesBucket(target))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var rec PageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			result[string(k)] = rec

			return nil
		})
	})

	return result, err
}

// LastRun returns the summary of the previous export, or nil.
func (s *State) LastRun(target string) (*ExportRun, error) {
	var run *ExportRun

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket(target))
		if b == nil {
			return nil
		}

		v := b.Get(lastRunKey)
		if v == nil {
			return nil
		}

		run = &ExportRun{}

		return json.Unmarshal(v, run)
	})

	return run, err
}

// SetLastRun records the summary of the export that just finished.
func (s *State) SetLastRun(target string, run ExportRun) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(metaBucket(target))
		if err != nil {
			return err
		}

		data, err := json.Marshal(run)
		if err != nil {
			return err
		}

		return b.Put(lastRunKey, data)
	})
}

package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
)

// CatalogStore implements domain.CatalogStore using BoltDB.
// Entries live in one bucket keyed by big-endian ID (so cursor scans walk
// the catalog in ID order); cache bookkeeping lives in a second bucket
// keyed by logical cache key.
type CatalogStore struct {
	db *bolt.DB
}

// Open opens (or creates) the catalog database under dir.
func Open(dir string) (*CatalogStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketEntries, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db}, nil
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReplaceEntries swaps the full entry set in a single write transaction and
// upserts the version metadata under both logical cache keys. Readers run in
// their own view transactions, so they see either the old catalog or the new
// one, never the gap in between. A duplicate ID within entries is
// last-write-wins; callers deduplicate upstream.
func (s *CatalogStore) ReplaceEntries(entries []domain.Entry, version string, now time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			data, err := marshalEntry(entry)
			if err != nil {
				return err
			}
			if err := b.Put(entryKey(entry.ID), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		for _, key := range []string{domain.CacheKeyPlaylist, domain.CacheKeyPlaylistVersion} {
			row := domain.CacheMetadata{Key: key, LastUpdated: now, DataVersion: version}
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if err := meta.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCache, err)
	}
	return nil
}

// Metadata returns the bookkeeping row for a logical cache key.
func (s *CatalogStore) Metadata(key string) (domain.CacheMetadata, bool) {
	var row domain.CacheMetadata
	found := false

	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get([]byte(key))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &row); err != nil {
			return nil
		}
		found = true
		return nil
	})

	return row, found
}

// Count returns the total number of cached entries.
func (s *CatalogStore) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCache, err)
	}
	return count, nil
}

// storedEntry re-adds MainCategory to the persisted form. The wire format
// keeps the category on the parent, so the domain entity excludes it from
// JSON; the store must not.
type storedEntry struct {
	domain.Entry
	MainCategory string `json:"mainCategory"`
}

func entryKey(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func marshalEntry(e domain.Entry) ([]byte, error) {
	return json.Marshal(storedEntry{Entry: e, MainCategory: e.MainCategory})
}

func unmarshalEntry(data []byte) (domain.Entry, error) {
	var se storedEntry
	if err := json.Unmarshal(data, &se); err != nil {
		return domain.Entry{}, err
	}
	entry := se.Entry
	entry.MainCategory = se.MainCategory
	return entry, nil
}

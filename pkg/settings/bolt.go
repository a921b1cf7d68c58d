package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore persists pages in a bbolt file: one bucket per journal, one key
// per page, JSON values.
type BoltStore struct {
	db *bolt.DB
}

type boltRecord struct {
	Values Record `json:"values"`
	Meta   Meta   `json:"meta"`
}

// OpenBolt opens (or creates) the settings database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("settings: open bolt %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// NewBoltStore wraps an already opened database.
func NewBoltStore(db *bolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(ctx context.Context, ref Ref) (Record, Meta, bool, error) {
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Meta{}, false, err
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ref.Journal))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(ref.Page)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, Meta{}, false, err
	}

	var rec boltRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, Meta{}, false, fmt.Errorf("settings: decode %s/%s: %w", ref.Journal, ref.Page, err)
	}
	if rec.Values == nil {
		rec.Values = Record{}
	}
	return rec.Values, rec.Meta, true, nil
}

func (s *BoltStore) Save(ctx context.Context, ref Ref, values Record, meta Meta) (Meta, error) {
	if _, err := ref.Identifier(); err != nil {
		return Meta{}, err
	}
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	raw, err := json.Marshal(boltRecord{Values: values, Meta: meta})
	if err != nil {
		return Meta{}, fmt.Errorf("settings: encode %s/%s: %w", ref.Journal, ref.Page, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(ref.Journal))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(ref.Page), raw)
	})
	if err != nil {
		return Meta{}, err
	}
	return cloneMeta(meta), nil
}

// Pages lists the stored page names of journal.
func (s *BoltStore) Pages(journal string) ([]string, error) {
	var pages []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(journal))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			pages = append(pages, string(k))
			return nil
		})
	})
	return pages, err
}

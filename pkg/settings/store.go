package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrETagMismatch = errors.New("settings: etag mismatch")
	ErrInvalidRef   = errors.New("settings: journal and page are required")
)

// Ref identifies one stored page.
type Ref struct {
	Journal string
	Page    string
}

// Identifier returns the canonical storage key "journal/page".
func (r Ref) Identifier() (string, error) {
	journal := strings.TrimSpace(r.Journal)
	page := strings.TrimSpace(r.Page)
	if journal == "" || page == "" {
		return "", fmt.Errorf("%w: %+v", ErrInvalidRef, r)
	}
	return journal + "/" + page, nil
}

// Meta is storage-owned metadata for provenance and optimistic concurrency.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves whole pages.
type Store interface {
	Load(ctx context.Context, ref Ref) (values Record, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, values Record, meta Meta) (Meta, error)
}

// MemoryStore keeps pages in process, keyed by Ref.Identifier.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	values Record
	meta   Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (Record, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return record.values.Clone(), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, values Record, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	s.mu.Lock()
	s.records[key] = memoryRecord{values: values.Clone(), meta: cloneMeta(meta)}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

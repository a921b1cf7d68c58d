// Package memory provides an in-process scenesync.ObjectStore backed by
// hashicorp/go-memdb.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"

	"github.com/goliatone/go-scenesync"
)

const (
	tableObject = "object"

	indexID    = "id"
	indexOrder = "order"
	indexTag   = "tag"
)

var (
	// ErrNotFound is returned when an id does not exist in the scene.
	ErrNotFound = errors.New("memory: object not found")
	// ErrCollectionMismatch is returned when an id is deleted through the
	// wrong collection.
	ErrCollectionMismatch = errors.New("memory: collection mismatch")
)

type record struct {
	ID     string
	Scene  string
	Seq    uint64
	Tag    string
	Object scenesync.ManagedObject
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableObject: {
			Name: tableObject,
			Indexes: map[string]*memdb.IndexSchema{
				indexID: {
					Name:    indexID,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				indexOrder: {
					Name:   indexOrder,
					Unique: true,
					Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.StringFieldIndex{Field: "Scene"},
						&memdb.UintFieldIndex{Field: "Seq"},
					}},
				},
				indexTag: {
					Name: indexTag,
					Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.StringFieldIndex{Field: "Scene"},
						&memdb.StringFieldIndex{Field: "Tag"},
					}},
				},
			},
		},
	},
}

// Store keeps managed objects per scene in insertion order.
type Store struct {
	db  *memdb.MemDB
	mu  sync.Mutex
	seq uint64
}

var _ scenesync.ObjectStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		panic(fmt.Sprintf("memory: invalid schema: %v", err))
	}
	return &Store{db: db}
}

// Seed inserts objects verbatim, keeping their ids when set. It exists to
// reproduce host states such as duplicated tags.
func (s *Store) Seed(scene string, objects ...scenesync.ManagedObject) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.db.Txn(true)
	defer txn.Abort()

	ids := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.ID == "" {
			obj.ID = uuid.NewString()
		}
		if obj.Collection == "" {
			obj.Collection = obj.Kind.Collection()
		}
		s.seq++
		if err := txn.Insert(tableObject, &record{ID: obj.ID, Scene: scene, Seq: s.seq, Tag: string(obj.Tag), Object: obj}); err != nil {
			panic(fmt.Sprintf("memory: seed: %v", err))
		}
		ids = append(ids, obj.ID)
	}
	txn.Commit()
	return ids
}

// Query returns the first inserted object carrying tag.
func (s *Store) Query(ctx context.Context, scene string, tag scenesync.Tag) (scenesync.ManagedObject, bool, error) {
	if err := ctx.Err(); err != nil {
		return scenesync.ManagedObject{}, false, err
	}
	txn := s.db.Txn(false)
	it, err := txn.Get(tableObject, indexTag, scene, string(tag))
	if err != nil {
		return scenesync.ManagedObject{}, false, err
	}
	var first *record
	for raw := it.Next(); raw != nil; raw = it.Next() {
		r := raw.(*record)
		if first == nil || r.Seq < first.Seq {
			first = r
		}
	}
	if first == nil {
		return scenesync.ManagedObject{}, false, nil
	}
	return clone(first.Object), true, nil
}

// List returns the scene objects matching filter in insertion order.
func (s *Store) List(ctx context.Context, scene string, filter scenesync.Filter) ([]scenesync.ManagedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	it, err := txn.Get(tableObject, indexOrder+"_prefix", scene)
	if err != nil {
		return nil, err
	}
	var out []scenesync.ManagedObject
	for raw := it.Next(); raw != nil; raw = it.Next() {
		r := raw.(*record)
		// the prefix index also yields scenes sharing this name as a prefix
		if r.Scene != scene {
			continue
		}
		if filter.Match(r.Object) {
			out = append(out, clone(r.Object))
		}
	}
	return out, nil
}

// CreateMany inserts items into collection and returns their new ids.
func (s *Store) CreateMany(ctx context.Context, scene string, collection scenesync.Collection, items []scenesync.DisplayItem) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.db.Txn(true)
	defer txn.Abort()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		obj := fromItem(uuid.NewString(), collection, item)
		s.seq++
		if err := txn.Insert(tableObject, &record{ID: obj.ID, Scene: scene, Seq: s.seq, Tag: string(obj.Tag), Object: obj}); err != nil {
			return nil, err
		}
		ids = append(ids, obj.ID)
	}
	txn.Commit()
	return ids, nil
}

// UpdateOne overwrites the visual fields and tag of the object with id.
func (s *Store) UpdateOne(ctx context.Context, scene string, id string, patch scenesync.DisplayItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.db.Txn(true)
	defer txn.Abort()

	r, err := lookup(txn, scene, id)
	if err != nil {
		return err
	}
	obj := fromItem(id, r.Object.Collection, patch)
	if err := txn.Insert(tableObject, &record{ID: id, Scene: scene, Seq: r.Seq, Tag: string(obj.Tag), Object: obj}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// DeleteMany removes ids from collection. The batch is atomic: an unknown id
// or a collection mismatch aborts it.
func (s *Store) DeleteMany(ctx context.Context, scene string, collection scenesync.Collection, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.db.Txn(true)
	defer txn.Abort()

	for _, id := range ids {
		r, err := lookup(txn, scene, id)
		if err != nil {
			return err
		}
		if r.Object.Collection != collection {
			return fmt.Errorf("%w: %s is in %s", ErrCollectionMismatch, id, r.Object.Collection)
		}
		if err := txn.Delete(tableObject, r); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

// Len returns the number of objects in scene.
func (s *Store) Len(scene string) int {
	objs, _ := s.List(context.Background(), scene, scenesync.Filter{})
	return len(objs)
}

func lookup(txn *memdb.Txn, scene, id string) (*record, error) {
	raw, err := txn.First(tableObject, indexID, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r := raw.(*record)
	if r.Scene != scene {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

func fromItem(id string, collection scenesync.Collection, item scenesync.DisplayItem) scenesync.ManagedObject {
	return clone(scenesync.ManagedObject{
		ID:          id,
		Collection:  collection,
		Tag:         item.Tag,
		Kind:        item.Kind,
		Position:    item.Position,
		Size:        item.Size,
		Text:        item.Text,
		Image:       item.Image,
		Style:       item.Style,
		Annotations: item.Annotations,
	})
}

func clone(obj scenesync.ManagedObject) scenesync.ManagedObject {
	if len(obj.Annotations) > 0 {
		annotations := make(map[string]string, len(obj.Annotations))
		for k, v := range obj.Annotations {
			annotations[k] = v
		}
		obj.Annotations = annotations
	} else {
		obj.Annotations = nil
	}
	return obj
}

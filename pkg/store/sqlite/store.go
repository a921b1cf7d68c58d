// Package sqlite provides a scenesync.ObjectStore persisted in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/internal/sqlitemigrate"
	"github.com/goliatone/go-scenesync/pkg/store/sqlite/migrations"
)

var (
	// ErrNotFound is returned when an id does not exist in the scene.
	ErrNotFound = errors.New("sqlite: object not found")
	// ErrCollectionMismatch is returned when an id is deleted through the
	// wrong collection.
	ErrCollectionMismatch = errors.New("sqlite: collection mismatch")
)

const selectColumns = `id, collection, tag, kind, x, y, width, height, text, image, style_json, annotations_json`

// Store keeps managed objects in a SQLite database. Insertion order is the
// autoincrement sequence and survives updates.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ scenesync.ObjectStore = (*Store)(nil)

// Open opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Query returns the first inserted object carrying tag.
func (s *Store) Query(ctx context.Context, scene string, tag scenesync.Tag) (scenesync.ManagedObject, bool, error) {
	if err := ctx.Err(); err != nil {
		return scenesync.ManagedObject{}, false, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM objects WHERE scene = ? AND tag = ? ORDER BY seq LIMIT 1`,
		scene, string(tag),
	)
	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return scenesync.ManagedObject{}, false, nil
	}
	if err != nil {
		return scenesync.ManagedObject{}, false, fmt.Errorf("sqlite: query %s: %w", tag, err)
	}
	return obj, true, nil
}

// List returns the scene objects matching filter in insertion order.
func (s *Store) List(ctx context.Context, scene string, filter scenesync.Filter) ([]scenesync.ManagedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := `SELECT ` + selectColumns + ` FROM objects WHERE scene = ?`
	args := []any{scene}
	if filter.Tag != "" {
		query += ` AND tag = ?`
		args = append(args, string(filter.Tag))
	}
	if filter.TagPrefix != "" {
		prefix := string(filter.TagPrefix) + "/"
		query += ` AND (tag = ? OR substr(tag, 1, ?) = ?)`
		args = append(args, string(filter.TagPrefix), len(prefix), prefix)
	}
	if filter.Collection != "" {
		query += ` AND collection = ?`
		args = append(args, string(filter.Collection))
	}
	query += ` ORDER BY seq`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var out []scenesync.ManagedObject
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	return out, nil
}

// CreateMany inserts items into collection in one transaction.
func (s *Store) CreateMany(ctx context.Context, scene string, collection scenesync.Collection, items []scenesync.DisplayItem) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		style, annotations, err := encodeVisuals(item)
		if err != nil {
			return nil, err
		}
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
INSERT INTO objects (
	id, scene, collection, tag, kind, x, y, width, height, text, image, style_json, annotations_json, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, scene, string(collection), string(item.Tag), string(item.Kind),
			item.Position.X, item.Position.Y, item.Size.Width, item.Size.Height,
			item.Text, item.Image, style, annotations, s.now().UTC().UnixMilli(),
		); err != nil {
			return nil, fmt.Errorf("sqlite: insert %s: %w", item.Tag, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return ids, nil
}

// UpdateOne overwrites the visual fields and tag of the object with id.
func (s *Store) UpdateOne(ctx context.Context, scene string, id string, patch scenesync.DisplayItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	style, annotations, err := encodeVisuals(patch)
	if err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE objects SET
	tag = ?, kind = ?, x = ?, y = ?, width = ?, height = ?, text = ?, image = ?,
	style_json = ?, annotations_json = ?, updated_at = ?
WHERE scene = ? AND id = ?`,
		string(patch.Tag), string(patch.Kind),
		patch.Position.X, patch.Position.Y, patch.Size.Width, patch.Size.Height,
		patch.Text, patch.Image, style, annotations, s.now().UTC().UnixMilli(),
		scene, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteMany removes ids from collection atomically.
func (s *Store) DeleteMany(ctx context.Context, scene string, collection scenesync.Collection, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		var got string
		err := tx.QueryRowContext(ctx, `SELECT collection FROM objects WHERE scene = ? AND id = ?`, scene, id).Scan(&got)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("sqlite: lookup %s: %w", id, err)
		}
		if got != string(collection) {
			return fmt.Errorf("%w: %s is in %s", ErrCollectionMismatch, id, got)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE scene = ? AND id = ?`, scene, id); err != nil {
			return fmt.Errorf("sqlite: delete %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(row scanner) (scenesync.ManagedObject, error) {
	var (
		obj                        scenesync.ManagedObject
		collection, tag, kind      string
		styleJSON, annotationsJSON string
	)
	if err := row.Scan(
		&obj.ID, &collection, &tag, &kind,
		&obj.Position.X, &obj.Position.Y, &obj.Size.Width, &obj.Size.Height,
		&obj.Text, &obj.Image, &styleJSON, &annotationsJSON,
	); err != nil {
		return scenesync.ManagedObject{}, err
	}
	obj.Collection = scenesync.Collection(collection)
	obj.Tag = scenesync.Tag(tag)
	obj.Kind = scenesync.Kind(kind)
	if err := json.Unmarshal([]byte(styleJSON), &obj.Style); err != nil {
		return scenesync.ManagedObject{}, fmt.Errorf("decode style: %w", err)
	}
	if err := json.Unmarshal([]byte(annotationsJSON), &obj.Annotations); err != nil {
		return scenesync.ManagedObject{}, fmt.Errorf("decode annotations: %w", err)
	}
	if len(obj.Annotations) == 0 {
		obj.Annotations = nil
	}
	return obj, nil
}

func encodeVisuals(item scenesync.DisplayItem) (string, string, error) {
	style, err := json.Marshal(item.Style)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encode style: %w", err)
	}
	annotations := item.Annotations
	if annotations == nil {
		annotations = map[string]string{}
	}
	encoded, err := json.Marshal(annotations)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encode annotations: %w", err)
	}
	return string(style), string(encoded), nil
}

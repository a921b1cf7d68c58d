package settings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/containerd/log"
	"github.com/google/uuid"
)

// Mutator edits a page record in place.
type Mutator func(Record) error

// Resolver loads, layers, validates and saves pages of one journal.
type Resolver struct {
	Store     Store
	Journal   string
	Validator *Validator
	Now       func() time.Time
}

// NewResolver builds a resolver over store for journal.
func NewResolver(store Store, journal string) *Resolver {
	return &Resolver{Store: store, Journal: journal, Validator: NewValidator(), Now: time.Now}
}

func (r *Resolver) ref(page Page) Ref {
	return Ref{Journal: r.Journal, Page: page.Name}
}

func (r *Resolver) validator() *Validator {
	if r.Validator == nil {
		r.Validator = NewValidator()
	}
	return r.Validator
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) check(page Page) error {
	if r == nil || r.Store == nil {
		return errors.New("settings: store is required")
	}
	return page.Validate()
}

// Resolve merges override > stored page > page defaults. A stored page that
// fails validation is skipped with a warning.
func (r *Resolver) Resolve(ctx context.Context, page Page, override Record) (*Resolved, error) {
	if err := r.check(page); err != nil {
		return nil, err
	}
	ref := r.ref(page)
	stored, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("settings: load %s/%s: %w", ref.Journal, ref.Page, err)
	}

	layers := []Layer{NewLayer(ScopeDefaults, page.Defaults(), "")}
	if ok {
		if verr := r.validator().Validate(page, stored); verr != nil {
			log.G(ctx).WithError(verr).WithFields(log.Fields{
				"journal": ref.Journal,
				"page":    ref.Page,
			}).Warn("stored settings page is invalid, using defaults")
			meta = Meta{}
		} else {
			layers = append(layers, NewLayer(ScopeStored, stored, meta.SnapshotID))
		}
	}
	if len(override) > 0 {
		layers = append(layers, NewLayer(ScopeOverride, override, ""))
	}

	stack, err := NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("settings: stack: %w", err)
	}
	resolved := stack.Merge()
	resolved.Page = page
	resolved.Meta = meta
	return resolved, nil
}

// Ensure creates the page filled with its defaults when it is missing and
// returns the stored record.
func (r *Resolver) Ensure(ctx context.Context, page Page) (Record, Meta, error) {
	if err := r.check(page); err != nil {
		return nil, Meta{}, err
	}
	ref := r.ref(page)
	stored, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("settings: load %s/%s: %w", ref.Journal, ref.Page, err)
	}
	if ok {
		return stored, meta, nil
	}
	values := page.Defaults()
	meta, err = r.save(ctx, page, values, Meta{})
	if err != nil {
		return nil, Meta{}, err
	}
	return values, meta, nil
}

// Save validates values wholesale and replaces the stored page. A non-empty
// expected.ETag must match the stored ETag.
func (r *Resolver) Save(ctx context.Context, page Page, values Record, expected Meta) (Meta, error) {
	if err := r.check(page); err != nil {
		return Meta{}, err
	}
	if err := r.validator().Validate(page, values); err != nil {
		return Meta{}, err
	}
	ref := r.ref(page)
	_, current, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return Meta{}, fmt.Errorf("settings: load %s/%s: %w", ref.Journal, ref.Page, err)
	}
	if ok {
		if err := checkETag(expected, current); err != nil {
			return current, err
		}
	}
	return r.save(ctx, page, values, mergeMeta(current, Meta{Extra: expected.Extra}))
}

// Mutate loads the page (defaults when missing), applies fn, validates and
// saves. It enforces the ETag of meta the same way Save does.
func (r *Resolver) Mutate(ctx context.Context, page Page, meta Meta, fn Mutator) (Record, Meta, error) {
	if err := r.check(page); err != nil {
		return nil, Meta{}, err
	}
	if fn == nil {
		return nil, Meta{}, errors.New("settings: mutator is required")
	}
	ref := r.ref(page)
	values, loaded, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("settings: load %s/%s: %w", ref.Journal, ref.Page, err)
	}
	if !ok {
		values, loaded = page.Defaults(), Meta{}
	}
	if err := checkETag(meta, loaded); err != nil {
		return nil, loaded, err
	}
	if err := fn(values); err != nil {
		return nil, loaded, err
	}
	if err := r.validator().Validate(page, values); err != nil {
		return nil, loaded, err
	}
	saved, err := r.save(ctx, page, values, mergeMeta(loaded, Meta{Extra: meta.Extra}))
	if err != nil {
		return nil, loaded, err
	}
	return values, saved, nil
}

func (r *Resolver) save(ctx context.Context, page Page, values Record, meta Meta) (Meta, error) {
	tag, err := etag(values)
	if err != nil {
		return Meta{}, err
	}
	meta.SnapshotID = uuid.NewString()
	meta.ETag = tag
	meta.UpdatedAt = r.now()
	ref := r.ref(page)
	saved, err := r.Store.Save(ctx, ref, values, meta)
	if err != nil {
		return Meta{}, fmt.Errorf("settings: save %s/%s: %w", ref.Journal, ref.Page, err)
	}
	return saved, nil
}

func checkETag(expected, current Meta) error {
	if expected.ETag != "" && current.ETag != "" && expected.ETag != current.ETag {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected.ETag, current.ETag)
	}
	return nil
}

// etag hashes the canonical JSON of values; map keys marshal sorted.
func etag(values Record) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("settings: etag: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8]), nil
}

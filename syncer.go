package scenesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-scenesync/pkg/activity"
	"github.com/moby/locker"
)

const (
	modeTagged = "tagged"
	modeCount  = "count"
	modeClear  = "clear"
	modeApply  = "apply"
)

// Result reports what a pass changed.
type Result struct {
	Scene     string
	Group     Tag
	Created   []string
	Updated   []string
	Deleted   []string
	Unchanged int
}

// Changed reports whether the pass mutated the store.
func (r Result) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Deleted) > 0
}

// Syncer plans and applies reconciliation passes against an ObjectStore.
// Passes on the same scene are serialised within the process.
type Syncer struct {
	store   ObjectStore
	cfg     syncConfig
	emitter *activity.Emitter
	locks   *locker.Locker
}

// NewSyncer builds a Syncer over store.
func NewSyncer(store ObjectStore, opts ...Option) *Syncer {
	cfg := applyOptions(opts)
	return &Syncer{
		store:   store,
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, cfg.activityConfig),
		locks:   locker.New(),
	}
}

// Store returns the underlying object store.
func (s *Syncer) Store() ObjectStore {
	return s.store
}

// Sync makes the objects under group match desired. Objects under group that
// no desired item claims are deleted, so an empty desired list clears it.
func (s *Syncer) Sync(ctx context.Context, scene string, group Tag, desired []DisplayItem) (Result, error) {
	for _, item := range desired {
		if !item.Tag.Within(group) {
			return Result{Scene: scene, Group: group}, fmt.Errorf("%w: %q not under %q", ErrTagOutsideGroup, item.Tag, group)
		}
	}
	return s.pass(ctx, scene, group, modeTagged, func(ctx context.Context) (Plan, error) {
		existing, err := s.store.List(ctx, scene, Filter{TagPrefix: group})
		if err != nil {
			return Plan{}, wrapStoreError("list", scene, "", err)
		}
		return Reconcile(desired, existing), nil
	})
}

// SyncCount grows or shrinks the markers of pool to target.
func (s *Syncer) SyncCount(ctx context.Context, scene string, pool Pool, target int) (Result, error) {
	return s.pass(ctx, scene, pool.Tag, modeCount, func(ctx context.Context) (Plan, error) {
		existing, err := s.store.List(ctx, scene, Filter{Tag: pool.Tag, Collection: CollectionTile})
		if err != nil {
			return Plan{}, wrapStoreError("list", scene, CollectionTile, err)
		}
		return ReconcileCount(target, existing, pool).Plan(), nil
	})
}

// Clear deletes every object under group.
func (s *Syncer) Clear(ctx context.Context, scene string, group Tag) (Result, error) {
	return s.pass(ctx, scene, group, modeClear, func(ctx context.Context) (Plan, error) {
		existing, err := s.store.List(ctx, scene, Filter{TagPrefix: group})
		if err != nil {
			return Plan{}, wrapStoreError("list", scene, "", err)
		}
		return Plan{Delete: existing}, nil
	})
}

// Apply submits a precomputed plan.
func (s *Syncer) Apply(ctx context.Context, scene string, plan Plan) (Result, error) {
	return s.pass(ctx, scene, "", modeApply, func(context.Context) (Plan, error) {
		return plan, nil
	})
}

// Lookup returns the canonical object carrying tag.
func (s *Syncer) Lookup(ctx context.Context, scene string, tag Tag) (ManagedObject, bool, error) {
	obj, ok, err := s.store.Query(ctx, scene, tag)
	if err != nil {
		return ManagedObject{}, false, wrapStoreError("query", scene, "", err)
	}
	return obj, ok, nil
}

func (s *Syncer) pass(ctx context.Context, scene string, group Tag, mode string, plan func(context.Context) (Plan, error)) (res Result, err error) {
	s.locks.Lock(scene)
	defer s.locks.Unlock(scene)

	start := s.cfg.now()
	res = Result{Scene: scene, Group: group}
	var events []activity.Event
	defer func() {
		event := SyncLogEvent{
			Scene:     scene,
			Group:     group,
			Mode:      mode,
			Created:   len(res.Created),
			Updated:   len(res.Updated),
			Deleted:   len(res.Deleted),
			Unchanged: res.Unchanged,
			Duration:  s.cfg.now().Sub(start),
			Err:       err,
		}
		s.cfg.logger.LogSync(ctx, event)
		s.cfg.metrics.observe(event)
		if err == nil {
			events = append(events, passEvent(event))
		}
		if hookErr := s.emit(ctx, events); hookErr != nil && err == nil {
			err = hookErr
		}
	}()

	if err = ctx.Err(); err != nil {
		return res, err
	}
	p, err := plan(ctx)
	if err != nil {
		return res, err
	}
	events, err = s.apply(ctx, scene, p, &res)
	return res, err
}

// apply submits creates per collection, then changed updates one by one,
// then deletes per collection. It stops at the first store failure and
// returns the events for what was already applied.
func (s *Syncer) apply(ctx context.Context, scene string, plan Plan, res *Result) ([]activity.Event, error) {
	var events []activity.Event

	for _, batch := range plan.CreateBatches() {
		ids, err := s.store.CreateMany(ctx, scene, batch.Collection, batch.Items)
		if err != nil {
			return events, wrapStoreError("create", scene, batch.Collection, err)
		}
		res.Created = append(res.Created, ids...)
		for i, item := range batch.Items {
			id := ""
			if i < len(ids) {
				id = ids[i]
			}
			events = append(events, activity.BuildWidgetCreatedEvent(activity.WidgetEventInput{
				Scene:      scene,
				ObjectID:   id,
				Tag:        item.Tag.String(),
				Collection: string(batch.Collection),
			}))
		}
	}

	for _, u := range plan.Update {
		if !u.Changed() {
			res.Unchanged++
			continue
		}
		if err := s.store.UpdateOne(ctx, scene, u.Object.ID, u.Desired); err != nil {
			return events, wrapStoreError("update", scene, u.Object.Collection, err)
		}
		res.Updated = append(res.Updated, u.Object.ID)
		events = append(events, activity.BuildWidgetUpdatedEvent(activity.WidgetEventInput{
			Scene:      scene,
			ObjectID:   u.Object.ID,
			Tag:        u.Object.Tag.String(),
			Collection: string(u.Object.Collection),
			Changes:    u.Changes,
		}))
	}

	for _, batch := range plan.DeleteBatches() {
		ids := batch.IDs()
		if err := s.store.DeleteMany(ctx, scene, batch.Collection, ids); err != nil {
			return events, wrapStoreError("delete", scene, batch.Collection, err)
		}
		res.Deleted = append(res.Deleted, ids...)
		for _, obj := range batch.Objects {
			events = append(events, activity.BuildWidgetDeletedEvent(activity.WidgetEventInput{
				Scene:      scene,
				ObjectID:   obj.ID,
				Tag:        obj.Tag.String(),
				Collection: string(obj.Collection),
			}))
		}
	}
	return events, nil
}

func passEvent(event SyncLogEvent) activity.Event {
	return activity.BuildPassAppliedEvent(activity.WidgetEventInput{Scene: event.Scene}, activity.PassSummary{
		Scene:     event.Scene,
		Group:     event.Group.String(),
		Mode:      event.Mode,
		Created:   event.Created,
		Updated:   event.Updated,
		Deleted:   event.Deleted,
		Unchanged: event.Unchanged,
		Duration:  event.Duration,
	})
}

// emit forwards events to the activity hooks. Hook failures never undo store
// changes; they are reported as ErrActivity once the pass is over.
func (s *Syncer) emit(ctx context.Context, events []activity.Event) error {
	if !s.emitter.Enabled() || len(events) == 0 {
		return nil
	}
	var errs []error
	for _, event := range events {
		if event.OccurredAt.IsZero() {
			event.OccurredAt = s.cfg.now()
		}
		if err := s.emitter.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrActivity, errors.Join(errs...))
}

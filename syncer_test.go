package scenesync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/activity"
	"github.com/goliatone/go-scenesync/pkg/store/memory"
)

type failingStore struct {
	scenesync.ObjectStore
	failOn string
	err    error
}

func (f failingStore) CreateMany(ctx context.Context, scene string, c scenesync.Collection, items []scenesync.DisplayItem) ([]string, error) {
	if f.failOn == "create" {
		return nil, f.err
	}
	return f.ObjectStore.CreateMany(ctx, scene, c, items)
}

func (f failingStore) DeleteMany(ctx context.Context, scene string, c scenesync.Collection, ids []string) error {
	if f.failOn == "delete" {
		return f.err
	}
	return f.ObjectStore.DeleteMany(ctx, scene, c, ids)
}

func item(tag, text string) scenesync.DisplayItem {
	return scenesync.DisplayItem{Tag: scenesync.Tag(tag), Kind: scenesync.KindText, Text: text}
}

func TestSyncConvergesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	syncer := scenesync.NewSyncer(store)

	desired := []scenesync.DisplayItem{item("g/a", "1"), item("g/b", "2")}
	res, err := syncer.Sync(ctx, "scene", "g", desired)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(res.Created) != 2 || !res.Changed() {
		t.Fatalf("expected 2 creates, got %+v", res)
	}

	res, err = syncer.Sync(ctx, "scene", "g", desired)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if res.Changed() || res.Unchanged != 2 {
		t.Fatalf("expected converged pass, got %+v", res)
	}

	desired[0].Text = "changed"
	res, err = syncer.Sync(ctx, "scene", "g", desired[:1])
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(res.Updated) != 1 || len(res.Deleted) != 1 {
		t.Fatalf("expected 1 update and 1 delete, got %+v", res)
	}
	if store.Len("scene") != 1 {
		t.Fatalf("expected 1 object left, got %d", store.Len("scene"))
	}
}

func TestSyncLeavesOtherGroupsAlone(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	syncer := scenesync.NewSyncer(store)

	if _, err := syncer.Sync(ctx, "scene", "one", []scenesync.DisplayItem{item("one/a", "")}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := syncer.Sync(ctx, "scene", "two", nil); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if store.Len("scene") != 1 {
		t.Fatalf("expected group one untouched")
	}
}

func TestSyncKeepsPrefixedScenesApart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	syncer := scenesync.NewSyncer(store)
	desired := []scenesync.DisplayItem{item("aspects", "Crowded")}

	if _, err := syncer.Sync(ctx, "s10", "aspects", desired); err != nil {
		t.Fatalf("sync s10: %v", err)
	}
	res, err := syncer.Sync(ctx, "s1", "aspects", desired)
	if err != nil {
		t.Fatalf("sync s1: %v", err)
	}
	if len(res.Created) != 1 || res.Unchanged != 0 {
		t.Fatalf("expected s1 to get its own widget, got %+v", res)
	}

	res, err = syncer.Clear(ctx, "s1", "aspects")
	if err != nil || len(res.Deleted) != 1 {
		t.Fatalf("expected one delete in s1, got %+v, %v", res, err)
	}
	if store.Len("s1") != 0 || store.Len("s10") != 1 {
		t.Fatalf("expected s10 untouched, got s1=%d s10=%d", store.Len("s1"), store.Len("s10"))
	}
}

func TestSyncRejectsTagsOutsideGroup(t *testing.T) {
	syncer := scenesync.NewSyncer(memory.New())
	_, err := syncer.Sync(context.Background(), "scene", "g", []scenesync.DisplayItem{item("other", "")})
	if !errors.Is(err, scenesync.ErrTagOutsideGroup) {
		t.Fatalf("expected ErrTagOutsideGroup, got %v", err)
	}
}

func TestSyncCountAndClear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	syncer := scenesync.NewSyncer(store)
	pool := scenesync.Pool{Tag: "fp/gm", Anchor: scenesync.Point{X: 3000, Y: 2220}, Step: scenesync.Point{X: -20}, Image: "fp.png"}

	res, err := syncer.SyncCount(ctx, "scene", pool, 3)
	if err != nil || len(res.Created) != 3 {
		t.Fatalf("expected 3 creates, got %+v, %v", res, err)
	}
	res, err = syncer.SyncCount(ctx, "scene", pool, 1)
	if err != nil || len(res.Deleted) != 2 {
		t.Fatalf("expected 2 deletes, got %+v, %v", res, err)
	}
	objs, _ := store.List(ctx, "scene", scenesync.Filter{Tag: "fp/gm"})
	if len(objs) != 1 || objs[0].Position.X != 2960 {
		t.Fatalf("expected marker with lowest x+y kept, got %+v", objs)
	}

	res, err = syncer.Clear(ctx, "scene", "fp")
	if err != nil || len(res.Deleted) != 1 || store.Len("scene") != 0 {
		t.Fatalf("expected pool cleared, got %+v, %v", res, err)
	}
}

func TestSyncWrapsStoreErrors(t *testing.T) {
	boom := errors.New("host offline")
	store := failingStore{ObjectStore: memory.New(), failOn: "create", err: boom}
	syncer := scenesync.NewSyncer(store)

	_, err := syncer.Sync(context.Background(), "scene", "g", []scenesync.DisplayItem{item("g/a", "")})
	var storeErr *scenesync.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if storeErr.Op != "create" || storeErr.Scene != "scene" || storeErr.Collection != scenesync.CollectionDrawing {
		t.Fatalf("unexpected store error: %+v", storeErr)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestSyncPartialFailureConvergesOnRerun(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	base.Seed("scene", scenesync.ManagedObject{Tag: "g/old", Kind: scenesync.KindText})
	failing := scenesync.NewSyncer(failingStore{ObjectStore: base, failOn: "delete", err: errors.New("boom")})

	desired := []scenesync.DisplayItem{item("g/new", "")}
	if _, err := failing.Sync(ctx, "scene", "g", desired); err == nil {
		t.Fatalf("expected delete failure")
	}
	if base.Len("scene") != 2 {
		t.Fatalf("expected create applied before failure")
	}

	res, err := scenesync.NewSyncer(base).Sync(ctx, "scene", "g", desired)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(res.Created) != 0 || len(res.Deleted) != 1 || base.Len("scene") != 1 {
		t.Fatalf("expected rerun to converge, got %+v", res)
	}
}

func TestSyncCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scenesync.NewSyncer(memory.New()).Sync(ctx, "scene", "g", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestSyncEmitsActivityAndLogs(t *testing.T) {
	capture := &activity.CaptureHook{}
	var logged []scenesync.SyncLogEvent
	syncer := scenesync.NewSyncer(memory.New(),
		scenesync.WithActivityHooks(activity.Hooks{capture}),
		scenesync.WithActor("gm"),
		scenesync.WithLogger(scenesync.SyncLoggerFunc(func(_ context.Context, e scenesync.SyncLogEvent) {
			logged = append(logged, e)
		})),
	)

	if _, err := syncer.Sync(context.Background(), "scene", "g", []scenesync.DisplayItem{item("g/a", "")}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	verbs := capture.Verbs()
	if len(verbs) != 2 || verbs[0] != activity.VerbWidgetCreated || verbs[1] != activity.VerbPassApplied {
		t.Fatalf("unexpected verbs: %v", verbs)
	}
	if capture.Events[0].ActorID != "gm" || capture.Events[0].Channel != activity.DefaultChannel {
		t.Fatalf("expected emitter defaults, got %+v", capture.Events[0])
	}
	if len(logged) != 1 || logged[0].Created != 1 || logged[0].Mode != "tagged" {
		t.Fatalf("unexpected log events: %+v", logged)
	}

	created := capture.Objects("scene", activity.VerbWidgetCreated)
	capture.Reset()
	if _, err := syncer.Clear(context.Background(), "scene", "g"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	deleted := capture.Objects("scene", activity.VerbWidgetDeleted)
	if len(created) != 1 || len(deleted) != 1 || created[0] != deleted[0] {
		t.Fatalf("expected the created widget to be deleted, created %v deleted %v", created, deleted)
	}
	if got := capture.Objects("other", activity.VerbWidgetDeleted); len(got) != 0 {
		t.Fatalf("expected no events for other scene, got %v", got)
	}
}

func TestSyncReportsActivityFailureAfterApplying(t *testing.T) {
	store := memory.New()
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	syncer := scenesync.NewSyncer(store, scenesync.WithActivityHooks(activity.Hooks{capture}))

	_, err := syncer.Sync(context.Background(), "scene", "g", []scenesync.DisplayItem{item("g/a", "")})
	if !errors.Is(err, scenesync.ErrActivity) {
		t.Fatalf("expected ErrActivity, got %v", err)
	}
	if store.Len("scene") != 1 {
		t.Fatalf("expected store change kept")
	}
}

func TestSyncRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := scenesync.NewMetrics(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	again, err := scenesync.NewMetrics(reg)
	if err != nil || again == nil {
		t.Fatalf("expected re-registration to reuse collectors, got %v", err)
	}

	syncer := scenesync.NewSyncer(memory.New(), scenesync.WithMetrics(metrics))
	if _, err := syncer.Sync(context.Background(), "scene", "g", []scenesync.DisplayItem{item("g/a", ""), item("g/b", "")}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got := counterValues(t, reg, "scenesync_operations_total", "op")
	if got["create"] != 2 || got["update"] != 0 || got["delete"] != 0 {
		t.Fatalf("unexpected operation counters: %v", got)
	}
	passes := counterValues(t, reg, "scenesync_passes_total", "outcome")
	if passes["ok"] != 1 {
		t.Fatalf("expected one ok pass, got %v", passes)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	syncer := scenesync.NewSyncer(memory.New())
	if _, err := syncer.Sync(ctx, "scene", "g", []scenesync.DisplayItem{item("g/a", "hello")}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	obj, ok, err := syncer.Lookup(ctx, "scene", "g/a")
	if err != nil || !ok || obj.Text != "hello" {
		t.Fatalf("unexpected lookup: %+v %v %v", obj, ok, err)
	}
}

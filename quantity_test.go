package scenesync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func marker(id string, x, y int) ManagedObject {
	return ManagedObject{ID: id, Collection: CollectionTile, Tag: "fp", Kind: KindImage, Position: Point{X: x, Y: y}}
}

func ids(objs []ManagedObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func TestReconcileCountShrinkKeepsLowestPositions(t *testing.T) {
	existing := []ManagedObject{marker("c", 0, 40), marker("a", 0, 0), marker("b", 0, 20)}
	plan := ReconcileCount(1, existing, Pool{Tag: "fp", Step: Point{Y: 20}})

	if len(plan.Create) != 0 {
		t.Fatalf("expected no creates, got %d", len(plan.Create))
	}
	if diff := cmp.Diff([]string{"b", "c"}, ids(plan.Delete)); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileCountGrowPlacesAfterExisting(t *testing.T) {
	pool := Pool{Tag: "fp", Anchor: Point{X: 100, Y: 50}, Step: Point{Y: 20}, Size: Size{Width: 70, Height: 70}, Image: "fp.png"}
	existing := []ManagedObject{marker("a", 100, 50), marker("b", 100, 70)}
	plan := ReconcileCount(4, existing, pool)

	if len(plan.Delete) != 0 || len(plan.Create) != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	want := []Point{{X: 100, Y: 90}, {X: 100, Y: 110}}
	for i, item := range plan.Create {
		if item.Position != want[i] || item.Kind != KindImage || item.Image != "fp.png" || item.Tag != "fp" {
			t.Fatalf("unexpected marker %d: %+v", i, item)
		}
	}
}

func TestReconcileCountNoop(t *testing.T) {
	plan := ReconcileCount(2, []ManagedObject{marker("a", 0, 0), marker("b", 0, 20)}, Pool{Tag: "fp"})
	if plan.Mutations() != 0 {
		t.Fatalf("expected no-op, got %+v", plan)
	}
}

func TestReconcileCountNegativeTargetClears(t *testing.T) {
	plan := ReconcileCount(-3, []ManagedObject{marker("a", 0, 0)}, Pool{Tag: "fp"})
	if len(plan.Delete) != 1 {
		t.Fatalf("expected all markers deleted, got %+v", plan)
	}
}

func TestReconcileCountShrinkIsStableOnTies(t *testing.T) {
	existing := []ManagedObject{marker("a", 10, 0), marker("b", 0, 10), marker("c", 5, 5)}
	plan := ReconcileCount(1, existing, Pool{Tag: "fp"})
	if diff := cmp.Diff([]string{"b", "c"}, ids(plan.Delete)); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileCountShrinkAlongStep(t *testing.T) {
	// Pool laid out right to left: the leftmost marker is the furthest along.
	pool := Pool{Tag: "fp", Anchor: Point{X: 100}, Step: Point{X: -20}, Order: ShrinkAlongStep}
	existing := []ManagedObject{marker("a", 100, 0), marker("b", 80, 0), marker("c", 60, 0)}

	plan := ReconcileCount(2, existing, pool)
	if diff := cmp.Diff([]string{"c"}, ids(plan.Delete)); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}

	plan = ReconcileCount(2, existing, Pool{Tag: "fp", Step: Point{X: -20}})
	if diff := cmp.Diff([]string{"a"}, ids(plan.Delete)); diff != "" {
		t.Fatalf("position-sum order mismatch (-want +got):\n%s", diff)
	}
}

func TestCountPlanConvertsToPlan(t *testing.T) {
	cp := ReconcileCount(1, nil, Pool{Tag: "fp"})
	plan := cp.Plan()
	if len(plan.Create) != 1 || plan.Mutations() != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

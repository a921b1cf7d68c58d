package scenesync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func drawing(id, tag, text string) ManagedObject {
	return ManagedObject{ID: id, Collection: CollectionDrawing, Tag: Tag(tag), Kind: KindText, Text: text}
}

func label(tag, text string) DisplayItem {
	return DisplayItem{Tag: Tag(tag), Kind: KindText, Text: text}
}

func TestReconcileCreatesIntoEmptyScene(t *testing.T) {
	plan := Reconcile([]DisplayItem{label("A", ""), label("B", "")}, nil)

	if len(plan.Create) != 2 || len(plan.Update) != 0 || len(plan.Delete) != 0 {
		t.Fatalf("expected 2/0/0, got %d/%d/%d", len(plan.Create), len(plan.Update), len(plan.Delete))
	}
	if plan.Create[0].Tag != "A" || plan.Create[1].Tag != "B" {
		t.Fatalf("expected creates in desired order, got %+v", plan.Create)
	}
}

func TestReconcileUpdatesChangedContent(t *testing.T) {
	plan := Reconcile([]DisplayItem{label("A", "X")}, []ManagedObject{drawing("1", "A", "")})

	if len(plan.Create) != 0 || len(plan.Update) != 1 || len(plan.Delete) != 0 {
		t.Fatalf("expected 0/1/0, got %d/%d/%d", len(plan.Create), len(plan.Update), len(plan.Delete))
	}
	u := plan.Update[0]
	if u.Object.ID != "1" || u.Desired.Text != "X" {
		t.Fatalf("unexpected update: %+v", u)
	}
	if diff := cmp.Diff([]string{"text"}, u.Changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
	if plan.Mutations() != 1 {
		t.Fatalf("expected 1 mutation, got %d", plan.Mutations())
	}
}

func TestReconcileDeletesMissingTags(t *testing.T) {
	existing := []ManagedObject{drawing("1", "A", ""), drawing("2", "B", "")}
	plan := Reconcile([]DisplayItem{label("B", "")}, existing)

	if len(plan.Create) != 0 || len(plan.Update) != 1 || len(plan.Delete) != 1 {
		t.Fatalf("expected 0/1/1, got %d/%d/%d", len(plan.Create), len(plan.Update), len(plan.Delete))
	}
	if plan.Update[0].Object.Tag != "B" || plan.Update[0].Changed() {
		t.Fatalf("expected unchanged update for B, got %+v", plan.Update[0])
	}
	if plan.Delete[0].ID != "1" {
		t.Fatalf("expected A deleted, got %+v", plan.Delete[0])
	}
	if len(plan.Pending()) != 0 || plan.Mutations() != 1 {
		t.Fatalf("expected only the delete to be submitted, got %d", plan.Mutations())
	}
}

func TestReconcileDuplicateExistingTags(t *testing.T) {
	existing := []ManagedObject{drawing("1", "A", "x"), drawing("2", "A", "y"), drawing("3", "A", "z")}
	plan := Reconcile([]DisplayItem{label("A", "x")}, existing)

	if len(plan.Update) != 1 || plan.Update[0].Object.ID != "1" {
		t.Fatalf("expected first object to be canonical, got %+v", plan.Update)
	}
	var deleted []string
	for _, obj := range plan.Delete {
		deleted = append(deleted, obj.ID)
	}
	if diff := cmp.Diff([]string{"2", "3"}, deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileDuplicateDesiredTagsFirstWins(t *testing.T) {
	plan := Reconcile([]DisplayItem{label("A", "first"), label("A", "second")}, nil)
	if len(plan.Create) != 1 || plan.Create[0].Text != "first" {
		t.Fatalf("expected first desired item to win, got %+v", plan.Create)
	}
}

func TestReconcileEmptyDesiredClears(t *testing.T) {
	plan := Reconcile(nil, []ManagedObject{drawing("1", "A", ""), drawing("2", "B", "")})
	if len(plan.Delete) != 2 || len(plan.Create) != 0 {
		t.Fatalf("expected all deleted, got %+v", plan)
	}
}

func TestReconcileCollectionChangeReplaces(t *testing.T) {
	existing := []ManagedObject{drawing("1", "portrait", "")}
	item := DisplayItem{Tag: "portrait", Kind: KindImage, Image: "a.png"}
	plan := Reconcile([]DisplayItem{item}, existing)

	if len(plan.Delete) != 1 || len(plan.Create) != 1 || len(plan.Update) != 0 {
		t.Fatalf("expected replace, got %+v", plan)
	}
}

func TestPlanBatchesGroupByCollection(t *testing.T) {
	plan := Plan{
		Create: []DisplayItem{
			label("a", ""),
			{Tag: "b", Kind: KindImage},
			{Tag: "c", Kind: KindCheckbox},
		},
		Delete: []ManagedObject{
			{ID: "1", Collection: CollectionTile},
			drawing("2", "x", ""),
			{ID: "3", Collection: CollectionTile},
		},
	}

	creates := plan.CreateBatches()
	if len(creates) != 2 || creates[0].Collection != CollectionDrawing || len(creates[0].Items) != 2 {
		t.Fatalf("unexpected create batches: %+v", creates)
	}
	deletes := plan.DeleteBatches()
	if len(deletes) != 2 || deletes[0].Collection != CollectionTile {
		t.Fatalf("unexpected delete batches: %+v", deletes)
	}
	if diff := cmp.Diff([]string{"1", "3"}, deletes[0].IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffTreatsNilAndEmptyAnnotationsAlike(t *testing.T) {
	obj := drawing("1", "A", "")
	item := label("A", "")
	item.Annotations = map[string]string{}
	if changes := Diff(obj, item); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
	item.Annotations = map[string]string{"actor": "1"}
	item.Position = Point{X: 1}
	if diff := cmp.Diff([]string{"position", "annotations"}, Diff(obj, item)); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestTagHelpers(t *testing.T) {
	tag := NewTag("panel", "Player 1", "", "portrait")
	if tag != "panel/Player 1/portrait" {
		t.Fatalf("unexpected tag %q", tag)
	}
	if !tag.Within("panel/Player 1") || tag.Within("panel/Player 10") || !tag.Within("") {
		t.Fatalf("unexpected Within results for %q", tag)
	}
	if got := NewTag("panel").Child("Player 2"); got != "panel/Player 2" {
		t.Fatalf("unexpected child %q", got)
	}
}

package scenesync

import (
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
)

// Update pairs an existing object with the desired state that fully
// overwrites it. Changes lists the fields that differ; an update without
// changes is reported but never submitted to the store.
type Update struct {
	Object  ManagedObject
	Desired DisplayItem
	Changes []string
}

// Changed reports whether applying the update would mutate the object.
func (u Update) Changed() bool {
	return len(u.Changes) > 0
}

// Plan is the outcome of reconciling desired items against existing objects.
type Plan struct {
	Create []DisplayItem
	Update []Update
	Delete []ManagedObject
}

// Pending returns the updates that change at least one field.
func (p Plan) Pending() []Update {
	var out []Update
	for _, u := range p.Update {
		if u.Changed() {
			out = append(out, u)
		}
	}
	return out
}

// Mutations counts the store operations needed to apply the plan.
func (p Plan) Mutations() int {
	return len(p.Create) + len(p.Pending()) + len(p.Delete)
}

// Converged reports whether the plan requires no store operations.
func (p Plan) Converged() bool {
	return p.Mutations() == 0
}

// CreateBatch groups items destined for one collection.
type CreateBatch struct {
	Collection Collection
	Items      []DisplayItem
}

// DeleteBatch groups objects removed from one collection.
type DeleteBatch struct {
	Collection Collection
	Objects    []ManagedObject
}

// IDs returns the ids of the batch objects.
func (b DeleteBatch) IDs() []string {
	ids := make([]string, len(b.Objects))
	for i, obj := range b.Objects {
		ids[i] = obj.ID
	}
	return ids
}

// CreateBatches groups creates by collection in first-seen order.
func (p Plan) CreateBatches() []CreateBatch {
	var batches []CreateBatch
	pos := map[Collection]int{}
	for _, item := range p.Create {
		c := item.Collection()
		i, ok := pos[c]
		if !ok {
			i = len(batches)
			pos[c] = i
			batches = append(batches, CreateBatch{Collection: c})
		}
		batches[i].Items = append(batches[i].Items, item)
	}
	return batches
}

// DeleteBatches groups deletes by collection in first-seen order.
func (p Plan) DeleteBatches() []DeleteBatch {
	var batches []DeleteBatch
	pos := map[Collection]int{}
	for _, obj := range p.Delete {
		i, ok := pos[obj.Collection]
		if !ok {
			i = len(batches)
			pos[obj.Collection] = i
			batches = append(batches, DeleteBatch{Collection: obj.Collection})
		}
		batches[i].Objects = append(batches[i].Objects, obj)
	}
	return batches
}

// Reconcile computes the create/update/delete operations that make existing
// match desired, correlating by tag.
//
// The first existing object found for a tag is canonical; later objects with
// the same tag are scheduled for deletion. The first desired item for a tag
// wins and later repeats are ignored. An item whose kind maps to a different
// collection than the existing object replaces it (delete + create) because
// objects cannot move between collections.
func Reconcile(desired []DisplayItem, existing []ManagedObject) Plan {
	var plan Plan

	index := make(map[Tag]ManagedObject, len(existing))
	order := make([]Tag, 0, len(existing))
	for _, obj := range existing {
		if _, ok := index[obj.Tag]; ok {
			plan.Delete = append(plan.Delete, obj)
			continue
		}
		index[obj.Tag] = obj
		order = append(order, obj.Tag)
	}

	visited := mapset.NewThreadUnsafeSet[Tag]()
	for _, item := range desired {
		if !visited.Add(item.Tag) {
			continue
		}
		obj, ok := index[item.Tag]
		switch {
		case !ok:
			plan.Create = append(plan.Create, item)
		case obj.Collection != item.Collection():
			plan.Delete = append(plan.Delete, obj)
			plan.Create = append(plan.Create, item)
		default:
			plan.Update = append(plan.Update, Update{
				Object:  obj,
				Desired: item,
				Changes: Diff(obj, item),
			})
		}
	}

	for _, tag := range order {
		if !visited.Contains(tag) {
			plan.Delete = append(plan.Delete, index[tag])
		}
	}
	return plan
}

// Diff lists the fields of obj that an overwrite with item would change.
func Diff(obj ManagedObject, item DisplayItem) []string {
	var changes []string
	if obj.Kind != item.Kind {
		changes = append(changes, "kind")
	}
	if obj.Position != item.Position {
		changes = append(changes, "position")
	}
	if obj.Size != item.Size {
		changes = append(changes, "size")
	}
	if obj.Text != item.Text {
		changes = append(changes, "text")
	}
	if obj.Image != item.Image {
		changes = append(changes, "image")
	}
	if obj.Style != item.Style {
		changes = append(changes, "style")
	}
	if !sameAnnotations(obj.Annotations, item.Annotations) {
		changes = append(changes, "annotations")
	}
	return changes
}

func sameAnnotations(a, b map[string]string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

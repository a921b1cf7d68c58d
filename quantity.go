package scenesync

import "sort"

// ShrinkOrder selects which surplus markers a pool sheds first.
type ShrinkOrder int

const (
	// ShrinkByPositionSum sorts markers by x+y ascending and removes the tail.
	ShrinkByPositionSum ShrinkOrder = iota
	// ShrinkAlongStep sorts markers by their projection on the pool step and
	// removes the tail, i.e. the markers furthest along the layout direction.
	ShrinkAlongStep
)

// Pool describes a group of fungible counted markers sharing one tag.
// Marker i sits at Anchor + Step*i.
type Pool struct {
	Tag         Tag
	Anchor      Point
	Step        Point
	Size        Size
	Image       string
	Order       ShrinkOrder
	Annotations map[string]string
}

// Marker returns the display item for the marker at index.
func (p Pool) Marker(index int) DisplayItem {
	return DisplayItem{
		Tag:         p.Tag,
		Kind:        KindImage,
		Position:    p.Anchor.Add(p.Step.Scale(index)),
		Size:        p.Size,
		Image:       p.Image,
		Annotations: cloneAnnotations(p.Annotations),
	}
}

func (p Pool) sortKey(obj ManagedObject) int {
	if p.Order == ShrinkAlongStep && (p.Step.X != 0 || p.Step.Y != 0) {
		return obj.Position.X*p.Step.X + obj.Position.Y*p.Step.Y
	}
	return obj.Position.X + obj.Position.Y
}

// CountPlan is the outcome of reconciling a pool against a target count.
type CountPlan struct {
	Create []DisplayItem
	Delete []ManagedObject
}

// Plan converts the count plan into a tagged plan suitable for Apply.
func (c CountPlan) Plan() Plan {
	return Plan{Create: c.Create, Delete: c.Delete}
}

// Mutations counts the store operations needed to apply the plan.
func (c CountPlan) Mutations() int {
	return len(c.Create) + len(c.Delete)
}

// ReconcileCount grows or shrinks existing markers to target. New markers are
// placed after the existing ones (index = len(existing) + i) so they never
// overlap; surplus markers are removed from the tail of the pool's
// deterministic positional ordering. Negative targets count as zero.
func ReconcileCount(target int, existing []ManagedObject, pool Pool) CountPlan {
	if target < 0 {
		target = 0
	}
	var plan CountPlan
	diff := target - len(existing)
	switch {
	case diff > 0:
		plan.Create = make([]DisplayItem, 0, diff)
		for i := 0; i < diff; i++ {
			plan.Create = append(plan.Create, pool.Marker(len(existing)+i))
		}
	case diff < 0:
		sorted := append([]ManagedObject(nil), existing...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return pool.sortKey(sorted[i]) < pool.sortKey(sorted[j])
		})
		plan.Delete = sorted[target:]
	}
	return plan
}

package fate

import (
	"sort"
	"strings"
)

// Slot is a fixed panel position and the character assigned to it.
type Slot struct {
	Name      string
	Index     int
	Owner     User
	Character Character
	Assigned  bool
}

// Roster maps the configured slots to player characters.
type Roster struct {
	Slots []Slot
}

// BuildRoster assigns the characters owned by non-GM users to slots in order
// of owner name. Characters beyond the last slot are ignored.
func BuildRoster(users []User, characters []Character, slots []string) Roster {
	players := make(map[string]User, len(users))
	for _, u := range users {
		if !u.GM {
			players[u.ID] = u
		}
	}

	type owned struct {
		owner User
		char  Character
	}
	var candidates []owned
	for _, c := range characters {
		if owner, ok := players[c.Owner]; ok {
			candidates = append(candidates, owned{owner: owner, char: c})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := strings.ToLower(candidates[i].owner.Name), strings.ToLower(candidates[j].owner.Name)
		if a != b {
			return a < b
		}
		return candidates[i].owner.Name < candidates[j].owner.Name
	})

	roster := Roster{Slots: make([]Slot, len(slots))}
	for i, name := range slots {
		roster.Slots[i] = Slot{Name: name, Index: i}
		if i < len(candidates) {
			roster.Slots[i].Owner = candidates[i].owner
			roster.Slots[i].Character = candidates[i].char
			roster.Slots[i].Assigned = true
		}
	}
	return roster
}

// Slot returns the slot called name.
func (r Roster) Slot(name string) (Slot, bool) {
	for _, s := range r.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Assigned returns the slots holding a character.
func (r Roster) Assigned() []Slot {
	var out []Slot
	for _, s := range r.Slots {
		if s.Assigned {
			out = append(out, s)
		}
	}
	return out
}

// ActiveGM returns the first active GM.
func ActiveGM(users []User) (User, bool) {
	for _, u := range users {
		if u.GM && u.Active {
			return u, true
		}
	}
	return User{}, false
}

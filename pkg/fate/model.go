package fate

import "strings"

// RecoveryFleeting marks stress tracks cleared at the end of every scene.
const RecoveryFleeting = "Fleeting"

// DefaultPortrait is the placeholder image of an unfinished character.
const DefaultPortrait = "icons/svg/mystery-man.svg"

// User is a campaign participant.
type User struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	GM         bool   `yaml:"gm,omitempty" json:"gm,omitempty"`
	Active     bool   `yaml:"active,omitempty" json:"active,omitempty"`
	FatePoints int    `yaml:"fate_points,omitempty" json:"fate_points,omitempty"`
}

// FatePoints is the current and refresh value of a character.
type FatePoints struct {
	Current int `yaml:"current" json:"current"`
	Refresh int `yaml:"refresh" json:"refresh"`
}

// Skill is a ranked skill of a character sheet.
type Skill struct {
	Name string `yaml:"name" json:"name"`
	Rank int    `yaml:"rank" json:"rank"`
}

// Track is a stress track or consequence slot.
type Track struct {
	Name         string `yaml:"name" json:"name"`
	RecoveryType string `yaml:"recovery_type,omitempty" json:"recovery_type,omitempty"`
	Boxes        []bool `yaml:"boxes,omitempty" json:"boxes,omitempty"`
	Aspect       string `yaml:"aspect,omitempty" json:"aspect,omitempty"`
}

// ClearFleeting unchecks the boxes of a fleeting track and clears its
// aspect. It reports whether anything changed.
func (t *Track) ClearFleeting() bool {
	if t.RecoveryType != RecoveryFleeting {
		return false
	}
	changed := false
	for i, checked := range t.Boxes {
		if checked {
			t.Boxes[i] = false
			changed = true
		}
	}
	if t.Aspect != "" {
		t.Aspect = ""
		changed = true
	}
	return changed
}

// Character is a player character sheet.
type Character struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Owner      string     `yaml:"owner,omitempty" json:"owner,omitempty"`
	Portrait   string     `yaml:"portrait,omitempty" json:"portrait,omitempty"`
	FatePoints FatePoints `yaml:"fate_points" json:"fate_points"`
	Aspects    []string   `yaml:"aspects,omitempty" json:"aspects,omitempty"`
	Skills     []Skill    `yaml:"skills,omitempty" json:"skills,omitempty"`
	Tracks     []Track    `yaml:"tracks,omitempty" json:"tracks,omitempty"`
}

// FilledAspects returns the non-blank aspects.
func (c Character) FilledAspects() []string {
	var out []string
	for _, a := range c.Aspects {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// Complete reports whether the sheet has aspects and a real portrait.
func (c Character) Complete() bool {
	if len(c.FilledAspects()) == 0 {
		return false
	}
	return c.Portrait != "" && !strings.Contains(c.Portrait, "mystery-man.svg")
}

// Track returns the track named name.
func (c Character) Track(name string) (Track, bool) {
	for _, t := range c.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return Track{}, false
}

// SituationAspect is an aspect attached to the scene.
type SituationAspect struct {
	Name        string `yaml:"name" json:"name"`
	FreeInvokes int    `yaml:"free_invokes" json:"free_invokes"`
}

// Token places a character on a scene. Unlinked tokens carry their own copy
// of the tracks.
type Token struct {
	ID          string  `yaml:"id" json:"id"`
	CharacterID string  `yaml:"character_id" json:"character_id"`
	Linked      bool    `yaml:"linked,omitempty" json:"linked,omitempty"`
	Tracks      []Track `yaml:"tracks,omitempty" json:"tracks,omitempty"`
}

// Scene is the campaign state of one scene.
type Scene struct {
	ID      string            `yaml:"id" json:"id"`
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Aspects []SituationAspect `yaml:"aspects,omitempty" json:"aspects,omitempty"`
	Tokens  []Token           `yaml:"tokens,omitempty" json:"tokens,omitempty"`
}

func cloneTracks(src []Track) []Track {
	if src == nil {
		return nil
	}
	out := make([]Track, len(src))
	for i, t := range src {
		t.Boxes = append([]bool(nil), t.Boxes...)
		out[i] = t
	}
	return out
}

func cloneCharacter(c Character) Character {
	c.Aspects = append([]string(nil), c.Aspects...)
	c.Skills = append([]Skill(nil), c.Skills...)
	c.Tracks = cloneTracks(c.Tracks)
	return c
}

func cloneScene(s Scene) Scene {
	s.Aspects = append([]SituationAspect(nil), s.Aspects...)
	tokens := make([]Token, len(s.Tokens))
	for i, t := range s.Tokens {
		t.Tracks = cloneTracks(t.Tracks)
		tokens[i] = t
	}
	if s.Tokens == nil {
		tokens = nil
	}
	s.Tokens = tokens
	return s
}

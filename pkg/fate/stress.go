package fate

import (
	"context"
)

// ClearFleetingStress clears every fleeting track of the scene tokens.
// Linked tokens write through to their character; unlinked tokens are
// saved in one batch. It returns the number of tokens changed.
func (t *Table) ClearFleetingStress(ctx context.Context) (int, error) {
	scene, err := t.campaign.Scene(ctx, t.scene)
	if err != nil {
		return 0, err
	}
	chars, err := t.campaign.Characters(ctx)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]Character, len(chars))
	for _, c := range chars {
		byID[c.ID] = c
	}

	changed := 0
	seen := map[string]bool{}
	var unlinked []Token
	for _, token := range scene.Tokens {
		if token.Linked {
			char, ok := byID[token.CharacterID]
			if !ok || seen[char.ID] {
				continue
			}
			seen[char.ID] = true
			if !clearTracks(char.Tracks) {
				continue
			}
			if err := t.campaign.UpdateCharacter(ctx, char); err != nil {
				return changed, err
			}
			changed++
			continue
		}
		token.Tracks = cloneTracks(token.Tracks)
		if clearTracks(token.Tracks) {
			unlinked = append(unlinked, token)
		}
	}
	if len(unlinked) > 0 {
		if err := t.campaign.UpdateTokens(ctx, t.scene, unlinked); err != nil {
			return changed, err
		}
		changed += len(unlinked)
	}
	if changed > 0 {
		t.notifier.Info(ctx, "fleeting stress cleared")
	}
	return changed, nil
}

func clearTracks(tracks []Track) bool {
	changed := false
	for i := range tracks {
		if tracks[i].ClearFleeting() {
			changed = true
		}
	}
	return changed
}

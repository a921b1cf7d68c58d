package fate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUserNotFound is returned for an unknown user id.
	ErrUserNotFound = errors.New("fate: user not found")
	// ErrCharacterNotFound is returned for an unknown character id.
	ErrCharacterNotFound = errors.New("fate: character not found")
)

// Campaign is the port onto the host's users, character sheets and scenes.
type Campaign interface {
	Users(ctx context.Context) ([]User, error)
	Characters(ctx context.Context) ([]Character, error)
	UpdateCharacter(ctx context.Context, c Character) error
	GMFatePoints(ctx context.Context, userID string) (int, error)
	SetGMFatePoints(ctx context.Context, userID string, n int) error
	Scene(ctx context.Context, id string) (Scene, error)
	SetSceneAspects(ctx context.Context, id string, aspects []SituationAspect) error
	UpdateTokens(ctx context.Context, id string, tokens []Token) error
}

// CampaignData is the serialisable state behind MemoryCampaign.
type CampaignData struct {
	Users      []User      `yaml:"users" json:"users"`
	Characters []Character `yaml:"characters" json:"characters"`
	Scenes     []Scene     `yaml:"scenes,omitempty" json:"scenes,omitempty"`
}

// MemoryCampaign keeps campaign data in memory. An optional commit hook runs
// after each mutation with a snapshot of the new state.
type MemoryCampaign struct {
	mu     sync.RWMutex
	data   CampaignData
	commit func(CampaignData) error
}

var _ Campaign = (*MemoryCampaign)(nil)

// NewMemoryCampaign returns a campaign seeded with data.
func NewMemoryCampaign(data CampaignData) *MemoryCampaign {
	return &MemoryCampaign{data: cloneData(data)}
}

// Snapshot returns a copy of the campaign state.
func (m *MemoryCampaign) Snapshot() CampaignData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneData(m.data)
}

func (m *MemoryCampaign) Users(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]User(nil), m.data.Users...), nil
}

func (m *MemoryCampaign) Characters(ctx context.Context) ([]Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Character, len(m.data.Characters))
	for i, c := range m.data.Characters {
		out[i] = cloneCharacter(c)
	}
	return out, nil
}

func (m *MemoryCampaign) UpdateCharacter(ctx context.Context, c Character) error {
	return m.mutate(ctx, func(data *CampaignData) error {
		for i := range data.Characters {
			if data.Characters[i].ID == c.ID {
				data.Characters[i] = cloneCharacter(c)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, c.ID)
	})
}

func (m *MemoryCampaign) GMFatePoints(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.data.Users {
		if u.ID == userID {
			return u.FatePoints, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
}

func (m *MemoryCampaign) SetGMFatePoints(ctx context.Context, userID string, n int) error {
	return m.mutate(ctx, func(data *CampaignData) error {
		for i := range data.Users {
			if data.Users[i].ID == userID {
				data.Users[i].FatePoints = n
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	})
}

// Scene returns the scene with id. Unknown scenes are empty.
func (m *MemoryCampaign) Scene(ctx context.Context, id string) (Scene, error) {
	if err := ctx.Err(); err != nil {
		return Scene{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.data.Scenes {
		if s.ID == id {
			return cloneScene(s), nil
		}
	}
	return Scene{ID: id}, nil
}

func (m *MemoryCampaign) SetSceneAspects(ctx context.Context, id string, aspects []SituationAspect) error {
	return m.mutate(ctx, func(data *CampaignData) error {
		scene := sceneOf(data, id)
		scene.Aspects = append([]SituationAspect(nil), aspects...)
		return nil
	})
}

// UpdateTokens replaces the tokens of the scene that share an id with tokens.
func (m *MemoryCampaign) UpdateTokens(ctx context.Context, id string, tokens []Token) error {
	return m.mutate(ctx, func(data *CampaignData) error {
		scene := sceneOf(data, id)
		for _, tok := range tokens {
			found := false
			for i := range scene.Tokens {
				if scene.Tokens[i].ID == tok.ID {
					tok.Tracks = cloneTracks(tok.Tracks)
					scene.Tokens[i] = tok
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("fate: token %s not in scene %s", tok.ID, id)
			}
		}
		return nil
	})
}

func (m *MemoryCampaign) mutate(ctx context.Context, fn func(*CampaignData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := cloneData(m.data)
	if err := fn(&next); err != nil {
		return err
	}
	if m.commit != nil {
		if err := m.commit(cloneData(next)); err != nil {
			return err
		}
	}
	m.data = next
	return nil
}

func sceneOf(data *CampaignData, id string) *Scene {
	for i := range data.Scenes {
		if data.Scenes[i].ID == id {
			return &data.Scenes[i]
		}
	}
	data.Scenes = append(data.Scenes, Scene{ID: id})
	return &data.Scenes[len(data.Scenes)-1]
}

func cloneData(d CampaignData) CampaignData {
	out := CampaignData{Users: append([]User(nil), d.Users...)}
	for _, c := range d.Characters {
		out.Characters = append(out.Characters, cloneCharacter(c))
	}
	for _, s := range d.Scenes {
		out.Scenes = append(out.Scenes, cloneScene(s))
	}
	return out
}

package fate

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/goliatone/go-scenesync"
)

// PoolRole is the tag role of fate-point markers.
const PoolRole = "fp"

// GMPoolTag tags the GM fate-point markers.
var GMPoolTag = scenesync.NewTag(PoolRole, "gm")

// PlayerPoolTag tags the fate-point markers of a slot.
func PlayerPoolTag(slot string) scenesync.Tag {
	return scenesync.NewTag(PoolRole, slot)
}

// PointsManager keeps the fate-point markers of the scene in line with the
// character sheets and the GM pool.
type PointsManager struct {
	table *Table
}

func (m *PointsManager) config(ctx context.Context) (PointsConfig, error) {
	cfg, err := LoadPointsConfig(ctx, m.table.settings)
	if err != nil {
		return PointsConfig{}, err
	}
	if cfg.FatePointImage == "" {
		return PointsConfig{}, fmt.Errorf("%w: %s.fatePointImage", scenesync.ErrConfigMissing, PagePoints)
	}
	return cfg, nil
}

// PlayerPool returns the pool layout of slot. Player markers stack down.
func (c PointsConfig) PlayerPool(slot Slot) scenesync.Pool {
	anchor, _ := c.PlayerAnchor(slot.Index)
	return scenesync.Pool{
		Tag:         PlayerPoolTag(slot.Name),
		Anchor:      anchor,
		Step:        scenesync.Point{Y: c.StepY},
		Size:        c.TileSize(),
		Image:       c.FatePointImage,
		Order:       scenesync.ShrinkByPositionSum,
		Annotations: map[string]string{"slot": slot.Name, "actor": slot.Character.ID},
	}
}

// GMPool returns the GM pool layout. GM markers stack left.
func (c PointsConfig) GMPool() scenesync.Pool {
	return scenesync.Pool{
		Tag:    GMPoolTag,
		Anchor: c.GMAnchor(),
		Step:   scenesync.Point{X: -c.StepX},
		Size:   c.TileSize(),
		Image:  c.FatePointImage,
		Order:  scenesync.ShrinkAlongStep,
	}
}

// SyncPlayer shows the current fate points of the character in slot. An
// empty slot is left untouched.
func (m *PointsManager) SyncPlayer(ctx context.Context, slot string) (scenesync.Result, error) {
	cfg, err := m.config(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	roster, err := m.table.Roster(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	return m.syncSlot(ctx, cfg, roster, slot)
}

func (m *PointsManager) syncSlot(ctx context.Context, cfg PointsConfig, roster Roster, name string) (scenesync.Result, error) {
	slot, ok := roster.Slot(name)
	if !ok {
		return scenesync.Result{}, fmt.Errorf("%w: unknown slot %q", scenesync.ErrPrecondition, name)
	}
	if !slot.Assigned {
		return scenesync.Result{Scene: m.table.scene, Group: PlayerPoolTag(name)}, nil
	}
	return m.table.syncer.SyncCount(ctx, m.table.scene, cfg.PlayerPool(slot), slot.Character.FatePoints.Current)
}

// SyncGM shows the fate points of the active GM.
func (m *PointsManager) SyncGM(ctx context.Context) (scenesync.Result, error) {
	cfg, err := m.config(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	return m.syncGM(ctx, cfg)
}

func (m *PointsManager) syncGM(ctx context.Context, cfg PointsConfig) (scenesync.Result, error) {
	gm, err := m.table.activeGM(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	points, err := m.table.campaign.GMFatePoints(ctx, gm.ID)
	if err != nil {
		return scenesync.Result{}, err
	}
	return m.table.syncer.SyncCount(ctx, m.table.scene, cfg.GMPool(), points)
}

// SyncAll synchronises every assigned slot, then the GM pool. A missing GM
// is reported and skipped.
func (m *PointsManager) SyncAll(ctx context.Context) ([]scenesync.Result, error) {
	cfg, err := m.config(ctx)
	if err != nil {
		return nil, err
	}
	roster, err := m.table.Roster(ctx)
	if err != nil {
		return nil, err
	}
	var results []scenesync.Result
	for _, slot := range roster.Assigned() {
		res, err := m.syncSlot(ctx, cfg, roster, slot.Name)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	res, err := m.syncGM(ctx, cfg)
	switch {
	case errors.Is(err, scenesync.ErrPrecondition):
		m.table.notifier.Warn(ctx, "no active GM, GM fate points skipped")
	case err != nil:
		return results, err
	default:
		results = append(results, res)
	}
	return results, nil
}

// Give adds one fate point to the character in slot.
func (m *PointsManager) Give(ctx context.Context, slot string) (scenesync.Result, error) {
	return m.adjustPlayer(ctx, slot, 1)
}

// Take removes one fate point from the character in slot. Taking at zero is
// a no-op.
func (m *PointsManager) Take(ctx context.Context, slot string) (scenesync.Result, error) {
	return m.adjustPlayer(ctx, slot, -1)
}

func (m *PointsManager) adjustPlayer(ctx context.Context, name string, delta int) (scenesync.Result, error) {
	cfg, err := m.config(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	roster, err := m.table.Roster(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	slot, ok := roster.Slot(name)
	if !ok || !slot.Assigned {
		return scenesync.Result{}, fmt.Errorf("%w: no character in slot %q", scenesync.ErrPrecondition, name)
	}
	char := slot.Character
	if delta < 0 && char.FatePoints.Current <= 0 {
		return scenesync.Result{Scene: m.table.scene, Group: PlayerPoolTag(name)}, nil
	}
	char.FatePoints.Current += delta
	if err := m.table.campaign.UpdateCharacter(ctx, char); err != nil {
		return scenesync.Result{}, err
	}
	for i := range roster.Slots {
		if roster.Slots[i].Name == name {
			roster.Slots[i].Character = char
		}
	}
	return m.syncSlot(ctx, cfg, roster, name)
}

// GiveGM adds one fate point to the active GM.
func (m *PointsManager) GiveGM(ctx context.Context) (scenesync.Result, error) {
	return m.adjustGM(ctx, 1)
}

// TakeGM removes one fate point from the active GM. Taking at zero is a
// no-op.
func (m *PointsManager) TakeGM(ctx context.Context) (scenesync.Result, error) {
	return m.adjustGM(ctx, -1)
}

func (m *PointsManager) adjustGM(ctx context.Context, delta int) (scenesync.Result, error) {
	cfg, err := m.config(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	gm, err := m.table.activeGM(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	points, err := m.table.campaign.GMFatePoints(ctx, gm.ID)
	if err != nil {
		return scenesync.Result{}, err
	}
	if delta < 0 && points <= 0 {
		return scenesync.Result{Scene: m.table.scene, Group: GMPoolTag}, nil
	}
	if err := m.table.campaign.SetGMFatePoints(ctx, gm.ID, points+delta); err != nil {
		return scenesync.Result{}, err
	}
	return m.syncGM(ctx, cfg)
}

// Refresh raises every assigned character below its refresh to the refresh
// value, then synchronises all pools.
func (m *PointsManager) Refresh(ctx context.Context) ([]scenesync.Result, error) {
	if _, err := m.config(ctx); err != nil {
		return nil, err
	}
	roster, err := m.table.Roster(ctx)
	if err != nil {
		return nil, err
	}
	for _, slot := range roster.Assigned() {
		char := slot.Character
		if char.FatePoints.Current >= char.FatePoints.Refresh {
			continue
		}
		char.FatePoints.Current = char.FatePoints.Refresh
		if err := m.table.campaign.UpdateCharacter(ctx, char); err != nil {
			return nil, err
		}
	}
	return m.SyncAll(ctx)
}

// NewScene prompts for the player count and the situation aspects to keep,
// drops the others, sets the GM pool to the player count, clears fleeting
// stress and resynchronises the GM pool and the aspect widget. A cancelled
// prompt returns scenesync.ErrCancelled without touching the scene.
func (m *PointsManager) NewScene(ctx context.Context) error {
	cfg, err := m.config(ctx)
	if err != nil {
		return err
	}
	if m.table.prompter == nil {
		return fmt.Errorf("%w: no prompter configured", scenesync.ErrPrecondition)
	}
	scene, err := m.table.campaign.Scene(ctx, m.table.scene)
	if err != nil {
		return err
	}
	setup, err := m.table.prompter.NewScene(ctx, scene.Aspects)
	if err != nil {
		if scenesync.IsCancelled(err) {
			m.table.notifier.Info(ctx, "new scene cancelled")
		}
		return err
	}
	if setup.PlayerCount < 0 {
		setup.PlayerCount = 0
	}

	keep := mapset.NewThreadUnsafeSet(setup.Keep...)
	var kept []SituationAspect
	for _, a := range scene.Aspects {
		if keep.Contains(a.Name) {
			kept = append(kept, a)
		}
	}
	if err := m.table.campaign.SetSceneAspects(ctx, m.table.scene, kept); err != nil {
		return err
	}

	gm, err := m.table.activeGM(ctx)
	hasGM := err == nil
	if hasGM {
		if err := m.table.campaign.SetGMFatePoints(ctx, gm.ID, setup.PlayerCount); err != nil {
			return err
		}
		m.table.notifier.Info(ctx, fmt.Sprintf("GM fate points set to %d", setup.PlayerCount))
	} else if !errors.Is(err, scenesync.ErrPrecondition) {
		return err
	}

	if _, err := m.table.ClearFleetingStress(ctx); err != nil {
		return err
	}
	if hasGM {
		if _, err := m.syncGM(ctx, cfg); err != nil {
			return err
		}
	}
	_, err = m.table.Aspects().Sync(ctx)
	return err
}

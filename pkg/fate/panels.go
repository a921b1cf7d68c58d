package fate

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-scenesync"
)

// PanelGroup returns the tag group of the panel of slot.
func PanelGroup(slot string) scenesync.Tag {
	return scenesync.NewTag("panel", slot)
}

// PanelSync renders one panel per slot: portrait, name, aspects, skill rows
// and the boxes of the configured stress track.
type PanelSync struct {
	table *Table
}

// SyncAll renders every slot. Empty slots are cleared.
func (p *PanelSync) SyncAll(ctx context.Context) ([]scenesync.Result, error) {
	cfg, err := LoadPanelsConfig(ctx, p.table.settings)
	if err != nil {
		return nil, err
	}
	roster, err := p.table.Roster(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster.Assigned()) == 0 {
		p.table.notifier.Warn(ctx, "no player characters found")
	}
	results := make([]scenesync.Result, 0, len(roster.Slots))
	for _, slot := range roster.Slots {
		res, err := p.syncSlot(ctx, cfg, slot)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SyncSlot renders the slot called name.
func (p *PanelSync) SyncSlot(ctx context.Context, name string) (scenesync.Result, error) {
	cfg, err := LoadPanelsConfig(ctx, p.table.settings)
	if err != nil {
		return scenesync.Result{}, err
	}
	roster, err := p.table.Roster(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	slot, ok := roster.Slot(name)
	if !ok {
		return scenesync.Result{}, fmt.Errorf("%w: unknown slot %q", scenesync.ErrPrecondition, name)
	}
	return p.syncSlot(ctx, cfg, slot)
}

func (p *PanelSync) syncSlot(ctx context.Context, cfg PanelsConfig, slot Slot) (scenesync.Result, error) {
	group := PanelGroup(slot.Name)
	if !slot.Assigned {
		return p.table.syncer.Clear(ctx, p.table.scene, group)
	}
	if !slot.Character.Complete() {
		p.table.notifier.Warn(ctx, fmt.Sprintf("sheet of %q is incomplete, %s cleared", slot.Character.Name, slot.Name))
		return p.table.syncer.Clear(ctx, p.table.scene, group)
	}
	items, err := p.Items(ctx, cfg, slot)
	if err != nil {
		return scenesync.Result{}, err
	}
	return p.table.syncer.Sync(ctx, p.table.scene, group, items)
}

// Items renders the desired widgets of an assigned slot.
func (p *PanelSync) Items(ctx context.Context, cfg PanelsConfig, slot Slot) ([]scenesync.DisplayItem, error) {
	if slot.Index >= len(cfg.Slots) {
		return nil, fmt.Errorf("%w: no layout for %s", scenesync.ErrConfigMissing, slot.Name)
	}
	layout := cfg.Slots[slot.Index]
	group := PanelGroup(slot.Name)
	char := slot.Character
	annotations := map[string]string{"actor": char.ID, "slot": slot.Name}

	textItem := func(part string, at scenesync.Point, size scenesync.Size, text string, style scenesync.Style) scenesync.DisplayItem {
		return scenesync.DisplayItem{
			Tag:         group.Child(part),
			Kind:        scenesync.KindText,
			Position:    at,
			Size:        size,
			Text:        text,
			Style:       style,
			Annotations: annotations,
		}
	}

	aspectsText, err := p.table.text(group.Child("aspects"), "aspectsFormat", cfg.AspectsFormat, map[string]any{"aspects": char.FilledAspects()})
	if err != nil {
		return nil, err
	}
	items := []scenesync.DisplayItem{
		{
			Tag:         group.Child("portrait"),
			Kind:        scenesync.KindImage,
			Position:    layout.Portrait,
			Size:        scenesync.Size{Width: cfg.PortraitWidth, Height: cfg.PortraitHeight},
			Image:       char.Portrait,
			Annotations: annotations,
		},
		textItem("name", layout.Name, scenesync.Size{Width: cfg.NameWidth, Height: cfg.NameHeight}, char.Name,
			scenesync.Style{FontFamily: cfg.FontFamily, FontSize: cfg.NameFontSize, FontWeight: 800, TextColor: "#000000"}),
		textItem("aspects", layout.Aspects, scenesync.Size{Width: cfg.AspectsWidth, Height: cfg.AspectsHeight}, aspectsText,
			scenesync.Style{FontFamily: cfg.FontFamily, FontSize: cfg.AspectsFontSize, TextColor: "#000000"}),
	}

	for i, row := range SkillRows(char.Skills) {
		rank := strconv.Itoa(row.Rank)
		names, err := p.table.text(group.Child("skill/"+rank+"/name"), "skillNamesFormat", cfg.SkillNamesFormat, map[string]any{"names": row.Names, "rank": row.Rank})
		if err != nil {
			return nil, err
		}
		value, err := p.table.text(group.Child("skill/"+rank+"/value"), "skillValueFormat", cfg.SkillValueFormat, map[string]any{"names": row.Names, "rank": row.Rank})
		if err != nil {
			return nil, err
		}
		offset := scenesync.Point{Y: cfg.SkillRowStep * i}
		items = append(items,
			textItem("skill/"+rank+"/name", layout.SkillName.Add(offset), scenesync.Size{Width: cfg.SkillNameWidth, Height: cfg.SkillNameHeight}, names,
				scenesync.Style{FontFamily: cfg.SkillNameFont, FontSize: cfg.SkillNameFontSize, TextColor: "#000000", StrokeWidth: 2, StrokeColor: "#000000"}),
			textItem("skill/"+rank+"/value", layout.SkillValue.Add(offset), scenesync.Size{Width: cfg.SkillValueWidth, Height: cfg.SkillValueHeight}, value,
				scenesync.Style{FontFamily: cfg.SkillValueFont, FontSize: cfg.SkillValueSize, FontWeight: 800, TextColor: "#000000", StrokeWidth: 2, StrokeColor: "#000000"}),
		)
	}

	track, ok := char.Track(cfg.StressTrack)
	if !ok {
		p.table.notifier.Warn(ctx, fmt.Sprintf("%q has no %q track", char.Name, cfg.StressTrack))
		return items, nil
	}
	for i, checked := range track.Boxes {
		text, err := p.table.text(group.Child("stress/"+strconv.Itoa(i)), "stressBoxFormat", cfg.StressBoxFormat, map[string]any{"checked": checked, "index": i})
		if err != nil {
			return nil, err
		}
		item := textItem("stress/"+strconv.Itoa(i), layout.Stress.Add(scenesync.Point{X: cfg.StressSpacingX * i}),
			scenesync.Size{Width: cfg.StressBoxWidth, Height: cfg.StressBoxHeight}, text,
			scenesync.Style{FontFamily: cfg.StressFontFamily, FontSize: cfg.StressFontSize, TextColor: "#000000", StrokeWidth: cfg.StressLineWidth, StrokeColor: "#000000", Align: "center"})
		item.Kind = scenesync.KindCheckbox
		items = append(items, item)
	}
	return items, nil
}

// SkillRow is one rank of the skill pyramid.
type SkillRow struct {
	Rank  int
	Names []string
}

// SkillRows groups positive-rank skills by rank, highest first. Names keep
// their sheet order.
func SkillRows(skills []Skill) []SkillRow {
	byRank := map[int][]string{}
	for _, s := range skills {
		if s.Rank > 0 {
			byRank[s.Rank] = append(byRank[s.Rank], s.Name)
		}
	}
	rows := make([]SkillRow, 0, len(byRank))
	for rank, names := range byRank {
		rows = append(rows, SkillRow{Rank: rank, Names: names})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank > rows[j].Rank })
	return rows
}

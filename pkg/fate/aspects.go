package fate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-scenesync"
)

var (
	// ErrAspectName is returned for a blank aspect name.
	ErrAspectName = errors.New("fate: aspect name must not be empty")
	// ErrAspectIndex is returned for an index outside the aspect list.
	ErrAspectIndex = errors.New("fate: aspect index out of range")
)

// AspectGroup is the tag group of the situation-aspect widget.
var AspectGroup = scenesync.NewTag("aspects")

// AspectWidgetTag tags the single drawing listing the scene aspects.
var AspectWidgetTag = AspectGroup.Child("widget")

// AspectBoard edits the situation aspects of the scene. Every edit stores
// the list on the scene and resynchronises the widget.
type AspectBoard struct {
	table *Table
}

// List returns the scene aspects with negative invokes clamped to zero.
func (b *AspectBoard) List(ctx context.Context) ([]SituationAspect, error) {
	scene, err := b.table.campaign.Scene(ctx, b.table.scene)
	if err != nil {
		return nil, err
	}
	out := make([]SituationAspect, len(scene.Aspects))
	for i, a := range scene.Aspects {
		if a.FreeInvokes < 0 {
			a.FreeInvokes = 0
		}
		out[i] = a
	}
	return out, nil
}

// Add appends an aspect. Negative invokes count as zero.
func (b *AspectBoard) Add(ctx context.Context, name string, invokes int) (scenesync.Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return scenesync.Result{}, ErrAspectName
	}
	return b.edit(ctx, func(list []SituationAspect) ([]SituationAspect, error) {
		return append(list, SituationAspect{Name: name, FreeInvokes: max(invokes, 0)}), nil
	})
}

// Rename changes the name of the aspect at index.
func (b *AspectBoard) Rename(ctx context.Context, index int, name string) (scenesync.Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return scenesync.Result{}, ErrAspectName
	}
	return b.edit(ctx, func(list []SituationAspect) ([]SituationAspect, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrAspectIndex, index)
		}
		list[index].Name = name
		return list, nil
	})
}

// Delete removes the aspect at index after confirmation. Declining returns
// scenesync.ErrCancelled.
func (b *AspectBoard) Delete(ctx context.Context, index int) (scenesync.Result, error) {
	list, err := b.List(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	if index < 0 || index >= len(list) {
		return scenesync.Result{}, fmt.Errorf("%w: %d", ErrAspectIndex, index)
	}
	if b.table.prompter != nil {
		ok, err := b.table.prompter.Confirm(ctx, fmt.Sprintf("Delete aspect %q?", list[index].Name))
		if err != nil {
			return scenesync.Result{}, err
		}
		if !ok {
			return scenesync.Result{}, scenesync.ErrCancelled
		}
	}
	return b.edit(ctx, func(list []SituationAspect) ([]SituationAspect, error) {
		if index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrAspectIndex, index)
		}
		return append(list[:index], list[index+1:]...), nil
	})
}

// Invoke adds delta to the free invokes of the aspect at index, never going
// below zero.
func (b *AspectBoard) Invoke(ctx context.Context, index, delta int) (scenesync.Result, error) {
	return b.edit(ctx, func(list []SituationAspect) ([]SituationAspect, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrAspectIndex, index)
		}
		list[index].FreeInvokes = max(list[index].FreeInvokes+delta, 0)
		return list, nil
	})
}

// Save replaces the scene aspects and synchronises the widget.
func (b *AspectBoard) Save(ctx context.Context, aspects []SituationAspect) (scenesync.Result, error) {
	for _, a := range aspects {
		if strings.TrimSpace(a.Name) == "" {
			return scenesync.Result{}, ErrAspectName
		}
	}
	if err := b.table.campaign.SetSceneAspects(ctx, b.table.scene, aspects); err != nil {
		return scenesync.Result{}, err
	}
	return b.Sync(ctx)
}

func (b *AspectBoard) edit(ctx context.Context, fn func([]SituationAspect) ([]SituationAspect, error)) (scenesync.Result, error) {
	list, err := b.List(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	list, err = fn(list)
	if err != nil {
		return scenesync.Result{}, err
	}
	return b.Save(ctx, list)
}

// Widget renders the desired widget for aspects.
func (b *AspectBoard) Widget(cfg AspectsConfig, aspects []SituationAspect) (scenesync.DisplayItem, error) {
	lines := make([]string, 0, len(aspects))
	for _, a := range aspects {
		line, err := b.table.text(AspectWidgetTag, "lineFormat", cfg.LineFormat, map[string]any{
			"name":    a.Name,
			"invokes": a.FreeInvokes,
		})
		if err != nil {
			return scenesync.DisplayItem{}, err
		}
		lines = append(lines, line)
	}
	return scenesync.DisplayItem{
		Tag:      AspectWidgetTag,
		Kind:     scenesync.KindText,
		Position: scenesync.Point{X: cfg.X, Y: cfg.Y},
		Size:     scenesync.Size{Width: cfg.Width, Height: cfg.Height},
		Text:     strings.Join(lines, "\n\n"),
		Style: scenesync.Style{
			FontFamily: cfg.FontFamily,
			FontSize:   cfg.FontSize,
			FontWeight: 800,
			TextColor:  "#000000",
			Align:      "center",
		},
	}, nil
}

// Sync renders the stored aspects into the widget.
func (b *AspectBoard) Sync(ctx context.Context) (scenesync.Result, error) {
	cfg, err := LoadAspectsConfig(ctx, b.table.settings)
	if err != nil {
		return scenesync.Result{}, err
	}
	aspects, err := b.List(ctx)
	if err != nil {
		return scenesync.Result{}, err
	}
	widget, err := b.Widget(cfg, aspects)
	if err != nil {
		return scenesync.Result{}, err
	}
	return b.table.syncer.Sync(ctx, b.table.scene, AspectGroup, []scenesync.DisplayItem{widget})
}

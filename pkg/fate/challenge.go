package fate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/format"
)

const (
	defaultDifficulty   = 2
	defaultContestBoxes = 3

	challengeWidth      = 500
	challengeLineHeight = 90
	contestWidth        = 700
	contestRowHeight    = 60
	contestRowGap       = 10
)

// Task is one line of a challenge.
type Task struct {
	Text       string
	Difficulty int
}

// Side is one participant of a contest.
type Side struct {
	Name  string
	Boxes int
}

// Challenges creates challenge and contest checklists and ticks them off.
type Challenges struct {
	table *Table
}

// Challenges returns the challenge and contest builder.
func (t *Table) Challenges() *Challenges {
	return &Challenges{table: t}
}

// CreateChallenge draws one checklist with a line per task, centred on
// center. Blank tasks are skipped; a difficulty of zero or less becomes 2.
func (c *Challenges) CreateChallenge(ctx context.Context, center scenesync.Point, tasks []Task) (scenesync.Tag, error) {
	cfg, err := LoadChallengeConfig(ctx, c.table.settings)
	if err != nil {
		return "", err
	}
	group := scenesync.NewTag("challenge", uuid.NewString())
	tag := group.Child("list")
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		text := strings.TrimSpace(task.Text)
		if text == "" {
			continue
		}
		difficulty := task.Difficulty
		if difficulty <= 0 {
			difficulty = defaultDifficulty
		}
		line, err := c.table.text(tag, "challengeLineFormat", cfg.ChallengeLineFormat, map[string]any{
			"done":       false,
			"text":       text,
			"difficulty": difficulty,
		})
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: challenge has no tasks", scenesync.ErrPrecondition)
	}

	item := scenesync.DisplayItem{
		Tag:      tag,
		Kind:     scenesync.KindCheckbox,
		Position: center.Add(scenesync.Point{X: -challengeWidth / 2, Y: -100}),
		Size:     scenesync.Size{Width: challengeWidth, Height: challengeLineHeight * len(lines)},
		Text:     strings.Join(lines, "\n\n"),
		Style:    checklistStyle(cfg.ChallengeFontFamily, cfg.ChallengeFontSize, cfg.ChallengeAddBackground, cfg.ChallengeBackgroundColor),
	}
	if _, err := c.table.syncer.Sync(ctx, c.table.scene, group, []scenesync.DisplayItem{item}); err != nil {
		return "", err
	}
	c.table.notifier.Info(ctx, fmt.Sprintf("created a challenge with %d tasks", len(lines)))
	return item.Tag, nil
}

// CreateContest draws one row per side, stacked around center. Unnamed
// sides become "Side i" and box counts of zero or less become 3.
func (c *Challenges) CreateContest(ctx context.Context, center scenesync.Point, sides []Side) ([]scenesync.Tag, error) {
	if len(sides) == 0 {
		return nil, fmt.Errorf("%w: contest has no sides", scenesync.ErrPrecondition)
	}
	cfg, err := LoadChallengeConfig(ctx, c.table.settings)
	if err != nil {
		return nil, err
	}

	group := scenesync.NewTag("contest", uuid.NewString())
	at := scenesync.Point{X: center.X - 400, Y: center.Y - len(sides)*30}
	style := checklistStyle(cfg.ContestFontFamily, cfg.ContestFontSize, cfg.ContestAddBackground, cfg.ContestBackgroundColor)
	items := make([]scenesync.DisplayItem, 0, len(sides))
	tags := make([]scenesync.Tag, 0, len(sides))
	for i, side := range sides {
		name := strings.TrimSpace(side.Name)
		if name == "" {
			name = fmt.Sprintf("Side %d", i+1)
		}
		boxes := side.Boxes
		if boxes <= 0 {
			boxes = defaultContestBoxes
		}
		tag := group.Child(fmt.Sprintf("side%d", i+1))
		text, err := c.table.text(tag, "contestLineFormat", cfg.ContestLineFormat, map[string]any{"name": name, "boxes": boxes})
		if err != nil {
			return nil, err
		}
		items = append(items, scenesync.DisplayItem{
			Tag:      tag,
			Kind:     scenesync.KindCheckbox,
			Position: at,
			Size:     scenesync.Size{Width: contestWidth, Height: contestRowHeight},
			Text:     text,
			Style:    style,
		})
		tags = append(tags, tag)
		at.Y += contestRowHeight + contestRowGap
	}
	if _, err := c.table.syncer.Sync(ctx, c.table.scene, group, items); err != nil {
		return nil, err
	}
	return tags, nil
}

// TickNext checks the first empty box of the checklist tagged tag. It
// returns false when every box is already checked.
func (c *Challenges) TickNext(ctx context.Context, tag scenesync.Tag) (bool, error) {
	obj, ok, err := c.table.syncer.Lookup(ctx, c.table.scene, tag)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: no checklist tagged %q", scenesync.ErrPrecondition, tag)
	}
	if !strings.Contains(obj.Text, format.BoxEmpty) {
		c.table.notifier.Info(ctx, "every item in this list is already checked")
		return false, nil
	}
	desired := obj.Desired()
	desired.Text = strings.Replace(obj.Text, format.BoxEmpty, format.BoxChecked, 1)
	plan := scenesync.Plan{Update: []scenesync.Update{{
		Object:  obj,
		Desired: desired,
		Changes: scenesync.Diff(obj, desired),
	}}}
	if _, err := c.table.syncer.Apply(ctx, c.table.scene, plan); err != nil {
		return false, err
	}
	return true, nil
}

func checklistStyle(family string, size int, fill bool, color string) scenesync.Style {
	style := scenesync.Style{
		FontFamily: family,
		FontSize:   size,
		TextColor:  "#000000",
	}
	if fill {
		style.Fill = true
		style.FillColor = color
	}
	return style
}

package fate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/format"
	"github.com/goliatone/go-scenesync/pkg/settings"
)

// Table binds the campaign, the scene object store and the settings journal
// of one scene.
type Table struct {
	scene    string
	campaign Campaign
	syncer   *scenesync.Syncer
	settings *settings.Resolver
	format   *format.Formatter
	notifier Notifier
	prompter Prompter
}

// Option configures a Table.
type Option func(*Table)

// WithFormatter replaces the default expr formatter.
func WithFormatter(f *format.Formatter) Option {
	return func(t *Table) {
		if f != nil {
			t.format = f
		}
	}
}

// WithNotifier routes notifications. The default writes to the logger.
func WithNotifier(n Notifier) Option {
	return func(t *Table) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithPrompter installs the prompt surface used by interactive operations.
func WithPrompter(p Prompter) Option {
	return func(t *Table) {
		t.prompter = p
	}
}

// NewTable returns a Table operating on scene.
func NewTable(scene string, campaign Campaign, syncer *scenesync.Syncer, resolver *settings.Resolver, opts ...Option) (*Table, error) {
	if campaign == nil || syncer == nil || resolver == nil {
		return nil, fmt.Errorf("fate: campaign, syncer and settings are required")
	}
	t := &Table{
		scene:    scene,
		campaign: campaign,
		syncer:   syncer,
		settings: resolver,
		notifier: LogNotifier{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.format == nil {
		f, err := format.New()
		if err != nil {
			return nil, err
		}
		t.format = f
	}
	return t, nil
}

// Scene returns the scene id.
func (t *Table) Scene() string {
	return t.scene
}

// Points returns the fate-point manager.
func (t *Table) Points() *PointsManager {
	return &PointsManager{table: t}
}

// Aspects returns the situation-aspect board.
func (t *Table) Aspects() *AspectBoard {
	return &AspectBoard{table: t}
}

// Panels returns the player panel synchroniser.
func (t *Table) Panels() *PanelSync {
	return &PanelSync{table: t}
}

// Roster assigns the campaign characters to SlotNames.
func (t *Table) Roster(ctx context.Context) (Roster, error) {
	users, err := t.campaign.Users(ctx)
	if err != nil {
		return Roster{}, err
	}
	chars, err := t.campaign.Characters(ctx)
	if err != nil {
		return Roster{}, err
	}
	return BuildRoster(users, chars, SlotNames), nil
}

func (t *Table) activeGM(ctx context.Context) (User, error) {
	users, err := t.campaign.Users(ctx)
	if err != nil {
		return User{}, err
	}
	gm, ok := ActiveGM(users)
	if !ok {
		return User{}, fmt.Errorf("%w: no active GM", scenesync.ErrPrecondition)
	}
	return gm, nil
}

// text renders the expression stored under setting for the widget tag.
func (t *Table) text(tag scenesync.Tag, setting, expr string, vars map[string]any) (string, error) {
	site := format.Site{Scene: t.scene, Tag: string(tag), Setting: setting}
	out, err := t.format.Text(site, expr, vars)
	if err != nil {
		return "", fmt.Errorf("fate: render: %w", err)
	}
	return out, nil
}

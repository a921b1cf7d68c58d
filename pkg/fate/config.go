package fate

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/settings"
)

// DefaultJournal is the settings journal holding every page.
const DefaultJournal = "Macro Settings"

// SlotNames are the player panel slots in assignment order.
var SlotNames = []string{"Player 1", "Player 2", "Player 3"}

const (
	PagePoints    = "FPManager"
	PageAspects   = "SitAspectManager"
	PagePanels    = "PlayerWidgetManager"
	PageChallenge = "ChallengeContestManager"
)

func numberField(key, label string, def int) settings.Field {
	return settings.Field{Key: key, Label: label, Type: settings.FieldNumber, Default: def}
}

func textField(key, label, def string) settings.Field {
	return settings.Field{Key: key, Label: label, Type: settings.FieldText, Default: def}
}

func exprField(key, label, def string) settings.Field {
	return settings.Field{Key: key, Label: label, Type: settings.FieldExpr, Default: def}
}

func pointFields(prefix, label string, p scenesync.Point) []settings.Field {
	return []settings.Field{
		numberField(prefix+"X", label+" X", p.X),
		numberField(prefix+"Y", label+" Y", p.Y),
	}
}

// slotKey returns the page key of a per-slot setting, e.g. player2PortraitX.
func slotKey(index int, key string) string {
	r, size := utf8.DecodeRuneInString(key)
	return fmt.Sprintf("player%d%c%s", index+1, unicode.ToUpper(r), key[size:])
}

// slotValues extracts the settings of slot index with the slot prefix
// removed, e.g. player2PortraitX becomes portraitX.
func slotValues(values settings.Record, index int) settings.Record {
	prefix := fmt.Sprintf("player%d", index+1)
	out := settings.Record{}
	for key, value := range values {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		if !unicode.IsUpper(r) {
			continue
		}
		out[string(unicode.ToLower(r))+rest[size:]] = value
	}
	return out
}

// PointsConfig lays out the fate-point pools.
type PointsConfig struct {
	FatePointImage string            `json:"fatePointImage"`
	GMX            int               `json:"gmX"`
	GMY            int               `json:"gmY"`
	StepX          int               `json:"stepX"`
	StepY          int               `json:"stepY"`
	TileWidth      int               `json:"tileWidth"`
	TileHeight     int               `json:"tileHeight"`
	Players        []scenesync.Point `json:"-"`
}

// GMAnchor is the position of the first GM marker.
func (c PointsConfig) GMAnchor() scenesync.Point {
	return scenesync.Point{X: c.GMX, Y: c.GMY}
}

// TileSize is the size of every marker.
func (c PointsConfig) TileSize() scenesync.Size {
	return scenesync.Size{Width: c.TileWidth, Height: c.TileHeight}
}

// PlayerAnchor returns the first marker position of slot index.
func (c PointsConfig) PlayerAnchor(index int) (scenesync.Point, bool) {
	if index < 0 || index >= len(c.Players) {
		return scenesync.Point{}, false
	}
	return c.Players[index], true
}

var defaultPlayerAnchors = []scenesync.Point{{X: 1185, Y: 708}, {X: 2145, Y: 740}, {X: 3095, Y: 695}}

// DefaultPointsConfig mirrors the defaults of PointsPage.
var DefaultPointsConfig = PointsConfig{
	GMX: 3000, GMY: 2220,
	StepX: 20, StepY: 20,
	TileWidth: 70, TileHeight: 70,
	Players: defaultPlayerAnchors,
}

// PointsPage declares the fate-point settings.
var PointsPage = func() settings.Page {
	fields := []settings.Field{
		{Key: "fatePointImage", Label: "Fate point image", Type: settings.FieldImage, Default: ""},
	}
	for i, p := range defaultPlayerAnchors {
		fields = append(fields, pointFields(fmt.Sprintf("player%d", i+1), SlotNames[i], p)...)
	}
	fields = append(fields,
		numberField("gmX", "GM X", DefaultPointsConfig.GMX),
		numberField("gmY", "GM Y", DefaultPointsConfig.GMY),
		numberField("stepX", "Marker step X", DefaultPointsConfig.StepX),
		numberField("stepY", "Marker step Y", DefaultPointsConfig.StepY),
		numberField("tileWidth", "Marker width", DefaultPointsConfig.TileWidth),
		numberField("tileHeight", "Marker height", DefaultPointsConfig.TileHeight),
	)
	return settings.Page{Name: PagePoints, Label: "Fate point manager", Fields: fields}
}()

var anchorPage = settings.Page{Name: PagePoints, Fields: []settings.Field{
	{Key: "x", Type: settings.FieldNumber},
	{Key: "y", Type: settings.FieldNumber},
}}

// AspectsConfig lays out the situation-aspect widget.
type AspectsConfig struct {
	X          int    `json:"widgetPositionX"`
	Y          int    `json:"widgetPositionY"`
	Width      int    `json:"widgetWidth"`
	Height     int    `json:"widgetHeight"`
	FontFamily string `json:"widgetFontFamily"`
	FontSize   int    `json:"widgetFontSize"`
	LineFormat string `json:"lineFormat"`
}

// DefaultAspectsConfig mirrors the defaults of AspectsPage.
var DefaultAspectsConfig = AspectsConfig{
	X: 960, Y: 1415, Width: 500, Height: 800,
	FontFamily: "BadScript", FontSize: 32,
	LineFormat: `name + " (" + string(invokes) + ")"`,
}

// AspectsPage declares the situation-aspect widget settings.
var AspectsPage = settings.Page{Name: PageAspects, Label: "Situation aspects", Fields: []settings.Field{
	numberField("widgetPositionX", "Widget X", DefaultAspectsConfig.X),
	numberField("widgetPositionY", "Widget Y", DefaultAspectsConfig.Y),
	numberField("widgetWidth", "Widget width", DefaultAspectsConfig.Width),
	numberField("widgetHeight", "Widget height", DefaultAspectsConfig.Height),
	textField("widgetFontFamily", "Widget font", DefaultAspectsConfig.FontFamily),
	numberField("widgetFontSize", "Widget font size", DefaultAspectsConfig.FontSize),
	exprField("lineFormat", "Aspect line", DefaultAspectsConfig.LineFormat),
}}

// PanelsConfig styles the player panels.
type PanelsConfig struct {
	PortraitWidth     int    `json:"portraitSizeWidth"`
	PortraitHeight    int    `json:"portraitSizeHeight"`
	NameWidth         int    `json:"nameSizeWidth"`
	NameHeight        int    `json:"nameSizeHeight"`
	NameFontSize      int    `json:"nameFontSize"`
	AspectsWidth      int    `json:"aspectsSizeWidth"`
	AspectsHeight     int    `json:"aspectsSizeHeight"`
	AspectsFontSize   int    `json:"aspectsFontSize"`
	FontFamily        string `json:"fontFamily"`
	SkillNameWidth    int    `json:"skillNameSizeWidth"`
	SkillNameHeight   int    `json:"skillNameSizeHeight"`
	SkillNameFont     string `json:"skillNameFont"`
	SkillNameFontSize int    `json:"skillNameFontSize"`
	SkillValueWidth   int    `json:"skillValueSizeWidth"`
	SkillValueHeight  int    `json:"skillValueSizeHeight"`
	SkillValueFont    string `json:"skillValueFont"`
	SkillValueSize    int    `json:"skillValueFontSize"`
	SkillRowStep      int    `json:"skillRowStep"`
	StressBoxWidth    int    `json:"stressBoxSizeWidth"`
	StressBoxHeight   int    `json:"stressBoxSizeHeight"`
	StressSpacingX    int    `json:"stressSpacingX"`
	StressFontFamily  string `json:"stressFontFamily"`
	StressFontSize    int    `json:"stressFontSize"`
	StressLineWidth   int    `json:"stressLineWidth"`
	StressTrack       string `json:"stressTrack"`
	AspectsFormat     string `json:"aspectsFormat"`
	SkillNamesFormat  string `json:"skillNamesFormat"`
	SkillValueFormat  string `json:"skillValueFormat"`
	StressBoxFormat   string `json:"stressBoxFormat"`

	Slots []SlotLayout `json:"-"`
}

// SlotLayout positions the parts of one player panel.
type SlotLayout struct {
	Portrait   scenesync.Point
	Name       scenesync.Point
	Aspects    scenesync.Point
	Stress     scenesync.Point
	SkillName  scenesync.Point
	SkillValue scenesync.Point
}

type slotLayoutValues struct {
	PortraitX   int `json:"portraitX"`
	PortraitY   int `json:"portraitY"`
	NameX       int `json:"nameX"`
	NameY       int `json:"nameY"`
	AspectsX    int `json:"aspectsX"`
	AspectsY    int `json:"aspectsY"`
	StressX     int `json:"stressStartX"`
	StressY     int `json:"stressStartY"`
	SkillNameX  int `json:"skillNameX"`
	SkillNameY  int `json:"skillNameY"`
	SkillValueX int `json:"skillValueX"`
	SkillValueY int `json:"skillValueY"`
}

func (v slotLayoutValues) layout() SlotLayout {
	return SlotLayout{
		Portrait:   scenesync.Point{X: v.PortraitX, Y: v.PortraitY},
		Name:       scenesync.Point{X: v.NameX, Y: v.NameY},
		Aspects:    scenesync.Point{X: v.AspectsX, Y: v.AspectsY},
		Stress:     scenesync.Point{X: v.StressX, Y: v.StressY},
		SkillName:  scenesync.Point{X: v.SkillNameX, Y: v.SkillNameY},
		SkillValue: scenesync.Point{X: v.SkillValueX, Y: v.SkillValueY},
	}
}

func (l SlotLayout) values() slotLayoutValues {
	return slotLayoutValues{
		PortraitX: l.Portrait.X, PortraitY: l.Portrait.Y,
		NameX: l.Name.X, NameY: l.Name.Y,
		AspectsX: l.Aspects.X, AspectsY: l.Aspects.Y,
		StressX: l.Stress.X, StressY: l.Stress.Y,
		SkillNameX: l.SkillName.X, SkillNameY: l.SkillName.Y,
		SkillValueX: l.SkillValue.X, SkillValueY: l.SkillValue.Y,
	}
}

var defaultSlotLayouts = []SlotLayout{
	{
		Portrait: scenesync.Point{X: 880, Y: 645}, Name: scenesync.Point{X: 1150, Y: 630},
		Aspects: scenesync.Point{X: 1310, Y: 710}, Stress: scenesync.Point{X: 890, Y: 940},
		SkillName: scenesync.Point{X: 871, Y: 986}, SkillValue: scenesync.Point{X: 1219, Y: 986},
	},
	{
		Portrait: scenesync.Point{X: 1840, Y: 680}, Name: scenesync.Point{X: 2110, Y: 663},
		Aspects: scenesync.Point{X: 2270, Y: 745}, Stress: scenesync.Point{X: 1850, Y: 970},
		SkillName: scenesync.Point{X: 1830, Y: 1020}, SkillValue: scenesync.Point{X: 2178, Y: 1020},
	},
	{
		Portrait: scenesync.Point{X: 2790, Y: 635}, Name: scenesync.Point{X: 3060, Y: 620},
		Aspects: scenesync.Point{X: 3220, Y: 700}, Stress: scenesync.Point{X: 2802, Y: 927},
		SkillName: scenesync.Point{X: 2780, Y: 975}, SkillValue: scenesync.Point{X: 3128, Y: 975},
	},
}

// DefaultPanelsConfig mirrors the defaults of PanelsPage.
var DefaultPanelsConfig = PanelsConfig{
	PortraitWidth: 270, PortraitHeight: 270,
	NameWidth: 460, NameHeight: 40, NameFontSize: 26,
	AspectsWidth: 275, AspectsHeight: 450, AspectsFontSize: 20,
	FontFamily:     "Montserrat",
	SkillNameWidth: 350, SkillNameHeight: 50, SkillNameFont: "Montserrat", SkillNameFontSize: 16,
	SkillValueWidth: 50, SkillValueHeight: 50, SkillValueFont: "Bruno Ace", SkillValueSize: 30,
	SkillRowStep:   48,
	StressBoxWidth: 35, StressBoxHeight: 35, StressSpacingX: 40,
	StressFontFamily: "Bruno Ace", StressFontSize: 24, StressLineWidth: 4,
	StressTrack:      "Physical Stress",
	AspectsFormat:    `lines(aspects)`,
	SkillNamesFormat: `join(names, ", ")`,
	SkillValueFormat: `signed(rank)`,
	StressBoxFormat:  `mark(checked)`,
	Slots:            defaultSlotLayouts,
}

// PanelsPage declares the player panel settings.
var PanelsPage = func() settings.Page {
	d := DefaultPanelsConfig
	fields := []settings.Field{
		numberField("portraitSizeWidth", "Portrait width", d.PortraitWidth),
		numberField("portraitSizeHeight", "Portrait height", d.PortraitHeight),
		numberField("nameSizeWidth", "Name width", d.NameWidth),
		numberField("nameSizeHeight", "Name height", d.NameHeight),
		numberField("nameFontSize", "Name font size", d.NameFontSize),
		numberField("aspectsSizeWidth", "Aspects width", d.AspectsWidth),
		numberField("aspectsSizeHeight", "Aspects height", d.AspectsHeight),
		numberField("aspectsFontSize", "Aspects font size", d.AspectsFontSize),
		textField("fontFamily", "Font", d.FontFamily),
		numberField("skillNameSizeWidth", "Skill name width", d.SkillNameWidth),
		numberField("skillNameSizeHeight", "Skill name height", d.SkillNameHeight),
		textField("skillNameFont", "Skill name font", d.SkillNameFont),
		numberField("skillNameFontSize", "Skill name font size", d.SkillNameFontSize),
		numberField("skillValueSizeWidth", "Skill value width", d.SkillValueWidth),
		numberField("skillValueSizeHeight", "Skill value height", d.SkillValueHeight),
		textField("skillValueFont", "Skill value font", d.SkillValueFont),
		numberField("skillValueFontSize", "Skill value font size", d.SkillValueSize),
		numberField("skillRowStep", "Skill row step", d.SkillRowStep),
		numberField("stressBoxSizeWidth", "Stress box width", d.StressBoxWidth),
		numberField("stressBoxSizeHeight", "Stress box height", d.StressBoxHeight),
		numberField("stressSpacingX", "Stress box spacing", d.StressSpacingX),
		textField("stressFontFamily", "Stress font", d.StressFontFamily),
		numberField("stressFontSize", "Stress font size", d.StressFontSize),
		numberField("stressLineWidth", "Stress line width", d.StressLineWidth),
		textField("stressTrack", "Stress track shown", d.StressTrack),
		exprField("aspectsFormat", "Aspects text", d.AspectsFormat),
		exprField("skillNamesFormat", "Skill names text", d.SkillNamesFormat),
		exprField("skillValueFormat", "Skill value text", d.SkillValueFormat),
		exprField("stressBoxFormat", "Stress box text", d.StressBoxFormat),
	}
	for i, l := range defaultSlotLayouts {
		parts := []struct {
			key, label string
			at         scenesync.Point
		}{
			{"portrait", "portrait", l.Portrait},
			{"name", "name", l.Name},
			{"aspects", "aspects", l.Aspects},
			{"stressStart", "stress", l.Stress},
			{"skillName", "skill name", l.SkillName},
			{"skillValue", "skill value", l.SkillValue},
		}
		for _, part := range parts {
			fields = append(fields, pointFields(slotKey(i, part.key), SlotNames[i]+" "+part.label, part.at)...)
		}
	}
	return settings.Page{Name: PagePanels, Label: "Player panels", Fields: fields}
}()

var slotLayoutPage = settings.Page{Name: PagePanels, Fields: func() []settings.Field {
	keys := []string{"portrait", "name", "aspects", "stressStart", "skillName", "skillValue"}
	var out []settings.Field
	for _, k := range keys {
		out = append(out,
			settings.Field{Key: k + "X", Type: settings.FieldNumber},
			settings.Field{Key: k + "Y", Type: settings.FieldNumber},
		)
	}
	return out
}()}

// ChallengeConfig styles challenge checklists and contest rows.
type ChallengeConfig struct {
	ChallengeFontFamily      string `json:"challengeFontFamily"`
	ChallengeFontSize        int    `json:"challengeFontSize"`
	ChallengeAddBackground   bool   `json:"challengeAddBackground"`
	ChallengeBackgroundColor string `json:"challengeBackgroundColor"`
	ChallengeLineFormat      string `json:"challengeLineFormat"`
	ContestFontFamily        string `json:"contestFontFamily"`
	ContestFontSize          int    `json:"contestFontSize"`
	ContestAddBackground     bool   `json:"contestAddBackground"`
	ContestBackgroundColor   string `json:"contestBackgroundColor"`
	ContestLineFormat        string `json:"contestLineFormat"`
}

// DefaultChallengeConfig mirrors the defaults of ChallengePage.
var DefaultChallengeConfig = ChallengeConfig{
	ChallengeFontFamily:      "Montserrat",
	ChallengeFontSize:        40,
	ChallengeBackgroundColor: "#ffffff",
	ChallengeLineFormat:      `box(done) + " " + text + " +" + string(difficulty)`,
	ContestFontFamily:        "Montserrat",
	ContestFontSize:          40,
	ContestBackgroundColor:   "#ffffff",
	ContestLineFormat:        `name + ": " + boxes(boxes)`,
}

// ChallengePage declares the challenge and contest settings.
var ChallengePage = settings.Page{Name: PageChallenge, Label: "Challenges and contests", Fields: []settings.Field{
	textField("challengeFontFamily", "Challenge font", DefaultChallengeConfig.ChallengeFontFamily),
	numberField("challengeFontSize", "Challenge font size", DefaultChallengeConfig.ChallengeFontSize),
	{Key: "challengeAddBackground", Label: "Challenge background", Type: settings.FieldBool, Default: "false"},
	{Key: "challengeBackgroundColor", Label: "Challenge background color", Type: settings.FieldColor, Default: DefaultChallengeConfig.ChallengeBackgroundColor},
	exprField("challengeLineFormat", "Challenge line", DefaultChallengeConfig.ChallengeLineFormat),
	textField("contestFontFamily", "Contest font", DefaultChallengeConfig.ContestFontFamily),
	numberField("contestFontSize", "Contest font size", DefaultChallengeConfig.ContestFontSize),
	{Key: "contestAddBackground", Label: "Contest background", Type: settings.FieldBool, Default: "false"},
	{Key: "contestBackgroundColor", Label: "Contest background color", Type: settings.FieldColor, Default: DefaultChallengeConfig.ContestBackgroundColor},
	exprField("contestLineFormat", "Contest row", DefaultChallengeConfig.ContestLineFormat),
}}

// Pages lists every settings page of the package.
func Pages() []settings.Page {
	return []settings.Page{PointsPage, AspectsPage, PanelsPage, ChallengePage}
}

// LoadPointsConfig resolves and decodes the fate-point settings.
func LoadPointsConfig(ctx context.Context, r *settings.Resolver) (PointsConfig, error) {
	resolved, err := r.Resolve(ctx, PointsPage, nil)
	if err != nil {
		return PointsConfig{}, err
	}
	cfg, err := settings.DecodeResolved(resolved, DefaultPointsConfig)
	if err != nil {
		return PointsConfig{}, err
	}
	cfg.Players = make([]scenesync.Point, len(defaultPlayerAnchors))
	for i, def := range defaultPlayerAnchors {
		p, err := settings.Decode(anchorPage, slotValues(resolved.Values, i), struct {
			X int `json:"x"`
			Y int `json:"y"`
		}{X: def.X, Y: def.Y})
		if err != nil {
			return PointsConfig{}, err
		}
		cfg.Players[i] = scenesync.Point{X: p.X, Y: p.Y}
	}
	return cfg, nil
}

// LoadAspectsConfig resolves and decodes the situation-aspect settings.
func LoadAspectsConfig(ctx context.Context, r *settings.Resolver) (AspectsConfig, error) {
	resolved, err := r.Resolve(ctx, AspectsPage, nil)
	if err != nil {
		return AspectsConfig{}, err
	}
	return settings.DecodeResolved(resolved, DefaultAspectsConfig)
}

// LoadPanelsConfig resolves and decodes the player panel settings.
func LoadPanelsConfig(ctx context.Context, r *settings.Resolver) (PanelsConfig, error) {
	resolved, err := r.Resolve(ctx, PanelsPage, nil)
	if err != nil {
		return PanelsConfig{}, err
	}
	cfg, err := settings.DecodeResolved(resolved, DefaultPanelsConfig)
	if err != nil {
		return PanelsConfig{}, err
	}
	cfg.Slots = make([]SlotLayout, len(defaultSlotLayouts))
	for i, def := range defaultSlotLayouts {
		v, err := settings.Decode(slotLayoutPage, slotValues(resolved.Values, i), def.values())
		if err != nil {
			return PanelsConfig{}, err
		}
		cfg.Slots[i] = v.layout()
	}
	return cfg, nil
}

// LoadChallengeConfig resolves and decodes the challenge settings.
func LoadChallengeConfig(ctx context.Context, r *settings.Resolver) (ChallengeConfig, error) {
	resolved, err := r.Resolve(ctx, ChallengePage, nil)
	if err != nil {
		return ChallengeConfig{}, err
	}
	return settings.DecodeResolved(resolved, DefaultChallengeConfig)
}

package scenesync

import (
	"context"
	"strings"
)

// Kind identifies how a display item is rendered.
type Kind string

const (
	// KindText is a free text label rendered as a drawing.
	KindText Kind = "text"
	// KindImage is an image rendered as a tile.
	KindImage Kind = "image"
	// KindCheckbox is a text drawing holding one or more checkbox rows.
	KindCheckbox Kind = "checkbox"
)

// Collection returns the host collection that stores objects of this kind.
func (k Kind) Collection() Collection {
	if k == KindImage {
		return CollectionTile
	}
	return CollectionDrawing
}

// Collection names a host document collection inside a scene.
type Collection string

const (
	CollectionTile    Collection = "Tile"
	CollectionDrawing Collection = "Drawing"
)

// Tag correlates a desired display item with a persisted object across
// synchronisation passes. Tags are opaque; uniqueness within a scene is the
// caller's responsibility.
type Tag string

const tagSeparator = "/"

// NewTag joins a logical role with index parts, e.g. NewTag("panel",
// "Player 1", "portrait") yields "panel/Player 1/portrait". Empty parts are
// skipped.
func NewTag(role string, parts ...string) Tag {
	segments := make([]string, 0, len(parts)+1)
	if role = strings.TrimSpace(role); role != "" {
		segments = append(segments, role)
	}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return Tag(strings.Join(segments, tagSeparator))
}

// Child appends parts to the tag.
func (t Tag) Child(parts ...string) Tag {
	return NewTag(string(t), parts...)
}

// Within reports whether t equals group or is nested below it.
func (t Tag) Within(group Tag) bool {
	if group == "" {
		return true
	}
	if t == group {
		return true
	}
	return strings.HasPrefix(string(t), string(group)+tagSeparator)
}

func (t Tag) String() string {
	return string(t)
}

// Point is a canvas position in pixels.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Scale returns p multiplied by n on both axes.
func (p Point) Scale(n int) Point {
	return Point{X: p.X * n, Y: p.Y * n}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Style carries the visual properties of text drawings. Tiles ignore it.
type Style struct {
	FontFamily  string `json:"font_family,omitempty"`
	FontSize    int    `json:"font_size,omitempty"`
	FontWeight  int    `json:"font_weight,omitempty"`
	TextColor   string `json:"text_color,omitempty"`
	StrokeWidth int    `json:"stroke_width,omitempty"`
	StrokeColor string `json:"stroke_color,omitempty"`
	Fill        bool   `json:"fill,omitempty"`
	FillColor   string `json:"fill_color,omitempty"`
	Align       string `json:"align,omitempty"`
}

// DisplayItem is the desired state of one widget. It is recomputed on every
// pass from upstream data and never persisted.
type DisplayItem struct {
	Tag         Tag
	Kind        Kind
	Position    Point
	Size        Size
	Text        string
	Image       string
	Style       Style
	Annotations map[string]string
}

// Collection returns the collection the item is stored in.
func (d DisplayItem) Collection() Collection {
	return d.Kind.Collection()
}

// ManagedObject is a host-rendered tile or drawing carrying a tag.
type ManagedObject struct {
	ID          string
	Collection  Collection
	Tag         Tag
	Kind        Kind
	Position    Point
	Size        Size
	Text        string
	Image       string
	Style       Style
	Annotations map[string]string
}

// Desired projects the object back into the display item that would produce
// it. Useful for fakes and for idempotence checks.
func (o ManagedObject) Desired() DisplayItem {
	return DisplayItem{
		Tag:         o.Tag,
		Kind:        o.Kind,
		Position:    o.Position,
		Size:        o.Size,
		Text:        o.Text,
		Image:       o.Image,
		Style:       o.Style,
		Annotations: cloneAnnotations(o.Annotations),
	}
}

// Filter narrows a List call. Zero fields match everything.
type Filter struct {
	Tag        Tag
	TagPrefix  Tag
	Collection Collection
}

// Match reports whether obj satisfies the filter.
func (f Filter) Match(obj ManagedObject) bool {
	if f.Tag != "" && obj.Tag != f.Tag {
		return false
	}
	if f.TagPrefix != "" && !obj.Tag.Within(f.TagPrefix) {
		return false
	}
	if f.Collection != "" && obj.Collection != f.Collection {
		return false
	}
	return true
}

// ObjectStore is the port onto the host's scene document store. Creates and
// deletes are set-oriented; implementations must return List results in
// insertion order.
type ObjectStore interface {
	Query(ctx context.Context, scene string, tag Tag) (ManagedObject, bool, error)
	List(ctx context.Context, scene string, filter Filter) ([]ManagedObject, error)
	CreateMany(ctx context.Context, scene string, collection Collection, items []DisplayItem) ([]string, error)
	UpdateOne(ctx context.Context, scene string, id string, patch DisplayItem) error
	DeleteMany(ctx context.Context, scene string, collection Collection, ids []string) error
}

func cloneAnnotations(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

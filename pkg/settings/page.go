package settings

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType names the editor used for a field. It also drives validation and
// decoding of string-serialised values.
type FieldType string

const (
	FieldNumber FieldType = "number"
	FieldText   FieldType = "text"
	FieldImage  FieldType = "image"
	FieldBool   FieldType = "bool"
	FieldColor  FieldType = "color"
	FieldExpr   FieldType = "expr"
)

// Field describes one setting of a page.
type Field struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// Page is a named group of fields stored as one record.
type Page struct {
	Name   string  `json:"name" yaml:"name"`
	Label  string  `json:"label" yaml:"label"`
	Fields []Field `json:"fields" yaml:"fields"`
}

var (
	ErrPageNameRequired = errors.New("settings: page name is required")
	ErrFieldKeyRequired = errors.New("settings: field key is required")
	ErrDuplicateField   = errors.New("settings: field keys must be unique")
	ErrUnknownFieldType = errors.New("settings: unknown field type")
)

// Validate checks the page definition itself.
func (p Page) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrPageNameRequired
	}
	seen := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		if strings.TrimSpace(f.Key) == "" {
			return fmt.Errorf("%w: page %q", ErrFieldKeyRequired, p.Name)
		}
		if _, ok := seen[f.Key]; ok {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateField, p.Name, f.Key)
		}
		seen[f.Key] = struct{}{}
		switch f.Type {
		case FieldNumber, FieldText, FieldImage, FieldBool, FieldColor, FieldExpr:
		default:
			return fmt.Errorf("%w: %s.%s has %q", ErrUnknownFieldType, p.Name, f.Key, f.Type)
		}
	}
	return nil
}

// Field returns the field declared under key.
func (p Page) Field(key string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns a record holding every field default.
func (p Page) Defaults() Record {
	out := make(Record, len(p.Fields))
	for _, f := range p.Fields {
		if f.Default != nil {
			out[f.Key] = f.Default
		}
	}
	return out
}

// Merge returns a page with the fields of other appended. Fields already
// declared keep their definition.
func (p Page) Merge(other Page) Page {
	out := Page{Name: p.Name, Label: p.Label, Fields: append([]Field(nil), p.Fields...)}
	for _, f := range other.Fields {
		if _, ok := p.Field(f.Key); !ok {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

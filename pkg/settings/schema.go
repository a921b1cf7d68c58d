package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	numberPattern = `^\s*-?[0-9]+(\.[0-9]+)?\s*$`
	boolPattern   = `^(?i:true|false)$`
	colorPattern  = `^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`
)

// ErrInvalidPage wraps schema validation failures of a stored or saved page.
var ErrInvalidPage = errors.New("settings: page does not match its schema")

// JSONSchema returns the draft 2020-12 schema of records of page. Numbers and
// booleans may be stored as strings because host forms save them that way.
// Unknown keys are allowed so pages written by older versions still load.
func JSONSchema(page Page) map[string]any {
	properties := make(map[string]any, len(page.Fields))
	var required []string
	for _, f := range page.Fields {
		properties[f.Key] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Key)
		}
	}
	sort.Strings(required)

	doc := map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                page.Name,
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if page.Label != "" {
		doc["description"] = page.Label
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func fieldSchema(f Field) map[string]any {
	out := map[string]any{}
	if f.Label != "" {
		out["title"] = f.Label
	}
	switch f.Type {
	case FieldNumber:
		out["type"] = []string{"number", "string"}
		out["pattern"] = numberPattern
	case FieldBool:
		out["type"] = []string{"boolean", "string"}
		out["pattern"] = boolPattern
	case FieldColor:
		out["type"] = "string"
		out["pattern"] = colorPattern
	default:
		out["type"] = "string"
	}
	if f.Required && f.Type != FieldNumber && f.Type != FieldBool {
		out["minLength"] = 1
	}
	return out
}

// Validator checks records against compiled page schemas. Compiled schemas
// are cached by page name.
type Validator struct {
	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{cache: map[string]*jsonschema.Schema{}}
}

// Compile returns the compiled schema of page.
func (v *Validator) Compile(page Page) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache == nil {
		v.cache = map[string]*jsonschema.Schema{}
	}
	if s, ok := v.cache[page.Name]; ok {
		return s, nil
	}
	raw, err := json.Marshal(JSONSchema(page))
	if err != nil {
		return nil, err
	}
	url := "mem://settings/" + strings.ReplaceAll(page.Name, " ", "_") + ".schema.json"
	s, err := jsonschema.CompileString(url, string(raw))
	if err != nil {
		return nil, fmt.Errorf("settings: compile schema for %q: %w", page.Name, err)
	}
	v.cache[page.Name] = s
	return s, nil
}

// Validate reports whether values satisfy the schema of page.
func (v *Validator) Validate(page Page, values Record) error {
	s, err := v.Compile(page)
	if err != nil {
		return err
	}
	doc, err := values.normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPage, page.Name, err)
	}
	return nil
}

package settings

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"

	"github.com/goliatone/go-scenesync/internal/hydrate"
)

// Decode converts resolved values into T. String-serialised numbers and
// booleans are coerced according to the page field types; number fields are
// pixel sizes and counts and decode as integers. Every zero field of the
// result is then filled from defaults, so 0, "" and unparsable values fall
// back to the default just like a missing key. Booleans are exempt: an
// explicit false stays false.
func Decode[T any](page Page, values Record, defaults T) (T, error) {
	fields := make(map[string]hydrate.Coercion, len(page.Fields))
	for _, f := range page.Fields {
		switch f.Type {
		case FieldNumber:
			fields[f.Key] = hydrate.CoerceInt
		case FieldBool:
			fields[f.Key] = hydrate.CoerceBool
		default:
			fields[f.Key] = hydrate.CoerceString
		}
	}
	decoder := hydrate.NewDecoder(hydrate.WithCoercion[T](fields), hydrate.WithPreHook[T](dropNulls))
	out, err := decoder.Decode(hydrate.Context{Page: page.Name}, map[string]any(values))
	if err != nil {
		var zero T
		return zero, err
	}
	if err := mergo.Merge(&out, defaults, mergo.WithTransformers(keepBools{})); err != nil {
		var zero T
		return zero, fmt.Errorf("settings: apply defaults for %q: %w", page.Name, err)
	}
	return out, nil
}

// DecodeResolved decodes r with defaults.
func DecodeResolved[T any](r *Resolved, defaults T) (T, error) {
	return Decode(r.Page, r.Values, defaults)
}

func dropNulls(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	for k, v := range payload {
		if v == nil {
			delete(payload, k)
		}
	}
	return payload, nil
}

type keepBools struct{}

func (keepBools) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t.Kind() != reflect.Bool {
		return nil
	}
	return func(reflect.Value, reflect.Value) error { return nil }
}

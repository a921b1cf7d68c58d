// Package hydrate turns flat settings records into typed structs.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Context identifies the settings page being decoded.
type Context struct {
	Journal string
	Page    string
}

func (c Context) String() string {
	if c.Journal == "" {
		return c.Page
	}
	return c.Journal + "/" + c.Page
}

// PreHook lets callers normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded struct.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts flat payloads into T via JSON.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects payload keys T does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithCoercion converts string-serialised values before decoding.
func WithCoercion[T any](fields map[string]Coercion) DecoderOption[T] {
	return WithPreHook[T](Coerce(fields))
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying the configured hooks. The payload
// is copied first so hooks may mutate it freely.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for page %q", ctx)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for page %q: %w", ctx, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for page %q failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal payload for page %q: %w", ctx, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode page %q: %w", ctx, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for page %q failed: %w", ctx, err)
		}
	}
	return result, nil
}

// Coercion names the target type of a string-serialised value.
type Coercion int

const (
	// CoerceNumber parses strings as numbers. Unparsable values are removed
	// so the field falls back to its default.
	CoerceNumber Coercion = iota + 1
	// CoerceInt is CoerceNumber rounded to the nearest integer.
	CoerceInt
	// CoerceBool parses "true"/"false" (any case); other strings are removed.
	CoerceBool
	// CoerceString formats scalars as strings.
	CoerceString
)

// Coerce returns a pre-hook converting the named fields.
func Coerce(fields map[string]Coercion) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for key, kind := range fields {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			value, keep := coerce(raw, kind)
			if !keep {
				delete(payload, key)
				continue
			}
			payload[key] = value
		}
		return payload, nil
	}
}

func coerce(raw any, kind Coercion) (any, bool) {
	switch kind {
	case CoerceNumber, CoerceInt:
		n, ok := toFloat(raw)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		if kind == CoerceInt {
			return int64(math.Round(n)), true
		}
		return n, true
	case CoerceBool:
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, false
			}
			return b, true
		}
		return nil, false
	case CoerceString:
		switch v := raw.(type) {
		case string:
			return v, true
		case nil:
			return nil, false
		default:
			return fmt.Sprint(v), true
		}
	}
	return raw, true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package format

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

const (
	// BoxEmpty and BoxChecked are the checklist markers drawn in widgets.
	BoxEmpty   = "[   ]"
	BoxChecked = "[ X ]"
)

// Helper is a function widget expressions can call. Helpers take exactly
// one argument, coerced to the type their constructor names.
type Helper struct {
	Name string
	call func(arg any) (string, error)
}

// Call runs the helper with args as passed by an engine.
func (h Helper) Call(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s wants 1 argument, got %d", ErrHelperArgument, h.Name, len(args))
	}
	return h.call(args[0])
}

// FlagHelper renders a truthy argument: booleans, non-empty strings other
// than "false", and non-zero numbers are true.
func FlagHelper(name string, fn func(on bool) string) Helper {
	return Helper{Name: name, call: func(arg any) (string, error) {
		return fn(truthy(arg)), nil
	}}
}

// CountHelper renders a whole number. Fractions are rounded.
func CountHelper(name string, fn func(n int) string) Helper {
	return Helper{Name: name, call: func(arg any) (string, error) {
		n, ok := toInt(arg)
		if !ok {
			return "", fmt.Errorf("%w: %s wants a number, got %T", ErrHelperArgument, name, arg)
		}
		return fn(n), nil
	}}
}

// ListHelper renders a list; items are printed with fmt.Sprint.
func ListHelper(name string, fn func(items []string) string) Helper {
	return Helper{Name: name, call: func(arg any) (string, error) {
		items, ok := toStrings(arg)
		if !ok {
			return "", fmt.Errorf("%w: %s wants a list, got %T", ErrHelperArgument, name, arg)
		}
		return fn(items), nil
	}}
}

// TextHelper renders a string argument.
func TextHelper(name string, fn func(s string) string) Helper {
	return Helper{Name: name, call: func(arg any) (string, error) {
		s, ok := arg.(string)
		if !ok {
			return "", fmt.Errorf("%w: %s wants a string, got %T", ErrHelperArgument, name, arg)
		}
		return fn(s), nil
	}}
}

// Helpers is an immutable set of helpers keyed by name.
type Helpers struct {
	byName map[string]Helper
}

// NewHelpers builds a set. Names must be unique and non-empty.
func NewHelpers(list ...Helper) (*Helpers, error) {
	return (*Helpers)(nil).With(list...)
}

// With returns a copy of h extended by list.
func (h *Helpers) With(list ...Helper) (*Helpers, error) {
	out := &Helpers{byName: make(map[string]Helper, h.Len()+len(list))}
	if h != nil {
		for name, helper := range h.byName {
			out.byName[name] = helper
		}
	}
	for _, helper := range list {
		if helper.Name == "" || helper.call == nil {
			return nil, fmt.Errorf("format: helper %q is incomplete", helper.Name)
		}
		if _, exists := out.byName[helper.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHelper, helper.Name)
		}
		out.byName[helper.Name] = helper
	}
	return out, nil
}

// Len returns the number of helpers.
func (h *Helpers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.byName)
}

// Names returns the helper names sorted alphabetically.
func (h *Helpers) Names() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.byName))
	for name := range h.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Helpers) list() []Helper {
	names := h.Names()
	out := make([]Helper, len(names))
	for i, name := range names {
		out[i] = h.byName[name]
	}
	return out
}

var builtins = mustHelpers(
	FlagHelper("box", func(done bool) string {
		if done {
			return BoxChecked
		}
		return BoxEmpty
	}),
	CountHelper("boxes", func(n int) string {
		return strings.Repeat(BoxEmpty, max(n, 0))
	}),
	FlagHelper("mark", func(checked bool) string {
		if checked {
			return "X"
		}
		return " "
	}),
	CountHelper("signed", func(n int) string {
		if n > 0 {
			return fmt.Sprintf("+%d", n)
		}
		return fmt.Sprintf("%d", n)
	}),
	ListHelper("lines", func(items []string) string {
		return strings.Join(items, "\n\n")
	}),
)

// Builtins returns the widget helpers:
//
//	box(done)       "[ X ]" or "[   ]"
//	boxes(n)        n empty boxes
//	mark(checked)   "X" or " "
//	signed(n)       "+n" for positive n, "n" otherwise
//	lines(list)     list items joined by a blank line
func Builtins() *Helpers {
	return builtins
}

func mustHelpers(list ...Helper) *Helpers {
	h, err := NewHelpers(list...)
	if err != nil {
		panic(err)
	}
	return h
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case nil:
		return false
	default:
		n, ok := toInt(v)
		return ok && n != 0
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return int(math.Round(float64(t))), true
	case float64:
		return int(math.Round(t)), true
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case nil:
		return nil, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return out, true
}

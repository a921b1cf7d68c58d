package settings

import (
	"errors"
	"fmt"
	"sort"
)

const (
	// Higher numbers win.
	ScopePriorityDefaults = 100
	ScopePriorityStored   = 200
	ScopePriorityOverride = 300
)

// Scope is a named precedence bucket.
type Scope struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Priority int    `json:"priority"`
}

var (
	ScopeDefaults = Scope{Name: "defaults", Label: "Defaults", Priority: ScopePriorityDefaults}
	ScopeStored   = Scope{Name: "stored", Label: "Stored page", Priority: ScopePriorityStored}
	ScopeOverride = Scope{Name: "override", Label: "Override", Priority: ScopePriorityOverride}
)

// Layer pairs a scope with the record it contributes.
type Layer struct {
	Scope      Scope
	Values     Record
	SnapshotID string
}

// NewLayer copies values into a layer.
func NewLayer(scope Scope, values Record, snapshotID string) Layer {
	return Layer{Scope: scope, Values: values.Clone(), SnapshotID: snapshotID}
}

var (
	ErrScopeNameRequired  = errors.New("scope: name must be provided")
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	ErrPriorityOrder      = errors.New("scope: priorities must be strictly ordered")
)

// Stack is an immutable set of layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them by descending priority.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = NewLayer(layer.Scope, layer.Values, layer.SnapshotID)
	}

	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge flattens the stack: each key takes the value of the strongest layer
// that sets it.
func (s *Stack) Merge() *Resolved {
	values := Record{}
	if s != nil {
		for i := len(s.layers) - 1; i >= 0; i-- {
			for k, v := range s.layers[i].Values {
				values[k] = v
			}
		}
	}
	var layers []Layer
	if s != nil {
		layers = append(layers, s.layers...)
	}
	return &Resolved{Values: values, layers: layers}
}

// Resolved is the effective record of a page with its provenance.
type Resolved struct {
	Page   Page
	Values Record
	Meta   Meta
	layers []Layer
}

// Trace reports, strongest first, what each layer holds for key.
func (r *Resolved) Trace(key string) Trace {
	trace := Trace{Path: key}
	if r == nil {
		return trace
	}
	for _, layer := range r.layers {
		value, found := layer.Values[key]
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope,
			SnapshotID: layer.SnapshotID,
			Path:       key,
			Value:      value,
			Found:      found,
		})
	}
	return trace
}

// Source returns the scope whose value won for key.
func (r *Resolved) Source(key string) (Scope, bool) {
	for _, p := range r.Trace(key).Layers {
		if p.Found {
			return p.Scope, true
		}
	}
	return Scope{}, false
}

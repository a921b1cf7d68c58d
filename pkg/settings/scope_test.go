package settings

import (
	"errors"
	"testing"
)

func TestNewStackRejectsBadLayers(t *testing.T) {
	if _, err := NewStack(Layer{}); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected ErrScopeNameRequired, got %v", err)
	}
	if _, err := NewStack(NewLayer(ScopeStored, nil, ""), NewLayer(ScopeStored, nil, "")); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected ErrDuplicateScopeName, got %v", err)
	}
	same := Scope{Name: "other", Priority: ScopePriorityStored}
	if _, err := NewStack(NewLayer(ScopeStored, nil, ""), NewLayer(same, nil, "")); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected ErrPriorityOrder, got %v", err)
	}
}

func TestStackMergeStrongestWins(t *testing.T) {
	stack, err := NewStack(
		NewLayer(ScopeDefaults, Record{"a": 1, "b": 1}, ""),
		NewLayer(ScopeOverride, Record{"a": 3}, ""),
		NewLayer(ScopeStored, Record{"a": 2, "c": 2}, "snap"),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	got := stack.Merge().Values
	if got["a"] != 3 || got["b"] != 1 || got["c"] != 2 {
		t.Fatalf("unexpected merge %v", got)
	}
}

func TestLayerCopiesValues(t *testing.T) {
	src := Record{"a": 1}
	layer := NewLayer(ScopeStored, src, "")
	src["a"] = 2
	if layer.Values["a"] != 1 {
		t.Fatalf("expected layer isolated from source")
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"n": "12.5", "b": "TRUE", "s": 3}
	if f, ok := r.Float("n"); !ok || f != 12.5 {
		t.Fatalf("unexpected float %v %v", f, ok)
	}
	if b, ok := r.Bool("b"); !ok || !b {
		t.Fatalf("unexpected bool %v %v", b, ok)
	}
	if r.String("s") != "3" || r.String("missing") != "" {
		t.Fatalf("unexpected string conversions")
	}
	if _, ok := r.Float("b"); ok {
		t.Fatalf("expected non-numeric to fail")
	}
}

func TestJSONSchemaShape(t *testing.T) {
	page := Page{Name: "p", Fields: []Field{
		{Key: "n", Type: FieldNumber},
		{Key: "img", Type: FieldImage, Required: true},
	}}
	doc := JSONSchema(page)
	props := doc["properties"].(map[string]any)
	if _, ok := props["n"]; !ok {
		t.Fatalf("expected property n")
	}
	req, ok := doc["required"].([]string)
	if !ok || len(req) != 1 || req[0] != "img" {
		t.Fatalf("unexpected required %v", doc["required"])
	}
}

// Package format renders widget text from configurable expressions.
//
// Every text a widget shows (aspect lines, skill values, stress boxes,
// checklist rows) is produced by an expression over a small set of
// variables, so table owners can restyle widgets from the settings journal
// without code changes. expr is the default engine; CEL is available and
// JavaScript (goja) is compiled in with the js_eval build tag.
package format

import (
	"strings"
	"time"
)

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Site names the widget a text is rendered for and the setting holding its
// expression.
type Site struct {
	Scene   string
	Tag     string
	Setting string
}

// IsZero reports whether no location is known.
func (s Site) IsZero() bool {
	return s == Site{}
}

func (s Site) String() string {
	var b strings.Builder
	if s.Tag == "" {
		b.WriteString("<untagged>")
	} else {
		b.WriteString(s.Tag)
	}
	if s.Setting != "" {
		b.WriteString(" (" + s.Setting + ")")
	}
	if s.Scene != "" {
		b.WriteString(" in scene " + s.Scene)
	}
	return b.String()
}

// Context carries the inputs of one evaluation.
type Context struct {
	Vars map[string]any
	Now  *time.Time
	Site Site
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}
	return ctx
}

// env flattens the variables for an engine run. now is always the clock.
func (ctx Context) env() map[string]any {
	out := make(map[string]any, len(ctx.Vars)+1)
	for key, value := range ctx.Vars {
		out[key] = value
	}
	out["now"] = *ctx.withDefaults().Now
	return out
}

// Evaluator executes expressions against a context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (Program, error)
}

// Program is a compiled, reusable expression.
type Program interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

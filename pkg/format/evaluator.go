package format

import (
	"fmt"
	"strings"
)

// backend compiles expressions for one engine. The returned function sees a
// context with defaults applied.
type backend interface {
	compile(expression string) (func(Context) (any, error), error)
}

// NewEvaluator returns the evaluator for engine exposing helpers. cache and
// helpers may be nil.
func NewEvaluator(engine string, cache ProgramCache, helpers *Helpers) (Evaluator, error) {
	name := strings.ToLower(strings.TrimSpace(engine))
	var b backend
	switch name {
	case "", EngineExpr:
		name, b = EngineExpr, exprBackend{helpers: helpers}
	case EngineCEL:
		b = celBackend{helpers: helpers}
	case EngineJS:
		if !jsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, EngineJS)
		}
		b = newJSBackend(helpers)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	return &evaluator{name: name, backend: b, cache: cache}, nil
}

// evaluator caches compiled programs under engine:expression.
type evaluator struct {
	name    string
	backend backend
	cache   ProgramCache
}

func (e *evaluator) Evaluate(ctx Context, expression string) (any, error) {
	p, err := e.Compile(expression)
	if err != nil {
		return nil, locate(ctx.Site, e.name, expression, err)
	}
	return p.Evaluate(ctx)
}

func (e *evaluator) Compile(expression string) (Program, error) {
	if expression == "" {
		return nil, &EvaluationError{Engine: e.name, Stage: StageCompile, Err: ErrEmptyExpression}
	}
	key := e.name + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if p, ok := cached.(*program); ok {
				return p, nil
			}
		}
	}
	run, err := e.backend.compile(expression)
	if err != nil {
		return nil, &EvaluationError{Engine: e.name, Stage: StageCompile, Expr: expression, Err: err}
	}
	p := &program{engine: e.name, expression: expression, run: run}
	if e.cache != nil {
		e.cache.Set(key, p)
	}
	return p, nil
}

type program struct {
	engine     string
	expression string
	run        func(Context) (any, error)
}

func (p *program) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	value, err := p.run(ctx)
	if err != nil {
		return nil, &EvaluationError{Site: ctx.Site, Engine: p.engine, Stage: StageRun, Expr: p.expression, Err: err}
	}
	return value, nil
}

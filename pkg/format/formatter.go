package format

import (
	"fmt"
	"time"
)

// Formatter renders widget text from expressions.
type Formatter struct {
	engine    string
	evaluator Evaluator
	cache     ProgramCache
	helpers   *Helpers
	extra     []Helper
	logger    Logger
	now       func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithEngine selects the expression engine by name.
func WithEngine(engine string) Option {
	return func(f *Formatter) {
		f.engine = engine
	}
}

// WithEvaluator installs a custom evaluator, bypassing engine selection.
func WithEvaluator(evaluator Evaluator) Option {
	return func(f *Formatter) {
		f.evaluator = evaluator
	}
}

// WithProgramCache replaces the default compiled program cache.
func WithProgramCache(cache ProgramCache) Option {
	return func(f *Formatter) {
		f.cache = cache
	}
}

// WithHelpers adds helpers next to the builtins. A name already taken
// makes New fail with ErrDuplicateHelper.
func WithHelpers(helpers ...Helper) Option {
	return func(f *Formatter) {
		f.extra = append(f.extra, helpers...)
	}
}

// WithLogger records every evaluation.
func WithLogger(logger Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClock overrides the timestamp exposed as now.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// New builds a Formatter. The default is the expr engine with Builtins and
// a bounded program cache.
func New(opts ...Option) (*Formatter, error) {
	f := &Formatter{
		engine:  EngineExpr,
		cache:   NewMemoryCache(256),
		helpers: Builtins(),
		logger:  noopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if len(f.extra) > 0 {
		helpers, err := f.helpers.With(f.extra...)
		if err != nil {
			return nil, err
		}
		f.helpers = helpers
	}
	if f.evaluator == nil {
		evaluator, err := NewEvaluator(f.engine, f.cache, f.helpers)
		if err != nil {
			return nil, err
		}
		f.evaluator = evaluator
	}
	return f, nil
}

// Engine reports the configured engine name.
func (f *Formatter) Engine() string {
	return f.engine
}

// Helpers returns the helpers exposed to expressions.
func (f *Formatter) Helpers() *Helpers {
	return f.helpers
}

// Evaluate runs expr for the widget at site and returns the raw result.
// Failures are *EvaluationError values carrying site.
func (f *Formatter) Evaluate(site Site, expr string, vars map[string]any) (any, error) {
	now := f.now()
	start := time.Now()
	value, err := f.evaluator.Evaluate(Context{Vars: vars, Now: &now, Site: site}, expr)
	err = locate(site, f.engine, expr, err)
	f.logger.LogEvaluation(LogEvent{
		Engine:   f.engine,
		Expr:     expr,
		Site:     site,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Text runs expr and renders the result as a string. nil renders empty.
func (f *Formatter) Text(site Site, expr string, vars map[string]any) (string, error) {
	value, err := f.Evaluate(site, expr, vars)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

package format

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyExpression   = errors.New("format: expression must not be empty")
	ErrUnknownEngine     = errors.New("format: unknown engine")
	ErrEngineUnavailable = errors.New("format: engine not compiled in")
	ErrHelperArgument    = errors.New("format: bad helper argument")
	ErrDuplicateHelper   = errors.New("format: helper already defined")
)

// Stage tells whether an expression failed to compile or to run.
type Stage string

const (
	StageCompile Stage = "compile"
	StageRun     Stage = "run"
)

// EvaluationError locates a failing widget expression so the setting that
// holds it can be fixed.
type EvaluationError struct {
	Site   Site
	Engine string
	Stage  Stage
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("format: %s: %s %s %s: %v", e.Site, e.Engine, e.Stage, expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// locate returns err as an EvaluationError placed at site. An error that
// already carries a site is returned as is; one without is copied, never
// modified.
func locate(site Site, engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Site: site, Engine: engine, Stage: StageRun, Expr: expr, Err: err}
	}
	if !evalErr.Site.IsZero() {
		return err
	}
	located := *evalErr
	located.Site = site
	if located.Engine == "" {
		located.Engine = engine
	}
	if located.Expr == "" {
		located.Expr = expr
	}
	return &located
}

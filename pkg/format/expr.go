package format

import (
	exprlang "github.com/expr-lang/expr"
)

// exprBackend runs github.com/expr-lang/expr. Variables are not declared up
// front, so unknown names evaluate to nil and widgets render them empty.
type exprBackend struct {
	helpers *Helpers
}

func (b exprBackend) compile(expression string) (func(Context) (any, error), error) {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, h := range b.helpers.list() {
		options = append(options, exprlang.Function(h.Name, h.Call))
	}
	compiled, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, err
	}
	return func(ctx Context) (any, error) {
		return exprlang.Run(compiled, ctx.env())
	}, nil
}

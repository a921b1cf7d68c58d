//go:build js_eval

package format

import (
	"github.com/dop251/goja"
)

const jsAvailable = true

// jsBackend runs expressions with goja. Each run gets a fresh runtime so
// widget renders never share state.
type jsBackend struct {
	helpers *Helpers
}

func newJSBackend(helpers *Helpers) backend {
	return jsBackend{helpers: helpers}
}

func (b jsBackend) compile(expression string) (func(Context) (any, error), error) {
	compiled, err := goja.Compile("widget", "(function(){ return ("+expression+"); })()", false)
	if err != nil {
		return nil, err
	}
	return func(ctx Context) (any, error) {
		vm := goja.New()
		for key, value := range ctx.env() {
			if err := vm.Set(key, value); err != nil {
				return nil, err
			}
		}
		for _, h := range b.helpers.list() {
			if err := vm.Set(h.Name, h.Call); err != nil {
				return nil, err
			}
		}
		value, err := vm.RunProgram(compiled)
		if err != nil {
			return nil, err
		}
		return value.Export(), nil
	}, nil
}

package format

import (
	"sort"
	"strings"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celBackend parses an expression once and type-checks it per set of
// variable names, declaring every variable as dyn and now as a timestamp.
type celBackend struct {
	helpers *Helpers
}

func (b celBackend) compile(expression string) (func(Context) (any, error), error) {
	env, err := b.env(nil)
	if err != nil {
		return nil, err
	}
	parsed, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	var (
		mu      sync.Mutex
		checked = map[string]celgo.Program{}
	)
	load := func(names []string) (celgo.Program, error) {
		key := strings.Join(names, ",")
		mu.Lock()
		defer mu.Unlock()
		if prg, ok := checked[key]; ok {
			return prg, nil
		}
		env, err := b.env(names)
		if err != nil {
			return nil, err
		}
		ast, issues := env.Check(parsed)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, err
		}
		checked[key] = prg
		return prg, nil
	}

	return func(ctx Context) (any, error) {
		prg, err := load(varNames(ctx.Vars))
		if err != nil {
			return nil, err
		}
		out, _, err := prg.Eval(ctx.env())
		if err != nil {
			return nil, err
		}
		return out.Value(), nil
	}, nil
}

func (b celBackend) env(names []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
	}
	for _, name := range names {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	for _, h := range b.helpers.list() {
		opts = append(opts, celgo.Function(h.Name,
			celgo.Overload(h.Name+"_dyn", []*celgo.Type{celgo.DynType}, celgo.StringType,
				celgo.UnaryBinding(celBinding(h)))))
	}
	return celgo.NewEnv(opts...)
}

func celBinding(h Helper) func(ref.Val) ref.Val {
	return func(arg ref.Val) ref.Val {
		out, err := h.Call(arg.Value())
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		return types.String(out.(string))
	}
}

// varNames lists the declared variables; now is reserved for the clock.
func varNames(vars map[string]any) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if name != "now" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

package format_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-scenesync/pkg/format"
)

func newFormatter(t *testing.T, opts ...format.Option) *format.Formatter {
	t.Helper()
	f, err := format.New(opts...)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	return f
}

func TestFormatterExprBuiltins(t *testing.T) {
	f := newFormatter(t)
	cases := []struct {
		name string
		expr string
		vars map[string]any
		want string
	}{
		{"checked box", `box(done) + " " + name`, map[string]any{"done": true, "name": "Overcome"}, "[ X ] Overcome"},
		{"empty box", `box(done)`, map[string]any{"done": false}, format.BoxEmpty},
		{"boxes", `boxes(n)`, map[string]any{"n": 2}, format.BoxEmpty + format.BoxEmpty},
		{"signed positive", `signed(skill)`, map[string]any{"skill": 3}, "+3"},
		{"signed negative", `signed(skill)`, map[string]any{"skill": -1}, "-1"},
		{"lines", `lines(aspects)`, map[string]any{"aspects": []string{"Brave", "Tired"}}, "Brave\n\nTired"},
		{"mark", `"[" + mark(x) + "]"`, map[string]any{"x": true}, "[X]"},
		{"number", `level + 1`, map[string]any{"level": 2}, "3"},
		{"nil renders empty", `missing`, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.Text(format.Site{Tag: tc.name}, tc.expr, tc.vars)
			if err != nil {
				t.Fatalf("text: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFormatterCachesPrograms(t *testing.T) {
	cache := format.NewMemoryCache(8)
	f := newFormatter(t, format.WithProgramCache(cache))
	for i := 0; i < 3; i++ {
		if _, err := f.Text(format.Site{Tag: "row"}, `signed(n)`, map[string]any{"n": i}); err != nil {
			t.Fatalf("text: %v", err)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
}

func TestFormatterCEL(t *testing.T) {
	f := newFormatter(t, format.WithEngine(format.EngineCEL))
	if f.Engine() != format.EngineCEL {
		t.Fatalf("expected cel engine, got %q", f.Engine())
	}
	got, err := f.Text(format.Site{Tag: "aspects"}, `name + ": " + box(done)`, map[string]any{"name": "Brave", "done": true})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if got != "Brave: [ X ]" {
		t.Fatalf("unexpected text %q", got)
	}
	got, err = f.Text(format.Site{Tag: "sum"}, `skill + 1`, map[string]any{"skill": 2})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if got != "3" {
		t.Fatalf("expected 3, got %q", got)
	}
}

func TestFormatterCELListsAndSyntaxErrors(t *testing.T) {
	f := newFormatter(t, format.WithEngine(format.EngineCEL))
	got, err := f.Text(format.Site{Tag: "panel/Player 1/aspects"}, `lines(aspects)`, map[string]any{"aspects": []string{"Brave", "Tired"}})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if got != "Brave\n\nTired" {
		t.Fatalf("unexpected text %q", got)
	}

	_, err = f.Text(format.Site{Tag: "aspects", Setting: "lineFormat"}, `name +`, map[string]any{"name": "x"})
	var evalErr *format.EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Stage != format.StageCompile || evalErr.Site.Setting != "lineFormat" {
		t.Fatalf("expected located compile error, got %v", err)
	}
}

func TestFormatterReportsEvaluationErrors(t *testing.T) {
	var events []format.LogEvent
	f := newFormatter(t, format.WithLogger(format.LoggerFunc(func(e format.LogEvent) {
		events = append(events, e)
	})))
	site := format.Site{Scene: "tavern", Tag: "panel/Player 1/stress/0", Setting: "stressBoxFormat"}

	_, err := f.Text(site, `1 +`, nil)
	var evalErr *format.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T %v", err, err)
	}
	if evalErr.Engine != format.EngineExpr || evalErr.Site != site || evalErr.Stage != format.StageCompile {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}

	_, err = f.Text(site, `signed(name)`, map[string]any{"name": "Zed"})
	if !errors.Is(err, format.ErrHelperArgument) || !errors.As(err, &evalErr) || evalErr.Stage != format.StageRun {
		t.Fatalf("expected helper argument error at run time, got %v", err)
	}

	_, err = f.Text(site, "", nil)
	if !errors.Is(err, format.ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 log events, got %d", len(events))
	}
	for _, e := range events {
		if e.Err == nil || e.Site != site {
			t.Fatalf("expected logged error at %v, got %+v", site, e)
		}
	}
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := format.New(format.WithEngine("lua"))
	if !errors.Is(err, format.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestFormatterExtraHelpers(t *testing.T) {
	shout := format.TextHelper("shout", func(s string) string { return "!" + s })
	f := newFormatter(t, format.WithHelpers(shout))
	got, err := f.Text(format.Site{}, `shout(word) + " " + box(true)`, map[string]any{"word": "go"})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if got != "!go "+format.BoxChecked {
		t.Fatalf("unexpected %q", got)
	}
	if f.Helpers().Len() != format.Builtins().Len()+1 {
		t.Fatalf("expected builtins plus one, got %v", f.Helpers().Names())
	}

	_, err = format.New(format.WithHelpers(format.FlagHelper("box", func(bool) string { return "" })))
	if !errors.Is(err, format.ErrDuplicateHelper) {
		t.Fatalf("expected ErrDuplicateHelper, got %v", err)
	}
}

func TestCompiledProgramReuse(t *testing.T) {
	evaluator, err := format.NewEvaluator(format.EngineExpr, nil, format.Builtins())
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	program, err := evaluator.Compile(`box(n > 0)`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for n, want := range map[int]string{0: format.BoxEmpty, 4: format.BoxChecked} {
		got, err := program.Evaluate(format.Context{Vars: map[string]any{"n": n}})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if got != want {
			t.Fatalf("n=%d: expected %q, got %v", n, want, got)
		}
	}
}

package guard_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-savestate/guard"
)

func goblin() guard.Context {
	return guard.Context{
		ID:     7,
		Values: []any{"Goblin", int64(3), int64(10), int64(10), int64(2)},
		Tags:   []string{"text", "signed", "signed", "signed", "signed"},
		Now:    time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC),
	}
}

func TestGuardEngines(t *testing.T) {
	cases := []struct {
		name   string
		engine guard.Engine
		expr   string
		reject bool
	}{
		{name: "expr holds", engine: guard.EngineExpr, expr: `count == 5 && values[2] <= values[3]`},
		{name: "expr rejects", engine: guard.EngineExpr, expr: `values[1] > 50`, reject: true},
		{name: "expr tags", engine: guard.EngineExpr, expr: `tags[0] == "text" && id == 7`},
		{name: "cel holds", engine: guard.EngineCEL, expr: `count == 5 && values[2] <= values[3]`},
		{name: "cel rejects", engine: guard.EngineCEL, expr: `id != 7`, reject: true},
		{name: "cel tags", engine: guard.EngineCEL, expr: `tags.all(t, t != "")`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := guard.New(tc.expr, guard.WithEngine(tc.engine))
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			err = g.Check(goblin())
			if tc.reject {
				if !errors.Is(err, guard.ErrRejected) {
					t.Fatalf("expected ErrRejected, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected guard to hold, got %v", err)
			}
		})
	}
}

func TestExprBindingsShadowBuiltins(t *testing.T) {
	for _, expression := range []string{
		`count == 5`,
		`values[1] > 0`,
		`len(values) == count`,
		`now.Year() == 2026`,
	} {
		g, err := guard.New(expression)
		if err != nil {
			t.Fatalf("%s: compile: %v", expression, err)
		}
		if err := g.Check(goblin()); err != nil {
			t.Fatalf("%s: expected guard to hold, got %v", expression, err)
		}
	}
}

func TestGuardNonBoolResult(t *testing.T) {
	g := guard.MustNew(`count + 1`)
	err := g.Check(goblin())
	var evalErr *guard.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T %v", err, err)
	}
	if evalErr.EntityID != 7 || evalErr.Engine != "expr" {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
}

func TestGuardCompileErrors(t *testing.T) {
	if _, err := guard.New(""); err == nil {
		t.Fatal("expected empty expression to fail")
	}
	if _, err := guard.New(`count ==`, guard.WithEngine(guard.EngineCEL)); err == nil {
		t.Fatal("expected CEL parse error")
	}
	if _, err := guard.New(`true`, guard.WithEngine("lua")); err == nil {
		t.Fatal("expected unknown engine error")
	}
	if !guard.JSAvailable() {
		if _, err := guard.New(`true`, guard.WithEngine(guard.EngineJS)); err == nil {
			t.Fatal("expected js engine to be unavailable")
		}
	}
}

func TestGuardCustomFunction(t *testing.T) {
	maxLevel := func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("maxLevel takes one argument")
		}
		level, ok := args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("level must be int64, got %T", args[0])
		}
		return level <= 99, nil
	}

	g, err := guard.New(`maxLevel(values[1])`, guard.WithCustomFunction("maxLevel", maxLevel))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := g.Check(goblin()); err != nil {
		t.Fatalf("expected custom function to pass, got %v", err)
	}

	cel, err := guard.New(`call("maxLevel", [values[1]]) == true`,
		guard.WithEngine(guard.EngineCEL),
		guard.WithCustomFunction("maxLevel", maxLevel))
	if err != nil {
		t.Fatalf("compile cel: %v", err)
	}
	if err := cel.Check(goblin()); err != nil {
		t.Fatalf("expected cel call to pass, got %v", err)
	}
}

func TestGuardUsesClock(t *testing.T) {
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	g := guard.MustNew(`now.Year() == 2030`, guard.WithClock(func() time.Time { return fixed }))
	ctx := goblin()
	ctx.Now = time.Time{}
	if err := g.Check(ctx); err != nil {
		t.Fatalf("expected clock to be applied, got %v", err)
	}
}

func TestProgramCacheReuse(t *testing.T) {
	cache := guard.NewMapCache()
	if _, err := guard.New(`count > 0`, guard.WithProgramCache(cache)); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := cache.Get("expr:count > 0"); !ok {
		t.Fatal("expected compiled program to be cached")
	}
	if _, err := guard.New(`count > 0`, guard.WithProgramCache(cache)); err != nil {
		t.Fatalf("cached compile: %v", err)
	}
}

func TestNilGuardAllows(t *testing.T) {
	var g *guard.Guard
	if err := g.Check(goblin()); err != nil {
		t.Fatalf("nil guard should allow, got %v", err)
	}
}

package guard

import (
	"fmt"
	"time"
)

// Engine names an evaluator backend.
type Engine string

const (
	EngineExpr Engine = "expr"
	EngineCEL  Engine = "cel"
	EngineJS   Engine = "js"
)

type config struct {
	engine    Engine
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	now       func() time.Time
}

// Option configures a Guard.
type Option func(*config)

// WithEngine selects the evaluator backend. Ignored when WithEvaluator is set.
func WithEngine(engine Engine) Option {
	return func(cfg *config) {
		cfg.engine = engine
	}
}

// WithEvaluator supplies a custom evaluator.
func WithEvaluator(evaluator Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache shares compiled programs across guards.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to the rule.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the guard.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithClock overrides the time bound to now.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Guard is a compiled boolean rule checked against each loaded entity.
type Guard struct {
	expression string
	engine     Engine
	rule       CompiledRule
	now        func() time.Time
}

// New compiles expression with the configured engine.
func New(expression string, opts ...Option) (*Guard, error) {
	cfg := config{engine: EngineExpr, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = newEvaluator(cfg)
		if err != nil {
			return nil, err
		}
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &Guard{
		expression: expression,
		engine:     cfg.engine,
		rule:       rule,
		now:        cfg.now,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(expression string, opts ...Option) *Guard {
	g, err := New(expression, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

func newEvaluator(cfg config) (Evaluator, error) {
	switch cfg.engine {
	case EngineExpr, "":
		return NewExprEvaluator(ExprWithProgramCache(cfg.cache), ExprWithFunctionRegistry(cfg.functions)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cfg.cache), CELWithFunctionRegistry(cfg.functions)), nil
	case EngineJS:
		evaluator := NewJSEvaluator(JSWithProgramCache(cfg.cache), JSWithFunctionRegistry(cfg.functions))
		if evaluator == nil {
			return nil, fmt.Errorf("guard: js engine requires the js_eval build tag")
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("guard: unknown engine %q", cfg.engine)
	}
}

// Expression returns the rule source.
func (g *Guard) Expression() string {
	return g.expression
}

// Engine returns the backend the rule was compiled with.
func (g *Guard) Engine() Engine {
	return g.engine
}

// Check evaluates the rule for one entity. It returns nil when the rule
// holds, ErrRejected when it evaluates to false, and an EvaluationError when
// it fails or yields a non-boolean.
func (g *Guard) Check(ctx Context) error {
	if g == nil || g.rule == nil {
		return nil
	}
	if ctx.Now.IsZero() {
		ctx.Now = g.now()
	}
	result, err := g.rule.Evaluate(ctx)
	if err != nil {
		return err
	}
	ok, isBool := result.(bool)
	if !isBool {
		return wrapEvaluationError(string(g.engine), g.expression, ctx.ID, fmt.Errorf("result %T is not a bool", result))
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRejected, g.expression)
	}
	return nil
}

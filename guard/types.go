// Package guard evaluates rule expressions against decoded save entities
// before their values are applied. A guard that does not hold rejects the
// entity the same way an integrity failure does.
//
// Three engines are available: expr (default), CEL and goja. The goja
// engine is only compiled in with the js_eval build tag.
package guard

import "time"

// Context is the environment a rule sees for one entity.
//
//	id      entity id (int64)
//	count   number of values (int64)
//	values  decoded values in position order
//	tags    type names in position order
//	now     evaluation time
type Context struct {
	ID     int64
	Values []any
	Tags   []string
	Now    time.Time
}

func (ctx Context) withDefaults() Context {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	if ctx.Values == nil {
		ctx.Values = []any{}
	}
	if ctx.Tags == nil {
		ctx.Tags = []string{}
	}
	return ctx
}

func (ctx Context) count() int64 {
	return int64(len(ctx.Values))
}

func (ctx Context) bindings() map[string]any {
	return map[string]any{
		"id":     ctx.ID,
		"count":  ctx.count(),
		"values": ctx.Values,
		"tags":   ctx.Tags,
		"now":    ctx.Now,
	}
}

// Evaluator executes rule expressions against a Context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

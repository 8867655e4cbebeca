package dynamic

import (
	"fmt"
	"time"
)

// ScriptContext carries inputs needed when evaluating a scripted member.
type ScriptContext struct {
	// Snapshot holds the dynamic surface the expression reads, typically the
	// owning resolver's Properties().
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Owner is the display identity of the view requesting the evaluation.
	Owner string
}

func (ctx ScriptContext) withDefaultNow() ScriptContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx ScriptContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx ScriptContext) withDefaults() ScriptContext {
	ctx = ctx.withDefaultNow()
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx ScriptContext) ownerLabel() string {
	if ctx.Owner != "" {
		return ctx.Owner
	}
	return "unknown"
}

// Evaluator executes expressions against a script context.
type Evaluator interface {
	Evaluate(ctx ScriptContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx ScriptContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*dynamic.exprEvaluator":
		return "expr"
	case "*dynamic.celEvaluator":
		return "cel"
	case "*dynamic.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

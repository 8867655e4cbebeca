package dynamic

import (
	"fmt"
	"time"
)

// ScriptView is a View whose members are named expressions evaluated against
// a live snapshot of a dynamic surface. It is meant to be registered as a
// convention member or installed as a caller override, so computed
// properties participate in the resolver's chain walk like any other store.
//
// Reading a property evaluates its expression; invoking it as a method binds
// the call arguments under "arguments" in the evaluation environment.
type ScriptView struct {
	owner        string
	evaluator    Evaluator
	logger       EvaluatorLogger
	source       func() map[string]any
	names        []string
	rules        map[string]*scriptRule
	snapshotting bool
}

type scriptRule struct {
	expr     string
	program  CompiledRule
	constant any
	isConst  bool
}

// ScriptViewOption configures a ScriptView.
type ScriptViewOption func(*ScriptView)

// WithScriptSource supplies the live snapshot expressions read from,
// typically the owning resolver's Properties.
func WithScriptSource(source func() map[string]any) ScriptViewOption {
	return func(v *ScriptView) {
		v.source = source
	}
}

// WithScriptLogger records every evaluation attempt.
func WithScriptLogger(logger EvaluatorLogger) ScriptViewOption {
	return func(v *ScriptView) {
		if logger == nil {
			logger = noopEvaluatorLogger{}
		}
		v.logger = logger
	}
}

// NewScriptView constructs a ScriptView evaluated by evaluator. The expr
// engine is used when evaluator is nil.
func NewScriptView(owner string, evaluator Evaluator, opts ...ScriptViewOption) *ScriptView {
	if owner == "" {
		owner = "script"
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	view := &ScriptView{
		owner:     owner,
		evaluator: evaluator,
		logger:    noopEvaluatorLogger{},
		rules:     make(map[string]*scriptRule),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(view)
		}
	}
	return view
}

// Define registers expression under name, compiling it eagerly when the
// evaluator supports compilation. Redefining a name replaces its rule.
func (v *ScriptView) Define(name, expression string) error {
	if name == "" {
		return fmt.Errorf("dynamic: script member name must not be empty")
	}
	if expression == "" {
		return fmt.Errorf("dynamic: script member %q has an empty expression", name)
	}
	program, err := v.evaluator.Compile(expression)
	if err != nil {
		return err
	}
	v.store(name, &scriptRule{expr: expression, program: program})
	return nil
}

func (v *ScriptView) store(name string, rule *scriptRule) {
	if _, ok := v.rules[name]; !ok {
		v.names = append(v.names, name)
	}
	v.rules[name] = rule
}

// snapshot pulls the live surface, short-circuiting re-entrant calls: when
// the source walks back through this view (a resolver enumerating its own
// chain) the nested evaluation sees an empty snapshot instead of recursing.
func (v *ScriptView) snapshot() map[string]any {
	if v.source == nil || v.snapshotting {
		return map[string]any{}
	}
	v.snapshotting = true
	defer func() { v.snapshotting = false }()
	return v.source()
}

func (v *ScriptView) evaluate(rule *scriptRule, args map[string]any) (any, error) {
	ctx := ScriptContext{
		Snapshot: v.snapshot(),
		Args:     args,
		Owner:    v.owner,
	}.withDefaults()

	engine := engineName(v.evaluator)
	start := time.Now()
	var (
		value any
		err   error
	)
	if rule.program != nil {
		value, err = rule.program.Evaluate(ctx)
	} else {
		value, err = v.evaluator.Evaluate(ctx, rule.expr)
	}
	err = wrapEvaluationError(engine, rule.expr, v.owner, err)
	v.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     rule.expr,
		Owner:    v.owner,
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

// DisplayName returns the configured identity.
func (v *ScriptView) DisplayName() string { return v.owner }

// HasProperty reports whether name has been defined.
func (v *ScriptView) HasProperty(name string) bool {
	_, ok := v.rules[name]
	return ok
}

// Property evaluates the member defined under name.
func (v *ScriptView) Property(name string) (any, error) {
	rule, ok := v.rules[name]
	if !ok {
		return nil, newUnknownProperty(name, v.owner)
	}
	if rule.isConst {
		return rule.constant, nil
	}
	return v.evaluate(rule, nil)
}

// SetProperty replaces an already-defined member: string values become new
// expressions, anything else a constant. Names never defined are rejected;
// the view is not a catch-all.
func (v *ScriptView) SetProperty(name string, value any) error {
	if _, ok := v.rules[name]; !ok {
		return newUnknownProperty(name, v.owner)
	}
	if expression, ok := value.(string); ok {
		return v.Define(name, expression)
	}
	v.store(name, &scriptRule{constant: value, isConst: true})
	return nil
}

// Properties evaluates every defined member in definition order. Members
// whose evaluation fails are skipped.
func (v *ScriptView) Properties() map[string]any {
	out := make(map[string]any, len(v.names))
	for _, name := range v.names {
		value, err := v.Property(name)
		if err != nil {
			continue
		}
		out[name] = value
	}
	return out
}

// HasMethod reports whether name maps to an invocable member: any defined
// expression, or a constant holding a callable.
func (v *ScriptView) HasMethod(name string, _ ...any) bool {
	rule, ok := v.rules[name]
	if !ok {
		return false
	}
	if rule.isConst {
		return callable(rule.constant)
	}
	return true
}

// InvokeMethod evaluates the member defined under name with args bound
// under "arguments".
func (v *ScriptView) InvokeMethod(name string, args ...any) (any, error) {
	rule, ok := v.rules[name]
	if !ok {
		return nil, newUnknownMethod(name, v.owner)
	}
	if rule.isConst {
		if !callable(rule.constant) {
			return nil, newUnknownMethod(name, v.owner)
		}
		return call(rule.constant, args...)
	}
	return v.evaluate(rule, map[string]any{"arguments": args})
}

package settings

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFactoryRegistry wires a FactoryRegistry into the expr evaluator.
func ExprWithFactoryRegistry(registry *FactoryRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator builds external objects using github.com/expr-lang/expr.
// Registered factories are exposed both as dotted member accesses
// ("acme.handlers.Custom(...)") and through the build(name, args...)
// helper.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FactoryRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles and runs expression against the build context.
func (e *exprEvaluator) Evaluate(ctx BuildContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	env := e.environment(ctx)
	if e.cache == nil {
		result, err := exprlang.Eval(expression, env)
		if err != nil {
			return nil, wrapEvaluationError("expr", expression, ctx.Setting, err)
		}
		return result, nil
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, ctx.Setting, err)
	}
	return result, nil
}

// Compile returns a compiled builder expression reusable across nodes.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledExpr{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

type exprCompiledExpr struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledExpr) Evaluate(ctx BuildContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("compiled expression missing evaluator"))
	}
	if r.program == nil {
		return r.evaluator.Evaluate(ctx, r.expression)
	}
	env := r.evaluator.environment(ctx)
	result, err := exprlang.Run(r.program, env)
	if err != nil {
		return nil, wrapEvaluationError("expr", r.expression, ctx.Setting, err)
	}
	return result, nil
}

func (e *exprEvaluator) environment(ctx BuildContext) map[string]any {
	env := map[string]any{
		"setting":  ctx.Setting,
		"snapshot": ctx.Snapshot,
	}
	if e.registry != nil {
		for name, binding := range e.registry.Bindings() {
			env[name] = binding
		}
		env["build"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Build(name, arguments...)
		}
	}
	return env
}

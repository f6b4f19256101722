//go:build js_eval

package settings

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator builds external objects using goja. Factory bindings are
// installed as nested objects, so dotted expressions evaluate as ordinary
// JavaScript member calls.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FactoryRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEvaluator) Evaluate(ctx BuildContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	if e.cache == nil {
		return e.run(ctx, expression, nil)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
	}
	return e.run(ctx, expression, program)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	return &jsCompiledExpr{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx BuildContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(e.wrapExpression(expression))
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx BuildContext) {
	vm.Set("setting", ctx.Setting)
	vm.Set("snapshot", ctx.Snapshot)
	if e.registry != nil {
		for name, binding := range e.registry.Bindings() {
			vm.Set(name, binding)
		}
		vm.Set("build", func(name string, arguments ...any) (any, error) {
			return e.registry.Build(name, arguments...)
		})
	}
}

func (e *jsEvaluator) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledExpr struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledExpr) Evaluate(ctx BuildContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled expression missing evaluator"))
	}
	return r.evaluator.run(ctx, r.expression, r.program)
}

func jsEngineName(e Evaluator) string {
	if _, ok := e.(*jsEvaluator); ok {
		return "js"
	}
	return ""
}

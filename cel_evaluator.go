package settings

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFactoryRegistry wires a FactoryRegistry into the CEL evaluator.
func CELWithFactoryRegistry(registry *FactoryRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celEvaluator builds external objects using cel-go. CEL has no member
// calls on dynamic maps, so factories are reached through the
// build("name", args...) function only.
type celEvaluator struct {
	cache    ProgramCache
	registry *FactoryRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx BuildContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.Setting, err)
	}
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.Setting, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledExpr{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("setting", celgo.StringType),
		celgo.Variable("snapshot", celgo.DynType),
	}
	if e.registry != nil {
		binding := e.buildBinding()
		call := celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
			return binding(values)
		})
		argTypes := []*celgo.Type{celgo.StringType}
		overloads := make([]celgo.FunctionOpt, 0, 8)
		for i := 1; i <= 8; i++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("build_dyn_%d", i),
				append([]*celgo.Type(nil), argTypes...),
				celgo.DynType,
				call,
			))
			argTypes = append(argTypes, celgo.DynType)
		}
		opts = append(opts, celgo.Function("build", overloads...))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx BuildContext) map[string]any {
	snapshot := ctx.Snapshot
	if snapshot == nil {
		snapshot = map[string]string{}
	}
	return map[string]any{
		"setting":  ctx.Setting,
		"snapshot": snapshot,
	}
}

type celCompiledExpr struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledExpr) Evaluate(ctx BuildContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled expression missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func (e *celEvaluator) buildBinding() func([]ref.Val) ref.Val {
	return func(values []ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("settings: factory registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("settings: build requires a factory name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("settings: build name must be a string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Build(name, args...)
		if err != nil {
			return types.NewErr(err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

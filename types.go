package settings

// The strategy types below are pluggable collaborators. This package only
// resolves which implementation is configured for a node; what a handler,
// engine, adapter or resolver actually does once selected lives with the
// hosting system.

// ErrorHandler is the policy consulted when document evaluation fails.
type ErrorHandler interface {
	HandlerName() string
}

type namedErrorHandler string

func (h namedErrorHandler) HandlerName() string { return string(h) }

var (
	// RethrowErrorHandler propagates evaluation failures unchanged.
	RethrowErrorHandler ErrorHandler = namedErrorHandler("rethrow")
	// DebugErrorHandler prints the failure before propagating it.
	DebugErrorHandler ErrorHandler = namedErrorHandler("debug")
	// HTMLDebugErrorHandler prints the failure as HTML before propagating it.
	HTMLDebugErrorHandler ErrorHandler = namedErrorHandler("html_debug")
	// IgnoreErrorHandler suppresses evaluation failures.
	IgnoreErrorHandler ErrorHandler = namedErrorHandler("ignore")
)

// ArithmeticEngine is the policy used for arithmetic inside documents.
type ArithmeticEngine interface {
	EngineName() string
}

type namedArithmeticEngine string

func (e namedArithmeticEngine) EngineName() string { return string(e) }

var (
	// DecimalArithmetic performs exact decimal arithmetic.
	DecimalArithmetic ArithmeticEngine = namedArithmeticEngine("decimal")
	// ConservativeArithmetic keeps the numeric types of the operands.
	ConservativeArithmetic ArithmeticEngine = namedArithmeticEngine("conservative")
)

// ObjectAdapter is the policy that adapts host values into document values.
type ObjectAdapter interface {
	AdapterName() string
}

type namedObjectAdapter string

func (a namedObjectAdapter) AdapterName() string { return string(a) }

var (
	// DefaultObjectAdapter is the standard adaptation policy.
	DefaultObjectAdapter ObjectAdapter = namedObjectAdapter("default")
	// SimpleObjectAdapter adapts only plain scalars, sequences and maps.
	SimpleObjectAdapter ObjectAdapter = namedObjectAdapter("simple")
	// ReflectiveObjectAdapter adapts arbitrary host values via reflection.
	ReflectiveObjectAdapter ObjectAdapter = namedObjectAdapter("reflective")
)

// Resolver is the policy that decides which named types documents may
// instantiate.
type Resolver interface {
	ResolverName() string
}

type namedResolver string

func (r namedResolver) ResolverName() string { return string(r) }

var (
	// UnrestrictedResolver allows any type name.
	UnrestrictedResolver Resolver = namedResolver("unrestricted")
	// SaferResolver refuses type names known to be dangerous.
	SaferResolver Resolver = namedResolver("safer")
	// AllowsNothingResolver refuses every type name.
	AllowsNothingResolver Resolver = namedResolver("allows_nothing")
)

// OptInResolver allows only the listed type names, except inside trusted
// documents, which fall back to the safer policy. Built from the segmented
// "allowed_types: ..., trusted_documents: ..." setting syntax.
type OptInResolver struct {
	AllowedTypes     map[string]struct{}
	TrustedDocuments []string
}

func (r *OptInResolver) ResolverName() string { return "opt_in" }

// BuildContext carries the inputs handed to an Evaluator when a setting
// value names an external object.
type BuildContext struct {
	// Setting is the name of the setting being assigned.
	Setting string
	// Snapshot is a best-effort rendering of the node's effective settings
	// at the time of the call.
	Snapshot map[string]string
}

// Evaluator turns external-object-reference expressions (setting values
// containing a dot) into constructed strategy instances. The engine only
// detects the syntactic shape and forwards the raw expression text.
type Evaluator interface {
	Evaluate(ctx BuildContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledExpr, error)
}

// CompiledExpr is a reusable compiled builder expression.
type CompiledExpr interface {
	Evaluate(ctx BuildContext) (any, error)
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

// NodeOption configures a node at construction time.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	factories    *FactoryRegistry
	logger       EvaluatorLogger
}

func applyNodeOptions(opts []NodeOption) nodeConfig {
	cfg := nodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the evaluator used for external-object-reference
// setting values on this node and, through delegation, its descendants.
func WithEvaluator(e Evaluator) NodeOption {
	return func(cfg *nodeConfig) {
		cfg.evaluator = e
	}
}

// WithFactoryRegistry configures the factory registry exposed to evaluator
// expressions.
func WithFactoryRegistry(registry *FactoryRegistry) NodeOption {
	return func(cfg *nodeConfig) {
		if registry == nil {
			return
		}
		cfg.factories = registry.Clone()
	}
}

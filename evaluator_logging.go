package settings

import "time"

// EvaluatorLogEvent describes one attempt to build an external object from
// a setting value.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Setting  string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger attaches an evaluator logger to the node.
func WithEvaluatorLogger(logger EvaluatorLogger) NodeOption {
	return func(cfg *nodeConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name := jsEngineName(e); name != "" {
			return name
		}
		return "custom"
	}
}

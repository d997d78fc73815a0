// Package eval evaluates logic-module expressions with expr-lang. Programs
// are compiled fresh against the variables of one invocation and run in the
// expr sandbox, so no arbitrary code execution is possible.
package eval

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// EvaluationError reports an expression that could not be compiled or run.
type EvaluationError struct {
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Run compiles expression against env and returns its value.
func Run(expression string, env map[string]any) (any, error) {
	if env == nil {
		env = map[string]any{}
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, &EvaluationError{Expression: expression, Err: err}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, &EvaluationError{Expression: expression, Err: err}
	}
	return out, nil
}

// Condition evaluates expression against env and reduces the result to a
// boolean. An empty expression is true.
func Condition(expression string, env map[string]any) (bool, error) {
	if expression == "" {
		return true, nil
	}
	out, err := Run(expression, env)
	if err != nil {
		return false, err
	}
	return isTruthy(out), nil
}

// isTruthy converts a value to a boolean.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

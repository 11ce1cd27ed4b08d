// Package rules compiles expr-lang expressions into Confirmer middleware.
//
// A rule sees the request being confirmed and either accepts it, rejects
// it or rewrites its value:
//
//	value <= end - 6                  // bool: accept or reject
//	abs(candidate - previous) < 12    // bool: reject large jumps
//	max(value, -24)                   // number: replace the value
package rules

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/zoobzio/detent"
)

// ErrEmptyExpression is returned when compiling an empty rule.
var ErrEmptyExpression = errors.New("rules: expression must not be empty")

// Env is the environment a rule is evaluated against.
type Env struct {
	Parameter string  `expr:"parameter"`
	Candidate float64 `expr:"candidate"`
	Previous  float64 `expr:"previous"`
	Value     float64 `expr:"value"`
	Start     float64 `expr:"start"`
	End       float64 `expr:"end"`
	Interval  float64 `expr:"interval"`
}

// NewEnv builds the environment for req.
func NewEnv(req *detent.Request) Env {
	return Env{
		Parameter: req.ParameterID,
		Candidate: req.Candidate,
		Previous:  req.Previous,
		Value:     req.Value,
		Start:     req.Range.Start,
		End:       req.Range.End,
		Interval:  req.Range.Interval,
	}
}

// Rule is a compiled expression.
type Rule struct {
	expression string
	program    *exprvm.Program
}

// Compile type-checks expression against Env and compiles it.
func Compile(expression string) (*Rule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(expression, exprlang.Env(Env{}))
	if err != nil {
		return nil, fmt.Errorf("rules: compile %q: %w", expression, err)
	}
	return &Rule{expression: expression, program: program}, nil
}

// CompileAll compiles every expression, stopping at the first failure.
func CompileAll(expressions []string) ([]*Rule, error) {
	out := make([]*Rule, 0, len(expressions))
	for _, expression := range expressions {
		r, err := Compile(expression)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expression string) *Rule {
	r, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source expression.
func (r *Rule) String() string {
	return r.expression
}

// Evaluate runs the rule for req and returns the value to confirm. A false
// result is reported as an error wrapping detent.ErrRejected.
func (r *Rule) Evaluate(req *detent.Request) (float64, error) {
	result, err := exprlang.Run(r.program, NewEnv(req))
	if err != nil {
		return req.Value, fmt.Errorf("rules: evaluate %q: %w", r.expression, err)
	}

	switch v := result.(type) {
	case bool:
		if !v {
			return req.Value, fmt.Errorf("%w: rule %q", detent.ErrRejected, r.expression)
		}
		return req.Value, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return req.Value, fmt.Errorf("rules: %q returned %T, want bool or number", r.expression, result)
	}
}

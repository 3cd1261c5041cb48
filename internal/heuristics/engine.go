// Package heuristics provides the CEL-Go based deterministic fraud pattern
// evaluator. Rules form a single versioned table; every rule is evaluated on
// every call and the returned probability is the maximum floor across
// triggered rules, so multiple weak signals coexist without one masking
// another's explanatory factor.
package heuristics

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensource-finance/shrike/internal/domain"
)

// Heuristic thresholds.
const (
	// BalanceErrorEpsilon is the tolerance for sender-side balance math.
	BalanceErrorEpsilon = 0.01

	// HighValueAmount is the high-value transaction threshold.
	HighValueAmount = 150_000.0

	// HighRatioThreshold is the suspicious amount-to-balance ratio.
	HighRatioThreshold = 0.9
)

// Input is the activation a rule expression is evaluated against.
type Input struct {
	Amount          float64
	OldBalanceOrg   float64
	NewBalanceOrig  float64
	ErrorBalanceOrg float64
}

// Rule is one entry of the versioned rule table.
type Rule struct {
	ID   string
	Name string

	// Expression is a CEL predicate over the activation variables.
	Expression string

	// Floor is the probability contributed when the rule triggers.
	// Zero means the rule is factor-only: it explains but does not score.
	Floor float64

	Severity domain.Severity

	// Describe renders the human-readable factor for a triggering input.
	Describe func(in Input) string
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// Engine evaluates a fixed rule table. Pure and stateless after
// construction; safe for concurrent use.
type Engine struct {
	version string
	rules   []compiledRule
}

// NewEngine compiles a rule table. Rule order is preserved: it affects only
// factor ordering, never the outcome.
func NewEngine(version string, rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("old_balance_org", cel.DoubleType),
		cel.Variable("new_balance_orig", cel.DoubleType),
		cel.Variable("error_balance_org", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.ID, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %s: expression must return bool, got %s", r.ID, ast.OutputType())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create program for rule %s: %w", r.ID, err)
		}
		compiled = append(compiled, compiledRule{rule: r, program: program})
	}

	return &Engine{version: version, rules: compiled}, nil
}

// Version returns the rule table version.
func (e *Engine) Version() string {
	return e.version
}

// RulesCount returns the number of compiled rules.
func (e *Engine) RulesCount() int {
	return len(e.rules)
}

// Evaluate runs every rule against the record and returns the maximum
// probability floor among triggered rules together with their factors, in
// table order. errorBalanceOrg is passed in so the caller computes it once
// with the same transform the model input uses.
func (e *Engine) Evaluate(r *domain.TransactionRecord, errorBalanceOrg float64) (float64, []domain.RiskFactor) {
	in := Input{
		Amount:          r.Amount,
		OldBalanceOrg:   r.OldBalanceOrg,
		NewBalanceOrig:  r.NewBalanceOrig,
		ErrorBalanceOrg: errorBalanceOrg,
	}

	activation := map[string]any{
		"amount":            in.Amount,
		"old_balance_org":   in.OldBalanceOrg,
		"new_balance_orig":  in.NewBalanceOrig,
		"error_balance_org": in.ErrorBalanceOrg,
	}

	prob := 0.0
	var factors []domain.RiskFactor

	for _, cr := range e.rules {
		out, _, err := cr.program.Eval(activation)
		if err != nil {
			// A rule that cannot evaluate contributes nothing; the table
			// is fixed and validated at construction so this is unreachable
			// for well-typed input.
			continue
		}
		triggered, ok := out.(types.Bool)
		if !ok || !bool(triggered) {
			continue
		}

		if cr.rule.Floor > prob {
			prob = cr.rule.Floor
		}
		factors = append(factors, domain.RiskFactor{
			Description: cr.rule.Describe(in),
			Severity:    cr.rule.Severity,
		})
	}

	return prob, factors
}

package heuristics

import (
	"fmt"

	"github.com/opensource-finance/shrike/internal/domain"
)

// RuleTableVersion identifies the current rule table. Bump when a threshold
// or rule set changes so verdicts remain auditable against the table that
// produced them.
const RuleTableVersion = "1.0.0"

// DefaultRules returns the versioned fraud pattern table for the primary
// domain. Order is fixed: it determines factor ordering in explanations.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:         "forced-overdraft",
			Name:       "Forced overdraft",
			Expression: "new_balance_orig < 0.0",
			Floor:      0.99,
			Severity:   domain.SeverityDanger,
			Describe: func(in Input) string {
				return "Illegal Overdraft: Sender balance went negative, indicating a forced withdrawal"
			},
		},
		{
			ID:         "balance-drain",
			Name:       "Balance drain",
			Expression: "new_balance_orig == 0.0 && amount > 0.0 && amount >= old_balance_org",
			Floor:      0.95,
			Severity:   domain.SeverityDanger,
			Describe: func(in Input) string {
				return fmt.Sprintf("Balance Drain: Full account emptied (%.2f -> 0)", in.OldBalanceOrg)
			},
		},
		{
			ID:         "balance-discrepancy",
			Name:       "Balance-math anomaly",
			Expression: "error_balance_org > 0.01 || error_balance_org < -0.01",
			Floor:      0.85,
			Severity:   domain.SeverityWarning,
			Describe: func(in Input) string {
				return fmt.Sprintf("Balance Discrepancy: Error of %.2f detected (expected ~0)", in.ErrorBalanceOrg)
			},
		},
		{
			ID:         "high-value",
			Name:       "High value",
			Expression: "amount > 150000.0",
			Floor:      0.70,
			Severity:   domain.SeverityWarning,
			Describe: func(in Input) string {
				return fmt.Sprintf("High Amount: %.2f exceeds %.0f threshold", in.Amount, HighValueAmount)
			},
		},
		{
			// Factor-only: explains without raising the probability floor.
			ID:         "high-ratio",
			Name:       "High amount-to-balance ratio",
			Expression: "old_balance_org > 0.0 && amount / old_balance_org > 0.9",
			Floor:      0,
			Severity:   domain.SeverityWarning,
			Describe: func(in Input) string {
				ratio := in.Amount / in.OldBalanceOrg
				return fmt.Sprintf("High Amount-to-Balance Ratio: %.1f%% of available balance", ratio*100)
			},
		},
	}
}

// NewDefaultEngine compiles the default rule table.
func NewDefaultEngine() (*Engine, error) {
	return NewEngine(RuleTableVersion, DefaultRules())
}

// CardDistanceThresholdKm is the secondary-domain distance heuristic.
const CardDistanceThresholdKm = 100.0

// EvaluateCard applies the single secondary-domain heuristic: a large
// cardholder-to-merchant distance is flagged as a factor but contributes no
// probability; the supervised model is the only score source there.
func EvaluateCard(distKm float64) []domain.RiskFactor {
	if distKm <= CardDistanceThresholdKm {
		return nil
	}
	return []domain.RiskFactor{{
		Description: fmt.Sprintf("Distance anomaly: %.1f km from merchant", distKm),
		Severity:    domain.SeverityWarning,
	}}
}

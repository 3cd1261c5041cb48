package domain

// Severity is the visual weight of a risk factor.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// RiskFactor is a single human-readable explanation element produced per
// request. Order matters: factors are displayed in assembly order.
type RiskFactor struct {
	Description string   `json:"factor"`
	Severity    Severity `json:"severity"`
}

// RiskLevel is the coarse tier a probability maps to.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Risk tier thresholds. Fixed constants, not learned.
const (
	HighRiskThreshold   = 0.8
	MediumRiskThreshold = 0.4
	FraudThreshold      = 0.5
)

// ClassifyRisk buckets a probability into a tier.
func ClassifyRisk(probability float64) RiskLevel {
	switch {
	case probability > HighRiskThreshold:
		return RiskHigh
	case probability > MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PredictionResult is the verdict for a single scoring call. Ephemeral: one
// per request, no persisted history.
type PredictionResult struct {
	Probability float64      `json:"probability"`
	IsFraud     bool         `json:"is_fraud"`
	RiskLevel   RiskLevel    `json:"risk_level"`
	Explanation string       `json:"explanation"`
	RiskFactors []RiskFactor `json:"risk_factors"`
}

// Package ensemble fuses model and heuristic scores into a final verdict
// with a human-readable explanation.
package ensemble

import (
	"fmt"
	"strings"

	"github.com/opensource-finance/shrike/internal/domain"
)

// maxExplanationFactors caps how many factors the summary sentence cites.
const maxExplanationFactors = 3

// modelFactor describes an elevated model score as a risk factor of its own,
// so the caller can see the model's contribution alongside rule hits.
func modelFactor(modelName string, modelProb float64) domain.RiskFactor {
	severity := domain.SeverityWarning
	if modelProb > domain.HighRiskThreshold {
		severity = domain.SeverityDanger
	}
	return domain.RiskFactor{
		Description: fmt.Sprintf("AI Model: %s detected suspicious pattern (confidence: %.1f%%)", modelName, modelProb*100),
		Severity:    severity,
	}
}

// Decide fuses the model probability with the heuristic score by taking the
// larger of the two, so neither channel can suppress the other's alarm. The
// factors slice arrives in rule-table order; an elevated model score is
// prepended so it leads the explanation.
func Decide(modelProb, heuristicProb float64, factors []domain.RiskFactor) domain.PredictionResult {
	return decide("Gradient boosting", modelProb, heuristicProb, factors)
}

// DecideCard runs the card domain through the same contract. The random
// forest is the only probability source there; the distance rule contributes
// factors without a score, so the heuristic channel stays at zero.
func DecideCard(modelProb float64, factors []domain.RiskFactor) domain.PredictionResult {
	return decide("Random forest", modelProb, 0, factors)
}

func decide(modelName string, modelProb, heuristicProb float64, factors []domain.RiskFactor) domain.PredictionResult {
	if modelProb > domain.FraudThreshold {
		factors = append([]domain.RiskFactor{modelFactor(modelName, modelProb)}, factors...)
	}

	prob := modelProb
	if heuristicProb > prob {
		prob = heuristicProb
	}
	isFraud := prob > domain.FraudThreshold

	if isFraud {
		cited := factors
		if len(cited) > maxExplanationFactors {
			cited = cited[:maxExplanationFactors]
		}
		descriptions := make([]string, len(cited))
		for i, f := range cited {
			descriptions[i] = f.Description
		}
		return domain.PredictionResult{
			Probability: prob,
			IsFraud:     true,
			RiskLevel:   domain.ClassifyRisk(prob),
			Explanation: fmt.Sprintf("Risk Factors: %s.", strings.Join(descriptions, "; ")),
			RiskFactors: factors,
		}
	}

	if len(factors) == 0 {
		factors = []domain.RiskFactor{{
			Description: "All checks passed — no anomalies detected",
			Severity:    domain.SeverityInfo,
		}}
	}
	return domain.PredictionResult{
		Probability: prob,
		IsFraud:     false,
		RiskLevel:   domain.ClassifyRisk(prob),
		Explanation: "Transaction parameters are consistent with legitimate behavior.",
		RiskFactors: factors,
	}
}

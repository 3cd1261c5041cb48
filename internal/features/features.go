// Package features builds model-ready feature vectors from raw transactions.
//
// The transforms here must mirror the training pipeline exactly: any drift
// between serving-time and training-time feature computation silently
// corrupts predictions.
package features

import (
	"sort"

	"github.com/opensource-finance/shrike/internal/domain"
)

// ErrorBalanceOrg measures sender-side balance-math inconsistency.
// Approximately zero for a mathematically consistent transaction.
func ErrorBalanceOrg(r *domain.TransactionRecord) float64 {
	return r.NewBalanceOrig + r.Amount - r.OldBalanceOrg
}

// ErrorBalanceDest measures recipient-side balance-math inconsistency.
func ErrorBalanceDest(r *domain.TransactionRecord) float64 {
	return r.OldBalanceDest + r.Amount - r.NewBalanceDest
}

// Compute builds the canonical primary feature vector for a record. A
// category absent from the encoding maps to the default code; that is a
// documented fallback, not an error. Pure: no side effects, no failure mode
// beyond arithmetic.
func Compute(r *domain.TransactionRecord, enc *domain.CategoryEncoding) domain.FeatureVector {
	code := domain.DefaultCategoryCode
	if enc != nil {
		code, _ = enc.Encode(r.Type)
	}

	return domain.FeatureVector{
		TypeCode:         float64(code),
		Amount:           r.Amount,
		OldBalanceOrg:    r.OldBalanceOrg,
		NewBalanceOrig:   r.NewBalanceOrig,
		ErrorBalanceOrg:  ErrorBalanceOrg(r),
		ErrorBalanceDest: ErrorBalanceDest(r),
	}
}

// FitEncoding fits a CategoryEncoding on the given labels. Codes are
// assigned in sorted label order and are stable for the lifetime of the
// emitted artifact.
func FitEncoding(labels []string) *domain.CategoryEncoding {
	seen := make(map[string]bool, len(labels))
	var classes []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return &domain.CategoryEncoding{Classes: classes}
}

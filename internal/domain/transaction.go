// Package domain defines the core interfaces and types for Shrike.
package domain

// TransactionRecord is a raw mobile-money transaction in the primary
// (PaySim-schema) domain. It is owned by the caller and never mutated by the
// scoring path.
type TransactionRecord struct {
	// Step is the simulation time-step (1 step = 1 hour).
	Step int `json:"step"`

	// Type is the transaction category label, e.g. "TRANSFER" or "CASH_OUT".
	Type string `json:"type"`

	Amount float64 `json:"amount"`

	// Sender balances before and after the transaction.
	OldBalanceOrg  float64 `json:"oldbalanceOrg"`
	NewBalanceOrig float64 `json:"newbalanceOrig"`

	// Recipient balances before and after the transaction.
	OldBalanceDest float64 `json:"oldbalanceDest"`
	NewBalanceDest float64 `json:"newbalanceDest"`
}

// CardTransaction is a raw card transaction in the secondary
// (Sparkov-schema) domain: geospatial plus demographic features.
type CardTransaction struct {
	Amount float64 `json:"amt"`

	// Cardholder location.
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`

	// Merchant location.
	MerchLat  float64 `json:"merch_lat"`
	MerchLong float64 `json:"merch_long"`

	// DOB is the cardholder date of birth, "YYYY-MM-DD".
	DOB string `json:"dob"`

	CityPop float64 `json:"city_pop"`
}

// LabeledRecord pairs a transaction with its ground-truth fraud label.
// Produced by the trainer's dataset loader, never seen at serving time.
type LabeledRecord struct {
	Record  TransactionRecord
	IsFraud bool
}

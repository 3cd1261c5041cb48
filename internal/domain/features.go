package domain

// FeatureVector is the canonical ordered input to the primary models:
// [type_code, amount, oldBalanceOrg, newBalanceOrig, errorBalanceOrg,
// errorBalanceDest]. The field order is the contract with every trained
// artifact and must never vary.
type FeatureVector struct {
	TypeCode         float64
	Amount           float64
	OldBalanceOrg    float64
	NewBalanceOrig   float64
	ErrorBalanceOrg  float64
	ErrorBalanceDest float64
}

// PrimaryFeatureCount is the width of the primary feature vector.
const PrimaryFeatureCount = 6

// Values returns the vector in model layout order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.TypeCode,
		v.Amount,
		v.OldBalanceOrg,
		v.NewBalanceOrig,
		v.ErrorBalanceOrg,
		v.ErrorBalanceDest,
	}
}

// CardFeatureVector is the canonical ordered input to the secondary model:
// [amt, dist_to_merch, age, city_pop].
type CardFeatureVector struct {
	Amount      float64
	DistToMerch float64
	Age         float64
	CityPop     float64
}

// Values returns the vector in model layout order.
func (v CardFeatureVector) Values() []float64 {
	return []float64{v.Amount, v.DistToMerch, v.Age, v.CityPop}
}

// CategoryEncoding maps category labels to the integer codes the primary
// models were trained with. Fit once by the trainer, immutable afterward.
type CategoryEncoding struct {
	// Classes holds labels in code order: Classes[i] encodes to i.
	Classes []string `json:"classes"`
}

// DefaultCategoryCode is substituted for labels absent from the fitted
// encoding. A documented fallback, never an error.
const DefaultCategoryCode = 0

// Encode returns the code for a label, or DefaultCategoryCode with ok=false
// when the label was not seen during fitting.
func (e *CategoryEncoding) Encode(label string) (code int, ok bool) {
	for i, c := range e.Classes {
		if c == label {
			return i, true
		}
	}
	return DefaultCategoryCode, false
}

// Decode returns the label for a code.
func (e *CategoryEncoding) Decode(code int) (string, bool) {
	if code < 0 || code >= len(e.Classes) {
		return "", false
	}
	return e.Classes[code], true
}

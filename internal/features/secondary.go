package features

import (
	"math"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

const (
	earthRadiusKm = 6371

	// ageReferenceYear anchors age derivation; matches the year the
	// secondary model was trained against.
	ageReferenceYear = 2025

	// defaultAge substitutes for an unparsable date of birth.
	defaultAge = 30
)

// Haversine returns the great-circle distance in kilometers between two
// (lat, long) points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// AgeFromDOB derives the cardholder age from a "YYYY-MM-DD" birth date.
// An unparsable date recovers locally with the default age; never an error.
func AgeFromDOB(dob string) float64 {
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return defaultAge
	}
	return float64(ageReferenceYear - t.Year())
}

// ComputeCard builds the canonical secondary feature vector:
// [amt, dist_to_merch, age, city_pop].
func ComputeCard(tx *domain.CardTransaction) domain.CardFeatureVector {
	return domain.CardFeatureVector{
		Amount:      tx.Amount,
		DistToMerch: Haversine(tx.Lat, tx.Long, tx.MerchLat, tx.MerchLong),
		Age:         AgeFromDOB(tx.DOB),
		CityPop:     tx.CityPop,
	}
}

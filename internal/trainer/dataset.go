package trainer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/opensource-finance/shrike/internal/domain"
)

// LoadPrimaryDataset reads the labeled PaySim-schema CSV. When
// sampleFraction < 1.0 every fraud row is kept and only the legitimate rows
// are sampled, so development runs preserve the full fraud signal.
func LoadPrimaryDataset(path string, sampleFraction float64, seed int64) ([]domain.LabeledRecord, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset not found: %s (download the PaySim CSV into data/ before training)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(col)] = i
	}
	for _, required := range []string{"type", "amount", "oldbalanceorg", "newbalanceorig", "oldbalancedest", "newbalancedest", "isfraud"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var fraud, legit []domain.LabeledRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		step := 0
		if i, ok := colIndex["step"]; ok {
			step, _ = strconv.Atoi(record[i])
		}
		amount, _ := strconv.ParseFloat(record[colIndex["amount"]], 64)
		oldBalanceOrg, _ := strconv.ParseFloat(record[colIndex["oldbalanceorg"]], 64)
		newBalanceOrig, _ := strconv.ParseFloat(record[colIndex["newbalanceorig"]], 64)
		oldBalanceDest, _ := strconv.ParseFloat(record[colIndex["oldbalancedest"]], 64)
		newBalanceDest, _ := strconv.ParseFloat(record[colIndex["newbalancedest"]], 64)
		isFraud := record[colIndex["isfraud"]] == "1"

		labeled := domain.LabeledRecord{
			Record: domain.TransactionRecord{
				Step:           step,
				Type:           record[colIndex["type"]],
				Amount:         amount,
				OldBalanceOrg:  oldBalanceOrg,
				NewBalanceOrig: newBalanceOrig,
				OldBalanceDest: oldBalanceDest,
				NewBalanceDest: newBalanceDest,
			},
			IsFraud: isFraud,
		}
		if isFraud {
			fraud = append(fraud, labeled)
		} else {
			legit = append(legit, labeled)
		}
	}

	if len(fraud)+len(legit) == 0 {
		return nil, fmt.Errorf("dataset %s contains no rows", path)
	}

	rng := rand.New(rand.NewSource(seed))
	if sampleFraction < 1.0 {
		rng.Shuffle(len(legit), func(a, b int) { legit[a], legit[b] = legit[b], legit[a] })
		keep := int(float64(len(legit)) * sampleFraction)
		legit = legit[:keep]
	}

	records := append(fraud, legit...)
	rng.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })
	return records, nil
}

// LabeledCard pairs a card transaction with its ground-truth label.
type LabeledCard struct {
	Record  domain.CardTransaction
	IsFraud bool
}

// LoadCardDataset reads the labeled Sparkov-schema CSV, drawing at most
// maxRows rows after a seeded shuffle.
func LoadCardDataset(path string, maxRows int, seed int64) ([]LabeledCard, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset not found: %s (download the Sparkov CSV into data/ before training)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(col)] = i
	}
	for _, required := range []string{"amt", "lat", "long", "merch_lat", "merch_long", "dob", "city_pop", "is_fraud"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var cards []LabeledCard
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		amount, _ := strconv.ParseFloat(record[colIndex["amt"]], 64)
		lat, _ := strconv.ParseFloat(record[colIndex["lat"]], 64)
		long, _ := strconv.ParseFloat(record[colIndex["long"]], 64)
		merchLat, _ := strconv.ParseFloat(record[colIndex["merch_lat"]], 64)
		merchLong, _ := strconv.ParseFloat(record[colIndex["merch_long"]], 64)
		cityPop, _ := strconv.ParseFloat(record[colIndex["city_pop"]], 64)

		cards = append(cards, LabeledCard{
			Record: domain.CardTransaction{
				Amount:    amount,
				Lat:       lat,
				Long:      long,
				MerchLat:  merchLat,
				MerchLong: merchLong,
				DOB:       record[colIndex["dob"]],
				CityPop:   cityPop,
			},
			IsFraud: record[colIndex["is_fraud"]] == "1",
		})
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("dataset %s contains no rows", path)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cards), func(a, b int) { cards[a], cards[b] = cards[b], cards[a] })
	if maxRows > 0 && len(cards) > maxRows {
		cards = cards[:maxRows]
	}
	return cards, nil
}

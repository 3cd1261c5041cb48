package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/opensource-finance/shrike/internal/artifacts"
	"github.com/opensource-finance/shrike/internal/bus"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/heuristics"
	"github.com/opensource-finance/shrike/internal/ml"
	"github.com/opensource-finance/shrike/internal/scoring"
)

func newTestWorker(t *testing.T, b domain.EventBus) *Worker {
	t.Helper()

	reg := &artifacts.Registry{
		Primary: &ml.GradientBoosting{BaseScore: 3}, // sigmoid(3) ~ 0.95, always fraud
	}
	engine, err := heuristics.NewDefaultEngine()
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	logger := slog.New(slog.DiscardHandler)
	service := scoring.NewService(reg, engine, nil, b, logger)

	return NewWorker(b, service, logger)
}

func TestWorkerScoresIngestedTransactions(t *testing.T) {
	busImpl := bus.NewChannelBus(100)
	defer busImpl.Close()

	worker := newTestWorker(t, busImpl)
	if err := worker.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer worker.Stop()

	// Watch the verdict topic: the worker scores through the same service
	// path as the API, which publishes a verdict per scored transaction.
	var wg sync.WaitGroup
	wg.Add(1)
	var verdict domain.PredictionResult
	_, err := busImpl.Subscribe(context.Background(), domain.TopicVerdict, func(ctx context.Context, msg *domain.Message) error {
		if err := json.Unmarshal(msg.Payload, &verdict); err != nil {
			t.Errorf("failed to parse verdict: %v", err)
		}
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	record := domain.TransactionRecord{
		Type:           "TRANSFER",
		Amount:         100,
		OldBalanceOrg:  5000,
		NewBalanceOrig: 4900,
		NewBalanceDest: 100,
	}
	payload, _ := json.Marshal(record)
	if err := busImpl.Publish(context.Background(), domain.TopicTransactionIngested, payload); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for verdict")
	}

	if !verdict.IsFraud {
		t.Error("expected fraud verdict from the constant high-score model")
	}
	if verdict.RiskLevel != domain.RiskHigh {
		t.Errorf("risk level = %v, want High", verdict.RiskLevel)
	}
}

func TestWorkerDropsMalformedMessages(t *testing.T) {
	busImpl := bus.NewChannelBus(100)
	defer busImpl.Close()

	worker := newTestWorker(t, busImpl)
	if err := worker.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer worker.Stop()

	if err := busImpl.Publish(context.Background(), domain.TopicTransactionIngested, []byte("not-json")); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	// A well-formed transaction published after the garbage must still be
	// scored: the bad message is dropped, not a poison pill.
	var wg sync.WaitGroup
	wg.Add(1)
	_, err := busImpl.Subscribe(context.Background(), domain.TopicVerdict, func(ctx context.Context, msg *domain.Message) error {
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	payload, _ := json.Marshal(domain.TransactionRecord{Type: "CASH_OUT", Amount: 50})
	if err := busImpl.Publish(context.Background(), domain.TopicTransactionIngested, payload); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for verdict after malformed message")
	}
}

func TestWorkerStats(t *testing.T) {
	busImpl := bus.NewChannelBus(100)
	defer busImpl.Close()

	worker := newTestWorker(t, busImpl)

	stats := worker.GetStats()
	if stats.SubscriptionCount != 0 {
		t.Errorf("subscription count before start = %d, want 0", stats.SubscriptionCount)
	}

	if err := worker.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	stats = worker.GetStats()
	if stats.SubscriptionCount != 1 {
		t.Errorf("subscription count = %d, want 1", stats.SubscriptionCount)
	}
	if len(stats.Topics) != 1 || stats.Topics[0] != domain.TopicTransactionIngested {
		t.Errorf("topics = %v, want [%s]", stats.Topics, domain.TopicTransactionIngested)
	}

	if err := worker.Stop(); err != nil {
		t.Fatalf("failed to stop worker: %v", err)
	}
	stats = worker.GetStats()
	if stats.SubscriptionCount != 0 {
		t.Errorf("subscription count after stop = %d, want 0", stats.SubscriptionCount)
	}
}

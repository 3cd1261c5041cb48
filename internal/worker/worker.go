// Package worker provides async scoring of ingested transactions.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/scoring"
)

// Worker scores transactions consumed from the EventBus. It subscribes to
// the ingestion topic and runs each message through the same scoring path
// the synchronous API uses; verdict and alert publication happen inside the
// scoring service.
type Worker struct {
	bus     domain.EventBus
	service *scoring.Service
	logger  *slog.Logger

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, service *scoring.Service, logger *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:     bus,
		service: service,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes to the ingestion topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicTransactionIngested, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	w.logger.Info("worker started", "topic", domain.TopicTransactionIngested)
	return nil
}

// handleMessage scores one ingested transaction. A malformed or unscorable
// message is logged and dropped; it must not stall the subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var record domain.TransactionRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		w.logger.Error("failed to parse ingested transaction",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	result, err := w.service.ScorePrimary(ctx, &record)
	if err != nil {
		w.logger.Error("async scoring failed",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	w.logger.Info("transaction scored",
		"message_id", msg.ID,
		"is_fraud", result.IsFraud,
		"probability", result.Probability,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			w.logger.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.logger.Info("worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}

// Package scoring composes the online decision path: features, models,
// heuristics and the ensemble verdict, plus verdict caching and event
// publication.
package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensource-finance/shrike/internal/artifacts"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/ensemble"
	"github.com/opensource-finance/shrike/internal/features"
	"github.com/opensource-finance/shrike/internal/heuristics"
)

// verdictTTL bounds how long a memoized verdict is served. The scoring path
// is deterministic for a fixed artifact set, so a hit is byte-identical to a
// recompute; the TTL exists to release memory, not to refresh results.
const verdictTTL = 5 * time.Minute

// Service is the online scoring engine. Stateless across requests: every
// verdict is derived from the request alone plus the immutable artifact
// registry.
type Service struct {
	registry *artifacts.Registry
	engine   *heuristics.Engine
	cache    domain.Cache
	bus      domain.EventBus
	logger   *slog.Logger
}

// NewService wires the scoring dependencies. Cache and bus may be nil in
// tests; both are optional fast paths, not correctness requirements.
func NewService(registry *artifacts.Registry, engine *heuristics.Engine, cache domain.Cache, bus domain.EventBus, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		engine:   engine,
		cache:    cache,
		bus:      bus,
		logger:   logger,
	}
}

// Registry exposes the loaded artifact set for health reporting.
func (s *Service) Registry() *artifacts.Registry {
	return s.registry
}

// RuleTableVersion reports the active heuristic table version.
func (s *Service) RuleTableVersion() string {
	return s.engine.Version()
}

// ScorePrimary produces a verdict for a PaySim-schema transaction. Returns
// domain.ErrArtifactMissing when the champion model is not loaded; other
// capabilities stay unaffected.
func (s *Service) ScorePrimary(ctx context.Context, r *domain.TransactionRecord) (*domain.PredictionResult, error) {
	if !s.registry.PrimaryReady() {
		return nil, fmt.Errorf("primary model: %w", domain.ErrArtifactMissing)
	}

	key := s.cacheKey("primary", r)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	vec := features.Compute(r, s.registry.Encoder)
	modelProb := s.registry.Primary.PredictProba(vec.Values())
	heuristicProb, factors := s.engine.Evaluate(r, vec.ErrorBalanceOrg)

	result := ensemble.Decide(modelProb, heuristicProb, factors)

	s.logger.Info("primary verdict",
		"type", r.Type,
		"amount", r.Amount,
		"model_prob", modelProb,
		"heuristic_prob", heuristicProb,
		"probability", result.Probability,
		"is_fraud", result.IsFraud,
		"risk_level", result.RiskLevel,
	)

	s.cacheSet(ctx, key, &result)
	s.publish(ctx, &result)
	return &result, nil
}

// ScoreSecondary produces a verdict for a card-domain transaction. The
// supervised forest is the only score source; the distance heuristic
// explains but never raises the probability, so the verdict runs through
// the same decision contract as the primary path with a zero rule score.
func (s *Service) ScoreSecondary(ctx context.Context, tx *domain.CardTransaction) (*domain.PredictionResult, error) {
	if !s.registry.SecondaryReady() {
		return nil, fmt.Errorf("secondary model: %w", domain.ErrArtifactMissing)
	}

	key := s.cacheKey("secondary", tx)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	vec := features.ComputeCard(tx)
	prob := s.registry.SecondaryRF.PredictProba(vec.Values())
	factors := heuristics.EvaluateCard(vec.DistToMerch)

	result := ensemble.DecideCard(prob, factors)

	s.logger.Info("secondary verdict",
		"amount", tx.Amount,
		"dist_to_merch", vec.DistToMerch,
		"probability", result.Probability,
		"is_fraud", result.IsFraud,
		"risk_level", result.RiskLevel,
	)

	s.cacheSet(ctx, key, &result)
	s.publish(ctx, &result)
	return &result, nil
}

// cacheKey digests the request payload. Same input, same key; the
// probability in a hit is byte-identical to a recompute.
func (s *Service) cacheKey(path string, payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "verdict:" + path + ":" + hex.EncodeToString(sum[:])
}

func (s *Service) cacheGet(ctx context.Context, key string) *domain.PredictionResult {
	if s.cache == nil || key == "" {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}
	var result domain.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (s *Service) cacheSet(ctx context.Context, key string, result *domain.PredictionResult) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, verdictTTL); err != nil {
		s.logger.Warn("failed to cache verdict", "error", err)
	}
}

// publish emits the verdict event, plus an alert when the verdict is fraud.
// Publication is best effort: a bus failure never fails the request.
func (s *Service) publish(ctx context.Context, result *domain.PredictionResult) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, domain.TopicVerdict, payload); err != nil {
		s.logger.Warn("failed to publish verdict", "error", err)
	}
	if result.IsFraud {
		if err := s.bus.Publish(ctx, domain.TopicAlert, payload); err != nil {
			s.logger.Warn("failed to publish alert", "error", err)
		}
	}
}

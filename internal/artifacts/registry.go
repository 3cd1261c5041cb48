package artifacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/ml"
)

// Registry holds the decoded artifacts the scoring service works from.
// It is built once at startup and never mutated afterwards, so readers
// need no locking. A nil field means the artifact was absent at load time
// and the capability depending on it is unavailable.
type Registry struct {
	Primary         *ml.GradientBoosting
	Logistic        *ml.LogisticRegression
	IsolationForest *ml.IsolationForest
	Encoder         *domain.CategoryEncoding
	SecondaryRF     *ml.RandomForest
}

// LoadRegistry reads every known artifact key from the store and decodes
// what it finds. Missing artifacts are logged and skipped rather than
// failing the load; decode failures are fatal because they indicate a
// corrupt store.
func LoadRegistry(ctx context.Context, store domain.ArtifactStore, logger *slog.Logger) (*Registry, error) {
	reg := &Registry{}

	load := func(key, kind string, model any) (bool, error) {
		artifact, err := store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			logger.Warn("artifact missing, capability degraded", "key", key)
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to load artifact %s: %w", key, err)
		}
		if err := Decode(artifact, kind, model); err != nil {
			return false, err
		}
		logger.Info("artifact loaded", "key", key, "kind", kind, "created_at", artifact.CreatedAt)
		return true, nil
	}

	var primary ml.GradientBoosting
	if ok, err := load(domain.ArtifactPrimary, ml.KindGradientBoosting, &primary); err != nil {
		return nil, err
	} else if ok {
		reg.Primary = &primary
	}

	var logistic ml.LogisticRegression
	if ok, err := load(domain.ArtifactLogistic, ml.KindLogistic, &logistic); err != nil {
		return nil, err
	} else if ok {
		reg.Logistic = &logistic
	}

	var isoForest ml.IsolationForest
	if ok, err := load(domain.ArtifactIsolationForest, ml.KindIsolationForest, &isoForest); err != nil {
		return nil, err
	} else if ok {
		reg.IsolationForest = &isoForest
	}

	var encoder domain.CategoryEncoding
	if ok, err := load(domain.ArtifactEncoder, ml.KindCategoryEncoder, &encoder); err != nil {
		return nil, err
	} else if ok {
		reg.Encoder = &encoder
	}

	var secondary ml.RandomForest
	if ok, err := load(domain.ArtifactSecondaryRF, ml.KindRandomForest, &secondary); err != nil {
		return nil, err
	} else if ok {
		reg.SecondaryRF = &secondary
	}

	return reg, nil
}

// Keys returns the logical names of the artifacts present, sorted. Used by
// the health endpoint to report what the service can do.
func (r *Registry) Keys() []string {
	var keys []string
	if r.Primary != nil {
		keys = append(keys, domain.ArtifactPrimary)
	}
	if r.Logistic != nil {
		keys = append(keys, domain.ArtifactLogistic)
	}
	if r.IsolationForest != nil {
		keys = append(keys, domain.ArtifactIsolationForest)
	}
	if r.Encoder != nil {
		keys = append(keys, domain.ArtifactEncoder)
	}
	if r.SecondaryRF != nil {
		keys = append(keys, domain.ArtifactSecondaryRF)
	}
	sort.Strings(keys)
	return keys
}

// PrimaryReady reports whether the primary scoring path can serve: it needs
// the champion model. The encoder tolerates absence by falling back to the
// default category code, so it is not required.
func (r *Registry) PrimaryReady() bool {
	return r.Primary != nil
}

// SecondaryReady reports whether the card scoring path can serve.
func (r *Registry) SecondaryReady() bool {
	return r.SecondaryRF != nil
}

package artifacts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

// Encode wraps a trained model or encoder into a storable artifact.
func Encode(key, kind string, model any) (*domain.Artifact, error) {
	payload, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", key, err)
	}
	return &domain.Artifact{
		Key:       key,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals an artifact payload into the given model value after
// checking the stored kind matches what the caller expects.
func Decode(artifact *domain.Artifact, kind string, model any) error {
	if artifact.Kind != kind {
		return fmt.Errorf("artifact %s has kind %q, want %q", artifact.Key, artifact.Kind, kind)
	}
	if err := json.Unmarshal(artifact.Payload, model); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", artifact.Key, err)
	}
	return nil
}

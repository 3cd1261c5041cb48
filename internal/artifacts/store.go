// Package artifacts provides persistence for trained models and encoders.
package artifacts

import (
	"errors"
	"fmt"

	"github.com/opensource-finance/shrike/internal/domain"
)

var (
	ErrNotFound     = errors.New("artifact not found")
	ErrInvalidInput = errors.New("invalid input")
)

// New creates an artifact store based on configuration.
func New(cfg domain.ArtifactStoreConfig) (domain.ArtifactStore, error) {
	switch cfg.Driver {
	case "fs":
		return NewFSStore(cfg.Dir)
	case "sqlite", "postgres":
		return newSQLStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

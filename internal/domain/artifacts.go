package domain

import (
	"context"
	"errors"
	"time"
)

// Logical artifact keys. Stable names independent of storage technology;
// the trainer writes them, the service reads them.
const (
	ArtifactPrimary         = "primary"          // boosted-tree champion
	ArtifactLogistic        = "logistic"         // class-weighted linear baseline
	ArtifactIsolationForest = "isolation_forest" // unsupervised anomaly detector
	ArtifactEncoder         = "encoder"          // fitted category encoding
	ArtifactSecondaryRF     = "secondary_rf"     // alternate-domain random forest
)

// ErrArtifactMissing is returned when a required model or encoder is absent.
// Only the capability that depends on the artifact fails; the rest of the
// service stays up.
var ErrArtifactMissing = errors.New("artifact not loaded")

// Artifact is a serialized trained model or encoder plus its identity.
type Artifact struct {
	// Key is the logical name the artifact is addressed by.
	Key string `json:"key"`

	// Kind identifies the payload type for decoding, e.g. "gradient_boosting".
	Kind string `json:"kind"`

	// Payload is the encoded model.
	Payload []byte `json:"payload"`

	CreatedAt time.Time `json:"createdAt"`
}

// ArtifactStore is the external holder of trained artifacts keyed by logical
// name. Put is an atomic replace of any prior artifact at that key.
type ArtifactStore interface {
	Put(ctx context.Context, artifact *Artifact) error
	Get(ctx context.Context, key string) (*Artifact, error)
	List(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// ArtifactStoreConfig holds configuration for artifact store initialization.
type ArtifactStoreConfig struct {
	// Driver is the storage backend: "fs", "sqlite" or "postgres".
	Driver string

	// Filesystem specific
	Dir string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

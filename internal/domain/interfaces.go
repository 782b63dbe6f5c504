package domain

import "context"

// Classifier is the loaded, immutable model artifact. Predict is safe for
// concurrent use; the artifact never mutates after load.
type Classifier interface {
	// Predict runs inference on a vector already conformant to Schema and
	// returns the predicted class (1 = eligible) with its two-class
	// probability distribution (index 0 = not eligible, index 1 = eligible).
	Predict(vector FeatureVector) (class int, probabilities [2]float64, err error)

	// Schema returns the ordered feature list the artifact declares.
	Schema() []string

	// Info returns the artifact's metadata.
	Info() ModelInfo
}

// ArtifactProvider hands out the process-wide classifier, loading it lazily
// on first use. A failed load is surfaced to the caller and retried only by
// a subsequent independent request.
type ArtifactProvider interface {
	// Get returns the loaded classifier, loading it if necessary.
	Get(ctx context.Context) (Classifier, error)

	// Loaded reports whether an artifact is currently loaded, without
	// triggering a load.
	Loaded() bool
}

// DecisionEngine produces an eligibility verdict for a donor profile.
type DecisionEngine interface {
	Decide(ctx context.Context, profile *DonorProfile) (*EligibilityVerdict, error)
}

// ConfigManager provides access to the service configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetModelConfig() *ModelConfig
	Validate() error
}

package model

import (
	"encoding/json"
	"fmt"

	"github.com/blood-eligibility-server/internal/domain"
)

// parseModelInfo decodes the sidecar metadata file accompanying an
// artifact.
func parseModelInfo(payload []byte) (*domain.ModelInfo, error) {
	var info domain.ModelInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decoding model metadata: %w", err)
	}
	return &info, nil
}

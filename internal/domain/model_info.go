package domain

// ModelInfo describes the loaded classifier artifact: its identity and the
// ordered feature list it was trained on. Sourced from the sidecar metadata
// file when present, otherwise synthesized from defaults.
type ModelInfo struct {
	ModelName string   `json:"model_name"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
}

// Package model loads the pre-trained eligibility classifier artifact and
// exposes inference over normalized feature vectors.
package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/domain"
)

// Artifact is the loaded classifier plus its declared input schema. It is
// immutable after load and safe for concurrent use.
type Artifact struct {
	trees  *boostedTrees
	schema []string
	info   domain.ModelInfo
}

// Schema returns the ordered feature list the artifact declares.
func (a *Artifact) Schema() []string {
	return a.schema
}

// Info returns the artifact metadata.
func (a *Artifact) Info() domain.ModelInfo {
	return a.info
}

// Predict runs inference on a vector conformant to Schema. The returned
// probabilities are the two-class distribution (index 0 = not eligible,
// index 1 = eligible); confidence for the chosen class is
// probabilities[class] * 100.
func (a *Artifact) Predict(vector domain.FeatureVector) (int, [2]float64, error) {
	score, err := a.trees.score(vector)
	if err != nil {
		return 0, [2]float64{}, domain.NewInferenceError(err.Error(), err)
	}

	pEligible := sigmoid(score)
	probabilities := [2]float64{1 - pEligible, pEligible}

	class := 0
	if pEligible >= 0.5 {
		class = 1
	}
	return class, probabilities, nil
}

// Handle owns the process-wide artifact slot. The first successful load
// wins and is shared read-only by all concurrent decision requests; a
// failed load is not cached, so a later request retries it.
type Handle struct {
	cfg    domain.ModelConfig
	logger *logrus.Logger

	mu       sync.Mutex
	artifact *Artifact
}

// NewHandle creates an artifact handle. No I/O happens until Get.
func NewHandle(cfg domain.ModelConfig, logger *logrus.Logger) *Handle {
	return &Handle{cfg: cfg, logger: logger}
}

// Get returns the loaded artifact, performing the one-time load if needed.
// Concurrent callers during an in-flight load wait for its outcome.
func (h *Handle) Get(ctx context.Context) (domain.Classifier, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.artifact != nil {
		return h.artifact, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err := h.load()
	if err != nil {
		return nil, err
	}

	h.artifact = artifact
	return artifact, nil
}

// Loaded reports whether an artifact is currently loaded without
// triggering a load.
func (h *Handle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.artifact != nil
}

// load locates, reads and decodes the artifact and its sidecar metadata.
func (h *Handle) load() (*Artifact, error) {
	path, err := h.locateArtifact()
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewModelUnavailableError(fmt.Sprintf("reading artifact %s", path), err)
	}

	trees, err := parseBoostedTrees(payload)
	if err != nil {
		return nil, domain.NewInferenceError(fmt.Sprintf("corrupt artifact %s", path), err)
	}

	info := h.loadInfo()

	h.logger.WithFields(logrus.Fields{
		"path":       path,
		"model_name": info.ModelName,
		"version":    info.Version,
		"features":   len(info.Features),
		"trees":      len(trees.Trees),
	}).Info("Model artifact loaded")

	return &Artifact{
		trees:  trees,
		schema: info.Features,
		info:   info,
	}, nil
}

// locateArtifact resolves the configured artifact path, falling back to a
// directory scan when the exact file is missing.
func (h *Handle) locateArtifact() (string, error) {
	if h.cfg.Path != "" {
		if _, err := os.Stat(h.cfg.Path); err == nil {
			return h.cfg.Path, nil
		}
		h.logger.WithField("path", h.cfg.Path).Warn("Configured model artifact not found, scanning model directory")
	}

	dir := h.cfg.Dir
	if dir == "" && h.cfg.Path != "" {
		dir = filepath.Dir(h.cfg.Path)
	}
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.model.json"))
		if err == nil && len(matches) > 0 {
			sort.Strings(matches)
			h.logger.WithField("path", matches[0]).Info("Using fallback model artifact")
			return matches[0], nil
		}
	}

	return "", domain.NewModelUnavailableError(
		fmt.Sprintf("no artifact at %q and no fallback in %q", h.cfg.Path, dir), nil)
}

// loadInfo reads the sidecar metadata file. Absence of the sidecar is not
// an error: the schema falls back to the fixed default feature list.
func (h *Handle) loadInfo() domain.ModelInfo {
	info := domain.ModelInfo{
		ModelName: "gradient_boosting",
		Version:   "1.0.0",
		Features:  domain.DefaultSchema(),
	}

	if h.cfg.InfoPath == "" {
		return info
	}

	payload, err := os.ReadFile(h.cfg.InfoPath)
	if err != nil {
		h.logger.WithError(err).WithField("path", h.cfg.InfoPath).Warn("Model metadata sidecar unreadable, using default schema")
		return info
	}

	parsed, err := parseModelInfo(payload)
	if err != nil {
		h.logger.WithError(err).WithField("path", h.cfg.InfoPath).Warn("Model metadata sidecar invalid, using default schema")
		return info
	}

	if parsed.ModelName != "" {
		info.ModelName = parsed.ModelName
	}
	if parsed.Version != "" {
		info.Version = parsed.Version
	}
	if len(parsed.Features) > 0 {
		info.Features = parsed.Features
	}
	return info
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/domain"
)

// VerdictCache caches classifier-derived verdicts keyed by profile digest.
// Implementations must be safe for concurrent use; a nil cache disables
// caching.
type VerdictCache interface {
	Get(ctx context.Context, key string) (*domain.EligibilityVerdict, bool)
	Set(ctx context.Context, key string, verdict *domain.EligibilityVerdict)
}

// Engine orchestrates the eligibility decision: absolute-rule pre-check,
// feature normalization, classifier inference, then a safety override
// pass re-asserting the rules over the classifier output.
type Engine struct {
	logger    *logrus.Logger
	artifacts domain.ArtifactProvider
	rules     *RuleEvaluator
	cache     VerdictCache
}

// NewEngine creates a decision engine. cache may be nil.
func NewEngine(logger *logrus.Logger, artifacts domain.ArtifactProvider, cache VerdictCache) *Engine {
	return &Engine{
		logger:    logger,
		artifacts: artifacts,
		rules:     NewRuleEvaluator(logger),
		cache:     cache,
	}
}

// Decide produces an eligibility verdict for a validated donor profile.
// It fails with a MODEL_UNAVAILABLE error when no rule fires and the model
// artifact cannot be loaded; inference failures surface as INFERENCE_ERROR.
func (e *Engine) Decide(ctx context.Context, profile *domain.DonorProfile) (*domain.EligibilityVerdict, error) {
	start := time.Now()
	profile.ApplyDefaults()

	// Step 1: absolute-rule pre-check. A firing rule short-circuits the
	// decision and the model is never invoked.
	if verdict := e.rules.Evaluate(profile); verdict != nil {
		e.logVerdict(profile, verdict, "rule_precheck", start)
		return verdict, nil
	}

	// Step 2: ensure the artifact is loaded.
	classifier, err := e.artifacts.Get(ctx)
	if err != nil {
		return nil, err
	}

	// The decision is deterministic for a given profile and artifact, so
	// classifier verdicts can be served from cache.
	cacheKey := e.verdictKey(profile, classifier.Info())
	if e.cache != nil {
		if verdict, ok := e.cache.Get(ctx, cacheKey); ok {
			e.logVerdict(profile, verdict, "cache", start)
			return verdict, nil
		}
	}

	// Step 3: normalize the profile into the model's schema.
	schema := classifier.Schema()
	if len(schema) == 0 {
		return nil, domain.NewNormalizationError("loaded model declares an empty schema", nil)
	}
	vector := NormalizeProfile(profile, schema)

	// Step 4: classify.
	class, probabilities, err := classifier.Predict(vector)
	if err != nil {
		return nil, err
	}

	verdict := &domain.EligibilityVerdict{
		ContributingFactors: []string{},
	}
	if class == 1 {
		verdict.Label = domain.LabelEligible
		verdict.Confidence = probabilities[1] * 100
	} else {
		verdict.Label = domain.LabelNotEligible
		verdict.Confidence = probabilities[0] * 100

		// Step 5: collect model-path contributing factors in fixed order.
		e.collectFactors(profile, verdict)
	}

	// Step 6: safety override. Only an "Eligible" model output is
	// re-checked; a model "Not eligible" keeps its model-derived factors
	// even when an absolute rule would independently fire.
	if verdict.Label == domain.LabelEligible {
		if override := e.rules.Evaluate(profile); override != nil {
			e.logger.WithFields(logrus.Fields{
				"model_confidence": verdict.Confidence,
				"override_reason":  override.PrimaryExclusionReason,
			}).Warn("Safety override rejected a model-eligible donor")
			verdict = override
		}
	}

	if e.cache != nil {
		e.cache.Set(ctx, cacheKey, verdict)
	}

	e.logVerdict(profile, verdict, "classifier", start)
	return verdict, nil
}

// collectFactors appends the human-readable factors for the non-absolute
// medical flags, in fixed order, and sets the primary reason to the first.
func (e *Engine) collectFactors(profile *domain.DonorProfile, verdict *domain.EligibilityVerdict) {
	if profile.Diabetic {
		verdict.ContributingFactors = append(verdict.ContributingFactors, domain.FactorDiabetes)
	}
	if profile.Hypertensive {
		verdict.ContributingFactors = append(verdict.ContributingFactors, domain.FactorHypertension)
	}
	if profile.Asthmatic {
		verdict.ContributingFactors = append(verdict.ContributingFactors, domain.FactorAsthma)
	}
	if len(verdict.ContributingFactors) > 0 {
		verdict.PrimaryExclusionReason = verdict.ContributingFactors[0]
	}
}

// verdictKey derives a deterministic cache key from the profile content and
// the artifact identity.
func (e *Engine) verdictKey(profile *domain.DonorProfile, info domain.ModelInfo) string {
	payload, err := json.Marshal(profile)
	if err != nil {
		// Profiles are plain structs; marshaling cannot realistically
		// fail, but fall back to an uncacheable key if it does.
		return fmt.Sprintf("uncacheable-%d", time.Now().UnixNano())
	}

	digest := sha256.Sum256(payload)
	return fmt.Sprintf("verdict:%s:%s:%s", info.ModelName, info.Version, hex.EncodeToString(digest[:]))
}

func (e *Engine) logVerdict(profile *domain.DonorProfile, verdict *domain.EligibilityVerdict, source string, start time.Time) {
	e.logger.WithFields(logrus.Fields{
		"label":       verdict.Label,
		"confidence":  verdict.Confidence,
		"source":      source,
		"age_group":   AgeGroup(profile.Age),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Eligibility decision completed")
}

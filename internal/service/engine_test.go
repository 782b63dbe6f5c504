package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blood-eligibility-server/internal/domain"
)

type stubClassifier struct {
	schema     []string
	info       domain.ModelInfo
	class      int
	probs      [2]float64
	err        error
	calls      int
	lastVector domain.FeatureVector
}

func (s *stubClassifier) Predict(vector domain.FeatureVector) (int, [2]float64, error) {
	s.calls++
	s.lastVector = vector
	if s.err != nil {
		return 0, [2]float64{}, s.err
	}
	return s.class, s.probs, nil
}

func (s *stubClassifier) Schema() []string {
	return s.schema
}

func (s *stubClassifier) Info() domain.ModelInfo {
	return s.info
}

type stubProvider struct {
	classifier *stubClassifier
	err        error
	getCalls   int
}

func (p *stubProvider) Get(ctx context.Context) (domain.Classifier, error) {
	p.getCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.classifier, nil
}

func (p *stubProvider) Loaded() bool {
	return p.err == nil && p.getCalls > 0
}

type mapCache struct {
	entries map[string]*domain.EligibilityVerdict
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*domain.EligibilityVerdict)}
}

func (m *mapCache) Get(ctx context.Context, key string) (*domain.EligibilityVerdict, bool) {
	v, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return v, ok
}

func (m *mapCache) Set(ctx context.Context, key string, verdict *domain.EligibilityVerdict) {
	m.entries[key] = verdict
}

func eligibleClassifier() *stubClassifier {
	return &stubClassifier{
		schema: domain.DefaultSchema(),
		info:   domain.ModelInfo{ModelName: "gradient_boosting", Version: "1.0.0"},
		class:  1,
		probs:  [2]float64{0.2, 0.8},
	}
}

func TestEngine_Decide_PrecheckShortCircuits(t *testing.T) {
	provider := &stubProvider{classifier: eligibleClassifier()}
	engine := NewEngine(testLogger(), provider, nil)

	profile := healthyMaleProfile()
	profile.TransmissibleDisease = true

	verdict, err := engine.Decide(context.Background(), profile)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelNotEligible, verdict.Label)
	assert.Equal(t, 100.0, verdict.Confidence)
	assert.Equal(t, domain.ReasonTransmissibleDisease, verdict.PrimaryExclusionReason)
	assert.Equal(t, []string{domain.ReasonTransmissibleDisease}, verdict.ContributingFactors)

	// The model is never invoked when an absolute rule fires.
	assert.Zero(t, provider.getCalls)
}

func TestEngine_Decide_PrecheckIgnoresOtherFields(t *testing.T) {
	provider := &stubProvider{classifier: eligibleClassifier()}
	engine := NewEngine(testLogger(), provider, nil)

	// Otherwise perfectly eligible values do not soften an absolute rule.
	profile := healthyMaleProfile()
	profile.HemoglobinLevel = 16.0
	profile.TransmissibleDisease = true

	verdict, err := engine.Decide(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNotEligible, verdict.Label)
	assert.Equal(t, 100.0, verdict.Confidence)
}

func TestEngine_Decide_ModelEligible(t *testing.T) {
	classifier := eligibleClassifier()
	provider := &stubProvider{classifier: classifier}
	engine := NewEngine(testLogger(), provider, nil)

	verdict, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)

	assert.Equal(t, domain.LabelEligible, verdict.Label)
	assert.InDelta(t, 80.0, verdict.Confidence, 1e-9)
	assert.Empty(t, verdict.ContributingFactors)
	assert.Empty(t, verdict.PrimaryExclusionReason)

	// The classifier saw a fully normalized vector.
	require.Equal(t, 1, classifier.calls)
	assert.Len(t, classifier.lastVector, len(classifier.schema))

	experience, ok := classifier.lastVector.Number(domain.ColExperienceDon)
	require.True(t, ok)
	assert.Equal(t, float64(1), experience)

	ageGroup, ok := classifier.lastVector.String(domain.ColAgeGroup)
	require.True(t, ok)
	assert.Equal(t, "26-35", ageGroup)
}

func TestEngine_Decide_ModelNotEligibleCollectsFactors(t *testing.T) {
	classifier := eligibleClassifier()
	classifier.class = 0
	classifier.probs = [2]float64{0.7, 0.3}
	provider := &stubProvider{classifier: classifier}
	engine := NewEngine(testLogger(), provider, nil)

	profile := healthyMaleProfile()
	profile.Diabetic = true
	profile.Hypertensive = true

	verdict, err := engine.Decide(context.Background(), profile)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelNotEligible, verdict.Label)
	assert.InDelta(t, 70.0, verdict.Confidence, 1e-9)
	assert.Equal(t, []string{domain.FactorDiabetes, domain.FactorHypertension}, verdict.ContributingFactors)
	assert.Equal(t, domain.FactorDiabetes, verdict.PrimaryExclusionReason)
}

func TestEngine_Decide_ModelNotEligibleWithoutFlags(t *testing.T) {
	classifier := eligibleClassifier()
	classifier.class = 0
	classifier.probs = [2]float64{0.6, 0.4}
	provider := &stubProvider{classifier: classifier}
	engine := NewEngine(testLogger(), provider, nil)

	verdict, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)

	assert.Equal(t, domain.LabelNotEligible, verdict.Label)
	assert.Empty(t, verdict.ContributingFactors)
	assert.Empty(t, verdict.PrimaryExclusionReason)
}

func TestEngine_Decide_ModelUnavailable(t *testing.T) {
	provider := &stubProvider{err: domain.NewModelUnavailableError("no artifact", nil)}
	engine := NewEngine(testLogger(), provider, nil)

	_, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.Error(t, err)
	assert.True(t, domain.IsModelUnavailable(err))
}

func TestEngine_Decide_InferenceErrorPropagates(t *testing.T) {
	classifier := eligibleClassifier()
	classifier.err = domain.NewInferenceError("shape mismatch", nil)
	provider := &stubProvider{classifier: classifier}
	engine := NewEngine(testLogger(), provider, nil)

	_, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.Error(t, err)
	assert.True(t, domain.IsInferenceError(err))
}

func TestEngine_Decide_EmptySchemaFails(t *testing.T) {
	classifier := eligibleClassifier()
	classifier.schema = nil
	provider := &stubProvider{classifier: classifier}
	engine := NewEngine(testLogger(), provider, nil)

	_, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.Error(t, err)
	assert.True(t, domain.IsNormalizationError(err))
}

func TestEngine_Decide_Idempotent(t *testing.T) {
	provider := &stubProvider{classifier: eligibleClassifier()}
	engine := NewEngine(testLogger(), provider, nil)

	first, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)
	second, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Decide_CachesClassifierVerdicts(t *testing.T) {
	classifier := eligibleClassifier()
	provider := &stubProvider{classifier: classifier}
	verdictCache := newMapCache()
	engine := NewEngine(testLogger(), provider, verdictCache)

	first, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)
	second, err := engine.Decide(context.Background(), healthyMaleProfile())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, classifier.calls, "second decision must be served from cache")
	assert.Equal(t, 1, verdictCache.hits)
}

func TestEngine_Decide_RuleVerdictsNotCached(t *testing.T) {
	provider := &stubProvider{classifier: eligibleClassifier()}
	verdictCache := newMapCache()
	engine := NewEngine(testLogger(), provider, verdictCache)

	profile := healthyMaleProfile()
	profile.SickleCell = true

	_, err := engine.Decide(context.Background(), profile)
	require.NoError(t, err)
	assert.Empty(t, verdictCache.entries)
}

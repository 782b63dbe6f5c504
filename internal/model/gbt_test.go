package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blood-eligibility-server/internal/domain"
)

func TestParseBoostedTrees(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "valid single split",
			payload: experienceArtifact,
		},
		{
			name:    "not json",
			payload: "{",
			wantErr: "decoding artifact",
		},
		{
			name:    "no trees",
			payload: `{"base_score": 0.5, "trees": []}`,
			wantErr: "no trees",
		},
		{
			name:    "split missing feature",
			payload: `{"trees": [{"threshold": 1, "left": {"leaf": 0}, "right": {"leaf": 1}}]}`,
			wantErr: "missing feature name",
		},
		{
			name:    "split without threshold or category",
			payload: `{"trees": [{"feature": "age", "left": {"leaf": 0}, "right": {"leaf": 1}}]}`,
			wantErr: "neither threshold nor category",
		},
		{
			name:    "split missing branch",
			payload: `{"trees": [{"feature": "age", "threshold": 30, "left": {"leaf": 0}}]}`,
			wantErr: "missing a branch",
		},
		{
			name:    "invalid nested node reported",
			payload: `{"trees": [{"feature": "age", "threshold": 30, "left": {"leaf": 0}, "right": {"feature": "Genre"}}]}`,
			wantErr: "neither threshold nor category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt, err := parseBoostedTrees([]byte(tt.payload))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, bt.Trees, 1)
		})
	}
}

func TestBoostedTrees_Score_NumericSplit(t *testing.T) {
	bt, err := parseBoostedTrees([]byte(`{
		"base_score": 0.25,
		"trees": [
			{"feature": "age", "threshold": 30, "left": {"leaf": -1}, "right": {"leaf": 1}}
		]
	}`))
	require.NoError(t, err)

	score, err := bt.score(domain.FeatureVector{"age": domain.NumberFeature(25)})
	require.NoError(t, err)
	assert.InDelta(t, -0.75, score, 1e-9)

	// Values at the threshold go right.
	score, err = bt.score(domain.FeatureVector{"age": domain.NumberFeature(30)})
	require.NoError(t, err)
	assert.InDelta(t, 1.25, score, 1e-9)
}

func TestBoostedTrees_Score_CategoricalSplit(t *testing.T) {
	bt, err := parseBoostedTrees([]byte(`{
		"trees": [
			{"feature": "Genre", "category": "Homme", "left": {"leaf": 0.5}, "right": {"leaf": -0.5}}
		]
	}`))
	require.NoError(t, err)

	score, err := bt.score(domain.FeatureVector{"Genre": domain.StringFeature("Homme")})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)

	score, err = bt.score(domain.FeatureVector{"Genre": domain.StringFeature("Femme")})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, score, 1e-9)
}

func TestBoostedTrees_Score_Additive(t *testing.T) {
	bt, err := parseBoostedTrees([]byte(`{
		"base_score": -0.1,
		"trees": [
			{"feature": "experience_don", "threshold": 0.5, "left": {"leaf": -2}, "right": {"leaf": 2}},
			{"feature": "Taux d'hémoglobine", "threshold": 13.5, "left": {"leaf": -0.4}, "right": {"leaf": 0.4}}
		]
	}`))
	require.NoError(t, err)

	score, err := bt.score(domain.FeatureVector{
		"experience_don":     domain.NumberFeature(1),
		"Taux d'hémoglobine": domain.NumberFeature(14.2),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.3, score, 1e-9)
}

func TestBoostedTrees_Score_MissingFeatures(t *testing.T) {
	bt, err := parseBoostedTrees([]byte(`{
		"trees": [
			{"feature": "age", "threshold": 30, "left": {"leaf": 0}, "right": {"leaf": 1}}
		]
	}`))
	require.NoError(t, err)

	_, err = bt.score(domain.FeatureVector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `numeric feature "age" missing`)

	// A categorical value where a numeric split expects a number is also
	// reported as missing.
	_, err = bt.score(domain.FeatureVector{"age": domain.StringFeature("30")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing from vector")
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-9)
	assert.InDelta(t, 0.8808, sigmoid(2), 0.001)
	assert.InDelta(t, 1.0, sigmoid(2)+sigmoid(-2), 1e-9)
}

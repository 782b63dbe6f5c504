package service

import (
	"github.com/sirupsen/logrus"

	"github.com/blood-eligibility-server/internal/domain"
)

// Sex-specific hemoglobin thresholds in g/dL. Donors strictly below the
// threshold are excluded.
const (
	HemoglobinThresholdMale   = 13.0
	HemoglobinThresholdFemale = 12.0
)

// ExclusionRule is a single absolute medical safety condition. A firing
// rule alone determines ineligibility, independent of the classifier.
type ExclusionRule struct {
	Name       string
	Reason     string
	Confidence float64
	Matches    func(p *domain.DonorProfile) bool
}

// RuleEvaluator evaluates the absolute exclusion rules in fixed priority
// order. Evaluation is pure boolean logic on validated input and cannot
// fail.
type RuleEvaluator struct {
	logger *logrus.Logger
	rules  []ExclusionRule
}

// NewRuleEvaluator creates a rule evaluator with the standard donation
// exclusion rules.
func NewRuleEvaluator(logger *logrus.Logger) *RuleEvaluator {
	return &RuleEvaluator{
		logger: logger,
		rules: []ExclusionRule{
			{
				Name:       "transmissible_disease",
				Reason:     domain.ReasonTransmissibleDisease,
				Confidence: 100.0,
				Matches: func(p *domain.DonorProfile) bool {
					return p.TransmissibleDisease
				},
			},
			{
				Name:       "sickle_cell",
				Reason:     domain.ReasonSickleCell,
				Confidence: 100.0,
				Matches: func(p *domain.DonorProfile) bool {
					return p.SickleCell
				},
			},
			{
				Name:       "cardiac",
				Reason:     domain.ReasonCardiac,
				Confidence: 100.0,
				Matches: func(p *domain.DonorProfile) bool {
					return p.Cardiac
				},
			},
			{
				Name:       "low_hemoglobin",
				Reason:     domain.ReasonLowHemoglobin,
				Confidence: 95.0,
				Matches:    belowHemoglobinThreshold,
			},
		},
	}
}

// Evaluate runs the rules in priority order and returns a "Not eligible"
// verdict for the first rule that fires, or nil when no rule applies.
func (r *RuleEvaluator) Evaluate(profile *domain.DonorProfile) *domain.EligibilityVerdict {
	for _, rule := range r.rules {
		if !rule.Matches(profile) {
			continue
		}

		r.logger.WithFields(logrus.Fields{
			"rule":       rule.Name,
			"confidence": rule.Confidence,
		}).Info("Absolute exclusion rule fired")

		return &domain.EligibilityVerdict{
			Label:                  domain.LabelNotEligible,
			Confidence:             rule.Confidence,
			ContributingFactors:    []string{rule.Reason},
			PrimaryExclusionReason: rule.Reason,
		}
	}

	return nil
}

// belowHemoglobinThreshold applies the sex-specific minimum hemoglobin
// level.
func belowHemoglobinThreshold(p *domain.DonorProfile) bool {
	switch p.Sex {
	case domain.SexMale:
		return p.HemoglobinLevel < HemoglobinThresholdMale
	case domain.SexFemale:
		return p.HemoglobinLevel < HemoglobinThresholdFemale
	}
	return false
}

package domain

// Verdict labels produced by the decision engine.
const (
	LabelEligible    = "Eligible"
	LabelNotEligible = "Not eligible"
)

// Human-readable exclusion reasons and contributing factors. The absolute
// rules always report one of the first four; the remaining three are
// collected from the profile when the classifier itself rejects a donor.
const (
	ReasonTransmissibleDisease = "Carrier of HIV, hepatitis B or C"
	ReasonSickleCell           = "Sickle cell disease"
	ReasonCardiac              = "Cardiac condition"
	ReasonLowHemoglobin        = "Insufficient hemoglobin level"

	FactorDiabetes     = "Diabetes"
	FactorHypertension = "Hypertension"
	FactorAsthma       = "Asthma"
)

// EligibilityVerdict is the outcome of a donation eligibility decision.
type EligibilityVerdict struct {
	// Label is either LabelEligible or LabelNotEligible.
	Label string `json:"label"`
	// Confidence is the probability assigned to the chosen label, as a
	// percentage in [0, 100].
	Confidence float64 `json:"confidence"`
	// ContributingFactors lists the human-readable factors driving the
	// verdict, in evaluation order. May be empty.
	ContributingFactors []string `json:"contributing_factors"`
	// PrimaryExclusionReason is set only when the donor is not eligible.
	PrimaryExclusionReason string `json:"primary_exclusion_reason,omitempty"`
}

// Eligible reports whether the verdict accepts the donor.
func (v *EligibilityVerdict) Eligible() bool {
	return v.Label == LabelEligible
}

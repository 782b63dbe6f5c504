package api

import (
	"github.com/blood-eligibility-server/internal/domain"
	"github.com/blood-eligibility-server/internal/feedback"
)

// DonorProfileRequest is the validated prediction request body. Field
// ranges mirror the donor profile invariants; the decision core receives
// only profiles that passed this validation.
type DonorProfileRequest struct {
	Age            int    `json:"age" binding:"required,gte=18,lte=70"`
	Sex            string `json:"sex" binding:"required,oneof=male female"`
	EducationLevel string `json:"education_level"`
	MaritalStatus  string `json:"marital_status"`
	Profession     string `json:"profession"`
	Nationality    string `json:"nationality"`
	Religion       string `json:"religion"`

	HasDonatedBefore *bool `json:"has_donated_before" binding:"required"`

	District     string `json:"district"`
	Neighborhood string `json:"neighborhood"`

	CarrierOfTransmissibleDisease bool `json:"carrier_of_transmissible_disease"`
	Diabetic                      bool `json:"diabetic"`
	Hypertensive                  bool `json:"hypertensive"`
	Asthmatic                     bool `json:"asthmatic"`
	SickleCell                    bool `json:"sickle_cell"`
	Cardiac                       bool `json:"cardiac"`

	HemoglobinLevel  *float64 `json:"hemoglobin_level" binding:"required,gte=7,lte=20"`
	PriorTransfusion bool     `json:"prior_transfusion"`
	HasTattoo        bool     `json:"has_tattoo"`
	HasScarification bool     `json:"has_scarification"`
}

// ToDomain converts the request into a donor profile.
func (r *DonorProfileRequest) ToDomain() *domain.DonorProfile {
	return &domain.DonorProfile{
		Age:                  r.Age,
		Sex:                  domain.Sex(r.Sex),
		EducationLevel:       r.EducationLevel,
		MaritalStatus:        r.MaritalStatus,
		Profession:           r.Profession,
		Nationality:          r.Nationality,
		Religion:             r.Religion,
		HasDonatedBefore:     *r.HasDonatedBefore,
		District:             r.District,
		Neighborhood:         r.Neighborhood,
		TransmissibleDisease: r.CarrierOfTransmissibleDisease,
		Diabetic:             r.Diabetic,
		Hypertensive:         r.Hypertensive,
		Asthmatic:            r.Asthmatic,
		SickleCell:           r.SickleCell,
		Cardiac:              r.Cardiac,
		HemoglobinLevel:      *r.HemoglobinLevel,
		PriorTransfusion:     r.PriorTransfusion,
		HasTattoo:            r.HasTattoo,
		HasScarification:     r.HasScarification,
	}
}

// VerdictResponse is the prediction response body.
type VerdictResponse struct {
	Label                  string   `json:"label"`
	Confidence             float64  `json:"confidence"`
	ContributingFactors    []string `json:"contributing_factors"`
	PrimaryExclusionReason string   `json:"primary_exclusion_reason,omitempty"`
}

// NewVerdictResponse converts a verdict into its response shape.
func NewVerdictResponse(v *domain.EligibilityVerdict) *VerdictResponse {
	factors := v.ContributingFactors
	if factors == nil {
		factors = []string{}
	}
	return &VerdictResponse{
		Label:                  v.Label,
		Confidence:             v.Confidence,
		ContributingFactors:    factors,
		PrimaryExclusionReason: v.PrimaryExclusionReason,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// FeedbackRequest is the body for recording a verdict review.
type FeedbackRequest struct {
	ProfileDigest   string  `json:"profile_digest" binding:"required"`
	VerdictLabel    string  `json:"verdict_label" binding:"required"`
	Confidence      float64 `json:"confidence" binding:"gte=0,lte=100"`
	PrimaryReason   string  `json:"primary_reason"`
	ReviewerVerdict string  `json:"reviewer_verdict" binding:"required"`
	ReviewerAgreed  bool    `json:"reviewer_agreed"`
	Notes           string  `json:"notes"`
}

// ToDomain converts the request into a feedback record.
func (r *FeedbackRequest) ToDomain() *feedback.Feedback {
	return &feedback.Feedback{
		ProfileDigest:   r.ProfileDigest,
		VerdictLabel:    r.VerdictLabel,
		Confidence:      r.Confidence,
		PrimaryReason:   r.PrimaryReason,
		ReviewerVerdict: r.ReviewerVerdict,
		ReviewerAgreed:  r.ReviewerAgreed,
		Notes:           r.Notes,
	}
}

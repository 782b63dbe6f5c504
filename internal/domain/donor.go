package domain

// Sex identifies the donor's sex, used for the sex-specific hemoglobin
// threshold and as a categorical model feature.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Default values applied to optional free-text fields. They mirror the
// vocabulary the classifier was trained on.
const (
	DefaultUnspecified = "Non précisé"
	DefaultNationality = "Camerounaise"
	DefaultDistrict    = "Douala (Non précisé)"
)

// DonorProfile is the full set of attributes describing a candidate donor.
// Range validation (age 18-70, hemoglobin 7.0-20.0) is performed at the
// transport boundary; the decision core assumes a validated profile.
type DonorProfile struct {
	// Demographics
	Age            int    `json:"age"`
	Sex            Sex    `json:"sex"`
	EducationLevel string `json:"education_level"`
	MaritalStatus  string `json:"marital_status"`
	Profession     string `json:"profession"`
	Nationality    string `json:"nationality"`
	Religion       string `json:"religion"`

	// Donation history
	HasDonatedBefore bool `json:"has_donated_before"`

	// Location
	District     string `json:"district"`
	Neighborhood string `json:"neighborhood"`

	// Medical flags
	TransmissibleDisease bool `json:"carrier_of_transmissible_disease"`
	Diabetic             bool `json:"diabetic"`
	Hypertensive         bool `json:"hypertensive"`
	Asthmatic            bool `json:"asthmatic"`
	SickleCell           bool `json:"sickle_cell"`
	Cardiac              bool `json:"cardiac"`

	// Other medical characteristics
	HemoglobinLevel  float64 `json:"hemoglobin_level"`
	PriorTransfusion bool    `json:"prior_transfusion"`
	HasTattoo        bool    `json:"has_tattoo"`
	HasScarification bool    `json:"has_scarification"`
}

// ApplyDefaults fills unset optional free-text fields with their declared
// defaults so the normalizer always sees a complete profile.
func (p *DonorProfile) ApplyDefaults() {
	if p.EducationLevel == "" {
		p.EducationLevel = DefaultUnspecified
	}
	if p.MaritalStatus == "" {
		p.MaritalStatus = DefaultUnspecified
	}
	if p.Profession == "" {
		p.Profession = DefaultUnspecified
	}
	if p.Nationality == "" {
		p.Nationality = DefaultNationality
	}
	if p.Religion == "" {
		p.Religion = DefaultUnspecified
	}
	if p.District == "" {
		p.District = DefaultDistrict
	}
	if p.Neighborhood == "" {
		p.Neighborhood = DefaultUnspecified
	}
}

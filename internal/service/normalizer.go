package service

import (
	"github.com/blood-eligibility-server/internal/domain"
)

// NormalizeProfile maps a donor profile into the exact feature layout the
// classifier expects. It is a pure function: every schema column is
// populated (renamed profile fields, derived columns, 0/1 flag encodings,
// then gap-fill defaults), and columns outside the schema are dropped.
func NormalizeProfile(profile *domain.DonorProfile, schema []string) domain.FeatureVector {
	staged := stageFeatures(profile)

	// Project onto the declared schema, gap-filling anything the staging
	// pass did not produce. Gap fill must run last so derived columns win.
	vector := make(domain.FeatureVector, len(schema))
	for _, col := range schema {
		if v, ok := staged[col]; ok {
			vector[col] = v
			continue
		}
		if domain.IsCategoricalColumn(col) {
			vector[col] = domain.StringFeature("")
		} else {
			vector[col] = domain.NumberFeature(0)
		}
	}

	return vector
}

// stageFeatures builds every column the profile can supply, keyed by model
// column name; the caller projects the result onto the loaded schema.
func stageFeatures(profile *domain.DonorProfile) domain.FeatureVector {
	staged := domain.FeatureVector{
		domain.ColAge:           domain.NumberFeature(float64(profile.Age)),
		domain.ColSex:           domain.StringFeature(sexValue(profile.Sex)),
		domain.ColEducation:     domain.StringFeature(profile.EducationLevel),
		domain.ColMaritalStatus: domain.StringFeature(profile.MaritalStatus),
		domain.ColProfession:    domain.StringFeature(profile.Profession),
		domain.ColNationality:   domain.StringFeature(profile.Nationality),
		domain.ColReligion:      domain.StringFeature(profile.Religion),
		domain.ColHasDonated:    domain.StringFeature(donatedValue(profile.HasDonatedBefore)),
		domain.ColDistrict:      domain.StringFeature(profile.District),
		domain.ColNeighborhood:  domain.StringFeature(profile.Neighborhood),
		domain.ColHemoglobin:    domain.NumberFeature(profile.HemoglobinLevel),

		// Derived columns
		domain.ColExperienceDon: domain.BoolFeature(profile.HasDonatedBefore),
		domain.ColAgeGroup:      domain.StringFeature(AgeGroup(profile.Age)),

		// The "clean" location columns carry the raw text verbatim; no
		// text normalization is performed.
		domain.ColDistrictClean:     domain.StringFeature(profile.District),
		domain.ColNeighborhoodClean: domain.StringFeature(profile.Neighborhood),

		// Medical and behavioral flags, encoded 0/1
		domain.ColTransmissibleDisease: domain.BoolFeature(profile.TransmissibleDisease),
		domain.ColDiabetic:             domain.BoolFeature(profile.Diabetic),
		domain.ColHypertensive:         domain.BoolFeature(profile.Hypertensive),
		domain.ColAsthmatic:            domain.BoolFeature(profile.Asthmatic),
		domain.ColSickleCell:           domain.BoolFeature(profile.SickleCell),
		domain.ColCardiac:              domain.BoolFeature(profile.Cardiac),
		domain.ColTransfusion:          domain.BoolFeature(profile.PriorTransfusion),
		domain.ColTattoo:               domain.BoolFeature(profile.HasTattoo),
		domain.ColScarification:        domain.BoolFeature(profile.HasScarification),
	}

	return staged
}

// AgeGroup returns the age-bracket category the model was trained on.
func AgeGroup(age int) string {
	switch {
	case age < 18:
		return "<18"
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 55:
		return "46-55"
	case age <= 65:
		return "56-65"
	default:
		return ">65"
	}
}

func sexValue(s domain.Sex) string {
	if s == domain.SexFemale {
		return domain.SexValueFemale
	}
	return domain.SexValueMale
}

func donatedValue(donated bool) string {
	if donated {
		return domain.DonatedValueYes
	}
	return domain.DonatedValueNo
}

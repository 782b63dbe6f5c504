package domain

// Model schema column names. The classifier was trained on a French-language
// survey export, so the column names are carried verbatim from the training
// pipeline and must not be translated.
const (
	ColAge               = "age"
	ColExperienceDon     = "experience_don"
	ColEducation         = "Niveau d'etude"
	ColSex               = "Genre"
	ColMaritalStatus     = "Situation Matrimoniale (SM)"
	ColProfession        = "Profession"
	ColDistrict          = "Arrondissement de résidence"
	ColNeighborhood      = "Quartier de Résidence"
	ColNationality       = "Nationalité"
	ColReligion          = "Religion"
	ColHasDonated        = "A-t-il (elle) déjà donné le sang"
	ColHemoglobin        = "Taux d'hémoglobine"
	ColAgeGroup          = "groupe_age"
	ColDistrictClean     = "arrondissement_clean"
	ColNeighborhoodClean = "quartier_clean"
)

// Medical and behavioral flag columns, encoded 0/1.
const (
	ColTransmissibleDisease = "porteur_vih_hbs_hcv"
	ColDiabetic             = "diabetique"
	ColHypertensive         = "hypertendu"
	ColAsthmatic            = "asthmatique"
	ColSickleCell           = "drepanocytaire"
	ColCardiac              = "cardiaque"
	ColTransfusion          = "transfusion"
	ColTattoo               = "tatoue"
	ColScarification        = "scarifie"
)

// Categorical values for the sex and prior-donation columns, matching the
// training vocabulary.
const (
	SexValueMale    = "Homme"
	SexValueFemale  = "Femme"
	DonatedValueYes = "Oui"
	DonatedValueNo  = "Non"
)

// DefaultSchema returns the feature list assumed when the model artifact
// ships without sidecar metadata.
func DefaultSchema() []string {
	return []string{
		ColAge,
		ColExperienceDon,
		ColEducation,
		ColSex,
		ColMaritalStatus,
		ColProfession,
		ColDistrict,
		ColNeighborhood,
		ColNationality,
		ColReligion,
		ColHasDonated,
		ColHemoglobin,
		ColAgeGroup,
		ColDistrictClean,
		ColNeighborhoodClean,
	}
}

// categoricalColumns are the schema columns whose gap-fill default is the
// empty string rather than zero.
var categoricalColumns = map[string]bool{
	ColEducation:         true,
	ColSex:               true,
	ColMaritalStatus:     true,
	ColProfession:        true,
	ColDistrict:          true,
	ColNeighborhood:      true,
	ColNationality:       true,
	ColReligion:          true,
	ColHasDonated:        true,
	ColAgeGroup:          true,
	ColDistrictClean:     true,
	ColNeighborhoodClean: true,
}

// IsCategoricalColumn reports whether a schema column holds string values.
func IsCategoricalColumn(name string) bool {
	return categoricalColumns[name]
}

// FeatureKind discriminates the two value types a model column can hold.
type FeatureKind int

const (
	FeatureString FeatureKind = iota
	FeatureNumber
)

// FeatureValue is a single typed cell of a feature vector.
type FeatureValue struct {
	Kind FeatureKind
	Str  string
	Num  float64
}

// StringFeature builds a categorical feature value.
func StringFeature(s string) FeatureValue {
	return FeatureValue{Kind: FeatureString, Str: s}
}

// NumberFeature builds a numeric feature value.
func NumberFeature(n float64) FeatureValue {
	return FeatureValue{Kind: FeatureNumber, Num: n}
}

// BoolFeature encodes a boolean flag as 0/1.
func BoolFeature(b bool) FeatureValue {
	if b {
		return NumberFeature(1)
	}
	return NumberFeature(0)
}

// FeatureVector maps model schema column names to values. After
// normalization it contains exactly the loaded schema's columns.
type FeatureVector map[string]FeatureValue

// Has reports whether the vector contains a column.
func (fv FeatureVector) Has(name string) bool {
	_, ok := fv[name]
	return ok
}

// Number returns the numeric value of a column, with ok=false when the
// column is absent or categorical.
func (fv FeatureVector) Number(name string) (float64, bool) {
	v, ok := fv[name]
	if !ok || v.Kind != FeatureNumber {
		return 0, false
	}
	return v.Num, true
}

// String returns the string value of a column, with ok=false when the
// column is absent or numeric.
func (fv FeatureVector) String(name string) (string, bool) {
	v, ok := fv[name]
	if !ok || v.Kind != FeatureString {
		return "", false
	}
	return v.Str, true
}

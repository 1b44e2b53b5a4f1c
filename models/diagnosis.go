package models

// Severity is the qualitative disease intensity reported by the model.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// Valid reports whether s is one of the three accepted severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Diagnosis is one normalized analysis of a crop photo.
// Every string is defined (possibly empty) once it went through diagnosis.Normalize.
type Diagnosis struct {
	CropName            string            `json:"crop"`
	DiseaseName         string            `json:"disease"`
	Confidence          int               `json:"confidence"` // 1..100
	Severity            Severity          `json:"severity"`
	Description         string            `json:"description"`
	Symptoms            []string          `json:"symptoms"` // at most 5
	Causes              string            `json:"causes"`
	ChemicalTreatment   ChemicalTreatment `json:"chemicalTreatment"`
	OrganicTreatment    string            `json:"organicTreatment"`
	SoilCare            string            `json:"soilCare"`
	LocalRecommendation string            `json:"localRecommendation"`
	GovernmentScheme    string            `json:"govtScheme"`
	RecoveryPlan        []PlanStep        `json:"sevenDayPlan"` // at most 7
	Warning             string            `json:"warning"`
	VoiceScript         string            `json:"voiceScript"`
}

type ChemicalTreatment struct {
	Pesticide string `bson:"pesticide" json:"pesticide"`
	Dosage    string `bson:"dosage"    json:"dosage"`
	Method    string `bson:"method"    json:"method"`
	Frequency string `bson:"frequency" json:"frequency"`
}

// PlanStep is one day of the recovery plan. Day is expected in 1..7 but kept as sent.
type PlanStep struct {
	Day    int    `bson:"day"    json:"day"`
	Action string `bson:"action" json:"action"`
}

package models

import (
	"strings"
	"time"
)

// CaseStatus mirrors the case lifecycle stages.
type CaseStatus string

const (
	StatusOngoing    CaseStatus = "ONGOING"
	StatusMonitoring CaseStatus = "MONITORING"
	StatusRecovered  CaseStatus = "RECOVERED"
	StatusWorsened   CaseStatus = "WORSENED"
	StatusUnknown    CaseStatus = "UNKNOWN"
)

// Statuses lists every status in display order.
var Statuses = []CaseStatus{StatusOngoing, StatusMonitoring, StatusRecovered, StatusWorsened, StatusUnknown}

func (s CaseStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts any casing and surrounding space; anything else is UNKNOWN.
func ParseStatus(raw string) CaseStatus {
	s := CaseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return StatusUnknown
}

// CaseRecord is a tracked disease episode, created from one diagnosis.
// The whole ordered collection is owned by the case store; most recent first.
type CaseRecord struct {
	ID          string    `bson:"id"          json:"id"`
	CreatedAt   time.Time `bson:"createdAt"   json:"rawDate"`
	DisplayDate string    `bson:"displayDate" json:"date"` // e.g. "18 OCT 2026"
	Region      string    `bson:"region"      json:"state"`

	Crop                string     `bson:"crop"                json:"crop"`
	Disease             string     `bson:"disease"             json:"disease"`
	Severity            Severity   `bson:"severity"            json:"severity"`
	Confidence          int        `bson:"confidence"          json:"confidence"`
	Description         string     `bson:"description"         json:"description"`
	Symptoms            []string   `bson:"symptoms"            json:"symptoms"`
	Causes              string     `bson:"causes"              json:"causes"`
	Treatment           Treatment  `bson:"treatment"           json:"treatment"`
	LocalRecommendation string     `bson:"localRecommendation" json:"localRecommendation"`
	GovernmentScheme    string     `bson:"govtScheme"          json:"govtScheme"`
	RecoveryPlan        []PlanStep `bson:"sevenDayPlan"        json:"sevenDayPlan"`
	Warning             string     `bson:"warning"             json:"warning"`

	// Object key of the archived photo, if photo archiving is enabled.
	PhotoKey string `bson:"photoKey,omitempty" json:"photoKey,omitempty"`

	Status      CaseStatus `bson:"status"                json:"status"`
	Notes       []string   `bson:"notes"                 json:"notes"` // append-only
	LastUpdated *time.Time `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
}

// Treatment is the chemical treatment plus the organic/soil advice, as kept on a case.
type Treatment struct {
	ChemicalTreatment `bson:",inline"`
	Organic           string `bson:"organic"  json:"organic"`
	SoilCare          string `bson:"soilCare" json:"soilCare"`
}

// FollowUpAssessment is the re-evaluation of a case from a new photo. It is never persisted on its own.
type FollowUpAssessment struct {
	Status       CaseStatus `json:"status"`
	Assessment   string     `json:"assessment"`
	ActionNeeded string     `json:"actionNeeded"`
}

// DisplayDate formats t the way dates are shown on case cards: "02 JAN 2006".
func DisplayDate(t time.Time) string {
	return strings.ToUpper(t.Format("02 Jan 2006"))
}

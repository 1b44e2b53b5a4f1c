// Package diagnosis coerces extracted model output into the canonical
// Diagnosis and FollowUpAssessment shapes. Every function here is total:
// bad or missing fields get safe defaults instead of failing the analysis.
package diagnosis

import (
	"math"
	"strconv"
	"strings"

	"fasaldoc/models"
)

const (
	UnknownDisease    = "Unknown"
	DefaultConfidence = 75
	MaxSymptoms       = 5
	MaxPlanDays       = 7
)

// Fallback carries what the caller already knows about the photo.
type Fallback struct {
	CropName    string
	DiseaseName string
}

// Normalize builds a Diagnosis from an extracted object.
func Normalize(raw map[string]any, fb Fallback) models.Diagnosis {
	chem, _ := raw["chemicalTreatment"].(map[string]any)

	d := models.Diagnosis{
		CropName:    firstNonEmpty(str(raw["crop"]), fb.CropName),
		DiseaseName: firstNonEmpty(str(raw["disease"]), fb.DiseaseName, UnknownDisease),
		Confidence:  Confidence(raw["confidence"]),
		Severity:    severity(raw["severity"]),
		Description: str(raw["description"]),
		Symptoms:    symptoms(raw["symptoms"]),
		Causes:      str(raw["causes"]),
		ChemicalTreatment: models.ChemicalTreatment{
			Pesticide: str(chem["pesticide"]),
			Dosage:    str(chem["dosage"]),
			Method:    str(chem["method"]),
			Frequency: str(chem["frequency"]),
		},
		OrganicTreatment:    str(raw["organicTreatment"]),
		SoilCare:            str(raw["soilCare"]),
		LocalRecommendation: str(raw["localRecommendation"]),
		GovernmentScheme:    str(raw["govtScheme"]),
		RecoveryPlan:        plan(raw["sevenDayPlan"]),
		Warning:             str(raw["warning"]),
		VoiceScript:         str(raw["voiceScript"]),
	}
	if d.VoiceScript == "" {
		d.VoiceScript = strings.TrimSpace(firstNonEmpty(str(raw["disease"]), "Disease") + " detected. " +
			str(raw["description"]) + " " + str(raw["warning"]))
	}
	return d
}

// Confidence coerces v to a number, defaulting to 75 when it is not one,
// and clamps the result into [1,100].
func Confidence(v any) int {
	f, ok := number(v)
	if !ok {
		f = DefaultConfidence
	}
	f = math.Round(f)
	if f < 1 {
		return 1
	}
	if f > 100 {
		return 100
	}
	return int(f)
}

// NormalizeFollowUp reads the three follow-up fields. Unknown statuses map to UNKNOWN.
func NormalizeFollowUp(raw map[string]any) models.FollowUpAssessment {
	return models.FollowUpAssessment{
		Status:       models.ParseStatus(str(raw["status"])),
		Assessment:   str(raw["assessment"]),
		ActionNeeded: str(raw["actionNeeded"]),
	}
}

func severity(v any) models.Severity {
	if s, ok := v.(string); ok && models.Severity(s).Valid() {
		return models.Severity(s)
	}
	return models.SeverityModerate
}

func symptoms(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, MaxSymptoms)
	for _, item := range list {
		if len(out) == MaxSymptoms {
			break
		}
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// plan keeps the first seven entries; entries that are not objects are dropped.
func plan(v any) []models.PlanStep {
	list, ok := v.([]any)
	if !ok {
		return []models.PlanStep{}
	}
	if len(list) > MaxPlanDays {
		list = list[:MaxPlanDays]
	}
	out := make([]models.PlanStep, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		day, _ := number(m["day"])
		out = append(out, models.PlanStep{Day: int(day), Action: str(m["action"])})
	}
	return out
}

// str renders scalars as text; false, zero, null and containers read as "".
func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == 0 || math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

package diagnosis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasaldoc/extract"
	"fasaldoc/models"
)

func TestNormalizeTomatoScenario(t *testing.T) {
	raw, err := extract.Extract("```json\n{\"crop\":\"Tomato\",\"disease\":\"Blight\",\"confidence\":\"92\",\"severity\":\"Bad\",\"symptoms\":[\"spots\",\"wilt\",\"wilt\",\"\"]}\n```")
	require.NoError(t, err)

	d := Normalize(raw, Fallback{CropName: "Tomato"})
	assert.Equal(t, "Tomato", d.CropName)
	assert.Equal(t, "Blight", d.DiseaseName)
	assert.Equal(t, 92, d.Confidence)
	assert.Equal(t, models.SeverityModerate, d.Severity)
	assert.Equal(t, []string{"spots", "wilt", "wilt"}, d.Symptoms)

	for name, v := range map[string]string{
		"description":         d.Description,
		"causes":              d.Causes,
		"pesticide":           d.ChemicalTreatment.Pesticide,
		"dosage":              d.ChemicalTreatment.Dosage,
		"method":              d.ChemicalTreatment.Method,
		"frequency":           d.ChemicalTreatment.Frequency,
		"organicTreatment":    d.OrganicTreatment,
		"soilCare":            d.SoilCare,
		"localRecommendation": d.LocalRecommendation,
		"govtScheme":          d.GovernmentScheme,
		"warning":             d.Warning,
	} {
		assert.Empty(t, v, name)
	}
	assert.Empty(t, d.RecoveryPlan)
	assert.NotNil(t, d.RecoveryPlan)
	assert.Equal(t, "Blight detected.", d.VoiceScript)
}

func TestNormalizeEmptyObject(t *testing.T) {
	d := Normalize(map[string]any{}, Fallback{CropName: "Rice"})
	assert.Equal(t, "Rice", d.CropName)
	assert.Equal(t, UnknownDisease, d.DiseaseName)
	assert.Equal(t, DefaultConfidence, d.Confidence)
	assert.Equal(t, models.SeverityModerate, d.Severity)
	assert.Equal(t, []string{}, d.Symptoms)
	assert.Equal(t, "Disease detected.", d.VoiceScript)
}

func TestNormalizeNilObject(t *testing.T) {
	d := Normalize(nil, Fallback{CropName: "Rice", DiseaseName: "Blast"})
	assert.Equal(t, "Blast", d.DiseaseName)
	assert.Equal(t, DefaultConfidence, d.Confidence)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"number", 85.0, 85},
		{"numeric string", " 64 ", 64},
		{"fraction rounds", 91.6, 92},
		{"above range", 250.0, 100},
		{"below range", -3.0, 1},
		{"zero clamps", 0.0, 1},
		{"word", "high", 75},
		{"empty string", "", 75},
		{"null", nil, 75},
		{"list", []any{1.0}, 75},
		{"object", map[string]any{}, 75},
		{"nan string", "NaN", 75},
		{"infinite", math.Inf(1), 100},
		{"true", true, 75},
		{"false", false, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.in))
		})
	}
}

func TestNormalizeIsIdempotentOnConfidence(t *testing.T) {
	inputs := []any{"92", 0.0, -10.0, 1e6, "abc", nil, 33.3, true, "100"}
	for _, in := range inputs {
		once := Normalize(map[string]any{"confidence": in}, Fallback{})
		twice := Normalize(raw(once), Fallback{})
		assert.Equal(t, once.Confidence, twice.Confidence, "input %v", in)
		assert.GreaterOrEqual(t, once.Confidence, 1)
		assert.LessOrEqual(t, once.Confidence, 100)
	}
}

func TestNormalizeRoundTripsThroughraw(t *testing.T) {
	d := Normalize(map[string]any{
		"crop":              "Cotton",
		"disease":           "Bollworm",
		"confidence":        77.0,
		"severity":          "Severe",
		"symptoms":          []any{"holes"},
		"chemicalTreatment": map[string]any{"pesticide": "Emamectin", "dosage": "0.4 g/L"},
		"sevenDayPlan":      []any{map[string]any{"day": 1.0, "action": "spray"}},
		"voiceScript":       "Listen.",
	}, Fallback{})
	assert.Equal(t, d, Normalize(raw(d), Fallback{}))
}

func TestSeverityExactMatch(t *testing.T) {
	for in, want := range map[any]models.Severity{
		"Mild":     models.SeverityMild,
		"Moderate": models.SeverityModerate,
		"Severe":   models.SeveritySevere,
		"severe":   models.SeverityModerate,
		"":         models.SeverityModerate,
		3.0:        models.SeverityModerate,
	} {
		d := Normalize(map[string]any{"severity": in}, Fallback{})
		assert.Equal(t, want, d.Severity, "input %v", in)
	}
}

func TestSymptomsTruncatedAndFiltered(t *testing.T) {
	d := Normalize(map[string]any{
		"symptoms": []any{"a", "", nil, "b", false, "c", "d", "e", "f", "g"},
	}, Fallback{})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, d.Symptoms)

	d = Normalize(map[string]any{"symptoms": "spots everywhere"}, Fallback{})
	assert.Equal(t, []string{}, d.Symptoms)
}

func TestRecoveryPlanTruncated(t *testing.T) {
	var steps []any
	for i := 1; i <= 10; i++ {
		steps = append(steps, map[string]any{"day": float64(i), "action": "act"})
	}
	d := Normalize(map[string]any{"sevenDayPlan": steps}, Fallback{})
	require.Len(t, d.RecoveryPlan, 7)
	assert.Equal(t, 7, d.RecoveryPlan[6].Day)

	d = Normalize(map[string]any{"sevenDayPlan": []any{"day one", map[string]any{"day": "2", "action": "water"}}}, Fallback{})
	assert.Equal(t, []models.PlanStep{{Day: 2, Action: "water"}}, d.RecoveryPlan)
}

func TestVoiceScriptSynthesized(t *testing.T) {
	d := Normalize(map[string]any{
		"disease":     "Rust",
		"description": "Orange pustules.",
		"warning":     "Spreads in humid weather.",
	}, Fallback{})
	assert.Equal(t, "Rust detected. Orange pustules. Spreads in humid weather.", d.VoiceScript)
}

func TestNormalizeFollowUp(t *testing.T) {
	a := NormalizeFollowUp(map[string]any{"status": " worsened ", "assessment": "Spots spread.", "actionNeeded": "Spray again."})
	assert.Equal(t, models.StatusWorsened, a.Status)
	assert.Equal(t, "Spots spread.", a.Assessment)
	assert.Equal(t, "Spray again.", a.ActionNeeded)

	a = NormalizeFollowUp(map[string]any{"status": "RECOVERED|MONITORING"})
	assert.Equal(t, models.StatusUnknown, a.Status)
	assert.Empty(t, a.Assessment)
}

// raw is the inverse view of a Diagnosis using the model's field names.
func raw(d models.Diagnosis) map[string]any {
	symptoms := make([]any, len(d.Symptoms))
	for i, s := range d.Symptoms {
		symptoms[i] = s
	}
	steps := make([]any, len(d.RecoveryPlan))
	for i, p := range d.RecoveryPlan {
		steps[i] = map[string]any{"day": float64(p.Day), "action": p.Action}
	}
	return map[string]any{
		"crop":        d.CropName,
		"disease":     d.DiseaseName,
		"confidence":  float64(d.Confidence),
		"severity":    string(d.Severity),
		"description": d.Description,
		"symptoms":    symptoms,
		"causes":      d.Causes,
		"chemicalTreatment": map[string]any{
			"pesticide": d.ChemicalTreatment.Pesticide,
			"dosage":    d.ChemicalTreatment.Dosage,
			"method":    d.ChemicalTreatment.Method,
			"frequency": d.ChemicalTreatment.Frequency,
		},
		"organicTreatment":    d.OrganicTreatment,
		"soilCare":            d.SoilCare,
		"localRecommendation": d.LocalRecommendation,
		"govtScheme":          d.GovernmentScheme,
		"sevenDayPlan":        steps,
		"warning":             d.Warning,
		"voiceScript":         d.VoiceScript,
	}
}

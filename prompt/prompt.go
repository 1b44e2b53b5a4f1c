// Package prompt builds the text sent to the vision model. Every prompt pins
// exactly one output language and, except chat, asks for bare JSON.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"fasaldoc/language"
	"fasaldoc/models"
	"fasaldoc/regions"
)

// DiagnosisInput is what the farmer picked on the diagnose screen.
type DiagnosisInput struct {
	Profile  regions.Profile
	Crop     string
	Language language.Context
	Month    time.Month
}

// LocationContext is the single-line agronomy summary for a known region.
func LocationContext(p regions.Profile, month time.Month) string {
	if !p.Known() {
		return ""
	}
	return fmt.Sprintf("STATE: %s | SOIL: %s | SEASON: %s | CLIMATE: %s | Rainfall: %s | DISEASE PRESSURE: %s | PEST ALERTS: %s | SOIL ADVICE: %s | GOVT SCHEMES: %s",
		p.Name, p.DominantSoil, p.Season(month), p.TempRange, p.Rainfall,
		strings.Join(p.CommonDiseases, ", "), p.PestAlert, p.SoilAdvice, strings.Join(p.GovtSchemes, ", "))
}

func languageRule(lang string) string {
	return fmt.Sprintf("RESOLVED OUTPUT LANGUAGE: %s. Write EVERY text field ENTIRELY in %s. No mixing. No English unless %s is English.", lang, lang, lang)
}

// Diagnosis asks for the full diagnosis JSON.
func Diagnosis(in DiagnosisInput) string {
	lang := in.Language.Resolved
	state := in.Profile.Name
	in2 := func(s string) string { return s + " in " + lang }

	var b strings.Builder
	b.WriteString("You are an expert plant pathologist and agricultural advisor for India.\n")
	b.WriteString(languageRule(lang) + "\n")
	fmt.Fprintf(&b, "Crop: %s | State: %s | Season: %s\n", in.Crop, state, in.Profile.Season(in.Month))
	b.WriteString(LocationContext(in.Profile, in.Month) + "\n\n")
	b.WriteString("Analyze the crop image and return ONLY valid JSON (no markdown, no backticks, no extra text):\n")

	plan := make([]string, 0, 7)
	plan = append(plan, fmt.Sprintf(`{"day":1,"action":%q}`, "in "+lang))
	for d := 2; d <= 7; d++ {
		plan = append(plan, fmt.Sprintf(`{"day":%d,"action":""}`, d))
	}
	fmt.Fprintf(&b, `{"crop":%q,"disease":%q,"confidence":85,"severity":"Mild|Moderate|Severe","description":%q,"symptoms":[%q,%q,%q],"causes":%q,"chemicalTreatment":{"pesticide":"name","dosage":"amount","method":%q,"frequency":%q},"organicTreatment":%q,"soilCare":%q,"localRecommendation":%q,"govtScheme":%q,"sevenDayPlan":[%s],"warning":%q,"voiceScript":%q}`,
		in.Crop,
		in2("name"),
		in2("2 sentences"),
		in2("symptom1"), in2("symptom2"), in2("symptom3"),
		in2("1 sentence"),
		"in "+lang, "in "+lang,
		in2("1 sentence")+" using local "+state+" materials",
		in2("1 sentence")+" for "+state+" soil",
		in2("2 sentences")+" about "+state+" season and where to buy medicine",
		in2("scheme name"),
		strings.Join(plan, ","),
		in2("1 sentence")+" about "+state+" seasonal risk",
		in2("4 warm sentences")+" as a friendly krishi sevak talking to a farmer.",
	)
	return b.String()
}

// FollowUp asks whether an existing case is recovering, using the new photo.
func FollowUp(rec models.CaseRecord, lang language.Context) string {
	pesticide := rec.Treatment.Pesticide
	if pesticide == "" {
		pesticide = "unknown"
	}
	return fmt.Sprintf("Follow-up photo for crop that had: %s (%s) in %s. Original treatment: %s. "+
		"Is disease recovering, stable, or worsening? %s\n"+
		`Reply ONLY as JSON (no markdown, no backticks): {"status":"RECOVERED|MONITORING|ONGOING|WORSENED","assessment":"2 sentences","actionNeeded":"1 sentence"}`,
		rec.Disease, rec.Severity, rec.Crop, pesticide, languageRule(lang.Resolved))
}

// ChatInput is one farmer question to the assistant.
type ChatInput struct {
	Profile  regions.Profile
	Crop     string
	Language language.Context
	Month    time.Month
	Message  string
}

// Chat builds the free-text assistant prompt with the language control rules.
func Chat(in ChatInput) string {
	selected := in.Language.Explicit
	if selected == "" {
		selected = "NULL"
	}
	var b strings.Builder
	b.WriteString("You are FasalDoc AI — a warm expert krishi sevak.\n")
	b.WriteString("LANGUAGE CONTROL RULES:\n")
	b.WriteString("1. If User Selected Language is provided -> use ONLY that language.\n")
	b.WriteString("2. If User Selected Language is NOT provided -> use State Default Language.\n")
	b.WriteString("3. Never mix languages.\n")
	b.WriteString("4. Entire response must be in one language only.\n")
	b.WriteString("5. Do not include bilingual explanations.\n")
	fmt.Fprintf(&b, "User Selected Language: %s\n", selected)
	fmt.Fprintf(&b, "State Default Language: %s\n", in.Language.LocationDefault)
	fmt.Fprintf(&b, "Resolved Language: %s\n", in.Language.Resolved)
	fmt.Fprintf(&b, "State: %s | Crop: %s | Season: %s | Soil: %s\n", in.Profile.Name, in.Crop, in.Profile.Season(in.Month), in.Profile.DominantSoil)
	fmt.Fprintf(&b, "Farmer: %q\n", in.Message)
	b.WriteString("Reply 3-5 sentences. Be warm, hyper-local, practical.")
	return b.String()
}

// Package cases tracks diagnosed disease episodes through their status
// lifecycle. Transitions are plain functions on records; Lifecycle wraps
// them in the whole-collection load/mutate/save cycle of a Store.
package cases

import (
	"strings"
	"time"

	"fasaldoc/models"
)

// NewCase builds the record for a freshly normalized diagnosis.
func NewCase(d models.Diagnosis, region, id string, now time.Time) models.CaseRecord {
	return models.CaseRecord{
		ID:          id,
		CreatedAt:   now,
		DisplayDate: models.DisplayDate(now),
		Region:      region,

		Crop:        d.CropName,
		Disease:     d.DiseaseName,
		Severity:    d.Severity,
		Confidence:  d.Confidence,
		Description: d.Description,
		Symptoms:    append([]string{}, d.Symptoms...),
		Causes:      d.Causes,
		Treatment: models.Treatment{
			ChemicalTreatment: d.ChemicalTreatment,
			Organic:           d.OrganicTreatment,
			SoilCare:          d.SoilCare,
		},
		LocalRecommendation: d.LocalRecommendation,
		GovernmentScheme:    d.GovernmentScheme,
		RecoveryPlan:        append([]models.PlanStep{}, d.RecoveryPlan...),
		Warning:             d.Warning,

		Status: models.StatusOngoing,
		Notes:  []string{},
	}
}

// AddNote appends a non-empty note and sets the status. An empty note with an
// unchanged status leaves the record untouched and reports false.
func AddNote(rec models.CaseRecord, note string, status models.CaseStatus, now time.Time) (models.CaseRecord, bool) {
	note = strings.TrimSpace(note)
	if note == "" && status == rec.Status {
		return rec, false
	}
	notes := make([]string, 0, len(rec.Notes)+1)
	notes = append(notes, rec.Notes...)
	if note != "" {
		notes = append(notes, note)
	}
	rec.Notes = notes
	rec.Status = status
	rec.LastUpdated = &now
	return rec, true
}

// ApplyFollowUp takes the assessed status as-is. There is no transition
// guard: RECOVERED -> WORSENED is a real regression.
func ApplyFollowUp(rec models.CaseRecord, a models.FollowUpAssessment, now time.Time) models.CaseRecord {
	rec.Status = a.Status
	rec.LastUpdated = &now
	return rec
}

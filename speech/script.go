package speech

import (
	"fmt"
	"strings"

	"fasaldoc/models"
)

// Script is the full on-screen diagnosis read aloud, in display order.
func Script(d models.Diagnosis) string {
	var parts []string
	add := func(s, suffix string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s+suffix)
		}
	}

	add(d.DiseaseName, ".")
	if d.CropName != d.DiseaseName {
		add(d.CropName, ".")
	}
	add(d.Description, "")
	var symptoms []string
	for _, s := range d.Symptoms {
		if s != "" {
			symptoms = append(symptoms, s)
		}
	}
	if len(symptoms) > 0 {
		add(strings.Join(symptoms, ". "), ".")
	}
	add(d.Causes, "")
	add(d.LocalRecommendation, "")
	add(d.GovernmentScheme, ".")
	add(d.ChemicalTreatment.Pesticide, ".")
	add(d.ChemicalTreatment.Dosage, ".")
	add(d.ChemicalTreatment.Frequency, ".")
	add(d.OrganicTreatment, "")
	add(d.SoilCare, "")
	if len(d.RecoveryPlan) > 0 {
		days := make([]string, len(d.RecoveryPlan))
		for i, p := range d.RecoveryPlan {
			days[i] = fmt.Sprintf("Day %d: %s", p.Day, p.Action)
		}
		add(strings.Join(days, ". "), "")
	}
	add(d.Warning, "")
	return strings.Join(parts, " ")
}

package cases

import (
	"strings"

	"fasaldoc/models"
)

// FilterAll disables the status filter.
const FilterAll = "ALL"

// Filter keeps records matching status (or ALL) whose disease or crop
// contains search, case-insensitively. Order is preserved.
func Filter(records []models.CaseRecord, status, search string) []models.CaseRecord {
	status = strings.ToUpper(strings.TrimSpace(status))
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.CaseRecord, 0, len(records))
	for _, r := range records {
		if status != "" && status != FilterAll && string(r.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Disease), search) &&
			!strings.Contains(strings.ToLower(r.Crop), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type Summary struct {
	Total     int `json:"total"`
	Ongoing   int `json:"ongoing"` // ONGOING + WORSENED
	Recovered int `json:"recovered"`
	Severe    int `json:"severe"`
}

func Summarize(records []models.CaseRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.StatusOngoing, models.StatusWorsened:
			s.Ongoing++
		case models.StatusRecovered:
			s.Recovered++
		}
		if r.Severity == models.SeveritySevere {
			s.Severe++
		}
	}
	return s
}

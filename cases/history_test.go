package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fasaldoc/models"
)

func records() []models.CaseRecord {
	return []models.CaseRecord{
		{ID: "1", Crop: "Tomato", Disease: "Late Blight", Status: models.StatusOngoing, Severity: models.SeveritySevere},
		{ID: "2", Crop: "Rice", Disease: "Blast", Status: models.StatusRecovered, Severity: models.SeverityMild},
		{ID: "3", Crop: "Potato", Disease: "Late blight", Status: models.StatusWorsened, Severity: models.SeveritySevere},
		{ID: "4", Crop: "Wheat", Disease: "Rust", Status: models.StatusMonitoring, Severity: models.SeverityModerate},
	}
}

func ids(recs []models.CaseRecord) []string {
	out := []string{}
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name, status, search string
		want                 []string
	}{
		{"all", "ALL", "", []string{"1", "2", "3", "4"}},
		{"empty status", "", "", []string{"1", "2", "3", "4"}},
		{"by status", "recovered", "", []string{"2"}},
		{"search disease", "ALL", "BLIGHT", []string{"1", "3"}},
		{"search crop", "", "whe", []string{"4"}},
		{"status and search", "WORSENED", "blight", []string{"3"}},
		{"no match", "ONGOING", "rust", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(records(), tt.status, tt.search)))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{Total: 4, Ongoing: 2, Recovered: 1, Severe: 2}, Summarize(records()))
	assert.Equal(t, Summary{}, Summarize(nil))
}

package cases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fasaldoc/models"
	"fasaldoc/store"
)

var t0 = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

func newTestLifecycle(t *testing.T, s Store) (*Lifecycle, *time.Time) {
	now := t0
	seq := 0
	l := NewLifecycle(s, zaptest.NewLogger(t),
		WithClock(func() time.Time { return now }),
		WithIDs(func() string { seq++; return fmt.Sprintf("case-%d", seq) }),
	)
	return l, &now
}

func blight() models.Diagnosis {
	return models.Diagnosis{
		CropName:          "Tomato",
		DiseaseName:       "Late Blight",
		Confidence:        90,
		Severity:          models.SeveritySevere,
		Symptoms:          []string{"dark lesions"},
		ChemicalTreatment: models.ChemicalTreatment{Pesticide: "Mancozeb"},
		OrganicTreatment:  "Remove infected leaves.",
		RecoveryPlan:      []models.PlanStep{{Day: 1, Action: "spray"}},
	}
}

func TestCreateCaseThenLoadAll(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	l, _ := newTestLifecycle(t, s)

	first := l.CreateCase(ctx, "u1", blight(), "Maharashtra", "")
	second := l.CreateCase(ctx, "u1", blight(), "Maharashtra", "photos/x.jpg")

	all, err := s.LoadAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.Equal(t, models.StatusOngoing, all[0].Status)
	assert.Empty(t, all[0].Notes)
	assert.NotNil(t, all[0].Notes)
	assert.Nil(t, all[0].LastUpdated)
	assert.Equal(t, "18 OCT 2026", all[0].DisplayDate)
	assert.Equal(t, "Mancozeb", all[0].Treatment.Pesticide)
	assert.Equal(t, "Remove infected leaves.", all[0].Treatment.Organic)
	assert.Equal(t, "photos/x.jpg", all[0].PhotoKey)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	l := NewLifecycle(store.NewMemory(), nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := l.CreateCase(context.Background(), "u", blight(), "Bihar", "")
		assert.False(t, seen[rec.ID])
		seen[rec.ID] = true
	}
}

func TestAddNote(t *testing.T) {
	ctx := context.Background()
	l, now := newTestLifecycle(t, store.NewMemory())
	rec := l.CreateCase(ctx, "u", blight(), "Punjab", "")

	*now = t0.Add(24 * time.Hour)
	got, err := l.AddNote(ctx, "u", rec.ID, "  sprayed today ", models.StatusMonitoring)
	require.NoError(t, err)
	assert.Equal(t, []string{"sprayed today"}, got.Notes)
	assert.Equal(t, models.StatusMonitoring, got.Status)
	require.NotNil(t, got.LastUpdated)
	assert.True(t, got.LastUpdated.Equal(*now))

	// status-only edit
	got, err = l.AddNote(ctx, "u", rec.ID, "", models.StatusRecovered)
	require.NoError(t, err)
	assert.Equal(t, []string{"sprayed today"}, got.Notes)
	assert.Equal(t, models.StatusRecovered, got.Status)

	stored, err := l.Get(ctx, "u", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestAddNoteEmptyAndUnchangedIsNoop(t *testing.T) {
	ctx := context.Background()
	s := &countingStore{Memory: store.NewMemory()}
	l, now := newTestLifecycle(t, s)
	rec := l.CreateCase(ctx, "u", blight(), "Punjab", "")
	saves := s.saves

	*now = t0.Add(time.Hour)
	got, err := l.AddNote(ctx, "u", rec.ID, "   ", models.StatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, rec.Notes, got.Notes)
	assert.Nil(t, got.LastUpdated)
	assert.Equal(t, saves, s.saves)
}

func TestAddNotePure(t *testing.T) {
	rec := NewCase(blight(), "Kerala", "id", t0)
	same, changed := AddNote(rec, "", models.StatusOngoing, t0.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, rec, same)

	upd, changed := AddNote(rec, "first", models.StatusOngoing, t0.Add(time.Hour))
	assert.True(t, changed)
	assert.Equal(t, []string{"first"}, upd.Notes)
	assert.Empty(t, rec.Notes, "original record must not be modified")
}

func TestApplyFollowUpHasNoTransitionGuard(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLifecycle(t, store.NewMemory())
	rec := l.CreateCase(ctx, "u", blight(), "Punjab", "")

	got, err := l.ApplyFollowUp(ctx, "u", rec.ID, models.FollowUpAssessment{Status: models.StatusRecovered})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecovered, got.Status)

	got, err = l.ApplyFollowUp(ctx, "u", rec.ID, models.FollowUpAssessment{Status: models.StatusWorsened, Assessment: "Spreading."})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWorsened, got.Status)
	assert.Empty(t, got.Notes)

	stored, _ := l.Get(ctx, "u", rec.ID)
	assert.Equal(t, models.StatusWorsened, stored.Status)
}

func TestMutationsKeepOrder(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLifecycle(t, store.NewMemory())
	a := l.CreateCase(ctx, "u", blight(), "Punjab", "")
	b := l.CreateCase(ctx, "u", blight(), "Punjab", "")
	c := l.CreateCase(ctx, "u", blight(), "Punjab", "")

	_, err := l.AddNote(ctx, "u", a.ID, "oldest gets a note", models.StatusOngoing)
	require.NoError(t, err)
	_, err = l.ApplyFollowUp(ctx, "u", b.ID, models.FollowUpAssessment{Status: models.StatusMonitoring})
	require.NoError(t, err)

	all := l.List(ctx, "u")
	require.Len(t, all, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestUnknownCase(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLifecycle(t, store.NewMemory())
	_, err := l.AddNote(ctx, "u", "missing", "x", models.StatusOngoing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.ApplyFollowUp(ctx, "u", "missing", models.FollowUpAssessment{Status: models.StatusRecovered})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Get(ctx, "u", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLifecycle(t, store.NewMemory())
	l.CreateCase(ctx, "u", blight(), "Punjab", "")
	l.CreateCase(ctx, "other", blight(), "Punjab", "")

	l.DeleteAll(ctx, "u")
	assert.Empty(t, l.List(ctx, "u"))
	assert.Len(t, l.List(ctx, "other"), 1)
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLifecycle(t, brokenStore{})

	assert.Empty(t, l.List(ctx, "u"))
	rec := l.CreateCase(ctx, "u", blight(), "Punjab", "")
	assert.Equal(t, models.StatusOngoing, rec.Status)
	l.DeleteAll(ctx, "u")
}

type countingStore struct {
	*store.Memory
	saves int
}

func (c *countingStore) SaveAll(ctx context.Context, owner string, recs []models.CaseRecord) error {
	c.saves++
	return c.Memory.SaveAll(ctx, owner, recs)
}

type brokenStore struct{}

func (brokenStore) LoadAll(context.Context, string) ([]models.CaseRecord, error) {
	return nil, errors.New("disk unreadable")
}

func (brokenStore) SaveAll(context.Context, string, []models.CaseRecord) error {
	return errors.New("disk full")
}

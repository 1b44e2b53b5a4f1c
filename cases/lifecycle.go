package cases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fasaldoc/models"
)

var ErrNotFound = errors.New("case not found")

// Store persists the ordered case collection of one owner as a whole.
type Store interface {
	LoadAll(ctx context.Context, owner string) ([]models.CaseRecord, error)
	SaveAll(ctx context.Context, owner string, records []models.CaseRecord) error
}

// Lifecycle applies case transitions against a Store. Store failures never
// reach the caller: loads degrade to an empty collection and failed saves are
// logged, so the returned records stay authoritative for the session.
type Lifecycle struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

type Option func(*Lifecycle)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) { l.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(l *Lifecycle) { l.newID = newID }
}

func NewLifecycle(store Store, log *zap.Logger, opts ...Option) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Lifecycle{
		store: store,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// List returns the owner's cases, most recent first.
func (l *Lifecycle) List(ctx context.Context, owner string) []models.CaseRecord {
	return l.load(ctx, owner)
}

func (l *Lifecycle) Get(ctx context.Context, owner, id string) (models.CaseRecord, error) {
	for _, r := range l.load(ctx, owner) {
		if r.ID == id {
			return r, nil
		}
	}
	return models.CaseRecord{}, ErrNotFound
}

// CreateCase inserts a new ONGOING case at the head of the collection.
func (l *Lifecycle) CreateCase(ctx context.Context, owner string, d models.Diagnosis, region, photoKey string) models.CaseRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := NewCase(d, region, l.newID(), l.now())
	rec.PhotoKey = photoKey
	all := l.load(ctx, owner)
	updated := make([]models.CaseRecord, 0, len(all)+1)
	updated = append(updated, rec)
	updated = append(updated, all...)
	l.save(ctx, owner, updated)
	l.log.Info("case created", zap.String("owner", owner), zap.String("id", rec.ID), zap.String("disease", rec.Disease))
	return rec
}

// AddNote records a farmer note and/or status edit.
func (l *Lifecycle) AddNote(ctx context.Context, owner, id, note string, status models.CaseStatus) (models.CaseRecord, error) {
	return l.mutate(ctx, owner, id, func(rec models.CaseRecord) (models.CaseRecord, bool) {
		return AddNote(rec, note, status, l.now())
	})
}

// ApplyFollowUp sets the case status from a parsed follow-up assessment.
func (l *Lifecycle) ApplyFollowUp(ctx context.Context, owner, id string, a models.FollowUpAssessment) (models.CaseRecord, error) {
	return l.mutate(ctx, owner, id, func(rec models.CaseRecord) (models.CaseRecord, bool) {
		return ApplyFollowUp(rec, a, l.now()), true
	})
}

// DeleteAll empties the owner's collection. Irreversible.
func (l *Lifecycle) DeleteAll(ctx context.Context, owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.save(ctx, owner, []models.CaseRecord{})
	l.log.Info("case history cleared", zap.String("owner", owner))
}

func (l *Lifecycle) mutate(ctx context.Context, owner, id string, fn func(models.CaseRecord) (models.CaseRecord, bool)) (models.CaseRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.load(ctx, owner)
	for i, rec := range all {
		if rec.ID != id {
			continue
		}
		updated, changed := fn(rec)
		if changed {
			all[i] = updated
			l.save(ctx, owner, all)
		}
		return updated, nil
	}
	return models.CaseRecord{}, ErrNotFound
}

func (l *Lifecycle) load(ctx context.Context, owner string) []models.CaseRecord {
	recs, err := l.store.LoadAll(ctx, owner)
	if err != nil {
		l.log.Warn("load cases failed", zap.String("owner", owner), zap.Error(err))
		return []models.CaseRecord{}
	}
	if recs == nil {
		return []models.CaseRecord{}
	}
	return recs
}

func (l *Lifecycle) save(ctx context.Context, owner string, recs []models.CaseRecord) {
	if err := l.store.SaveAll(ctx, owner, recs); err != nil {
		l.log.Warn("save cases failed", zap.String("owner", owner), zap.Int("count", len(recs)), zap.Error(err))
	}
}

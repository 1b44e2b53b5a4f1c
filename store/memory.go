// Package store holds the case collection backends. Every backend reads and
// writes an owner's whole collection at once.
package store

import (
	"context"
	"sync"

	"fasaldoc/models"
)

// Memory keeps collections in process; used by tests and as a last resort.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]models.CaseRecord
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]models.CaseRecord)}
}

func (m *Memory) LoadAll(_ context.Context, owner string) ([]models.CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.data[owner]), nil
}

func (m *Memory) SaveAll(_ context.Context, owner string, records []models.CaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[owner] = clone(records)
	return nil
}

func clone(in []models.CaseRecord) []models.CaseRecord {
	out := make([]models.CaseRecord, len(in))
	for i, r := range in {
		r.Notes = append([]string{}, r.Notes...)
		r.Symptoms = append([]string{}, r.Symptoms...)
		r.RecoveryPlan = append([]models.PlanStep{}, r.RecoveryPlan...)
		out[i] = r
	}
	return out
}

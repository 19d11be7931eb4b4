package store

import (
	"context"
	"sort"
	"sync"

	"maglinc-site/internal/models"
)

// Memory keeps records in process. Used when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	records []models.StatusRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Create(_ context.Context, rec *models.StatusRecord) error {
	m.mu.Lock()
	m.records = append(m.records, *rec)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]models.StatusRecord, error) {
	limit = NormalizeLimit(limit)

	m.mu.RLock()
	out := make([]models.StatusRecord, len(m.records))
	copy(out, m.records)
	m.mu.RUnlock()

	// reverse first so equal timestamps keep newest-inserted first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Name() string {
	return "memory"
}

package recorder

import (
	"context"
	"sync"

	"IDXForecast/internal/model"
)

// MemoryLedger keeps records in process memory only.
type MemoryLedger struct {
	mu      sync.Mutex
	records []model.PredictionRecord
}

func NewMemoryLedger() *MemoryLedger { return &MemoryLedger{} }

func (m *MemoryLedger) Record(_ context.Context, rec model.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = dedupe(append(m.records, rec))
	return nil
}

func (m *MemoryLedger) Query(_ context.Context, symbol string, order Order) ([]model.PredictionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterSorted(m.records, symbol, order), nil
}

func (m *MemoryLedger) Close() error { return nil }

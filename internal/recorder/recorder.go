package recorder

import (
	"context"
	"sort"

	"IDXForecast/internal/model"
)

// Order selects the date ordering of Query results.
type Order int

const (
	// Ascending is oldest first, for charting.
	Ascending Order = iota
	// Descending is newest first, for listing.
	Descending
)

// Ledger persists prediction records. At most one record is kept per
// (date, symbol); recording an existing key replaces it.
type Ledger interface {
	Record(ctx context.Context, rec model.PredictionRecord) error
	Query(ctx context.Context, symbol string, order Order) ([]model.PredictionRecord, error)
	Close() error
}

// dedupe keeps the last occurrence of every (date, symbol) key, preserving the
// position of that last occurrence.
func dedupe(records []model.PredictionRecord) []model.PredictionRecord {
	last := make(map[string]int, len(records))
	for i, r := range records {
		last[r.Key()] = i
	}
	out := make([]model.PredictionRecord, 0, len(last))
	for i, r := range records {
		if last[r.Key()] == i {
			out = append(out, r)
		}
	}
	return out
}

func filterSorted(records []model.PredictionRecord, symbol string, order Order) []model.PredictionRecord {
	out := make([]model.PredictionRecord, 0)
	for _, r := range records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

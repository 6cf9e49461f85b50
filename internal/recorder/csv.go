package recorder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"IDXForecast/internal/model"
)

var csvHeader = []string{"date", "symbol", "predicted_price", "before_close"}

// CSVLedger stores the ledger as a flat CSV file. Every Record loads the whole
// file, appends, dedupes and writes it back through a temp file and rename, so
// readers only ever see a complete snapshot. The mutex serialises writers in
// this process; separate processes sharing the file can still lose updates.
type CSVLedger struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

// NewCSVLedger opens the ledger at path. The file is created on first write.
// Dates are parsed in loc.
func NewCSVLedger(path string, loc *time.Location) (*CSVLedger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	l := &CSVLedger{path: path, loc: loc}
	if _, err := l.load(); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("csv ledger opened")
	return l, nil
}

func (l *CSVLedger) Record(_ context.Context, rec model.PredictionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	return l.write(dedupe(append(records, rec)))
}

func (l *CSVLedger) Query(_ context.Context, symbol string, order Order) ([]model.PredictionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return nil, err
	}
	return filterSorted(records, symbol, order), nil
}

func (l *CSVLedger) Close() error { return nil }

func (l *CSVLedger) load() ([]model.PredictionRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.PredictionRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger line %d: %w", line, err)
		}
		rec, err := l.parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, want := range csvHeader[:3] {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("ledger header missing column %q", want)
		}
	}
	return cols, nil
}

func (l *CSVLedger) parseRow(row []string, cols map[string]int) (model.PredictionRecord, error) {
	var rec model.PredictionRecord
	date, err := time.ParseInLocation(model.DateLayout, row[cols["date"]], l.loc)
	if err != nil {
		return rec, fmt.Errorf("parse date: %w", err)
	}
	price, err := strconv.ParseFloat(row[cols["predicted_price"]], 64)
	if err != nil {
		return rec, fmt.Errorf("parse predicted_price: %w", err)
	}
	rec.Date = date
	rec.Symbol = row[cols["symbol"]]
	rec.PredictedPrice = price
	// Rows written before the flag existed count as after-close predictions.
	if i, ok := cols["before_close"]; ok && i < len(row) && row[i] != "" {
		b, err := strconv.ParseBool(row[i])
		if err != nil {
			return rec, fmt.Errorf("parse before_close: %w", err)
		}
		rec.BeforeClose = b
	}
	return rec, nil
}

func (l *CSVLedger) write(records []model.PredictionRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, r := range records {
		if err := w.Write([]string{
			r.Date.Format(model.DateLayout),
			r.Symbol,
			strconv.FormatFloat(r.PredictedPrice, 'f', -1, 64),
			strconv.FormatBool(r.BeforeClose),
		}); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"IDXForecast/internal/model"
)

// SQLiteLedger persists the ledger to a SQLite database keyed by (date, symbol).
type SQLiteLedger struct {
	db  *sql.DB
	loc *time.Location
	mu  sync.Mutex
}

// NewSQLiteLedger opens (or creates) the SQLite database and runs migrations.
func NewSQLiteLedger(dbPath string, loc *time.Location) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the history view read while a prediction writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}
	l := &SQLiteLedger{db: db, loc: loc}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite ledger opened")
	return l, nil
}

func (l *SQLiteLedger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			date            TEXT NOT NULL,
			symbol          TEXT NOT NULL,
			predicted_price REAL NOT NULL,
			before_close    INTEGER NOT NULL,
			updated_at      INTEGER NOT NULL,
			PRIMARY KEY (date, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol ON predictions(symbol, date)`,
	}
	for _, s := range stmts {
		if _, err := l.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (l *SQLiteLedger) Record(ctx context.Context, rec model.PredictionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `INSERT INTO predictions
		(date, symbol, predicted_price, before_close, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(date, symbol) DO UPDATE SET
			predicted_price = excluded.predicted_price,
			before_close    = excluded.before_close,
			updated_at      = excluded.updated_at`,
		rec.Date.Format(model.DateLayout), rec.Symbol, rec.PredictedPrice,
		rec.BeforeClose, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record prediction %s: %w", rec.Key(), err)
	}
	return nil
}

func (l *SQLiteLedger) Query(ctx context.Context, symbol string, order Order) ([]model.PredictionRecord, error) {
	q := `SELECT date, symbol, predicted_price, before_close FROM predictions WHERE symbol = ? ORDER BY date ASC`
	if order == Descending {
		q = `SELECT date, symbol, predicted_price, before_close FROM predictions WHERE symbol = ? ORDER BY date DESC`
	}
	rows, err := l.db.QueryContext(ctx, q, symbol)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]model.PredictionRecord, 0)
	for rows.Next() {
		var (
			date string
			rec  model.PredictionRecord
		)
		if err := rows.Scan(&date, &rec.Symbol, &rec.PredictedPrice, &rec.BeforeClose); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		rec.Date, err = time.ParseInLocation(model.DateLayout, date, l.loc)
		if err != nil {
			return nil, fmt.Errorf("parse prediction date %q: %w", date, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) Close() error {
	log.Info().Msg("closing sqlite ledger")
	return l.db.Close()
}

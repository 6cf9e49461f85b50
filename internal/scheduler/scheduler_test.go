package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IDXForecast/internal/model"
)

type fakeEngine struct {
	calls []string
}

func (f *fakeEngine) Predict(_ context.Context, symbol string) (*model.PredictionResult, error) {
	f.calls = append(f.calls, symbol)
	if symbol != "BBCA.JK" {
		return nil, model.ErrModelNotFound
	}
	return &model.PredictionResult{
		Symbol:         symbol,
		Name:           "Bank Central Asia Tbk (BBCA)",
		PredictedPrice: 9100,
		ReferenceClose: 9000,
		TargetDate:     time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
	}, nil
}

type fakeHistory struct{}

func (fakeHistory) History(_ context.Context, symbol string) (*model.HistoryReport, error) {
	if symbol != "BBCA.JK" {
		return nil, model.ErrUnknownSymbol
	}
	return &model.HistoryReport{Symbol: symbol, Name: "BCA"}, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return nil
}

var jakarta, _ = time.LoadLocation("Asia/Jakarta")

var testStocks = []model.Stock{
	{Symbol: "BBCA.JK", Name: "Bank Central Asia Tbk (BBCA)"},
	{Symbol: "TLKM.JK", Name: "Telkom Indonesia Persero Tbk (TLKM)"},
}

func newTestScheduler() (*Scheduler, *fakeEngine, *fakeSender) {
	eng := &fakeEngine{}
	snd := &fakeSender{}
	return NewScheduler(context.Background(), eng, fakeHistory{}, snd, testStocks, jakarta), eng, snd
}

func TestHandleCommand(t *testing.T) {
	s, eng, _ := newTestScheduler()
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/predict bbca")
	assert.Contains(t, reply, "Predicted close: Rp 9,100")
	assert.Equal(t, []string{"BBCA.JK"}, eng.calls)

	assert.Contains(t, s.HandleCommand(ctx, "/predict@idx_bot TLKM.JK"), "No trained model")
	assert.Equal(t, "Usage: /predict SYMBOL", s.HandleCommand(ctx, "/predict"))
	assert.Contains(t, s.HandleCommand(ctx, "/history BBCA.JK"), "No predictions recorded yet")
	assert.Contains(t, s.HandleCommand(ctx, "/history XXXX"), "Unknown symbol")
	assert.Contains(t, s.HandleCommand(ctx, "/stocks"), "TLKM.JK")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Available commands")
	assert.Contains(t, s.HandleCommand(ctx, ""), "Available commands")
}

func TestRunDailyNow(t *testing.T) {
	s, eng, _ := newTestScheduler()

	digest := s.RunDailyNow(context.Background())
	assert.Equal(t, []string{"BBCA.JK", "TLKM.JK"}, eng.calls)
	assert.Contains(t, digest, "BBCA.JK: Rp 9,100")
	assert.Contains(t, digest, "TLKM.JK: ❌ No trained model")
}

func TestDailyTaskSendsDigest(t *testing.T) {
	s, _, snd := newTestScheduler()
	s.dailyTask()
	require.Len(t, snd.sent, 1)
	assert.True(t, strings.HasPrefix(snd.sent[0], "📊"))
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler()
	require.NoError(t, s.Register("0 45 16 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BBRI.JK", normalizeSymbol(" bbri "))
	assert.Equal(t, "AAPL.US", normalizeSymbol("aapl.us"))
}

func TestRegister_FiresInExchangeTime(t *testing.T) {
	s, _, _ := newTestScheduler()
	require.NoError(t, s.Register("0 45 16 * * 1-5"))
	assert.Equal(t, "Asia/Jakarta", s.Cron.Location().String())

	entries := s.Cron.Entries()
	require.Len(t, entries, 1)
	thursdayEvening := time.Date(2025, 8, 7, 20, 0, 0, 0, jakarta)
	next := entries[0].Schedule.Next(thursdayEvening.In(s.Cron.Location()))
	assert.True(t, next.Equal(time.Date(2025, 8, 8, 16, 45, 0, 0, jakarta)), "next fire %s", next)

	fridayEvening := time.Date(2025, 8, 8, 20, 0, 0, 0, jakarta)
	next = entries[0].Schedule.Next(fridayEvening.In(s.Cron.Location()))
	assert.True(t, next.Equal(time.Date(2025, 8, 11, 16, 45, 0, 0, jakarta)), "weekend skipped, got %s", next)
}

package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"IDXForecast/internal/model"
	"IDXForecast/internal/notifier"
)

// Forecaster runs the prediction pipeline for one symbol.
type Forecaster interface {
	Predict(ctx context.Context, symbol string) (*model.PredictionResult, error)
}

// HistoryReporter reconciles the ledger of one symbol.
type HistoryReporter interface {
	History(ctx context.Context, symbol string) (*model.HistoryReport, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the post-close forecast job and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   Forecaster
	History  HistoryReporter
	Notifier Sender
	Stocks   []model.Stock
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler whose cron specs are read in loc, the
// exchange timezone. Notifier may be nil, in which case digests are only logged.
func NewScheduler(ctx context.Context, engine Forecaster, hist HistoryReporter, sender Sender, stocks []model.Stock, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Engine:   engine,
		History:  hist,
		Notifier: sender,
		Stocks:   stocks,
		Ctx:      ctx,
	}
}

// Register adds the daily forecast job.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow forecasts every configured stock and returns the digest.
func (s *Scheduler) RunDailyNow(ctx context.Context) string {
	var results []*model.PredictionResult
	failures := make(map[string]error)
	for _, stock := range s.Stocks {
		if ctx.Err() != nil {
			failures[stock.Symbol] = ctx.Err()
			continue
		}
		res, err := s.Engine.Predict(ctx, stock.Symbol)
		if err != nil {
			log.Error().Err(err).Str("symbol", stock.Symbol).Msg("daily forecast failed")
			failures[stock.Symbol] = err
			continue
		}
		results = append(results, res)
	}
	log.Info().Int("ok", len(results)).Int("failed", len(failures)).Msg("daily forecast done")
	return notifier.FormatDigest(results, failures)
}

func (s *Scheduler) dailyTask() {
	log.Info().Msg("running daily forecast task")
	s.trySend(s.RunDailyNow(s.Ctx))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage()
	}
	// Telegram appends the bot name in groups: /predict@bot
	cmd, _, _ := strings.Cut(fields[0], "@")
	switch cmd {
	case "/stocks":
		return notifier.FormatStocks(s.Stocks)
	case "/predict":
		if len(fields) < 2 {
			return "Usage: /predict SYMBOL"
		}
		res, err := s.Engine.Predict(ctx, normalizeSymbol(fields[1]))
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatPrediction(res)
	case "/history":
		if len(fields) < 2 {
			return "Usage: /history SYMBOL"
		}
		rep, err := s.History.History(ctx, normalizeSymbol(fields[1]))
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatHistory(rep)
	case "/digest":
		return s.RunDailyNow(ctx)
	default:
		return usage()
	}
}

func usage() string {
	return "Available commands:\n• /stocks\n• /predict SYMBOL\n• /history SYMBOL\n• /digest"
}

// normalizeSymbol upper-cases the ticker and adds the IDX suffix when missing.
func normalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.Contains(s, ".") {
		s += ".JK"
	}
	return s
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Info().Msg(text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"IDXForecast/internal/calculator"
	"IDXForecast/internal/regressor"
)

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Forecast the next close of a symbol and record it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.engine.Predict(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show recorded forecasts of a symbol next to the actual closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			rep, err := a.history.History(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func newStocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List configured symbols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			for _, s := range a.cfg.Stocks {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", s.Symbol, s.Name)
			}
			return nil
		},
	}
}

func newTrainCmd() *cobra.Command {
	var rng string
	cmd := &cobra.Command{
		Use:   "train [SYMBOL...]",
		Short: "Fit a linear model per symbol and write it to the model directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if rng == "" {
				rng = a.cfg.Models.TrainRange
			}
			symbols := args
			if len(symbols) == 0 {
				for _, s := range a.cfg.Stocks {
					symbols = append(symbols, s.Symbol)
				}
			}
			var failed int
			for _, symbol := range symbols {
				symbol = strings.ToUpper(symbol)
				art, err := a.train(cmd, symbol, rng)
				if err != nil {
					log.Error().Err(err).Str("symbol", symbol).Msg("train failed")
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s samples -> %s\n",
					symbol, humanize.Comma(int64(art.Samples)), a.models.Path(symbol))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rng, "range", "", "history range to fit on (default from config)")
	return cmd
}

func (a *app) train(cmd *cobra.Command, symbol, rng string) (*regressor.Artifact, error) {
	series, err := a.collector.CollectRange(cmd.Context(), symbol, rng)
	if err != nil {
		return nil, err
	}
	rows, err := calculator.BuildFeatures(series.Bars)
	if err != nil {
		return nil, err
	}
	art, err := regressor.FitLinear(symbol, rows)
	if err != nil {
		return nil, err
	}
	if err := a.models.Save(symbol, art); err != nil {
		return nil, err
	}
	return art, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

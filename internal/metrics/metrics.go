// Package metrics exposes Prometheus counters for the forecast pipeline.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"IDXForecast/internal/model"
)

// Recorder implements predictor.Observer using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPred    *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idxforecast_predictions_total",
				Help: "Total number of successful forecasts",
			},
			[]string{"symbol", "session"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idxforecast_errors_total",
				Help: "Total number of failed forecasts by error kind",
			},
			[]string{"kind"},
		),
		lastPred: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "idxforecast_last_predicted_price",
				Help: "Last predicted close for a symbol",
			},
			[]string{"symbol"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "idxforecast_predict_duration_seconds",
				Help:    "Duration of forecast requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(r.predictions, r.errorsTotal, r.lastPred, r.latency)
	return r
}

// ObservePrediction records the outcome of one forecast.
func (r *Recorder) ObservePrediction(symbol string, res *model.PredictionResult, err error, elapsed time.Duration) {
	if err != nil {
		r.errorsTotal.WithLabelValues(ErrorKind(err)).Inc()
		r.latency.WithLabelValues("error").Observe(elapsed.Seconds())
		return
	}
	session := "closed"
	if res.SessionWasOpen {
		session = "open"
	}
	r.predictions.WithLabelValues(symbol, session).Inc()
	r.lastPred.WithLabelValues(symbol).Set(res.PredictedPrice)
	r.latency.WithLabelValues("ok").Observe(elapsed.Seconds())
}

// ErrorKind maps an error to a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, model.ErrModelNotFound):
		return "model_not_found"
	case errors.Is(err, model.ErrInvalidModel):
		return "invalid_model"
	case errors.Is(err, model.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, model.ErrMarketDataUnavailable), errors.Is(err, model.ErrUpstream):
		return "market_data_unavailable"
	default:
		return "internal"
	}
}

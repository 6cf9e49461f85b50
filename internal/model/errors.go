package model

import "errors"

var (
	// ErrInsufficientData means the price or feature table is empty after cleaning.
	ErrInsufficientData = errors.New("insufficient data for prediction")
	// ErrModelNotFound means no artifact exists for the requested symbol.
	ErrModelNotFound = errors.New("model not found")
	// ErrInvalidModel means the artifact exists but cannot be evaluated.
	ErrInvalidModel = errors.New("invalid model artifact")
	// ErrMarketDataUnavailable means the data source returned no bars.
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	// ErrUpstream means the data source could not be reached or failed.
	ErrUpstream = errors.New("market data source error")
	// ErrUnknownSymbol means the symbol is not part of the configured universe.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IDXForecast/internal/model"
)

const yahooFixture = `{"chart":{"result":[{"meta":{"exchangeTimezoneName":"Asia/Jakarta"},
"timestamp":[1754013600,1753927200,1754272800],
"indicators":{"quote":[{"open":[9100,9000,null],"high":[9200,9100,null],"low":[9000,8950,null],
"close":[9150,9050,null],"volume":[1000,2000,null]}]}}],"error":null}}`

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/v8/finance/chart/BBCA.JK", r.URL.Path)
		w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "BBCA.JK", "6mo")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "range=6mo")

	// null bar dropped, sorted oldest first
	require.Len(t, bars, 2)
	assert.Equal(t, 9050.0, bars[0].Close)
	assert.Equal(t, 9150.0, bars[1].Close)
	assert.Equal(t, "Asia/Jakarta", bars[0].Time.Location().String())
}

func TestYahooFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "NOPE.JK", "6mo")
	assert.ErrorIs(t, err, model.ErrMarketDataUnavailable)
}

func TestYahooFetcher_FetchRangeFiltersWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 1754013600 is 2025-08-01 09:00 WIB.
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, loc)
	bars, err := f.FetchRange(context.Background(), "BBCA.JK", start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 9150.0, bars[0].Close)

	empty := time.Date(2025, 8, 2, 0, 0, 0, 0, loc)
	_, err = f.FetchRange(context.Background(), "BBCA.JK", empty, empty.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, model.ErrMarketDataUnavailable)
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("symbol") == "EMPTY.JK" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"timestamp":1754013600,"close":9150},{"timestamp":1753927200,"close":9050}]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", 5*time.Second)
	bars, err := f.FetchDailyBars(context.Background(), "BBCA.JK", "6mo")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 9050.0, bars[0].Close)

	_, err = f.FetchDailyBars(context.Background(), "EMPTY.JK", "6mo")
	assert.ErrorIs(t, err, model.ErrMarketDataUnavailable)
}

func TestCollector_EmptyMapsToInsufficientData(t *testing.T) {
	c := NewCollector(&MockFetcher{Bars: map[string][]model.OHLCV{"XYZ.JK": nil}}, "", nil)
	_, err := c.Collect(context.Background(), "XYZ.JK")
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	c = NewCollector(&MockFetcher{}, "", nil)
	_, err = c.Collect(context.Background(), "XYZ.JK")
	assert.ErrorIs(t, err, model.ErrInsufficientData)
	assert.ErrorIs(t, err, model.ErrMarketDataUnavailable)
}

func TestCollector_UpstreamErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewCollector(&MockFetcher{Err: boom}, "", nil)
	_, err := c.Collect(context.Background(), "XYZ.JK")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, model.ErrInsufficientData)
}

func TestCollector_ActualClose(t *testing.T) {
	day := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	c := NewCollector(&MockFetcher{Bars: map[string][]model.OHLCV{
		"XYZ.JK": {{Time: day, Close: 105}},
	}}, "", time.UTC)

	got, err := c.ActualClose(context.Background(), "XYZ.JK", time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 105.0, got)

	_, err = c.ActualClose(context.Background(), "XYZ.JK", time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, model.ErrMarketDataUnavailable)
}

func TestYahooFetcher_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 0)
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "BBCA.JK", "6mo")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUpstream)
	assert.NotErrorIs(t, err, model.ErrMarketDataUnavailable)
}

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Forecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "47.4979", r.URL.Query().Get("latitude"))
		assert.Equal(t, "19.0402", r.URL.Query().Get("longitude"))
		assert.Equal(t, "precipitation,wind_speed_10m", r.URL.Query().Get("hourly"))
		assert.Equal(t, "1", r.URL.Query().Get("forecast_days"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{
			"precipitation":[0.0, 2.5, 18.2, 4.0],
			"wind_speed_10m":[12.0, 40.5, 33.0, 8.0]
		}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sample, err := c.Forecast(context.Background(), 47.4979, 19.0402)
	require.NoError(t, err)

	assert.Equal(t, 18.2, sample.RainMM)
	assert.Equal(t, 40.5, sample.WindKPH)
}

func TestClient_Forecast_EmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{"precipitation":[],"wind_speed_10m":[]}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sample, err := c.Forecast(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, sample.RainMM)
	assert.Equal(t, 0.0, sample.WindKPH)
}

func TestClient_Forecast_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"reason":"Minutely API request limit exceeded"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Forecast(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

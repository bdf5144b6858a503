package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/mdouchement/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func options() fetcher.Options {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return fetcher.Options{
		Logger:   logger.WrapLogrus(log),
		Timeout:  time.Second,
		Attempts: 3,
		Delay:    time.Millisecond,
	}
}

const weatherPayload = `{
  "latitude": 36.7,
  "longitude": 137.2,
  "hourly": {
    "time": ["2024-05-01T00:00", "2024-05-01T01:00"],
    "temperature_2m": [12.5, null],
    "precipitation": [0.0, 0.4],
    "wind_speed_10m": [7.2, 3.6],
    "wind_direction_10m": [180, 270]
  },
  "daily": {
    "time": ["2024-05-01"],
    "weather_code": [3],
    "temperature_2m_max": [20.1],
    "temperature_2m_min": [10.2],
    "precipitation_probability_max": [40],
    "wind_direction_10m_dominant": [200]
  }
}`

func TestWeatherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "36.6959", q.Get("latitude"))
		assert.Equal(t, "137.2136", q.Get("longitude"))
		assert.Equal(t, "Asia/Tokyo", q.Get("timezone"))
		assert.Equal(t, "2024-04-29", q.Get("start_date"))
		assert.Equal(t, "2024-05-08", q.Get("end_date"))
		assert.Equal(t, "temperature_2m,precipitation,wind_speed_10m,wind_direction_10m", q.Get("hourly"))
		assert.Contains(t, q.Get("daily"), "wind_direction_10m_dominant")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, weatherPayload)
	}))
	defer server.Close()

	weather := fetcher.NewWeather(server.URL, 36.6959, 137.2136, "Asia/Tokyo", options())

	start := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	response, err := weather.Fetch(context.Background(), start, start.AddDate(0, 0, 9))
	require.NoError(t, err)

	require.Len(t, response.Hourly.Time, 2)
	assert.Equal(t, 12.5, *response.Hourly.Temperature2m[0])
	assert.Nil(t, response.Hourly.Temperature2m[1])
	assert.Equal(t, []int{3}, response.Daily.WeatherCode)
	assert.Equal(t, []int{200}, response.Daily.WindDirection10mDominant)
}

func TestWeatherFetchMisalignedSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hourly":{"time":["2024-05-01T00:00"],"temperature_2m":[]}}`)
	}))
	defer server.Close()

	weather := fetcher.NewWeather(server.URL, 0, 0, "UTC", options())
	_, err := weather.Fetch(context.Background(), time.Now(), time.Now())
	assert.ErrorContains(t, err, "invalid weather response")
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, weatherPayload)
	}))
	defer server.Close()

	weather := fetcher.NewWeather(server.URL, 0, 0, "UTC", options())
	_, err := weather.Fetch(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	weather := fetcher.NewWeather(server.URL, 0, 0, "UTC", options())
	_, err := weather.Fetch(context.Background(), time.Now(), time.Now())
	require.Error(t, err)

	var serr *fetcher.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadRequest, serr.Code)
	assert.False(t, serr.Temporary())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRetryExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tide := fetcher.NewTide(server.URL, 16, 3, options())
	_, err := tide.MoonAge(context.Background(), time.Now())
	require.Error(t, err)

	var serr *fetcher.StatusError
	require.True(t, errors.As(err, &serr))
	assert.True(t, serr.Temporary())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestTideMoonAge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "16", q.Get("pc"))
		assert.Equal(t, "3", q.Get("hc"))
		assert.Equal(t, "2024", q.Get("yr"))
		assert.Equal(t, "5", q.Get("mn"))
		assert.Equal(t, "1", q.Get("dy"))
		assert.Equal(t, "day", q.Get("rg"))

		fmt.Fprint(w, `{"status":true,"tide":{"chart":{"2024-05-01":{"moon":{"age":"22.4","title":"中潮"}}}}}`)
	}))
	defer server.Close()

	tide := fetcher.NewTide(server.URL, 16, 3, options())

	age, err := tide.MoonAge(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 22.4, age)

	_, err = tide.MoonAge(context.Background(), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, fetcher.ErrMoonAgeNotFound))
}

func TestTideMoonAgeNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tide":{"chart":{"2024-05-01":{"moon":{"age":3.1}}}}}`)
	}))
	defer server.Close()

	tide := fetcher.NewTide(server.URL, 16, 3, options())

	age, err := tide.MoonAge(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3.1, age)
}

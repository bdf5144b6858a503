package fetcher

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	hourlyVariables = "temperature_2m,precipitation,wind_speed_10m,wind_direction_10m"
	dailyVariables  = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_direction_10m_dominant"
)

type (
	// A Weather fetches forecasts from the Open-Meteo API.
	Weather struct {
		client    *client
		URL       string
		Latitude  float64
		Longitude float64
		Timezone  string
	}

	// WeatherResponse is the payload returned by Open-Meteo.
	WeatherResponse struct {
		Latitude  float64       `json:"latitude"`
		Longitude float64       `json:"longitude"`
		Hourly    HourlyWeather `json:"hourly"`
		Daily     DailyWeather  `json:"daily"`
	}

	// HourlyWeather holds the hourly series. Missing measures are null.
	HourlyWeather struct {
		Time             []string   `json:"time"`
		Temperature2m    []*float64 `json:"temperature_2m"`
		Precipitation    []*float64 `json:"precipitation"`
		WindSpeed10m     []*float64 `json:"wind_speed_10m"`
		WindDirection10m []*float64 `json:"wind_direction_10m"`
	}

	// DailyWeather holds the daily series.
	DailyWeather struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		Temperature2mMin            []float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
		WindDirection10mDominant    []int     `json:"wind_direction_10m_dominant"`
	}
)

// NewWeather returns a new Weather fetcher.
func NewWeather(endpoint string, latitude, longitude float64, timezone string, opts Options) *Weather {
	return &Weather{
		client:    newClient("open-meteo", opts),
		URL:       endpoint,
		Latitude:  latitude,
		Longitude: longitude,
		Timezone:  timezone,
	}
}

// Fetch returns the past and forecasted weather between start and end (both included).
func (w *Weather) Fetch(ctx context.Context, start, end time.Time) (*WeatherResponse, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(w.Latitude, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(w.Longitude, 'f', -1, 64)},
		"daily":      {dailyVariables},
		"hourly":     {hourlyVariables},
		"timezone":   {w.Timezone},
		"start_date": {start.Format("2006-01-02")},
		"end_date":   {end.Format("2006-01-02")},
	}

	var response WeatherResponse
	if err := w.client.get(ctx, w.URL, params, &response); err != nil {
		return nil, errors.Wrap(err, "could not fetch weather")
	}

	if err := response.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid weather response")
	}
	return &response, nil
}

// Validate checks that all the series are aligned on their time axis.
func (r *WeatherResponse) Validate() error {
	h := r.Hourly
	n := len(h.Time)
	for name, l := range map[string]int{
		"temperature_2m":     len(h.Temperature2m),
		"precipitation":      len(h.Precipitation),
		"wind_speed_10m":     len(h.WindSpeed10m),
		"wind_direction_10m": len(h.WindDirection10m),
	} {
		if l != n {
			return errors.Errorf("hourly %s has %d values for %d timestamps", name, l, n)
		}
	}

	d := r.Daily
	n = len(d.Time)
	for name, l := range map[string]int{
		"weather_code":                  len(d.WeatherCode),
		"temperature_2m_max":            len(d.Temperature2mMax),
		"temperature_2m_min":            len(d.Temperature2mMin),
		"precipitation_probability_max": len(d.PrecipitationProbabilityMax),
		"wind_direction_10m_dominant":   len(d.WindDirection10mDominant),
	} {
		if l != n {
			return errors.Errorf("daily %s has %d values for %d days", name, l, n)
		}
	}
	return nil
}

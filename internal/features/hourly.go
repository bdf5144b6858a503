package features

import (
	"math"
	"time"

	"github.com/mdouchement/bakuwaki/internal/compass"
	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/pkg/errors"
)

// TimeLayout is the local time format used by Open-Meteo.
const TimeLayout = "2006-01-02T15:04"

type (
	// An Hour is one hourly weather measure. Missing values are NaN.
	Hour struct {
		Time          time.Time
		Temperature   float64
		Precipitation float64
		// WindSpeed is expressed in m/s.
		WindSpeed float64
		// WindDirection is a compass point, empty when unknown.
		WindDirection string
	}

	// Hourly is a time series of hourly measures.
	Hourly []Hour
)

// NewHourly converts the Open-Meteo hourly series, whose timestamps are local to loc.
func NewHourly(series fetcher.HourlyWeather, loc *time.Location) (Hourly, error) {
	hourly := make(Hourly, 0, len(series.Time))

	for i, ts := range series.Time {
		t, err := time.ParseInLocation(TimeLayout, ts, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid hourly timestamp %q", ts)
		}

		speed := value(series.WindSpeed10m, i)
		if !math.IsNaN(speed) {
			// km/h to m/s
			speed = math.RoundToEven(speed*1000/3600*10) / 10
		}

		hourly = append(hourly, Hour{
			Time:          t,
			Temperature:   value(series.Temperature2m, i),
			Precipitation: value(series.Precipitation, i),
			WindSpeed:     speed,
			WindDirection: compass.FromDegrees(value(series.WindDirection10m, i)),
		})
	}

	return hourly, nil
}

// Between returns the hours in [from, to].
func (h Hourly) Between(from, to time.Time) Hourly {
	return h.Filter(func(hour Hour) bool {
		return !hour.Time.Before(from) && !hour.Time.After(to)
	})
}

// Filter returns the hours matching fn.
func (h Hourly) Filter(fn func(Hour) bool) Hourly {
	var selection Hourly
	for _, hour := range h {
		if fn(hour) {
			selection = append(selection, hour)
		}
	}
	return selection
}

// Temperatures returns the temperature series.
func (h Hourly) Temperatures() []float64 {
	return h.column(func(hour Hour) float64 { return hour.Temperature })
}

// Precipitations returns the precipitation series.
func (h Hourly) Precipitations() []float64 {
	return h.column(func(hour Hour) float64 { return hour.Precipitation })
}

// WindSpeeds returns the wind speed series.
func (h Hourly) WindSpeeds() []float64 {
	return h.column(func(hour Hour) float64 { return hour.WindSpeed })
}

// WindDirections returns the known wind directions.
func (h Hourly) WindDirections() []string {
	directions := make([]string, 0, len(h))
	for _, hour := range h {
		if hour.WindDirection != "" {
			directions = append(directions, hour.WindDirection)
		}
	}
	return directions
}

func (h Hourly) column(fn func(Hour) float64) []float64 {
	values := make([]float64, 0, len(h))
	for _, hour := range h {
		values = append(values, fn(hour))
	}
	return values
}

func value(series []*float64, i int) float64 {
	if i >= len(series) || series[i] == nil {
		return math.NaN()
	}
	return *series[i]
}

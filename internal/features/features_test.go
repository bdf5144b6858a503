package features_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/mdouchement/bakuwaki/internal/features"
	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*3600)

type holidays map[string]bool

func (h holidays) IsHoliday(day time.Time) bool {
	return h[day.Format("2006-01-02")]
}

type encoder []float64

func (e encoder) Known(v float64) bool {
	_, err := e.Transform(v)
	return err == nil
}

func (e encoder) Mode() float64 {
	return e[0]
}

func (e encoder) Transform(v float64) (float64, error) {
	for i, c := range e {
		if c == v {
			return float64(i), nil
		}
	}
	return 0, errors.Errorf("unknown label %v", v)
}

func fp(v float64) *float64 {
	return &v
}

// series builds 49 hours starting at midnight of day.
func series(day time.Time) fetcher.HourlyWeather {
	var s fetcher.HourlyWeather
	for i := 0; i <= 48; i++ {
		t := day.Add(time.Duration(i) * time.Hour)
		s.Time = append(s.Time, t.Format(features.TimeLayout))

		temperature := fp(float64(i))
		if i == 11 {
			temperature = nil
		}
		s.Temperature2m = append(s.Temperature2m, temperature)

		precipitation := 0.0
		switch i {
		case 15:
			precipitation = 1
		case 26:
			precipitation = 0.5
		}
		s.Precipitation = append(s.Precipitation, fp(precipitation))

		speed := 36.0
		if i == 22 {
			speed = 18
		}
		s.WindSpeed10m = append(s.WindSpeed10m, fp(speed))
		s.WindDirection10m = append(s.WindDirection10m, fp(90))
	}
	return s
}

func TestNewHourly(t *testing.T) {
	hourly, err := features.NewHourly(fetcher.HourlyWeather{
		Time:             []string{"2024-05-03T10:00", "2024-05-03T11:00"},
		Temperature2m:    []*float64{fp(12), nil},
		Precipitation:    []*float64{nil, fp(1.2)},
		WindSpeed10m:     []*float64{fp(10), nil},
		WindDirection10m: []*float64{fp(225), nil},
	}, jst)
	require.NoError(t, err)
	require.Len(t, hourly, 2)

	assert.Equal(t, time.Date(2024, 5, 3, 10, 0, 0, 0, jst), hourly[0].Time)
	assert.Equal(t, 12.0, hourly[0].Temperature)
	assert.True(t, math.IsNaN(hourly[0].Precipitation))
	assert.Equal(t, 2.8, hourly[0].WindSpeed)
	assert.Equal(t, "SW", hourly[0].WindDirection)

	assert.True(t, math.IsNaN(hourly[1].Temperature))
	assert.True(t, math.IsNaN(hourly[1].WindSpeed))
	assert.Equal(t, "", hourly[1].WindDirection)

	_, err = features.NewHourly(fetcher.HourlyWeather{Time: []string{"yesterday"}}, jst)
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	day := time.Date(2024, 5, 3, 0, 0, 0, 0, jst)
	hourly, err := features.NewHourly(series(day), jst)
	require.NoError(t, err)

	row := features.Day(day.Add(15*time.Hour), hourly, 23.4, holidays{"2024-05-03": true})

	expected := features.Row{
		"year":          2024,
		"month":         5,
		"day":           3,
		"weekday":       4,
		"week_of_year":  18,
		"week_of_month": 1,
		"day_of_year":   124,
		"is_weekend":    0,
		"is_holiday":    1,
		"moon_age":      23.4,

		"temperature_mean": 19.444444444444443,
		"temperature_max":  28,
		"temperature_min":  10,
		"temperature_std":  5.436502143433364,

		"temperature_mean_10_13": 35.0 / 3,
		"temperature_mean_14_17": 15.5,
		"temperature_mean_18_21": 19.5,
		"temperature_mean_22_0":  23,
		"temperature_mean_1_4":   26.5,

		"precipitation_sum":       1.5,
		"precipitation_binary":    1,
		"precipitation_sum_10_13": 0,
		"precipitation_sum_14_17": 1,
		"precipitation_sum_18_21": 0,
		"precipitation_sum_22_0":  0,
		"precipitation_sum_1_4":   0.5,

		"wind_speed_mean":     9.444444444444445,
		"wind_speed_max":      10,
		"wind_speed_min":      5,
		"wind_speed_std":      1.6666666666666667,
		"wind_direction_mean": 4,
	}

	require.Len(t, row, len(expected))
	for k, v := range expected {
		assert.InDelta(t, v, row[k], 1e-9, k)
	}
}

func TestDayWithoutWeather(t *testing.T) {
	day := time.Date(2024, 5, 4, 0, 0, 0, 0, jst)
	row := features.Day(day, nil, 15, holidays{})

	assert.Equal(t, 1.0, row["is_weekend"])
	assert.Equal(t, 0.0, row["is_holiday"])
	for _, k := range []string{"temperature_mean", "temperature_std", "wind_speed_max", "wind_direction_mean", "precipitation_sum"} {
		assert.Equal(t, 0.0, row[k], k)
	}
}

func TestEngineer(t *testing.T) {
	rows := []features.Row{
		{"moon_age": 0, "day_of_year": 1, "weekday": 0, "temperature_mean": 10, "wind_speed_mean": 2, "wind_direction_mean": 4, "year": 2024},
		{"moon_age": 7.3825, "day_of_year": 2, "weekday": 1, "temperature_mean": 11, "wind_speed_mean": 3, "wind_direction_mean": 15, "year": 2024},
		{"moon_age": 14.765, "day_of_year": 3, "weekday": 2, "temperature_mean": 12, "wind_speed_mean": 4, "wind_direction_mean": 8, "year": 2024},
	}
	list := []string{
		"moon_age_sin", "temperature_mean", "temperature_mean_lag1", "temperature_mean_lag2",
		"wind_direction_encoded", "year", "weekday_cos", "missing",
	}

	err := features.Engineer(rows, list, encoder{0, 4, 8})
	require.NoError(t, err)

	assert.InDelta(t, 0, rows[0]["moon_age_sin"], 1e-9)
	assert.InDelta(t, 1, rows[1]["moon_age_sin"], 1e-9)
	assert.InDelta(t, -1, rows[2]["moon_age_cos"], 1e-9)
	assert.InDelta(t, 1, rows[0]["weekday_cos"], 1e-9)
	assert.Equal(t, 20.0, rows[0]["temp_x_wind"])
	assert.Equal(t, 48.0, rows[2]["temp_x_wind"])

	assert.Equal(t, 1.0, rows[0]["wind_direction_encoded"])
	assert.Equal(t, 0.0, rows[1]["wind_direction_mean"], "unknown direction replaced by the mode")
	assert.Equal(t, 0.0, rows[1]["wind_direction_encoded"])
	assert.Equal(t, 2.0, rows[2]["wind_direction_encoded"])

	assert.True(t, math.IsNaN(rows[0]["temperature_mean_lag1"]))
	assert.True(t, math.IsNaN(rows[1]["temperature_mean_lag2"]))
	assert.Equal(t, 11.0, rows[2]["temperature_mean_lag1"])
	assert.Equal(t, 10.0, rows[2]["temperature_mean_lag2"])
	assert.Equal(t, 1.0, rows[2]["wind_direction_encoded_lag2"])
	assert.Contains(t, rows[2], "moon_age_sin_lag1")

	assert.NotContains(t, rows[2], "year_lag1")
	assert.NotContains(t, rows[2], "weekday_cos_lag1")
	assert.NotContains(t, rows[2], "missing_lag1")
	assert.NotContains(t, rows[2], "temperature_mean_lag1_lag1")
}

func TestLaggedColumns(t *testing.T) {
	row := features.Row{"a": 1, "is_holiday": 0, "b_lag1": 2, "month": 5}
	assert.Equal(t, []string{"a"}, features.LaggedColumns([]string{"a", "b_lag1", "is_holiday", "month", "c"}, row))
}

func TestMatrix(t *testing.T) {
	rows := []features.Row{{"a": 1, "b": 2}, {"a": 3, "b": 4}}

	matrix, err := features.Matrix(rows, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {4, 3}}, matrix)

	_, err = features.Matrix(rows, []string{"a", "c"})
	assert.EqualError(t, err, `unknown feature "c"`)
}

func TestJapaneseHolidays(t *testing.T) {
	calendar := features.JapaneseHolidays()

	for day, expected := range map[string]bool{
		"2024-01-01": true,
		"2024-05-03": true,
		"2024-05-07": false,
		"2024-06-12": false,
	} {
		d, err := time.ParseInLocation("2006-01-02", day, jst)
		require.NoError(t, err)
		assert.Equal(t, expected, calendar.IsHoliday(d), fmt.Sprintf("day %s", day))
	}
}

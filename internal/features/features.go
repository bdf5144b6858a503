// Package features builds the model input of each forecasted day from the hourly weather,
// the moon age and the calendar.
package features

import (
	"math"
	"strings"
	"time"

	"github.com/mdouchement/bakuwaki/internal/compass"
	"github.com/pkg/errors"
)

const (
	// MoonCycle is the length of a synodic month in days.
	MoonCycle = 29.53
	// YearLength is the mean length of a year in days.
	YearLength = 365.25

	// WindDirectionMean is the column holding the index of the mean wind direction.
	WindDirectionMean = "wind_direction_mean"
	// WindDirectionEncoded is WindDirectionMean encoded by the label encoder.
	WindDirectionEncoded = "wind_direction_encoded"
)

// Columns that never get lagged.
var unlagged = map[string]bool{
	"year":          true,
	"month":         true,
	"week_of_month": true,
	"is_weekend":    true,
	"is_holiday":    true,
	"weekday_sin":   true,
	"weekday_cos":   true,
}

type (
	// A Row holds the named features of one day.
	Row map[string]float64

	// A LabelEncoder maps the raw wind direction index to the class used by the model.
	LabelEncoder interface {
		Known(v float64) bool
		Mode() float64
		Transform(v float64) (float64, error)
	}

	// A slot is a range of hours of a fishing night.
	slot struct {
		name string
		from time.Duration
		to   time.Duration
	}
)

// Hour slots relative to the day's midnight. The night overlaps the next day.
var slots = []slot{
	{name: "10_13", from: 10 * time.Hour, to: 13 * time.Hour},
	{name: "14_17", from: 14 * time.Hour, to: 17 * time.Hour},
	{name: "18_21", from: 18 * time.Hour, to: 21 * time.Hour},
	{name: "22_0", from: 22 * time.Hour, to: 24 * time.Hour},
	{name: "1_4", from: 25 * time.Hour, to: 28 * time.Hour},
}

// Day computes the features of the given day. All the NaN are replaced by 0.
func Day(day time.Time, hourly Hourly, moonAge float64, holidays HolidayCalendar) Row {
	day = midnight(day)
	_, week := day.ISOWeek()

	row := Row{
		"year":          float64(day.Year()),
		"month":         float64(day.Month()),
		"day":           float64(day.Day()),
		"weekday":       float64(weekday(day)),
		"week_of_year":  float64(week),
		"week_of_month": float64((day.Day()-1)/7 + 1),
		"day_of_year":   float64(day.YearDay()),
		"is_weekend":    boolean(day.Weekday() == time.Saturday || day.Weekday() == time.Sunday),
		"is_holiday":    boolean(holidays.IsHoliday(day)),
		"moon_age":      moonAge,
	}

	// From the morning to the end of the night.
	night := hourly.Between(at(day, 10*time.Hour), at(day, 28*time.Hour))
	temperatures := night.Temperatures()
	row["temperature_mean"] = mean(temperatures)
	row["temperature_max"] = maximum(temperatures)
	row["temperature_min"] = minimum(temperatures)
	row["temperature_std"] = std(temperatures)

	row["precipitation_sum"] = sum(night.Precipitations())
	row["precipitation_binary"] = boolean(row["precipitation_sum"] > 0)

	for _, s := range slots {
		hours := hourly.Between(at(day, s.from), at(day, s.to))
		row["temperature_mean_"+s.name] = mean(hours.Temperatures())
		row["precipitation_sum_"+s.name] = sum(hours.Precipitations())
	}

	// Fishing hours.
	fishing := hourly.Between(at(day, 20*time.Hour), at(day, 28*time.Hour))
	speeds := fishing.WindSpeeds()
	row["wind_speed_mean"] = mean(speeds)
	row["wind_speed_max"] = maximum(speeds)
	row["wind_speed_min"] = minimum(speeds)
	row["wind_speed_std"] = std(speeds)
	row[WindDirectionMean] = compass.Mean(fishing.WindDirections())

	for k, v := range row {
		if math.IsNaN(v) {
			row[k] = 0
		}
	}
	return row
}

// Engineer adds the cyclic, interaction, encoded and lagged features to the consecutive days rows.
// Rows are modified in place. Lags that reach before the first row are NaN.
func Engineer(rows []Row, features []string, encoder LabelEncoder) error {
	for _, row := range rows {
		row["moon_age_sin"], row["moon_age_cos"] = cyclic(row["moon_age"], MoonCycle)
		row["day_of_year_sin"], row["day_of_year_cos"] = cyclic(row["day_of_year"], YearLength)
		row["weekday_sin"], row["weekday_cos"] = cyclic(row["weekday"], 7)
		row["temp_x_wind"] = row["temperature_mean"] * row["wind_speed_mean"]

		direction := row[WindDirectionMean]
		if !encoder.Known(direction) {
			direction = encoder.Mode()
			row[WindDirectionMean] = direction
		}

		encoded, err := encoder.Transform(direction)
		if err != nil {
			return errors.Wrap(err, "could not encode wind direction")
		}
		row[WindDirectionEncoded] = encoded
	}

	if len(rows) == 0 {
		return nil
	}

	for _, column := range LaggedColumns(features, rows[0]) {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = row[column]
		}

		for i, row := range rows {
			row[column+"_lag1"] = shift(values, i, 1)
			row[column+"_lag2"] = shift(values, i, 2)
		}
	}
	return nil
}

// LaggedColumns returns the feature columns, present in row, that get lag features.
func LaggedColumns(features []string, row Row) []string {
	var columns []string
	for _, feature := range features {
		if strings.Contains(feature, "_lag") || unlagged[feature] {
			continue
		}
		if _, ok := row[feature]; !ok {
			continue
		}
		columns = append(columns, feature)
	}
	return columns
}

// Matrix returns the rows as feature vectors ordered by features.
func Matrix(rows []Row, features []string) ([][]float64, error) {
	matrix := make([][]float64, 0, len(rows))

	for _, row := range rows {
		vector := make([]float64, len(features))
		for j, feature := range features {
			v, ok := row[feature]
			if !ok {
				return nil, errors.Errorf("unknown feature %q", feature)
			}
			vector[j] = v
		}
		matrix = append(matrix, vector)
	}
	return matrix, nil
}

func shift(values []float64, i, n int) float64 {
	if i-n < 0 {
		return math.NaN()
	}
	return values[i-n]
}

func cyclic(v, period float64) (sin, cos float64) {
	rad := 2 * math.Pi * v / period
	return math.Sin(rad), math.Cos(rad)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// at returns the wall clock time offset by d from day's midnight.
func at(day time.Time, d time.Duration) time.Time {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	return time.Date(day.Year(), day.Month(), day.Day()+days, 0, 0, 0, 0, day.Location()).Add(d)
}

// weekday returns the day of the week starting on Monday (0).
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

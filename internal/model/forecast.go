package model

import "time"

// DateLayout is the layout used for all the calendar days stored in database.
const DateLayout = "2006-01-02"

// A Forecast is the weekly prediction issued on a given day.
type Forecast struct {
	Base `json:",inline" storm:"inline"`

	IssuedOn    string        `json:"issued_on"   storm:"unique"`
	ComputedAt  time.Time     `json:"computed_at"`
	Predictions []*Prediction `json:"predictions"`
}

// IsFresh returns true when the forecast was issued on day and computed less than maxAge ago.
func (f *Forecast) IsFresh(day string, maxAge time.Duration, now time.Time) bool {
	if f.IssuedOn != day || f.ComputedAt.IsZero() {
		return false
	}
	return now.Sub(f.ComputedAt) < maxAge
}

// A Prediction is the forecast of one day.
type Prediction struct {
	Date                        string  `json:"date"`
	PredictedAmount             float64 `json:"predicted_amount"`
	MoonAge                     float64 `json:"moon_age"`
	WeatherCode                 int     `json:"weather_code"`
	TemperatureMax              float64 `json:"temperature_max"`
	TemperatureMin              float64 `json:"temperature_min"`
	PrecipitationProbabilityMax int     `json:"precipitation_probability_max"`
	DominantWindDirection       int     `json:"dominant_wind_direction"`
}

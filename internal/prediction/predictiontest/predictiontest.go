// Package predictiontest provides upstream fakes and model artifacts for testing the prediction service.
package predictiontest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/mdouchement/bakuwaki/internal/ml"
	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Features is the feature list of the artifacts returned by Artifacts.
var Features = []string{"moon_age", "temperature_mean", "temperature_mean_lag1", "is_holiday"}

// Logger returns a silent logger.
func Logger() logger.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logger.WrapLogrus(log)
}

// A Weather is a fake WeatherFetcher serving WeatherResponse.
type Weather struct {
	Err   error
	calls int32
	// Skip removes a day from the daily series.
	Skip string
}

// Calls returns the number of Fetch calls.
func (w *Weather) Calls() int {
	return int(atomic.LoadInt32(&w.calls))
}

// Fetch implements prediction.WeatherFetcher.
func (w *Weather) Fetch(_ context.Context, start, end time.Time) (*fetcher.WeatherResponse, error) {
	atomic.AddInt32(&w.calls, 1)
	if w.Err != nil {
		return nil, w.Err
	}

	response := WeatherResponse(start, end)
	if w.Skip != "" {
		d := &response.Daily
		for i, date := range d.Time {
			if date != w.Skip {
				continue
			}
			d.Time = append(d.Time[:i:i], d.Time[i+1:]...)
			d.WeatherCode = append(d.WeatherCode[:i:i], d.WeatherCode[i+1:]...)
			d.Temperature2mMax = append(d.Temperature2mMax[:i:i], d.Temperature2mMax[i+1:]...)
			d.Temperature2mMin = append(d.Temperature2mMin[:i:i], d.Temperature2mMin[i+1:]...)
			d.PrecipitationProbabilityMax = append(d.PrecipitationProbabilityMax[:i:i], d.PrecipitationProbabilityMax[i+1:]...)
			d.WindDirection10mDominant = append(d.WindDirection10mDominant[:i:i], d.WindDirection10mDominant[i+1:]...)
			break
		}
	}
	return response, nil
}

// WeatherResponse returns a constant weather between start and end: 20C, no rain and a 36 km/h eastern wind.
// The daily weather code of the nth day is n.
func WeatherResponse(start, end time.Time) *fetcher.WeatherResponse {
	var response fetcher.WeatherResponse

	temperature, precipitation, speed, direction := 20.0, 0.0, 36.0, 90.0
	for t := start; !t.After(end.Add(23 * time.Hour)); t = t.Add(time.Hour) {
		h := &response.Hourly
		h.Time = append(h.Time, t.Format("2006-01-02T15:04"))
		h.Temperature2m = append(h.Temperature2m, &temperature)
		h.Precipitation = append(h.Precipitation, &precipitation)
		h.WindSpeed10m = append(h.WindSpeed10m, &speed)
		h.WindDirection10m = append(h.WindDirection10m, &direction)
	}

	for i, t := 0, start; !t.After(end); i, t = i+1, t.AddDate(0, 0, 1) {
		d := &response.Daily
		d.Time = append(d.Time, t.Format(model.DateLayout))
		d.WeatherCode = append(d.WeatherCode, i)
		d.Temperature2mMax = append(d.Temperature2mMax, 25)
		d.Temperature2mMin = append(d.Temperature2mMin, 15)
		d.PrecipitationProbabilityMax = append(d.PrecipitationProbabilityMax, 10*i)
		d.WindDirection10mDominant = append(d.WindDirection10mDominant, 90)
	}

	return &response
}

// A Tide is a fake MoonAgeFetcher returning the day of month as moon age.
type Tide struct {
	mu    sync.Mutex
	calls int
	// Fail lists the dates failing with an error.
	Fail map[string]bool
}

// Calls returns the number of MoonAge calls.
func (t *Tide) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// MoonAge implements prediction.MoonAgeFetcher.
func (t *Tide) MoonAge(_ context.Context, day time.Time) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	if t.Fail[day.Format(model.DateLayout)] {
		return 0, errors.New("tide736: unexpected HTTP status 503")
	}
	return float64(day.Day()), nil
}

// A Regressor returns the first feature and records its inputs.
type Regressor struct {
	mu     sync.Mutex
	Inputs [][]float64
}

// Predict implements ml.Regressor.
func (r *Regressor) Predict(x []float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Inputs = append(r.Inputs, append([]float64(nil), x...))
	return x[0]
}

// NFeatures implements ml.Regressor.
func (r *Regressor) NFeatures() int {
	return len(Features)
}

// Artifacts returns identity scalers around r.
func Artifacts(r ml.Regressor) *ml.Artifacts {
	identity := func(n int) *ml.Scaler {
		s := &ml.Scaler{Kind: ml.StandardScaler}
		for i := 0; i < n; i++ {
			s.Mean = append(s.Mean, 0)
			s.Scale = append(s.Scale, 1)
		}
		return s
	}

	return &ml.Artifacts{
		Model:    r,
		ScalerX:  identity(len(Features)),
		ScalerY:  identity(1),
		Encoder:  &ml.LabelEncoder{Classes: []float64{0, 4, 8, 12}},
		Features: Features,
	}
}

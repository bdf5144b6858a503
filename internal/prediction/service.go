// Package prediction computes the weekly catch forecast.
package prediction

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/features"
	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/mdouchement/bakuwaki/internal/metrics"
	"github.com/mdouchement/bakuwaki/internal/ml"
	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// Days is the number of forecasted days, today included.
	Days = 7
	// warmup is the number of past days fetched to compute the lag features.
	warmup = 2
	// moonAgeConcurrency bounds the parallel calls to the tide API.
	moonAgeConcurrency = 4
)

type (
	// A WeatherFetcher returns the weather between two days.
	WeatherFetcher interface {
		Fetch(ctx context.Context, start, end time.Time) (*fetcher.WeatherResponse, error)
	}

	// A MoonAgeFetcher returns the moon age of a day.
	MoonAgeFetcher interface {
		MoonAge(ctx context.Context, day time.Time) (float64, error)
	}

	// A Controller is an Iversion Of Control pattern used to init the prediction service.
	Controller struct {
		Logger    logger.Logger
		Database  database.Client
		Weather   WeatherFetcher
		Tide      MoonAgeFetcher
		Artifacts *ml.Artifacts
		Holidays  features.HolidayCalendar
		Location  *time.Location
		// DefaultMoonAge is used when the moon age cannot be fetched.
		DefaultMoonAge float64
		// MaxAge is the duration a stored forecast is served before being recomputed.
		MaxAge time.Duration
		Now    func() time.Time
	}

	// A Service computes and stores forecasts.
	Service struct {
		Controller
		log logger.Logger
		mu  sync.Mutex
	}
)

// New returns a new Service.
func New(ctrl Controller) *Service {
	if ctrl.Now == nil {
		ctrl.Now = time.Now
	}
	if ctrl.Location == nil {
		ctrl.Location = time.UTC
	}
	if ctrl.Holidays == nil {
		ctrl.Holidays = features.JapaneseHolidays()
	}

	return &Service{
		Controller: ctrl,
		log:        ctrl.Logger.WithPrefix("[prediction]"),
	}
}

// Today returns the current day in the service location.
func (s *Service) Today() time.Time {
	now := s.Now().In(s.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Location)
}

// Forecast returns the forecast issued today, computing it when none is stored, when it is
// older than MaxAge or when force is set.
func (s *Service) Forecast(ctx context.Context, force bool) (*model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedOn := s.Today().Format(model.DateLayout)

	forecast, err := s.Database.FindForecast(issuedOn)
	if err != nil {
		if !s.Database.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not load forecast")
		}
		forecast = &model.Forecast{IssuedOn: issuedOn}
	}

	if !force && forecast.IsFresh(issuedOn, s.MaxAge, s.Now()) {
		metrics.IncForecastCache(true)
		return forecast, nil
	}
	metrics.IncForecastCache(false)

	predictions, err := s.PredictWeekly(ctx)
	if err != nil {
		return nil, err
	}

	forecast.Predictions = predictions
	forecast.ComputedAt = s.Now()
	if err = s.Database.Save(forecast); err != nil {
		return nil, errors.Wrap(err, "could not store forecast")
	}
	return forecast, nil
}

// Purge deletes the forecasts issued more than retention days ago.
func (s *Service) Purge(retention int) (int, error) {
	limit := s.Today().AddDate(0, 0, -retention).Format(model.DateLayout)
	return s.Database.DeleteForecastsBefore(limit)
}

// PredictWeekly predicts the amounts of the Days days starting today.
func (s *Service) PredictWeekly(ctx context.Context) (predictions []*model.Prediction, err error) {
	start := time.Now()
	defer func() {
		metrics.ObservePrediction(err, time.Since(start))
	}()

	today := s.Today()
	first := today.AddDate(0, 0, -warmup)
	last := today.AddDate(0, 0, Days)

	weather, err := s.Weather.Fetch(ctx, first, last)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch weather data")
	}

	hourly, err := features.NewHourly(weather.Hourly, s.Location)
	if err != nil {
		return nil, errors.Wrap(err, "could not read hourly weather")
	}

	n := warmup + Days + 1
	ages, err := s.moonAges(ctx, first, n)
	if err != nil {
		return nil, err
	}

	rows := make([]features.Row, n)
	for i := range rows {
		rows[i] = features.Day(first.AddDate(0, 0, i), hourly, ages[i], s.Holidays)
	}

	if err = features.Engineer(rows, s.Artifacts.Features, s.Artifacts.Encoder); err != nil {
		return nil, errors.Wrap(err, "could not engineer features")
	}

	window := rows[warmup : warmup+Days]
	matrix, err := features.Matrix(window, s.Artifacts.Features)
	if err != nil {
		return nil, errors.Wrap(err, "could not build model input")
	}
	s.logInput(matrix)

	amounts, err := s.Artifacts.Predict(matrix)
	if err != nil {
		return nil, errors.Wrap(err, "could not predict")
	}

	daily := make(map[string]int, len(weather.Daily.Time))
	for i, date := range weather.Daily.Time {
		daily[date] = i
	}

	predictions = make([]*model.Prediction, 0, Days)
	for i, amount := range amounts {
		date := today.AddDate(0, 0, i).Format(model.DateLayout)

		j, ok := daily[date]
		if !ok {
			return nil, errors.Errorf("no daily weather for %s", date)
		}

		predictions = append(predictions, &model.Prediction{
			Date:                        date,
			PredictedAmount:             amount,
			MoonAge:                     window[i]["moon_age"],
			WeatherCode:                 weather.Daily.WeatherCode[j],
			TemperatureMax:              weather.Daily.Temperature2mMax[j],
			TemperatureMin:              weather.Daily.Temperature2mMin[j],
			PrecipitationProbabilityMax: weather.Daily.PrecipitationProbabilityMax[j],
			DominantWindDirection:       weather.Daily.WindDirection10mDominant[j],
		})
	}

	return predictions, nil
}

// moonAges returns the moon age of the n days from first.
// A day whose moon age is unavailable gets DefaultMoonAge.
func (s *Service) moonAges(ctx context.Context, first time.Time, n int) ([]float64, error) {
	ages := make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(moonAgeConcurrency)

	for i := range ages {
		i := i
		g.Go(func() error {
			ages[i] = s.moonAge(gctx, first.AddDate(0, 0, i))
			return nil
		})
	}
	g.Wait() // never fails

	return ages, errors.Wrap(ctx.Err(), "could not fetch moon ages")
}

func (s *Service) moonAge(ctx context.Context, day time.Time) float64 {
	date := day.Format(model.DateLayout)

	cached, err := s.Database.FindMoonAge(date)
	if err == nil {
		return cached.Age
	}
	if !s.Database.IsNotFound(err) {
		s.log.Errorf("moon age cache: %s", err)
	}

	age, err := s.Tide.MoonAge(ctx, day)
	if err != nil {
		s.log.Warnf("using default moon age for %s: %s", date, err)
		metrics.IncMoonAgeFallback()
		return s.DefaultMoonAge
	}

	if err = s.Database.Save(&model.MoonAge{Date: date, Age: age}); err != nil {
		s.log.Errorf("moon age cache: %s", err)
	}
	return age
}

func (s *Service) logInput(matrix [][]float64) {
	records := make([]map[string]float64, 0, len(matrix))
	for _, vector := range matrix {
		record := make(map[string]float64, len(vector))
		for j, feature := range s.Artifacts.Features {
			record[feature] = vector[j]
		}
		records = append(records, record)
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.log.Warnf("could not serialize model input: %s", err)
		return
	}
	s.log.Debugf("model input (unscaled):\n%s", payload)
}

package main

import (
	"context"
	"regexp"
	"time"

	"github.com/mdouchement/bakuwaki/internal/config"
	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/features"
	"github.com/mdouchement/bakuwaki/internal/fetcher"
	"github.com/mdouchement/bakuwaki/internal/ml"
	"github.com/mdouchement/bakuwaki/internal/prediction"
	"github.com/mdouchement/bakuwaki/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/ncw/swift/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type application struct {
	cfg      *config.Config
	log      logger.Logger
	db       database.Client
	service  *prediction.Service
	location *time.Location
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logger.LogrusTextFormatter{
		DisableColors:   false,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log.level")
	}
	log.SetLevel(level)

	return logger.WrapLogrus(log), nil
}

func newBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	if cfg.Storage.Backend != "swift" {
		return storage.NewFileSystem(cfg.Storage.Path), nil
	}

	return storage.NewSwift(ctx, &swift.Connection{
		AuthUrl:  cfg.Storage.Swift.AuthURL,
		UserName: cfg.Storage.Swift.Username,
		ApiKey:   cfg.Storage.Swift.APIKey,
		Tenant:   cfg.Storage.Swift.Tenant,
		Domain:   cfg.Storage.Swift.Domain,
		Region:   cfg.Storage.Swift.Region,
	})
}

// bootstrap loads the configuration and the model, opens the database and builds the prediction service.
func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.Load(cfgfile)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.Location.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "could not load timezone")
	}

	//

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	artifacts, err := ml.Load(ctx, backend, cfg.Storage.Container)
	if err != nil {
		return nil, errors.Wrap(err, "could not load model artifacts")
	}
	log.WithPrefix("[ml]").Infof("Model loaded from %s:%s with %d features", backend.Name(), cfg.Storage.Container, len(artifacts.Features))

	//

	db, err := database.StormOpen(cfg.Database.Path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}

	//

	opts := fetcher.Options{
		Logger:   log,
		Timeout:  cfg.Fetch.Timeout,
		Attempts: cfg.Fetch.Attempts,
		Delay:    cfg.Fetch.Delay,
	}

	service := prediction.New(prediction.Controller{
		Logger:   log,
		Database: db,
		Weather: fetcher.NewWeather(
			cfg.Fetch.WeatherURL,
			cfg.Location.Latitude,
			cfg.Location.Longitude,
			cfg.Location.Timezone,
			opts,
		),
		Tide: fetcher.NewTide(
			cfg.Fetch.TideURL,
			cfg.Location.PrefectureCode,
			cfg.Location.HarborCode,
			opts,
		),
		Artifacts:      artifacts,
		Holidays:       features.JapaneseHolidays(),
		Location:       location,
		DefaultMoonAge: cfg.Forecast.DefaultMoonAge,
		MaxAge:         cfg.Forecast.MaxAge,
	})

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		service:  service,
		location: location,
	}, nil
}

func (a *application) Close() error {
	return a.db.Close()
}

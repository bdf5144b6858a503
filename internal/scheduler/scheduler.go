package scheduler

import (
	"context"
	"time"

	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/mdouchement/logger"
	"github.com/robfig/cron/v3"
)

type (
	// A Forecaster computes and purges forecasts.
	Forecaster interface {
		Forecast(ctx context.Context, force bool) (*model.Forecast, error)
		Purge(retention int) (int, error)
	}

	// A Controller is an Iversion Of Control pattern used to init the scheduler package.
	Controller struct {
		Logger        logger.Logger
		Forecaster    Forecaster
		Specification string
		RetentionDays int
		// Timeout bounds a forecast refresh.
		Timeout time.Duration
	}
)

// Start lauches the scheduler asynchronously. The returned function stops it.
func Start(c Controller) (func(), error) {
	cron := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	log := c.Logger.WithPrefix("[scheduler]")

	_, err := cron.AddFunc(c.Specification, func() {
		Refresh(c)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Forecast task registred")

	cron.Start()
	log.Info("Scheduler is running")

	return func() {
		<-cron.Stop().Done()
		log.Info("Scheduler stopped")
	}, nil
}

// Refresh recomputes today's forecast when outdated and purges the old ones.
func Refresh(c Controller) {
	log := c.Logger.WithPrefix("[forecast]")

	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	forecast, err := c.Forecaster.Forecast(ctx, false)
	if err != nil {
		log.Error(err)
	} else {
		log.Infof("Forecast issued on %s computed at %s", forecast.IssuedOn, forecast.ComputedAt.Format(time.RFC3339))
	}

	n, err := c.Forecaster.Purge(c.RetentionDays)
	if err != nil {
		log.Error(err)
		return
	}
	if n > 0 {
		log.Infof("Removed %d outdated forecasts", n)
	}
}

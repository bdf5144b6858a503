package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bakuwaki/internal/config"
	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/ml"
	"github.com/mdouchement/bakuwaki/internal/scheduler"
	"github.com/mdouchement/bakuwaki/internal/storage"
	"github.com/mdouchement/bakuwaki/internal/webserver"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	refreshTimeout  = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgfile)
			if err != nil {
				return err
			}
			return database.StormInit(cfg.Database.Path)
		},
	}

	//

	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgfile)
			if err != nil {
				return err
			}
			return database.StormReIndex(cfg.Database.Path)
		},
	}

	//

	predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Print the weekly forecast",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			app, err := bootstrap(c.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			predictions, err := app.service.PredictWeekly(c.Context())
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(predictions)
		},
	}

	//

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "Manage the model artifacts",
	}

	modelsPushCmd = &cobra.Command{
		Use:   "push DIRECTORY",
		Short: "Upload the model artifacts of DIRECTORY to the configured storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgfile)
			if err != nil {
				return err
			}

			ctx := c.Context()
			src := storage.NewFileSystem(args[0])
			if _, err = ml.Load(ctx, src, ""); err != nil {
				return errors.Wrapf(err, "%s", args[0])
			}

			dst, err := newBackend(ctx, cfg)
			if err != nil {
				return err
			}

			for _, name := range ml.Files {
				err = storage.Copy(ctx, dst, cfg.Storage.Container, name, src, "", name)
				if err != nil {
					return errors.Wrap(err, name)
				}
				fmt.Printf("%s -> %s:%s/%s\n", name, dst.Name(), cfg.Storage.Container, name)
			}
			return nil
		},
	}

	modelsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the files of the configured storage",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgfile)
			if err != nil {
				return err
			}

			backend, err := newBackend(c.Context(), cfg)
			if err != nil {
				return err
			}

			names, err := backend.FilenamesFrom(c.Context(), cfg.Storage.Container)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	//

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if binding != "" {
				app.cfg.Server.Binding = binding
			}
			if port != "" {
				app.cfg.Server.Port = port
			}

			//

			stopScheduler, err := scheduler.Start(scheduler.Controller{
				Logger:        app.log,
				Forecaster:    app.service,
				Specification: app.cfg.Scheduler.Specification,
				RetentionDays: app.cfg.Scheduler.RetentionDays,
				Timeout:       refreshTimeout,
			})
			if err != nil {
				return errors.Wrap(err, "could not start scheduler")
			}
			defer stopScheduler()

			//

			engine := webserver.EchoEngine(webserver.Controller{
				Version:    c.Parent().Version,
				Logger:     app.log,
				Database:   app.db,
				Forecaster: app.service,
				Origins:    app.cfg.CORS.Origins,
			})
			webserver.PrintRoutes(engine)

			go func() {
				<-ctx.Done()
				shutdown(engine, shutdownTimeout, app.log)
			}()

			listen := app.cfg.Listen()
			app.log.Infof("Server listening on %s", listen)
			if err = engine.Start(listen); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "could not run server")
			}
			return nil
		},
	}
)

// shutdown gracefully stops the server, waiting at most timeout for the in-flight requests.
func shutdown(engine *echo.Echo, timeout time.Duration, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := engine.Shutdown(ctx); err != nil {
		log.WithPrefix("[server]").Errorf("could not shutdown server: %s", err)
		return
	}
	log.WithPrefix("[server]").Info("Server stopped")
}

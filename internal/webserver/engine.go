package webserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/metrics"
	"github.com/mdouchement/bakuwaki/internal/model"
	middlewarepkg "github.com/mdouchement/bakuwaki/internal/webserver/middleware"
	"github.com/mdouchement/logger"
)

type (
	// A Forecaster returns the weekly forecast of the day.
	Forecaster interface {
		Forecast(ctx context.Context, force bool) (*model.Forecast, error)
	}

	// A Controller is an Iversion Of Control pattern used to init the server package.
	Controller struct {
		Version    string
		Logger     logger.Logger
		Database   database.Client
		Forecaster Forecaster
		// Origins are the CORS allowed origins.
		Origins []string
	}
)

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.HideBanner = true
	engine.Use(middleware.Recover())
	engine.Use(middleware.Gzip())
	engine.Use(middlewarepkg.Logger(ctrl.Logger))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     ctrl.Origins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodDelete,
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
			http.MethodPatch,
			http.MethodPost,
			http.MethodPut,
		},
	}))

	engine.HTTPErrorHandler = middlewarepkg.NewHTTPErrorHandler(ctrl.Logger)

	//
	//
	//

	router := engine.Group("")

	// Generic handlers
	//
	router.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status": "ok",
		})
	})
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})
	router.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Prediction
	//
	prediction := prediction{
		logger:     ctrl.Logger,
		forecaster: ctrl.Forecaster,
	}
	router.GET("/predict/week", prediction.Week)

	// Forecast history
	//
	forecast := forecast{
		logger: ctrl.Logger,
		db:     ctrl.Database,
	}
	router.GET("/forecasts", forecast.List)
	router.GET("/forecasts/:date", forecast.Show)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

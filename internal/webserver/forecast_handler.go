package webserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bakuwaki/internal/database"
	"github.com/mdouchement/bakuwaki/internal/model"
	"github.com/mdouchement/bakuwaki/internal/webserver/serializer"
	"github.com/mdouchement/bakuwaki/internal/webserver/weberror"
	"github.com/mdouchement/logger"
)

type forecast struct {
	logger logger.Logger
	db     database.Client
}

func (h *forecast) List(c echo.Context) error {
	c.Set("handler_method", "forecast.List")

	forecasts, err := h.db.ListForecasts()
	if err != nil {
		return weberror.New(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, serializer.Forecasts(forecasts))
}

func (h *forecast) Show(c echo.Context) error {
	c.Set("handler_method", "forecast.Show")

	date := c.Param("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return weberror.New(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}

	forecast, err := h.db.FindForecast(date)
	if err != nil {
		if h.db.IsNotFound(err) {
			return weberror.New(http.StatusNotFound, "forecast not found")
		}

		return weberror.New(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, serializer.Forecast(forecast))
}

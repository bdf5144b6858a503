package webserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bakuwaki/internal/webserver/serializer"
	"github.com/mdouchement/bakuwaki/internal/webserver/weberror"
	"github.com/mdouchement/logger"
)

type prediction struct {
	logger     logger.Logger
	forecaster Forecaster
}

func (h *prediction) Week(c echo.Context) error {
	c.Set("handler_method", "prediction.Week")

	if h.forecaster == nil {
		return weberror.New(http.StatusInternalServerError, "prediction service is not initialized")
	}

	var force bool
	if v := c.QueryParam("refresh"); v != "" {
		var err error
		force, err = strconv.ParseBool(v)
		if err != nil {
			return weberror.New(http.StatusBadRequest, "invalid refresh parameter")
		}
	}

	forecast, err := h.forecaster.Forecast(c.Request().Context(), force)
	if err != nil {
		return weberror.Wrap(http.StatusInternalServerError, err, "an error occurred while predicting")
	}

	return c.JSON(http.StatusOK, serializer.Predictions(forecast.Predictions))
}

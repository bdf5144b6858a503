package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bakuwaki/internal/webserver/weberror"
	"github.com/mdouchement/logger"
)

// NewHTTPErrorHandler is a middleware that formats rendered errors.
func NewHTTPErrorHandler(log logger.Logger) func(err error, c echo.Context) {
	log = log.WithPrefix("[webserver]")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var err2 error

		switch err := err.(type) {
		case *echo.HTTPError:
			err2 = weberror.New(err.Code, fmt.Sprint(err.Message))
			err2 = render(c, weberror.StatusCode(err2), err2)
		case *weberror.Error:
			err2 = render(c, weberror.StatusCode(err), err)
		default:
			err = weberror.New(http.StatusInternalServerError, err.Error())
			err2 = render(c, weberror.StatusCode(err), err)
		}

		log.Error(err)
		if err2 != nil {
			log.Errorf("HTTPErrorHandler: %s", err2)
		}
	}
}

func render(c echo.Context, code int, err error) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	return c.JSON(code, err)
}

package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/logger"
)

// Logger logs every request once it has been handled.
func Logger(log logger.Logger) echo.MiddlewareFunc {
	log = log.WithPrefix("[webserver]")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			method, _ := c.Get("handler_method").(string)
			if method == "" {
				method = "-"
			}

			log.Infof("%s %s %d %s (%s) %s",
				c.Request().Method,
				c.Request().URL.RequestURI(),
				c.Response().Status,
				time.Since(start).Round(time.Microsecond),
				method,
				c.RealIP(),
			)
			return nil
		}
	}
}

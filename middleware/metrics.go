package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "northmart_http_requests_total",
	Help: "HTTP requests by method, route and status code.",
}, []string{"method", "path", "status"})

// Metrics counts every request by route template and response status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			httpRequestsTotal.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			).Inc()

			return err
		}
	}
}

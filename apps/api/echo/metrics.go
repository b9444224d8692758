package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/policy"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_mutations_total",
		Help: "Gradebook mutations by operation and outcome (ok, denied, invalid, error).",
	}, []string{"operation", "outcome"})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		// let the error handler write the response so that the status is final
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}
		code := strconv.Itoa(ctx.Response().Status)
		httpRequestsTotal.WithLabelValues(ctx.Request().Method, ctx.Path(), code).Inc()
		return nil
	}
}

// observeMutation counts the outcome of a gradebook mutation and passes err through.
func observeMutation(op string, err error) error {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Cause(err) == policy.ErrNotAllowed:
		outcome = "denied"
	case core.IsValidation(err):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(op, outcome).Inc()
	return err
}

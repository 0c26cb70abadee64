package middleware

import (
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the request duration histogram.
type MetricsConfig struct {
	Skipper             func(c echo.Context) bool
	Namespace           string
	Buckets             []float64
	Subsystem           string
	NormalizeHTTPStatus bool
	MetricsPath         string
}

const (
	httpRequestsDuration = "request_duration_seconds"
	notFoundPath         = "/not-found"
)

// DefaultMetricsConfig skips websocket sessions, which would otherwise be
// recorded as one very slow request each.
var DefaultMetricsConfig = MetricsConfig{
	Skipper:   SkipWebSocket,
	Namespace: "catalog_browser",
	Subsystem: "",
	Buckets: []float64{
		0.0005,
		0.001, // 1ms
		0.002,
		0.005,
		0.01, // 10ms
		0.02,
		0.05,
		0.1, // 100 ms
		0.2,
		0.5,
		1.0, // 1s
		2.0,
		5.0,
		10.0, // 10s
		15.0,
		20.0,
		30.0,
	},
	NormalizeHTTPStatus: false,
	MetricsPath:         "/metrics",
}

// normalizeHTTPStatus folds a status into its class, e.g. 502 into "5xx".
func normalizeHTTPStatus(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics returns an echo middleware with default config for instrumentation.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

// MetricsWithConfig returns an echo middleware for instrumentation.
func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultMetricsConfig.Skipper
	}
	httpMetrics, err := registerHttpMetrics(config)
	if err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		httpMetrics = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := c.Path()

			if promHandler != nil && req.RequestURI == config.MetricsPath {
				return promHandler(c)
			}

			if config.Skipper(c) {
				return next(c)
			}

			// unmatched paths share one label
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			if config.NormalizeHTTPStatus {
				status = normalizeHTTPStatus(c.Response().Status)
			}

			httpMetrics.WithLabelValues(status, req.Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func registerHttpMetrics(config MetricsConfig) (*prometheus.HistogramVec, error) {
	httpMetrics := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      httpRequestsDuration,
		Help:      "Time spent serving a route",
		Buckets:   config.Buckets,
	}, []string{"code", "method", "path"})
	return httpMetrics, prometheus.Register(httpMetrics)
}

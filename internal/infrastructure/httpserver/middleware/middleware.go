package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// MiddlewareCollection bundles the custom middleware used by the server.
type MiddlewareCollection struct {
	Logging *LoggingMiddleware
	Metrics *MetricsMiddleware
	JWT     *JWTMiddleware
}

func NewMiddlewareCollection(logger *logrus.Logger, jwtSecret string, requestsTotal *prometheus.CounterVec, requestDuration *prometheus.HistogramVec) *MiddlewareCollection {
	return &MiddlewareCollection{
		Logging: NewLoggingMiddleware(logger),
		Metrics: NewMetricsMiddleware(requestsTotal, requestDuration),
		JWT:     NewJWTMiddleware(jwtSecret),
	}
}

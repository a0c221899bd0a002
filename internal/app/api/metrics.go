// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/insolar/lockup/observability"
)

// MetricsMiddleware counts requests and their latency by route and status.
func MetricsMiddleware(obs *observability.Observability) echo.MiddlewareFunc {
	requests := register(obs, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockup_http_requests_total",
		Help: "How many HTTP requests processed, partitioned by status code, method and route.",
	}, []string{"code", "method", "route"})).(*prometheus.CounterVec)
	latency := register(obs, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lockup_http_request_duration_seconds",
		Help:    "The HTTP request latencies in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method", "route"})).(*prometheus.HistogramVec)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			code := strconv.Itoa(ctx.Response().Status)
			method := ctx.Request().Method
			requests.WithLabelValues(code, method, ctx.Path()).Inc()
			latency.WithLabelValues(code, method, ctx.Path()).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func register(obs *observability.Observability, c prometheus.Collector) prometheus.Collector {
	if err := obs.Metrics().Register(c); err != nil {
		if existing, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return existing.ExistingCollector
		}
		obs.Log().WithError(err).Error("failed to register metric")
	}
	return c
}

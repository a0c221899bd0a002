// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package observability

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/configuration"
)

func Make(cfg *configuration.Configuration) *Observability {
	return &Observability{
		log:      MakeLogger(cfg.Log),
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

func MakeLogger(cfg configuration.Log) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warnf("unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	o.mu.Lock()
	defer o.mu.Unlock()
	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

// MakeLockupMetrics registers one lockup_<field>_total counter per field.
func MakeLockupMetrics(obs *Observability) *LockupMetrics {
	counters := &LockupMetrics{}
	v := reflect.ValueOf(counters).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := strings.ToLower(t.Field(i).Name)
		name := fmt.Sprintf("lockup_%s_total", field)
		help := fmt.Sprintf("Number of %s handled by the lockup host.", field)
		opts := prometheus.CounterOpts{
			Name: name,
			Help: help,
		}
		collector := obs.Counter(opts)
		v.Field(i).Set(reflect.ValueOf(collector))
	}
	return counters
}

type LockupMetrics struct {
	Invocations     prometheus.Counter
	Rejections      prometheus.Counter
	Dispatches      prometheus.Counter
	Callbacks       prometheus.Counter
	FailedCallbacks prometheus.Counter
	FailedCalls     prometheus.Counter
	Events          prometheus.Counter
}

type CommonLockupMetrics struct {
	PendingReceipts       prometheus.Gauge
	ReceiptProcessingTime prometheus.Gauge
}

func MakeCommonMetrics(obs *Observability) *CommonLockupMetrics {
	m := CommonLockupMetrics{
		PendingReceipts: obs.Gauge(prometheus.GaugeOpts{
			Name: "lockup_pending_receipts",
			Help: "Number of dispatched calls waiting to be executed",
		}),
		ReceiptProcessingTime: obs.Gauge(prometheus.GaugeOpts{
			Name: "lockup_receipt_processing_time",
			Help: "Seconds spent on the last receipt processing round",
		}),
	}

	return &m
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/observability"
)

const (
	readinessTimeout = 3 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// receiptQueue is the part of the host the router reports on.
type receiptQueue interface {
	PendingReceipts() int
}

// Router serves liveness, readiness and metrics of the lockup runtime.
type Router struct {
	hs       *http.Server
	obs      *observability.Observability
	receipts receiptQueue
	ledger   runtime.Ledger
}

// Readiness is the body of the readiness check.
type Readiness struct {
	Ready           bool   `json:"ready"`
	PendingReceipts int    `json:"pending_receipts"`
	Escrowed        string `json:"escrowed,omitempty"`
	Error           string `json:"error,omitempty"`
}

func NewRouter(cfg *configuration.Configuration, obs *observability.Observability, receipts receiptQueue, ledger runtime.Ledger) *Router {
	r := &Router{obs: obs, receipts: receipts, ledger: ledger}
	router := httprouter.New()
	router.GET("/healthcheck", r.liveness)
	router.GET("/readiness", r.readiness)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Metrics(), promhttp.HandlerOpts{ErrorLog: obs.Log()}))
	r.hs = &http.Server{Addr: cfg.Monitoring.Listen, Handler: router}
	return r
}

func (r *Router) Start() {
	log := r.obs.Log()
	go func() {
		log.Infof("monitoring is listening on %s", r.hs.Addr)
		if err := r.hs.ListenAndServe(); err != http.ErrServerClosed {
			log.Error(errors.Wrap(err, "monitoring server stopped"))
		}
	}()
}

func (r *Router) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.hs.Shutdown(ctx); err != nil {
		r.obs.Log().Error(errors.Wrap(err, "monitoring server shutdown"))
	}
}

func (r *Router) liveness(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readiness fails while the ledger can't be read. The escrowed amount is what in-flight
// calls currently carry.
func (r *Router) readiness(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
	defer cancel()

	res := Readiness{PendingReceipts: r.receipts.PendingReceipts()}
	status := http.StatusOK
	escrowed, err := r.ledger.Balance(ctx, runtime.EscrowAccountID)
	if err != nil {
		status = http.StatusServiceUnavailable
		res.Error = err.Error()
		r.obs.Log().WithError(err).Warn("lockup runtime is not ready")
	} else {
		res.Ready = true
		res.Escrowed = escrowed.String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

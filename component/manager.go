// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/connectivity"
	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/observability"
)

type Manager struct {
	stopSignal chan bool
	done       chan struct{}

	log     *logrus.Logger
	host    *runtime.Host
	process func() *round
	sleep   *SleepManager
	stop    func()

	router *Router
	api    *APIServer
}

type round struct {
	processed int
	pending   int
	err       error
}

func Prepare(ctx context.Context, cfg *configuration.Configuration) (*Manager, error) {
	obs := observability.Make(cfg)
	conn := connectivity.Make(cfg, obs)

	b, err := makeBackend(cfg, obs, conn)
	if err != nil {
		return nil, err
	}
	if err := applyGenesis(ctx, cfg, obs, b.ledger); err != nil {
		return nil, errors.Wrap(err, "failed to apply genesis")
	}
	reserve, err := lockup.ParseBalance(cfg.Runtime.StorageReserve)
	if err != nil {
		return nil, errors.Wrap(err, "invalid storage reserve")
	}

	clock := runtime.SystemClock{}
	host := runtime.NewHost(obs, b.accounts, b.ledger, clock, reserve, b.sink)
	registerCollaborators(cfg, obs, host, b.ledger, clock)

	router := NewRouter(cfg, obs, host, b.ledger)
	apiServer := NewAPIServer(cfg, obs, host, b.journal)
	return &Manager{
		stopSignal: make(chan bool, 1),
		done:       make(chan struct{}),
		log:        obs.Log(),
		host:       host,
		process:    makeProcessor(obs, host),
		sleep:      NewSleepManager(cfg),
		stop:       makeStopper(obs, conn, apiServer, router),
		router:     router,
		api:        apiServer,
	}, nil
}

func makeProcessor(obs *observability.Observability, host *runtime.Host) func() *round {
	log := obs.Log()
	return func() *round {
		processed, err := host.ProcessReceipts(context.Background())
		r := &round{processed: processed, pending: host.PendingReceipts(), err: err}
		if err != nil {
			log.WithError(err).Error("failed to process receipts")
		} else if processed > 0 {
			log.Debugf("processed %d receipts, %d pending", processed, r.pending)
		}
		return r
	}
}

func (m *Manager) Start() {
	m.router.Start()
	m.api.Start()
	m.log.Info("lockup runtime started")
	go func() {
		defer close(m.done)
		defer m.stop()

		for {
			m.run()
			if m.needStop() {
				return
			}
		}
	}()
}

// Stop waits for the running round to finish and the servers to shut down.
func (m *Manager) Stop() {
	m.stopSignal <- true
	<-m.done
}

func (m *Manager) needStop() bool {
	select {
	case <-m.stopSignal:
		return true
	default:
		// continue
	}
	return false
}

func (m *Manager) run() {
	start := time.Now()
	r := m.process()
	sleepTime := m.sleep.Count(r, time.Since(start))

	select {
	case stop := <-m.stopSignal:
		// let needStop see it
		m.stopSignal <- stop
	case <-time.After(sleepTime):
	}
}

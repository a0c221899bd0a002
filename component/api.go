// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/internal/app/api"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/observability"
)

const apiShutdownTimeout = 10 * time.Second

// APIServer serves the lockup methods over http.
type APIServer struct {
	e      *echo.Echo
	listen string
	obs    *observability.Observability
}

func NewAPIServer(cfg *configuration.Configuration, obs *observability.Observability, host *runtime.Host, journal api.Journal) *APIServer {
	e := api.NewEcho(obs)
	api.RegisterHandlers(e, api.NewLockupServer(host, journal, obs.Log()))
	return &APIServer{e: e, listen: cfg.API.Listen, obs: obs}
}

func (s *APIServer) Start() {
	log := s.obs.Log()
	go func() {
		log.Infof("api listens on %s", s.listen)
		err := s.e.Start(s.listen)
		if err != http.ErrServerClosed {
			log.Error(errors.Wrapf(err, "api server Start"))
		}
	}()
}

func (s *APIServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		s.obs.Log().Error(errors.Wrapf(err, "api server shutdown"))
	}
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/component"
	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/observability"
)

var stop = make(chan os.Signal, 1)
var Version string

func main() {
	cfg := configuration.Load()
	logger := observability.MakeLogger(cfg.Log)
	if len(Version) == 0 {
		Version = "dev"
	}
	logger.Infof("Lockup version=%s", Version)

	manager, err := component.Prepare(context.Background(), cfg)
	if err != nil {
		logger.Fatal(err)
	}
	manager.Start()
	graceful(logger, manager.Stop)
}

func graceful(logger *logrus.Logger, that func()) {
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Infof("gracefully stopping...")
	that()
}

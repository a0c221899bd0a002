// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package connectivity

import (
	"time"

	"github.com/go-pg/pg"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/internal/dbconn"
	"github.com/insolar/lockup/internal/pkg/cycle"
	"github.com/insolar/lockup/observability"
)

// Make opens the connections the configuration asks for. Postgres is connected only for the
// postgres storage and NATS only when its URL is set.
func Make(cfg *configuration.Configuration, obs *observability.Observability) *Connectivity {
	log := obs.Log()
	c := &Connectivity{}
	if cfg.Runtime.Storage == "postgres" {
		db, err := dbconn.Connect(cfg.DB)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = cycle.UntilConnectionError(func() error {
			_, err := db.Exec("select 1")
			return err
		}, cfg.DB.AttemptInterval, cfg.DB.Attempts, log)
		if err != nil {
			log.Fatal(errors.Wrap(err, "failed to connect to postgres"))
		}
		c.pg = db
	}
	if cfg.NATS.URL != "" {
		log.Infof("trying connect to %s...", configuration.MaskPassword(cfg.NATS.URL))
		conn, err := nats.Connect(cfg.NATS.URL,
			nats.Timeout(cfg.NATS.Timeout),
			nats.ReconnectWait(5*time.Second),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				if err != nil {
					log.WithError(err).Warn("nats disconnected")
				}
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Infof("nats reconnected to %s", nc.ConnectedUrl())
			}),
		)
		if err != nil {
			log.Fatal(errors.Wrap(err, "failed to connect to nats"))
		}
		c.nats = conn
	}
	return c
}

type Connectivity struct {
	pg   *pg.DB
	nats *nats.Conn
}

// PG is nil unless the postgres storage is configured.
func (c *Connectivity) PG() *pg.DB {
	return c.pg
}

// NATS is nil unless a NATS URL is configured.
func (c *Connectivity) NATS() *nats.Conn {
	return c.nats
}

func (c *Connectivity) Close() error {
	if c.nats != nil {
		c.nats.Close()
	}
	if c.pg != nil {
		return errors.Wrap(c.pg.Close(), "failed to close postgres connection")
	}
	return nil
}

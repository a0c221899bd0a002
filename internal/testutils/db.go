// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package testutils

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-pg/migrations"
	"github.com/go-pg/pg"
	"github.com/ory/dockertest/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/insolar/lockup/internal/app/lockup/postgres"
	"github.com/insolar/lockup/observability"
)

const (
	pgImage    = "postgres"
	pgTag      = "11"
	pgDatabase = "lockup_test_db"
	pgPassword = "secret"
)

// Postgres is a throwaway postgres container with the lockup schema and the storages bound
// to it.
type Postgres struct {
	DB       *pg.DB
	Accounts *postgres.AccountStorage
	Ledger   *postgres.Ledger
	Events   *postgres.EventStorage

	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// MigrationsDir is the absolute path of scripts/migrations.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "scripts", "migrations")
}

func StartPostgres(obs *observability.Observability) (*Postgres, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to docker")
	}
	resource, err := pool.Run(pgImage, pgTag, []string{
		"POSTGRES_DB=" + pgDatabase,
		"POSTGRES_PASSWORD=" + pgPassword,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not start postgres")
	}
	p := &Postgres{pool: pool, resource: resource}

	options := &pg.Options{
		Addr:            "localhost:" + resource.GetPort("5432/tcp"),
		Database:        pgDatabase,
		User:            "postgres",
		Password:        pgPassword,
		ApplicationName: "lockup",
	}
	err = pool.Retry(func() error {
		db := pg.Connect(options)
		if _, err := db.Exec("select 1"); err != nil {
			_ = db.Close()
			return err
		}
		p.DB = db
		return nil
	})
	if err != nil {
		p.Close()
		return nil, errors.Wrap(err, "postgres is not ready")
	}
	if err := migrateUp(p.DB, MigrationsDir()); err != nil {
		p.Close()
		return nil, err
	}

	p.Accounts = postgres.NewAccountStorage(obs, p.DB)
	p.Ledger = postgres.NewLedger(obs, p.DB)
	p.Events = postgres.NewEventStorage(obs, p.DB)
	return p, nil
}

func migrateUp(db *pg.DB, dir string) error {
	collection := migrations.NewCollection()
	if _, _, err := collection.Run(db, "init"); err != nil {
		return errors.Wrap(err, "could not init migrations")
	}
	if err := collection.DiscoverSQLMigrations(dir); err != nil {
		return errors.Wrap(err, "failed to read migrations")
	}
	if _, _, err := collection.Run(db, "up"); err != nil {
		return errors.Wrap(err, "could not migrate")
	}
	return nil
}

// Reset empties the account, ledger and event tables.
func (p *Postgres) Reset(t *testing.T) {
	for _, m := range []interface{}{&postgres.AccountSchema{}, &postgres.BalanceSchema{}, &postgres.EventSchema{}} {
		_, err := p.DB.Model(m).Exec("TRUNCATE TABLE ?TableName")
		require.NoError(t, err)
	}
}

func (p *Postgres) Close() {
	log := logrus.StandardLogger()
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			log.Error(errors.Wrap(err, "failed to close db"))
		}
	}
	if err := p.pool.Purge(p.resource); err != nil {
		log.Error(errors.Wrap(err, "failed to purge postgres container"))
	}
}

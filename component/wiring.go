// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/connectivity"
	"github.com/insolar/lockup/internal/app/api"
	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/postgres"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/internal/app/lockup/stakingpool"
	"github.com/insolar/lockup/internal/app/lockup/store"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
)

type backend struct {
	accounts store.AccountStore
	ledger   runtime.Ledger
	sink     events.Sink
	journal  api.Journal
}

func makeBackend(cfg *configuration.Configuration, obs *observability.Observability, conn *connectivity.Connectivity) (*backend, error) {
	b := &backend{}
	var sinks events.Multi

	switch cfg.Runtime.Storage {
	case storageMemory:
		b.accounts = store.NewMemoryAccountStore()
		b.ledger = runtime.NewMemoryLedger()
	case storagePostgres:
		b.accounts = postgres.NewAccountStorage(obs, conn.PG())
		b.ledger = postgres.NewLedger(obs, conn.PG())
		journal := postgres.NewEventStorage(obs, conn.PG())
		b.journal = journal
		sinks = append(sinks, journal)
	default:
		return nil, errors.Errorf("unknown storage %q", cfg.Runtime.Storage)
	}

	if cfg.Runtime.CacheSize > 0 {
		cached, err := store.NewCacheAccountStore(b.accounts, cfg.Runtime.CacheSize)
		if err != nil {
			return nil, err
		}
		b.accounts = cached
	}
	if nc := conn.NATS(); nc != nil {
		sinks = append(sinks, events.NewNATSSink(nc, cfg.NATS.Subject))
	}
	b.sink = sinks
	return b, nil
}

// applyGenesis funds the configured accounts that have no balance yet, so restarts over
// a persistent ledger don't mint the genesis again.
func applyGenesis(ctx context.Context, cfg *configuration.Configuration, obs *observability.Observability, ledger runtime.Ledger) error {
	log := obs.Log()
	for _, g := range cfg.Runtime.Genesis {
		id := lockup.AccountID(g.AccountID)
		amount, err := lockup.ParseBalance(g.Balance)
		if err != nil {
			return errors.Wrapf(err, "invalid genesis balance of %s", id)
		}
		current, err := ledger.Balance(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsZero() {
			log.Debugf("genesis of %s is already applied", id)
			continue
		}
		if err := ledger.Fund(ctx, id, amount); err != nil {
			return err
		}
		log.Infof("genesis: %s funded with %s", id, amount)
	}
	return nil
}

// registerCollaborators sets up the simulated staking pools, the whitelist and the
// transfer polls.
func registerCollaborators(cfg *configuration.Configuration, obs *observability.Observability, host *runtime.Host, ledger runtime.Ledger, clock runtime.Clock) {
	whitelist := runtime.NewMemoryWhitelist()
	for _, id := range cfg.Runtime.WhitelistedPools {
		whitelist.Add(lockup.AccountID(id))
	}
	host.RegisterWhitelist(lockup.AccountID(cfg.Runtime.WhitelistAccountID), whitelist)

	for _, p := range cfg.Runtime.StakingPools {
		id := lockup.AccountID(p.AccountID)
		delay := lockup.Duration(p.UnstakeDelay.Nanoseconds())
		host.RegisterStakingPool(id, stakingpool.New(id, delay, ledger, clock, obs.Log()))
	}

	for _, p := range cfg.Runtime.TransferPolls {
		poll := runtime.NewMemoryTransferPoll()
		if p.EnabledAt != 0 {
			poll.Enable(lockup.PollResult{Timestamp: lockup.Timestamp(p.EnabledAt)})
		}
		host.RegisterTransferPoll(lockup.AccountID(p.AccountID), poll)
	}
}

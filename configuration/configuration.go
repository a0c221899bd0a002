// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package configuration

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/pkg/cycle"
)

type Configuration struct {
	Log        Log
	DB         DB
	API        API
	Monitoring Monitoring
	NATS       NATS
	Runtime    Runtime
}

type Log struct {
	Level string
	// Format is text or json.
	Format string
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between store in db failed attempts
	AttemptInterval time.Duration
}

type API struct {
	Listen string
}

// Monitoring serves health checks and metrics.
type Monitoring struct {
	Listen string
}

type NATS struct {
	// Events are published only if URL is set.
	URL     string
	Subject string
	Timeout time.Duration
}

type Runtime struct {
	// Storage is memory or postgres.
	Storage string
	// Interval between receipt processing rounds
	ProcessInterval time.Duration
	// Interval before the next round when callbacks dispatched new calls
	FastForwardInterval time.Duration
	// StorageReserve is the balance every lockup account keeps to pay for its storage.
	StorageReserve string
	CacheSize      int

	WhitelistAccountID string
	WhitelistedPools   []string
	StakingPools       []StakingPool
	TransferPolls      []TransferPoll
	// Genesis balances of the ledger, applied once at start.
	Genesis []GenesisBalance
}

// GenesisBalance funds an account id with a decimal amount in yoctoNEAR.
type GenesisBalance struct {
	AccountID string
	Balance   string
}

type StakingPool struct {
	AccountID string
	// UnstakeDelay before unstaked tokens can be withdrawn
	UnstakeDelay time.Duration
}

type TransferPoll struct {
	AccountID string
	// EnabledAt is the unix time in nanoseconds transfers were voted in, 0 if not yet.
	EnabledAt uint64
}

func Default() *Configuration {
	return &Configuration{
		Log: Log{
			Level:  logrus.DebugLevel.String(),
			Format: "text",
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        100,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		API: API{
			Listen: ":8080",
		},
		Monitoring: Monitoring{
			Listen: ":8081",
		},
		NATS: NATS{
			Subject: "lockup.events",
			Timeout: 10 * time.Second,
		},
		Runtime: Runtime{
			Storage:             "memory",
			ProcessInterval:     time.Second,
			FastForwardInterval: 10 * time.Millisecond,
			StorageReserve:      "3500000000000000000000000",
			CacheSize:           10000,
			WhitelistAccountID:  "lockup-whitelist.near",
		},
	}
}

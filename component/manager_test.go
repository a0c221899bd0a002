// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/connectivity"
	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/observability"
)

func testConfig() *configuration.Configuration {
	cfg := configuration.Default()
	cfg.Log.Level = "error"
	cfg.API.Listen = "127.0.0.1:0"
	cfg.Monitoring.Listen = "127.0.0.1:0"
	cfg.Runtime.ProcessInterval = 10 * time.Millisecond
	cfg.Runtime.FastForwardInterval = time.Millisecond
	cfg.Runtime.StorageReserve = "35"
	cfg.Runtime.WhitelistAccountID = "whitelist.near"
	cfg.Runtime.WhitelistedPools = []string{"pool.near"}
	cfg.Runtime.StakingPools = []configuration.StakingPool{{AccountID: "pool.near", UnstakeDelay: time.Hour}}
	cfg.Runtime.TransferPolls = []configuration.TransferPoll{{AccountID: "poll.near", EnabledAt: 5}}
	cfg.Runtime.Genesis = []configuration.GenesisBalance{{AccountID: "deployer.near", Balance: "5000"}}
	return cfg
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	m, err := Prepare(ctx, testConfig())
	require.NoError(t, err)

	_, err = m.host.Deploy(ctx, "lockup.near", "deployer.near", lockup.NewBalance(1035), lockup.InitArgs{
		OwnerAccountID:                "owner.near",
		LockupAmount:                  lockup.NewBalance(1000),
		TransfersInformation:          lockup.TransfersDisabledUntilVote("poll.near"),
		VestingInformation:            lockup.NoVesting(),
		StakingPoolWhitelistAccountID: "whitelist.near",
	})
	require.NoError(t, err)

	_, err = m.host.Invoke(ctx, "lockup.near", "owner.near", "select_staking_pool",
		func(a *lockup.Account, lctx *lockup.Context) (*lockup.Promise, error) {
			return a.SelectStakingPool(lctx, "pool.near")
		})
	require.NoError(t, err)
	_, err = m.host.Invoke(ctx, "lockup.near", "owner.near", "check_transfers_vote",
		func(a *lockup.Account, lctx *lockup.Context) (*lockup.Promise, error) {
			return a.CheckTransfersVote(lctx)
		})
	require.NoError(t, err)

	m.Start()
	require.Eventually(t, func() bool {
		return m.host.PendingReceipts() == 0
	}, 5*time.Second, 10*time.Millisecond)
	m.Stop()

	v, err := m.host.View(ctx, "lockup.near")
	require.NoError(t, err)
	require.NotNil(t, v.StakingPoolAccountID)
	assert.Equal(t, lockup.AccountID("pool.near"), *v.StakingPoolAccountID)
	assert.True(t, v.TransfersEnabled)
}

func TestPrepare_InvalidConfig(t *testing.T) {
	t.Run("unknown storage", func(t *testing.T) {
		cfg := testConfig()
		cfg.Runtime.Storage = "tape"
		_, err := Prepare(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("invalid genesis", func(t *testing.T) {
		cfg := testConfig()
		cfg.Runtime.Genesis = []configuration.GenesisBalance{{AccountID: "deployer.near", Balance: "plenty"}}
		_, err := Prepare(context.Background(), cfg)
		require.Error(t, err)
	})

	t.Run("invalid reserve", func(t *testing.T) {
		cfg := testConfig()
		cfg.Runtime.StorageReserve = "lots"
		_, err := Prepare(context.Background(), cfg)
		require.Error(t, err)
	})
}

func TestApplyGenesis(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	obs := observability.Make(cfg)
	ledger := runtime.NewMemoryLedger()

	require.NoError(t, applyGenesis(ctx, cfg, obs, ledger))
	require.NoError(t, applyGenesis(ctx, cfg, obs, ledger))

	b, err := ledger.Balance(ctx, "deployer.near")
	require.NoError(t, err)
	assert.Equal(t, lockup.NewBalance(5000), b)
}

func TestMakeBackend(t *testing.T) {
	cfg := testConfig()
	obs := observability.Make(cfg)
	b, err := makeBackend(cfg, obs, connectivity.Make(cfg, obs))
	require.NoError(t, err)
	assert.Nil(t, b.journal)
	assert.NotNil(t, b.accounts)
	assert.NotNil(t, b.ledger)
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/insolar/lockup/internal/app/lockup"
)

// Ledger holds the liquid balances of all accounts.
type Ledger interface {
	Balance(ctx context.Context, id lockup.AccountID) (lockup.Balance, error)
	Transfer(ctx context.Context, from, to lockup.AccountID, amount lockup.Balance) error
	// Fund mints tokens, used for genesis balances and staking rewards.
	Fund(ctx context.Context, id lockup.AccountID, amount lockup.Balance) error
}

// StakingPool is called on behalf of the lockup account.
type StakingPool interface {
	Deposit(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error
	DepositAndStake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error
	Stake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error
	Unstake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error
	UnstakeAll(ctx context.Context, account lockup.AccountID) error
	Withdraw(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error
	GetAccountStakedBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error)
	GetAccountUnstakedBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error)
	GetAccountTotalBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error)
}

type Whitelist interface {
	IsWhitelisted(ctx context.Context, pool lockup.AccountID) (bool, error)
}

type TransferPoll interface {
	// GetResult is nil until transfers are voted in.
	GetResult(ctx context.Context) (*lockup.PollResult, error)
}

type Clock interface {
	Now() lockup.Timestamp
}

// SystemClock counts nanoseconds since the unix epoch.
type SystemClock struct{}

func (SystemClock) Now() lockup.Timestamp {
	return lockup.Timestamp(time.Now().UnixNano())
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now lockup.Timestamp
}

func NewManualClock(now lockup.Timestamp) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() lockup.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now lockup.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ManualClock) Advance(d lockup.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += lockup.Timestamp(d)
}

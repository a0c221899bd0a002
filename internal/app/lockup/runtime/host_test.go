// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gojuno/minimock/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/lockup/configuration"
	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/internal/app/lockup/stakingpool"
	"github.com/insolar/lockup/internal/app/lockup/store"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

const (
	lockupID     lockup.AccountID = "lockup.owner.near"
	ownerID      lockup.AccountID = "owner.near"
	foundationID lockup.AccountID = "foundation.near"
	deployerID   lockup.AccountID = "deployer.near"
	whitelistID  lockup.AccountID = "whitelist.near"
	poolID       lockup.AccountID = "pool.near"
	pollID       lockup.AccountID = "poll.near"

	storageReserve = 35
	lockupAmount   = 1000
	fullBalance    = lockupAmount + storageReserve
	unstakeDelay   = 10
	funded         = 1000000
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []events.Kind
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type env struct {
	ctx       context.Context
	obs       *observability.Observability
	host      *runtime.Host
	ledger    *runtime.MemoryLedger
	clock     *runtime.ManualClock
	pool      *stakingpool.Pool
	whitelist *runtime.MemoryWhitelist
	poll      *runtime.MemoryTransferPoll
	sink      *recorder
	// minted by the staking pool as rewards
	minted uint64
}

func newEnv(t *testing.T, accounts store.AccountStore) *env {
	cfg := configuration.Default()
	cfg.Log.Level = "error"
	e := &env{
		ctx:       context.Background(),
		obs:       observability.Make(cfg),
		ledger:    runtime.NewMemoryLedger(),
		clock:     runtime.NewManualClock(0),
		whitelist: runtime.NewMemoryWhitelist(poolID),
		poll:      runtime.NewMemoryTransferPoll(),
		sink:      &recorder{},
	}
	if accounts == nil {
		accounts = store.NewMemoryAccountStore()
	}
	require.NoError(t, e.ledger.Fund(e.ctx, deployerID, lockup.NewBalance(funded)))
	e.host = runtime.NewHost(e.obs, accounts, e.ledger, e.clock, lockup.NewBalance(storageReserve), e.sink)
	e.pool = stakingpool.New(poolID, unstakeDelay, e.ledger, e.clock, e.obs.Log())
	e.host.RegisterStakingPool(poolID, e.pool)
	e.host.RegisterWhitelist(whitelistID, e.whitelist)
	e.host.RegisterTransferPoll(pollID, e.poll)
	return e
}

func (e *env) deploy(t *testing.T, vesting lockup.VestingInformation, transfers lockup.TransfersInformation) {
	args := lockup.InitArgs{
		OwnerAccountID:                ownerID,
		LockupAmount:                  lockup.NewBalance(lockupAmount),
		TransfersInformation:          transfers,
		VestingInformation:            vesting,
		StakingPoolWhitelistAccountID: whitelistID,
	}
	if vesting.Kind != lockup.VestingKindNone {
		foundation := foundationID
		args.FoundationAccountID = &foundation
	}
	_, err := e.host.Deploy(e.ctx, lockupID, deployerID, lockup.NewBalance(fullBalance), args)
	require.NoError(t, err)
}

func (e *env) invoke(t *testing.T, predecessor lockup.AccountID, method string, op runtime.Operation) *runtime.Result {
	res, err := e.host.Invoke(e.ctx, lockupID, predecessor, method, op)
	require.NoError(t, err)
	return res
}

func (e *env) settle(t *testing.T) {
	require.NoError(t, e.host.Settle(e.ctx))
	e.requireConserved(t)
}

func (e *env) balance(t *testing.T, id lockup.AccountID) lockup.Balance {
	b, err := e.ledger.Balance(e.ctx, id)
	require.NoError(t, err)
	return b
}

func (e *env) view(t *testing.T) *lockup.View {
	v, err := e.host.View(e.ctx, lockupID)
	require.NoError(t, err)
	return v
}

// requireConserved checks that tokens are only moved around.
func (e *env) requireConserved(t *testing.T) {
	total, err := e.ledger.Total()
	require.NoError(t, err)
	require.Equal(t, lockup.NewBalance(funded+e.minted), total)
}

// requireBuckets checks that the lockup balance, the delegation at the pool and the escrowed
// tokens add up to the balance the account reports.
func (e *env) requireBuckets(t *testing.T) {
	atPool, err := e.pool.GetAccountTotalBalance(e.ctx, lockupID)
	require.NoError(t, err)
	sum, err := e.balance(t, lockupID).Add(atPool)
	require.NoError(t, err)
	sum, err = sum.Add(e.balance(t, runtime.EscrowAccountID))
	require.NoError(t, err)
	require.Equal(t, e.view(t).Balance, sum)
}

func (e *env) reward(t *testing.T, v uint64) {
	require.NoError(t, e.pool.Reward(e.ctx, lockupID, amount(v)))
	e.minted += v
}

func amount(v uint64) lockup.Balance {
	return lockup.NewBalance(v)
}

func selectPool(t *testing.T, e *env) {
	e.invoke(t, ownerID, "select_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.SelectStakingPool(c, poolID)
	})
	e.settle(t)
	require.NotNil(t, e.view(t).StakingPoolAccountID)
}

func TestHost_StakingRoundTrip(t *testing.T) {
	e := newEnv(t, nil)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))
	selectPool(t, e)

	res := e.invoke(t, ownerID, "deposit_and_stake", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.DepositAndStake(c, amount(300))
	})
	require.NotNil(t, res.Promise)
	assert.Equal(t, amount(fullBalance-300), e.balance(t, lockupID))

	// The attached deposit is in flight and still counted.
	v := e.view(t)
	assert.Equal(t, amount(fullBalance), v.Balance)
	assert.Equal(t, 1, v.PendingCallbacks)
	require.NotNil(t, v.StakingStatus)
	assert.Equal(t, lockup.Busy, *v.StakingStatus)

	e.settle(t)
	v = e.view(t)
	assert.Equal(t, amount(300), v.KnownDepositedBalance)
	assert.Equal(t, amount(fullBalance), v.Balance)
	assert.Equal(t, 0, v.PendingCallbacks)
	assert.Equal(t, amount(300), e.balance(t, poolID))

	e.invoke(t, ownerID, "unstake_all", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.UnstakeAll(c)
	})
	e.settle(t)

	// The pool refuses before the unstaking delay, the lock is released anyway.
	e.invoke(t, ownerID, "withdraw_all_from_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.WithdrawAllFromStakingPool(c)
	})
	e.settle(t)
	v = e.view(t)
	assert.Equal(t, amount(300), v.KnownDepositedBalance)
	assert.Equal(t, lockup.Idle, *v.StakingStatus)

	e.clock.Advance(unstakeDelay)
	e.invoke(t, ownerID, "withdraw_all_from_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.WithdrawAllFromStakingPool(c)
	})
	e.settle(t)
	v = e.view(t)
	assert.True(t, v.KnownDepositedBalance.IsZero())
	assert.Equal(t, amount(fullBalance), e.balance(t, lockupID))

	e.invoke(t, ownerID, "unselect_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.UnselectStakingPool(c)
	})
	e.settle(t)
	assert.Nil(t, e.view(t).StakingPoolAccountID)

	assert.Contains(t, e.sink.kinds(), events.Invoked)
	assert.Contains(t, e.sink.kinds(), events.Executed)
	assert.Contains(t, e.sink.kinds(), events.Resolved)
}

func TestHost_BusyRejectsSecondCall(t *testing.T) {
	e := newEnv(t, nil)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))
	selectPool(t, e)

	e.invoke(t, ownerID, "deposit_to_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.DepositToStakingPool(c, amount(100))
	})
	_, err := e.host.Invoke(e.ctx, lockupID, ownerID, "stake", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.Stake(c, amount(100))
	})
	assert.Equal(t, lockup.ErrContractBusy, errors.Cause(err))
	assert.Contains(t, e.sink.kinds(), events.Rejected)

	e.settle(t)
	e.invoke(t, ownerID, "stake", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.Stake(c, amount(100))
	})
	e.settle(t)
	staked, err := e.pool.GetAccountStakedBalance(e.ctx, lockupID)
	require.NoError(t, err)
	assert.Equal(t, amount(100), staked)
}

func TestHost_FailedCallRefundsAttachedTokens(t *testing.T) {
	e := newEnv(t, nil)
	const ghostID lockup.AccountID = "ghost.near"
	e.whitelist.Add(ghostID)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))

	e.invoke(t, ownerID, "select_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.SelectStakingPool(c, ghostID)
	})
	e.settle(t)

	e.invoke(t, ownerID, "deposit_to_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.DepositToStakingPool(c, amount(100))
	})
	e.settle(t)

	v := e.view(t)
	assert.True(t, v.KnownDepositedBalance.IsZero())
	assert.Equal(t, lockup.Idle, *v.StakingStatus)
	assert.Equal(t, amount(fullBalance), e.balance(t, lockupID))
	assert.True(t, e.balance(t, ghostID).IsZero())
	assert.True(t, e.balance(t, runtime.EscrowAccountID).IsZero())
}

func TestHost_NotWhitelistedPool(t *testing.T) {
	e := newEnv(t, nil)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))

	e.invoke(t, ownerID, "select_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.SelectStakingPool(c, "shady.near")
	})
	e.settle(t)
	assert.Nil(t, e.view(t).StakingPoolAccountID)
}

func TestHost_Termination(t *testing.T) {
	e := newEnv(t, nil)
	schedule := lockup.VestingSchedule{StartTimestamp: 0, CliffTimestamp: 100, EndTimestamp: 1000}
	e.deploy(t, lockup.VestingWithSchedule(schedule), lockup.TransfersEnabledAt(0))
	e.clock.Set(10)
	selectPool(t, e)

	e.invoke(t, ownerID, "deposit_and_stake", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.DepositAndStake(c, amount(300))
	})
	e.settle(t)
	e.requireBuckets(t)

	e.clock.Set(50)
	e.invoke(t, foundationID, "terminate_vesting", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return nil, a.TerminateVesting(c, nil)
	})
	v := e.view(t)
	require.NotNil(t, v.TerminationStatus)
	assert.Equal(t, lockup.TerminationInitialized, *v.TerminationStatus)
	assert.Equal(t, amount(300), v.TerminatedUnvestedBalanceDeficit)
	e.requireBuckets(t)

	prepare := func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.TerminationPrepareToWithdraw(c)
	}
	e.invoke(t, foundationID, "termination_prepare_to_withdraw", prepare)
	e.settle(t)
	e.requireBuckets(t)
	assert.Equal(t, lockup.TerminationEverythingUnstaked, *e.view(t).TerminationStatus)

	// Too early: the pool refuses, the stage is rolled back.
	e.invoke(t, foundationID, "termination_prepare_to_withdraw", prepare)
	e.settle(t)
	e.requireBuckets(t)
	assert.Equal(t, lockup.TerminationEverythingUnstaked, *e.view(t).TerminationStatus)

	e.clock.Set(100)
	e.invoke(t, foundationID, "termination_prepare_to_withdraw", prepare)
	e.settle(t)
	e.requireBuckets(t)
	v = e.view(t)
	assert.Equal(t, lockup.TerminationReadyToWithdraw, *v.TerminationStatus)
	assert.True(t, v.KnownDepositedBalance.IsZero())
	assert.Equal(t, amount(fullBalance), e.balance(t, lockupID))

	e.invoke(t, foundationID, "termination_withdraw", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.TerminationWithdraw(c, foundationID)
	})
	e.settle(t)
	e.requireBuckets(t)
	v = e.view(t)
	assert.Equal(t, lockup.TerminationCompleted, *v.TerminationStatus)
	assert.Equal(t, lockup.VestingKindNone, v.VestingKind)
	assert.Equal(t, amount(lockupAmount), e.balance(t, foundationID))
	assert.Equal(t, amount(storageReserve), e.balance(t, lockupID))
}

func TestHost_TransfersVoteAndTransfer(t *testing.T) {
	e := newEnv(t, nil)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersDisabledUntilVote(pollID))

	vote := func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.CheckTransfersVote(c)
	}
	e.invoke(t, ownerID, "check_transfers_vote", vote)
	e.settle(t)
	assert.False(t, e.view(t).TransfersEnabled)

	e.poll.Enable(lockup.PollResult{ProposalID: 1, Timestamp: 5})
	e.invoke(t, ownerID, "check_transfers_vote", vote)
	e.settle(t)
	assert.True(t, e.view(t).TransfersEnabled)

	e.clock.Set(10)
	e.invoke(t, ownerID, "transfer", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.Transfer(c, amount(100), "bob.near")
	})
	e.settle(t)
	assert.Equal(t, amount(100), e.balance(t, "bob.near"))
	assert.Equal(t, amount(fullBalance-100), e.balance(t, lockupID))
}

func TestHost_RewardsAreWithdrawn(t *testing.T) {
	e := newEnv(t, nil)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))
	selectPool(t, e)

	e.invoke(t, ownerID, "deposit_and_stake", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.DepositAndStake(c, amount(300))
	})
	e.settle(t)
	e.requireBuckets(t)

	e.reward(t, 50)
	e.invoke(t, ownerID, "refresh_staking_pool_balance", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.RefreshStakingPoolBalance(c)
	})
	e.settle(t)
	e.requireBuckets(t)
	assert.Equal(t, amount(350), e.view(t).KnownDepositedBalance)

	e.invoke(t, ownerID, "unstake_all", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.UnstakeAll(c)
	})
	e.settle(t)
	e.requireBuckets(t)
	e.clock.Advance(unstakeDelay)
	e.invoke(t, ownerID, "withdraw_from_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.WithdrawFromStakingPool(c, amount(350))
	})
	e.settle(t)
	e.requireBuckets(t)

	assert.True(t, e.view(t).KnownDepositedBalance.IsZero())
	assert.Equal(t, amount(fullBalance+50), e.balance(t, lockupID))
}

func TestHost_Deploy(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.host.Deploy(e.ctx, lockupID, deployerID, amount(fullBalance), lockup.InitArgs{
		OwnerAccountID:                ownerID,
		LockupAmount:                  lockup.Balance{},
		TransfersInformation:          lockup.TransfersEnabledAt(0),
		VestingInformation:            lockup.NoVesting(),
		StakingPoolWhitelistAccountID: whitelistID,
	})
	require.True(t, lockup.IsPrecondition(err))
	assert.Equal(t, amount(funded), e.balance(t, deployerID))
	assert.True(t, e.balance(t, lockupID).IsZero())

	_, err = e.host.View(e.ctx, lockupID)
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))

	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))
	_, err = e.host.Deploy(e.ctx, lockupID, deployerID, amount(fullBalance), lockup.InitArgs{})
	require.Error(t, err)
	e.requireConserved(t)
}

func TestHost_RejectedInvocationIsNotSaved(t *testing.T) {
	mc := minimock.NewController(t)
	defer mc.Finish()

	ctx := context.Background()
	lctx := lockup.NewContext(nil, lockupID, deployerID, amount(fullBalance), amount(storageReserve), 0)
	account, err := lockup.New(lctx, lockup.InitArgs{
		OwnerAccountID:                ownerID,
		LockupAmount:                  amount(lockupAmount),
		TransfersInformation:          lockup.TransfersEnabledAt(0),
		VestingInformation:            lockup.NoVesting(),
		StakingPoolWhitelistAccountID: whitelistID,
	})
	require.NoError(t, err)

	accounts := store.NewAccountStoreMock(mc)
	accounts.AccountMock.Inspect(func(ctx context.Context, id lockup.AccountID) {
		assert.Equal(t, lockupID, id)
	}).Return(account, nil)

	e := newEnv(t, accounts)
	_, err = e.host.Invoke(ctx, lockupID, "mallory.near", "select_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.SelectStakingPool(c, poolID)
	})
	require.True(t, lockup.IsPrecondition(err))
	assert.Equal(t, 0, e.host.PendingReceipts())
}

type countingWhitelist struct {
	*runtime.MemoryWhitelist
	calls int
}

func (w *countingWhitelist) IsWhitelisted(ctx context.Context, pool lockup.AccountID) (bool, error) {
	w.calls++
	return w.MemoryWhitelist.IsWhitelisted(ctx, pool)
}

func TestHost_ReceiptIsRetriedAfterStoreFailure(t *testing.T) {
	mc := minimock.NewController(t)
	defer mc.Finish()

	mem := store.NewMemoryAccountStore()
	failNext := false
	accounts := store.NewAccountStoreMock(mc)
	accounts.AccountMock.Set(mem.Account)
	accounts.SetAccountMock.Set(func(ctx context.Context, id lockup.AccountID, account *lockup.Account) error {
		if failNext {
			failNext = false
			return errors.New("connection reset by peer")
		}
		return mem.SetAccount(ctx, id, account)
	})

	e := newEnv(t, accounts)
	whitelist := &countingWhitelist{MemoryWhitelist: runtime.NewMemoryWhitelist(poolID)}
	e.host.RegisterWhitelist(whitelistID, whitelist)
	e.deploy(t, lockup.NoVesting(), lockup.TransfersEnabledAt(0))

	e.invoke(t, ownerID, "select_staking_pool", func(a *lockup.Account, c *lockup.Context) (*lockup.Promise, error) {
		return a.SelectStakingPool(c, poolID)
	})

	failNext = true
	processed, err := e.host.ProcessReceipts(e.ctx)
	require.Error(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, e.host.PendingReceipts())
	assert.Nil(t, e.view(t).StakingPoolAccountID)

	processed, err = e.host.ProcessReceipts(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, whitelist.calls, "the call must not be executed twice")
	require.NotNil(t, e.view(t).StakingPoolAccountID)
}

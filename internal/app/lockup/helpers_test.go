// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	ownerID      AccountID = "owner.near"
	foundationID AccountID = "foundation.near"
	whitelistID  AccountID = "whitelist.near"
	poolID       AccountID = "pool.near"
	pollID       AccountID = "poll.near"
	selfID       AccountID = "lockup.owner.near"

	storageReserve = 35
	lockupAmount   = 1000
)

var testSchedule = VestingSchedule{StartTimestamp: 0, CliffTimestamp: 100, EndTimestamp: 1000}

func callCtx(predecessor AccountID, balance uint64, now Timestamp) *Context {
	return NewContext(nil, selfID, predecessor, NewBalance(balance), NewBalance(storageReserve), now)
}

func ownerCtx(balance uint64, now Timestamp) *Context {
	return callCtx(ownerID, balance, now)
}

func foundationCtx(balance uint64, now Timestamp) *Context {
	return callCtx(foundationID, balance, now)
}

func selfCtx(balance uint64, now Timestamp) *Context {
	return callCtx(selfID, balance, now)
}

func newTestAccount(t *testing.T, vesting VestingInformation, transfers TransfersInformation) *Account {
	args := InitArgs{
		OwnerAccountID:                ownerID,
		LockupAmount:                  NewBalance(lockupAmount),
		TransfersInformation:          transfers,
		VestingInformation:            vesting,
		StakingPoolWhitelistAccountID: whitelistID,
	}
	if vesting.Kind != VestingKindNone {
		foundation := foundationID
		args.FoundationAccountID = &foundation
	}
	a, err := New(ownerCtx(lockupAmount+storageReserve, 0), args)
	require.NoError(t, err)
	return a
}

// resolve runs the callback of the promise as the host would.
func resolve(t *testing.T, a *Account, p *Promise, o Outcome, balance uint64, now Timestamp) (*Promise, *Context) {
	require.NotNil(t, p)
	require.NotNil(t, p.Handle)
	ctx := selfCtx(balance, now)
	next, err := a.Resolve(ctx, p.Handle.ID.String(), o)
	require.NoError(t, err)
	return next, ctx
}

// selectPool selects the staking pool with a successful whitelist check.
func selectPool(t *testing.T, a *Account) {
	p, err := a.SelectStakingPool(ownerCtx(lockupAmount+storageReserve, 0), poolID)
	require.NoError(t, err)
	resolve(t, a, p, Outcome{Succeeded: true, Whitelisted: true}, lockupAmount+storageReserve, 0)
	require.NotNil(t, a.StakingInformation)
}

func requirePrecondition(t *testing.T, err error, msg string) {
	require.Error(t, err)
	require.True(t, IsPrecondition(err), "unexpected error kind: %v", err)
	if msg != "" {
		require.Equal(t, msg, errors.Cause(err).Error())
	}
}

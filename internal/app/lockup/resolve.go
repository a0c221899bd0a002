// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"github.com/pkg/errors"
)

// Resolve is the callback entry point. It consumes the pending handle and reacts to the
// outcome of the external call. The result may be the next call of a chain.
//
// A callback that fails doesn't fail the invocation: its state changes are dropped, the
// staking lock is released and an in-progress termination stage is rolled back, so the
// account never stays busy. The failure is reported through ctx.Failure.
func (a *Account) Resolve(ctx *Context, handleID string, outcome Outcome) (*Promise, error) {
	if err := AssertSelf(ctx); err != nil {
		return nil, err
	}
	h, ok := a.Pending[handleID]
	if !ok {
		return nil, preconditionf("Unknown pending handle %s", handleID)
	}

	snapshot := a.Clone()
	delete(a.Pending, handleID)
	p, err := a.resolve(ctx, h, outcome)
	if err == nil {
		return p, nil
	}

	*a = *snapshot
	delete(a.Pending, handleID)
	a.releaseAfterFailure(h.Callback)
	ctx.failure = errors.Wrapf(err, "callback %s failed", h.Callback)
	if ctx.log != nil {
		ctx.log.WithError(err).WithField("callback", h.Callback).Warn("callback failed")
	}
	ctx.logs = append(ctx.logs, ctx.failure.Error())
	return nil, nil
}

func (a *Account) resolve(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	switch h.Callback {
	case OnWhitelistIsWhitelisted:
		return a.onWhitelistIsWhitelisted(ctx, h, o)
	case OnStakingPoolGetTotalBalanceToUnselect:
		return a.onStakingPoolGetTotalBalanceToUnselect(ctx, h, o)
	case OnStakingPoolDeposit:
		return a.onStakingPoolDeposit(ctx, h, o, "deposit")
	case OnStakingPoolDepositAndStake:
		return a.onStakingPoolDeposit(ctx, h, o, "deposit and stake")
	case OnStakingPoolWithdraw:
		return a.onStakingPoolWithdraw(ctx, h, o)
	case OnStakingPoolStake:
		return a.onStakingPoolStakeChange(ctx, h, o, "Staking of "+h.Amount.String())
	case OnStakingPoolUnstake:
		return a.onStakingPoolStakeChange(ctx, h, o, "Unstaking of "+h.Amount.String())
	case OnStakingPoolUnstakeAll:
		return a.onStakingPoolStakeChange(ctx, h, o, "Unstaking of all tokens")
	case OnGetAccountTotalBalance:
		return a.onGetAccountTotalBalance(ctx, h, o)
	case OnGetAccountUnstakedBalanceToWithdrawByOwner:
		return a.onGetAccountUnstakedBalanceToWithdrawByOwner(ctx, h, o)
	case OnGetResultFromTransferPoll:
		return a.onGetResultFromTransferPoll(ctx, h, o)
	case OnGetAccountStakedBalanceToUnstake:
		return a.onGetAccountStakedBalanceToUnstake(ctx, h, o)
	case OnStakingPoolUnstakeForTermination:
		return a.onStakingPoolUnstakeForTermination(ctx, h, o)
	case OnGetAccountUnstakedBalanceToWithdraw:
		return a.onGetAccountUnstakedBalanceToWithdraw(ctx, h, o)
	case OnStakingPoolWithdrawForTermination:
		return a.onStakingPoolWithdrawForTermination(ctx, h, o)
	case OnWithdrawUnvestedAmount:
		return a.onWithdrawUnvestedAmount(ctx, h, o)
	}
	return nil, preconditionf("Unknown callback %q", string(h.Callback))
}

// releaseAfterFailure frees whatever the failed chain was holding.
func (a *Account) releaseAfterFailure(callback CallbackKind) {
	releasePool := func() {
		if a.StakingInformation != nil {
			a.StakingInformation.Status = Idle
		}
	}
	rollback := func(from, to TerminationStatus) {
		if info, err := a.termination(); err == nil && info.Status == from {
			info.Status = to
		}
	}
	switch callback {
	case OnWhitelistIsWhitelisted, OnGetResultFromTransferPoll:
	case OnStakingPoolGetTotalBalanceToUnselect, OnStakingPoolDeposit, OnStakingPoolDepositAndStake,
		OnStakingPoolWithdraw, OnStakingPoolStake, OnStakingPoolUnstake, OnStakingPoolUnstakeAll,
		OnGetAccountTotalBalance, OnGetAccountUnstakedBalanceToWithdrawByOwner:
		releasePool()
	case OnGetAccountStakedBalanceToUnstake, OnStakingPoolUnstakeForTermination:
		releasePool()
		rollback(TerminationUnstakingInProgress, TerminationInitialized)
	case OnGetAccountUnstakedBalanceToWithdraw, OnStakingPoolWithdrawForTermination:
		releasePool()
		rollback(TerminationWithdrawingFromPoolInProgress, TerminationEverythingUnstaked)
	case OnWithdrawUnvestedAmount:
		rollback(TerminationWithdrawingFromAccount, TerminationReadyToWithdraw)
	}
}

// PendingCount is the number of callbacks the account is waiting for.
func (a *Account) PendingCount() int {
	return len(a.Pending)
}

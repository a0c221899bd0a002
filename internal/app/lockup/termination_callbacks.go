// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

func (a *Account) onGetAccountStakedBalanceToUnstake(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if a.StakingInformation == nil {
		return nil, preconditionf("Staking pool is not selected")
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("Termination Step: Fetching the staked balance from @%s has failed", pool)
		return nil, a.rollbackTermination(TerminationInitialized)
	}
	if o.Balance.IsZero() {
		ctx.Log("Termination Step: Nothing to unstake. Moving to the next status.")
		if err := a.releaseStakingPool(); err != nil {
			return nil, err
		}
		return nil, a.setTerminationStatus(TerminationEverythingUnstaked)
	}
	ctx.Log("Termination Step: Unstaking %s from the staking pool @%s", o.Balance, pool)
	return a.dispatch(ctx, a.stakingPoolCall(CallUnstake, o.Balance), OnStakingPoolUnstakeForTermination, o.Balance), nil
}

func (a *Account) onStakingPoolUnstakeForTermination(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("Termination Step: Unstaking %s at @%s has failed", h.Amount, pool)
		return nil, a.setTerminationStatus(TerminationInitialized)
	}
	ctx.Log("Termination Step: Unstaking of %s at @%s succeeded", h.Amount, pool)
	return nil, a.setTerminationStatus(TerminationEverythingUnstaked)
}

func (a *Account) onGetAccountUnstakedBalanceToWithdraw(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if a.StakingInformation == nil {
		return nil, preconditionf("Staking pool is not selected")
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("Termination Step: Fetching the unstaked balance from @%s has failed", pool)
		return nil, a.rollbackTermination(TerminationEverythingUnstaked)
	}
	if o.Balance.IsZero() {
		ctx.Log("Termination Step: Nothing to withdraw from the staking pool. Ready to withdraw from the account.")
		if err := a.releaseStakingPool(); err != nil {
			return nil, err
		}
		return nil, a.setTerminationStatus(TerminationReadyToWithdraw)
	}
	ctx.Log("Termination Step: Withdrawing %s from the staking pool @%s", o.Balance, pool)
	return a.dispatch(ctx, a.stakingPoolCall(CallWithdraw, o.Balance), OnStakingPoolWithdrawForTermination, o.Balance), nil
}

func (a *Account) onStakingPoolWithdrawForTermination(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("Termination Step: The withdrawal of %s from @%s failed", h.Amount, pool)
		return nil, a.setTerminationStatus(TerminationEverythingUnstaked)
	}
	// Staking rewards can make the withdrawn amount larger than the known deposit.
	a.StakingInformation.DepositAmount = a.StakingInformation.DepositAmount.SaturatingSub(h.Amount)
	ctx.Log("Termination Step: The withdrawal of %s from @%s succeeded", h.Amount, pool)
	return nil, a.setTerminationStatus(TerminationReadyToWithdraw)
}

func (a *Account) onWithdrawUnvestedAmount(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	info, err := a.termination()
	if err != nil {
		return nil, err
	}
	if !o.Succeeded {
		info.Status = TerminationReadyToWithdraw
		ctx.Log("Termination Step: The withdrawal of the terminated unvested amount of %s to @%s failed", h.Amount, h.Target)
		return nil, nil
	}
	ctx.Log("Termination Step: The withdrawal of the terminated unvested amount of %s to @%s succeeded.", h.Amount, h.Target)
	withdrawn, err := a.LockupInformation.TerminationWithdrawnTokens.Add(h.Amount)
	if err != nil {
		return nil, err
	}
	remaining, err := info.UnvestedAmount.Sub(h.Amount)
	if err != nil {
		return nil, err
	}
	a.LockupInformation.TerminationWithdrawnTokens = withdrawn
	if !remaining.IsZero() {
		info.UnvestedAmount = remaining
		info.Status = TerminationReadyToWithdraw
		ctx.Log("Termination Step: There is still terminated unvested balance of %s remaining to be withdrawn", remaining)
		if a.AccountBalance(ctx).IsZero() {
			ctx.Log("The withdrawal is completed: no more balance can be withdrawn in a future call")
		}
		return nil, nil
	}
	a.FoundationAccountID = nil
	a.VestingInformation = NoVesting()
	completedAt := ctx.BlockTimestamp
	a.TerminationCompletedAt = &completedAt
	ctx.Log("Vesting schedule termination and withdrawal are completed")
	return nil, nil
}

// rollbackTermination returns the termination to the given stage and releases the staking lock.
func (a *Account) rollbackTermination(status TerminationStatus) error {
	if a.StakingInformation != nil {
		a.StakingInformation.Status = Idle
	}
	return a.setTerminationStatus(status)
}

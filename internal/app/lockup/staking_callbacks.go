// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

func (a *Account) onWhitelistIsWhitelisted(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if !o.Succeeded {
		ctx.Log("The whitelist check of @%s has failed", h.Argument)
		return nil, nil
	}
	if !o.Whitelisted {
		ctx.Log("The given staking pool account ID @%s is not whitelisted", h.Argument)
		return nil, nil
	}
	if err := a.AssertStakingPoolIsNotSelected(); err != nil {
		return nil, err
	}
	a.StakingInformation = &StakingInformation{
		StakingPoolAccountID: h.Argument,
		Status:               Idle,
	}
	ctx.Log("Selected staking pool @%s", h.Argument)
	return nil, nil
}

func (a *Account) onStakingPoolGetTotalBalanceToUnselect(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	switch {
	case !o.Succeeded:
		ctx.Log("Fetching the total balance from @%s has failed, the staking pool stays selected", pool)
	case !o.Balance.IsZero():
		ctx.Log("There is still a balance of %s on the staking pool @%s", o.Balance, pool)
	default:
		a.StakingInformation = nil
		ctx.Log("Unselected current staking pool @%s", pool)
	}
	return nil, nil
}

func (a *Account) onStakingPoolDeposit(ctx *Context, h PendingHandle, o Outcome, what string) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("The %s of %s to @%s has failed", what, h.Amount, pool)
		return nil, nil
	}
	deposit, err := a.StakingInformation.DepositAmount.Add(h.Amount)
	if err != nil {
		return nil, err
	}
	a.StakingInformation.DepositAmount = deposit
	ctx.Log("The %s of %s to @%s succeeded", what, h.Amount, pool)
	return nil, nil
}

func (a *Account) onStakingPoolWithdraw(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("The withdrawal of %s from @%s failed", h.Amount, pool)
		return nil, nil
	}
	// Staking rewards can make the withdrawn amount larger than the known deposit.
	a.StakingInformation.DepositAmount = a.StakingInformation.DepositAmount.SaturatingSub(h.Amount)
	ctx.Log("The withdrawal of %s from @%s succeeded", h.Amount, pool)
	return nil, nil
}

// onStakingPoolStakeChange handles stake, unstake and unstake_all. None of them move tokens
// out of the pool, so the known deposit stays.
func (a *Account) onStakingPoolStakeChange(ctx *Context, h PendingHandle, o Outcome, what string) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("%s at @%s has failed", what, pool)
		return nil, nil
	}
	ctx.Log("%s at @%s succeeded", what, pool)
	return nil, nil
}

func (a *Account) onGetAccountTotalBalance(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.releaseStakingPool(); err != nil {
		return nil, err
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded {
		ctx.Log("Fetching the total balance from @%s has failed", pool)
		return nil, nil
	}
	ctx.Log("The current total balance on the staking pool is %s", o.Balance)
	a.StakingInformation.DepositAmount = o.Balance
	return nil, nil
}

func (a *Account) onGetAccountUnstakedBalanceToWithdrawByOwner(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if a.StakingInformation == nil {
		return nil, preconditionf("Staking pool is not selected")
	}
	pool := a.StakingInformation.StakingPoolAccountID
	if !o.Succeeded || o.Balance.IsZero() {
		if err := a.releaseStakingPool(); err != nil {
			return nil, err
		}
		if !o.Succeeded {
			ctx.Log("Fetching the unstaked balance from @%s has failed", pool)
		} else {
			ctx.Log("There is nothing to withdraw from the staking pool @%s", pool)
		}
		return nil, nil
	}
	ctx.Log("Withdrawing all unstaked balance of %s from the staking pool @%s", o.Balance, pool)
	// The lock is still held, it's released by the withdrawal callback.
	return a.dispatch(ctx, a.stakingPoolCall(CallWithdraw, o.Balance), OnStakingPoolWithdraw, o.Balance), nil
}

// releaseStakingPool returns the staking lock to Idle.
func (a *Account) releaseStakingPool() error {
	if a.StakingInformation == nil {
		return preconditionf("Staking pool is not selected")
	}
	a.StakingInformation.Status = Idle
	return nil
}

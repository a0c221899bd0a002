// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// SelectStakingPool checks the pool against the whitelist first. The pool is selected by
// the callback.
func (a *Account) SelectStakingPool(ctx *Context, pool AccountID) (*Promise, error) {
	if err := a.AssertOwner(ctx); err != nil {
		return nil, err
	}
	if err := pool.Validate(); err != nil {
		return nil, preconditionf("The staking pool account ID is invalid")
	}
	if err := a.AssertStakingPoolIsNotSelected(); err != nil {
		return nil, err
	}
	if err := a.AssertNoTermination(); err != nil {
		return nil, err
	}
	ctx.Log("Selecting staking pool @%s. Going to check whitelist first.", pool)
	call := Call{
		Kind:     CallIsWhitelisted,
		Receiver: a.StakingPoolWhitelistAccountID,
		Argument: pool,
	}
	return a.dispatch(ctx, call, OnWhitelistIsWhitelisted, Balance{}), nil
}

// UnselectStakingPool asks the pool for the total balance. The pool is released by the
// callback only if nothing is left there.
func (a *Account) UnselectStakingPool(ctx *Context) (*Promise, error) {
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Going to check the total balance at the staking pool @%s before unselecting it",
		a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallGetAccountTotalBalance, Balance{}, Balance{}, OnStakingPoolGetTotalBalanceToUnselect), nil
}

// DepositToStakingPool deposits the amount to the pool without staking it.
func (a *Account) DepositToStakingPool(ctx *Context, amount Balance) (*Promise, error) {
	if err := a.assertDepositAllowed(ctx, amount); err != nil {
		return nil, err
	}
	ctx.Log("Depositing %s to the staking pool @%s", amount, a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallDeposit, amount, amount, OnStakingPoolDeposit), nil
}

func (a *Account) DepositAndStake(ctx *Context, amount Balance) (*Promise, error) {
	if err := a.assertDepositAllowed(ctx, amount); err != nil {
		return nil, err
	}
	ctx.Log("Depositing and staking %s to the staking pool @%s", amount, a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallDepositAndStake, amount, amount, OnStakingPoolDepositAndStake), nil
}

// RefreshStakingPoolBalance fetches the total balance from the pool, rewards included,
// and remembers it as the known deposit.
func (a *Account) RefreshStakingPoolBalance(ctx *Context) (*Promise, error) {
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Fetching total balance from the staking pool @%s", a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallGetAccountTotalBalance, Balance{}, Balance{}, OnGetAccountTotalBalance), nil
}

func (a *Account) WithdrawFromStakingPool(ctx *Context, amount Balance) (*Promise, error) {
	if err := assertPositive(amount); err != nil {
		return nil, err
	}
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Withdrawing %s from the staking pool @%s", amount, a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallWithdraw, amount, Balance{}, OnStakingPoolWithdraw), nil
}

// WithdrawAllFromStakingPool queries the unstaked balance and withdraws it in the callback.
// The lock is held across both calls.
func (a *Account) WithdrawAllFromStakingPool(ctx *Context) (*Promise, error) {
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Going to query the unstaked balance at the staking pool @%s", a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallGetAccountUnstakedBalance, Balance{}, Balance{}, OnGetAccountUnstakedBalanceToWithdrawByOwner), nil
}

func (a *Account) Stake(ctx *Context, amount Balance) (*Promise, error) {
	if err := assertPositive(amount); err != nil {
		return nil, err
	}
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Staking %s at the staking pool @%s", amount, a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallStake, amount, Balance{}, OnStakingPoolStake), nil
}

func (a *Account) Unstake(ctx *Context, amount Balance) (*Promise, error) {
	if err := assertPositive(amount); err != nil {
		return nil, err
	}
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Unstaking %s from the staking pool @%s", amount, a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallUnstake, amount, Balance{}, OnStakingPoolUnstake), nil
}

func (a *Account) UnstakeAll(ctx *Context) (*Promise, error) {
	if err := a.assertStakingAllowed(ctx); err != nil {
		return nil, err
	}
	ctx.Log("Unstaking all tokens from the staking pool @%s", a.StakingInformation.StakingPoolAccountID)
	return a.startStakingCall(ctx, CallUnstakeAll, Balance{}, Balance{}, OnStakingPoolUnstakeAll), nil
}

func (a *Account) assertStakingAllowed(ctx *Context) error {
	if err := a.AssertOwner(ctx); err != nil {
		return err
	}
	if err := a.AssertStakingPoolIsIdle(); err != nil {
		return err
	}
	return a.AssertNoTermination()
}

func (a *Account) assertDepositAllowed(ctx *Context, amount Balance) error {
	if err := assertPositive(amount); err != nil {
		return err
	}
	if err := a.assertStakingAllowed(ctx); err != nil {
		return err
	}
	if a.AccountBalance(ctx).Lt(amount) {
		return preconditionf("The balance that can be deposited to the staking pool is lower than the extra amount")
	}
	return nil
}

// startStakingCall takes the staking lock and dispatches one call to the selected pool.
func (a *Account) startStakingCall(ctx *Context, kind CallKind, amount, attached Balance, callback CallbackKind) *Promise {
	a.StakingInformation.Status = Busy
	call := a.stakingPoolCall(kind, amount)
	call.Attached = attached
	return a.dispatch(ctx, call, callback, amount)
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// TerminateVesting freezes the unvested amount. A vesting hash has to be disclosed.
//
// If the selected staking pool holds a deposit, termination starts from the deficit stage and
// drains the pool before the withdrawal. Otherwise it's ready to withdraw right away.
func (a *Account) TerminateVesting(ctx *Context, disclosure *VestingScheduleWithSalt) error {
	if err := a.AssertCalledByFoundation(ctx); err != nil {
		return err
	}
	schedule, err := a.AssertVesting(disclosure)
	if err != nil {
		return err
	}
	unvested, err := schedule.UnvestedAmount(a.LockupInformation.LockupAmount, a.VestingRamp, ctx.BlockTimestamp)
	if err != nil {
		return err
	}
	if unvested.IsZero() {
		return preconditionf("The account is fully vested")
	}

	status := TerminationReadyToWithdraw
	if !a.KnownDepositedBalance().IsZero() {
		status = TerminationInitialized
	}
	ctx.Log("Terminating vesting. The remaining unvested balance is %s", unvested)
	a.VestingInformation = Terminating(TerminationInformation{
		UnvestedAmount: unvested,
		Status:         status,
	})
	return nil
}

// TerminationPrepareToWithdraw advances the termination by one step. Every step is a chain
// of calls to the staking pool, so the caller has to invoke it again after the callback.
func (a *Account) TerminationPrepareToWithdraw(ctx *Context) (*Promise, error) {
	if err := a.AssertCalledByFoundation(ctx); err != nil {
		return nil, err
	}
	info, err := a.termination()
	if err != nil {
		return nil, err
	}
	switch info.Status {
	case TerminationUnstakingInProgress, TerminationWithdrawingFromPoolInProgress, TerminationWithdrawingFromAccount:
		return nil, preconditionf("Another transaction is already in progress.")
	case TerminationReadyToWithdraw:
		return nil, preconditionf("The account is ready to withdraw unvested balance.")
	case TerminationCompleted:
		return nil, preconditionf("The termination is completed")
	case TerminationInitialized:
		if err := a.AssertStakingPoolIsIdle(); err != nil {
			return nil, err
		}
		info.Status = TerminationUnstakingInProgress
		ctx.Log("Termination Step: Going to unstake everything from the staking pool")
		return a.startStakingCall(ctx, CallGetAccountStakedBalance, Balance{}, Balance{}, OnGetAccountStakedBalanceToUnstake), nil
	case TerminationEverythingUnstaked:
		if err := a.AssertStakingPoolIsIdle(); err != nil {
			return nil, err
		}
		info.Status = TerminationWithdrawingFromPoolInProgress
		ctx.Log("Termination Step: Going to withdraw everything from the staking pool")
		return a.startStakingCall(ctx, CallGetAccountUnstakedBalance, Balance{}, Balance{}, OnGetAccountUnstakedBalanceToWithdraw), nil
	}
	return nil, preconditionf("Unknown termination status %q", string(info.Status))
}

// TerminationWithdraw sends as much of the frozen amount as the account balance covers to
// the receiver.
func (a *Account) TerminationWithdraw(ctx *Context, receiver AccountID) (*Promise, error) {
	if err := a.AssertCalledByFoundation(ctx); err != nil {
		return nil, err
	}
	if err := receiver.Validate(); err != nil {
		return nil, preconditionf("The receiver account ID is invalid")
	}
	info, err := a.termination()
	if err != nil {
		return nil, err
	}
	if info.Status != TerminationReadyToWithdraw {
		return nil, preconditionf("Termination status is not ready to withdraw")
	}
	amount := MinBalance(info.UnvestedAmount, a.AccountBalance(ctx))
	if amount.IsZero() {
		return nil, preconditionf("The account doesn't have enough liquid balance to withdraw any amount")
	}
	ctx.Log("Termination Step: Withdrawing %s of terminated unvested balance to account @%s", amount, receiver)
	info.Status = TerminationWithdrawingFromAccount
	call := Call{Kind: CallTransfer, Receiver: receiver, Amount: amount, Attached: amount}
	return a.dispatch(ctx, call, OnWithdrawUnvestedAmount, amount), nil
}

func (a *Account) termination() (*TerminationInformation, error) {
	if a.VestingInformation.Kind != VestingKindTerminating {
		return nil, preconditionf("There is no termination in progress")
	}
	return a.VestingInformation.Termination, nil
}

func (a *Account) setTerminationStatus(status TerminationStatus) error {
	info, err := a.termination()
	if err != nil {
		return err
	}
	info.Status = status
	return nil
}

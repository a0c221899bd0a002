// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// AccountBalance is the liquid balance of the account without the storage reserve.
func (a *Account) AccountBalance(ctx *Context) Balance {
	return ctx.AccountBalance.SaturatingSub(ctx.StorageReserve)
}

// KnownDepositedBalance is the amount deposited to the staking pool as far as the account knows.
// The real balance at the pool can be larger because of staking rewards.
func (a *Account) KnownDepositedBalance() Balance {
	if a.StakingInformation == nil {
		return Balance{}
	}
	return a.StakingInformation.DepositAmount
}

// TotalBalance includes the storage reserve, the deposit at the pool and the tokens attached
// to calls that are still in flight.
func (a *Account) TotalBalance(ctx *Context) (Balance, error) {
	inFlight, err := a.InFlightBalance()
	if err != nil {
		return Balance{}, err
	}
	total, err := ctx.AccountBalance.Add(a.KnownDepositedBalance())
	if err != nil {
		return Balance{}, err
	}
	return total.Add(inFlight)
}

// LockupEnd returns the moment the lockup expires. It's unknown until transfers are enabled.
func (a *Account) LockupEnd() (Timestamp, bool) {
	info := a.LockupInformation
	if !info.TransfersInformation.Enabled {
		return 0, false
	}
	end := info.TransfersInformation.TransfersTimestamp + Timestamp(info.LockupDuration)
	if end < info.TransfersInformation.TransfersTimestamp {
		end = ^Timestamp(0)
	}
	if info.LockupTimestamp != nil && *info.LockupTimestamp > end {
		end = *info.LockupTimestamp
	}
	return end, true
}

// UnvestedAmount is the vesting restriction used by the lockup views. A hash commitment
// without a disclosure doesn't restrict anything.
func (a *Account) UnvestedAmount(ctx *Context) (Balance, error) {
	v := a.VestingInformation
	switch v.Kind {
	case VestingKindNone, VestingKindHash:
		return Balance{}, nil
	case VestingKindSchedule:
		return v.Schedule.UnvestedAmount(a.LockupInformation.LockupAmount, a.VestingRamp, ctx.BlockTimestamp)
	case VestingKindTerminating:
		return v.Termination.UnvestedAmount, nil
	}
	return Balance{}, preconditionf("Unknown vesting information %q", string(v.Kind))
}

// UnvestedBalance is the explicit vesting view. A hash commitment has to be disclosed.
func (a *Account) UnvestedBalance(ctx *Context, disclosure *VestingScheduleWithSalt) (Balance, error) {
	switch a.VestingInformation.Kind {
	case VestingKindNone, VestingKindSchedule, VestingKindTerminating:
		if disclosure != nil {
			return Balance{}, preconditionf("Vesting schedule can only be disclosed for a vesting hash")
		}
		return a.UnvestedAmount(ctx)
	case VestingKindHash:
		s, err := a.AssertVesting(disclosure)
		if err != nil {
			return Balance{}, err
		}
		return s.UnvestedAmount(a.LockupInformation.LockupAmount, a.VestingRamp, ctx.BlockTimestamp)
	}
	return Balance{}, preconditionf("Unknown vesting information %q", string(a.VestingInformation.Kind))
}

// UnreleasedAmount is the part of the lockup amount the linear release still holds back.
// Nothing is released before transfers are enabled.
func (a *Account) UnreleasedAmount(ctx *Context) (Balance, error) {
	info := a.LockupInformation
	if info.ReleaseDuration == nil {
		return Balance{}, nil
	}
	if !info.TransfersInformation.Enabled {
		return info.LockupAmount, nil
	}
	duration := *info.ReleaseDuration
	start := info.TransfersInformation.TransfersTimestamp
	end := start + Timestamp(duration)
	if end < start {
		end = ^Timestamp(0)
	}
	now := ctx.BlockTimestamp
	if now >= end {
		return Balance{}, nil
	}
	if now <= start {
		return info.LockupAmount, nil
	}
	return info.LockupAmount.MulDiv(uint64(end-now), uint64(duration))
}

// LockedAmount is the amount locked because of the lockup, the release or the vesting.
func (a *Account) LockedAmount(ctx *Context) (Balance, error) {
	if end, ok := a.LockupEnd(); ok && end <= ctx.BlockTimestamp {
		unvested, err := a.UnvestedAmount(ctx)
		if err != nil {
			return Balance{}, err
		}
		unreleased, err := a.UnreleasedAmount(ctx)
		if err != nil {
			return Balance{}, err
		}
		return MaxBalance(unvested, unreleased), nil
	}
	// The entire balance is still locked before the lockup end.
	return a.LockupInformation.LockupAmount.Sub(a.LockupInformation.TerminationWithdrawnTokens)
}

// LockedVestedAmount is already vested but still locked because of the lockup.
func (a *Account) LockedVestedAmount(ctx *Context) (Balance, error) {
	locked, err := a.LockedAmount(ctx)
	if err != nil {
		return Balance{}, err
	}
	unvested, err := a.UnvestedAmount(ctx)
	if err != nil {
		return Balance{}, err
	}
	return locked.Sub(unvested)
}

// OwnersBalance includes vested tokens and the extra tokens sent to the account, some of
// them may be deposited to the staking pool. The storage reserve is excluded.
func (a *Account) OwnersBalance(ctx *Context) (Balance, error) {
	locked, err := a.LockedAmount(ctx)
	if err != nil {
		return Balance{}, err
	}
	total, err := a.AccountBalance(ctx).Add(a.KnownDepositedBalance())
	if err != nil {
		return Balance{}, err
	}
	return total.SaturatingSub(locked), nil
}

// LiquidOwnersBalance is the amount the owner can transfer right now.
func (a *Account) LiquidOwnersBalance(ctx *Context) (Balance, error) {
	owners, err := a.OwnersBalance(ctx)
	if err != nil {
		return Balance{}, err
	}
	return MinBalance(owners, a.AccountBalance(ctx)), nil
}

// LiquidBalance is the total balance without the locked amount and the storage reserve.
// It fails when the locked amount isn't covered, which means a balance bucket is stale.
func (a *Account) LiquidBalance(ctx *Context) (Balance, error) {
	total, err := a.TotalBalance(ctx)
	if err != nil {
		return Balance{}, err
	}
	locked, err := a.LockedAmount(ctx)
	if err != nil {
		return Balance{}, err
	}
	rest, err := total.Sub(locked)
	if err != nil {
		return Balance{}, err
	}
	return rest.Sub(ctx.StorageReserve)
}

func (a *Account) StakingPoolAccountID() *AccountID {
	if a.StakingInformation == nil {
		return nil
	}
	id := a.StakingInformation.StakingPoolAccountID
	return &id
}

// TerminatedUnvestedBalance is the frozen amount the foundation is yet to withdraw.
func (a *Account) TerminatedUnvestedBalance() Balance {
	if a.VestingInformation.Kind != VestingKindTerminating {
		return Balance{}
	}
	return a.VestingInformation.Termination.UnvestedAmount
}

// TerminatedUnvestedBalanceDeficit is the part of the frozen amount the account balance
// doesn't cover. It has to be pulled back from the staking pool.
func (a *Account) TerminatedUnvestedBalanceDeficit(ctx *Context) Balance {
	return a.TerminatedUnvestedBalance().SaturatingSub(a.AccountBalance(ctx))
}

// TerminationStatus returns nil if vesting was never terminated.
func (a *Account) TerminationStatus() *TerminationStatus {
	if a.VestingInformation.Kind == VestingKindTerminating {
		s := a.VestingInformation.Termination.Status
		return &s
	}
	if a.TerminationCompletedAt != nil {
		s := TerminationCompleted
		return &s
	}
	return nil
}

func (a *Account) IsRetired() bool {
	return a.RetiredAt != nil
}

func (a *Account) AreTransfersEnabled() bool {
	return a.LockupInformation.TransfersInformation.Enabled
}

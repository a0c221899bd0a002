// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// Guards are pure checks over the account state and the invocation context.
// A failed guard rejects the invocation before anything is mutated.

func (a *Account) AssertOwner(ctx *Context) error {
	if ctx.PredecessorAccountID != a.OwnerAccountID {
		return preconditionf("Can only be called by the owner")
	}
	return nil
}

func (a *Account) AssertCalledByFoundation(ctx *Context) error {
	if a.FoundationAccountID == nil {
		return preconditionf("No foundation account is specified in the contract")
	}
	if ctx.PredecessorAccountID != *a.FoundationAccountID {
		return preconditionf("Can only be called by NEAR Foundation")
	}
	return nil
}

// AssertSelf allows callbacks only.
func AssertSelf(ctx *Context) error {
	if ctx.PredecessorAccountID != ctx.CurrentAccountID {
		return preconditionf("Method is private")
	}
	return nil
}

// AssertVesting resolves the live vesting schedule. A hash commitment requires the
// disclosure; a clear schedule forbids it.
func (a *Account) AssertVesting(disclosure *VestingScheduleWithSalt) (VestingSchedule, error) {
	v := a.VestingInformation
	switch v.Kind {
	case VestingKindNone:
		return VestingSchedule{}, preconditionf("There is no vesting in this account")
	case VestingKindHash:
		if disclosure == nil {
			return VestingSchedule{}, preconditionf("Vesting schedule is required to be disclosed")
		}
		ok, err := disclosure.Matches(v.Hash)
		if err != nil {
			return VestingSchedule{}, err
		}
		if !ok {
			return VestingSchedule{}, preconditionf("The given vesting schedule doesn't match the vesting hash")
		}
		if err := disclosure.VestingSchedule.Validate(); err != nil {
			return VestingSchedule{}, err
		}
		return disclosure.VestingSchedule, nil
	case VestingKindSchedule:
		if disclosure != nil {
			return VestingSchedule{}, preconditionf("Vesting schedule is already known, it can't be disclosed again")
		}
		return *v.Schedule, nil
	case VestingKindTerminating:
		return VestingSchedule{}, preconditionf("Vesting was terminated")
	}
	return VestingSchedule{}, preconditionf("Unknown vesting information %q", string(v.Kind))
}

func (a *Account) AssertNoTermination() error {
	if a.VestingInformation.Kind == VestingKindTerminating {
		return preconditionf("All operations are blocked until vesting termination is completed")
	}
	return nil
}

func (a *Account) AssertTransfersEnabled() error {
	if !a.LockupInformation.TransfersInformation.Enabled {
		return preconditionf("Transfers are disabled")
	}
	return nil
}

func (a *Account) AssertTransfersDisabled() error {
	if a.LockupInformation.TransfersInformation.Enabled {
		return preconditionf("Transfers are already enabled")
	}
	return nil
}

// AssertNoStakingOrIdle passes when no pool is selected or the pool is idle.
func (a *Account) AssertNoStakingOrIdle() error {
	if a.StakingInformation == nil {
		return nil
	}
	return a.StakingInformation.assertIdle()
}

func (a *Account) AssertStakingPoolIsIdle() error {
	if a.StakingInformation == nil {
		return preconditionf("Staking pool is not selected")
	}
	return a.StakingInformation.assertIdle()
}

func (a *Account) AssertStakingPoolIsNotSelected() error {
	if a.StakingInformation != nil {
		return preconditionf("Staking pool is already selected")
	}
	return nil
}

func (s *StakingInformation) assertIdle() error {
	switch s.Status {
	case Idle:
		return nil
	case Busy:
		return ErrContractBusy
	}
	return preconditionf("Unknown staking status %q", string(s.Status))
}

func assertPositive(amount Balance) error {
	if amount.IsZero() {
		return preconditionf("Amount should be positive")
	}
	return nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// View is a snapshot of all read-only getters at one moment.
type View struct {
	OwnerAccountID                   AccountID
	StakingPoolAccountID             *AccountID         `json:",omitempty"`
	StakingStatus                    *TransactionStatus `json:",omitempty"`
	KnownDepositedBalance            Balance
	Balance                          Balance
	OwnersBalance                    Balance
	LiquidOwnersBalance              Balance
	LockedAmount                     Balance
	LockedVestedAmount               Balance
	UnvestedAmount                   Balance
	UnreleasedAmount                 Balance
	TerminatedUnvestedBalance        Balance
	TerminatedUnvestedBalanceDeficit Balance
	TerminationStatus                *TerminationStatus `json:",omitempty"`
	TransfersEnabled                 bool
	VestingKind                      VestingKind
	Retired                          bool
	PendingCallbacks                 int
}

func (a *Account) View(ctx *Context) (*View, error) {
	v := &View{
		OwnerAccountID:                   a.OwnerAccountID,
		StakingPoolAccountID:             a.StakingPoolAccountID(),
		KnownDepositedBalance:            a.KnownDepositedBalance(),
		TerminatedUnvestedBalance:        a.TerminatedUnvestedBalance(),
		TerminatedUnvestedBalanceDeficit: a.TerminatedUnvestedBalanceDeficit(ctx),
		TerminationStatus:                a.TerminationStatus(),
		TransfersEnabled:                 a.AreTransfersEnabled(),
		VestingKind:                      a.VestingInformation.Kind,
		Retired:                          a.IsRetired(),
		PendingCallbacks:                 a.PendingCount(),
	}
	if a.StakingInformation != nil {
		status := a.StakingInformation.Status
		v.StakingStatus = &status
	}

	var err error
	if v.Balance, err = a.TotalBalance(ctx); err != nil {
		return nil, err
	}
	if v.OwnersBalance, err = a.OwnersBalance(ctx); err != nil {
		return nil, err
	}
	if v.LiquidOwnersBalance, err = a.LiquidOwnersBalance(ctx); err != nil {
		return nil, err
	}
	if v.LockedAmount, err = a.LockedAmount(ctx); err != nil {
		return nil, err
	}
	if v.LockedVestedAmount, err = a.LockedVestedAmount(ctx); err != nil {
		return nil, err
	}
	if v.UnvestedAmount, err = a.UnvestedAmount(ctx); err != nil {
		return nil, err
	}
	if v.UnreleasedAmount, err = a.UnreleasedAmount(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// Account is the state of one lockup instance. It is loaded and saved as a whole at
// invocation boundaries.
type Account struct {
	OwnerAccountID AccountID
	// FoundationAccountID may terminate vesting. Released once a termination completes.
	FoundationAccountID           *AccountID `json:",omitempty"`
	StakingPoolWhitelistAccountID AccountID
	LockupInformation             LockupInformation
	VestingInformation            VestingInformation
	VestingRamp                   VestingRamp
	// StakingInformation is nil when no staking pool is selected.
	StakingInformation *StakingInformation `json:",omitempty"`
	// TerminationCompletedAt is set when the unvested amount was fully withdrawn.
	TerminationCompletedAt *Timestamp `json:",omitempty"`
	// FullAccessKey is handed to the owner when the lockup is retired.
	FullAccessKey []byte     `json:",omitempty"`
	RetiredAt     *Timestamp `json:",omitempty"`
	// Pending callbacks keyed by handle id.
	Pending map[string]PendingHandle `json:",omitempty"`
}

// InitArgs are the initialization terms provided by the deployer.
type InitArgs struct {
	OwnerAccountID AccountID
	LockupAmount   Balance
	LockupDuration Duration
	// LockupTimestamp is optional.
	LockupTimestamp *Timestamp
	// ReleaseDuration is optional.
	ReleaseDuration               *Duration
	TransfersInformation          TransfersInformation
	VestingInformation            VestingInformation
	VestingRamp                   VestingRamp
	StakingPoolWhitelistAccountID AccountID
	FoundationAccountID           *AccountID
}

// New initializes the lockup account.
func New(ctx *Context, args InitArgs) (*Account, error) {
	if err := args.OwnerAccountID.Validate(); err != nil {
		return nil, err
	}
	if err := args.StakingPoolWhitelistAccountID.Validate(); err != nil {
		return nil, preconditionf("The staking pool whitelist account ID is invalid")
	}
	if args.LockupAmount.IsZero() {
		return nil, preconditionf("Lockup amount has to be positive number")
	}
	total, err := args.LockupAmount.Add(ctx.StorageReserve)
	if err != nil {
		return nil, err
	}
	if ctx.AccountBalance.Lt(total) {
		return nil, preconditionf("The account balance %s doesn't cover the lockup amount %s and the storage reserve %s",
			ctx.AccountBalance, args.LockupAmount, ctx.StorageReserve)
	}

	vesting := args.VestingInformation
	if vesting.Kind == "" {
		vesting = NoVesting()
	}
	if err := vesting.Validate(); err != nil {
		return nil, err
	}
	switch vesting.Kind {
	case VestingKindNone:
		if args.FoundationAccountID != nil {
			return nil, preconditionf("Foundation account can't be added without vesting schedule")
		}
	case VestingKindHash, VestingKindSchedule:
		if args.FoundationAccountID == nil {
			return nil, preconditionf("Vesting is only supported with a foundation account that can terminate it")
		}
		if err := args.FoundationAccountID.Validate(); err != nil {
			return nil, preconditionf("Foundation account ID is invalid")
		}
	case VestingKindTerminating:
		return nil, preconditionf("Can't initialize with a terminating vesting")
	}

	if args.ReleaseDuration != nil {
		if *args.ReleaseDuration == 0 {
			return nil, preconditionf("Release duration has to be positive")
		}
		if vesting.Kind != VestingKindNone {
			return nil, preconditionf("Release duration can't be combined with vesting")
		}
	}

	ramp := args.VestingRamp
	if ramp == "" {
		ramp = RampFromCliff
	}
	if err := ramp.Validate(); err != nil {
		return nil, err
	}

	transfers := args.TransfersInformation
	if !transfers.Enabled {
		if err := transfers.TransferPollAccountID.Validate(); err != nil {
			return nil, preconditionf("Transfer poll account ID is invalid")
		}
	}

	a := &Account{
		OwnerAccountID:                args.OwnerAccountID,
		FoundationAccountID:           args.FoundationAccountID,
		StakingPoolWhitelistAccountID: args.StakingPoolWhitelistAccountID,
		LockupInformation: LockupInformation{
			LockupAmount:         args.LockupAmount,
			LockupDuration:       args.LockupDuration,
			LockupTimestamp:      args.LockupTimestamp,
			ReleaseDuration:      args.ReleaseDuration,
			TransfersInformation: transfers,
		},
		VestingInformation: vesting,
		VestingRamp:        ramp,
	}
	ctx.Log("Lockup of %s initialized for @%s", args.LockupAmount, args.OwnerAccountID)
	return a, nil
}

// Clone returns a deep copy of the account state.
func (a *Account) Clone() *Account {
	c := *a
	if a.FoundationAccountID != nil {
		id := *a.FoundationAccountID
		c.FoundationAccountID = &id
	}
	if a.LockupInformation.LockupTimestamp != nil {
		ts := *a.LockupInformation.LockupTimestamp
		c.LockupInformation.LockupTimestamp = &ts
	}
	if a.LockupInformation.ReleaseDuration != nil {
		d := *a.LockupInformation.ReleaseDuration
		c.LockupInformation.ReleaseDuration = &d
	}
	if a.VestingInformation.Hash != nil {
		c.VestingInformation.Hash = append([]byte(nil), a.VestingInformation.Hash...)
	}
	if a.VestingInformation.Schedule != nil {
		s := *a.VestingInformation.Schedule
		c.VestingInformation.Schedule = &s
	}
	if a.VestingInformation.Termination != nil {
		t := *a.VestingInformation.Termination
		c.VestingInformation.Termination = &t
	}
	if a.StakingInformation != nil {
		s := *a.StakingInformation
		c.StakingInformation = &s
	}
	if a.TerminationCompletedAt != nil {
		ts := *a.TerminationCompletedAt
		c.TerminationCompletedAt = &ts
	}
	if a.FullAccessKey != nil {
		c.FullAccessKey = append([]byte(nil), a.FullAccessKey...)
	}
	if a.RetiredAt != nil {
		ts := *a.RetiredAt
		c.RetiredAt = &ts
	}
	if a.Pending != nil {
		c.Pending = make(map[string]PendingHandle, len(a.Pending))
		for k, v := range a.Pending {
			c.Pending[k] = v
		}
	}
	return &c
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"encoding/json"
	"regexp"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Timestamp in nanoseconds.
type Timestamp uint64

// Duration in nanoseconds.
type Duration uint64

type AccountID string

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

func (id AccountID) String() string {
	return string(id)
}

// Validate checks the id against the host naming rules.
func (id AccountID) Validate() error {
	if len(id) < 2 || len(id) > 64 || !accountIDPattern.MatchString(string(id)) {
		return preconditionf("The account ID %q is invalid", string(id))
	}
	return nil
}

// maxBalanceBits keeps balances inside the u128 range used on the wire.
const maxBalanceBits = 128

// Balance is an amount of tokens in the smallest denomination. It is a value type.
type Balance struct {
	v uint256.Int
}

func NewBalance(v uint64) Balance {
	var b Balance
	b.v.SetUint64(v)
	return b
}

func ParseBalance(s string) (Balance, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Balance{}, errors.Wrapf(err, "failed to parse balance %q", s)
	}
	if v.BitLen() > maxBalanceBits {
		return Balance{}, errors.Errorf("balance %q exceeds 128 bits", s)
	}
	return Balance{v: *v}, nil
}

func MustParseBalance(s string) Balance {
	b, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Balance) String() string {
	return b.v.Dec()
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) Cmp(o Balance) int {
	return b.v.Cmp(&o.v)
}

func (b Balance) Lt(o Balance) bool {
	return b.v.Lt(&o.v)
}

func (b Balance) Add(o Balance) (Balance, error) {
	var res Balance
	_, overflow := res.v.AddOverflow(&b.v, &o.v)
	if overflow || res.v.BitLen() > maxBalanceBits {
		return Balance{}, arithmeticf("%s + %s overflows", b, o)
	}
	return res, nil
}

// Sub fails closed: an underflow means a balance bucket is stale or corrupted.
func (b Balance) Sub(o Balance) (Balance, error) {
	var res Balance
	if _, underflow := res.v.SubOverflow(&b.v, &o.v); underflow {
		return Balance{}, arithmeticf("%s - %s underflows", b, o)
	}
	return res, nil
}

func (b Balance) SaturatingSub(o Balance) Balance {
	if b.Lt(o) {
		return Balance{}
	}
	var res Balance
	res.v.Sub(&b.v, &o.v)
	return res
}

// MulDiv returns b * num / den rounded down.
func (b Balance) MulDiv(num, den uint64) (Balance, error) {
	if den == 0 {
		return Balance{}, arithmeticf("division by zero")
	}
	var res Balance
	_, overflow := res.v.MulDivOverflow(&b.v, uint256.NewInt(num), uint256.NewInt(den))
	if overflow || res.v.BitLen() > maxBalanceBits {
		return Balance{}, arithmeticf("%s * %d / %d overflows", b, num, den)
	}
	return res, nil
}

func MinBalance(a, b Balance) Balance {
	if a.Lt(b) {
		return a
	}
	return b
}

func MaxBalance(a, b Balance) Balance {
	if a.Lt(b) {
		return b
	}
	return a
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "balance should be a decimal string")
	}
	parsed, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// LockupInformation contains information about token lockups.
type LockupInformation struct {
	// LockupAmount is the amount locked for this account at initialization.
	LockupAmount Balance
	// TerminationWithdrawnTokens is the amount already withdrawn by the foundation
	// because of an early vesting termination.
	TerminationWithdrawnTokens Balance
	// LockupDuration counted from the moment transfers were enabled.
	LockupDuration Duration
	// LockupTimestamp is an optional absolute unlock time. The later of the two wins.
	LockupTimestamp *Timestamp `json:",omitempty"`
	// ReleaseDuration is an optional linear release of the lockup amount. It starts when
	// transfers are enabled and can't be combined with vesting.
	ReleaseDuration      *Duration `json:",omitempty"`
	TransfersInformation TransfersInformation
}

// TransfersInformation is a one-way flag. Once enabled, transfers can't be disabled.
type TransfersInformation struct {
	Enabled            bool
	TransfersTimestamp Timestamp `json:",omitempty"`
	// TransferPollAccountID is consulted while transfers are disabled.
	TransferPollAccountID AccountID `json:",omitempty"`
}

func TransfersEnabledAt(ts Timestamp) TransfersInformation {
	return TransfersInformation{Enabled: true, TransfersTimestamp: ts}
}

func TransfersDisabledUntilVote(poll AccountID) TransfersInformation {
	return TransfersInformation{TransferPollAccountID: poll}
}

// TransactionStatus of the staking pool delegation.
type TransactionStatus string

const (
	Idle TransactionStatus = "Idle"
	Busy TransactionStatus = "Busy"
)

// StakingInformation is present iff a staking pool is selected.
type StakingInformation struct {
	StakingPoolAccountID AccountID
	Status               TransactionStatus
	// DepositAmount is the best-known amount held at the pool.
	// The real balance at the pool may be higher because of rewards.
	DepositAmount Balance
}

type TerminationStatus string

const (
	// Initialized: vesting was terminated and the stake has to be drained from the pool.
	TerminationInitialized                   TerminationStatus = "VestingTerminatedWithDeficit"
	TerminationUnstakingInProgress           TerminationStatus = "UnstakingInProgress"
	TerminationEverythingUnstaked            TerminationStatus = "EverythingUnstaked"
	TerminationWithdrawingFromPoolInProgress TerminationStatus = "WithdrawingFromStakingPoolInProgress"
	TerminationReadyToWithdraw               TerminationStatus = "ReadyToWithdraw"
	TerminationWithdrawingFromAccount        TerminationStatus = "WithdrawingFromAccountInProgress"
	TerminationCompleted                     TerminationStatus = "Completed"
)

// TerminationInformation is the state of an early vesting termination.
type TerminationInformation struct {
	// UnvestedAmount is frozen at the moment of termination and only decreases by withdrawals.
	UnvestedAmount Balance
	Status         TerminationStatus
}

// PollResult is returned by the transfer poll once transfers were voted in.
type PollResult struct {
	ProposalID  uint64
	Timestamp   Timestamp
	BlockHeight uint64
}

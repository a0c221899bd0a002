// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"bytes"
	"crypto/sha256"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

const VestingHashSize = sha256.Size

// VestingSchedule has a single cliff and a single linear ramp.
type VestingSchedule struct {
	// StartTimestamp is when vesting starts, e.g. the start date of employment.
	StartTimestamp Timestamp
	// CliffTimestamp: nothing is vested before it.
	CliffTimestamp Timestamp
	// EndTimestamp: everything is vested at and after it.
	EndTimestamp Timestamp
}

func (s VestingSchedule) Validate() error {
	if s.StartTimestamp > s.CliffTimestamp {
		return preconditionf("Cliff timestamp can't be earlier than vesting start timestamp")
	}
	if s.CliffTimestamp > s.EndTimestamp {
		return preconditionf("Cliff timestamp can't be later than vesting end timestamp")
	}
	if s.StartTimestamp >= s.EndTimestamp {
		return preconditionf("The total vesting time should be positive")
	}
	return nil
}

// VestingRamp decides where the linear part of the schedule starts.
type VestingRamp string

const (
	// RampFromCliff: fully unvested until the cliff, then linear from the cliff to the end.
	RampFromCliff VestingRamp = "FromCliff"
	// RampFromStart: linear from the start, the accrued part vests at once at the cliff.
	RampFromStart VestingRamp = "FromStart"
)

func (r VestingRamp) Validate() error {
	switch r {
	case RampFromCliff, RampFromStart:
		return nil
	}
	return preconditionf("Unknown vesting ramp %q", string(r))
}

// UnvestedAmount returns the part of lockupAmount that is not vested at now.
func (s VestingSchedule) UnvestedAmount(lockupAmount Balance, ramp VestingRamp, now Timestamp) (Balance, error) {
	if now < s.CliffTimestamp {
		return lockupAmount, nil
	}
	if now >= s.EndTimestamp {
		return Balance{}, nil
	}
	if err := ramp.Validate(); err != nil {
		return Balance{}, err
	}
	var rampStart Timestamp
	switch ramp {
	case RampFromCliff:
		rampStart = s.CliffTimestamp
	case RampFromStart:
		rampStart = s.StartTimestamp
	}
	// cliff <= now < end, so both are positive and timeLeft < totalTime
	timeLeft := uint64(s.EndTimestamp - now)
	totalTime := uint64(s.EndTimestamp - rampStart)
	return lockupAmount.MulDiv(timeLeft, totalTime)
}

// VestingScheduleWithSalt is the disclosure of a hash-committed schedule.
type VestingScheduleWithSalt struct {
	VestingSchedule VestingSchedule
	Salt            []byte
}

type borshScheduleWithSalt struct {
	Start uint64
	Cliff uint64
	End   uint64
	Salt  []byte
}

// Hash is sha256 over the borsh encoding of the schedule followed by the salt.
func (v VestingScheduleWithSalt) Hash() ([]byte, error) {
	encoded, err := borsh.Serialize(borshScheduleWithSalt{
		Start: uint64(v.VestingSchedule.StartTimestamp),
		Cliff: uint64(v.VestingSchedule.CliffTimestamp),
		End:   uint64(v.VestingSchedule.EndTimestamp),
		Salt:  v.Salt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode vesting schedule")
	}
	sum := sha256.Sum256(encoded)
	return sum[:], nil
}

func (v VestingScheduleWithSalt) Matches(hash []byte) (bool, error) {
	h, err := v.Hash()
	if err != nil {
		return false, err
	}
	return bytes.Equal(h, hash), nil
}

type VestingKind string

const (
	VestingKindNone        VestingKind = "None"
	VestingKindHash        VestingKind = "VestingHash"
	VestingKindSchedule    VestingKind = "VestingSchedule"
	VestingKindTerminating VestingKind = "Terminating"
)

// VestingInformation is a tagged union. Exactly one payload matches Kind.
type VestingInformation struct {
	Kind        VestingKind
	Hash        []byte                  `json:",omitempty"`
	Schedule    *VestingSchedule        `json:",omitempty"`
	Termination *TerminationInformation `json:",omitempty"`
}

func NoVesting() VestingInformation {
	return VestingInformation{Kind: VestingKindNone}
}

func VestingHash(hash []byte) VestingInformation {
	return VestingInformation{Kind: VestingKindHash, Hash: append([]byte(nil), hash...)}
}

func VestingWithSchedule(s VestingSchedule) VestingInformation {
	return VestingInformation{Kind: VestingKindSchedule, Schedule: &s}
}

func Terminating(info TerminationInformation) VestingInformation {
	return VestingInformation{Kind: VestingKindTerminating, Termination: &info}
}

// Validate checks that the payload matches the tag.
func (v VestingInformation) Validate() error {
	switch v.Kind {
	case VestingKindNone:
		if v.Hash != nil || v.Schedule != nil || v.Termination != nil {
			return preconditionf("No vesting can't carry a payload")
		}
		return nil
	case VestingKindHash:
		if len(v.Hash) != VestingHashSize {
			return preconditionf("Vesting hash should be %d bytes", VestingHashSize)
		}
		return nil
	case VestingKindSchedule:
		if v.Schedule == nil {
			return preconditionf("Vesting schedule is missing")
		}
		return v.Schedule.Validate()
	case VestingKindTerminating:
		if v.Termination == nil {
			return preconditionf("Termination information is missing")
		}
		return nil
	}
	return preconditionf("Unknown vesting information %q", string(v.Kind))
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
)

type DeployRequest struct {
	// Funder pays the deposit that becomes the initial balance of the account.
	Funder  lockup.AccountID `json:"funder"`
	Deposit lockup.Balance   `json:"deposit"`

	OwnerAccountID  lockup.AccountID  `json:"owner_account_id"`
	LockupAmount    lockup.Balance    `json:"lockup_amount"`
	LockupDuration  lockup.Duration   `json:"lockup_duration"`
	LockupTimestamp *lockup.Timestamp `json:"lockup_timestamp,omitempty"`
	ReleaseDuration *lockup.Duration  `json:"release_duration,omitempty"`
	// TransfersEnabledAt is set if transfers are already enabled, otherwise the poll decides.
	TransfersEnabledAt    *lockup.Timestamp `json:"transfers_enabled_at,omitempty"`
	TransferPollAccountID lockup.AccountID  `json:"transfer_poll_account_id,omitempty"`

	VestingSchedule *lockup.VestingSchedule `json:"vesting_schedule,omitempty"`
	// VestingHash is base58.
	VestingHash string             `json:"vesting_hash,omitempty"`
	VestingRamp lockup.VestingRamp `json:"vesting_ramp,omitempty"`

	StakingPoolWhitelistAccountID lockup.AccountID  `json:"staking_pool_whitelist_account_id"`
	FoundationAccountID           *lockup.AccountID `json:"foundation_account_id,omitempty"`
}

func (r *DeployRequest) InitArgs() (lockup.InitArgs, error) {
	args := lockup.InitArgs{
		OwnerAccountID:                r.OwnerAccountID,
		LockupAmount:                  r.LockupAmount,
		LockupDuration:                r.LockupDuration,
		LockupTimestamp:               r.LockupTimestamp,
		ReleaseDuration:               r.ReleaseDuration,
		VestingRamp:                   r.VestingRamp,
		StakingPoolWhitelistAccountID: r.StakingPoolWhitelistAccountID,
		FoundationAccountID:           r.FoundationAccountID,
	}

	if r.TransfersEnabledAt != nil {
		args.TransfersInformation = lockup.TransfersEnabledAt(*r.TransfersEnabledAt)
	} else {
		args.TransfersInformation = lockup.TransfersDisabledUntilVote(r.TransferPollAccountID)
	}

	switch {
	case r.VestingSchedule != nil && r.VestingHash != "":
		return lockup.InitArgs{}, errors.New("only one of vesting_schedule and vesting_hash can be set")
	case r.VestingSchedule != nil:
		args.VestingInformation = lockup.VestingWithSchedule(*r.VestingSchedule)
	case r.VestingHash != "":
		hash, err := base58.Decode(r.VestingHash)
		if err != nil {
			return lockup.InitArgs{}, errors.Wrap(err, "vesting_hash should be base58")
		}
		args.VestingInformation = lockup.VestingHash(hash)
	default:
		args.VestingInformation = lockup.NoVesting()
	}
	return args, nil
}

// DisclosureArgs is the text form of a schedule with its salt.
type DisclosureArgs struct {
	VestingSchedule lockup.VestingSchedule `json:"vesting_schedule"`
	// Salt is base58.
	Salt string `json:"salt"`
}

func (d *DisclosureArgs) Disclosure() (*lockup.VestingScheduleWithSalt, error) {
	if d == nil {
		return nil, nil
	}
	salt, err := base58.Decode(d.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "salt should be base58")
	}
	return &lockup.VestingScheduleWithSalt{VestingSchedule: d.VestingSchedule, Salt: salt}, nil
}

type BalanceResponse struct {
	Balance lockup.Balance `json:"balance"`
}

type ReceiptsResponse struct {
	Processed int `json:"processed"`
	Pending   int `json:"pending"`
}

func readBody(ctx echo.Context) ([]byte, error) {
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

func decode(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}

func disclosureFromQuery(ctx echo.Context) (*lockup.VestingScheduleWithSalt, error) {
	names := []string{"start", "cliff", "end", "salt"}
	var set int
	for _, n := range names {
		if ctx.QueryParam(n) != "" {
			set++
		}
	}
	if set == 0 {
		return nil, nil
	}
	if set != len(names) {
		return nil, errors.New("disclosure needs start, cliff, end and salt")
	}

	var ts [3]lockup.Timestamp
	for i, n := range names[:3] {
		v, err := strconv.ParseUint(ctx.QueryParam(n), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s should be a timestamp", n)
		}
		ts[i] = lockup.Timestamp(v)
	}
	d := &DisclosureArgs{
		VestingSchedule: lockup.VestingSchedule{StartTimestamp: ts[0], CliffTimestamp: ts[1], EndTimestamp: ts[2]},
		Salt:            ctx.QueryParam("salt"),
	}
	return d.Disclosure()
}

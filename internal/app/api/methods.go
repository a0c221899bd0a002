// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
)

// Method binds the json arguments of a lockup method.
type Method func(body []byte) (runtime.Operation, error)

type amountArgs struct {
	Amount *lockup.Balance `json:"amount"`
}

func (a amountArgs) amount() (lockup.Balance, error) {
	if a.Amount == nil {
		return lockup.Balance{}, errors.New("amount is required")
	}
	return *a.Amount, nil
}

type poolArgs struct {
	StakingPoolAccountID lockup.AccountID `json:"staking_pool_account_id"`
}

type transferArgs struct {
	amountArgs
	ReceiverID lockup.AccountID `json:"receiver_id"`
}

type receiverArgs struct {
	ReceiverID lockup.AccountID `json:"receiver_id"`
}

type fullAccessKeyArgs struct {
	// NewPublicKey is base58.
	NewPublicKey string `json:"new_public_key"`
}

type terminateArgs struct {
	VestingScheduleWithSalt *DisclosureArgs `json:"vesting_schedule_with_salt,omitempty"`
}

func noArgs(call func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error)) Method {
	return func(body []byte) (runtime.Operation, error) {
		if err := decode(body, &struct{}{}); err != nil {
			return nil, err
		}
		return call, nil
	}
}

func withAmount(call func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error)) Method {
	return func(body []byte) (runtime.Operation, error) {
		var args amountArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		amount, err := args.amount()
		if err != nil {
			return nil, err
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return call(a, ctx, amount)
		}, nil
	}
}

var methods = map[string]Method{
	"add_full_access_key": func(body []byte) (runtime.Operation, error) {
		var args fullAccessKeyArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		key, err := base58.Decode(args.NewPublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "new_public_key should be base58")
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return nil, a.AddFullAccessKey(ctx, key)
		}, nil
	},
	"select_staking_pool": func(body []byte) (runtime.Operation, error) {
		var args poolArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return a.SelectStakingPool(ctx, args.StakingPoolAccountID)
		}, nil
	},
	"unselect_staking_pool": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.UnselectStakingPool(ctx)
	}),
	"deposit_to_staking_pool": withAmount(func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error) {
		return a.DepositToStakingPool(ctx, amount)
	}),
	"deposit_and_stake": withAmount(func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error) {
		return a.DepositAndStake(ctx, amount)
	}),
	"refresh_staking_pool_balance": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.RefreshStakingPoolBalance(ctx)
	}),
	"withdraw_from_staking_pool": withAmount(func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error) {
		return a.WithdrawFromStakingPool(ctx, amount)
	}),
	"withdraw_all_from_staking_pool": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.WithdrawAllFromStakingPool(ctx)
	}),
	"stake": withAmount(func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error) {
		return a.Stake(ctx, amount)
	}),
	"unstake": withAmount(func(a *lockup.Account, ctx *lockup.Context, amount lockup.Balance) (*lockup.Promise, error) {
		return a.Unstake(ctx, amount)
	}),
	"unstake_all": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.UnstakeAll(ctx)
	}),
	"check_transfers_vote": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.CheckTransfersVote(ctx)
	}),
	"transfer": func(body []byte) (runtime.Operation, error) {
		var args transferArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		amount, err := args.amount()
		if err != nil {
			return nil, err
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return a.Transfer(ctx, amount, args.ReceiverID)
		}, nil
	},
	"terminate_vesting": func(body []byte) (runtime.Operation, error) {
		var args terminateArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		disclosure, err := args.VestingScheduleWithSalt.Disclosure()
		if err != nil {
			return nil, err
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return nil, a.TerminateVesting(ctx, disclosure)
		}, nil
	},
	"termination_prepare_to_withdraw": noArgs(func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
		return a.TerminationPrepareToWithdraw(ctx)
	}),
	"termination_withdraw": func(body []byte) (runtime.Operation, error) {
		var args receiverArgs
		if err := decode(body, &args); err != nil {
			return nil, err
		}
		return func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error) {
			return a.TerminationWithdraw(ctx, args.ReceiverID)
		}, nil
	},
}

// MethodNames lists the invocable methods in alphabetical order.
func MethodNames() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

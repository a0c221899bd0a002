// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"github.com/google/uuid"
)

// CallKind is a method of an external collaborator.
type CallKind string

const (
	CallTransfer                  CallKind = "transfer"
	CallIsWhitelisted             CallKind = "is_whitelisted"
	CallGetResult                 CallKind = "get_result"
	CallDeposit                   CallKind = "deposit"
	CallDepositAndStake           CallKind = "deposit_and_stake"
	CallStake                     CallKind = "stake"
	CallUnstake                   CallKind = "unstake"
	CallUnstakeAll                CallKind = "unstake_all"
	CallWithdraw                  CallKind = "withdraw"
	CallGetAccountStakedBalance   CallKind = "get_account_staked_balance"
	CallGetAccountUnstakedBalance CallKind = "get_account_unstaked_balance"
	CallGetAccountTotalBalance    CallKind = "get_account_total_balance"
)

// Call is an outgoing cross-account call.
type Call struct {
	Kind     CallKind
	Receiver AccountID
	// Amount is the method argument for staking calls and the transferred amount for transfers.
	Amount Balance
	// Attached tokens leave the account when the call is dispatched.
	Attached Balance
	// Argument is an account id argument, e.g. the pool checked against the whitelist.
	Argument AccountID `json:",omitempty"`
}

type CallbackKind string

const (
	OnWhitelistIsWhitelisted                     CallbackKind = "on_whitelist_is_whitelisted"
	OnStakingPoolGetTotalBalanceToUnselect       CallbackKind = "on_staking_pool_get_total_balance_to_unselect"
	OnStakingPoolDeposit                         CallbackKind = "on_staking_pool_deposit"
	OnStakingPoolDepositAndStake                 CallbackKind = "on_staking_pool_deposit_and_stake"
	OnStakingPoolWithdraw                        CallbackKind = "on_staking_pool_withdraw"
	OnStakingPoolStake                           CallbackKind = "on_staking_pool_stake"
	OnStakingPoolUnstake                         CallbackKind = "on_staking_pool_unstake"
	OnStakingPoolUnstakeAll                      CallbackKind = "on_staking_pool_unstake_all"
	OnGetAccountTotalBalance                     CallbackKind = "on_get_account_total_balance"
	OnGetAccountUnstakedBalanceToWithdrawByOwner CallbackKind = "on_get_account_unstaked_balance_to_withdraw_by_owner"
	OnGetResultFromTransferPoll                  CallbackKind = "on_get_result_from_transfer_poll"
	OnGetAccountStakedBalanceToUnstake           CallbackKind = "on_get_account_staked_balance_to_unstake"
	OnStakingPoolUnstakeForTermination           CallbackKind = "on_staking_pool_unstake_for_termination"
	OnGetAccountUnstakedBalanceToWithdraw        CallbackKind = "on_get_account_unstaked_balance_to_withdraw"
	OnStakingPoolWithdrawForTermination          CallbackKind = "on_staking_pool_withdraw_for_termination"
	OnWithdrawUnvestedAmount                     CallbackKind = "on_withdraw_unvested_amount"
)

// PendingHandle is kept in the account state until the matching callback resolves it.
type PendingHandle struct {
	ID       uuid.UUID
	Callback CallbackKind
	// Amount is the callback argument.
	Amount Balance
	// Attached is the amount that left the account with the call. It is in flight until resolved.
	Attached Balance
	// Target is the counterparty: the pool, the poll or the receiver of a transfer.
	Target AccountID
	// Argument is the account id the callback acts on, e.g. the pool being selected.
	Argument     AccountID `json:",omitempty"`
	DispatchedAt Timestamp
}

// Promise is the result of a dispatching operation: one outgoing call and an optional callback.
type Promise struct {
	Call   Call
	Handle *PendingHandle `json:",omitempty"`
}

// Outcome of an external call as observed by the callback.
type Outcome struct {
	Succeeded bool
	// Balance is the value returned by balance getters.
	Balance Balance
	// Whitelisted is the value returned by the whitelist.
	Whitelisted bool
	// Poll is the value returned by the transfer poll, nil if transfers weren't voted in.
	Poll *PollResult `json:",omitempty"`
}

func Failed() Outcome {
	return Outcome{}
}

func Succeeded() Outcome {
	return Outcome{Succeeded: true}
}

func SucceededWithBalance(b Balance) Outcome {
	return Outcome{Succeeded: true, Balance: b}
}

func (a *Account) dispatch(ctx *Context, call Call, callback CallbackKind, amount Balance) *Promise {
	h := PendingHandle{
		ID:           uuid.New(),
		Callback:     callback,
		Amount:       amount,
		Attached:     call.Attached,
		Target:       call.Receiver,
		Argument:     call.Argument,
		DispatchedAt: ctx.BlockTimestamp,
	}
	if a.Pending == nil {
		a.Pending = make(map[string]PendingHandle)
	}
	a.Pending[h.ID.String()] = h
	return &Promise{Call: call, Handle: &h}
}

func (a *Account) stakingPoolCall(kind CallKind, amount Balance) Call {
	return Call{
		Kind:     kind,
		Receiver: a.StakingInformation.StakingPoolAccountID,
		Amount:   amount,
	}
}

// InFlightBalance is the sum of tokens attached to calls whose callbacks are still pending.
func (a *Account) InFlightBalance() (Balance, error) {
	var total Balance
	for _, h := range a.Pending {
		var err error
		total, err = total.Add(h.Attached)
		if err != nil {
			return Balance{}, err
		}
	}
	return total, nil
}

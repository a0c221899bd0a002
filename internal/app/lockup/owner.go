// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

// CheckTransfersVote asks the transfer poll whether transfers were voted in. Once enabled,
// transfers can't be disabled anymore.
func (a *Account) CheckTransfersVote(ctx *Context) (*Promise, error) {
	if err := a.AssertOwner(ctx); err != nil {
		return nil, err
	}
	if err := a.AssertTransfersDisabled(); err != nil {
		return nil, err
	}
	if err := a.AssertNoTermination(); err != nil {
		return nil, err
	}
	poll := a.LockupInformation.TransfersInformation.TransferPollAccountID
	ctx.Log("Checking that transfers are enabled at the transfer poll contract @%s", poll)
	return a.dispatch(ctx, Call{Kind: CallGetResult, Receiver: poll}, OnGetResultFromTransferPoll, Balance{}), nil
}

// Transfer sends the amount to the receiver. Only the liquid owner's balance can be sent.
func (a *Account) Transfer(ctx *Context, amount Balance, receiver AccountID) (*Promise, error) {
	if err := a.AssertOwner(ctx); err != nil {
		return nil, err
	}
	if err := assertPositive(amount); err != nil {
		return nil, err
	}
	if err := receiver.Validate(); err != nil {
		return nil, preconditionf("The receiver account ID is invalid")
	}
	if err := a.AssertTransfersEnabled(); err != nil {
		return nil, err
	}
	if err := a.AssertNoStakingOrIdle(); err != nil {
		return nil, err
	}
	if err := a.AssertNoTermination(); err != nil {
		return nil, err
	}
	available, err := a.LiquidOwnersBalance(ctx)
	if err != nil {
		return nil, err
	}
	liquid, err := a.LiquidBalance(ctx)
	if err != nil {
		return nil, err
	}
	available = MinBalance(available, liquid)
	if available.Lt(amount) {
		return nil, preconditionf("The available liquid balance %s is smaller than the requested transfer amount %s",
			available, amount)
	}
	ctx.Log("Transferring %s to account @%s", amount, receiver)
	return &Promise{Call: Call{Kind: CallTransfer, Receiver: receiver, Amount: amount, Attached: amount}}, nil
}

func (a *Account) onGetResultFromTransferPoll(ctx *Context, h PendingHandle, o Outcome) (*Promise, error) {
	if err := a.AssertTransfersDisabled(); err != nil {
		return nil, err
	}
	switch {
	case !o.Succeeded:
		ctx.Log("Fetching the result from the transfer poll @%s has failed", h.Target)
	case o.Poll == nil:
		ctx.Log("The transfers are not enabled yet")
	default:
		ctx.Log("Transfers were successfully enabled at %d", o.Poll.Timestamp)
		a.LockupInformation.TransfersInformation = TransfersEnabledAt(o.Poll.Timestamp)
	}
	return nil, nil
}

// FullAccessKeySize is the size of an ed25519 public key.
const FullAccessKeySize = 32

// AddFullAccessKey retires the lockup: the owner gets a full access key and uses the account
// as a regular one. Everything has to be vested and unlocked, and a termination has to be
// finished.
func (a *Account) AddFullAccessKey(ctx *Context, key []byte) error {
	if err := a.AssertOwner(ctx); err != nil {
		return err
	}
	if len(key) != FullAccessKeySize {
		return preconditionf("Public key should be %d bytes", FullAccessKeySize)
	}
	if a.IsRetired() {
		return preconditionf("The lockup is already retired")
	}
	if err := a.AssertTransfersEnabled(); err != nil {
		return err
	}
	if err := a.AssertNoStakingOrIdle(); err != nil {
		return err
	}
	if err := a.AssertNoTermination(); err != nil {
		return err
	}
	locked, err := a.LockedAmount(ctx)
	if err != nil {
		return err
	}
	if !locked.IsZero() {
		return preconditionf("Tokens are still locked/unvested")
	}
	ctx.Log("Adding a full access key")
	a.FullAccessKey = append([]byte(nil), key...)
	retiredAt := ctx.BlockTimestamp
	a.RetiredAt = &retiredAt
	return nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/events"
)

// maxSettleRounds bounds Settle, no callback chain of the lockup is longer than two hops.
const maxSettleRounds = 16

// Receipt is a dispatched call waiting for execution and, if it has a handle, for its
// callback.
type Receipt struct {
	ID        uuid.UUID
	AccountID lockup.AccountID
	Promise   lockup.Promise

	executed bool
	outcome  lockup.Outcome
}

func (h *Host) enqueue(id lockup.AccountID, p *lockup.Promise) {
	h.queue = append(h.queue, &Receipt{
		ID:        uuid.New(),
		AccountID: id,
		Promise:   *p,
	})
	h.metrics.Dispatches.Inc()
	h.common.PendingReceipts.Set(float64(len(h.queue)))
}

// PendingReceipts is the number of queued calls.
func (h *Host) PendingReceipts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// ProcessReceipts executes the calls queued so far and resolves their callbacks. Calls
// dispatched by the callbacks are left for the next round. On an infrastructure error the
// unprocessed receipts stay queued.
func (h *Host) ProcessReceipts(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	batch := h.queue
	h.queue = nil
	defer func() {
		h.common.PendingReceipts.Set(float64(len(h.queue)))
		h.common.ReceiptProcessingTime.Set(time.Since(start).Seconds())
	}()

	for i, r := range batch {
		if err := h.process(ctx, r); err != nil {
			h.queue = append(append([]*Receipt(nil), batch[i:]...), h.queue...)
			return i, errors.Wrapf(err, "failed to process receipt %s of %s", r.ID, r.AccountID)
		}
	}
	return len(batch), nil
}

// Settle processes receipts until none are left.
func (h *Host) Settle(ctx context.Context) error {
	for i := 0; i < maxSettleRounds; i++ {
		if h.PendingReceipts() == 0 {
			return nil
		}
		if _, err := h.ProcessReceipts(ctx); err != nil {
			return err
		}
	}
	return errors.Errorf("receipts are still pending after %d rounds", maxSettleRounds)
}

func (h *Host) process(ctx context.Context, r *Receipt) error {
	log := h.log.WithFields(logrus.Fields{
		"account_id": r.AccountID,
		"receipt":    r.ID,
		"call":       r.Promise.Call.Kind,
		"receiver":   r.Promise.Call.Receiver,
	})
	if !r.executed {
		outcome, err := h.execute(ctx, log, r.AccountID, r.Promise.Call)
		if err != nil {
			return err
		}
		r.outcome = outcome
		r.executed = true

		call, o := r.Promise.Call, outcome
		e := events.New(events.Executed, r.AccountID, string(call.Kind))
		e.Call = &call
		e.Outcome = &o
		e.BlockTime = h.clock.Now()
		if err := h.sink.Publish(ctx, e); err != nil {
			log.WithError(err).Warn("failed to publish event")
		} else {
			h.metrics.Events.Inc()
		}
	}
	if r.Promise.Handle == nil {
		return nil
	}
	return h.resolve(ctx, log, r)
}

// execute runs the call against its receiver. A failed call returns the attached tokens to
// the caller and yields a failed outcome; only infrastructure errors are returned.
func (h *Host) execute(ctx context.Context, log logrus.FieldLogger, caller lockup.AccountID, call lockup.Call) (lockup.Outcome, error) {
	if !call.Attached.IsZero() {
		if err := h.ledger.Transfer(ctx, EscrowAccountID, call.Receiver, call.Attached); err != nil {
			return lockup.Outcome{}, errors.Wrap(err, "failed to deliver attached tokens")
		}
	}
	outcome, err := h.call(ctx, caller, call)
	if err == nil {
		return outcome, nil
	}

	h.metrics.FailedCalls.Inc()
	log.WithError(err).Info("call failed")
	if !call.Attached.IsZero() {
		if err := h.ledger.Transfer(ctx, call.Receiver, caller, call.Attached); err != nil {
			return lockup.Outcome{}, errors.Wrap(err, "failed to refund attached tokens")
		}
	}
	return lockup.Failed(), nil
}

func (h *Host) call(ctx context.Context, caller lockup.AccountID, call lockup.Call) (lockup.Outcome, error) {
	withBalance := func(b lockup.Balance, err error) (lockup.Outcome, error) {
		if err != nil {
			return lockup.Outcome{}, err
		}
		return lockup.SucceededWithBalance(b), nil
	}
	done := func(err error) (lockup.Outcome, error) {
		if err != nil {
			return lockup.Outcome{}, err
		}
		return lockup.Succeeded(), nil
	}

	switch call.Kind {
	case lockup.CallTransfer:
		return lockup.Succeeded(), nil
	case lockup.CallIsWhitelisted:
		w, ok := h.whitelists[call.Receiver]
		if !ok {
			return lockup.Outcome{}, errors.Errorf("account %s is not a whitelist", call.Receiver)
		}
		whitelisted, err := w.IsWhitelisted(ctx, call.Argument)
		if err != nil {
			return lockup.Outcome{}, err
		}
		return lockup.Outcome{Succeeded: true, Whitelisted: whitelisted}, nil
	case lockup.CallGetResult:
		p, ok := h.polls[call.Receiver]
		if !ok {
			return lockup.Outcome{}, errors.Errorf("account %s is not a transfer poll", call.Receiver)
		}
		result, err := p.GetResult(ctx)
		if err != nil {
			return lockup.Outcome{}, err
		}
		return lockup.Outcome{Succeeded: true, Poll: result}, nil
	case lockup.CallDeposit, lockup.CallDepositAndStake, lockup.CallStake, lockup.CallUnstake,
		lockup.CallUnstakeAll, lockup.CallWithdraw, lockup.CallGetAccountStakedBalance,
		lockup.CallGetAccountUnstakedBalance, lockup.CallGetAccountTotalBalance:
	}

	pool, ok := h.pools[call.Receiver]
	if !ok {
		return lockup.Outcome{}, errors.Errorf("account %s is not a staking pool", call.Receiver)
	}
	switch call.Kind {
	case lockup.CallDeposit:
		return done(pool.Deposit(ctx, caller, call.Amount))
	case lockup.CallDepositAndStake:
		return done(pool.DepositAndStake(ctx, caller, call.Amount))
	case lockup.CallStake:
		return done(pool.Stake(ctx, caller, call.Amount))
	case lockup.CallUnstake:
		return done(pool.Unstake(ctx, caller, call.Amount))
	case lockup.CallUnstakeAll:
		return done(pool.UnstakeAll(ctx, caller))
	case lockup.CallWithdraw:
		return done(pool.Withdraw(ctx, caller, call.Amount))
	case lockup.CallGetAccountStakedBalance:
		return withBalance(pool.GetAccountStakedBalance(ctx, caller))
	case lockup.CallGetAccountUnstakedBalance:
		return withBalance(pool.GetAccountUnstakedBalance(ctx, caller))
	case lockup.CallGetAccountTotalBalance:
		return withBalance(pool.GetAccountTotalBalance(ctx, caller))
	case lockup.CallTransfer, lockup.CallIsWhitelisted, lockup.CallGetResult:
	}
	return lockup.Outcome{}, errors.Errorf("unknown call %q", string(call.Kind))
}

// resolve delivers the outcome to the callback as an invocation of the account by itself.
func (h *Host) resolve(ctx context.Context, log logrus.FieldLogger, r *Receipt) error {
	account, err := h.store.Account(ctx, r.AccountID)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", r.AccountID)
	}
	lctx, err := h.newContext(ctx, r.AccountID, r.AccountID)
	if err != nil {
		return err
	}
	method := string(r.Promise.Handle.Callback)

	next, err := account.Resolve(lctx, r.Promise.Handle.ID.String(), r.outcome)
	if err != nil {
		// The handle is gone, nothing is waiting for this receipt anymore.
		log.WithError(err).Error("failed to resolve callback")
		h.reject(ctx, lctx, method, err)
		return nil
	}
	h.metrics.Callbacks.Inc()
	if lctx.Failure() != nil {
		h.metrics.FailedCallbacks.Inc()
	}
	if err := h.commit(ctx, r.AccountID, account, next); err != nil {
		return err
	}
	outcome := r.outcome
	h.publish(ctx, lctx, events.Resolved, method, func(e *events.Event) {
		e.Outcome = &outcome
		if next != nil {
			call := next.Call
			e.Call = &call
		}
	})
	return nil
}

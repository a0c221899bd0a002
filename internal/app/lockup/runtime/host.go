// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

// Package runtime hosts lockup accounts: it runs their methods one at a time, keeps their
// state, moves tokens and delivers the outcomes of dispatched calls back to them.
package runtime

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/store"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

// EscrowAccountID holds attached tokens between dispatch and execution of a call.
const EscrowAccountID lockup.AccountID = "system"

// Operation is a state-changing lockup method bound to its arguments.
type Operation func(a *lockup.Account, ctx *lockup.Context) (*lockup.Promise, error)

// Result of a successful invocation.
type Result struct {
	Promise *lockup.Promise `json:",omitempty"`
	Logs    []string
	// Failure is set when a callback failed and its changes were rolled back.
	Failure string `json:",omitempty"`
}

type Host struct {
	log            logrus.FieldLogger
	store          store.AccountStore
	ledger         Ledger
	clock          Clock
	storageReserve lockup.Balance
	sink           events.Sink
	metrics        *observability.LockupMetrics
	common         *observability.CommonLockupMetrics

	mu         sync.Mutex
	pools      map[lockup.AccountID]StakingPool
	whitelists map[lockup.AccountID]Whitelist
	polls      map[lockup.AccountID]TransferPoll
	queue      []*Receipt
}

func NewHost(
	obs *observability.Observability,
	accounts store.AccountStore,
	ledger Ledger,
	clock Clock,
	storageReserve lockup.Balance,
	sink events.Sink,
) *Host {
	if sink == nil {
		sink = events.Noop{}
	}
	return &Host{
		log:            obs.Log().WithField("component", "lockup_host"),
		store:          accounts,
		ledger:         ledger,
		clock:          clock,
		storageReserve: storageReserve,
		sink:           sink,
		metrics:        observability.MakeLockupMetrics(obs),
		common:         observability.MakeCommonMetrics(obs),
		pools:          make(map[lockup.AccountID]StakingPool),
		whitelists:     make(map[lockup.AccountID]Whitelist),
		polls:          make(map[lockup.AccountID]TransferPoll),
	}
}

func (h *Host) RegisterStakingPool(id lockup.AccountID, pool StakingPool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pools[id] = pool
}

func (h *Host) RegisterWhitelist(id lockup.AccountID, whitelist Whitelist) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.whitelists[id] = whitelist
}

func (h *Host) RegisterTransferPoll(id lockup.AccountID, poll TransferPoll) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls[id] = poll
}

func (h *Host) Now() lockup.Timestamp {
	return h.clock.Now()
}

func (h *Host) newContext(ctx context.Context, id, predecessor lockup.AccountID) (*lockup.Context, error) {
	balance, err := h.ledger.Balance(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get balance of %s", id)
	}
	return lockup.NewContext(h.log, id, predecessor, balance, h.storageReserve, h.clock.Now()), nil
}

// Deploy funds a new lockup account from the funder and initializes it. The deposit is
// returned if the initialization is rejected.
func (h *Host) Deploy(ctx context.Context, id, funder lockup.AccountID, deposit lockup.Balance, args lockup.InitArgs) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := id.Validate(); err != nil {
		return nil, err
	}
	_, err := h.store.Account(ctx, id)
	if err == nil {
		return nil, errors.Wrapf(ErrAccountExists, "%s", id)
	}
	if errors.Cause(err) != store.ErrNotFound {
		return nil, errors.Wrapf(err, "failed to check account %s", id)
	}

	h.metrics.Invocations.Inc()
	if !deposit.IsZero() {
		if err := h.ledger.Transfer(ctx, funder, id, deposit); err != nil {
			return nil, errors.Wrapf(err, "failed to fund %s", id)
		}
	}
	refund := func() {
		if deposit.IsZero() {
			return
		}
		if err := h.ledger.Transfer(ctx, id, funder, deposit); err != nil {
			h.log.WithError(err).WithField("account_id", id).Error("failed to refund the deployment deposit")
		}
	}

	lctx, err := h.newContext(ctx, id, funder)
	if err != nil {
		refund()
		return nil, err
	}
	account, err := lockup.New(lctx, args)
	if err != nil {
		refund()
		h.reject(ctx, lctx, "new", err)
		return nil, err
	}
	if err := h.store.SetAccount(ctx, id, account); err != nil {
		refund()
		return nil, errors.Wrapf(err, "failed to save %s", id)
	}
	h.publish(ctx, lctx, events.Invoked, "new", nil)
	return &Result{Logs: lctx.Logs()}, nil
}

// Invoke runs a method of the account on behalf of the predecessor. A rejected method
// changes nothing.
func (h *Host) Invoke(ctx context.Context, id, predecessor lockup.AccountID, method string, op Operation) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.metrics.Invocations.Inc()
	account, err := h.store.Account(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", id)
	}
	lctx, err := h.newContext(ctx, id, predecessor)
	if err != nil {
		return nil, err
	}

	p, err := op(account, lctx)
	if err != nil {
		h.reject(ctx, lctx, method, err)
		return nil, err
	}
	if err := h.commit(ctx, id, account, p); err != nil {
		return nil, err
	}
	h.publish(ctx, lctx, events.Invoked, method, func(e *events.Event) {
		if p != nil {
			call := p.Call
			e.Call = &call
		}
	})
	return &Result{Promise: p, Logs: lctx.Logs()}, nil
}

// commit escrows the attached tokens of the promise, saves the account and queues the call.
func (h *Host) commit(ctx context.Context, id lockup.AccountID, account *lockup.Account, p *lockup.Promise) error {
	attached := lockup.Balance{}
	if p != nil {
		attached = p.Call.Attached
	}
	if !attached.IsZero() {
		if err := h.ledger.Transfer(ctx, id, EscrowAccountID, attached); err != nil {
			return errors.Wrapf(err, "failed to escrow attached tokens of %s", id)
		}
	}
	if err := h.store.SetAccount(ctx, id, account); err != nil {
		if !attached.IsZero() {
			if rerr := h.ledger.Transfer(ctx, EscrowAccountID, id, attached); rerr != nil {
				h.log.WithError(rerr).WithField("account_id", id).Error("failed to release escrow")
			}
		}
		return errors.Wrapf(err, "failed to save %s", id)
	}
	if p != nil {
		h.enqueue(id, p)
	}
	return nil
}

// View evaluates all getters of the account at the current time.
func (h *Host) View(ctx context.Context, id lockup.AccountID) (*lockup.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	account, err := h.store.Account(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", id)
	}
	lctx, err := h.newContext(ctx, id, id)
	if err != nil {
		return nil, err
	}
	return account.View(lctx)
}

// UnvestedBalance is the unvested amount with an optional disclosure of a hashed schedule.
func (h *Host) UnvestedBalance(ctx context.Context, id lockup.AccountID, disclosure *lockup.VestingScheduleWithSalt) (lockup.Balance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	account, err := h.store.Account(ctx, id)
	if err != nil {
		return lockup.Balance{}, errors.Wrapf(err, "failed to load %s", id)
	}
	lctx, err := h.newContext(ctx, id, id)
	if err != nil {
		return lockup.Balance{}, err
	}
	return account.UnvestedBalance(lctx, disclosure)
}

// Account returns a copy of the stored state.
func (h *Host) Account(ctx context.Context, id lockup.AccountID) (*lockup.Account, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Account(ctx, id)
}

func (h *Host) reject(ctx context.Context, lctx *lockup.Context, method string, err error) {
	h.metrics.Rejections.Inc()
	h.log.WithFields(logrus.Fields{
		"account_id":  lctx.CurrentAccountID,
		"predecessor": lctx.PredecessorAccountID,
		"method":      method,
	}).WithError(err).Info("method rejected")
	h.publish(ctx, lctx, events.Rejected, method, func(e *events.Event) {
		e.Error = errors.Cause(err).Error()
	})
}

func (h *Host) publish(ctx context.Context, lctx *lockup.Context, kind events.Kind, method string, fill func(e *events.Event)) {
	e := events.New(kind, lctx.CurrentAccountID, method)
	e.Predecessor = lctx.PredecessorAccountID
	e.Logs = lctx.Logs()
	e.BlockTime = lctx.BlockTimestamp
	if failure := lctx.Failure(); failure != nil {
		e.Error = failure.Error()
	}
	if fill != nil {
		fill(&e)
	}
	if err := h.sink.Publish(ctx, e); err != nil {
		h.log.WithError(err).WithField("event", e.ID).Warn("failed to publish event")
		return
	}
	h.metrics.Events.Inc()
}

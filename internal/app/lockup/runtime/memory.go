// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package runtime

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
)

type MemoryLedger struct {
	mu       sync.Mutex
	balances map[lockup.AccountID]lockup.Balance
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[lockup.AccountID]lockup.Balance)}
}

func (l *MemoryLedger) Balance(ctx context.Context, id lockup.AccountID) (lockup.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id], nil
}

func (l *MemoryLedger) Transfer(ctx context.Context, from, to lockup.AccountID, amount lockup.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining, err := l.balances[from].Sub(amount)
	if err != nil {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %s, needs %s", from, l.balances[from], amount)
	}
	credited, err := l.balances[to].Add(amount)
	if err != nil {
		return errors.Wrapf(err, "failed to credit %s", to)
	}
	l.balances[from] = remaining
	l.balances[to] = credited
	return nil
}

func (l *MemoryLedger) Fund(ctx context.Context, id lockup.AccountID, amount lockup.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	credited, err := l.balances[id].Add(amount)
	if err != nil {
		return errors.Wrapf(err, "failed to fund %s", id)
	}
	l.balances[id] = credited
	return nil
}

// Total is the sum of all balances.
func (l *MemoryLedger) Total() (lockup.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total lockup.Balance
	for _, b := range l.balances {
		var err error
		if total, err = total.Add(b); err != nil {
			return lockup.Balance{}, err
		}
	}
	return total, nil
}

// MemoryWhitelist approves a fixed set of staking pools.
type MemoryWhitelist struct {
	mu    sync.RWMutex
	pools map[lockup.AccountID]bool
}

func NewMemoryWhitelist(pools ...lockup.AccountID) *MemoryWhitelist {
	w := &MemoryWhitelist{pools: make(map[lockup.AccountID]bool)}
	for _, p := range pools {
		w.pools[p] = true
	}
	return w
}

func (w *MemoryWhitelist) Add(pool lockup.AccountID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pools[pool] = true
}

func (w *MemoryWhitelist) Remove(pool lockup.AccountID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pools, pool)
}

func (w *MemoryWhitelist) IsWhitelisted(ctx context.Context, pool lockup.AccountID) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pools[pool], nil
}

// MemoryTransferPoll reports a result once Enable was called.
type MemoryTransferPoll struct {
	mu     sync.RWMutex
	result *lockup.PollResult
}

func NewMemoryTransferPoll() *MemoryTransferPoll {
	return &MemoryTransferPoll{}
}

func (p *MemoryTransferPoll) Enable(result lockup.PollResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result = &result
}

func (p *MemoryTransferPoll) GetResult(ctx context.Context) (*lockup.PollResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.result == nil {
		return nil, nil
	}
	r := *p.result
	return &r, nil
}

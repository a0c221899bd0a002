// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

// Package stakingpool is an in-process staking pool the lockup host delegates to.
package stakingpool

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
)

// Ledger moves the pool's tokens.
type Ledger interface {
	Transfer(ctx context.Context, from, to lockup.AccountID, amount lockup.Balance) error
	Fund(ctx context.Context, id lockup.AccountID, amount lockup.Balance) error
}

type Clock interface {
	Now() lockup.Timestamp
}

type delegation struct {
	staked   lockup.Balance
	unstaked lockup.Balance
	// availableAt is when the unstaked balance can be withdrawn.
	availableAt lockup.Timestamp
}

// Pool keeps per-delegator staked and unstaked balances. Deposited tokens are expected to be
// on the pool's ledger account already; withdrawals move them back.
type Pool struct {
	id           lockup.AccountID
	unstakeDelay lockup.Duration
	ledger       Ledger
	clock        Clock
	log          logrus.FieldLogger

	mu          sync.Mutex
	delegations map[lockup.AccountID]*delegation
}

func New(id lockup.AccountID, unstakeDelay lockup.Duration, ledger Ledger, clock Clock, log logrus.FieldLogger) *Pool {
	return &Pool{
		id:           id,
		unstakeDelay: unstakeDelay,
		ledger:       ledger,
		clock:        clock,
		log:          log.WithField("staking_pool", id),
		delegations:  make(map[lockup.AccountID]*delegation),
	}
}

func (p *Pool) AccountID() lockup.AccountID {
	return p.id
}

func (p *Pool) delegation(account lockup.AccountID) *delegation {
	d, ok := p.delegations[account]
	if !ok {
		d = &delegation{}
		p.delegations[account] = d
	}
	return d
}

func (p *Pool) Deposit(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.delegation(account)
	unstaked, err := d.unstaked.Add(amount)
	if err != nil {
		return errors.Wrap(err, "failed to deposit")
	}
	d.unstaked = unstaked
	p.log.Debugf("@%s deposited %s", account, amount)
	return nil
}

func (p *Pool) DepositAndStake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.delegation(account)
	staked, err := d.staked.Add(amount)
	if err != nil {
		return errors.Wrap(err, "failed to deposit and stake")
	}
	d.staked = staked
	p.log.Debugf("@%s deposited and staked %s", account, amount)
	return nil
}

func (p *Pool) Stake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.IsZero() {
		return errors.New("Staking amount should be positive")
	}
	d := p.delegation(account)
	if d.unstaked.Lt(amount) {
		return errors.Errorf("Not enough unstaked balance to stake: %s < %s", d.unstaked, amount)
	}
	staked, err := d.staked.Add(amount)
	if err != nil {
		return errors.Wrap(err, "failed to stake")
	}
	d.unstaked = d.unstaked.SaturatingSub(amount)
	d.staked = staked
	return nil
}

func (p *Pool) Unstake(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unstake(account, amount)
}

func (p *Pool) UnstakeAll(ctx context.Context, account lockup.AccountID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unstake(account, p.delegation(account).staked)
}

func (p *Pool) unstake(account lockup.AccountID, amount lockup.Balance) error {
	if amount.IsZero() {
		return errors.New("Unstaking amount should be positive")
	}
	d := p.delegation(account)
	if d.staked.Lt(amount) {
		return errors.Errorf("Not enough staked balance to unstake: %s < %s", d.staked, amount)
	}
	unstaked, err := d.unstaked.Add(amount)
	if err != nil {
		return errors.Wrap(err, "failed to unstake")
	}
	d.staked = d.staked.SaturatingSub(amount)
	d.unstaked = unstaked
	d.availableAt = p.clock.Now() + lockup.Timestamp(p.unstakeDelay)
	return nil
}

// Withdraw moves unstaked tokens back to the delegator once the unstaking delay passed.
func (p *Pool) Withdraw(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.IsZero() {
		return errors.New("Withdrawal amount should be positive")
	}
	d := p.delegation(account)
	if d.unstaked.Lt(amount) {
		return errors.Errorf("Not enough unstaked balance to withdraw: %s < %s", d.unstaked, amount)
	}
	if p.clock.Now() < d.availableAt {
		return errors.New("The unstaked balance is not yet available due to unstaking delay")
	}
	if err := p.ledger.Transfer(ctx, p.id, account, amount); err != nil {
		return errors.Wrap(err, "failed to return withdrawn tokens")
	}
	d.unstaked = d.unstaked.SaturatingSub(amount)
	return nil
}

// Reward mints staking rewards into the delegator's staked balance.
func (p *Pool) Reward(ctx context.Context, account lockup.AccountID, amount lockup.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.delegation(account)
	staked, err := d.staked.Add(amount)
	if err != nil {
		return errors.Wrap(err, "failed to reward")
	}
	if err := p.ledger.Fund(ctx, p.id, amount); err != nil {
		return errors.Wrap(err, "failed to fund rewards")
	}
	d.staked = staked
	return nil
}

func (p *Pool) GetAccountStakedBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delegation(account).staked, nil
}

func (p *Pool) GetAccountUnstakedBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delegation(account).unstaked, nil
}

func (p *Pool) GetAccountTotalBalance(ctx context.Context, account lockup.AccountID) (lockup.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.delegation(account)
	return d.staked.Add(d.unstaked)
}

// IsAccountUnstakedBalanceAvailable reports whether the unstaking delay has passed.
func (p *Pool) IsAccountUnstakedBalanceAvailable(ctx context.Context, account lockup.AccountID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.Now() >= p.delegation(account).availableAt
}

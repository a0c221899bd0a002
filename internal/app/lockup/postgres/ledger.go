// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package postgres

import (
	"context"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/observability"
)

var _ runtime.Ledger = (*Ledger)(nil)

type BalanceSchema struct {
	tableName struct{} `sql:"ledger_balances"` //nolint: unused,structcheck

	AccountID string `sql:"account_id,pk"`
	// Balance is a numeric, read and written as its decimal text.
	Balance string `sql:"balance,notnull"`
}

// Ledger keeps the liquid balances of all accounts. Every change runs in a transaction
// that locks the touched rows.
type Ledger struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           *pg.DB
}

func NewLedger(obs *observability.Observability, db *pg.DB) *Ledger {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "lockup_ledger_error_counter",
		Help: "",
	})
	return &Ledger{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (l *Ledger) Balance(ctx context.Context, id lockup.AccountID) (lockup.Balance, error) {
	b, err := selectBalance(l.db, id, false)
	if err != nil {
		l.errorCounter.Inc()
		return lockup.Balance{}, err
	}
	return b, nil
}

func (l *Ledger) Transfer(ctx context.Context, from, to lockup.AccountID, amount lockup.Balance) error {
	if from == to {
		return nil
	}
	err := l.db.RunInTransaction(func(tx *pg.Tx) error {
		// Lock rows in a stable order so concurrent transfers can't deadlock.
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		balances := map[lockup.AccountID]lockup.Balance{}
		for _, id := range []lockup.AccountID{first, second} {
			b, err := selectBalance(tx, id, true)
			if err != nil {
				return err
			}
			balances[id] = b
		}

		debited, err := balances[from].Sub(amount)
		if err != nil {
			return errors.Wrapf(runtime.ErrInsufficientBalance, "%s has %s, needs %s", from, balances[from], amount)
		}
		credited, err := balances[to].Add(amount)
		if err != nil {
			return errors.Wrapf(err, "failed to credit %s", to)
		}
		if err := upsertBalance(tx, from, debited); err != nil {
			return err
		}
		return upsertBalance(tx, to, credited)
	})
	if err != nil {
		l.errorCounter.Inc()
		return errors.Wrapf(err, "failed to transfer %s from %s to %s", amount, from, to)
	}
	return nil
}

func (l *Ledger) Fund(ctx context.Context, id lockup.AccountID, amount lockup.Balance) error {
	err := l.db.RunInTransaction(func(tx *pg.Tx) error {
		b, err := selectBalance(tx, id, true)
		if err != nil {
			return err
		}
		credited, err := b.Add(amount)
		if err != nil {
			return errors.Wrapf(err, "failed to credit %s", id)
		}
		return upsertBalance(tx, id, credited)
	})
	if err != nil {
		l.errorCounter.Inc()
		return errors.Wrapf(err, "failed to fund %s", id)
	}
	return nil
}

// Total is the sum of all balances.
func (l *Ledger) Total(ctx context.Context) (lockup.Balance, error) {
	var total string
	_, err := l.db.QueryOne(pg.Scan(&total), `SELECT coalesce(sum(balance), 0)::text FROM ledger_balances`)
	if err != nil {
		return lockup.Balance{}, errors.Wrap(err, "failed to sum balances")
	}
	return lockup.ParseBalance(total)
}

func selectBalance(db orm.DB, id lockup.AccountID, forUpdate bool) (lockup.Balance, error) {
	row := &BalanceSchema{}
	query := `SELECT account_id, balance::text AS balance FROM ledger_balances WHERE account_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	_, err := db.QueryOne(row, query, string(id))
	if err == pg.ErrNoRows {
		return lockup.Balance{}, nil
	}
	if err != nil {
		return lockup.Balance{}, errors.Wrapf(err, "failed to select balance of %s", id)
	}
	b, err := lockup.ParseBalance(row.Balance)
	if err != nil {
		return lockup.Balance{}, errors.Wrapf(err, "invalid balance of %s", id)
	}
	return b, nil
}

func upsertBalance(db orm.DB, id lockup.AccountID, b lockup.Balance) error {
	_, err := db.Exec(`
		INSERT INTO ledger_balances (account_id, balance) VALUES (?, ?::numeric)
		ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance`,
		string(id), b.String())
	if err != nil {
		return errors.Wrapf(err, "failed to update balance of %s", id)
	}
	return nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package postgres

import (
	"context"
	"time"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/store"
	"github.com/insolar/lockup/observability"
)

type AccountSchema struct {
	tableName struct{} `sql:"lockup_accounts"` //nolint: unused,structcheck

	AccountID string          `sql:"account_id,pk"`
	State     *lockup.Account `sql:"state,notnull"`
	UpdatedAt time.Time       `sql:"updated_at,notnull"`
}

// AccountStorage keeps account states as jsonb.
type AccountStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

var _ store.AccountStore = (*AccountStorage)(nil)

func NewAccountStorage(obs *observability.Observability, db orm.DB) *AccountStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "lockup_account_storage_error_counter",
		Help: "",
	})
	return &AccountStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *AccountStorage) Account(ctx context.Context, id lockup.AccountID) (*lockup.Account, error) {
	row := &AccountSchema{AccountID: string(id)}
	err := s.db.Model(row).WherePK().Select()
	if err == pg.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select account %s", id)
	}
	if row.State == nil {
		return nil, errors.Errorf("account %s has no state", id)
	}
	return row.State, nil
}

func (s *AccountStorage) SetAccount(ctx context.Context, id lockup.AccountID, account *lockup.Account) error {
	if account == nil {
		s.log.Warnf("trying to save nil account %s", id)
		return nil
	}
	row := &AccountSchema{
		AccountID: string(id),
		State:     account,
		UpdatedAt: time.Now().UTC(),
	}
	res, err := s.db.Model(row).
		OnConflict("(account_id) DO UPDATE").
		Set("state = EXCLUDED.state, updated_at = EXCLUDED.updated_at").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to save account %s", id)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("account_id", id).Errorf("failed to save account")
		return errors.New("failed to save, affected is 0")
	}
	return nil
}

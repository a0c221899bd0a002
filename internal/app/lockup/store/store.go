// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package store

import (
	"context"

	"github.com/insolar/lockup/internal/app/lockup"
)

//go:generate minimock -i AccountStore -o ./account_store_mock.go -n AccountStoreMock

// AccountStore keeps lockup account states. Implementations return copies, so callers may
// mutate the result freely.
type AccountStore interface {
	// Account returns ErrNotFound if the account was never saved.
	Account(ctx context.Context, id lockup.AccountID) (*lockup.Account, error)
	SetAccount(ctx context.Context, id lockup.AccountID, account *lockup.Account) error
}

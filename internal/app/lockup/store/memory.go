// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
)

// MemoryAccountStore keeps serialized states, so nothing outside can alias a stored account.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[lockup.AccountID][]byte
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[lockup.AccountID][]byte)}
}

func (s *MemoryAccountStore) Account(ctx context.Context, id lockup.AccountID) (*lockup.Account, error) {
	s.mu.RLock()
	raw, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	account := &lockup.Account{}
	if err := json.Unmarshal(raw, account); err != nil {
		return nil, errors.Wrapf(err, "failed to decode account %s", id)
	}
	return account, nil
}

func (s *MemoryAccountStore) SetAccount(ctx context.Context, id lockup.AccountID, account *lockup.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return errors.Wrapf(err, "failed to encode account %s", id)
	}
	s.mu.Lock()
	s.accounts[id] = raw
	s.mu.Unlock()
	return nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
)

// CacheAccountStore is a write-through cache in front of a backend store.
type CacheAccountStore struct {
	cache   *lru.Cache
	backend AccountStore
}

func NewCacheAccountStore(backend AccountStore, size int) (*CacheAccountStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache")
	}
	return &CacheAccountStore{
		cache:   cache,
		backend: backend,
	}, nil
}

func (s *CacheAccountStore) Account(ctx context.Context, id lockup.AccountID) (*lockup.Account, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached.(*lockup.Account).Clone(), nil
	}

	account, err := s.backend.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, account.Clone())
	return account, nil
}

func (s *CacheAccountStore) SetAccount(ctx context.Context, id lockup.AccountID, account *lockup.Account) error {
	err := s.backend.SetAccount(ctx, id, account)
	if err != nil {
		s.cache.Remove(id)
		return err
	}
	s.cache.Add(id, account.Clone())
	return nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

// Package events publishes what happened to lockup accounts.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/insolar/lockup/internal/app/lockup"
)

type Kind string

const (
	// Invoked: a method changed the state of an account.
	Invoked Kind = "Invoked"
	// Rejected: a method failed a check and changed nothing.
	Rejected Kind = "Rejected"
	// Executed: a dispatched call was executed by its receiver.
	Executed Kind = "Executed"
	// Resolved: a callback consumed the outcome of a call.
	Resolved Kind = "Resolved"
)

type Event struct {
	ID          uuid.UUID
	Kind        Kind
	AccountID   lockup.AccountID
	Predecessor lockup.AccountID `json:",omitempty"`
	Method      string
	Logs        []string        `json:",omitempty"`
	Error       string          `json:",omitempty"`
	Call        *lockup.Call    `json:",omitempty"`
	Outcome     *lockup.Outcome `json:",omitempty"`
	BlockTime   lockup.Timestamp
	CreatedAt   time.Time
}

func New(kind Kind, account lockup.AccountID, method string) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		AccountID: account,
		Method:    method,
		CreatedAt: time.Now().UTC(),
	}
}

type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every sink and returns the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, e Event) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error {
	return nil
}

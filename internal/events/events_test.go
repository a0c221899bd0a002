// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/lockup/internal/app/lockup"
)

type published struct {
	subject string
	data    []byte
}

type publisherStub struct {
	messages []published
	err      error
}

func (p *publisherStub) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{subject, data})
	return nil
}

type recorder struct {
	events []Event
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestNATSSink_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		conn := &publisherStub{}
		sink := NewNATSSink(conn, "lockup.events")

		e := New(Executed, "lockup.owner.near", string(lockup.CallDeposit))
		e.Call = &lockup.Call{Kind: lockup.CallDeposit, Receiver: "pool.near", Amount: lockup.NewBalance(10), Attached: lockup.NewBalance(10)}
		require.NoError(t, sink.Publish(ctx, e))

		require.Len(t, conn.messages, 1)
		assert.Equal(t, "lockup.events.Executed", conn.messages[0].subject)

		decoded := Event{}
		require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
		assert.Equal(t, e.ID, decoded.ID)
		assert.Equal(t, lockup.NewBalance(10), decoded.Call.Attached)
	})

	t.Run("connection error", func(t *testing.T) {
		sink := NewNATSSink(&publisherStub{err: errors.New("nats: connection closed")}, "lockup.events")
		err := sink.Publish(ctx, New(Invoked, "lockup.owner.near", "stake"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lockup.events.Invoked")
	})
}

func TestMulti_Publish(t *testing.T) {
	ctx := context.Background()
	first, second := &recorder{}, &recorder{}
	failing := NewNATSSink(&publisherStub{err: errors.New("nats: connection closed")}, "lockup.events")

	err := Multi{first, failing, second}.Publish(ctx, New(Rejected, "lockup.owner.near", "stake"))
	require.Error(t, err)
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)

	require.NoError(t, Noop{}.Publish(ctx, Event{}))
}

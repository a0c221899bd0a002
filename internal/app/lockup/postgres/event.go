// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package postgres

import (
	"context"
	"time"

	"github.com/go-pg/pg/orm"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/events"
	"github.com/insolar/lockup/observability"
)

type EventSchema struct {
	tableName struct{} `sql:"lockup_events"` //nolint: unused,structcheck

	ID          string          `sql:"id,pk"`
	Kind        string          `sql:"kind,notnull"`
	AccountID   string          `sql:"account_id,notnull"`
	Predecessor string          `sql:"predecessor"`
	Method      string          `sql:"method,notnull"`
	Logs        []string        `sql:"logs"`
	Error       string          `sql:"error"`
	Call        *lockup.Call    `sql:"call"`
	Outcome     *lockup.Outcome `sql:"outcome"`
	BlockTime   int64           `sql:"block_time,notnull"`
	CreatedAt   time.Time       `sql:"created_at,notnull"`
}

// EventStorage is the journal of account events.
type EventStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

var _ events.Sink = (*EventStorage)(nil)

func NewEventStorage(obs *observability.Observability, db orm.DB) *EventStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "lockup_event_storage_error_counter",
		Help: "",
	})
	return &EventStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *EventStorage) Publish(ctx context.Context, e events.Event) error {
	row := &EventSchema{
		ID:          e.ID.String(),
		Kind:        string(e.Kind),
		AccountID:   string(e.AccountID),
		Predecessor: string(e.Predecessor),
		Method:      e.Method,
		Logs:        e.Logs,
		Error:       e.Error,
		Call:        e.Call,
		Outcome:     e.Outcome,
		BlockTime:   int64(e.BlockTime),
		CreatedAt:   e.CreatedAt,
	}
	if err := s.db.Insert(row); err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert event %s", e.ID)
	}
	return nil
}

// Events returns the journal of the account, oldest first.
func (s *EventStorage) Events(ctx context.Context, account lockup.AccountID, limit int) ([]events.Event, error) {
	var rows []EventSchema
	err := s.db.Model(&rows).
		Where("account_id = ?", string(account)).
		Order("created_at ASC").
		Limit(limit).
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select events of %s", account)
	}
	result := make([]events.Event, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid event id %s", row.ID)
		}
		result = append(result, events.Event{
			ID:          id,
			Kind:        events.Kind(row.Kind),
			AccountID:   lockup.AccountID(row.AccountID),
			Predecessor: lockup.AccountID(row.Predecessor),
			Method:      row.Method,
			Logs:        row.Logs,
			Error:       row.Error,
			Call:        row.Call,
			Outcome:     row.Outcome,
			BlockTime:   lockup.Timestamp(row.BlockTime),
			CreatedAt:   row.CreatedAt,
		})
	}
	return result, nil
}

// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Context is the host view of a single invocation. It is built once per invocation and
// the operations only read it, except for the collected logs.
type Context struct {
	CurrentAccountID     AccountID
	PredecessorAccountID AccountID
	// AccountBalance is the liquid balance the host holds for the current account,
	// storage reserve included.
	AccountBalance Balance
	// StorageReserve is never transferable.
	StorageReserve Balance
	BlockTimestamp Timestamp

	log     logrus.FieldLogger
	logs    []string
	failure error
}

func NewContext(log logrus.FieldLogger, current, predecessor AccountID, balance, reserve Balance, now Timestamp) *Context {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Context{
		CurrentAccountID:     current,
		PredecessorAccountID: predecessor,
		AccountBalance:       balance,
		StorageReserve:       reserve,
		BlockTimestamp:       now,
		log: log.WithFields(logrus.Fields{
			"account_id":  current,
			"predecessor": predecessor,
		}),
	}
}

// Log records a contract log line for this invocation.
func (c *Context) Log(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.logs = append(c.logs, msg)
	if c.log != nil {
		c.log.Info(msg)
	}
}

func (c *Context) Logs() []string {
	return c.logs
}

// Failure is the error a callback recovered from during this invocation, if any.
func (c *Context) Failure() error {
	return c.failure
}

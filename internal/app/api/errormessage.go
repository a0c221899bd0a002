// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package api

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/insolar/lockup/internal/app/lockup"
	"github.com/insolar/lockup/internal/app/lockup/runtime"
	"github.com/insolar/lockup/internal/app/lockup/store"
)

type ErrorMessage struct {
	Error []string `json:"error"`
	// Kind is the lockup error kind, empty for transport errors.
	Kind string `json:"kind,omitempty"`
}

func NewSingleMessageError(err string) ErrorMessage {
	return ErrorMessage{Error: []string{err}}
}

// statusOf maps an error to the http status and the message shown to the caller.
func statusOf(err error) (int, ErrorMessage) {
	cause := errors.Cause(err)
	msg := NewSingleMessageError(cause.Error())
	if kind, ok := lockup.KindOf(err); ok {
		msg.Kind = kind.String()
	}

	switch {
	case cause == lockup.ErrContractBusy:
		return http.StatusConflict, msg
	case lockup.IsPrecondition(err):
		return http.StatusBadRequest, msg
	case lockup.IsExternal(err):
		return http.StatusBadGateway, msg
	case lockup.IsArithmetic(err):
		return http.StatusInternalServerError, msg
	case cause == store.ErrNotFound:
		return http.StatusNotFound, msg
	case cause == runtime.ErrAccountExists:
		return http.StatusConflict, NewSingleMessageError(err.Error())
	case cause == runtime.ErrInsufficientBalance:
		return http.StatusBadRequest, NewSingleMessageError(err.Error())
	}
	return http.StatusInternalServerError, NewSingleMessageError("internal error")
}

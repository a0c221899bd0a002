// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package lockup

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind uint8

const (
	// PreconditionViolation: wrong caller, wrong state, hash mismatch, busy lock, termination.
	// Rejected before any state mutation or external call.
	PreconditionViolation ErrorKind = iota + 1
	// ArithmeticInvariantViolation: an overflow or underflow that should be impossible.
	ArithmeticInvariantViolation
	// ExternalCallFailure: the collaborator rejected or failed a call.
	ExternalCallFailure
)

func (k ErrorKind) String() string {
	switch k {
	case PreconditionViolation:
		return "PreconditionViolation"
	case ArithmeticInvariantViolation:
		return "ArithmeticInvariantViolation"
	case ExternalCallFailure:
		return "ExternalCallFailure"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrContractBusy is returned while an asynchronous staking call is in flight.
var ErrContractBusy = &Error{Kind: PreconditionViolation, Message: "Contract is currently busy with another operation"}

func preconditionf(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: PreconditionViolation, Message: fmt.Sprintf(format, args...)})
}

func arithmeticf(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: ArithmeticInvariantViolation, Message: fmt.Sprintf(format, args...)})
}

func ExternalCallError(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: ExternalCallFailure, Message: fmt.Sprintf(format, args...)})
}

func KindOf(err error) (ErrorKind, bool) {
	e, ok := errors.Cause(err).(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}

func IsPrecondition(err error) bool {
	k, ok := KindOf(err)
	return ok && k == PreconditionViolation
}

func IsArithmetic(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ArithmeticInvariantViolation
}

func IsExternal(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ExternalCallFailure
}

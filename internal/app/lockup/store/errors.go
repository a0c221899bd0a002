// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package store

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("account not found")
)

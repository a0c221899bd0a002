// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/insolar/lockup/connectivity"
	"github.com/insolar/lockup/observability"
)

type stoppable interface {
	Stop()
}

// makeStopper stops the servers first so no invocation runs while connections close.
func makeStopper(obs *observability.Observability, conn *connectivity.Connectivity, servers ...stoppable) func() {
	log := obs.Log()
	return func() {
		var wg sync.WaitGroup
		for _, s := range servers {
			wg.Add(1)
			go func(s stoppable) {
				defer wg.Done()
				s.Stop()
			}(s)
		}
		wg.Wait()

		if err := conn.Close(); err != nil {
			log.Error(errors.Wrapf(err, "failed to close connections"))
		}
	}
}

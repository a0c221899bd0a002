// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"time"

	"github.com/insolar/lockup/configuration"
)

type SleepManager struct {
	cfg *configuration.Configuration
}

func NewSleepManager(cfg *configuration.Configuration) *SleepManager {
	return &SleepManager{
		cfg: cfg,
	}
}

// Count is the pause before the next processing round.
func (sm *SleepManager) Count(r *round, timeExecuted time.Duration) time.Duration {
	if r == nil || r.err != nil {
		return sm.cfg.Runtime.ProcessInterval
	}

	// callbacks dispatched new calls
	if r.pending > 0 {
		return sm.cfg.Runtime.FastForwardInterval
	}

	// reducing sleep time by execution time
	sleepTime := sm.cfg.Runtime.ProcessInterval - timeExecuted
	if sleepTime < 0 {
		return 0
	}
	return sleepTime
}

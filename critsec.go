// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"sync"

	"code.hybscloud.com/spin"
)

// DefaultSpinCount is the number of acquisition attempts a contended
// CriticalSection or SpinLock makes before it stops spinning.
const DefaultSpinCount = 4000

// CriticalSection is a blocking lock with a bounded spin phase.
//
// A contended Lock first retries the native lock up to the spin count,
// pausing between attempts, and only then parks. Short critical sections
// are therefore handed over without a sleep/wake round trip.
type CriticalSection struct {
	mu        sync.Mutex
	spinCount int
	census
}

// NewCriticalSection creates an unlocked CriticalSection with the given
// spin count. A spinCount < 0 selects DefaultSpinCount; 0 disables the
// spin phase.
func NewCriticalSection(spinCount int) *CriticalSection {
	if spinCount < 0 {
		spinCount = DefaultSpinCount
	}
	return &CriticalSection{spinCount: spinCount}
}

// Lock acquires cs.
func (cs *CriticalSection) Lock() {
	if cs.mu.TryLock() {
		cs.held.StoreRelease(1)
		return
	}

	cs.waiting.AddAcqRel(1)
	sw := spin.Wait{}
	acquired := false
	for range cs.spinCount {
		sw.Once()
		if cs.mu.TryLock() {
			acquired = true
			break
		}
	}
	if !acquired {
		cs.mu.Lock()
	}
	cs.waiting.AddAcqRel(-1)
	cs.held.StoreRelease(1)
}

// Unlock releases cs.
func (cs *CriticalSection) Unlock() {
	cs.held.StoreRelease(0)
	cs.mu.Unlock()
}

// Users returns 1 if cs is held, plus the number of contending callers.
func (cs *CriticalSection) Users() int { return cs.users() }

// BlockedUsers returns the number of contending callers.
func (cs *CriticalSection) BlockedUsers() int { return cs.blocked() }

// Destroy is a no-op; the native lock is reclaimed with cs.
func (cs *CriticalSection) Destroy() {}

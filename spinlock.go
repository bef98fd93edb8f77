// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

const (
	spinUnlocked int32 = 0
	spinLocked   int32 = 1
)

// SpinLock is a test-and-test-and-set busy-wait lock.
//
// Contenders pause with CPU relax instructions for up to the spin budget,
// then fall back to adaptive backoff so a long critical section does not
// burn a core. SpinLock offers no fairness beyond what the scheduler
// provides.
//
// The zero value is an unlocked SpinLock that backs off without spinning.
type SpinLock struct {
	_       pad
	state   atomix.Int32
	_       padInt32
	waiting atomix.Int32
	budget  int
}

// NewSpinLock creates an unlocked SpinLock that spins up to budget
// iterations before backing off. A budget < 0 selects DefaultSpinCount.
func NewSpinLock(budget int) *SpinLock {
	if budget < 0 {
		budget = DefaultSpinCount
	}
	return &SpinLock{budget: budget}
}

// Lock acquires s, spinning until it is free.
func (s *SpinLock) Lock() {
	if s.state.CompareAndSwapAcqRel(spinUnlocked, spinLocked) {
		return
	}

	s.waiting.AddAcqRel(1)

	sw := spin.Wait{}
	backoff := iox.Backoff{}
	for i := 0; ; i++ {
		if s.state.LoadRelaxed() == spinUnlocked &&
			s.state.CompareAndSwapAcqRel(spinUnlocked, spinLocked) {
			break
		}
		if i < s.budget {
			sw.Once()
		} else {
			backoff.Wait()
		}
	}
	s.waiting.AddAcqRel(-1)
}

// Unlock releases s.
func (s *SpinLock) Unlock() {
	s.state.StoreRelease(spinUnlocked)
}

// Users returns 1 if s is held, plus the number of spinning callers.
func (s *SpinLock) Users() int {
	return int(s.state.LoadRelaxed() + s.waiting.LoadRelaxed())
}

// BlockedUsers returns the number of callers spinning on s.
func (s *SpinLock) BlockedUsers() int {
	return int(s.waiting.LoadRelaxed())
}

// Destroy is a no-op; a SpinLock holds no native resources.
func (s *SpinLock) Destroy() {}

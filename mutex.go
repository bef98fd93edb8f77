// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import "code.hybscloud.com/atomix"

type handleState uint8

const (
	stateUnbound handleState = iota
	statePending
	stateReady
	stateBroken
	stateUnbuilt
)

// Mutex is an allocator mutex handle.
//
// A Mutex is bound to a Runtime by Runtime.Init and from then on uses
// the Runtime's backend kind. Locking is unconditional and not
// reentrant.
//
// Lock and Unlock do nothing while the Runtime's gate reports the
// process single-threaded, and while the handle is still waiting for
// Runtime.Boot (bootstrap is single-threaded by contract). An Unlock
// matching an elided Lock is elided too, even if the gate flipped in
// between.
//
// A handle Boot failed to build, or whose backend could not be rebuilt
// in a forked child, panics on Lock and Unlock.
//
// A Mutex must not be copied after Init.
type Mutex struct {
	rt    *Runtime
	b     backend
	state handleState

	// elided is set while the owner holds m through an elided Lock.
	elided atomix.Bool
}

// active returns the backend to dispatch to, or nil if the call is
// elided. It panics on a handle that cannot lock at all.
func (m *Mutex) active() backend {
	switch m.state {
	case stateReady:
		if !m.rt.gate.Threaded() {
			return nil
		}
		return m.b
	case statePending:
		return nil
	case stateBroken:
		panic("mtx: use of Mutex whose backend could not be rebuilt")
	case stateUnbuilt:
		panic("mtx: use of Mutex whose deferred init failed")
	default:
		panic("mtx: use of uninitialized Mutex")
	}
}

// Lock acquires m, blocking as needed.
func (m *Mutex) Lock() {
	if b := m.active(); b != nil {
		b.Lock()
		return
	}
	m.elided.StoreRelease(true)
}

// Unlock releases m.
func (m *Mutex) Unlock() {
	b := m.active()
	if m.elided.LoadRelaxed() {
		m.elided.StoreRelease(false)
		return
	}
	if b != nil {
		b.Unlock()
	}
}

// usable reports whether m can take part in the fork protocol.
func (m *Mutex) usable() bool {
	return m.state == statePending || m.state == stateReady
}

// Prefork locks m so a fork sees it quiescent.
func (m *Mutex) Prefork() {
	m.Lock()
}

// PostforkParent unlocks m in the parent after a fork.
func (m *Mutex) PostforkParent() {
	m.Unlock()
}

// PostforkChild restores m in the child after a fork.
//
// Only the forking thread survives into the child, so any other owner
// or waiter recorded in the backend is gone. Backends that stay valid
// (InitCallback) are simply unlocked; every other backend is discarded
// and rebuilt unlocked. A failed rebuild reports ErrReinit to the abort
// hook under a strict Runtime and otherwise leaves m unusable.
func (m *Mutex) PostforkChild() {
	if m.state == stateUnbound {
		panic("mtx: use of uninitialized Mutex")
	}
	if m.rt.opts.kind.forkSafe() {
		m.Unlock()
		return
	}
	m.rt.rebuild(m)
}

// Kind returns the backend kind of m.
// Panics if m is not bound to a Runtime.
func (m *Mutex) Kind() Kind {
	if m.rt == nil {
		panic("mtx: use of uninitialized Mutex")
	}
	return m.rt.opts.kind
}

// Users returns the owner count plus the number of blocked callers.
// Diagnostic only; 0 for a handle without a backend.
func (m *Mutex) Users() int {
	if m.b == nil {
		return 0
	}
	return m.b.Users()
}

// BlockedUsers returns the number of callers blocked on m.
// Diagnostic only; 0 for a handle without a backend.
func (m *Mutex) BlockedUsers() int {
	if m.b == nil {
		return 0
	}
	return m.b.BlockedUsers()
}

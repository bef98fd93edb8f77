// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Policy selects how a Gate learns that the process went multithreaded.
type Policy uint8

const (
	// AlwaysThreaded treats the process as multithreaded from the start.
	// Locking is never elided.
	AlwaysThreaded Policy = iota
	// LazyThreaded elides locking until the first goroutine is spawned
	// through the gate or MarkThreaded is called.
	LazyThreaded
)

// Gate is a one-way flag that lets a Mutex skip locking while the
// process is single-threaded.
//
// Under LazyThreaded the flag starts false and flips to true exactly
// once, before the first spawn it observes is started, so no second
// goroutine can see an elided lock. It never flips back.
//
// Threaded is a relaxed load. A stale value only delays locking; the
// flip happens before any goroutine spawned through the gate starts.
type Gate struct {
	threaded atomix.Bool
	once     sync.Once
	policy   Policy

	// onThreaded, when set, runs once inside the flip barrier.
	onThreaded func()
}

// NewGate creates a Gate with the given policy.
func NewGate(policy Policy) *Gate {
	g := &Gate{policy: policy}
	if policy == AlwaysThreaded {
		g.threaded.StoreRelease(true)
	}
	return g
}

// Policy returns the detection policy of g.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Threaded reports whether locking must actually be performed.
func (g *Gate) Threaded() bool {
	return g.threaded.LoadRelaxed()
}

// MarkThreaded flips g to multithreaded. Calls after the first are
// no-ops; concurrent first calls flip exactly once.
func (g *Gate) MarkThreaded() {
	g.once.Do(g.flip)
}

// Go marks g multithreaded, then runs f in a new goroutine.
//
// Go is the spawn entry point of the allocator: every goroutine that may
// touch an allocator mutex must be started through it (or after an
// explicit MarkThreaded) for lazy elision to be sound.
func (g *Gate) Go(f func()) {
	g.MarkThreaded()
	go f()
}

func (g *Gate) flip() {
	if g.threaded.LoadAcquire() {
		return
	}
	g.threaded.StoreRelease(true)
	if g.onThreaded != nil {
		g.onThreaded()
	}
}

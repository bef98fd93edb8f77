// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"fmt"
	"log/slog"
)

// Runtime is the process-wide mutex context owned by the allocator's
// bootstrap structure.
//
// It fixes the backend kind and owns the threading gate. It also keeps
// the deferred construction registry and the set of live handles the
// fork protocol runs over.
//
// Init and Boot are bootstrap operations: they must run before the
// process goes multithreaded and must not be called concurrently. The
// Runtime-level fork methods must be called from the forking goroutine
// only.
type Runtime struct {
	opts   Options
	logger *slog.Logger
	gate   *Gate

	// newBackend builds one backend of opts.kind.
	newBackend func() (backend, error)

	postpone bool
	pending  []*Mutex
	booted   bool
	bootErr  error

	handles []*Mutex
}

func newRuntime(opts Options, logger *slog.Logger) *Runtime {
	rt := &Runtime{
		opts:     opts,
		logger:   logger,
		gate:     NewGate(opts.policy),
		postpone: opts.kind.deferred(),
	}
	rt.newBackend = rt.construct
	rt.gate.onThreaded = func() {
		logger.Debug("process went multithreaded, locking enabled")
	}
	return rt
}

// construct builds one backend of the configured kind.
func (rt *Runtime) construct() (backend, error) {
	switch rt.opts.kind {
	case CriticalSection:
		return NewCriticalSection(rt.opts.spinCount), nil
	case SpinLock:
		return NewSpinLock(rt.opts.spinCount), nil
	case InitCallback:
		return NewCallbackMutex(rt.opts.alloc)
	default:
		return NewFairMutex(), nil
	}
}

// Kind returns the backend kind of every handle of rt.
func (rt *Runtime) Kind() Kind {
	return rt.opts.kind
}

// Strict reports whether a failed child-side rebuild is fatal.
func (rt *Runtime) Strict() bool {
	return rt.opts.strict
}

// Gate returns the threading gate of rt.
func (rt *Runtime) Gate() *Gate {
	return rt.gate
}

// Threaded reports whether handles of rt actually lock.
func (rt *Runtime) Threaded() bool {
	return rt.gate.Threaded()
}

// MarkThreaded enables locking for every handle of rt.
func (rt *Runtime) MarkThreaded() {
	rt.gate.MarkThreaded()
}

// Go enables locking, then runs f in a new goroutine.
func (rt *Runtime) Go(f func()) {
	rt.gate.Go(f)
}

// Init binds m to rt and builds its backend.
//
// While construction is postponed (InitCallback before Boot), m is
// queued for Boot and Init returns nil. A construction failure is
// returned wrapped in ErrInit; m is left unbound and may be passed to
// Init again.
//
// Panics if m is already bound to a Runtime.
func (rt *Runtime) Init(m *Mutex) error {
	if m.rt != nil {
		panic("mtx: Mutex initialized twice")
	}
	if rt.postpone {
		m.rt = rt
		m.state = statePending
		rt.pending = append(rt.pending, m)
		rt.handles = append(rt.handles, m)
		return nil
	}

	b, err := rt.newBackend()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInit, rt.opts.kind, err)
	}
	m.rt = rt
	m.b = b
	m.state = stateReady
	rt.handles = append(rt.handles, m)
	return nil
}

// Boot ends allocator bootstrap: it stops postponing construction and
// builds every queued handle in registration order.
//
// The first failure stops the drain and is returned wrapped in ErrBoot.
// The failing handle and every handle after it are never built: they
// panic on Lock and Unlock, and the Runtime-level fork loops skip them.
// Boot runs once: later calls return the first call's result.
func (rt *Runtime) Boot() error {
	if rt.booted {
		return rt.bootErr
	}
	rt.booted = true
	rt.postpone = false

	total := len(rt.pending)
	for len(rt.pending) > 0 {
		m := rt.pending[0]
		b, err := rt.newBackend()
		if err != nil {
			done := total - len(rt.pending)
			rt.bootErr = fmt.Errorf("%w: handle %d of %d: %w", ErrBoot, done+1, total, err)
			rt.logger.Error("deferred mutex init failed",
				slog.String("kind", rt.opts.kind.String()),
				slog.Int("built", done),
				slog.Int("pending", len(rt.pending)),
				slog.Any("err", err))
			for _, rest := range rt.pending {
				rest.state = stateUnbuilt
			}
			return rt.bootErr
		}
		m.b = b
		m.state = stateReady
		rt.pending[0] = nil
		rt.pending = rt.pending[1:]
	}
	rt.pending = nil

	if total > 0 {
		rt.logger.Debug("deferred mutexes built",
			slog.String("kind", rt.opts.kind.String()),
			slog.Int("count", total))
	}
	return nil
}

// Pending returns the number of queued handles Boot has not built.
func (rt *Runtime) Pending() int {
	return len(rt.pending)
}

// Handles returns the number of handles bound to rt.
func (rt *Runtime) Handles() int {
	return len(rt.handles)
}

// Prefork locks every handle of rt in registration order.
//
// The Runtime-level fork loops skip handles that cannot lock: those Boot
// failed to build and those left without a backend by a failed rebuild
// in an earlier child.
func (rt *Runtime) Prefork() {
	for _, m := range rt.handles {
		if m.usable() {
			m.Prefork()
		}
	}
}

// PostforkParent unlocks every handle of rt, in reverse registration
// order, in the parent after a fork.
func (rt *Runtime) PostforkParent() {
	for i := len(rt.handles) - 1; i >= 0; i-- {
		if m := rt.handles[i]; m.usable() {
			m.PostforkParent()
		}
	}
}

// PostforkChild restores every handle of rt, in reverse registration
// order, in the child after a fork.
func (rt *Runtime) PostforkChild() {
	for i := len(rt.handles) - 1; i >= 0; i-- {
		if m := rt.handles[i]; m.usable() {
			m.PostforkChild()
		}
	}
}

// rebuild discards the backend of m and builds a fresh one.
func (rt *Runtime) rebuild(m *Mutex) {
	m.elided.StoreRelease(false)
	if m.b != nil {
		m.b.Destroy()
	}
	b, err := rt.newBackend()
	if err != nil {
		m.b = nil
		m.state = stateBroken
		err = fmt.Errorf("%w: %s: %w", ErrReinit, rt.opts.kind, err)
		rt.logger.Error("mutex reinit failed in child",
			slog.String("kind", rt.opts.kind.String()),
			slog.Bool("strict", rt.opts.strict),
			slog.Any("err", err))
		if rt.opts.strict {
			rt.opts.abort(err)
		}
		return
	}
	m.b = b
	m.state = stateReady
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mtx provides the mutual exclusion primitive of a multithreaded
// memory allocator.
//
// One handle type, [Mutex], sits on top of one of four backends:
//
//   - Fair:            FIFO hand-off over a guard lock and per-waiter
//     condition variables ([FairMutex])
//   - CriticalSection: spin, then block ([CriticalSection])
//   - SpinLock:        busy-wait only ([SpinLock])
//   - InitCallback:    native mutex built in allocator memory, after
//     bootstrap ([CallbackMutex])
//
// The backend is fixed per [Runtime]. [DefaultKind] is chosen by build
// constraints: CriticalSection on Windows, SpinLock on Darwin,
// InitCallback on FreeBSD and Fair elsewhere.
//
// # Quick Start
//
//	rt := mtx.New().Backend(mtx.Fair).Build()
//
//	var arenaLock mtx.Mutex
//	if err := rt.Init(&arenaLock); err != nil {
//	    return err
//	}
//	if err := rt.Boot(); err != nil {
//	    return err
//	}
//
//	arenaLock.Lock()
//	// mutate arena
//	arenaLock.Unlock()
//
// # Fairness
//
// [FairMutex] grants the lock in exactly the order Lock was called. A
// caller that finds the lock free and nobody queued takes it without
// blocking; every other caller appends itself to the wait queue and is
// woken only when Unlock hands the lock to it. Unlock signals the head
// waiter alone, never broadcasting, so a released lock cannot be stolen
// by a newcomer and no herd of waiters wakes to fight over it.
//
// The other backends provide whatever fairness the underlying primitive
// offers.
//
// # Deferred Initialization
//
// The InitCallback backend allocates its native mutex through the
// allocator's [Allocator] callback, which is not usable until the
// allocator has bootstrapped. Such a Runtime queues every handle passed
// to Init and builds them, in registration order, when Boot is called:
//
//	rt := mtx.New().Backend(mtx.InitCallback).Allocator(base).Build()
//	for _, m := range bootstrapLocks {
//	    rt.Init(m) // queued, returns nil
//	}
//	// ... allocator bootstrap ...
//	if err := rt.Boot(); err != nil {
//	    // errors.Is(err, mtx.ErrBoot); later handles stay unbuilt
//	}
//
// Boot runs once. Handles are not locked while they wait for Boot.
//
// # Single-Threaded Elision
//
// With [Builder.Lazy] the Runtime's [Gate] starts single-threaded and
// every Lock and Unlock returns immediately. The gate flips, once and for
// good, when the first goroutine is started through [Runtime.Go] or when
// [Runtime.MarkThreaded] is called:
//
//	rt := mtx.New().Lazy().Build()
//	rt.Go(worker) // locking is on from here
//
// An Unlock that matches a Lock elided before the flip is elided too.
//
// # Fork Safety
//
// Around a process-duplicating call the allocator runs a three-phase
// protocol over all of its handles:
//
//	rt.Prefork()         // lock everything
//	pid := fork()
//	if pid != 0 {
//	    rt.PostforkParent() // unlock everything
//	} else {
//	    rt.PostforkChild()  // rebuild (or unlock) everything
//	}
//
// Only the forking thread exists in the child, so owners and queued
// waiters recorded in a backend are stale. PostforkChild therefore
// discards and rebuilds every backend, except InitCallback ones, which
// stay valid and are unlocked. If a rebuild fails, the error wraps
// [ErrReinit]; a strict Runtime ([Builder.Strict]) calls its abort hook,
// otherwise the error is logged and the handle is left unusable. Strict
// is the default only in builds with the mtx_debug tag.
//
// # Non-Goals
//
// No reader/writer locking, no TryLock, no timeouts or cancellation and
// no reentrancy: acquisition is unconditional and blocking.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic state with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions in spinning backends and [code.hybscloud.com/iox] for
// adaptive backoff once a spin budget is exhausted.
package mtx

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import "sync"

// FairMutex is a mutual exclusion lock that grants ownership in strict
// arrival order.
//
// A guard lock protects the held flag and a singly linked wait queue.
// Each blocked Lock call owns one waiter node with its own condition
// variable; Unlock hands the lock to the queue head and signals only that
// waiter, so no newcomer can overtake a queued caller and no wake-up
// reaches more than one goroutine.
//
// The zero value is an unlocked FairMutex.
type FairMutex struct {
	guard   sync.Mutex
	held    bool
	waiting int
	head    *waiter
	tail    *waiter
}

// waiter is one blocked Lock call. It lives only while that call is
// inside Lock and is dequeued exactly once, by the Unlock that grants it.
type waiter struct {
	cond    sync.Cond
	granted bool
	next    *waiter
}

// NewFairMutex creates an unlocked FairMutex.
func NewFairMutex() *FairMutex {
	return &FairMutex{}
}

// Lock acquires fm, blocking behind every caller that arrived earlier.
func (fm *FairMutex) Lock() {
	fm.guard.Lock()

	if !fm.held && fm.waiting == 0 {
		fm.held = true
		fm.guard.Unlock()
		return
	}

	w := &waiter{}
	w.cond.L = &fm.guard
	fm.enqueue(w)
	fm.waiting++

	// Only Unlock grants, and only to the head; re-check anyway so a
	// stray wake-up cannot let two owners in.
	for !w.granted {
		w.cond.Wait()
	}

	if fm.waiting <= 0 || fm.held {
		fm.guard.Unlock()
		panic("mtx: FairMutex hand-off with inconsistent state")
	}
	fm.waiting--
	fm.held = true
	fm.guard.Unlock()
}

// Unlock releases fm and hands it to the longest waiting caller, if any.
// It panics if fm is not locked.
func (fm *FairMutex) Unlock() {
	fm.guard.Lock()

	if !fm.held {
		fm.guard.Unlock()
		panic("mtx: unlock of unlocked FairMutex")
	}
	fm.held = false
	if fm.head != nil {
		w := fm.dequeue()
		w.granted = true
		w.cond.Signal()
	}

	fm.guard.Unlock()
}

// Users returns the owner count (0 or 1) plus the number of queued callers.
func (fm *FairMutex) Users() int {
	fm.guard.Lock()
	defer fm.guard.Unlock()
	n := fm.waiting
	if fm.held {
		n++
	}
	return n
}

// BlockedUsers returns the number of callers queued and not yet granted.
func (fm *FairMutex) BlockedUsers() int {
	fm.guard.Lock()
	defer fm.guard.Unlock()
	return fm.waiting
}

// Destroy is a no-op: a FairMutex owns nothing beyond its own memory.
// The queue is left untouched so a goroutine still parked in a discarded
// FairMutex is not corrupted.
func (fm *FairMutex) Destroy() {}

func (fm *FairMutex) enqueue(w *waiter) {
	if fm.tail != nil {
		fm.tail.next = w
	} else {
		fm.head = w
	}
	fm.tail = w
}

func (fm *FairMutex) dequeue() *waiter {
	w := fm.head
	fm.head = w.next
	if fm.tail == w {
		fm.tail = nil
	}
	w.next = nil
	return w
}

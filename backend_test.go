// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx_test

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/mtx"
)

// locker is the common surface of every backend.
type locker interface {
	Lock()
	Unlock()
	Users() int
	BlockedUsers() int
}

func newCallbackMutex(t *testing.T) *mtx.CallbackMutex {
	t.Helper()
	m, err := mtx.NewCallbackMutex(mtx.HeapAllocator{})
	if err != nil {
		t.Fatalf("NewCallbackMutex: %v", err)
	}
	return m
}

func backends(t *testing.T) map[string]locker {
	return map[string]locker{
		"Fair":            mtx.NewFairMutex(),
		"CriticalSection": mtx.NewCriticalSection(-1),
		"SpinLock":        mtx.NewSpinLock(-1),
		"InitCallback":    newCallbackMutex(t),
	}
}

// =============================================================================
// Backends - Basic Operations
// =============================================================================

func TestBackendUsers(t *testing.T) {
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if got := l.Users(); got != 0 {
				t.Fatalf("Users before Lock: got %d, want 0", got)
			}
			l.Lock()
			if got := l.Users(); got != 1 {
				t.Fatalf("Users after Lock: got %d, want 1", got)
			}
			if got := l.BlockedUsers(); got != 0 {
				t.Fatalf("BlockedUsers after Lock: got %d, want 0", got)
			}
			l.Unlock()
			if got := l.Users(); got != 0 {
				t.Fatalf("Users after Unlock: got %d, want 0", got)
			}
		})
	}
}

func TestBackendBlockedUsers(t *testing.T) {
	if mtx.RaceEnabled {
		t.Skip("skipping census contention test with race detector")
	}

	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			l.Lock()
			done := make(chan struct{})
			go func() {
				l.Lock()
				l.Unlock()
				close(done)
			}()
			waitFor(t, "contender to block", func() bool { return l.BlockedUsers() == 1 })
			if got := l.Users(); got != 2 {
				t.Fatalf("Users with one contender: got %d, want 2", got)
			}
			l.Unlock()
			<-done
			if got := l.Users(); got != 0 {
				t.Fatalf("Users after release: got %d, want 0", got)
			}
		})
	}
}

// =============================================================================
// Backends - Mutual Exclusion
// =============================================================================

func TestBackendMutualExclusion(t *testing.T) {
	const goroutines = 8
	const iterations = 1000

	if mtx.RaceEnabled {
		t.Skip("skipping concurrent backend test with race detector")
	}

	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var inside atomix.Int32
			var violations atomix.Int32
			counter := 0

			var wg sync.WaitGroup
			for range goroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range iterations {
						l.Lock()
						if inside.Add(1) != 1 {
							violations.Add(1)
						}
						counter++
						inside.Add(-1)
						l.Unlock()
					}
				}()
			}
			wg.Wait()

			if v := violations.Load(); v != 0 {
				t.Fatalf("mutual exclusion violated %d times", v)
			}
			if counter != goroutines*iterations {
				t.Fatalf("counter: got %d, want %d", counter, goroutines*iterations)
			}
		})
	}
}

func TestSpinLockZeroBudget(t *testing.T) {
	if mtx.RaceEnabled {
		t.Skip("skipping spinlock contention test with race detector")
	}

	var s mtx.SpinLock
	s.Lock()
	done := make(chan struct{})
	go func() {
		s.Lock()
		s.Unlock()
		close(done)
	}()
	waitFor(t, "contender to back off", func() bool { return s.BlockedUsers() == 1 })
	s.Unlock()
	<-done
}

func TestCriticalSectionNoSpin(t *testing.T) {
	if mtx.RaceEnabled {
		t.Skip("skipping census contention test with race detector")
	}

	cs := mtx.NewCriticalSection(0)
	cs.Lock()
	done := make(chan struct{})
	go func() {
		cs.Lock()
		cs.Unlock()
		close(done)
	}()
	waitFor(t, "contender to block", func() bool { return cs.BlockedUsers() == 1 })
	cs.Unlock()
	<-done
}

// =============================================================================
// CallbackMutex - Allocator
// =============================================================================

type failingAllocator struct{ err error }

func (a failingAllocator) Calloc(n, size uintptr) (unsafe.Pointer, error) {
	return nil, a.err
}

type nilAllocator struct{}

func (nilAllocator) Calloc(n, size uintptr) (unsafe.Pointer, error) {
	return nil, nil
}

func TestCallbackMutexAllocatorFailure(t *testing.T) {
	errOOM := errors.New("out of memory")
	if _, err := mtx.NewCallbackMutex(failingAllocator{err: errOOM}); !errors.Is(err, errOOM) {
		t.Fatalf("NewCallbackMutex: got %v, want %v", err, errOOM)
	}
	if _, err := mtx.NewCallbackMutex(nilAllocator{}); err == nil {
		t.Fatal("NewCallbackMutex with nil storage: got nil error")
	}
}

func TestCallbackMutexUsesAllocatorStorage(t *testing.T) {
	alloc := &recordingAllocator{}
	m, err := mtx.NewCallbackMutex(alloc)
	if err != nil {
		t.Fatalf("NewCallbackMutex: %v", err)
	}
	if len(alloc.blocks) != 1 {
		t.Fatalf("Calloc calls: got %d, want 1", len(alloc.blocks))
	}
	if mtx.StorageOf(m) != alloc.blocks[0] {
		t.Fatal("native mutex not placed in allocator storage")
	}
	m.Lock()
	m.Unlock()
}

func TestHeapAllocator(t *testing.T) {
	var a mtx.HeapAllocator

	p, err := a.Calloc(4, 16)
	if err != nil {
		t.Fatalf("Calloc: %v", err)
	}
	b := unsafe.Slice((*byte)(p), 64)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d: got %d, want 0", i, v)
		}
	}
	if uintptr(p)%8 != 0 {
		t.Fatalf("alignment: %p is not word aligned", p)
	}

	if p, err := a.Calloc(0, 8); err != nil || p == nil {
		t.Fatalf("Calloc(0, 8): got (%v, %v), want non-nil pointer", p, err)
	}
	if _, err := a.Calloc(^uintptr(0), 2); err == nil {
		t.Fatal("Calloc overflow: got nil error")
	}
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// CallbackMutex is a native mutex whose storage comes from the
// allocator's own zeroed allocation primitive.
//
// Building one calls back into the allocator, so it cannot be done while
// the allocator is still bootstrapping. A Runtime configured for
// InitCallback defers construction of every handle until Boot.
//
// Unlike the other backends, a CallbackMutex stays valid across fork:
// the child only needs to unlock it.
type CallbackMutex struct {
	mu *sync.Mutex
	census
}

// errNilStorage reports an allocator that returned no memory and no error.
var errNilStorage = errors.New("allocator returned nil storage")

// NewCallbackMutex creates an unlocked CallbackMutex whose native lock
// lives in memory obtained from alloc.
func NewCallbackMutex(alloc Allocator) (*CallbackMutex, error) {
	p, err := alloc.Calloc(1, unsafe.Sizeof(sync.Mutex{}))
	if err != nil {
		return nil, fmt.Errorf("calloc native mutex: %w", err)
	}
	if p == nil {
		return nil, errNilStorage
	}
	return &CallbackMutex{mu: (*sync.Mutex)(p)}, nil
}

// Lock acquires m.
func (m *CallbackMutex) Lock() {
	if !m.mu.TryLock() {
		m.waiting.AddAcqRel(1)
		m.mu.Lock()
		m.waiting.AddAcqRel(-1)
	}
	m.held.StoreRelease(1)
}

// Unlock releases m.
func (m *CallbackMutex) Unlock() {
	m.held.StoreRelease(0)
	m.mu.Unlock()
}

// Users returns 1 if m is held, plus the number of blocked callers.
func (m *CallbackMutex) Users() int { return m.users() }

// BlockedUsers returns the number of blocked callers.
func (m *CallbackMutex) BlockedUsers() int { return m.blocked() }

// Destroy is a no-op: allocator bootstrap memory is never returned.
func (m *CallbackMutex) Destroy() {}

// HeapAllocator is an Allocator backed by the Go heap. Memory is
// word-aligned, zeroed, and kept alive by the returned pointer.
type HeapAllocator struct{}

// Calloc returns n*size zeroed bytes.
func (HeapAllocator) Calloc(n, size uintptr) (unsafe.Pointer, error) {
	total := n * size
	if size != 0 && total/size != n {
		return nil, fmt.Errorf("calloc %d x %d: size overflow", n, size)
	}
	if total == 0 {
		total = 1
	}
	words := make([]uint64, (total+7)/8)
	return unsafe.Pointer(&words[0]), nil
}

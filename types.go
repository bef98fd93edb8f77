// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// backend is the native lock beneath a Mutex handle.
//
// Every backend kind implements the same contract; the kind is fixed per
// Runtime, so a handle never changes kind over its lifetime. Fork
// handling lives in Mutex because it only depends on the kind.
type backend interface {
	Lock()
	Unlock()

	// Destroy releases native resources. The backend is not used again.
	Destroy()

	// Users returns the owner count plus the number of blocked callers.
	Users() int

	// BlockedUsers returns the number of callers waiting to acquire.
	BlockedUsers() int
}

// Allocator is the allocator's low-level zeroed allocation primitive.
//
// CallbackMutex builds its native lock inside memory obtained from
// Calloc. Implementations must return memory that is zeroed, aligned for
// any word-sized field, and kept alive for the life of the process.
//
// Example:
//
//	type arena struct{ words []uint64 }
//
//	func (a *arena) Calloc(n, size uintptr) (unsafe.Pointer, error) {
//	    // carve n*size zeroed bytes from a.words
//	}
type Allocator interface {
	Calloc(n, size uintptr) (unsafe.Pointer, error)
}

// census tracks owner and contender counts for native backends that do
// not keep a queue of their own.
type census struct {
	held    atomix.Int32
	waiting atomix.Int32
}

func (c *census) users() int {
	return int(c.held.LoadRelaxed() + c.waiting.LoadRelaxed())
}

func (c *census) blocked() int {
	return int(c.waiting.LoadRelaxed())
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padInt32 is padding to fill a cache line after a 4-byte field.
type padInt32 [64 - 4]byte

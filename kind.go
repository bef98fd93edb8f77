// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

// Kind selects the backend beneath every Mutex of a Runtime.
type Kind uint8

const (
	// Fair selects FairMutex: strict FIFO hand-off.
	Fair Kind = iota
	// CriticalSection selects CriticalSection: spin, then block.
	CriticalSection
	// SpinLock selects SpinLock: busy-wait only.
	SpinLock
	// InitCallback selects CallbackMutex: storage from the allocator,
	// construction deferred until Runtime.Boot.
	InitCallback
)

// String returns the backend name.
func (k Kind) String() string {
	switch k {
	case Fair:
		return "fair"
	case CriticalSection:
		return "critical-section"
	case SpinLock:
		return "spinlock"
	case InitCallback:
		return "init-callback"
	default:
		return "unknown"
	}
}

// Valid reports whether k names a backend.
func (k Kind) Valid() bool {
	return k <= InitCallback
}

// forkSafe reports whether the backend stays valid in a forked child, in
// which case the child only unlocks it instead of rebuilding.
func (k Kind) forkSafe() bool {
	return k == InitCallback
}

// deferred reports whether construction must wait for Runtime.Boot.
func (k Kind) deferred() bool {
	return k == InitCallback
}

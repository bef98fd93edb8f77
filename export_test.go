// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import "unsafe"

// FailConstruct makes every later backend construction of rt return the
// error produced by fail, when fail returns non-nil.
func FailConstruct(rt *Runtime, fail func() error) {
	next := rt.construct
	rt.newBackend = func() (backend, error) {
		if err := fail(); err != nil {
			return nil, err
		}
		return next()
	}
}

// BackendOf returns the current backend of m, or nil.
func BackendOf(m *Mutex) any {
	if m.b == nil {
		return nil
	}
	return m.b
}

// StorageOf returns the allocator memory holding the native lock of cm.
func StorageOf(cm *CallbackMutex) unsafe.Pointer {
	return unsafe.Pointer(cm.mu)
}

// SetOnThreaded installs a hook run once inside the gate's flip barrier.
func SetOnThreaded(g *Gate, f func()) {
	g.onThreaded = f
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import "errors"

// ErrInit indicates a backend could not be constructed, for example
// because the allocator callback ran out of memory.
//
// Runtime.Init wraps ErrInit together with the underlying cause:
//
//	if err := rt.Init(&m); errors.Is(err, mtx.ErrInit) {
//	    // the handle has no backend and must not be used
//	}
var ErrInit = errors.New("mtx: mutex init failed")

// ErrBoot indicates a deferred handle failed construction during
// Runtime.Boot. Handles registered after the failing one stay pending,
// and the allocator bootstrap as a whole must be treated as failed.
var ErrBoot = errors.New("mtx: deferred mutex init failed during boot")

// ErrReinit indicates a handle could not be rebuilt in a forked child.
//
// ErrReinit is never returned. It is passed to the abort hook under a
// strict configuration and logged otherwise; in the tolerant case the
// handle is left without a backend.
var ErrReinit = errors.New("mtx: mutex reinit failed in child")

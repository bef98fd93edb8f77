// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package mtx

// RaceEnabled is true when the race detector is active.
// Used by tests to skip SpinLock stress tests, whose atomix accesses the
// detector cannot pair with the plain memory they protect.
const RaceEnabled = true

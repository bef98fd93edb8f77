// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package mtx

// RaceEnabled is false when the race detector is not active, so the
// census and SpinLock contention tests run against every backend.
const RaceEnabled = false

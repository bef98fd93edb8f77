// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build windows

package mtx

// DefaultKind is the backend a Runtime uses unless configured otherwise.
// Windows builds wrap critical sections.
const DefaultKind = CriticalSection

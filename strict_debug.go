// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build mtx_debug

package mtx

// defaultStrict makes a failed child-side rebuild fatal in debug builds.
const defaultStrict = true

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtx

import (
	"fmt"
	"log/slog"
	"os"
)

// Options configures a Runtime.
type Options struct {
	// Backend selection (fixed for every handle of the Runtime)
	kind Kind

	// Threading gate policy
	policy Policy

	// Abort on a failed child-side rebuild instead of tolerating it
	strict bool

	// Spin budget for CriticalSection and SpinLock
	spinCount int

	// Collaborators
	alloc  Allocator
	abort  func(error)
	logger *slog.Logger
}

// Builder creates a Runtime with fluent configuration.
//
// Example:
//
//	// Platform default backend, always locking
//	rt := mtx.New().Build()
//
//	// FIFO-fair locks, elided until the first spawn, strict fork handling
//	rt := mtx.New().Backend(mtx.Fair).Lazy().Strict(true).Build()
//
//	// Native mutexes built from allocator memory after bootstrap
//	rt := mtx.New().Backend(mtx.InitCallback).Allocator(base).Build()
type Builder struct {
	opts Options
}

// New creates a Runtime builder with the platform defaults:
// DefaultKind, AlwaysThreaded, DefaultSpinCount, HeapAllocator, and the
// build's default strictness (strict only with the mtx_debug tag).
func New() *Builder {
	return &Builder{opts: Options{
		kind:      DefaultKind,
		policy:    AlwaysThreaded,
		strict:    defaultStrict,
		spinCount: DefaultSpinCount,
		alloc:     HeapAllocator{},
	}}
}

// Backend selects the backend kind for every handle.
// Panics if kind is not a known backend.
func (b *Builder) Backend(kind Kind) *Builder {
	if !kind.Valid() {
		panic(fmt.Sprintf("mtx: unknown backend kind %d", kind))
	}
	b.opts.kind = kind
	return b
}

// Lazy elides locking until the process is marked multithreaded.
func (b *Builder) Lazy() *Builder {
	b.opts.policy = LazyThreaded
	return b
}

// Strict sets whether a failed child-side rebuild is fatal.
func (b *Builder) Strict(strict bool) *Builder {
	b.opts.strict = strict
	return b
}

// SpinCount sets the spin budget of CriticalSection and SpinLock
// backends. Panics if n < 0.
func (b *Builder) SpinCount(n int) *Builder {
	if n < 0 {
		panic("mtx: spin count must be >= 0")
	}
	b.opts.spinCount = n
	return b
}

// Allocator sets the zeroed allocation primitive used by InitCallback
// backends. Panics if alloc is nil.
func (b *Builder) Allocator(alloc Allocator) *Builder {
	if alloc == nil {
		panic("mtx: nil allocator")
	}
	b.opts.alloc = alloc
	return b
}

// Abort sets the hook called on fatal conditions. The hook is expected
// not to return; if it does, the Runtime carries on as if tolerant.
func (b *Builder) Abort(abort func(error)) *Builder {
	b.opts.abort = abort
	return b
}

// Logger sets the structured logger. Defaults to slog.Default().
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.opts.logger = logger
	return b
}

// Build creates the Runtime.
func (b *Builder) Build() *Runtime {
	opts := b.opts
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	logger := opts.logger.With(slog.String("component", "mtx"))
	if opts.abort == nil {
		opts.abort = func(err error) {
			logger.Error("fatal mutex error, aborting", slog.Any("err", err))
			os.Exit(2)
		}
	}
	return newRuntime(opts, logger)
}

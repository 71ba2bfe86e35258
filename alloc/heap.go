// Copyright 2025 gktypes Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package alloc

import (
	"sync"
	"unsafe"
)

// heapBackend is a Backend over Go's runtime heap. Alignment greater than
// what Go's allocator naturally provides is achieved by over-allocating and
// carving an aligned pointer out of the middle, the same "over-allocate and
// align" idiom used for cache-line-aligned structs elsewhere in the
// ecosystem (e.g. shared-memory market-data slots aligned to 64 bytes out
// of a raw byte region).
//
// Free is a documented no-op: Go's garbage collector reclaims the backing
// slice once the last reference to it is dropped. The method exists on the
// interface so that other backends (e.g. an arena or a pooled allocator)
// can perform real deallocation without callers changing.
type heapBackend struct{}

// alignedAlloc rounds capacity up for alignment. The aligned result stays
// an unsafe.Pointer derived entirely through unsafe.Add rather than a
// bare-uintptr round trip, so it remains an interior pointer into buf's
// backing array for as long as it's reachable — the GC keeps buf alive
// through it, no finalizer or explicit KeepAlive required.
func alignedAlloc(l Layout) unsafe.Pointer {
	if l.Size == 0 {
		l.Size = 1
	}
	if l.Align <= 1 {
		buf := make([]byte, l.Size)
		return unsafe.Pointer(&buf[0])
	}

	buf := make([]byte, l.Size+l.Align-1)
	base := unsafe.Pointer(&buf[0])
	offset := (-uintptr(base)) & (l.Align - 1)
	return unsafe.Add(base, offset)
}

func (heapBackend) Alloc(l Layout) (unsafe.Pointer, error) {
	return alignedAlloc(l), nil
}

func (heapBackend) AllocZeroed(l Layout) (unsafe.Pointer, error) {
	// make([]byte, ...) is already zero-initialized by the runtime.
	return alignedAlloc(l), nil
}

func (heapBackend) Free(ptr unsafe.Pointer, l Layout) {
	// No-op: see heapBackend's doc comment.
}

var (
	defaultOnce  sync.Once
	defaultAlloc Allocator
)

// Default returns the process-wide default heap allocator, lazily
// initialized on first use and shared by all callers thereafter. Grounded
// on original_source's global_heap_allocator: a single Once-guarded
// initialization, thread-safe access after that, no teardown before
// process exit.
func Default() Allocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewAllocator(heapBackend{})
	})
	return defaultAlloc
}

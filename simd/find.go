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
package simd

import (
	"math/bits"
	"unsafe"
)

// laneWidth is the constraint for element widths eligible for the find
// kernels below: exactly the four SIMD-eligible byte widths from spec.md,
// reinterpreted as unsigned integers of the matching size so that value
// equality is a single machine comparison regardless of the caller's
// logical element type.
type laneWidth interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// laneFind implements the uniform algorithm from original_source's
// array/simd.rs (simd_find_epi{8,16,32,64}_{256,512}), generalized over
// element width and stride so a single implementation serves every
// (width, lane-size) combination instead of sixteen near-duplicates.
//
// It sweeps the allocated extent [0, capacity) in stride-sized chunks. Each
// chunk is compared against the broadcast needle to build an equality mask
// (a genuine hardware kernel would do this with one SIMD compare
// instruction; this portable kernel builds the same mask scalar-lane by
// scalar-lane, but preserves the mask/trailing-zero/bounds-check shape
// exactly). The lowest set bit's position is the first match in the chunk;
// it's accepted only if it falls within the live length, matching spec.md
// section 4.2's "candidate_index < length" acceptance rule.
func laneFind[T laneWidth](base unsafe.Pointer, length, capacity, stride int, needle T) (int, bool) {
	if capacity == 0 {
		return 0, false
	}
	elems := unsafe.Slice((*T)(base), capacity)

	for offset := 0; offset < capacity; offset += stride {
		end := offset + stride
		if end > capacity {
			end = capacity
		}

		var mask uint64
		for i := offset; i < end; i++ {
			if elems[i] == needle {
				mask |= 1 << uint(i-offset)
			}
		}
		if mask == 0 {
			continue
		}

		k := bits.TrailingZeros64(mask)
		candidate := offset + k
		if candidate < length {
			return candidate, true
		}
		// The lowest set bit in this chunk already lies beyond the live
		// length; every other set bit in the chunk has a larger index, so
		// none of them can be within length either. Move to the next chunk.
	}
	return 0, false
}

// scalarFind is the no-SIMD fallback: a plain left-to-right value-equality
// scan. It is also what laneFind degenerates to whenever stride >= capacity,
// so it is never invoked on a separate code path that could disagree with
// laneFind's bounds handling.
func scalarFind[T laneWidth](base unsafe.Pointer, length, capacity int, needle T) (int, bool) {
	if length > capacity {
		length = capacity
	}
	elems := unsafe.Slice((*T)(base), length)
	for i, v := range elems {
		if v == needle {
			return i, true
		}
	}
	return 0, false
}

// Kernel function-pointer table, selected once per process by
// selectKernels() and never consulted per call after that.
var (
	kernel8  func(unsafe.Pointer, int, int, uint8) (int, bool)
	kernel16 func(unsafe.Pointer, int, int, uint16) (int, bool)
	kernel32 func(unsafe.Pointer, int, int, uint32) (int, bool)
	kernel64 func(unsafe.Pointer, int, int, uint64) (int, bool)
)

func selectKernels() {
	switch currentLevel {
	case AVX512:
		kernel8 = func(b unsafe.Pointer, l, c int, n uint8) (int, bool) { return laneFind(b, l, c, 64, n) }
		kernel16 = func(b unsafe.Pointer, l, c int, n uint16) (int, bool) { return laneFind(b, l, c, 32, n) }
		kernel32 = func(b unsafe.Pointer, l, c int, n uint32) (int, bool) { return laneFind(b, l, c, 16, n) }
		kernel64 = func(b unsafe.Pointer, l, c int, n uint64) (int, bool) { return laneFind(b, l, c, 8, n) }
	case AVX2:
		kernel8 = func(b unsafe.Pointer, l, c int, n uint8) (int, bool) { return laneFind(b, l, c, 32, n) }
		kernel16 = func(b unsafe.Pointer, l, c int, n uint16) (int, bool) { return laneFind(b, l, c, 16, n) }
		kernel32 = func(b unsafe.Pointer, l, c int, n uint32) (int, bool) { return laneFind(b, l, c, 8, n) }
		kernel64 = func(b unsafe.Pointer, l, c int, n uint64) (int, bool) { return laneFind(b, l, c, 4, n) }
	case Scalar:
		// Only reached via the GKTYPES_NO_SIMD override, a deliberate
		// test/debug request for the value-equality scan — never an
		// automatic substitute for missing hardware support.
		kernel8 = scalarFind[uint8]
		kernel16 = scalarFind[uint16]
		kernel32 = scalarFind[uint32]
		kernel64 = scalarFind[uint64]
	default:
		// Unsupported: neither AVX512 nor AVX2 is available. Per spec.md
		// §4.3, find_simd aborts on the first attempt rather than
		// silently degrading to scalar; this mirrors original_source's
		// do_simd_find, whose Once-guarded dispatch panics the same way
		// ("AVX-512 and AVX-2 are both not supported") the first time it
		// runs, not at program load. Find (the non-SIMD scan) is
		// unaffected: only these kernel entry points panic.
		kernel8 = func(unsafe.Pointer, int, int, uint8) (int, bool) { panic(unsupportedMsg) }
		kernel16 = func(unsafe.Pointer, int, int, uint16) (int, bool) { panic(unsupportedMsg) }
		kernel32 = func(unsafe.Pointer, int, int, uint32) (int, bool) { panic(unsupportedMsg) }
		kernel64 = func(unsafe.Pointer, int, int, uint64) (int, bool) { panic(unsupportedMsg) }
	}
}

// unsupportedMsg is the panic text for a find_simd attempt on a host with
// neither AVX512 nor AVX2 support, matching original_source's
// array_list.rs::do_simd_find panic text.
const unsupportedMsg = "simd: AVX-512 and AVX-2 are both not supported"

// Find8 scans [0, capacity) of 1-byte elements at base for needle, applying
// the process's selected kernel. Returns the index and true on a match
// within [0, length), or (0, false) on exhaustion.
func Find8(base unsafe.Pointer, length, capacity int, needle uint8) (int, bool) {
	return kernel8(base, length, capacity, needle)
}

// Find16 is Find8's 2-byte-element counterpart.
func Find16(base unsafe.Pointer, length, capacity int, needle uint16) (int, bool) {
	return kernel16(base, length, capacity, needle)
}

// Find32 is Find8's 4-byte-element counterpart.
func Find32(base unsafe.Pointer, length, capacity int, needle uint32) (int, bool) {
	return kernel32(base, length, capacity, needle)
}

// Find64 is Find8's 8-byte-element counterpart.
func Find64(base unsafe.Pointer, length, capacity int, needle uint64) (int, bool) {
	return kernel64(base, length, capacity, needle)
}

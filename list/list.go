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

// Package list implements a small-buffer-optimized (SBO), allocator-aware
// growable sequence, with SIMD-width-aware linear search for 1/2/4/8-byte
// element widths.
//
// List[T] is intended for plain-old-data element types: primitives, fixed
// arrays, and structs composed of them — the same assumption the original
// Rust implementation this package is grounded on makes (it has no move/drop
// glue beyond a bitwise copy). Element storage, including the heap buffer,
// is carved out of raw bytes obtained from an alloc.Allocator and
// reinterpreted via unsafe.Pointer; a T containing pointers, slices, maps,
// or interfaces is not guaranteed to be tracked correctly by the garbage
// collector once placed in a heap-allocated List, because the backing
// allocation is byte-typed rather than T-typed. This mirrors the scope of
// every worked example in the source this package is grounded on (integers
// and fixed-size PODs only).
package list

import (
	"unsafe"

	"github.com/ajroetker/gktypes/alloc"
	"github.com/ajroetker/gktypes/simd"
)

// wordSize is the machine word size in bytes (8 on amd64/arm64, 4 on
// 32-bit architectures).
const wordSize = unsafe.Sizeof(uintptr(0))

// inlineBytes is the size, in bytes, of the small-buffer-optimization
// storage: exactly two machine words, per spec.
const inlineBytes = wordSize * 2

// heapFlagBit is the high bit of the length-with-tag word. It is only
// meaningful for types that qualify for inline storage.
const heapFlagBit = uintptr(1) << (wordSize*8 - 1)

// lengthMask covers every bit of the length-with-tag word except the flag.
const lengthMask = ^heapFlagBit

// heapRep is the heap-resident representation: a raw data pointer plus its
// capacity in elements. It is laid out to fit inside List's two-word
// storage union.
type heapRep struct {
	data     unsafe.Pointer
	capacity int
}

// List is a growable, allocator-aware sequence of T. The zero value is not
// usable; construct with New or WithCapacity.
type List[T any] struct {
	alloc     alloc.Allocator
	lengthTag uintptr
	storage   [2]uintptr
}

// qualifiesForInline reports whether T is small and aligned enough to live
// in the two-word inline storage rather than requiring a heap allocation.
func qualifiesForInline[T any]() bool {
	var zero T
	return unsafe.Sizeof(zero) <= inlineBytes && uintptr(unsafe.Alignof(zero)) <= wordSize
}

// inlineCapacity returns the number of T elements that fit in inline
// storage for qualifying types (0 for non-qualifying or zero-sized types).
func inlineCapacity[T any]() int {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return 0
	}
	return int(inlineBytes / size)
}

// simdEligibleWidth reports whether T's size is one of the SIMD-eligible
// widths (1, 2, 4, 8 bytes) and, if so, what it is.
func simdEligibleWidth[T any]() (eligible bool, width int) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	switch size {
	case 1, 2, 4, 8:
		return true, size
	default:
		return false, size
	}
}

func roundUp(n, stride int) int {
	if stride <= 1 {
		return n
	}
	return ((n + stride - 1) / stride) * stride
}

// roundedCapacityFor applies the SIMD-stride rounding rule to a requested
// capacity, for widths eligible for the find kernels in package simd.
func roundedCapacityFor[T any](target int) int {
	if eligible, width := simdEligibleWidth[T](); eligible {
		return roundUp(target, 64/width)
	}
	return target
}

// New creates an empty List using the given allocator. No allocation
// happens for types that qualify for inline storage until capacity is
// exceeded.
func New[T any](a alloc.Allocator) *List[T] {
	l := &List[T]{alloc: a}
	if !qualifiesForInline[T]() {
		hr := l.heapRepPtr()
		hr.data = nil
		hr.capacity = 0
	}
	return l
}

// WithCapacity creates an empty List with at least the requested capacity
// pre-allocated. The request is ignored (no allocation occurs) if it fits
// within inline storage.
func WithCapacity[T any](a alloc.Allocator, capacity int) (*List[T], error) {
	l := New[T](a)
	if capacity <= l.Cap() {
		return l, nil
	}
	if err := l.reallocateTo(capacity); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List[T]) heapRepPtr() *heapRep {
	return (*heapRep)(unsafe.Pointer(&l.storage[0]))
}

func (l *List[T]) inlinePtr() unsafe.Pointer {
	return unsafe.Pointer(&l.storage[0])
}

// isHeap reports the current representation. For non-qualifying types this
// is always true.
func (l *List[T]) isHeap() bool {
	if !qualifiesForInline[T]() {
		return true
	}
	return l.lengthTag&heapFlagBit != 0
}

func (l *List[T]) setHeapFlag() {
	if qualifiesForInline[T]() {
		l.lengthTag |= heapFlagBit
	}
}

func (l *List[T]) length() int {
	if qualifiesForInline[T]() {
		return int(l.lengthTag & lengthMask)
	}
	return int(l.lengthTag)
}

func (l *List[T]) setLength(n int) {
	if qualifiesForInline[T]() {
		l.lengthTag = (l.lengthTag &^ lengthMask) | (uintptr(n) & lengthMask)
		return
	}
	l.lengthTag = uintptr(n)
}

// dataPtr returns a pointer to element 0 of the current representation.
func (l *List[T]) dataPtr() unsafe.Pointer {
	if l.isHeap() {
		return l.heapRepPtr().data
	}
	return l.inlinePtr()
}

// elemsSlice returns a slice view over the first n elements of the current
// buffer (n is normally Cap(), the full allocated extent).
func (l *List[T]) elemsSlice(n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(l.dataPtr()), n)
}

// Len returns the number of live elements.
func (l *List[T]) Len() int {
	return l.length()
}

// Cap returns the current capacity.
func (l *List[T]) Cap() int {
	if l.isHeap() {
		return l.heapRepPtr().capacity
	}
	return inlineCapacity[T]()
}

// IsHeap reports whether the List currently uses heap storage. Once true,
// it never reverts to false (promotion is monotonic).
func (l *List[T]) IsHeap() bool {
	return l.isHeap()
}

// At returns the element at index i. Index out of range is a fatal
// precondition violation.
func (l *List[T]) At(i int) T {
	n := l.length()
	if i < 0 || i >= n {
		panic("list: index out of range")
	}
	return l.elemsSlice(l.Cap())[i]
}

// Set overwrites the element at index i. Index out of range is a fatal
// precondition violation.
func (l *List[T]) Set(i int, v T) {
	n := l.length()
	if i < 0 || i >= n {
		panic("list: index out of range")
	}
	l.elemsSlice(l.Cap())[i] = v
}

// SetLength unsafely changes the logical length without touching storage.
// floor <= n <= Cap() is required; violating it is a fatal precondition
// violation. This exists to exercise find_simd's "match beyond length"
// behavior deterministically, matching spec.md's documented test scenario.
func (l *List[T]) SetLength(n int) {
	if n < 0 || n > l.Cap() {
		panic("list: set_length out of range")
	}
	l.setLength(n)
}

// reallocateTo grows (or, for ShrinkToFit/ShrinkTo, shrinks) the backing
// store to the SIMD-rounded value of targetCap. It handles inline->heap
// promotion and heap->heap reallocation uniformly; inline storage is never
// freed (it requires no deallocation), and promotion is monotonic.
func (l *List[T]) reallocateTo(targetCap int) error {
	rounded := roundedCapacityFor[T](targetCap)
	align := uintptr(0)
	if eligible, _ := simdEligibleWidth[T](); eligible {
		align = 64
	}

	n := l.length()
	wasHeap := l.isHeap()
	var oldData unsafe.Pointer
	var oldCap int
	if wasHeap {
		hr := l.heapRepPtr()
		oldData, oldCap = hr.data, hr.capacity
	}

	if rounded == 0 {
		if wasHeap && oldData != nil {
			freeRaw[T](l.alloc, oldData, oldCap, align)
		}
		hr := l.heapRepPtr()
		hr.data = nil
		hr.capacity = 0
		l.setHeapFlag()
		return nil
	}

	newPtr, err := allocRaw[T](l.alloc, rounded, align)
	if err != nil {
		return err
	}

	if n > 0 {
		var oldElems []T
		if wasHeap {
			oldElems = unsafe.Slice((*T)(oldData), oldCap)
		} else {
			oldElems = unsafe.Slice((*T)(l.inlinePtr()), inlineCapacity[T]())
		}
		newElems := unsafe.Slice((*T)(newPtr), rounded)
		copy(newElems[:n], oldElems[:n])
	}

	if wasHeap && oldData != nil {
		freeRaw[T](l.alloc, oldData, oldCap, align)
	}

	hr := l.heapRepPtr()
	hr.data = newPtr
	hr.capacity = rounded
	l.setHeapFlag()
	return nil
}

func allocRaw[T any](a alloc.Allocator, n int, align uintptr) (unsafe.Pointer, error) {
	if align == 0 {
		return alloc.Buffer[T](a, n)
	}
	return alloc.AlignedBuffer[T](a, n, align)
}

func freeRaw[T any](a alloc.Allocator, p unsafe.Pointer, n int, align uintptr) {
	if align == 0 {
		alloc.FreeBuffer[T](a, p, n)
		return
	}
	alloc.FreeAlignedBuffer[T](a, p, n, align)
}

// growPolicy grows to at least minCapacity using the amortized growth
// policy: max(minCapacity, ceil(1.5*(current+1))).
func (l *List[T]) growPolicy(minCapacity int) error {
	cur := l.Cap()
	if minCapacity <= cur {
		return nil
	}
	policyTarget := (3*(cur+1) + 1) / 2 // ceil(1.5*(cur+1))
	target := minCapacity
	if policyTarget > target {
		target = policyTarget
	}
	return l.reallocateTo(target)
}

// Push appends x, growing the backing store per the amortized growth
// policy if needed.
func (l *List[T]) Push(x T) error {
	n := l.length()
	if n == l.Cap() {
		if err := l.growPolicy(n + 1); err != nil {
			return err
		}
	}
	l.elemsSlice(l.Cap())[n] = x
	l.setLength(n + 1)
	return nil
}

// Insert places x at index i, shifting [i, Len()) one slot right. i must be
// strictly less than Len(); inserting at Len() is a fatal precondition
// violation — use Push to append.
func (l *List[T]) Insert(i int, x T) error {
	n := l.length()
	if i < 0 || i >= n {
		panic("list: insert index out of range (use Push to append at Len())")
	}
	if n == l.Cap() {
		if err := l.growPolicy(n + 1); err != nil {
			return err
		}
	}
	elems := l.elemsSlice(l.Cap())
	for j := n; j > i; j-- {
		elems[j] = elems[j-1]
	}
	elems[i] = x
	l.setLength(n + 1)
	return nil
}

// Remove removes and returns the element at index i, shifting
// [i+1, Len()) one slot left. Capacity is unchanged; use ShrinkToFit to
// release it. Index out of range is a fatal precondition violation.
func (l *List[T]) Remove(i int) T {
	n := l.length()
	if i < 0 || i >= n {
		panic("list: remove index out of range")
	}
	elems := l.elemsSlice(l.Cap())
	out := elems[i]
	for j := i; j < n-1; j++ {
		elems[j] = elems[j+1]
	}
	var zero T
	elems[n-1] = zero
	l.setLength(n - 1)
	return out
}

// SwapRemove removes and returns the element at index i in O(1) by moving
// the last element into its place. Order of [0, Len()-2) is preserved.
// Index out of range is a fatal precondition violation.
func (l *List[T]) SwapRemove(i int) T {
	n := l.length()
	if i < 0 || i >= n {
		panic("list: swap_remove index out of range")
	}
	elems := l.elemsSlice(l.Cap())
	out := elems[i]
	if i != n-1 {
		elems[i] = elems[n-1]
	}
	var zero T
	elems[n-1] = zero
	l.setLength(n - 1)
	return out
}

// Reserve ensures capacity for at least `additional` more elements beyond
// Len(), growing per the amortized policy if needed. No-op if already
// satisfied.
func (l *List[T]) Reserve(additional int) error {
	return l.growPolicy(l.length() + additional)
}

// ReserveExact ensures capacity for exactly Len()+additional elements
// (subject to SIMD-stride rounding), bypassing the amortized growth
// multiplier. No-op if already satisfied.
func (l *List[T]) ReserveExact(additional int) error {
	want := l.length() + additional
	if want <= l.Cap() {
		return nil
	}
	return l.reallocateTo(want)
}

// ShrinkToFit releases unused capacity down to Len(), subject to SIMD-
// stride rounding (so the effective floor may exceed Len() exactly for
// SIMD-eligible widths — this reuses the growth/reallocation path, which
// re-applies that rounding, and is intentional). Never reverts heap storage
// to inline.
func (l *List[T]) ShrinkToFit() error {
	if !l.isHeap() {
		return nil
	}
	min := l.length()
	if l.Cap() <= roundedCapacityFor[T](min) {
		return nil
	}
	return l.reallocateTo(min)
}

// ShrinkTo releases capacity down to max(Len(), floor), subject to SIMD-
// stride rounding. No-op if current capacity is already below floor.
func (l *List[T]) ShrinkTo(floor int) error {
	if !l.isHeap() {
		return nil
	}
	cur := l.Cap()
	if cur < floor {
		return nil
	}
	target := l.length()
	if floor > target {
		target = floor
	}
	if cur <= roundedCapacityFor[T](target) {
		return nil
	}
	return l.reallocateTo(target)
}

// Find returns the index of the first element equal to needle, scanning
// left to right over [0, Len()).
func Find[T comparable](l *List[T], needle T) (int, bool) {
	n := l.length()
	elems := l.elemsSlice(l.Cap())
	for i := 0; i < n; i++ {
		if elems[i] == needle {
			return i, true
		}
	}
	return 0, false
}

// SIMDEligible constrains FindSIMD to element types whose Go == operator
// agrees with a bitwise comparison of their in-memory representation —
// i.e. the fixed-width integer-like types the original SIMD kernels were
// written for (floats are excluded: NaN's bitwise-equal-but-IEEE-unequal
// representation would make FindSIMD and Find disagree).
type SIMDEligible interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~int | ~uint | ~bool
}

// FindSIMD returns the index of the first element equal to needle using
// the process's selected SIMD find kernel (see package simd). Its
// precondition is that T's size is one of the SIMD-eligible widths (1, 2,
// 4, or 8 bytes); violating it is a fatal precondition violation. For
// capacities below one lane's stride, the kernel degenerates to the same
// value-equality scan as Find, so results are guaranteed identical for
// every length <= capacity. On a host with neither AVX512 nor AVX2 (and no
// GKTYPES_NO_SIMD override), FindSIMD itself is a fatal precondition
// violation on first use — see simd.Unsupported; Find remains safe there.
func FindSIMD[T SIMDEligible](l *List[T], needle T) (int, bool) {
	var zero T
	size := unsafe.Sizeof(zero)
	base := l.dataPtr()
	length, capacity := l.length(), l.Cap()

	switch size {
	case 1:
		return simd.Find8(base, length, capacity, *(*uint8)(unsafe.Pointer(&needle)))
	case 2:
		return simd.Find16(base, length, capacity, *(*uint16)(unsafe.Pointer(&needle)))
	case 4:
		return simd.Find32(base, length, capacity, *(*uint32)(unsafe.Pointer(&needle)))
	case 8:
		return simd.Find64(base, length, capacity, *(*uint64)(unsafe.Pointer(&needle)))
	default:
		panic("list: find_simd requires a 1, 2, 4, or 8-byte element type")
	}
}

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

// Package alloc provides a typed, layout-aware allocation facade over a
// swappable backend. It exists so that List (see package list) can be
// parameterized by an allocator without depending on any one allocation
// strategy.
package alloc

import (
	"errors"
	"unsafe"
)

// ErrOutOfMemory is returned by every allocation path when the backend
// cannot satisfy a request. It is the only recoverable error condition in
// this module; everything else (bad index, double free, misuse) is a bug
// and panics instead.
var ErrOutOfMemory = errors.New("alloc: out of memory")

// Layout describes the size and alignment of a requested allocation, in
// bytes.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// LayoutOf returns the natural layout of T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: uintptr(unsafe.Alignof(zero))}
}

// Backend is the minimal allocation contract a concrete allocator must
// implement. Alloc and AllocZeroed return ErrOutOfMemory on failure; Free
// releases a block previously returned by Alloc/AllocZeroed with the same
// Layout it was allocated with.
type Backend interface {
	Alloc(l Layout) (unsafe.Pointer, error)
	AllocZeroed(l Layout) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer, l Layout)
}

// Allocator is a clone-cheap, shared handle to a Backend. Multiple
// Allocator values created by cloning one another always refer to the same
// underlying Backend.
type Allocator struct {
	backend Backend
}

// NewAllocator wraps a Backend in an Allocator handle.
func NewAllocator(b Backend) Allocator {
	return Allocator{backend: b}
}

// Clone returns a shallow copy sharing the same backend. Allocator is a
// small value type (one pointer-ish field), so Clone is just a copy; the
// method exists to make sharing intent explicit at call sites, matching
// original_source's Allocator::clone (an Arc clone).
func (a Allocator) Clone() Allocator {
	return a
}

// Backend returns the underlying backend, primarily for tests and for
// composing a new Allocator over the same storage.
func (a Allocator) Backend() Backend {
	return a.backend
}

// New allocates space for a single T, uninitialized.
func New[T any](a Allocator) (*T, error) {
	p, err := a.backend.Alloc(LayoutOf[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// NewZeroed allocates space for a single T, zero-initialized.
func NewZeroed[T any](a Allocator) (*T, error) {
	p, err := a.backend.AllocZeroed(LayoutOf[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// NewAligned allocates space for a single T at the requested byte
// alignment, which must be a power of two at least as large as T's natural
// alignment.
func NewAligned[T any](a Allocator, align uintptr) (*T, error) {
	l := LayoutOf[T]()
	l.Align = align
	p, err := a.backend.Alloc(l)
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// Buffer allocates space for n contiguous, uninitialized T elements.
func Buffer[T any](a Allocator, n int) (unsafe.Pointer, error) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: uintptr(unsafe.Alignof(zero))}
	return a.backend.Alloc(l)
}

// BufferZeroed allocates space for n contiguous, zero-initialized T
// elements.
func BufferZeroed[T any](a Allocator, n int) (unsafe.Pointer, error) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: uintptr(unsafe.Alignof(zero))}
	return a.backend.AllocZeroed(l)
}

// AlignedBuffer allocates space for n contiguous T elements at the
// requested byte alignment.
func AlignedBuffer[T any](a Allocator, n int, align uintptr) (unsafe.Pointer, error) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: align}
	return a.backend.Alloc(l)
}

// AlignedBufferZeroed allocates space for n contiguous, zero-initialized T
// elements at the requested byte alignment.
func AlignedBufferZeroed[T any](a Allocator, n int, align uintptr) (unsafe.Pointer, error) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: align}
	return a.backend.AllocZeroed(l)
}

// Free releases a single T previously obtained from New/NewZeroed.
func Free[T any](a Allocator, p *T) {
	a.backend.Free(unsafe.Pointer(p), LayoutOf[T]())
}

// FreeAligned releases a single T previously obtained from NewAligned at
// the given alignment.
func FreeAligned[T any](a Allocator, p *T, align uintptr) {
	l := LayoutOf[T]()
	l.Align = align
	a.backend.Free(unsafe.Pointer(p), l)
}

// FreeBuffer releases n contiguous T elements previously obtained from
// Buffer/BufferZeroed.
func FreeBuffer[T any](a Allocator, p unsafe.Pointer, n int) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: uintptr(unsafe.Alignof(zero))}
	a.backend.Free(p, l)
}

// FreeAlignedBuffer releases n contiguous T elements previously obtained
// from AlignedBuffer/AlignedBufferZeroed at the given alignment.
func FreeAlignedBuffer[T any](a Allocator, p unsafe.Pointer, n int, align uintptr) {
	var zero T
	l := Layout{Size: unsafe.Sizeof(zero) * uintptr(n), Align: align}
	a.backend.Free(p, l)
}

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
package list

import "unsafe"

// Iterator is an explicit cursor over a List's live elements, snapshotting
// the element count at construction time (mutating the List afterward does
// not extend or retract an in-flight Iterator, matching a slice-of-the-
// backing-store semantics rather than a live view).
type Iterator[T any] struct {
	elems []T
	idx   int
}

// NewIterator returns a cursor over l's current live elements.
func NewIterator[T any](l *List[T]) *Iterator[T] {
	n := l.length()
	if n == 0 {
		return &Iterator[T]{}
	}
	return &Iterator[T]{elems: unsafe.Slice((*T)(l.dataPtr()), n)}
}

// Next returns the next element and true, or the zero value and false once
// exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if it.idx >= len(it.elems) {
		var zero T
		return zero, false
	}
	v := it.elems[it.idx]
	it.idx++
	return v, true
}

// All returns a range-over-func iterator (index, value) over l's live
// elements, the idiomatic Go 1.23+ equivalent of iterating `&ArrayList<T>`
// by reference in the source this package is grounded on.
func All[T any](l *List[T]) func(func(int, T) bool) {
	return func(yield func(int, T) bool) {
		n := l.length()
		if n == 0 {
			return
		}
		elems := unsafe.Slice((*T)(l.dataPtr()), n)
		for i, v := range elems {
			if !yield(i, v) {
				return
			}
		}
	}
}

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

// Package jobsystem implements a fixed-pool cooperative job dispatcher: a
// configurable number of long-lived worker goroutines, each draining a
// bounded per-worker queue, load-balanced by a round-robin-with-load-hint
// selection algorithm, returning one-shot futures for job results.
package jobsystem

import "sync"

// cell is the shared rendezvous storage behind a Future: exactly one
// producer stores a value, exactly one consumer takes it.
type cell[T any] struct {
	mu   sync.Mutex
	data *T
}

// Future is a one-shot handle for a submitted job's eventual result.
// Grounded on original_source's job_system::future (JobFuture /
// WithinJobFuture pair), collapsed into a single type since Go has no
// borrow-checker-enforced producer/consumer split to preserve.
type Future[T any] struct {
	c *cell[T]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{c: &cell[T]{}}
}

// set stores the job's result. Called exactly once, by the job itself.
func (f *Future[T]) set(v T) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	vv := v
	f.c.data = &vv
}

// Wait blocks the calling goroutine until the job has produced a value,
// then returns it. Spins on a try-lock rather than blocking on the mutex
// outright, matching the yield-on-contention loop of the source this is
// grounded on; Go's mutexes don't carry Rust's poisoning concept, so the
// only failure mode here (an unresolved future after shutdown) spins
// forever rather than panicking — callers must not Wait on a future whose
// job was dropped unexecuted by a JobSystem shutdown.
func (f *Future[T]) Wait() T {
	for {
		if f.c.mu.TryLock() {
			if f.c.data != nil {
				v := *f.c.data
				f.c.data = nil
				f.c.mu.Unlock()
				return v
			}
			f.c.mu.Unlock()
		}
		gosched()
	}
}

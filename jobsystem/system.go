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
package jobsystem

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
)

// System dispatches submitted jobs across a fixed pool of workers, load
// balancing with a round-robin-with-load-hint selection algorithm.
// Grounded on original_source's job_system::system::JobSystem /
// Inner::get_optimal_thread_for_execution.
type System struct {
	mu            sync.Mutex
	workers       []*worker
	nextCandidate atomic.Int64
	initialized   atomic.Bool
}

// NewDeferred constructs a System that spawns no workers. Any operation
// other than Initialize on a deferred System is a fatal precondition
// violation.
func NewDeferred() *System {
	return &System{}
}

// NewWithWorkers constructs and immediately spawns n workers. Panics if
// n < 1.
func NewWithWorkers(n int) *System {
	requirePositiveWorkerCount(n)
	s := &System{}
	s.spawnWorkers(n)
	s.initialized.Store(true)
	return s
}

func requirePositiveWorkerCount(n int) {
	if n < 1 {
		panic("jobsystem: worker count must be at least 1")
	}
}

func (s *System) spawnWorkers(n int) {
	workers := make([]*worker, n)
	for i := range workers {
		workers[i] = newWorker()
		workers[i].start()
	}
	s.workers = workers
}

// Initialize transitions a deferred System to ready, spawning n workers.
// Fatal if already initialized.
func (s *System) Initialize(n int) {
	requirePositiveWorkerCount(n)
	if s.initialized.Load() {
		panic("jobsystem: already initialized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spawnWorkers(n)
	s.nextCandidate.Store(0)
	s.initialized.Store(true)
}

// Reconfigure waits for every worker to quiesce, tears them down, and
// spawns n fresh workers, resetting the round-robin hint. Requires the
// System to already be initialized.
func (s *System) Reconfigure(n int) {
	requirePositiveWorkerCount(n)
	if !s.initialized.Load() {
		panic("jobsystem: not initialized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		w.stop()
	}
	s.spawnWorkers(n)
	s.nextCandidate.Store(0)
}

// Close tears down every worker and marks the System uninitialized,
// standing in for the source this is grounded on's Drop impl for
// JobSystem (Go has no destructors, so teardown must be requested
// explicitly). Safe to call on a deferred or already-closed System.
func (s *System) Close() {
	if !s.initialized.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		w.stop()
	}
	s.workers = nil
	s.initialized.Store(false)
}

// snapshotWorkers returns the current worker slice, guarding against a
// concurrent Reconfigure replacing it mid-read. It panics if the System
// has never been initialized.
func (s *System) snapshotWorkers() []*worker {
	if !s.initialized.Load() {
		panic("jobsystem: use of a deferred JobSystem before Initialize")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

// selectWorker implements the "optimal thread" scan from spec.md 4.4:
// starting at the round-robin hint, an immediately idle-and-empty worker
// is taken on sight; otherwise the best candidate by (not-executing,
// lowest queued count) is tracked across a full sweep, ties breaking
// toward the first seen.
func (s *System) selectWorker(workers []*worker) int {
	n := len(workers)
	previous := int(uint64(s.nextCandidate.Load()) % uint64(n))

	minLoad := int64(math.MaxInt64)
	optimalExecuting := true
	current := previous

	for i := 0; i < n; i++ {
		idx := (previous + i) % n
		notExecuting := !workers[idx].isExecuting.Load()
		load := workers[idx].queue.queuedCount()

		if notExecuting && load == 0 {
			s.nextCandidate.Store(int64((idx + 1) % n))
			return idx
		}

		if notExecuting {
			if minLoad > load {
				current = idx
				minLoad = load
				optimalExecuting = false
			}
			continue
		}

		if minLoad > load && optimalExecuting {
			current = idx
			minLoad = load
		}
	}

	s.nextCandidate.Store(int64((current + 1) % n))
	return current
}

// Submit chooses a worker, enqueues fn, ensures that worker is executing,
// and returns a Future for its result.
func Submit[T any](s *System, fn func() T) *Future[T] {
	workers := s.snapshotWorkers()
	idx := s.selectWorker(workers)
	w := workers[idx]
	f := submitLocal(w, fn)
	w.requestExecute()
	return f
}

// WaitAll waits until every worker's is_executing is observed false. New
// submissions racing in from inside a running job may re-raise
// is_executing on an already-checked worker; the contract is "no worker
// is currently draining at observation time", not "no work is pending
// globally".
func (s *System) WaitAll() {
	workers := s.snapshotWorkers()
	runtime.Gosched()
	for _, w := range workers {
		w.waitLocal()
	}
}

// WorkerCount returns the number of workers currently configured.
func (s *System) WorkerCount() int {
	return len(s.snapshotWorkers())
}

// MaxAvailableWorkers returns a sensible default worker count: the number
// of logical CPUs minus one (reserving a core for the caller), floored at
// 1. Grounded on original_source's max_available_job_threads.
func MaxAvailableWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

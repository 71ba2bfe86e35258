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

// Package simd provides the runtime CPU-feature probe and the SIMD-width
// find kernels used by package list for SIMD-eligible element widths
// (1, 2, 4 and 8 bytes). Kernel selection happens once per process: the
// probe runs at package init time and the chosen kernel set is cached in a
// process-wide table, never re-checked per call.
package simd

import (
	"os"
	"strconv"
)

// Level identifies the SIMD lane width this process has selected.
type Level int

const (
	// Scalar indicates the GKTYPES_NO_SIMD escape hatch forced a plain
	// value-equality scan, regardless of what hardware supports. This is a
	// deliberate testing/debugging override, never an automatic substitute
	// for missing hardware SIMD — see Unsupported for that case.
	Scalar Level = iota
	// AVX2 indicates 256-bit (32-byte) lane kernels are in use.
	AVX2
	// AVX512 indicates 512-bit (64-byte) lane kernels are in use.
	AVX512
	// Unsupported indicates the host CPU offers neither AVX2 nor AVX512 and
	// GKTYPES_NO_SIMD was not requested. Per spec, a List never silently
	// falls back to scalar in this case: find_simd aborts on first use
	// (see selectKernels). Plain Find is unaffected.
	Unsupported
)

func (l Level) String() string {
	switch l {
	case Scalar:
		return "scalar"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// currentLevel and currentWidth are set once by init() and never mutated
// again; see detectFeatures in the per-arch cpu_*.go files.
var (
	currentLevel Level
	currentWidth int
)

func init() {
	if NoSimdEnv() {
		setScalar()
		return
	}

	hasAVX2, hasAVX512 := detectFeatures()
	switch {
	case hasAVX512:
		currentLevel = AVX512
		currentWidth = 64
	case hasAVX2:
		currentLevel = AVX2
		currentWidth = 32
	default:
		// Neither AVX512 nor AVX2 is available and no scalar override was
		// requested. Per spec.md §4.3, this must abort on the first
		// find_simd attempt, not silently degrade to a scalar scan — see
		// selectKernels's Unsupported case, which installs a panicking
		// stub rather than panicking here at package load.
		currentLevel = Unsupported
		currentWidth = 0
	}

	selectKernels()
}

func setScalar() {
	currentLevel = Scalar
	currentWidth = 16
	selectKernels()
}

// CurrentLevel returns the SIMD kernel family selected for this process.
func CurrentLevel() Level {
	return currentLevel
}

// CurrentWidth returns the selected lane width in bytes (16 for the
// GKTYPES_NO_SIMD scalar override, 32 for AVX2, 64 for AVX512, 0 when
// Unsupported — find kernels are never invoked successfully in that case).
func CurrentWidth() int {
	return currentWidth
}

// NoSimdEnv reports whether GKTYPES_NO_SIMD forces the scalar path
// regardless of detected CPU features. Mirrors the teacher's HWY_NO_SIMD
// escape hatch (hwy.NoSimdEnv).
func NoSimdEnv() bool {
	val := os.Getenv("GKTYPES_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

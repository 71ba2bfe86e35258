//go:build arm64

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

// ARM64 has no AVX2/AVX512-equivalent lane widths; this module's kernel
// families are x86-shaped (32-byte/64-byte lanes), so ARM64 always selects
// Unsupported (see dispatch.go's init) unless GKTYPES_NO_SIMD forces the
// scalar override — find_simd aborts on first use there, per spec. Mirrors
// the teacher's hwy/dispatch_arm64.go, which probes NEON/SVE/SME for its
// own, unrelated set of dispatch levels.
func detectFeatures() (hasAVX2, hasAVX512 bool) {
	return false, false
}

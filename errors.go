// Copyright 2026 The ExtendibleHashing Authors
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

package extendible

import "errors"

// All key conditions in normal operation are outcomes, not errors: a
// duplicate insert and an absent remove are silent no-ops. Errors exist only
// for boundary violations of the low-bit addressing scheme, which is
// undefined for negative keys and for directories the host int cannot index.
var (
	// ErrBucketCapacity is returned by New when the bucket capacity is not
	// positive.
	ErrBucketCapacity = errors.New("extendible: bucket capacity must be positive")

	// ErrGlobalDepth is returned by New when the initial global depth is
	// negative or would require more directory slots than an int can count.
	ErrGlobalDepth = errors.New("extendible: initial global depth out of range")

	// ErrNegativeKey is returned by Insert and Remove when the key is
	// negative.
	ErrNegativeKey = errors.New("extendible: key must be non-negative")
)

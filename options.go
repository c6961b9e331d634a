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

// Option provides an interface to do work on a Map while it is being
// created. New validates the combined configuration after all options have
// been applied.
type Option interface {
	apply(m *Map)
}

type globalDepthOption int

func (op globalDepthOption) apply(m *Map) {
	m.globalDepth = int(op)
}

// WithInitialGlobalDepth is an option to start the directory at 1<<depth
// slots, each referencing its own empty bucket with localDepth == depth,
// rather than the default single slot at depth 0. New rejects a depth that
// is negative or whose slot count cannot be represented in an int.
func WithInitialGlobalDepth(depth int) Option {
	return globalDepthOption(depth)
}

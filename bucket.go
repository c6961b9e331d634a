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

import "sort"

// bucketResult reports what a bucket-level insert did.
type bucketResult uint8

const (
	bucketInserted bucketResult = iota
	bucketPresent
	bucketOverflowed
)

// bucket is a fixed-capacity set of unique keys. The directory resolves a
// key to a bucket; the bucket knows nothing about the directory beyond its
// own localDepth, the number of low-order key bits every slot referencing it
// has in common.
type bucket struct {
	// capacity is the key limit shared by every bucket in a table. size may
	// exceed it by one between an overflowing insert and the split that
	// resolves it.
	capacity   int
	localDepth int
	keys       map[int]struct{}
}

func newBucket(capacity, localDepth int) *bucket {
	return &bucket{
		capacity:   capacity,
		localDepth: localDepth,
		keys:       make(map[int]struct{}, capacity),
	}
}

// insert adds key to the bucket. Overflow is detected, not prevented: on
// bucketOverflowed the key has been stored and the bucket holds capacity+1
// keys until the directory layer splits it.
func (b *bucket) insert(key int) bucketResult {
	if _, ok := b.keys[key]; ok {
		return bucketPresent
	}
	b.keys[key] = struct{}{}
	if len(b.keys) > b.capacity {
		return bucketOverflowed
	}
	return bucketInserted
}

// remove deletes key from the bucket. Removing an absent key is a no-op.
func (b *bucket) remove(key int) {
	delete(b.keys, key)
}

func (b *bucket) size() int {
	return len(b.keys)
}

// members returns the keys in ascending order. The slice is freshly
// allocated and remains valid across later mutations of the bucket.
func (b *bucket) members() []int {
	keys := make([]int, 0, len(b.keys))
	for k := range b.keys {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (b *bucket) clear() {
	clear(b.keys)
}

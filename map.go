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

// package extendible is a Go implementation of extendible hashing as
// described in https://en.wikipedia.org/wiki/Extendible_hashing. See also:
//
//	Fagin, Nievergelt, Pippenger, Strong. Extendible hashing - a fast
//	access method for dynamic files. ACM TODS 4(3), 1979.
//
// and the discussion of extendible hashing as an incremental resizing
// strategy in https://github.com/golang/go/issues/54766#issuecomment-1233125048.
//
// # Directory and buckets
//
// The index is a set of non-negative integer keys, stored in fixed-capacity
// buckets that are addressed through a directory. The directory is a slice
// of bucket pointers whose length is always 1<<globalDepth, and a key is
// routed to the slot selected by its low globalDepth bits (key mod
// 2^globalDepth). Growing the directory therefore never rehashes a key; it
// only reinterprets more of the key's low bits.
//
// Each bucket records a localDepth, the number of low-order key bits all of
// its keys share. localDepth <= globalDepth, and when localDepth <
// globalDepth several directory slots point at the same bucket:
//
//	 dir (globalDepth=2)
//	+----+
//	| 00 | --> dir[0] \
//	+----+             +--> bucket[localDepth=1], keys even
//	| 10 | --> dir[2] /
//	+----+
//	| 01 | --> dir[1] ----> bucket[localDepth=2], keys = 1 mod 4
//	+----+
//	| 11 | --> dir[3] ----> bucket[localDepth=2], keys = 3 mod 4
//	+----+
//
// (Slots are drawn grouped by bucket; the directory itself is ordered 00,
// 01, 10, 11 and indexed by the low bits of the key.) A bucket with
// localDepth l is referenced by exactly 1<<(globalDepth-l) slots, spaced
// 1<<l apart, all sharing the same low l bits. That buddy discipline is the
// structure's central invariant: it is what lets the directory double and
// halve by pointer copying alone.
//
// # Growth
//
// Inserting into a full bucket stores the key anyway, detects the overflow,
// and splits the bucket. If the overflowing bucket was the sole owner of
// its slots' bit pattern (localDepth == globalDepth), the directory first
// doubles: globalDepth increments and every new slot in the upper half
// references the bucket its low oldDepth bits already selected. The split
// then allocates a sibling bucket one bit deeper than the overflowing
// bucket, repoints the slots whose new bit is 1 (the lower slot of the
// buddy pair keeps the original bucket), and re-routes the snapshotted keys
// through the normal insert path. Re-routing can overflow again when keys
// collide heavily on their low bits; the cascade is handled by the same
// code and terminates because every split strictly deepens the bucket
// being split and two distinct keys always differ somewhere within an int.
//
//	 dir (globalDepth=3) after splitting the "keys even" bucket above
//	+-----+
//	| 000 | --> dir[0] ----> bucket[localDepth=3], keys = 0 mod 8
//	+-----+
//	| 100 | --> dir[4] ----> bucket[localDepth=3], keys = 4 mod 8
//	+-----+
//	| 001 | --> dir[1] \
//	+-----+             +--> bucket[localDepth=2], keys = 1 mod 4
//	| 101 | --> dir[5] /
//	+-----+
//	| 011 | --> dir[3] \
//	+-----+             +--> bucket[localDepth=2], keys = 3 mod 4
//	| 111 | --> dir[7] /
//	+-----+
//
// # Shrink
//
// Removal is the inverse. After a key is erased, the resolved slot and its
// image (the slot 1<<(globalDepth-1) away) are merged when they reference
// distinct buckets that each hold at most capacity/2 keys: the lower slot's
// bucket absorbs the other's members, the higher slot is repointed, and the
// merged bucket's localDepth decrements. When every bucket then sits
// exactly one level below the global depth, the directory halves by
// truncation; the upper half of the slots is guaranteed to reference only
// buckets the lower half also references. A removal performs at most one
// merge and at most one shrink; repeated removals converge the directory
// step by step. The per-bucket capacity/2 threshold and the
// all-buckets-one-level-down shrink condition are both conservative: some
// safe merges and shrinks are deliberately not taken.
//
// Buckets are reclaimed by the garbage collector once a merge repoints the
// last referencing slot.
package extendible

import (
	"fmt"
	"math/bits"
	"strings"
)

// debug enables printf tracing of directory reshaping. Useful when working
// on this code.
const debug = false

// maxGlobalDepth is the deepest directory whose slot count, 1<<depth, is
// still representable in an int.
const maxGlobalDepth = bits.UintSize - 2

// Map is an extendible hash index over non-negative integer keys. It is a
// set: keys carry no values. Use New to construct one; the zero value is
// not usable.
//
// A Map is NOT goroutine-safe. Callers must serialize whole operations,
// including the directory reshaping an Insert or Remove may perform.
type Map struct {
	// bucketCapacity is the per-bucket key limit, fixed at construction and
	// shared by every bucket in the table.
	bucketCapacity int
	// globalDepth is the number of low-order key bits used to select a
	// directory slot. len(dir) == 1<<globalDepth always.
	globalDepth int
	// dir is the directory. Slot i references the bucket responsible for
	// every key whose low globalDepth bits equal i. A bucket with
	// localDepth l is referenced by exactly 1<<(globalDepth-l) slots,
	// spaced 1<<l apart.
	dir []*bucket
}

// New constructs an empty Map whose buckets each hold at most
// bucketCapacity keys. The directory starts with a single slot unless
// WithInitialGlobalDepth pre-sizes it. New fails with ErrBucketCapacity or
// ErrGlobalDepth when the configuration cannot address keys correctly.
func New(bucketCapacity int, options ...Option) (*Map, error) {
	m := &Map{bucketCapacity: bucketCapacity}
	for _, op := range options {
		op.apply(m)
	}
	if m.bucketCapacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBucketCapacity, m.bucketCapacity)
	}
	if m.globalDepth < 0 || m.globalDepth > maxGlobalDepth {
		return nil, fmt.Errorf("%w: %d", ErrGlobalDepth, m.globalDepth)
	}
	m.dir = make([]*bucket, 1<<m.globalDepth)
	for i := range m.dir {
		m.dir[i] = newBucket(m.bucketCapacity, m.globalDepth)
	}
	m.checkInvariants()
	return m, nil
}

// slotIndex returns the directory slot for key at the given depth: the low
// depth bits of key, which for non-negative keys equals key mod 2^depth.
// Negative keys are rejected at the public boundary; the mask is undefined
// for them.
func slotIndex(key, depth int) int {
	return key & (1<<depth - 1)
}

// Insert adds key to the index and returns the directory slot the key
// ultimately resides under. Inserting a key that is already a member is a
// no-op that reports the key's current slot. A negative key fails with
// ErrNegativeKey and leaves the index unchanged.
func (m *Map) Insert(key int) (int, error) {
	if key < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeKey, key)
	}
	slot := m.insert(key)
	m.checkInvariants()
	return slot, nil
}

// insert is the top-level insertion path. Split redistribution re-enters
// here rather than through Insert, so boundary validation runs once per
// key while overflow cascades stay on this path.
func (m *Map) insert(key int) int {
	slot := slotIndex(key, m.globalDepth)
	if m.dir[slot].insert(key) == bucketOverflowed {
		if debug {
			fmt.Printf("insert(%d): overflow at slot %d (localDepth=%d globalDepth=%d)\n",
				key, slot, m.dir[slot].localDepth, m.globalDepth)
		}
		if m.dir[slot].localDepth == m.globalDepth {
			m.extend()
		}
		m.splitImage(slotIndex(key, m.globalDepth))
		// Redistribution may have moved the key; report the slot it ended
		// up under.
		slot = slotIndex(key, m.globalDepth)
	}
	return slot
}

// Remove deletes key from the index. Removing an absent key is a silent
// no-op, though the merge and shrink checks still run. A negative key
// fails with ErrNegativeKey.
func (m *Map) Remove(key int) error {
	if key < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeKey, key)
	}
	slot := slotIndex(key, m.globalDepth)
	m.dir[slot].remove(key)
	// A single-slot directory has no image to merge with and cannot
	// shrink.
	if m.globalDepth > 0 {
		m.mergeImage(slot)
		if m.canReduce() {
			m.reduceDirectory()
		}
	}
	m.checkInvariants()
	return nil
}

// extend doubles the directory. Every new slot in the upper half
// references the bucket its low oldDepth bits already selected, so no
// bucket contents move and every bucket's slot spacing is preserved at the
// new depth.
func (m *Map) extend() {
	oldDepth := m.globalDepth
	m.globalDepth++
	if invariants && m.globalDepth > maxGlobalDepth {
		panic("extendible: directory cannot grow past maxGlobalDepth")
	}
	if debug {
		fmt.Printf("extend: globalDepth %d -> %d\n", oldDepth, m.globalDepth)
	}
	grown := make([]*bucket, 1<<m.globalDepth)
	copy(grown, m.dir)
	for i := len(m.dir); i < len(grown); i++ {
		grown[i] = grown[slotIndex(i, oldDepth)]
	}
	m.dir = grown
}

// imageIndex returns the buddy of slot at the current depth: the slot
// 1<<(globalDepth-1) away, on whichever side is in range. Requires
// globalDepth >= 1; a single-slot directory has no image.
func (m *Map) imageIndex(slot int) int {
	half := 1 << (m.globalDepth - 1)
	if slot < half {
		return slot + half
	}
	return slot - half
}

// splitImage splits the bucket referenced by slot splitIndex. The lowest
// slot referencing the bucket is the canonical data source and keeps it;
// a fresh sibling bucket, one bit deeper, is installed at every slot whose
// new localDepth bit is 1. The source's members are snapshotted, the
// source is cleared and deepened to match the sibling, and each key is
// re-inserted through the top-level path, which re-routes it to whichever
// of the two buckets its low bits now select and resolves any further
// overflow the redistribution causes.
//
// In the common case the overflowing bucket has localDepth ==
// globalDepth-1 (an overflow at localDepth == globalDepth extends the
// directory first) and the sibling lands on exactly one slot, the image of
// the data source. A shallower bucket spans several buddy pairs; its
// sibling takes over the upper slot of every pair so the slot-spacing
// invariant survives the split.
func (m *Map) splitImage(splitIndex int) {
	src := m.dir[splitIndex]
	dataSource := slotIndex(splitIndex, src.localDepth)
	src.localDepth++
	sibling := newBucket(m.bucketCapacity, src.localDepth)
	for i := dataSource + 1<<(src.localDepth-1); i < len(m.dir); i += 1 << src.localDepth {
		m.dir[i] = sibling
	}
	moved := src.members()
	src.clear()
	if debug {
		fmt.Printf("splitImage(%d): redistributing %v from slot %d at localDepth %d\n",
			splitIndex, moved, dataSource, src.localDepth)
	}
	for _, key := range moved {
		m.insert(key)
	}
}

// mergeImage combines the buddy pair (slot, imageIndex(slot)) when the two
// slots reference distinct buckets that each hold at most capacity/2 keys
// (integer division, so a capacity-1 table merges only empty pairs). The
// lower slot's bucket absorbs the other's members and its localDepth
// decrements; the higher slot is repointed at it, dropping the discarded
// bucket's last reference. Two slots referencing distinct buckets are
// necessarily each the sole referent of their bucket, so the repoint
// restores the exact pre-split aliasing.
func (m *Map) mergeImage(slot int) {
	lo, hi := slot, m.imageIndex(slot)
	if lo > hi {
		lo, hi = hi, lo
	}
	if m.dir[lo] == m.dir[hi] {
		return
	}
	if m.dir[lo].size() > m.bucketCapacity/2 || m.dir[hi].size() > m.bucketCapacity/2 {
		return
	}
	if debug {
		fmt.Printf("mergeImage: slots %d and %d merge (%v + %v)\n",
			lo, hi, m.dir[lo].members(), m.dir[hi].members())
	}
	for _, key := range m.dir[hi].members() {
		m.dir[lo].insert(key)
	}
	m.dir[hi] = m.dir[lo]
	m.dir[lo].localDepth--
}

// canReduce reports whether every bucket sits exactly one level below the
// global depth, the only configuration this table shrinks from. Mixed
// local depths keep the directory as is even when halving elsewhere would
// be safe.
func (m *Map) canReduce() bool {
	common := m.dir[0].localDepth
	for _, b := range m.dir[1:] {
		if b.localDepth != common {
			return false
		}
	}
	return common == m.globalDepth-1
}

// reduceDirectory halves the slot sequence. Requires canReduce: the upper
// half then references only buckets the lower half also references, so
// truncation drops no bucket's last reference.
func (m *Map) reduceDirectory() {
	m.globalDepth--
	m.dir = m.dir[:1<<m.globalDepth]
	if debug {
		fmt.Printf("reduceDirectory: globalDepth -> %d\n", m.globalDepth)
	}
}

// SlotView is a read-only view of one directory slot: its position, the
// total slot count, and the ascending members of the bucket it references.
// A bucket referenced by several slots appears once per referencing slot.
type SlotView struct {
	Slot  int
	Slots int
	Keys  []int
}

// Snapshot returns a view of every directory slot in order. The views
// share no memory with the Map and stay valid across later operations.
func (m *Map) Snapshot() []SlotView {
	views := make([]SlotView, len(m.dir))
	for i, b := range m.dir {
		views[i] = SlotView{Slot: i, Slots: len(m.dir), Keys: b.members()}
	}
	return views
}

// GoString implements fmt.GoStringer, printing one line per directory slot
// with a stable per-table bucket number so aliasing is visible:
//
//	globalDepth=2 bucketCapacity=2
//	dir[0] = bucket0 localDepth=1 keys=[0 2]
//	dir[1] = bucket1 localDepth=2 keys=[1]
//	dir[2] = bucket0 localDepth=1 keys=[0 2]
//	dir[3] = bucket2 localDepth=2 keys=[3]
func (m *Map) GoString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "globalDepth=%d bucketCapacity=%d\n", m.globalDepth, m.bucketCapacity)
	ids := make(map[*bucket]int)
	for i, b := range m.dir {
		id, ok := ids[b]
		if !ok {
			id = len(ids)
			ids[b] = id
		}
		fmt.Fprintf(&buf, "dir[%d] = bucket%d localDepth=%d keys=%v\n",
			i, id, b.localDepth, b.members())
	}
	return buf.String()
}

// checkInvariants verifies the structural invariants when the invariants
// build tag is set. It runs after every complete public operation;
// intermediate split and merge states legitimately violate the sharing
// invariant and are never checked.
func (m *Map) checkInvariants() {
	if invariants {
		if err := m.validate(); err != nil {
			panic(fmt.Sprintf("invariant violation: %v\n%#v", err, m))
		}
	}
}

// validate re-derives every structural invariant from scratch. It returns
// an error instead of panicking so tests can run it unconditionally.
func (m *Map) validate() error {
	if len(m.dir) != 1<<m.globalDepth {
		return fmt.Errorf("directory has %d slots, globalDepth %d wants %d",
			len(m.dir), m.globalDepth, 1<<m.globalDepth)
	}
	slotsOf := make(map[*bucket][]int)
	for i, b := range m.dir {
		if b == nil {
			return fmt.Errorf("slot %d references no bucket", i)
		}
		if b.localDepth < 0 || b.localDepth > m.globalDepth {
			return fmt.Errorf("slot %d: localDepth %d outside [0, %d]", i, b.localDepth, m.globalDepth)
		}
		if b.capacity != m.bucketCapacity {
			return fmt.Errorf("slot %d: bucket capacity %d, table capacity %d", i, b.capacity, m.bucketCapacity)
		}
		slotsOf[b] = append(slotsOf[b], i)
	}
	seen := make(map[int]bool)
	for b, slots := range slotsOf {
		if want := 1 << (m.globalDepth - b.localDepth); len(slots) != want {
			return fmt.Errorf("bucket at slots %v: localDepth %d wants %d referencing slots", slots, b.localDepth, want)
		}
		// Slots were collected in directory order, so the arithmetic
		// progression check can anchor on the first.
		first, step := slots[0], 1<<b.localDepth
		if first != slotIndex(first, b.localDepth) {
			return fmt.Errorf("bucket at slots %v: first slot %d has high bits beyond localDepth %d", slots, first, b.localDepth)
		}
		for j, s := range slots {
			if s != first+j*step {
				return fmt.Errorf("bucket at slots %v: slots not spaced by %d", slots, step)
			}
		}
		if b.size() > b.capacity {
			return fmt.Errorf("bucket at slots %v: %d keys exceed capacity %d", slots, b.size(), b.capacity)
		}
		for key := range b.keys {
			if seen[key] {
				return fmt.Errorf("key %d stored in more than one bucket", key)
			}
			seen[key] = true
			if m.dir[slotIndex(key, m.globalDepth)] != b {
				return fmt.Errorf("key %d stored in a bucket its slot %d does not reference", key, slotIndex(key, m.globalDepth))
			}
		}
	}
	return nil
}

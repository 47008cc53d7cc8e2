// Package regionset tracks which of gridtopo's configured regions are
// currently reachable, as a compact bit vector rather than a map: the
// region id space is small and dense (assigned sequentially from the
// YAML config), so a bitmap intersection answers "which peers can both
// reach region X" far cheaper than a set union over maps.
package regionset

import (
	"iter"
	"math/bits"

	"github.com/khklau/gridstore/common/go/bitset"
)

// Max is the set containing every representable region id.
const Max = RegionSet(^uint32(0))

// RegionSet is a bitmap over region ids 0-31, one bit per configured
// region's registered-reachable state.
type RegionSet uint32

// Of returns a RegionSet with only id's bit set.
//
// Panics if id >= 32.
func Of(id uint32) RegionSet {
	if id >= 32 {
		panic("region id is out of range")
	}
	return RegionSet(1 << id)
}

// FirstN returns a RegionSet with the first n region ids set, for
// seeding a topology of n sequentially-numbered regions.
func FirstN(n int) RegionSet {
	if n == 0 {
		return RegionSet(0)
	}
	if n > 32 {
		return Max
	}
	return RegionSet(^uint32(0) >> (32 - n))
}

// IsEmpty reports whether no region in the set is reachable.
func (s RegionSet) IsEmpty() bool {
	return s == 0
}

// Len reports how many regions are reachable.
func (s RegionSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Reachable intersects s with other, the set of regions reachable by
// both.
func (s RegionSet) Reachable(other RegionSet) RegionSet {
	return s & other
}

// Iter iterates the reachable region ids, ascending.
func (s RegionSet) Iter() iter.Seq[uint32] {
	return bitset.NewBitsTraverser(uint64(s)).Iter()
}

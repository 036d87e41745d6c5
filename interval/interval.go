// Package interval implements overlap queries on collections of half-open
// genomic intervals. Two interchangeable index structures are provided:
// AIList (augmented interval list) and Bits (binary interval search). Both
// answer "which stored intervals overlap [start, end)?" and agree exactly on
// results; they differ in how they bound worst-case query cost. A genome-wide
// layer (Genome) partitions chromosome-tagged regions and builds one index
// per chromosome.
//
// Indexes are built once and are read-only afterwards, so they can be queried
// concurrently from any number of goroutines without locking. Bits.Insert is
// the single mutating escape hatch; callers using it must exclude readers
// themselves.
package interval

import "golang.org/x/exp/constraints"

// Interval is a half-open range [Start, End) with an attached value, e.g. a
// feature name or score parsed from a BED rest column.
type Interval[I constraints.Unsigned, T comparable] struct {
	Start I
	End   I
	Val   T
}

// Overlap reports whether the interval intersects the query [start, end).
func (iv Interval[I, T]) Overlap(start, end I) bool {
	// Half-open interval indexing.
	return iv.End > start && iv.Start < end
}

// Iter is a lazy, single-pass sequence of intervals produced by a query.
// It is not restartable; create a new one per query.
type Iter[I constraints.Unsigned, T comparable] interface {
	// Next returns a pointer into the index's stored intervals and true, or
	// nil and false when the sequence is exhausted. The pointee must not be
	// modified.
	Next() (*Interval[I, T], bool)
}

// Overlapper is the query contract shared by AIList and Bits. Find and
// FindIter must return the same set of intervals for any query; only the
// presentation (eager vs lazy) differs.
type Overlapper[I constraints.Unsigned, T comparable] interface {
	// Find returns copies of all stored intervals overlapping [start, end),
	// in unspecified order, without duplicates.
	Find(start, end I) []Interval[I, T]
	// FindIter returns a lazy iterator over the same set of intervals.
	FindIter(start, end I) Iter[I, T]
	// Len returns the number of indexed intervals.
	Len() int
	// Skipped returns the number of degenerate (Start >= End) intervals
	// dropped at construction.
	Skipped() int
}

// Type selects the index structure at build time.
type Type int

const (
	AIListType Type = iota
	BitsType
)

func (t Type) String() string {
	switch t {
	case AIListType:
		return "ailist"
	case BitsType:
		return "bits"
	}
	return "unknown"
}

// Build constructs the index structure selected by typ from ivs. It takes
// ownership of the slice.
func Build[I constraints.Unsigned, T comparable](ivs []Interval[I, T], typ Type) Overlapper[I, T] {
	if typ == BitsType {
		return NewBits(ivs)
	}
	return NewAIList(ivs)
}

// filterDegenerate drops intervals with Start >= End in place, returning the
// filtered slice and the number dropped. Degenerate intervals would corrupt
// the max-end early-termination invariant in AIList, so construction refuses
// them rather than indexing garbage.
func filterDegenerate[I constraints.Unsigned, T comparable](ivs []Interval[I, T]) ([]Interval[I, T], int) {
	kept := ivs[:0]
	skipped := 0
	for _, iv := range ivs {
		if iv.Start < iv.End {
			kept = append(kept, iv)
		} else {
			skipped++
		}
	}
	return kept, skipped
}

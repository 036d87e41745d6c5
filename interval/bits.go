package interval

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Bits is a binary interval search index (https://arxiv.org/pdf/1208.3407.pdf).
//
// Intervals are kept sorted by start; a query binary-searches for the first
// interval that could reach it (query start minus the longest interval
// length) and scans forward until starts pass the query end. Independently
// sorted start and end arrays additionally let Count answer cardinality with
// two binary searches and no scan at all.
type Bits[I constraints.Unsigned, T comparable] struct {
	ivs []Interval[I, T]
	// starts and ends are each sorted independently; they are not
	// index-aligned with ivs.
	starts  []I
	ends    []I
	maxLen  I
	skipped int
}

// NewBits builds a Bits index from ivs, taking ownership of the slice.
// Degenerate intervals (Start >= End) are dropped; see Skipped.
func NewBits[I constraints.Unsigned, T comparable](ivs []Interval[I, T]) *Bits[I, T] {
	ivs, skipped := filterDegenerate(ivs)
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start != ivs[j].Start {
			return ivs[i].Start < ivs[j].Start
		}
		return ivs[i].End < ivs[j].End
	})
	starts := make([]I, len(ivs))
	ends := make([]I, len(ivs))
	var maxLen I
	for i, iv := range ivs {
		starts[i] = iv.Start
		ends[i] = iv.End
		if l := iv.End - iv.Start; l > maxLen {
			maxLen = l
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	sort.Slice(ends, func(i, j int) bool { return ends[i] < ends[j] })
	return &Bits[I, T]{ivs: ivs, starts: starts, ends: ends, maxLen: maxLen, skipped: skipped}
}

// Len returns the number of indexed intervals.
func (b *Bits[I, T]) Len() int { return len(b.ivs) }

// IsEmpty reports whether the index contains no intervals.
func (b *Bits[I, T]) IsEmpty() bool { return len(b.ivs) == 0 }

// Skipped returns the number of degenerate intervals dropped at construction.
func (b *Bits[I, T]) Skipped() int { return b.skipped }

// scanStart is the query start with the longest interval length subtracted,
// saturating at zero. No interval beginning before this bound can reach the
// query.
func (b *Bits[I, T]) scanStart(start I) I {
	if start <= b.maxLen {
		return 0
	}
	return start - b.maxLen
}

// lowerBound returns the first index whose interval start is >= start.
func (b *Bits[I, T]) lowerBound(start I) int {
	size := len(b.ivs)
	low := 0
	for size > 0 {
		half := size / 2
		otherHalf := size - half
		probe := low + half
		otherLow := low + otherHalf
		v := b.ivs[probe].Start
		size = half
		if v < start {
			low = otherLow
		}
	}
	return low
}

// bsearchSeq returns the insertion index for key in the sorted slice elems:
// the first index whose element is >= key.
func bsearchSeq[I constraints.Unsigned](key I, elems []I) int {
	if len(elems) == 0 || elems[0] >= key {
		return 0
	}
	if elems[len(elems)-1] < key {
		return len(elems)
	}
	cursor := 0
	length := len(elems)
	for length > 1 {
		half := length >> 1
		length -= half
		if elems[cursor+half-1] < key {
			cursor += half
		}
	}
	return cursor
}

// Find returns copies of all intervals overlapping [start, end).
func (b *Bits[I, T]) Find(start, end I) []Interval[I, T] {
	var results []Interval[I, T]
	for off := b.lowerBound(b.scanStart(start)); off < len(b.ivs); off++ {
		iv := &b.ivs[off]
		if iv.Overlap(start, end) {
			results = append(results, *iv)
		} else if iv.Start >= end {
			break
		}
	}
	return results
}

// FindIter returns a lazy iterator over the intervals overlapping
// [start, end). The result set is identical to Find's.
func (b *Bits[I, T]) FindIter(start, end I) Iter[I, T] {
	return &bitsIter[I, T]{b: b, off: b.lowerBound(b.scanStart(start)), start: start, end: end}
}

// Count returns the number of intervals overlapping [start, end) without
// enumerating them: two binary searches exclude the intervals that end too
// early or start too late, and inclusion-exclusion gives the rest.
func (b *Bits[I, T]) Count(start, end I) int {
	n := len(b.ivs)
	// Plus one accounts for half-openness relative to the BITS paper's
	// closed intervals.
	first := bsearchSeq(start+1, b.ends)
	last := bsearchSeq(end, b.starts)
	return n - first - (n - last)
}

// Seek returns an iterator over the intervals overlapping [start, end) for
// query streams arriving in ascending start order. Instead of a fresh binary
// search per query, it advances the caller-held cursor linearly from the
// previous query's position. The cursor belongs to the caller so the index
// itself stays immutable and shareable across goroutines; pass the same
// cursor to each successive call and reset it to 0 for a new stream.
func (b *Bits[I, T]) Seek(start, end I, cursor *int) Iter[I, T] {
	bound := b.scanStart(start)
	if *cursor == 0 || (*cursor < len(b.ivs) && b.ivs[*cursor].Start > start) {
		*cursor = b.lowerBound(bound)
	}
	for *cursor+1 < len(b.ivs) && b.ivs[*cursor+1].Start < bound {
		*cursor++
	}
	return &bitsIter[I, T]{b: b, off: *cursor, start: start, end: end}
}

// Insert adds an interval to an already-built index. This is an expensive
// escape hatch: three binary searches plus three O(n) slice insertions. It
// must not run concurrently with readers. Degenerate intervals are ignored.
func (b *Bits[I, T]) Insert(iv Interval[I, T]) {
	if iv.Start >= iv.End {
		b.skipped++
		return
	}
	si := bsearchSeq(iv.Start, b.starts)
	ei := bsearchSeq(iv.End, b.ends)
	ii := sort.Search(len(b.ivs), func(k int) bool {
		if b.ivs[k].Start != iv.Start {
			return b.ivs[k].Start > iv.Start
		}
		return b.ivs[k].End >= iv.End
	})
	if l := iv.End - iv.Start; l > b.maxLen {
		b.maxLen = l
	}
	b.starts = append(b.starts, 0)
	copy(b.starts[si+1:], b.starts[si:])
	b.starts[si] = iv.Start
	b.ends = append(b.ends, 0)
	copy(b.ends[ei+1:], b.ends[ei:])
	b.ends[ei] = iv.End
	b.ivs = append(b.ivs, Interval[I, T]{})
	copy(b.ivs[ii+1:], b.ivs[ii:])
	b.ivs[ii] = iv
}

// Iter returns an iterator over all indexed intervals in ascending start
// order.
func (b *Bits[I, T]) Iter() Iter[I, T] {
	return &bitsAllIter[I, T]{b: b}
}

type bitsIter[I constraints.Unsigned, T comparable] struct {
	b          *Bits[I, T]
	off        int
	start, end I
}

func (it *bitsIter[I, T]) Next() (*Interval[I, T], bool) {
	for it.off < len(it.b.ivs) {
		iv := &it.b.ivs[it.off]
		it.off++
		if iv.Overlap(it.start, it.end) {
			return iv, true
		} else if iv.Start >= it.end {
			break
		}
	}
	return nil, false
}

type bitsAllIter[I constraints.Unsigned, T comparable] struct {
	b   *Bits[I, T]
	pos int
}

func (it *bitsAllIter[I, T]) Next() (*Interval[I, T], bool) {
	if it.pos >= len(it.b.ivs) {
		return nil, false
	}
	it.pos++
	return &it.b.ivs[it.pos-1], true
}

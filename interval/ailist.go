package interval

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// minCoverageLen is the AIList decomposition threshold: an interval that
// strictly contains at least this many of the following 2*minCoverageLen-1
// intervals is deferred to the next layer.
const minCoverageLen = 10

// AIList is an augmented interval list
// (https://academic.oup.com/bioinformatics/article/35/23/4907/5509521).
//
// A plain sorted list answers overlap queries by scanning backward from a
// binary-searched position, but long intervals that contain many of their
// neighbors defeat the early-exit: every query behind them must scan through
// all of them. AIList peels such "long" intervals off into successive layers
// so each layer's backward scan stays shallow. Queries run per layer
// independently: binary search for the scan start, walk backward, and stop as
// soon as the running max-end shows nothing earlier can reach the query.
type AIList[I constraints.Unsigned, T comparable] struct {
	starts  []I
	ends    []I
	maxEnds []I
	// headers[i] is the offset of layer i in the arrays above.
	headers []int
	ivs     []Interval[I, T]
	skipped int
}

// NewAIList builds an AIList from ivs, taking ownership of the slice.
// Degenerate intervals (Start >= End) are dropped; see Skipped.
func NewAIList[I constraints.Unsigned, T comparable](ivs []Interval[I, T]) *AIList[I, T] {
	ivs, skipped := filterDegenerate(ivs)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })

	a := &AIList[I, T]{
		starts:  make([]I, 0, len(ivs)),
		ends:    make([]I, 0, len(ivs)),
		maxEnds: make([]I, 0, len(ivs)),
		headers: []int{0},
		ivs:     make([]Interval[I, T], 0, len(ivs)),
		skipped: skipped,
	}

	cur := ivs
	var l2 []Interval[I, T]
	for len(cur) > 0 {
		layerStart := len(a.starts)
		for idx := range cur {
			count := 0
			for k := 1; k < 2*minCoverageLen && idx+k < len(cur); k++ {
				if cur[idx].End > cur[idx+k].End {
					count++
				}
			}
			if count >= minCoverageLen {
				l2 = append(l2, cur[idx])
			} else {
				a.starts = append(a.starts, cur[idx].Start)
				a.ends = append(a.ends, cur[idx].End)
				a.ivs = append(a.ivs, cur[idx])
			}
		}
		// Running max end, restarted per layer.
		var max I
		for _, e := range a.ends[layerStart:] {
			if e > max {
				max = e
			}
			a.maxEnds = append(a.maxEnds, max)
		}
		// Reuse the just-scanned buffer for the next round's deferrals.
		cur, l2 = l2, cur[:0]
		if len(cur) > 0 {
			a.headers = append(a.headers, len(a.starts))
		}
	}
	return a
}

// Len returns the number of indexed intervals.
func (a *AIList[I, T]) Len() int { return len(a.ivs) }

// IsEmpty reports whether the AIList contains no intervals.
func (a *AIList[I, T]) IsEmpty() bool { return len(a.ivs) == 0 }

// Skipped returns the number of degenerate intervals dropped at construction.
func (a *AIList[I, T]) Skipped() int { return a.skipped }

// Layers returns the number of decomposition layers.
func (a *AIList[I, T]) Layers() int { return len(a.headers) }

// layerBounds returns the [lo, hi) index range of layer i.
func (a *AIList[I, T]) layerBounds(i int) (int, int) {
	if i == len(a.headers)-1 {
		return a.headers[i], len(a.starts)
	}
	return a.headers[i], a.headers[i+1]
}

// Find returns copies of all intervals overlapping [start, end).
func (a *AIList[I, T]) Find(start, end I) []Interval[I, T] {
	var results []Interval[I, T]
	for layer := range a.headers {
		lo, hi := a.layerBounds(layer)
		results = a.queryLayer(start, end, lo, hi, results)
	}
	return results
}

// queryLayer scans one layer backward from the partition point, appending
// overlaps to results. The scan stops once the running max end falls short of
// the query start: nothing earlier in the layer can overlap.
func (a *AIList[I, T]) queryLayer(start, end I, lo, hi int, results []Interval[I, T]) []Interval[I, T] {
	starts := a.starts[lo:hi]
	ends := a.ends[lo:hi]
	maxEnds := a.maxEnds[lo:hi]

	i := sort.Search(len(starts), func(k int) bool { return starts[k] >= end })
	for i > 0 {
		i--
		if start >= ends[i] {
			if start > maxEnds[i] {
				return results
			}
		} else {
			results = append(results, a.ivs[lo+i])
		}
	}
	return results
}

// FindIter returns a lazy iterator over the intervals overlapping
// [start, end). The result set is identical to Find's.
func (a *AIList[I, T]) FindIter(start, end I) Iter[I, T] {
	return &aiListIter[I, T]{a: a, pos: -1, start: start, end: end}
}

type aiListIter[I constraints.Unsigned, T comparable] struct {
	a     *AIList[I, T]
	layer int
	// pos is the backward cursor within the current layer; -1 means the
	// partition point has not been computed yet.
	pos        int
	start, end I
}

func (it *aiListIter[I, T]) Next() (*Interval[I, T], bool) {
	for it.layer < len(it.a.headers) {
		lo, hi := it.a.layerBounds(it.layer)
		starts := it.a.starts[lo:hi]
		ends := it.a.ends[lo:hi]
		maxEnds := it.a.maxEnds[lo:hi]

		if it.pos < 0 {
			it.pos = sort.Search(len(starts), func(k int) bool { return starts[k] >= it.end })
		}
		for it.pos > 0 {
			it.pos--
			i := it.pos
			if it.start >= ends[i] {
				if it.start > maxEnds[i] {
					// Nothing earlier in this layer can overlap.
					break
				}
			} else {
				return &it.a.ivs[lo+i], true
			}
		}
		it.pos = -1
		it.layer++
	}
	return nil, false
}

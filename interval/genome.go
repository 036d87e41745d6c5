package interval

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrCoordinateOverflow reports a query whose coordinates cannot be
// represented in the index's uint32 coordinate domain.
var ErrCoordinateOverflow = errors.New("coordinate outside uint32 domain")

// Region is a chromosome-tagged half-open interval used to build a Genome
// index. Coordinates are uint32, the domain of genomic positions.
type Region[T comparable] struct {
	Chrom string
	Start uint32
	End   uint32
	Val   T
}

// Query is a genome-wide query region in caller coordinates, which may fall
// outside the index's uint32 domain (e.g. straight from a parsed file).
type Query struct {
	Chrom string
	Start int64
	End   int64
}

func (q Query) String() string {
	return fmt.Sprintf("%s:%d-%d", q.Chrom, q.Start, q.End)
}

// Hit is one overlap result from a genome-wide query: the stored interval
// tagged back with its chromosome.
type Hit[T comparable] struct {
	Chrom    string
	Interval Interval[uint32, T]
}

// Genome is a chromosome-partitioned overlap index: one Overlapper per
// chromosome, all built with the same index structure. Build once, then query
// from any number of goroutines.
type Genome[T comparable] struct {
	chroms  map[string]Overlapper[uint32, T]
	typ     Type
	skipped int
}

// BuildGenome partitions regions by chromosome and builds one index of the
// given type per chromosome, consuming the input slice's payloads.
func BuildGenome[T comparable](regions []Region[T], typ Type) *Genome[T] {
	byChrom := make(map[string][]Interval[uint32, T])
	for _, r := range regions {
		byChrom[r.Chrom] = append(byChrom[r.Chrom], Interval[uint32, T]{Start: r.Start, End: r.End, Val: r.Val})
	}
	g := &Genome[T]{chroms: make(map[string]Overlapper[uint32, T], len(byChrom)), typ: typ}
	for chrom, ivs := range byChrom {
		o := Build(ivs, typ)
		g.skipped += o.Skipped()
		g.chroms[chrom] = o
	}
	return g
}

// Overlapper returns the per-chromosome index for chrom, or false if the
// chromosome was not present at build time.
func (g *Genome[T]) Overlapper(chrom string) (Overlapper[uint32, T], bool) {
	o, ok := g.chroms[chrom]
	return o, ok
}

// Chroms returns the indexed chromosome names in sorted order.
func (g *Genome[T]) Chroms() []string {
	names := make([]string, 0, len(g.chroms))
	for c := range g.chroms {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of indexed intervals across chromosomes.
func (g *Genome[T]) Len() int {
	n := 0
	for _, o := range g.chroms {
		n += o.Len()
	}
	return n
}

// Skipped returns the number of degenerate regions dropped at build time.
func (g *Genome[T]) Skipped() int { return g.skipped }

// Type returns the index structure the Genome was built with.
func (g *Genome[T]) Type() Type { return g.typ }

// FindOverlaps runs a batch of queries and collects the hits in query order.
// Queries on unindexed chromosomes match nothing; that is not an error. A
// query whose coordinates do not fit uint32 contributes no hits and is
// reported in the returned error (all such regions joined); the remaining
// queries still run.
func (g *Genome[T]) FindOverlaps(queries []Query) ([]Hit[T], error) {
	it := g.FindOverlapsIter(queries)
	var hits []Hit[T]
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		hits = append(hits, h)
	}
	return hits, it.Err()
}

// FindOverlapsIter returns a lazy iterator over the hits for queries, visited
// in input order. Call Err after iteration to learn of queries skipped for
// coordinate overflow.
func (g *Genome[T]) FindOverlapsIter(queries []Query) *GenomeIter[T] {
	return &GenomeIter[T]{g: g, queries: queries}
}

// GenomeIter iterates over genome-wide query hits in query order. Queries
// with no overlaps (including unknown chromosomes) yield nothing and cost no
// allocation.
type GenomeIter[T comparable] struct {
	g       *Genome[T]
	queries []Query
	qi      int
	chrom   string
	cur     Iter[uint32, T]
	err     error
}

// Next returns the next hit and true, or a zero Hit and false when all
// queries are exhausted.
func (it *GenomeIter[T]) Next() (Hit[T], bool) {
	for {
		if it.cur != nil {
			if iv, ok := it.cur.Next(); ok {
				return Hit[T]{Chrom: it.chrom, Interval: *iv}, true
			}
			it.cur = nil
		}
		if it.qi >= len(it.queries) {
			return Hit[T]{}, false
		}
		q := it.queries[it.qi]
		it.qi++
		o, ok := it.g.chroms[q.Chrom]
		if !ok {
			continue
		}
		if q.Start < 0 || q.End < 0 || q.Start > math.MaxUint32 || q.End > math.MaxUint32 {
			// The failure is local to this query; the rest of the batch
			// still runs.
			it.err = errors.Join(it.err, fmt.Errorf("%s: %w", q, ErrCoordinateOverflow))
			continue
		}
		it.chrom = q.Chrom
		it.cur = o.FindIter(uint32(q.Start), uint32(q.End))
	}
}

// Err returns the queries skipped for coordinate overflow, joined, or nil.
func (it *GenomeIter[T]) Err() error { return it.err }

package interval

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func genomeRegions() []Region[string] {
	return []Region[string]{
		{Chrom: "chr1", Start: 100, End: 200, Val: "gene_a"},
		{Chrom: "chr1", Start: 300, End: 400, Val: "gene_b"},
		{Chrom: "chr2", Start: 300, End: 400, Val: "gene_c"},
		{Chrom: "chr3", Start: 500, End: 600, Val: "gene_d"},
	}
}

func eachType(t *testing.T, fn func(t *testing.T, typ Type)) {
	for _, typ := range []Type{AIListType, BitsType} {
		typ := typ
		t.Run(typ.String(), func(t *testing.T) { fn(t, typ) })
	}
}

func TestGenomeBasic(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		if g.Len() != 4 {
			t.Fatalf("expected 4 indexed intervals, got %d", g.Len())
		}
		hits, err := g.FindOverlaps([]Query{{Chrom: "chr1", Start: 110, End: 210}})
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != 1 || hits[0].Chrom != "chr1" ||
			hits[0].Interval.Start != 100 || hits[0].Interval.End != 200 {
			t.Errorf("expected the chr1 [100,200) hit, got %v", hits)
		}
	})
}

func TestGenomeDispatchOrder(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		queries := []Query{
			{Chrom: "chr2", Start: 350, End: 450},
			{Chrom: "chr99", Start: 1, End: 10},
			{Chrom: "chr1", Start: 150, End: 250},
		}
		hits, err := g.FindOverlaps(queries)
		if err != nil {
			t.Fatal(err)
		}
		// Unknown chromosome contributes nothing; remaining hits arrive in
		// query order, not genome order.
		chroms := make([]string, len(hits))
		for i, h := range hits {
			chroms[i] = h.Chrom
		}
		if !reflect.DeepEqual(chroms, []string{"chr2", "chr1"}) {
			t.Errorf("expected hits in query order [chr2 chr1], got %v", chroms)
		}
	})
}

func TestGenomeUnknownChromOnly(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome([]Region[string]{
			{Chrom: "chr1", Start: 100, End: 200},
			{Chrom: "chr2", Start: 300, End: 400},
		}, typ)
		hits, err := g.FindOverlaps([]Query{
			{Chrom: "chr1", Start: 150, End: 250},
			{Chrom: "chr99", Start: 1, End: 10},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != 1 || hits[0].Chrom != "chr1" || hits[0].Interval.Start != 100 {
			t.Errorf("expected exactly the chr1 [100,200) hit, got %v", hits)
		}
	})
}

func TestGenomeCoordinateOverflow(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		queries := []Query{
			{Chrom: "chr1", Start: 110, End: 210},
			{Chrom: "chr1", Start: 0, End: math.MaxUint32 + 1},
			{Chrom: "chr2", Start: 350, End: 450},
		}
		hits, err := g.FindOverlaps(queries)
		if !errors.Is(err, ErrCoordinateOverflow) {
			t.Fatalf("expected ErrCoordinateOverflow, got %v", err)
		}
		// The bad query is local; the rest of the batch still ran.
		if len(hits) != 2 || hits[0].Chrom != "chr1" || hits[1].Chrom != "chr2" {
			t.Errorf("expected the two valid queries' hits, got %v", hits)
		}
	})
}

func TestGenomeEmptyQueries(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		hits, err := g.FindOverlaps(nil)
		if err != nil || len(hits) != 0 {
			t.Errorf("expected no hits and no error, got %v, %v", hits, err)
		}
	})
}

func TestGenomeEmptyBuild(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome[string](nil, typ)
		if g.Len() != 0 {
			t.Errorf("expected empty genome, len=%d", g.Len())
		}
		hits, err := g.FindOverlaps([]Query{{Chrom: "chr1", Start: 0, End: 1000}})
		if err != nil || len(hits) != 0 {
			t.Errorf("expected no hits from empty genome, got %v, %v", hits, err)
		}
	})
}

func TestGenomePayload(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		hits, err := g.FindOverlaps([]Query{{Chrom: "chr3", Start: 550, End: 560}})
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != 1 || hits[0].Interval.Val != "gene_d" {
			t.Errorf("expected gene_d payload, got %v", hits)
		}
	})
}

func TestGenomeChroms(t *testing.T) {
	g := BuildGenome(genomeRegions(), AIListType)
	if got := g.Chroms(); !reflect.DeepEqual(got, []string{"chr1", "chr2", "chr3"}) {
		t.Errorf("expected sorted chromosome names, got %v", got)
	}
	if _, ok := g.Overlapper("chr2"); !ok {
		t.Error("expected an overlapper for chr2")
	}
	if _, ok := g.Overlapper("chrM"); ok {
		t.Error("expected no overlapper for chrM")
	}
}

func TestGenomeSkipsDegenerate(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome([]Region[string]{
			{Chrom: "chr1", Start: 100, End: 200, Val: "ok"},
			{Chrom: "chr1", Start: 500, End: 500, Val: "zero"},
			{Chrom: "chr2", Start: 900, End: 800, Val: "inverted"},
		}, typ)
		if g.Skipped() != 2 {
			t.Errorf("expected 2 skipped regions, got %d", g.Skipped())
		}
		if g.Len() != 1 {
			t.Errorf("expected 1 indexed interval, got %d", g.Len())
		}
	})
}

func TestGenomeIterLazy(t *testing.T) {
	eachType(t, func(t *testing.T, typ Type) {
		g := BuildGenome(genomeRegions(), typ)
		it := g.FindOverlapsIter([]Query{
			{Chrom: "chr1", Start: 110, End: 210},
			{Chrom: "chr1", Start: 310, End: 410},
		})
		var got []string
		for {
			h, ok := it.Next()
			if !ok {
				break
			}
			got = append(got, h.Interval.Val)
		}
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"gene_a", "gene_b"}) {
			t.Errorf("expected [gene_a gene_b] in query order, got %v", got)
		}
	})
}

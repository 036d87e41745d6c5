// Package overlap implements the overlap command: report database intervals
// from one BED file that overlap query regions from another.
package overlap

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/faidx"
	"github.com/brentp/xopen"
	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"

	"github.com/genomekit/goverlap/bedio"
	"github.com/genomekit/goverlap/interval"
)

var cli = struct {
	Index  string `arg:"-i,help:index structure; one of ailist or bits"`
	Counts bool   `arg:"-c,help:print per-query overlap counts instead of the overlapping intervals"`
	Stats  bool   `arg:"-s,help:print summary stats of overlaps-per-query to stderr"`
	Fasta  string `arg:"-f,--fasta,help:optional indexed fasta; queries on chromosomes absent from its .fai are dropped with a warning"`
	Db     string `arg:"positional,required,help:bed of database intervals"`
	Query  string `arg:"positional,required,help:bed of query regions"`
}{Index: "ailist"}

func pcheck(e error) {
	if e != nil {
		log.Fatal(e)
	}
}

func indexType(name string) interval.Type {
	switch name {
	case "ailist":
		return interval.AIListType
	case "bits":
		return interval.BitsType
	}
	log.Fatalf("unknown index structure %q; expected ailist or bits", name)
	return interval.AIListType
}

// buildGenome converts parsed BED regions into a genome-wide index keyed on
// the 4th column as payload.
func buildGenome(regions []bedio.Region, typ interval.Type) *interval.Genome[string] {
	tagged := make([]interval.Region[string], 0, len(regions))
	for _, r := range regions {
		if r.Start < 0 || r.End > math.MaxUint32 {
			log.Fatalf("database interval %s outside the uint32 coordinate domain", r)
		}
		tagged = append(tagged, interval.Region[string]{
			Chrom: r.Chrom, Start: uint32(r.Start), End: uint32(r.End), Val: r.Name,
		})
	}
	g := interval.BuildGenome(tagged, typ)
	if g.Skipped() > 0 {
		log.Printf("dropped %d database intervals with start >= end", g.Skipped())
	}
	return g
}

// filterByFasta drops queries whose chromosome is absent from the fasta
// index, warning once per chromosome.
func filterByFasta(queries []bedio.Region, fastaPath string) []bedio.Region {
	fai, err := faidx.New(fastaPath)
	pcheck(err)
	defer fai.Close()
	warned := make(map[string]bool)
	kept := queries[:0]
	for _, q := range queries {
		if _, ok := fai.Index[q.Chrom]; !ok {
			if !warned[q.Chrom] {
				c := color.New(color.FgRed)
				fmt.Fprintf(os.Stderr, "%s\n", c.SprintFunc()(fmt.Sprintf("chromosome %s not in %s; dropping its queries", q.Chrom, fastaPath)))
				warned[q.Chrom] = true
			}
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

func writeHits(wtr *xopen.Writer, g *interval.Genome[string], queries []bedio.Region, counts []float64) {
	for qi, q := range queries {
		qq := []interval.Query{{Chrom: q.Chrom, Start: q.Start, End: q.End}}
		it := g.FindOverlapsIter(qq)
		n := 0
		for {
			h, ok := it.Next()
			if !ok {
				break
			}
			n++
			fmt.Fprintf(wtr, "%s\t%d\t%d\t%s\t%s\t%d\t%d\n", q.Chrom, q.Start, q.End,
				h.Chrom, h.Interval.Val, h.Interval.Start, h.Interval.End)
		}
		if err := it.Err(); err != nil {
			log.Printf("skipped query: %s", err)
		}
		counts[qi] = float64(n)
	}
}

func writeCounts(wtr *xopen.Writer, g *interval.Genome[string], queries []bedio.Region, counts []float64) {
	for qi, q := range queries {
		n := 0
		if o, ok := g.Overlapper(q.Chrom); ok {
			if q.Start < 0 || q.End > math.MaxUint32 {
				log.Printf("skipped query: %s: %s", q, interval.ErrCoordinateOverflow)
				continue
			}
			// counts-only mode builds a Bits index so cardinality comes from
			// two binary searches, no scan.
			n = o.(*interval.Bits[uint32, string]).Count(uint32(q.Start), uint32(q.End))
		}
		fmt.Fprintf(wtr, "%s\t%d\t%d\t%d\n", q.Chrom, q.Start, q.End, n)
		counts[qi] = float64(n)
	}
}

func summarize(counts []float64) {
	if len(counts) == 0 {
		return
	}
	mean := stat.Mean(counts, nil)
	sorted := append([]float64(nil), counts...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	total := 0.0
	for _, c := range counts {
		total += c
	}
	fmt.Fprintf(os.Stderr, "queries: %d\toverlaps: %.0f\tmean: %.3f\tmedian: %.0f\n",
		len(counts), total, mean, median)
}

// Main is called from the goverlap dispatcher.
func Main() {
	log.SetFlags(0)
	log.SetPrefix("goverlap/overlap: ")
	arg.MustParse(&cli)

	typ := indexType(cli.Index)
	if cli.Counts {
		typ = interval.BitsType
	}

	db, err := bedio.ReadRegions(cli.Db)
	pcheck(err)
	queries, err := bedio.ReadRegions(cli.Query)
	pcheck(err)
	if cli.Fasta != "" {
		queries = filterByFasta(queries, cli.Fasta)
	}

	g := buildGenome(db, typ)

	wtr, err := xopen.Wopen("-")
	pcheck(err)
	defer wtr.Flush()

	counts := make([]float64, len(queries))
	if cli.Counts {
		writeCounts(wtr, g, queries, counts)
	} else {
		writeHits(wtr, g, queries, counts)
	}
	if cli.Stats {
		summarize(counts)
	}
}

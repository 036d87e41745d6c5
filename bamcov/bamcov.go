// Package bamcov implements the bamcov command: count reads from a
// position-sorted BAM that overlap each region in a BED file.
//
// Because the BAM arrives sorted by position, per-chromosome queries are an
// ascending-start stream and run through the Bits seek cursor instead of a
// fresh binary search per read.
package bamcov

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	arg "github.com/alexflint/go-arg"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/brentp/xopen"

	"github.com/genomekit/goverlap/bedio"
	"github.com/genomekit/goverlap/interval"
)

var cli = struct {
	Q   int    `arg:"-Q,help:mapping quality cutoff"`
	Bed string `arg:"positional,required,help:bed of regions to count reads in"`
	Bam string `arg:"positional,required,help:position-sorted bam"`
}{Q: 1}

func pcheck(e error) {
	if e != nil {
		log.Fatal(e)
	}
}

// buildTrees makes one Bits index per chromosome; payloads are indexes into
// the regions slice so hits can be tallied back in file order.
func buildTrees(regions []bedio.Region) map[string]*interval.Bits[uint32, int] {
	byChrom := make(map[string][]interval.Interval[uint32, int])
	for i, r := range regions {
		if r.Start < 0 || r.End > math.MaxUint32 {
			log.Fatalf("region %s outside the uint32 coordinate domain", r)
		}
		byChrom[r.Chrom] = append(byChrom[r.Chrom], interval.Interval[uint32, int]{
			Start: uint32(r.Start), End: uint32(r.End), Val: i,
		})
	}
	trees := make(map[string]*interval.Bits[uint32, int], len(byChrom))
	for chrom, ivs := range byChrom {
		trees[chrom] = interval.NewBits(ivs)
	}
	return trees
}

// Main is called from the goverlap dispatcher.
func Main() {
	log.SetFlags(0)
	log.SetPrefix("goverlap/bamcov: ")
	arg.MustParse(&cli)

	regions, err := bedio.ReadRegions(cli.Bed)
	pcheck(err)
	trees := buildTrees(regions)
	counts := make([]int, len(regions))

	fh, err := os.Open(cli.Bam)
	pcheck(err)
	defer fh.Close()
	brdr, err := bam.NewReader(fh, 2)
	pcheck(err)
	defer brdr.Close()
	brdr.Omit(bam.AllVariableLengthData)

	var tree *interval.Bits[uint32, int]
	var chrom string
	cursor := 0
	for {
		rec, err := brdr.Read()
		if err == io.EOF {
			break
		}
		pcheck(err)
		if rec.Flags&(sam.Unmapped|sam.Duplicate|sam.QCFail|sam.Secondary) != 0 {
			continue
		}
		if int(rec.MapQ) < cli.Q {
			continue
		}
		if name := rec.Ref.Name(); name != chrom {
			chrom = name
			tree = trees[chrom]
			cursor = 0
		}
		if tree == nil || rec.Pos < 0 {
			continue
		}
		it := tree.Seek(uint32(rec.Pos), uint32(rec.End()), &cursor)
		for {
			iv, ok := it.Next()
			if !ok {
				break
			}
			counts[iv.Val]++
		}
	}

	wtr, err := xopen.Wopen("-")
	pcheck(err)
	defer wtr.Flush()
	for i, r := range regions {
		name := r.Name
		if name == "" {
			name = "."
		}
		fmt.Fprintf(wtr, "%s\t%d\t%d\t%s\t%d\n", r.Chrom, r.Start, r.End, name, counts[i])
	}
}

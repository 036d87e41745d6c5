// Package bedio reads BED regions from plain, gzipped, or stdin ("-")
// sources for the goverlap commands.
package bedio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brentp/xopen"
)

// Region is one BED line. Coordinates are int64 as parsed; conversion into an
// index's uint32 domain happens at build/query time.
type Region struct {
	Chrom string
	Start int64
	End   int64
	// Name is the 4th BED column, empty when absent.
	Name string
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// ReadRegions reads all regions from a BED file. Header, comment, and blank
// lines are skipped.
func ReadRegions(path string) ([]Region, error) {
	rdr, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	var regions []Region
	ln := 0
	for {
		line, err := rdr.ReadString('\n')
		if err == io.EOF && line == "" {
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		ln++
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			if err == io.EOF {
				break
			}
			continue
		}
		r, perr := parseLine(line)
		if perr != nil {
			return nil, fmt.Errorf("%s:%d: %s", path, ln, perr)
		}
		regions = append(regions, r)
		if err == io.EOF {
			break
		}
	}
	return regions, nil
}

func parseLine(line string) (Region, error) {
	toks := strings.SplitN(line, "\t", 5)
	if len(toks) < 3 {
		return Region{}, fmt.Errorf("expected at least 3 tab-delimited columns, got %d", len(toks))
	}
	start, err := strconv.ParseInt(toks[1], 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad start %q", toks[1])
	}
	end, err := strconv.ParseInt(toks[2], 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad end %q", toks[2])
	}
	r := Region{Chrom: toks[0], Start: start, End: end}
	if len(toks) > 3 {
		r.Name = toks[3]
	}
	return r, nil
}

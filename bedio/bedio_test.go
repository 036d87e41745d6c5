package bedio

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeBed(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.bed")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadRegions(t *testing.T) {
	p := writeBed(t, "# a comment\ntrack name=peaks\nchr1\t100\t200\tpeak1\nchr2\t300\t400\n\nchr10\t0\t50\tpeak2\t99\n")
	regions, err := ReadRegions(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []Region{
		{Chrom: "chr1", Start: 100, End: 200, Name: "peak1"},
		{Chrom: "chr2", Start: 300, End: 400},
		{Chrom: "chr10", Start: 0, End: 50, Name: "peak2"},
	}
	if !reflect.DeepEqual(regions, want) {
		t.Errorf("expected %v, got %v", want, regions)
	}
}

func TestReadRegionsNoTrailingNewline(t *testing.T) {
	p := writeBed(t, "chr1\t5\t10")
	regions, err := ReadRegions(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 1 || regions[0].End != 10 {
		t.Errorf("expected one region ending at 10, got %v", regions)
	}
}

func TestReadRegionsBadLine(t *testing.T) {
	p := writeBed(t, "chr1\t100\t200\nchr1\tnope\t300\n")
	if _, err := ReadRegions(p); err == nil {
		t.Error("expected an error for a non-numeric start")
	}
}

func TestRegionString(t *testing.T) {
	r := Region{Chrom: "chrX", Start: 5, End: 9}
	if r.String() != "chrX:5-9" {
		t.Errorf("got %q", r.String())
	}
}

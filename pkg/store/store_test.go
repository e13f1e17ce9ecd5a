package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/google/go-cmp/cmp"
)

func TestGapsFromRow(t *testing.T) {
	var tdata = []struct {
		row  string
		seq  string
		gaps []store.Gap
	}{
		{"ACGT", "ACGT", nil},
		{"A-CGT", "ACGT", []store.Gap{{1, 1}}},
		{"A--CG-T", "ACGT", []store.Gap{{1, 2}, {3, 1}}},
		{"-AC", "AC", []store.Gap{{0, 1}}},
		{"AC--", "AC", []store.Gap{{2, 2}}},
		{"", "", nil},
	}
	for _, tt := range tdata {
		s, g := store.GapsFromRow([]byte(tt.row))
		if string(s) != tt.seq {
			t.Fatal("row", tt.row, "got seq", string(s), "want", tt.seq)
		}
		if diff := cmp.Diff(tt.gaps, g); diff != "" {
			t.Fatal("row", tt.row, diff)
		}
		if back := store.ApplyGaps(s, g); string(back) != tt.row {
			t.Fatal("ApplyGaps gave", string(back), "want", tt.row)
		}
	}
}

func TestReplay(t *testing.T) {
	r := store.Read{Name: "r1", Seq: []byte("xxAACCGGTyy")}
	p := store.Placement{Begin: 3, End: 12, ClrBegin: 2, ClrEnd: 9,
		Gaps: []store.Gap{{2, 1}, {5, 1}}}
	if got := string(store.Replay(&p, &r)); got != "AA-CCG-GT" {
		t.Fatal("forward replay got", got)
	}
	p.Begin, p.End = p.End, p.Begin
	if got := string(store.Replay(&p, &r)); got != "AC-CGG-TT" {
		t.Fatal("reverse replay got", got)
	}
}

func TestValidate(t *testing.T) {
	r := store.Read{Name: "r", Seq: []byte("ACGTACGT")}
	c := store.Contig{Name: "c", Seq: make([]byte, 12)}
	var tdata = []struct {
		p  store.Placement
		ok bool
	}{
		{store.Placement{Begin: 0, End: 8, ClrEnd: 8}, true},
		{store.Placement{Begin: 8, End: 0, ClrEnd: 8}, true},
		{store.Placement{Begin: 2, End: 11, ClrEnd: 8, Gaps: []store.Gap{{4, 1}}}, true},
		{store.Placement{Begin: 2, End: 10, ClrEnd: 8, Gaps: []store.Gap{{4, 1}}}, false},
		{store.Placement{Begin: 5, End: 13, ClrEnd: 8}, false},
		{store.Placement{Begin: 0, End: 8, ClrEnd: 9}, false},
		{store.Placement{Begin: 0, End: 10, ClrEnd: 8, Gaps: []store.Gap{{4, 1}, {4, 1}}}, false},
		{store.Placement{Begin: 0, End: 4, ClrBegin: 2, ClrEnd: 6}, true},
	}
	for i, tt := range tdata {
		err := store.Validate(&tt.p, &r, &c)
		if tt.ok && err != nil {
			t.Fatal("case", i, "unexpected error", err)
		}
		if !tt.ok && !errors.Is(err, store.ErrLayout) {
			t.Fatal("case", i, "wanted ErrLayout, got", err)
		}
	}
}

func TestUngapped(t *testing.T) {
	c := store.Contig{Seq: []byte("AC--GT-")}
	s, pos := c.Ungapped()
	if string(s) != "ACGT" {
		t.Fatal("got", string(s))
	}
	want := []int{0, 1, 2, 2, 2, 3, 4, 4}
	if diff := cmp.Diff(want, pos); diff != "" {
		t.Fatal(diff)
	}
}

func ExampleApplyGaps() {
	s := store.ApplyGaps([]byte("ACGT"), []store.Gap{{1, 2}, {3, 1}})
	fmt.Println(string(s))
	// Output: A--CG-T
}

package layout_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/andrew-torda/seqcons/pkg/layout"
	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/google/go-cmp/cmp"
)

func TestPartition(t *testing.T) {
	st := store.Store{
		Contigs: []store.Contig{{Name: "a"}, {Name: "empty"}, {Name: "c"}},
		Placements: []store.Placement{
			{Read: 0, Contig: 2, Begin: 0, End: 5},
			{Read: 1, Contig: 0, Begin: 9, End: 3},
			{Read: 2, Contig: 2, Begin: 4, End: 8},
		},
	}
	got := layout.Partition(&st)
	want := []layout.ContigReads{
		{Contig: 0, Tuples: []layout.Tuple{{Placement: 1, Read: 1, Begin: 9, End: 3}}},
		{Contig: 1},
		{Contig: 2, Tuples: []layout.Tuple{{0, 0, 0, 5}, {2, 2, 4, 8}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
	plc := got[2].Placements(&st)
	plc[1].Begin = 5
	if st.Placements[2].Begin != 4 {
		t.Fatal("Placements did not copy")
	}
	got[2].PutBack(&st, plc)
	if st.Placements[2].Begin != 5 {
		t.Fatal("PutBack did not write")
	}
}

func TestFromCigar(t *testing.T) {
	ref := []byte("ACGTACGT")
	alns := []layout.Aln{
		{Read: 0, Pos: 0, Seq: []byte("ACGGTACGT"),
			Steps: []layout.Step{{layout.Match, 3}, {layout.Ins, 1}, {layout.Match, 5}}},
		{Read: 1, Pos: 2, Seq: []byte("GTAC"), Rev: true,
			Steps: []layout.Step{{layout.Match, 4}}},
		{Read: 2, Pos: 3, Seq: []byte("GTA"),
			Steps: []layout.Step{{layout.Ins, 1}, {layout.Match, 2}}},
		{Read: 3, Pos: 1, Seq: []byte("CAC"),
			Steps: []layout.Step{{layout.Match, 1}, {layout.Del, 2}, {layout.Match, 2}}},
	}
	gapped, plc, err := layout.FromCigar(ref, alns)
	if err != nil {
		t.Fatal(err)
	}
	if string(gapped) != "ACG-TACGT" {
		t.Fatal("gapped reference", string(gapped))
	}
	want := []store.Placement{
		{Read: 0, Begin: 0, End: 9},
		{Read: 1, Begin: 7, End: 2, Gaps: []store.Gap{{Pos: 1, Len: 1}}},
		{Read: 2, Begin: 3, End: 6},
		{Read: 3, Begin: 1, End: 7, Gaps: []store.Gap{{Pos: 1, Len: 3}}},
	}
	if diff := cmp.Diff(want, plc); diff != "" {
		t.Fatal(diff)
	}
}

func TestFromCigarBad(t *testing.T) {
	ref := []byte("ACGT")
	for _, a := range []layout.Aln{
		{Pos: 2, Seq: []byte("GTA"), Steps: []layout.Step{{layout.Match, 3}}},
		{Pos: 0, Seq: []byte("AC"), Steps: []layout.Step{{layout.Match, 3}}},
		{Pos: -1, Seq: []byte("A"), Steps: []layout.Step{{layout.Match, 1}}},
	} {
		if _, _, err := layout.FromCigar(ref, []layout.Aln{a}); !errors.Is(err, layout.ErrCigar) {
			t.Fatal("wanted ErrCigar for", a, "got", err)
		}
	}
}

func randDNA(n int, rnd *rand.Rand) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[rnd.Intn(4)]
	}
	return b
}

// Cut reads from a genome, turn some round, and see if the layout
// puts them back where they came from.
func TestBuild(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	g := randDNA(200, rnd)
	starts := []int{0, 30, 60, 90, 120, 150}
	rev := []bool{false, false, true, false, true, false}
	var reads store.ReadStore
	for i, s := range starts {
		r := append([]byte(nil), g[s:s+50]...)
		if rev[i] {
			r = seq.RevComp(r)
		}
		reads = append(reads, store.Read{Name: string(rune('a' + i)), Seq: r})
	}
	reads = append(reads, store.Read{Name: "loner", Seq: randDNA(40, rnd)})

	cfg := layout.OverlapConfig{MatchLength: 15, Quality: 80, Overlaps: 3}
	ovlp := layout.Overlaps(reads, cfg)
	if len(ovlp) != 5 {
		t.Fatal("wanted 5 overlaps, got", ovlp)
	}
	for _, o := range ovlp {
		if o.Identity != 100 || o.Len != 20 {
			t.Fatal("overlap", o)
		}
	}
	contigs, plc := layout.Build(reads, ovlp)
	if len(contigs) != 2 || contigs[0].Name != "contig1" || contigs[1].Name != "contig2" {
		t.Fatal("contigs", contigs)
	}
	if len(contigs[0].Seq) != 200 || len(contigs[1].Seq) != 40 {
		t.Fatal("contig lengths", len(contigs[0].Seq), len(contigs[1].Seq))
	}
	if plc[6].Contig != 1 || plc[6].Start() != 0 {
		t.Fatal("loner", plc[6])
	}
	same := plc[0].Reverse() == rev[0] // layout is not mirrored
	for i, s := range starts {
		p := plc[i]
		if p.Contig != 0 {
			t.Fatal("read", i, "on contig", p.Contig)
		}
		if (p.Reverse() != rev[i]) == same {
			t.Fatal("read", i, "wrong way round")
		}
		want := s
		if !same {
			want = 200 - s - 50
		}
		if p.Start() != want {
			t.Fatal("read", i, "at", p.Start(), "want", want)
		}
		if err := store.Validate(&p, &reads[i], &contigs[0]); err != nil {
			t.Fatal(err)
		}
	}
}

// Tiled reads all overlap each other. With room for one overlap per
// read, nobody may end up with two.
func TestOverlapCap(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	g := randDNA(80, rnd)
	var reads store.ReadStore
	for i, s := range []int{0, 10, 20, 30} {
		reads = append(reads, store.Read{Name: string(rune('a' + i)), Seq: g[s : s+50]})
	}
	for _, nkeep := range []int{1, 2} {
		cfg := layout.OverlapConfig{MatchLength: 15, Quality: 80, Overlaps: nkeep}
		ovlp := layout.Overlaps(reads, cfg)
		n := make([]int, len(reads))
		for _, o := range ovlp {
			n[o.A]++
			n[o.B]++
		}
		for i, k := range n {
			if k > nkeep {
				t.Fatal("read", i, "kept", k, "overlaps, cap is", nkeep)
			}
		}
		if nkeep == 1 && len(ovlp) != 2 {
			t.Fatal("wanted (a,b) and (c,d), got", ovlp)
		}
	}
}

// Protein reads have one strand and are scored with BLOSUM62, so a
// perfect overlap of 20 scores far more than 20.
func TestProteinOverlap(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	g := make([]byte, 80)
	for i := range g {
		g[i] = "ACDEFGHIKLMNPQRSTVWY"[rnd.Intn(20)]
	}
	reads := store.ReadStore{{Name: "a", Seq: g[:50]}, {Name: "b", Seq: g[30:]}}
	ovlp := layout.Overlaps(reads, layout.OverlapConfig{MatchLength: 15, Quality: 80, Overlaps: 3})
	if len(ovlp) != 1 {
		t.Fatal("wanted one overlap, got", ovlp)
	}
	o := ovlp[0]
	if o.Rev || o.Shift != 30 || o.Len != 20 || o.Identity != 100 {
		t.Fatal("overlap", o)
	}
	if o.Score < 4*20 {
		t.Fatal("score", o.Score, "is not BLOSUM62")
	}
}

package loader_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/andrew-torda/seqcons/pkg/brokenio"
	"github.com/andrew-torda/seqcons/pkg/loader"
	"github.com/andrew-torda/seqcons/pkg/seq/common"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/google/go-cmp/cmp"
)

const fastaReads = `>r1 0,8 contig=a
ACGTACGT
>r2 12,4 contig=a
ggggcccc
>r3
TTTT
>r4 2,6
ACGT
`

func tmpFile(t *testing.T, s, suffix string) string {
	t.Helper()
	fname, err := common.WrtTemp(s, suffix)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(fname) })
	return fname
}

func TestReads(t *testing.T) {
	st, err := loader.Load(loader.Input{Reads: tmpFile(t, fastaReads, ".fa")})
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Reads) != 4 {
		t.Fatal("wanted 4 reads, got", len(st.Reads))
	}
	if string(st.Reads[1].Seq) != "GGGGCCCC" {
		t.Fatal("not upper case", string(st.Reads[1].Seq))
	}
	want := []store.Placement{
		{Read: 0, Contig: 0, Begin: 0, End: 8, ClrEnd: 8},
		{Read: 1, Contig: 0, Begin: 12, End: 4, ClrEnd: 8},
		{Read: 3, Contig: 1, Begin: 2, End: 6, ClrEnd: 4},
	}
	if diff := cmp.Diff(want, st.Placements); diff != "" {
		t.Fatal(diff)
	}
	if st.Contigs[0].Name != "a" || len(st.Contigs[0].Seq) != 12 || st.Contigs[0].HasSeq {
		t.Fatalf("contig a %+v", st.Contigs[0])
	}
	if st.Contigs[1].Name != loader.DefaultContig || len(st.Contigs[1].Seq) != 6 {
		t.Fatalf("default contig %+v", st.Contigs[1])
	}
}

func TestFastq(t *testing.T) {
	s := "@q1 0,4\nACGT\n+\nII5I\n@q2\nacgg\n+\nIIII\n"
	st, err := loader.ReadReads(strings.NewReader(s), "fastq")
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Reads) != 2 || len(st.Placements) != 1 {
		t.Fatal("wrong counts", len(st.Reads), len(st.Placements))
	}
	if q := st.Reads[0].Qual; len(q) != 4 || q[0] != 40 || q[2] != 20 {
		t.Fatal("qualities", q)
	}
}

func TestBadReads(t *testing.T) {
	for _, s := range []string{
		"hello\nworld\n",
		">r1 3,x\nACGT\n",
		">r1 -4,2\nACGT\n",
	} {
		if _, err := loader.ReadReads(strings.NewReader(s), "bad"); !errors.Is(err, loader.ErrFormat) {
			t.Fatalf("%q gave %v", s, err)
		}
	}
}

func TestBrokenStream(t *testing.T) {
	rdr := brokenio.NewReader(strings.NewReader(fastaReads), 3)
	rdr.SetProbFail(1)
	if _, err := loader.ReadReads(rdr, "broken"); !errors.Is(err, loader.ErrFormat) {
		t.Fatal("broken stream gave", err)
	}
	rdr = brokenio.NewReader(strings.NewReader(afgText), 3)
	rdr.SetProbFail(1)
	if _, err := loader.ReadAfg(rdr, "broken"); !errors.Is(err, loader.ErrFormat) {
		t.Fatal("broken afg stream gave", err)
	}
}

func TestInputs(t *testing.T) {
	if _, err := loader.Load(loader.Input{}); !errors.Is(err, loader.ErrMissingInput) {
		t.Fatal("no input gave", err)
	}
	in := loader.Input{Reads: "a.fa", Afg: "b.afg"}
	if _, err := loader.Load(in); !errors.Is(err, loader.ErrMissingInput) {
		t.Fatal("two inputs gave", err)
	}
	if _, err := loader.Load(loader.Input{Reads: "/nonexistent/x.fa"}); err == nil {
		t.Fatal("missing file did not fail")
	}
}

func TestEmptyFile(t *testing.T) {
	st, err := loader.Load(loader.Input{Reads: tmpFile(t, "", ".fa")})
	if err != nil || len(st.Reads) != 0 {
		t.Fatal("empty file", err)
	}
}

const afgText = `{RED
iid:1
eid:r1
seq:
ACGTAC
GT
.
qlt:
55555555
.
clr:0,8
}
{RED
iid:2
eid:r2
seq:
ACGTTT
.
clr:0,6
}
{LIB
iid:1
{DST
mea:100
}
}
{CTG
iid:1
eid:c1
seq:
ACGTAC-GT
.
qlt:
000000000
.
{TLE
src:1
off:0
clr:0,8
gap:
6
.
}
{TLE
src:2
off:3
clr:6,0
}
}
`

func TestAfg(t *testing.T) {
	st, err := loader.Load(loader.Input{Afg: tmpFile(t, afgText, ".afg")})
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Reads) != 2 || st.Reads[1].Name != "r2" || string(st.Reads[0].Seq) != "ACGTACGT" {
		t.Fatalf("reads %+v", st.Reads)
	}
	if q := st.Reads[0].Qual; len(q) != 8 || q[0] != 5 {
		t.Fatal("qualities", q)
	}
	c := st.Contigs[0]
	if c.Name != "c1" || string(c.Seq) != "ACGTAC-GT" || !c.HasSeq {
		t.Fatalf("contig %+v", c)
	}
	want := []store.Placement{
		{Read: 0, Begin: 0, End: 9, Gaps: []store.Gap{{Pos: 6, Len: 1}}, ClrEnd: 8},
		{Read: 1, Begin: 9, End: 3, ClrEnd: 6},
	}
	if diff := cmp.Diff(want, st.Placements); diff != "" {
		t.Fatal(diff)
	}
}

func TestBadAfg(t *testing.T) {
	cut := afgText[:strings.LastIndex(afgText, "}")]
	unknown := strings.Replace(afgText, "src:2", "src:7", 1)
	badclr := strings.Replace(afgText, "clr:6,0", "clr:6", 1)
	for i, s := range []string{cut, unknown, badclr, "iid:1\n"} {
		if _, err := loader.ReadAfg(strings.NewReader(s), "bad"); !errors.Is(err, loader.ErrFormat) {
			t.Fatal("bad afg number", i, "gave", err)
		}
	}
}

func samText() string {
	lines := []string{
		"@HD VN:1.6",
		"@SQ SN:ref LN:10",
		"r1 0 ref 1 60 10M * 0 0 ACGTACGTAC *",
		"r2 16 ref 3 60 2S3M2I3M * 0 0 TTGTAGGCGT *",
		"r3 4 * 0 0 * * 0 0 ACGT *",
	}
	return strings.ReplaceAll(strings.Join(lines, "\n")+"\n", " ", "\t")
}

func TestSam(t *testing.T) {
	refs := map[string][]byte{"ref": []byte("ACGTACGTAC")}
	st, err := loader.ReadSam(strings.NewReader(samText()), "test.sam", refs)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(st.Reads) != 3 || len(st.Placements) != 2 {
		t.Fatal("wrong counts", len(st.Reads), len(st.Placements))
	}
	c := st.Contigs[0]
	if string(c.Seq) != "ACGTA--CGTAC" || !c.HasSeq {
		t.Fatalf("contig %s %v", c.Seq, c.HasSeq)
	}
	if s := string(st.Reads[1].Seq); s != "ACGCCTACAA" {
		t.Fatal("reverse read not turned back", s)
	}
	want := []store.Placement{
		{Read: 0, Begin: 0, End: 12, Gaps: []store.Gap{{Pos: 5, Len: 2}}, ClrEnd: 10},
		{Read: 1, Begin: 10, End: 2, ClrEnd: 8},
	}
	if diff := cmp.Diff(want, st.Placements); diff != "" {
		t.Fatal(diff)
	}
	if s := string(store.Replay(&st.Placements[1], &st.Reads[1])); s != "GTAGGCGT" {
		t.Fatal("replayed reverse read", s)
	}
}

func TestSamFile(t *testing.T) {
	fname := tmpFile(t, samText(), ".sam")
	st, err := loader.Load(loader.Input{Sam: fname})
	if err != nil {
		t.Fatal(err)
	}
	if c := st.Contigs[0]; string(c.Seq) != "NNNNN--NNNNN" || c.HasSeq {
		t.Fatalf("placeholder contig %s", c.Seq)
	}
	short := tmpFile(t, ">ref\nACGT\n", ".fa")
	if _, err := loader.Load(loader.Input{Sam: fname, Contigs: short}); !errors.Is(err, loader.ErrFormat) {
		t.Fatal("short reference gave", err)
	}
}

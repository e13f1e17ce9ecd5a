package realign_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/andrew-torda/seqcons/pkg/realign"
	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	"github.com/google/go-cmp/cmp"
)

// genome is random DNA. Position 55 is made different from its
// neighbours, so a gap there cannot slide.
func genome(n int, seed int64) []byte {
	rnd := rand.New(rand.NewSource(seed))
	g := make([]byte, n)
	for i := range g {
		g[i] = "ACGT"[rnd.Intn(4)]
	}
	for _, c := range []byte("ACGT") {
		if n > 56 && c != g[54] && c != g[56] {
			g[55] = c
			break
		}
	}
	return g
}

// A readDef is a read cut from the genome at at, n bases long, and
// placed at place. del and ins are offsets of a lost or extra base,
// -1 for none.
type readDef struct {
	at, n, place int
	rev          bool
	del, ins     int
}

func build(g []byte, defs []readDef) (store.Contig, []store.Placement, store.ReadStore) {
	var reads store.ReadStore
	var plc []store.Placement
	ncol := 0
	for i, sp := range defs {
		s := append([]byte(nil), g[sp.at:sp.at+sp.n]...)
		if sp.del >= 0 {
			s = append(s[:sp.del], s[sp.del+1:]...)
		}
		if sp.ins >= 0 {
			extra := byte('A')
			if s[sp.ins] == 'A' || s[sp.ins-1] == 'A' {
				extra = 'C'
			}
			s = append(s[:sp.ins], append([]byte{extra}, s[sp.ins:]...)...)
		}
		p := store.Placement{Read: i, Begin: sp.place, End: sp.place + len(s), ClrEnd: len(s)}
		if sp.rev {
			s = seq.RevComp(s)
			p.Begin, p.End = p.End, p.Begin
		}
		reads = append(reads, store.Read{Name: string(rune('a' + i)), Seq: s})
		plc = append(plc, p)
		if p.Stop() > ncol {
			ncol = p.Stop()
		}
	}
	return store.Placeholder("ctg", ncol), plc, reads
}

func plain(at, place int) readDef { return readDef{at: at, n: 40, place: place, del: -1, ins: -1} }

// five reads overlapping by 10 to 20 bases
var starts = []int{0, 25, 50, 72, 95}

func checkLayout(t *testing.T, c *store.Contig, plc []store.Placement, reads store.ReadStore) {
	t.Helper()
	for i := range plc {
		if err := store.Validate(&plc[i], &reads[plc[i].Read], c); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEmpty(t *testing.T) {
	c := store.Placeholder("x", 10)
	_, err := realign.RealignContig(&c, nil, nil, realign.DefaultConfig())
	if !errors.Is(err, realign.ErrEmptyContig) {
		t.Fatal("wanted ErrEmptyContig, got", err)
	}
}

func TestSingle(t *testing.T) {
	g := genome(60, 3)
	c, plc, reads := build(g, []readDef{{at: 10, n: 30, place: 5, rev: true, del: -1, ins: -1}})
	stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Iterations != 0 {
		t.Fatal("iterations", stats.Iterations)
	}
	if string(c.Seq) != string(g[10:40]) || !c.HasSeq {
		t.Fatal("consensus", string(c.Seq))
	}
	if p := plc[0]; p.Begin != 30 || p.End != 0 || p.Gaps != nil {
		t.Fatal("placement", p)
	}
}

// Reads that are already right should stay where they are.
func TestNothingToDo(t *testing.T) {
	g := genome(140, 1)
	var defs []readDef
	for _, s := range starts {
		defs = append(defs, plain(s, s))
	}
	c, plc, reads := build(g, defs)
	stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if string(c.Seq) != string(g[:135]) {
		t.Fatal("consensus\n", string(c.Seq), "\n", string(g[:135]))
	}
	if stats.Iterations != 1 || stats.Changed[0] != 0 {
		t.Fatal("stats", stats)
	}
	for i, p := range plc {
		if p.Begin != starts[i] || len(p.Gaps) != 0 {
			t.Fatal("read", i, "moved to", p)
		}
	}
}

// jittered moves reads by up to three columns and puts one on the
// reverse strand.
func jittered(seed int64) []readDef {
	rnd := rand.New(rand.NewSource(seed))
	var defs []readDef
	for i, s := range starts {
		place := s
		if i > 0 {
			place += rnd.Intn(7) - 3
		}
		sp := plain(s, place)
		sp.rev = i == 3
		defs = append(defs, sp)
	}
	return defs
}

func TestJitter(t *testing.T) {
	for seed := int64(1); seed < 6; seed++ {
		g := genome(140, seed)
		c, plc, reads := build(g, jittered(seed))
		stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if string(c.Seq) != string(g[:135]) {
			t.Fatal("seed", seed, "consensus\n", string(c.Seq), "\n", string(g[:135]))
		}
		checkLayout(t, &c, plc, reads)
		for i, p := range plc {
			if p.Start() != starts[i] || len(p.Gaps) != 0 {
				t.Fatal("seed", seed, "read", i, "at", p)
			}
		}
		if !plc[3].Reverse() {
			t.Fatal("lost the orientation of read 3")
		}
		n := len(stats.Changed)
		if n == 0 || n > 3 || stats.Changed[n-1] != 0 {
			t.Fatal("seed", seed, "did not settle", stats.Changed)
		}
		for i := 1; i < n; i++ {
			if stats.Changed[i] > stats.Changed[i-1] {
				t.Fatal("seed", seed, "changes went up", stats.Changed)
			}
		}
	}
}

// A read missing a base ends up with a gap of one where the base was.
func TestDeletion(t *testing.T) {
	g := genome(140, 2)
	var defs []readDef
	for _, s := range starts {
		defs = append(defs, plain(s, s))
	}
	defs[2].del = 5
	c, plc, reads := build(g, defs)
	if _, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if string(c.Seq) != string(g[:135]) {
		t.Fatal("consensus\n", string(c.Seq), "\n", string(g[:135]))
	}
	if diff := cmp.Diff([]store.Gap{{Pos: 5, Len: 1}}, plc[2].Gaps); diff != "" {
		t.Fatal(diff)
	}
	if plc[2].Begin != 50 || plc[2].End != 90 {
		t.Fatal("read 2 at", plc[2])
	}
	checkLayout(t, &c, plc, reads)
}

// Running a second time on the result should change nothing.
func TestIdempotent(t *testing.T) {
	g := genome(140, 4)
	c, plc, reads := build(g, jittered(4))
	if _, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	c1 := store.Contig{Name: c.Name, Seq: append([]byte(nil), c.Seq...), HasSeq: true}
	plc1 := append([]store.Placement(nil), plc...)
	stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Changed[0] != 0 {
		t.Fatal("second pass changed", stats.Changed)
	}
	if diff := cmp.Diff(c1, c); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff(plc1, plc); diff != "" {
		t.Fatal(diff)
	}
}

// An extra base in read 2 gets a column of its own. Read 1 runs over
// that column and picks up a gap, the reads to the right move by one.
func TestInsertion(t *testing.T) {
	var g []byte
	for seed := int64(1); ; seed++ { // the extra A must not be able to slide
		if g = genome(140, seed); g[59] != 'A' && g[60] != 'A' {
			break
		}
	}
	var defs []readDef
	for _, s := range starts {
		defs = append(defs, plain(s, s))
	}
	defs[2].ins = 10
	c, plc, reads := build(g, defs)
	stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := string(g[:60]) + "A" + string(g[60:135])
	if string(c.Seq) != want {
		t.Fatal("consensus\n", string(c.Seq), "\n", want)
	}
	if p := plc[2]; p.Begin != 50 || p.End != 91 || len(p.Gaps) != 0 {
		t.Fatal("read 2 at", p)
	}
	if diff := cmp.Diff([]store.Gap{{Pos: 35, Len: 1}}, plc[1].Gaps); diff != "" {
		t.Fatal(diff)
	}
	if plc[0].Begin != 0 || plc[3].Begin != 73 || plc[4].Begin != 96 {
		t.Fatal("neighbours at", plc[0].Begin, plc[3].Begin, plc[4].Begin)
	}
	if stats.Inserted < 1 {
		t.Fatal("no column inserted", stats)
	}
	checkLayout(t, &c, plc, reads)
}

// A lone read is the consensus, even on a contig with its own
// sequence. The reference columns go and the read starts at 0.
func TestSingleOnReference(t *testing.T) {
	g := genome(60, 3)
	c := store.Contig{Name: "ref", Seq: append([]byte(nil), g...), HasSeq: true}
	reads := store.ReadStore{{Name: "a", Seq: append([]byte(nil), g[10:40]...)}}
	plc := []store.Placement{{Read: 0, Begin: 10, End: 40, ClrEnd: 30}}
	cfg := realign.DefaultConfig()
	cfg.IncludeReference = true
	if _, err := realign.RealignContig(&c, plc, reads, cfg); err != nil {
		t.Fatal(err)
	}
	if string(c.Seq) != string(g[10:40]) {
		t.Fatal("consensus", string(c.Seq))
	}
	if plc[0].Begin != 0 || plc[0].End != 30 {
		t.Fatal("placement", plc[0])
	}
}

// Protein reads are scored with BLOSUM62. Identities there are worth
// 4 or more, so the score is far above what match / mismatch could
// give, which is at most 2 per read residue.
func TestProtein(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))
	g := make([]byte, 140)
	for i := range g {
		g[i] = "ACDEFGHIKLMNPQRSTVWY"[rnd.Intn(20)]
	}
	var defs []readDef
	for _, s := range starts {
		defs = append(defs, plain(s, s))
	}
	c, plc, reads := build(g, defs)
	stats, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if string(c.Seq) != string(g[:135]) {
		t.Fatal("consensus\n", string(c.Seq), "\n", string(g[:135]))
	}
	for i, p := range plc {
		if p.Begin != starts[i] || len(p.Gaps) != 0 {
			t.Fatal("read", i, "moved to", p)
		}
	}
	if stats.Score <= 2*float64(len(starts)*40) {
		t.Fatal("score", stats.Score, "does not look like BLOSUM62")
	}
}

// More workers must not change the answer. Reads come from two
// islands and are interleaved, so neighbours in load order can be
// aligned at the same time.
func TestWorkers(t *testing.T) {
	for seed := int64(1); seed < 4; seed++ {
		g := genome(300, seed)
		var defs []readDef
		for i, sp := range jittered(seed) {
			far := jittered(seed + 10)[i]
			far.at += 150
			far.place += 150
			defs = append(defs, sp, far)
		}
		defs[2].del = 30
		c1, plc1, reads := build(g, defs)
		c4, plc4, _ := build(g, defs)
		cfg := realign.DefaultConfig()
		s1, err := realign.RealignContig(&c1, plc1, reads, cfg)
		if err != nil {
			t.Fatal(err)
		}
		cfg.Workers = 4
		s4, err := realign.RealignContig(&c4, plc4, reads, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(c1, c4); diff != "" {
			t.Fatal(diff)
		}
		if diff := cmp.Diff(plc1, plc4); diff != "" {
			t.Fatal(diff)
		}
		if diff := cmp.Diff(s1, s4); diff != "" {
			t.Fatal(diff)
		}
		checkLayout(t, &c4, plc4, reads)
	}
}

// An extra base means a new column. With no room for growth this
// is an error and the caller's data is left alone.
func TestDivergence(t *testing.T) {
	g := genome(140, 5)
	var defs []readDef
	for _, s := range starts {
		defs = append(defs, plain(s, s))
	}
	defs[1].ins = 30
	c, plc, reads := build(g, defs)
	c0 := store.Contig{Name: c.Name, Seq: append([]byte(nil), c.Seq...)}
	plc0 := append([]store.Placement(nil), plc...)
	cfg := realign.DefaultConfig()
	cfg.Divergence = 1e-6
	_, err := realign.RealignContig(&c, plc, reads, cfg)
	if !errors.Is(err, realign.ErrDivergence) {
		t.Fatal("wanted ErrDivergence, got", err)
	}
	if diff := cmp.Diff(c0, c); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff(plc0, plc); diff != "" {
		t.Fatal(diff)
	}
}

func TestBadPlacement(t *testing.T) {
	g := genome(140, 1)
	c, plc, reads := build(g, []readDef{plain(0, 0), plain(20, 20)})
	plc[1].End++
	_, err := realign.RealignContig(&c, plc, reads, realign.DefaultConfig())
	if !errors.Is(err, store.ErrLayout) {
		t.Fatal("wanted ErrLayout, got", err)
	}
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"nw", "gotoh"} {
		m, err := realign.ParseMethod(s)
		if err != nil || m.String() != s {
			t.Fatal(s, m, err)
		}
	}
	if _, err := realign.ParseMethod("sw"); err == nil {
		t.Fatal("sw should not be accepted")
	}
}

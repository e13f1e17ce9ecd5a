// Get the tests from the greek paper.
// Includes the example from the Altschul paper which cannot be
// done with the method as described in the original paper.

package gotoh_test

import (
	"fmt"
	"testing"

	gth "github.com/andrew-torda/seqcons/pkg/gotoh"
	"github.com/google/go-cmp/cmp"
)

func rev(s string) string {
	t := []byte(s)
	for i, j := 0, len(t)-1; i < j; i, j = i+1, j-1 {
		t[i], t[j] = t[j], t[i]
	}
	return string(t)
}

var testpairs = []struct {
	s1      string       // I tried to line this up and make it readable.
	s2      string       // gofmt removes all the excess spaces
	m_scr   gth.MatchScr // Given to identity score function
	a_scr   gth.Pnlty    // Gap open and widen penalties
	scr_exp []float32    // expected scores, local and overlap alignments
}{ // s1  ,  s2,                       {match, mismatch, {open, widen}}, expected scores
	{"bcde", "ae", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{5, 3}},
	{"abcdefghi", "bcgi", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{14, 14}},
	{"abcdefg", "aceh", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 9}},
	{"ae", "abcd", gth.MatchScr{5, -9}, gth.Pnlty{1, 1}, []float32{5, 3}},
	{"aceh", "abcdefxy", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 9}},
	{"aceh", "abcdefxyz", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 9}},
	{"exz", "abcdefxyz", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 11}},
	{"dxz", "abcdefxyz", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{10, 10}},
	{"abcde", "abe", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{12, 12}},
	{"abcdef", "abde", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{18, 18}},
	{"aceg", "abcdef", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 9}},
	{"abcde", "bcd", gth.MatchScr{2, 1}, gth.Pnlty{2, 4}, []float32{6, 6}},
	{"a", "a", gth.MatchScr{5, 2}, gth.Pnlty{1, 1}, []float32{5, 5}},
	{"abc", "xaby", gth.MatchScr{5, -1}, gth.Pnlty{1, 1}, []float32{10, 9}},
	{"abcd", "abd", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{13, 13}},
	{"abcdef", "abf", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, []float32{11, 11}},
	{"xabc", "aby", gth.MatchScr{5, -1}, gth.Pnlty{1, 1}, []float32{10, 9}},
	// From the Altschul paper...
	{"AAAGGG", "TTAAAAGGGGTT", gth.MatchScr{1, -1}, gth.Pnlty{5, 1}, []float32{6, 6}},
}

func align(s1, s2 string, m_scr *gth.MatchScr, a_scr *gth.AlScore) ([]gth.Pair, float32) {
	scr_mat := gth.IdentScore([]byte(s1), []byte(s2), m_scr)
	pairlist, max_scr := gth.Align(scr_mat, a_scr)
	if testing.Verbose() {
		fmt.Println(a_scr.AlType, max_scr)
		fmt.Println(gth.PrintSeqDebug(pairlist, []byte(s1), []byte(s2)))
	}
	return pairlist, max_scr
}

func TestGotoh(t *testing.T) {
	var lg = []gth.AlType{gth.Local, gth.Overlap}
	for k, typ := range lg {
		for _, x := range testpairs {
			s1 := x.s1
			s2 := x.s2
			tmp := gth.AlScore{Pnlty: x.a_scr, AlType: typ}
			_, scr_1 := align(s1, s2, &x.m_scr, &tmp)
			_, scr_2 := align(s2, s1, &x.m_scr, &tmp)
			_, scr_3 := align(rev(s2), rev(s1), &x.m_scr, &tmp)
			if scr_1 != scr_2 {
				t.Fatal("string1/string2 string2/string1 scores not equal.\n",
					"Strings were ", s1, s2, "scores", scr_1, scr_2, "expected", x.scr_exp[k])
			}
			if scr_2 != scr_3 && len(s1) > 2 && len(s2) > 2 {
				t.Fatal("string3/string2 scores not equal with reversed strings\n",
					"Strings were ", s1, s2, typ)
			}
			if exp_scr := x.scr_exp[k]; scr_1 != exp_scr {
				t.Fatal("alignment type", typ,
					"Wrong score while aligning\n", s1, "and", s2, "Expected", exp_scr, "got", scr_1)
			}
		}
	}
}

func TestGlobal(t *testing.T) {
	var tdata = []struct {
		s1, s2 string
		m_scr  gth.MatchScr
		a_scr  gth.Pnlty
		exp    float32
	}{
		{"abcde", "abe", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, 12},
		{"bcde", "ae", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, 0},
		{"ab", "ab", gth.MatchScr{5, -2}, gth.Pnlty{1, 1}, 10},
		{"AAAAGGGGTTTT", "AAAATTTT", gth.MatchScr{1, -1}, gth.Pnlty{4, 1}, 0},
	}
	for _, x := range tdata {
		sc := gth.AlScore{Pnlty: x.a_scr, AlType: gth.Global}
		pairs, scr := align(x.s1, x.s2, &x.m_scr, &sc)
		if scr != x.exp {
			t.Fatal(x.s1, x.s2, "got", scr, "want", x.exp)
		}
		n1, n2 := 0, 0
		for _, p := range pairs {
			if p.I >= 0 {
				n1++
			}
			if p.J >= 0 {
				n2++
			}
		}
		if n1 != len(x.s1) || n2 != len(x.s2) {
			t.Fatal("global alignment lost residues", x.s1, x.s2)
		}
	}
}

func TestAffineGap(t *testing.T) {
	sc := gth.AlScore{Pnlty: gth.Pnlty{Open: 4, Wdn: 1}, AlType: gth.Global}
	pairs, _ := align("AAAAGGGGTTTT", "AAAATTTT", &gth.MatchScr{1, -1}, &sc)
	run, longest := 0, 0
	for _, p := range pairs {
		if p.J == -1 {
			run++
		} else {
			run = 0
		}
		if run > longest {
			longest = run
		}
	}
	if longest != 4 {
		t.Fatal("wanted one gap of 4, longest run", longest)
	}
}

func TestFit(t *testing.T) {
	sc := gth.AlScore{Pnlty: gth.Pnlty{Open: 2, Wdn: 1}, AlType: gth.Fit}
	pairs, scr := align("CGT", "AACGTAA", &gth.MatchScr{1, -1}, &sc)
	if scr != 3 {
		t.Fatal("fit score", scr)
	}
	want := []gth.Pair{{-1, 0}, {-1, 1}, {0, 2}, {1, 3}, {2, 4}, {-1, 5}, {-1, 6}}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Fatal(diff)
	}
}

func ExamplePrintSeqDebug() {
	sc := gth.AlScore{Pnlty: gth.Pnlty{Open: 1, Wdn: 1}, AlType: gth.Global}
	s, t := []byte("abcde"), []byte("abe")
	pairs, scr := gth.Align(gth.IdentScore(s, t, &gth.MatchScr{5, -2}), &sc)
	fmt.Println(scr)
	fmt.Println(gth.PrintSeqDebug(pairs, s, t))
	// Output:
	// 12
	// abcde
	// ab--e
}

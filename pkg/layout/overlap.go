// 8 Oct 2026

package layout

import (
	"sort"

	"github.com/andrew-torda/matrix"
	gth "github.com/andrew-torda/seqcons/pkg/gotoh"
	"github.com/andrew-torda/seqcons/pkg/score"
	"github.com/andrew-torda/seqcons/pkg/seq"
	"github.com/andrew-torda/seqcons/pkg/store"
	log "github.com/sirupsen/logrus"
)

// OverlapConfig controls which read pairs are looked at and kept.
type OverlapConfig struct {
	MatchLength int           // shortest exact word two reads must share
	Quality     int           // percent identity an overlap needs
	Overlaps    int           // keep this many of the best overlaps per read
	Window      int           // if > 0, also try reads whose approximate starts are this close
	Approx      []int         // approximate start per read, -1 if unknown, nil if none
	Submat      *score.Submat // nil means identity scoring, or BLOSUM62 for protein
}

const (
	DefaultMatchLength = 15
	DefaultQuality     = 80
	DefaultOverlaps    = 3
)

// Overlap says read B overlaps read A. B is reverse complemented if
// Rev. Shift is where B starts relative to the start of A.
type Overlap struct {
	A, B     int
	Rev      bool
	Shift    int
	Len      int     // columns in the overlapping part
	Identity float32 // percent
	Score    float32
}

var ovlpScr = gth.AlScore{Pnlty: gth.Pnlty{Open: 3, Wdn: 1}, AlType: gth.Overlap}
var ovlpMatch = gth.MatchScr{Match: 1, Mismatch: -2}

type pairKey struct {
	a, b int
	rev  bool
}

// words indexes every word of length k of every read, forward and
// reverse complemented.
func words(seqs [][]byte, rc [][]byte, k int) map[string][]int {
	idx := make(map[string][]int)
	add := func(s []byte, tag int) {
		for i := 0; i+k <= len(s); i++ {
			w := string(s[i : i+k])
			l := idx[w]
			if n := len(l); n > 0 && l[n-1] == tag {
				continue
			}
			idx[w] = append(l, tag)
		}
	}
	for i := range seqs {
		add(seqs[i], 2*i)
		add(rc[i], 2*i+1)
	}
	return idx
}

// candidates is the set of pairs worth aligning. Pairs are a < b with
// b maybe reversed.
func candidates(seqs, rc [][]byte, cfg *OverlapConfig) map[pairKey]bool {
	cand := make(map[pairKey]bool)
	if cfg.MatchLength > 0 {
		for _, tags := range words(seqs, rc, cfg.MatchLength) {
			if len(tags) > 64 { // repeats
				continue
			}
			for x := 0; x < len(tags); x++ {
				for y := x + 1; y < len(tags); y++ {
					a, b := tags[x]/2, tags[y]/2
					if a == b {
						continue
					}
					rev := (tags[x]&1 == 1) != (tags[y]&1 == 1)
					if a > b {
						a, b = b, a
					}
					cand[pairKey{a, b, rev}] = true
				}
			}
		}
	}
	if cfg.Window > 0 && cfg.Approx != nil {
		for a := range cfg.Approx {
			for b := a + 1; b < len(cfg.Approx); b++ {
				pa, pb := cfg.Approx[a], cfg.Approx[b]
				if pa < 0 || pb < 0 {
					continue
				}
				if d := pa - pb; d <= cfg.Window && -d <= cfg.Window {
					cand[pairKey{a, b, false}] = true
				}
			}
		}
	}
	return cand
}

// verify aligns a pair and says how good the overlap is.
func verify(s, t []byte, k pairKey, sm *score.Submat) Overlap {
	var smat *matrix.FMatrix2d
	if sm == nil {
		smat = gth.IdentScore(s, t, &ovlpMatch)
	} else {
		smat = score.Fill(score.NewMatrix(sm, s, t, score.Gaps{}), len(s), len(t))
	}
	pairs, scr := gth.Align(smat, &ovlpScr)
	o := Overlap{A: k.a, B: k.b, Rev: k.rev, Score: scr}
	first, last := -1, -1
	for n, p := range pairs {
		if p.I >= 0 && p.J >= 0 {
			if first < 0 {
				first = n
			}
			last = n
		}
	}
	if first < 0 {
		return o
	}
	o.Shift = pairs[first].I - pairs[first].J
	match := 0
	for _, p := range pairs[first : last+1] {
		if p.I >= 0 && p.J >= 0 && s[p.I] == t[p.J] {
			match++
		}
	}
	o.Len = last - first + 1
	o.Identity = 100 * float32(match) / float32(o.Len)
	return o
}

// Overlaps finds read pairs that overlap well enough. Each read keeps
// at most cfg.Overlaps of its best. The result is sorted by score.
func Overlaps(reads store.ReadStore, cfg OverlapConfig) []Overlap {
	if cfg.Overlaps < 1 {
		cfg.Overlaps = DefaultOverlaps
	}
	seqs := make([][]byte, len(reads))
	for i := range reads {
		seqs[i] = reads[i].Seq
	}
	sm := cfg.Submat
	protein := seq.GetType(seqs) == seq.Protein
	if sm == nil && protein {
		sm = score.BLOSUM62()
	}
	rc := make([][]byte, len(reads)) // proteins have no other strand
	if !protein {
		for i := range reads {
			rc[i] = seq.RevComp(reads[i].Seq)
		}
	}
	cand := candidates(seqs, rc, &cfg)
	keys := make([]pairKey, 0, len(cand))
	for k := range cand {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		if keys[i].b != keys[j].b {
			return keys[i].b < keys[j].b
		}
		return !keys[i].rev && keys[j].rev
	})

	var good []Overlap
	for _, k := range keys {
		t := seqs[k.b]
		if k.rev {
			t = rc[k.b]
		}
		o := verify(seqs[k.a], t, k, sm)
		if o.Len < cfg.MatchLength || o.Identity < float32(cfg.Quality) {
			continue
		}
		good = append(good, o)
	}
	sortOverlaps(good)

	n := make([]int, len(reads))
	var kept []Overlap
	for _, o := range good {
		if n[o.A] >= cfg.Overlaps || n[o.B] >= cfg.Overlaps {
			continue
		}
		n[o.A]++
		n[o.B]++
		kept = append(kept, o)
	}
	log.Infof("%d candidate pairs, %d overlaps kept", len(keys), len(kept))
	return kept
}

// sortOverlaps puts the best first. Ties go to the smaller read ids.
func sortOverlaps(o []Overlap) {
	sort.SliceStable(o, func(i, j int) bool {
		if o[i].Score != o[j].Score {
			return o[i].Score > o[j].Score
		}
		if o[i].A != o[j].A {
			return o[i].A < o[j].A
		}
		return o[i].B < o[j].B
	})
}

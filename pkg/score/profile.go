// 4 Oct 2026

package score

import (
	"github.com/andrew-torda/matrix"
)

// Window is a stretch of profile columns seen as frequencies.
// Freq.Mat[sym][col] sums to one over sym for any covered column and
// the gap is the last row. Nothing here holds counts, so it can be
// thrown away after one alignment.
type Window struct {
	Freq   *matrix.FMatrix2d
	Major  []int     // most common symbol, -1 if the column is empty
	NonGap []float32 // fraction of column that is not a gap
	gap    uint8
}

// NewWindow turns per-column counts (counts[col][sym]) into a
// Window. Ties for the majority go to the smallest ordinal.
func NewWindow(counts [][]int32, gap uint8) *Window {
	nsym := int(gap) + 1
	w := &Window{
		Freq:   matrix.NewFMatrix2d(nsym, len(counts)),
		Major:  make([]int, len(counts)),
		NonGap: make([]float32, len(counts)),
		gap:    gap,
	}
	for j, col := range counts {
		var tot, best int32
		w.Major[j] = -1
		for s, n := range col[:nsym] {
			tot += n
			if n > best {
				best, w.Major[j] = n, s
			}
		}
		if tot == 0 {
			continue
		}
		inv := 1 / float32(tot)
		for s, n := range col[:nsym] {
			w.Freq.Mat[s][j] = float32(n) * inv
		}
		w.NonGap[j] = float32(tot-col[gap]) * inv
	}
	return w
}

// Len is the number of columns.
func (w *Window) Len() int { return len(w.Major) }

// Gap is the ordinal used for gaps.
func (w *Window) Gap() uint8 { return w.gap }

// consensus scores a read against the majority symbol of each
// column. A gap majority costs an extension.
type consensus struct {
	Gaps
	win  *Window
	read []uint8
	tab  *matrix.FMatrix2d // tab.Mat[a][j] for read symbol a
}

// NewConsensus rewards agreement with the per column majority.
// Empty columns score zero for anything.
func NewConsensus(win *Window, read []uint8, sub Sub, g Gaps) Scorer {
	sc := &consensus{Gaps: g, win: win, read: read}
	gap := int(win.gap)
	sc.tab = matrix.NewFMatrix2d(gap, win.Len())
	for a := 0; a < gap; a++ {
		row := sc.tab.Mat[a]
		for j, m := range win.Major {
			switch {
			case m < 0:
				row[j] = 0
			case m == gap:
				row[j] = -g.Extend
			default:
				row[j] = sub.Sub(uint8(a), uint8(m))
			}
		}
	}
	return sc
}

func (sc *consensus) Kind() Kind { return Consensus }
func (sc *consensus) Match(i, j int) float32 { return sc.tab.Mat[sc.read[i]][j] }
func (sc *consensus) GapWeight(j int) float32 { return sc.win.NonGap[j] }

// fractional scores a read symbol against every symbol in a column,
// weighted by how often it turns up there.
type fractional struct {
	Gaps
	win  *Window
	read []uint8
	tab  *matrix.FMatrix2d
}

// NewFractional is sum over s of freq(s) * sub(a, s). A gap in the
// column costs an extension.
func NewFractional(win *Window, read []uint8, sub Sub, g Gaps) Scorer {
	sc := &fractional{Gaps: g, win: win, read: read}
	gap := int(win.gap)
	sc.tab = matrix.NewFMatrix2d(gap, win.Len())
	freq := win.Freq.Mat
	for a := 0; a < gap; a++ {
		row := sc.tab.Mat[a]
		for j := range row {
			var f float32
			for s := 0; s < gap; s++ {
				if x := freq[s][j]; x != 0 {
					f += x * sub.Sub(uint8(a), uint8(s))
				}
			}
			f -= freq[gap][j] * g.Extend
			row[j] = f
		}
	}
	return sc
}

func (sc *fractional) Kind() Kind { return Fractional }
func (sc *fractional) Match(i, j int) float32 { return sc.tab.Mat[sc.read[i]][j] }
func (sc *fractional) GapWeight(j int) float32 { return sc.win.NonGap[j] }
